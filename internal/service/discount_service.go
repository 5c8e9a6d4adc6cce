package service

import (
	"strings"
	"time"

	"github.com/velamall/internal/constants"
	"github.com/velamall/internal/models"
	"github.com/velamall/internal/repository"

	"github.com/shopspring/decimal"
)

// DiscountService 店铺优惠码服务
type DiscountService struct {
	discountRepo repository.DiscountRepository
	shopRepo     repository.ShopRepository
}

// NewDiscountService 创建优惠码服务
func NewDiscountService(discountRepo repository.DiscountRepository, shopRepo repository.ShopRepository) *DiscountService {
	return &DiscountService{
		discountRepo: discountRepo,
		shopRepo:     shopRepo,
	}
}

// CreateDiscountInput 创建优惠码输入
type CreateDiscountInput struct {
	ShopID   uint
	Code     string
	Kind     string
	Value    decimal.Decimal
	MinOrder decimal.Decimal
	MaxUses  int
	StartsAt *time.Time
	EndsAt   *time.Time
}

// CreateDiscount 创建店铺优惠码
func (s *DiscountService) CreateDiscount(input CreateDiscountInput) (*models.Discount, error) {
	shop, err := s.shopRepo.GetByID(input.ShopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}

	kind := strings.ToLower(strings.TrimSpace(input.Kind))
	switch kind {
	case constants.DiscountKindFixed:
		if input.Value.LessThanOrEqual(decimal.Zero) {
			return nil, ErrDiscountKindBad
		}
	case constants.DiscountKindPercent:
		if input.Value.LessThanOrEqual(decimal.Zero) || input.Value.GreaterThan(decimal.NewFromInt(100)) {
			return nil, ErrDiscountKindBad
		}
	default:
		return nil, ErrDiscountKindBad
	}

	code := strings.TrimSpace(input.Code)
	existing, err := s.discountRepo.GetByShopAndCode(input.ShopID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDiscountCodeExists
	}

	discount := &models.Discount{
		ShopID:   input.ShopID,
		Code:     code,
		Kind:     kind,
		Value:    models.NewMoneyFromDecimal(input.Value),
		MinOrder: models.NewMoneyFromDecimal(input.MinOrder),
		MaxUses:  input.MaxUses,
		StartsAt: input.StartsAt,
		EndsAt:   input.EndsAt,
		IsActive: true,
	}
	if err := s.discountRepo.Create(discount); err != nil {
		return nil, err
	}
	return discount, nil
}

// ListDiscounts 分页查询店铺优惠码
func (s *DiscountService) ListDiscounts(shopID uint, page, pageSize int) ([]models.Discount, int64, error) {
	return s.discountRepo.ListByShop(shopID, page, pageSize)
}

// SetDiscountActive 启用 / 停用优惠码
func (s *DiscountService) SetDiscountActive(shopID uint, discountID uint, active bool) error {
	discount, err := s.discountRepo.GetByID(discountID)
	if err != nil {
		return err
	}
	if discount == nil || discount.ShopID != shopID {
		return ErrDiscountNotFound
	}
	return s.discountRepo.UpdateFields(discountID, map[string]interface{}{
		"is_active": active,
	})
}
