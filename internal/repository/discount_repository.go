package repository

import (
	"errors"
	"strings"

	"github.com/velamall/internal/models"

	"gorm.io/gorm"
)

// DiscountRepository 优惠码数据访问接口
type DiscountRepository interface {
	Create(discount *models.Discount) error
	GetByID(id uint) (*models.Discount, error)
	GetByShopAndCode(shopID uint, code string) (*models.Discount, error)
	ListByShop(shopID uint, page, pageSize int) ([]models.Discount, int64, error)
	IncrementUsed(id uint) (bool, error)
	DecrementUsed(id uint) error
	UpdateFields(id uint, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormDiscountRepository
}

// GormDiscountRepository GORM 实现
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewDiscountRepository 创建优惠码仓库
func NewDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDiscountRepository) WithTx(tx *gorm.DB) *GormDiscountRepository {
	if tx == nil {
		return r
	}
	return &GormDiscountRepository{db: tx}
}

// Create 创建优惠码
func (r *GormDiscountRepository) Create(discount *models.Discount) error {
	return r.db.Create(discount).Error
}

// GetByID 根据 ID 获取优惠码
func (r *GormDiscountRepository) GetByID(id uint) (*models.Discount, error) {
	var discount models.Discount
	if err := r.db.First(&discount, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

// GetByShopAndCode 根据店铺与编码获取优惠码
func (r *GormDiscountRepository) GetByShopAndCode(shopID uint, code string) (*models.Discount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var discount models.Discount
	if err := r.db.Where("shop_id = ? AND code = ?", shopID, code).
		First(&discount).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

// ListByShop 分页查询店铺优惠码
func (r *GormDiscountRepository) ListByShop(shopID uint, page, pageSize int) ([]models.Discount, int64, error) {
	query := r.db.Model(&models.Discount{}).Where("shop_id = ?", shopID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var discounts []models.Discount
	if err := applyPagination(query.Order("id DESC"), page, pageSize).
		Find(&discounts).Error; err != nil {
		return nil, 0, err
	}
	return discounts, total, nil
}

// IncrementUsed 条件累加使用次数，超出上限时返回 false
func (r *GormDiscountRepository) IncrementUsed(id uint) (bool, error) {
	result := r.db.Model(&models.Discount{}).
		Where("id = ? AND (max_uses = 0 OR used_count < max_uses)", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecrementUsed 归还使用次数（订单取消 / 拒绝）
func (r *GormDiscountRepository) DecrementUsed(id uint) error {
	return r.db.Model(&models.Discount{}).
		Where("id = ? AND used_count > 0", id).
		UpdateColumn("used_count", gorm.Expr("used_count - 1")).Error
}

// UpdateFields 更新指定字段
func (r *GormDiscountRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Discount{}).Where("id = ?", id).Updates(updates).Error
}
