package service

import (
	"github.com/velamall/internal/models"
	"github.com/velamall/internal/repository"
)

// CartService 购物车服务
type CartService struct {
	cartRepo repository.CartRepository
	skuRepo  repository.SkuRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, skuRepo repository.SkuRepository) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		skuRepo:  skuRepo,
	}
}

// AddItemInput 加购输入
type AddItemInput struct {
	UserID   uint
	SkuID    uint
	Quantity int
}

// AddItem 加入购物车，同 SKU 重复加购做数量累加
func (s *CartService) AddItem(input AddItemInput) (*models.CartItem, error) {
	if input.UserID == 0 || input.SkuID == 0 || input.Quantity <= 0 {
		return nil, ErrCartItemInvalid
	}
	sku, err := s.skuRepo.GetByID(input.SkuID)
	if err != nil {
		return nil, err
	}
	if sku == nil {
		return nil, ErrSkuNotFound
	}
	if sku.Spu == nil || !sku.Spu.IsPublish || sku.Spu.IsDraft {
		return nil, ErrSkuNotOnSale
	}
	if sku.Stock < input.Quantity {
		return nil, ErrSkuStockShortage
	}

	item := &models.CartItem{
		UserID:   input.UserID,
		SkuID:    input.SkuID,
		ShopID:   sku.Spu.ShopID,
		Quantity: input.Quantity,
		Selected: true,
	}
	if err := s.cartRepo.Upsert(item); err != nil {
		return nil, err
	}
	return s.cartRepo.GetByUserAndSku(input.UserID, input.SkuID)
}

// UpdateItemInput 修改购物车项输入
type UpdateItemInput struct {
	UserID   uint
	SkuID    uint
	Quantity *int
	Selected *bool
}

// UpdateItem 修改数量或勾选状态
func (s *CartService) UpdateItem(input UpdateItemInput) (*models.CartItem, error) {
	item, err := s.cartRepo.GetByUserAndSku(input.UserID, input.SkuID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}

	updates := map[string]interface{}{}
	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return nil, ErrCartItemInvalid
		}
		updates["quantity"] = *input.Quantity
	}
	if input.Selected != nil {
		updates["selected"] = *input.Selected
	}
	if len(updates) > 0 {
		if err := s.cartRepo.UpdateFields(item.ID, updates); err != nil {
			return nil, err
		}
	}
	return s.cartRepo.GetByUserAndSku(input.UserID, input.SkuID)
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(userID uint, skuID uint) error {
	item, err := s.cartRepo.GetByUserAndSku(userID, skuID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrCartItemNotFound
	}
	return s.cartRepo.Delete(userID, skuID)
}

// ListItems 获取用户购物车
func (s *CartService) ListItems(userID uint) ([]models.CartItem, error) {
	return s.cartRepo.ListByUser(userID, false)
}
