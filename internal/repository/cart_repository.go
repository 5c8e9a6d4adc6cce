package repository

import (
	"errors"

	"github.com/velamall/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	Upsert(item *models.CartItem) error
	GetByUserAndSku(userID uint, skuID uint) (*models.CartItem, error)
	ListByUser(userID uint, selectedOnly bool) ([]models.CartItem, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	Delete(userID uint, skuID uint) error
	DeleteByUserAndSkus(userID uint, skuIDs []uint) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// Upsert 加购，同 SKU 已存在时累加数量
func (r *GormCartRepository) Upsert(item *models.CartItem) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "sku_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", item.Quantity),
			"selected": true,
		}),
	}).Create(item).Error
}

// GetByUserAndSku 获取购物车项
func (r *GormCartRepository) GetByUserAndSku(userID uint, skuID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Where("user_id = ? AND sku_id = ?", userID, skuID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByUser 获取用户购物车
func (r *GormCartRepository) ListByUser(userID uint, selectedOnly bool) ([]models.CartItem, error) {
	query := r.db.Preload("Sku").Preload("Sku.Spu").Where("user_id = ?", userID)
	if selectedOnly {
		query = query.Where("selected = ?", true)
	}
	var items []models.CartItem
	if err := query.Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateFields 更新指定字段
func (r *GormCartRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.CartItem{}).Where("id = ?", id).Updates(updates).Error
}

// Delete 删除购物车项
func (r *GormCartRepository) Delete(userID uint, skuID uint) error {
	return r.db.Where("user_id = ? AND sku_id = ?", userID, skuID).
		Delete(&models.CartItem{}).Error
}

// DeleteByUserAndSkus 批量删除购物车项（下单成功后清理）
func (r *GormCartRepository) DeleteByUserAndSkus(userID uint, skuIDs []uint) error {
	if len(skuIDs) == 0 {
		return nil
	}
	return r.db.Where("user_id = ? AND sku_id IN ?", userID, skuIDs).
		Delete(&models.CartItem{}).Error
}
