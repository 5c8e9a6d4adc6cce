package repository

import (
	"errors"

	"github.com/velamall/internal/models"

	"gorm.io/gorm"
)

// InventoryRepository 库存台账数据访问接口
type InventoryRepository interface {
	Create(inventory *models.Inventory) error
	GetBySkuID(skuID uint) (*models.Inventory, error)
	ListByShop(shopID uint) ([]models.Inventory, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	DeleteBySkuID(skuID uint) error
	ReserveBySkuID(skuID uint, quantity int) (bool, error)
	ReleaseBySkuID(skuID uint, quantity int) error
	CommitBySkuID(skuID uint, quantity int) error
	WithTx(tx *gorm.DB) *GormInventoryRepository
}

// GormInventoryRepository GORM 实现
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存仓库
func NewInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormInventoryRepository) WithTx(tx *gorm.DB) *GormInventoryRepository {
	if tx == nil {
		return r
	}
	return &GormInventoryRepository{db: tx}
}

// Create 创建库存台账
func (r *GormInventoryRepository) Create(inventory *models.Inventory) error {
	return r.db.Create(inventory).Error
}

// GetBySkuID 根据 SKU 获取库存台账
func (r *GormInventoryRepository) GetBySkuID(skuID uint) (*models.Inventory, error) {
	var inventory models.Inventory
	if err := r.db.Where("sku_id = ?", skuID).First(&inventory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inventory, nil
}

// ListByShop 获取店铺全部库存台账
func (r *GormInventoryRepository) ListByShop(shopID uint) ([]models.Inventory, error) {
	var inventories []models.Inventory
	if err := r.db.Preload("Warehouse").
		Where("shop_id = ?", shopID).
		Order("id ASC").
		Find(&inventories).Error; err != nil {
		return nil, err
	}
	return inventories, nil
}

// UpdateFields 更新指定字段
func (r *GormInventoryRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Inventory{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteBySkuID 删除 SKU 对应的库存台账
func (r *GormInventoryRepository) DeleteBySkuID(skuID uint) error {
	return r.db.Where("sku_id = ?", skuID).Delete(&models.Inventory{}).Error
}

// ReserveBySkuID 下单占用库存，可用量不足时返回 false
func (r *GormInventoryRepository) ReserveBySkuID(skuID uint, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, nil
	}
	result := r.db.Model(&models.Inventory{}).
		Where("sku_id = ? AND stock - reserved >= ?", skuID, quantity).
		UpdateColumn("reserved", gorm.Expr("reserved + ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseBySkuID 释放占用（取消 / 拒绝）
func (r *GormInventoryRepository) ReleaseBySkuID(skuID uint, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	return r.db.Model(&models.Inventory{}).
		Where("sku_id = ? AND reserved >= ?", skuID, quantity).
		UpdateColumn("reserved", gorm.Expr("reserved - ?", quantity)).Error
}

// CommitBySkuID 订单完成后核销占用与在库数量
func (r *GormInventoryRepository) CommitBySkuID(skuID uint, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	return r.db.Model(&models.Inventory{}).
		Where("sku_id = ? AND reserved >= ? AND stock >= ?", skuID, quantity, quantity).
		UpdateColumns(map[string]interface{}{
			"reserved": gorm.Expr("reserved - ?", quantity),
			"stock":    gorm.Expr("stock - ?", quantity),
		}).Error
}
