package repository

import (
	"errors"

	"github.com/velamall/internal/models"

	"gorm.io/gorm"
)

// SkuRepository SKU 数据访问接口
type SkuRepository interface {
	Create(sku *models.Sku) error
	GetByID(id uint) (*models.Sku, error)
	GetByIDs(ids []uint) ([]models.Sku, error)
	ListBySpu(spuID uint) ([]models.Sku, error)
	ExistsTierCode(spuID uint, tierCode string) (bool, error)
	PurgeDeletedTierCode(spuID uint, tierCode string) error
	Update(sku *models.Sku) error
	UpdateFields(id uint, updates map[string]interface{}) error
	Delete(id uint) error
	DecrementStock(id uint, quantity int) (bool, error)
	IncrementStock(id uint, quantity int) error
	WithTx(tx *gorm.DB) *GormSkuRepository
}

// GormSkuRepository GORM 实现
type GormSkuRepository struct {
	db *gorm.DB
}

// NewSkuRepository 创建 SKU 仓库
func NewSkuRepository(db *gorm.DB) *GormSkuRepository {
	return &GormSkuRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSkuRepository) WithTx(tx *gorm.DB) *GormSkuRepository {
	if tx == nil {
		return r
	}
	return &GormSkuRepository{db: tx}
}

// Create 创建 SKU
func (r *GormSkuRepository) Create(sku *models.Sku) error {
	return r.db.Create(sku).Error
}

// GetByID 根据 ID 获取 SKU
func (r *GormSkuRepository) GetByID(id uint) (*models.Sku, error) {
	var sku models.Sku
	if err := r.db.Preload("Spu").First(&sku, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sku, nil
}

// GetByIDs 批量获取 SKU
func (r *GormSkuRepository) GetByIDs(ids []uint) ([]models.Sku, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var skus []models.Sku
	if err := r.db.Preload("Spu").Where("id IN ?", ids).Find(&skus).Error; err != nil {
		return nil, err
	}
	return skus, nil
}

// ListBySpu 获取 SPU 下全部 SKU
func (r *GormSkuRepository) ListBySpu(spuID uint) ([]models.Sku, error) {
	var skus []models.Sku
	if err := r.db.Where("spu_id = ?", spuID).
		Order("sort_order ASC, id ASC").
		Find(&skus).Error; err != nil {
		return nil, err
	}
	return skus, nil
}

// ExistsTierCode 判断同 SPU 下是否已有相同索引元组的 SKU
func (r *GormSkuRepository) ExistsTierCode(spuID uint, tierCode string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Sku{}).
		Where("spu_id = ? AND tier_code = ?", spuID, tierCode).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeDeletedTierCode 物理清除同索引元组的软删除残留，腾出唯一索引位
func (r *GormSkuRepository) PurgeDeletedTierCode(spuID uint, tierCode string) error {
	return r.db.Unscoped().
		Where("spu_id = ? AND tier_code = ? AND deleted_at IS NOT NULL", spuID, tierCode).
		Delete(&models.Sku{}).Error
}

// Update 全量更新 SKU
func (r *GormSkuRepository) Update(sku *models.Sku) error {
	return r.db.Save(sku).Error
}

// UpdateFields 更新指定字段
func (r *GormSkuRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Sku{}).Where("id = ?", id).Updates(updates).Error
}

// Delete 软删除 SKU
func (r *GormSkuRepository) Delete(id uint) error {
	return r.db.Delete(&models.Sku{}, id).Error
}

// DecrementStock 条件扣减库存，库存不足时返回 false
func (r *GormSkuRepository) DecrementStock(id uint, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, nil
	}
	result := r.db.Model(&models.Sku{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementStock 归还库存
func (r *GormSkuRepository) IncrementStock(id uint, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	return r.db.Model(&models.Sku{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity)).Error
}
