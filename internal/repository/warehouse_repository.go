package repository

import (
	"errors"

	"github.com/velamall/internal/models"

	"gorm.io/gorm"
)

// WarehouseRepository 仓库数据访问接口
type WarehouseRepository interface {
	Create(warehouse *models.Warehouse) error
	GetByID(id uint) (*models.Warehouse, error)
	List(page, pageSize int) ([]models.Warehouse, int64, error)
	AddStock(id uint, delta int) error
	WithTx(tx *gorm.DB) *GormWarehouseRepository
}

// GormWarehouseRepository GORM 实现
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewWarehouseRepository 创建仓库数据仓库
func NewWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWarehouseRepository) WithTx(tx *gorm.DB) *GormWarehouseRepository {
	if tx == nil {
		return r
	}
	return &GormWarehouseRepository{db: tx}
}

// Create 创建仓库
func (r *GormWarehouseRepository) Create(warehouse *models.Warehouse) error {
	return r.db.Create(warehouse).Error
}

// GetByID 根据 ID 获取仓库
func (r *GormWarehouseRepository) GetByID(id uint) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	if err := r.db.First(&warehouse, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &warehouse, nil
}

// List 分页查询仓库
func (r *GormWarehouseRepository) List(page, pageSize int) ([]models.Warehouse, int64, error) {
	query := r.db.Model(&models.Warehouse{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var warehouses []models.Warehouse
	if err := applyPagination(query.Order("id ASC"), page, pageSize).
		Find(&warehouses).Error; err != nil {
		return nil, 0, err
	}
	return warehouses, total, nil
}

// AddStock 调整仓库聚合库存计数（delta 可为负）
func (r *GormWarehouseRepository) AddStock(id uint, delta int) error {
	if delta == 0 {
		return nil
	}
	return r.db.Model(&models.Warehouse{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta)).Error
}
