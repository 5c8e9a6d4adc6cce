package repository

import (
	"errors"
	"strings"

	"github.com/velamall/internal/models"

	"gorm.io/gorm"
)

// SpuRepository 商品 SPU 数据访问接口
type SpuRepository interface {
	Create(spu *models.Spu) error
	GetByID(id uint) (*models.Spu, error)
	GetByIDWithSkus(id uint) (*models.Spu, error)
	GetBySlug(slug string) (*models.Spu, error)
	List(filter SpuListFilter) ([]models.Spu, int64, error)
	Update(spu *models.Spu) error
	UpdateFields(id uint, updates map[string]interface{}) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormSpuRepository
}

// GormSpuRepository GORM 实现
type GormSpuRepository struct {
	db *gorm.DB
}

// NewSpuRepository 创建 SPU 仓库
func NewSpuRepository(db *gorm.DB) *GormSpuRepository {
	return &GormSpuRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSpuRepository) WithTx(tx *gorm.DB) *GormSpuRepository {
	if tx == nil {
		return r
	}
	return &GormSpuRepository{db: tx}
}

// Create 创建 SPU
func (r *GormSpuRepository) Create(spu *models.Spu) error {
	return r.db.Create(spu).Error
}

// GetByID 根据 ID 获取 SPU
func (r *GormSpuRepository) GetByID(id uint) (*models.Spu, error) {
	var spu models.Spu
	if err := r.db.First(&spu, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &spu, nil
}

// GetByIDWithSkus 获取 SPU 并加载全部 SKU
func (r *GormSpuRepository) GetByIDWithSkus(id uint) (*models.Spu, error) {
	var spu models.Spu
	query := r.db.Preload("Skus", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	}).Preload("Category").Preload("Shop")
	if err := query.First(&spu, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &spu, nil
}

// GetBySlug 根据 slug 获取 SPU
func (r *GormSpuRepository) GetBySlug(slug string) (*models.Spu, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var spu models.Spu
	if err := r.db.Where("slug = ?", slug).First(&spu).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &spu, nil
}

// List 分页查询 SPU 列表
func (r *GormSpuRepository) List(filter SpuListFilter) ([]models.Spu, int64, error) {
	query := r.db.Model(&models.Spu{})
	if filter.ShopID > 0 {
		query = query.Where("shop_id = ?", filter.ShopID)
	}
	if filter.CategoryID > 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if filter.OnlyPublish {
		query = query.Where("is_publish = ? AND is_draft = ?", true, false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.WithSkus {
		query = query.Preload("Skus", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		})
	}

	var spus []models.Spu
	query = applyPagination(query.Order("created_at DESC"), filter.Page, filter.PageSize)
	if err := query.Find(&spus).Error; err != nil {
		return nil, 0, err
	}
	return spus, total, nil
}

// Update 全量更新 SPU
func (r *GormSpuRepository) Update(spu *models.Spu) error {
	return r.db.Save(spu).Error
}

// UpdateFields 更新指定字段
func (r *GormSpuRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Spu{}).Where("id = ?", id).Updates(updates).Error
}

// Delete 软删除 SPU
func (r *GormSpuRepository) Delete(id uint) error {
	return r.db.Delete(&models.Spu{}, id).Error
}
