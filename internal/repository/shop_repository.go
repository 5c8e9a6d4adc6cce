package repository

import (
	"errors"
	"strings"

	"github.com/velamall/internal/models"

	"gorm.io/gorm"
)

// ShopRepository 店铺数据访问接口
type ShopRepository interface {
	Create(shop *models.Shop) error
	GetByID(id uint) (*models.Shop, error)
	GetByIDs(ids []uint) ([]models.Shop, error)
	GetBySlug(slug string) (*models.Shop, error)
	List(page, pageSize int) ([]models.Shop, int64, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormShopRepository
}

// GormShopRepository GORM 实现
type GormShopRepository struct {
	db *gorm.DB
}

// NewShopRepository 创建店铺仓库
func NewShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShopRepository) WithTx(tx *gorm.DB) *GormShopRepository {
	if tx == nil {
		return r
	}
	return &GormShopRepository{db: tx}
}

// Create 创建店铺
func (r *GormShopRepository) Create(shop *models.Shop) error {
	return r.db.Create(shop).Error
}

// GetByID 根据 ID 获取店铺
func (r *GormShopRepository) GetByID(id uint) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.First(&shop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shop, nil
}

// GetByIDs 批量获取店铺
func (r *GormShopRepository) GetByIDs(ids []uint) ([]models.Shop, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var shops []models.Shop
	if err := r.db.Where("id IN ?", ids).Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// GetBySlug 根据 slug 获取店铺
func (r *GormShopRepository) GetBySlug(slug string) (*models.Shop, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var shop models.Shop
	if err := r.db.Where("slug = ?", slug).First(&shop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shop, nil
}

// List 分页查询店铺
func (r *GormShopRepository) List(page, pageSize int) ([]models.Shop, int64, error) {
	query := r.db.Model(&models.Shop{}).Where("is_active = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shops []models.Shop
	if err := applyPagination(query.Order("id ASC"), page, pageSize).
		Find(&shops).Error; err != nil {
		return nil, 0, err
	}
	return shops, total, nil
}

// UpdateFields 更新指定字段
func (r *GormShopRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Shop{}).Where("id = ?", id).Updates(updates).Error
}
