package repository

import (
	"github.com/velamall/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository 评价数据访问接口
type ReviewRepository interface {
	Create(review *models.Review) error
	ExistsByOrderAndSku(orderID uint, skuID uint) (bool, error)
	List(filter ReviewListFilter) ([]models.Review, int64, error)
	WithTx(tx *gorm.DB) *GormReviewRepository
}

// GormReviewRepository GORM 实现
type GormReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓库
func NewReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReviewRepository) WithTx(tx *gorm.DB) *GormReviewRepository {
	if tx == nil {
		return r
	}
	return &GormReviewRepository{db: tx}
}

// Create 创建评价
func (r *GormReviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

// ExistsByOrderAndSku 判断同订单同 SKU 是否已有评价
func (r *GormReviewRepository) ExistsByOrderAndSku(orderID uint, skuID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Review{}).
		Where("order_id = ? AND sku_id = ?", orderID, skuID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List 分页查询评价
func (r *GormReviewRepository) List(filter ReviewListFilter) ([]models.Review, int64, error) {
	query := r.db.Model(&models.Review{})
	if filter.SpuID > 0 {
		query = query.Where("spu_id = ?", filter.SpuID)
	}
	if filter.SkuID > 0 {
		query = query.Where("sku_id = ?", filter.SkuID)
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.MinRating > 0 {
		query = query.Where("rating >= ?", filter.MinRating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	if err := applyPagination(query.Order("created_at DESC"), filter.Page, filter.PageSize).
		Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}
