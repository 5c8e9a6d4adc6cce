package service

import (
	"strings"

	"github.com/velamall/internal/constants"
	"github.com/velamall/internal/logger"
	"github.com/velamall/internal/models"
	"github.com/velamall/internal/repository"
)

// ReviewService 评价服务
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	orderRepo  repository.OrderRepository
}

// NewReviewService 创建评价服务
func NewReviewService(reviewRepo repository.ReviewRepository, orderRepo repository.OrderRepository) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		orderRepo:  orderRepo,
	}
}

// CreateReviewInput 创建评价输入
type CreateReviewInput struct {
	UserID  uint
	OrderID uint
	SkuID   uint
	Rating  int
	Content string
}

// CreateReview 创建评价。
// 前置校验按固定顺序短路：已评价 → 订单存在 → 订单已完成 → 归属买家 → SKU 在订单项内。
func (s *ReviewService) CreateReview(input CreateReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrReviewRatingInvalid
	}

	exists, err := s.reviewRepo.ExistsByOrderAndSku(input.OrderID, input.SkuID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrReviewExists
	}

	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusCompleted {
		return nil, ErrReviewOrderNotDone
	}
	if order.UserID != input.UserID {
		return nil, ErrReviewNotCustomer
	}

	item, err := s.orderRepo.GetItem(input.OrderID, input.SkuID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrReviewSkuNotInOrder
	}

	review := &models.Review{
		OrderID: input.OrderID,
		SkuID:   input.SkuID,
		SpuID:   item.SpuID,
		UserID:  input.UserID,
		Rating:  input.Rating,
		Content: strings.TrimSpace(input.Content),
	}
	if err := s.reviewRepo.Create(review); err != nil {
		logger.Errorw("review_create_failed",
			"order_id", input.OrderID,
			"sku_id", input.SkuID,
			"user_id", input.UserID,
			"error", err,
		)
		return nil, ErrReviewCreateFailed
	}
	return review, nil
}

// ListReviews 分页查询评价
func (s *ReviewService) ListReviews(filter repository.ReviewListFilter) ([]models.Review, int64, error) {
	return s.reviewRepo.List(filter)
}
