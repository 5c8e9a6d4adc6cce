package public

import (
	"strconv"

	"github.com/velamall/internal/http/response"
	"github.com/velamall/internal/repository"
	"github.com/velamall/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateReviewRequest 创建评价请求
type CreateReviewRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	SkuID   uint   `json:"sku_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required"`
	Content string `json:"content"`
}

// CreateReview 创建评价，仅限已完成订单的买家
func (h *Handler) CreateReview(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	review, err := h.ReviewService.CreateReview(service.CreateReviewInput{
		UserID:  uid,
		OrderID: req.OrderID,
		SkuID:   req.SkuID,
		Rating:  req.Rating,
		Content: req.Content,
	})
	if err != nil {
		respondReviewCreateError(c, err)
		return
	}
	response.Created(c, review)
}

// ListReviews 获取评价列表
func (h *Handler) ListReviews(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ReviewListFilter{
		Page:     page,
		PageSize: pageSize,
	}
	if raw := c.Query("spu_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.SpuID = uint(id)
		}
	}
	if raw := c.Query("sku_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.SkuID = uint(id)
		}
	}
	if raw := c.Query("min_rating"); raw != "" {
		if rating, err := strconv.Atoi(raw); err == nil {
			filter.MinRating = rating
		}
	}

	reviews, total, err := h.ReviewService.ListReviews(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "review list failed", err)
		return
	}
	response.SuccessWithPage(c, reviews, response.NewPagination(page, pageSize, total))
}
