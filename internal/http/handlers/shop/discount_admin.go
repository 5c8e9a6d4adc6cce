package shop

import (
	"errors"
	"strconv"
	"time"

	"github.com/velamall/internal/http/response"
	"github.com/velamall/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateDiscountRequest 创建优惠码请求
type CreateDiscountRequest struct {
	Code     string          `json:"code" binding:"required"`
	Kind     string          `json:"kind" binding:"required"`
	Value    decimal.Decimal `json:"value"`
	MinOrder decimal.Decimal `json:"min_order"`
	MaxUses  int             `json:"max_uses"`
	StartsAt *time.Time      `json:"starts_at"`
	EndsAt   *time.Time      `json:"ends_at"`
}

// CreateDiscount 创建优惠码
func (h *Handler) CreateDiscount(c *gin.Context) {
	shopID, ok := getShopID(c)
	if !ok {
		return
	}
	var req CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	discount, err := h.DiscountService.CreateDiscount(service.CreateDiscountInput{
		ShopID:   shopID,
		Code:     req.Code,
		Kind:     req.Kind,
		Value:    req.Value,
		MinOrder: req.MinOrder,
		MaxUses:  req.MaxUses,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDiscountKindBad):
			respondError(c, response.CodeBadRequest, "invalid discount kind or value", nil)
		case errors.Is(err, service.ErrDiscountCodeExists):
			respondError(c, response.CodeConflict, "discount code already exists", nil)
		case errors.Is(err, service.ErrShopNotFound):
			respondError(c, response.CodeBadRequest, "shop not found", nil)
		default:
			respondError(c, response.CodeInternal, "discount creation failed", err)
		}
		return
	}
	response.Created(c, discount)
}

// ListDiscounts 获取本店优惠码列表
func (h *Handler) ListDiscounts(c *gin.Context) {
	shopID, ok := getShopID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	discounts, total, err := h.DiscountService.ListDiscounts(shopID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "discount list failed", err)
		return
	}
	response.SuccessWithPage(c, discounts, response.NewPagination(page, pageSize, total))
}

// SetDiscountActiveRequest 启停优惠码请求
type SetDiscountActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetDiscountActive 启用/停用优惠码
func (h *Handler) SetDiscountActive(c *gin.Context) {
	shopID, ok := getShopID(c)
	if !ok {
		return
	}
	discountID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || discountID == 0 {
		respondError(c, response.CodeBadRequest, "invalid discount id", nil)
		return
	}
	var req SetDiscountActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.DiscountService.SetDiscountActive(shopID, uint(discountID), *req.Active); err != nil {
		if errors.Is(err, service.ErrDiscountNotFound) {
			respondError(c, response.CodeNotFound, "discount not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "discount update failed", err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}
