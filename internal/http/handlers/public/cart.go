package public

import (
	"errors"
	"strconv"

	"github.com/velamall/internal/http/response"
	"github.com/velamall/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 加购请求
type CartItemRequest struct {
	SkuID    uint `json:"sku_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// CartItemUpdateRequest 购物车项更新请求
type CartItemUpdateRequest struct {
	Quantity *int  `json:"quantity"`
	Selected *bool `json:"selected"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	items, err := h.CartService.ListItems(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "cart fetch failed", err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	item, err := h.CartService.AddItem(service.AddItemInput{
		UserID:   uid,
		SkuID:    req.SkuID,
		Quantity: req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartItemInvalid):
			respondError(c, response.CodeBadRequest, "invalid cart item", nil)
		case errors.Is(err, service.ErrSkuNotFound):
			respondError(c, response.CodeBadRequest, "sku not found", nil)
		case errors.Is(err, service.ErrSkuNotOnSale):
			respondError(c, response.CodeBadRequest, "product not on sale", nil)
		case errors.Is(err, service.ErrSkuStockShortage):
			respondError(c, response.CodeConflict, "insufficient stock", nil)
		default:
			respondError(c, response.CodeInternal, "cart update failed", err)
		}
		return
	}
	response.Success(c, item)
}

// UpdateCartItem 修改购物车项
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	skuID, err := strconv.ParseUint(c.Param("sku_id"), 10, 64)
	if err != nil || skuID == 0 {
		respondError(c, response.CodeBadRequest, "invalid sku id", nil)
		return
	}
	var req CartItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	item, err := h.CartService.UpdateItem(service.UpdateItemInput{
		UserID:   uid,
		SkuID:    uint(skuID),
		Quantity: req.Quantity,
		Selected: req.Selected,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartItemNotFound):
			respondError(c, response.CodeNotFound, "cart item not found", nil)
		case errors.Is(err, service.ErrCartItemInvalid):
			respondError(c, response.CodeBadRequest, "invalid cart item", nil)
		case errors.Is(err, service.ErrSkuStockShortage):
			respondError(c, response.CodeConflict, "insufficient stock", nil)
		default:
			respondError(c, response.CodeInternal, "cart update failed", err)
		}
		return
	}
	response.Success(c, item)
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	skuID, err := strconv.ParseUint(c.Param("sku_id"), 10, 64)
	if err != nil || skuID == 0 {
		respondError(c, response.CodeBadRequest, "invalid sku id", nil)
		return
	}
	if err := h.CartService.RemoveItem(uid, uint(skuID)); err != nil {
		respondError(c, response.CodeInternal, "cart update failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
