package shop

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/velamall/internal/http/response"
	"github.com/velamall/internal/repository"
	"github.com/velamall/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOrders 获取本店子订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	shopID, ok := getShopID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		ShopID:      shopID,
		Status:      strings.TrimSpace(c.Query("status")),
		PaymentType: strings.TrimSpace(c.Query("payment_type")),
		OrderNo:     strings.TrimSpace(c.Query("order_no")),
		Sort:        strings.TrimSpace(c.Query("sort")),
	}
	if raw := c.Query("created_from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if raw := c.Query("created_to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedTo = &t
		}
	}

	orders, total, err := h.OrderService.ListOrdersByShop(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order list failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

func respondShopOrderActionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "order not found", nil)
	case errors.Is(err, service.ErrOrderShopMismatch):
		respondError(c, response.CodeNotFound, "order not found", nil)
	case errors.Is(err, service.ErrOrderTransitionInvalid):
		respondError(c, response.CodeConflict, "order status does not allow this action", nil)
	case errors.Is(err, service.ErrRejectReasonRequired):
		respondError(c, response.CodeBadRequest, "reject reason is required", nil)
	case errors.Is(err, service.ErrPaymentOrderNotOpen):
		respondError(c, response.CodeConflict, "order is not paid", nil)
	case errors.Is(err, service.ErrPaymentTypeInvalid):
		respondError(c, response.CodeBadRequest, "wrong payment type for this action", nil)
	case errors.Is(err, service.ErrPaymentOrderPaid):
		respondError(c, response.CodeConflict, "order already paid", nil)
	case errors.Is(err, service.ErrOrderFetchFailed):
		respondError(c, response.CodeInternal, "order fetch failed", err)
	default:
		respondError(c, response.CodeInternal, "order update failed", err)
	}
}

func parseOrderID(c *gin.Context) (uint, bool) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return 0, false
	}
	return uint(orderID), true
}

// ApproveOrder 店铺确认接单
func (h *Handler) ApproveOrder(c *gin.Context) {
	shopID, ok := getShopID(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.ApproveOrder(shopID, orderID)
	if err != nil {
		respondShopOrderActionError(c, err)
		return
	}
	response.Success(c, order)
}

// RejectOrderRequest 拒单请求
type RejectOrderRequest struct {
	Reason string `json:"reason"`
}

// RejectOrder 店铺拒单
func (h *Handler) RejectOrder(c *gin.Context) {
	shopID, ok := getShopID(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	var req RejectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	order, err := h.OrderService.RejectOrder(shopID, orderID, req.Reason)
	if err != nil {
		respondShopOrderActionError(c, err)
		return
	}
	response.Success(c, order)
}

// CompleteOrder 店铺完成订单（交付后）
func (h *Handler) CompleteOrder(c *gin.Context) {
	shopID, ok := getShopID(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.CompleteOrder(shopID, orderID)
	if err != nil {
		respondShopOrderActionError(c, err)
		return
	}
	response.Success(c, order)
}

// ConfirmCODPaid 店铺确认货到付款已收款
func (h *Handler) ConfirmCODPaid(c *gin.Context) {
	shopID, ok := getShopID(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	payment, err := h.PaymentService.ConfirmCODPayment(shopID, orderID)
	if err != nil {
		respondShopOrderActionError(c, err)
		return
	}
	response.Success(c, payment)
}
