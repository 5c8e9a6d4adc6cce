package public

import (
	"strconv"
	"strings"
	"time"

	"github.com/velamall/internal/http/response"
	"github.com/velamall/internal/repository"
	"github.com/velamall/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	PaymentType   string          `json:"payment_type" binding:"required"`
	DiscountCodes map[uint]string `json:"discount_codes"` // 店铺ID → 优惠码
}

// CreateOrder 结算购物车勾选项，按店铺拆分创建父子订单
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:        uid,
		PaymentType:   req.PaymentType,
		DiscountCodes: req.DiscountCodes,
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}
	response.Created(c, order)
}

// ListOrders 获取订单历史，支持状态/支付方式/时间范围过滤与排序
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      uid,
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

	orders, total, err := h.OrderService.ListOrdersByUser(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order list failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder 获取订单详情（父订单含全部子订单）
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}
	order, err := h.OrderService.GetOrderByUser(uint(orderID), uid)
	if err != nil {
		respondOrderFetchError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 买家取消订单（父订单级联取消所有子订单）
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}
	order, err := h.OrderService.CancelOrder(uint(orderID), uid)
	if err != nil {
		respondOrderCancelError(c, err)
		return
	}
	response.Success(c, order)
}
