package public

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/velamall/internal/http/response"
	"github.com/velamall/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutVNPayRequest 下单并发起 VNPay 支付请求
type CheckoutVNPayRequest struct {
	DiscountCodes map[uint]string `json:"discount_codes"`
	BankCode      string          `json:"bank_code"`
	Locale        string          `json:"locale"`
}

// CheckoutWithVNPay 结算并为每个子订单生成 VNPay 跳转链接
func (h *Handler) CheckoutWithVNPay(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutVNPayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	result, err := h.PaymentService.CreateOrderWithVNPay(service.CreateOrderInput{
		UserID:        uid,
		DiscountCodes: req.DiscountCodes,
		ClientIP:      c.ClientIP(),
	}, req.BankCode, req.Locale)
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}
	response.Created(c, result)
}

// CreateVNPayPaymentRequest 为子订单生成支付链接请求
type CreateVNPayPaymentRequest struct {
	OrderID  uint   `json:"order_id" binding:"required"`
	BankCode string `json:"bank_code"`
	Locale   string `json:"locale"`
}

// CreateVNPayPayment 为待支付子订单生成（或复用）VNPay 跳转链接
func (h *Handler) CreateVNPayPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateVNPayPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	payment, err := h.PaymentService.CreateVNPayPayment(service.CreateVNPayPaymentInput{
		OrderID:  req.OrderID,
		UserID:   uid,
		BankCode: req.BankCode,
		Locale:   req.Locale,
		ClientIP: c.ClientIP(),
		Context:  c.Request.Context(),
	})
	if err != nil {
		respondPaymentCreateError(c, err)
		return
	}
	response.Success(c, gin.H{
		"payment_id": payment.ID,
		"txn_ref":    payment.TxnRef,
		"pay_url":    payment.PayURL,
		"expires_at": payment.ExpiresAt,
	})
}

// VNPayReturn 浏览器回跳入口。
// 仅校验签名并回显结果，订单状态一律以 IPN 为准。
func (h *Handler) VNPayReturn(c *gin.Context) {
	result, err := h.PaymentService.HandleVNPayReturn(c.Request.URL.Query())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentSignInvalid):
			respondError(c, response.CodeBadRequest, "invalid signature", nil)
		case errors.Is(err, service.ErrPaymentNotFound):
			respondError(c, response.CodeNotFound, "payment not found", nil)
		default:
			respondError(c, response.CodeInternal, "payment return failed", err)
		}
		return
	}
	response.Success(c, result)
}

// VNPayIPN 网关服务端通知入口。
// 应答体是网关约定的 {RspCode, Message}，不走统一响应结构。
func (h *Handler) VNPayIPN(c *gin.Context) {
	resp := h.PaymentService.HandleVNPayIPN(c.Request.URL.Query())
	c.JSON(http.StatusOK, resp)
}

// GetOrderPayments 获取子订单的支付记录
func (h *Handler) GetOrderPayments(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}
	order, err := h.OrderRepo.GetByIDAndUser(uint(orderID), uid)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	if order == nil {
		respondError(c, response.CodeNotFound, "order not found", nil)
		return
	}
	payments, err := h.PaymentRepo.ListByOrderID(order.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "payment list failed", err)
		return
	}
	response.Success(c, gin.H{"payments": payments})
}
