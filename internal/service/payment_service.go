package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/velamall/internal/cache"
	"github.com/velamall/internal/constants"
	"github.com/velamall/internal/logger"
	"github.com/velamall/internal/models"
	"github.com/velamall/internal/payment/vnpay"
	"github.com/velamall/internal/queue"
	"github.com/velamall/internal/repository"

	"gorm.io/gorm"
)

// paymentCreateAttempts 支付链接生成的有限重试次数
const paymentCreateAttempts = 3

// paymentCreateLockTTL 同一订单支付创建锁的持有时间
const paymentCreateLockTTL = 30 * time.Second

// PaymentService 支付服务
type PaymentService struct {
	orderRepo    repository.OrderRepository
	paymentRepo  repository.PaymentRepository
	orderService *OrderService
	queueClient  *queue.Client
	gatewayCfg   *vnpay.Config
}

// NewPaymentService 创建支付服务
func NewPaymentService(orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository, orderService *OrderService, queueClient *queue.Client, gatewayCfg *vnpay.Config) *PaymentService {
	return &PaymentService{
		orderRepo:    orderRepo,
		paymentRepo:  paymentRepo,
		orderService: orderService,
		queueClient:  queueClient,
		gatewayCfg:   gatewayCfg,
	}
}

// CreateVNPayPaymentInput 创建 VNPay 支付请求
type CreateVNPayPaymentInput struct {
	OrderID  uint
	UserID   uint
	BankCode string
	Locale   string
	ClientIP string
	Context  context.Context
}

// CreateVNPayPayment 为子订单生成 VNPay 跳转链接。
// 同一订单并发创建由 Redis 锁串行化，未过期的待支付记录直接复用。
func (s *PaymentService) CreateVNPayPayment(input CreateVNPayPaymentInput) (*models.Payment, error) {
	if err := vnpay.ValidateConfig(s.gatewayCfg); err != nil {
		return nil, ErrPaymentGatewayFailed
	}
	ctx := input.Context
	if ctx == nil {
		ctx = context.Background()
	}

	lockKey := fmt.Sprintf("payment:create:%d", input.OrderID)
	locked, err := cache.TryLock(ctx, lockKey, paymentCreateLockTTL)
	if err != nil {
		logger.Warnw("payment_create_lock_failed",
			"order_id", input.OrderID,
			"error", err,
		)
	} else if !locked {
		return nil, ErrPaymentInProgress
	}
	if locked {
		defer func() {
			if err := cache.Unlock(ctx, lockKey); err != nil {
				logger.Warnw("payment_create_unlock_failed",
					"order_id", input.OrderID,
					"error", err,
				)
			}
		}()
	}

	order, err := s.orderRepo.GetByIDAndUser(input.OrderID, input.UserID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.ParentID == nil {
		// 支付挂在按店铺拆分后的子订单上
		return nil, ErrPaymentOrderNotOpen
	}
	if order.PaymentType != constants.PaymentTypeVNPay {
		return nil, ErrPaymentTypeInvalid
	}
	if order.PaymentPaid {
		return nil, ErrPaymentOrderPaid
	}
	if order.Status != constants.OrderStatusCreated {
		return nil, ErrPaymentOrderNotOpen
	}

	now := time.Now()
	if existing, err := s.paymentRepo.GetLatestByOrderID(order.ID); err == nil && existing != nil {
		if existing.Status == constants.PaymentStatusPending &&
			existing.PayURL != "" &&
			existing.ExpiresAt != nil && existing.ExpiresAt.After(now) {
			return existing, nil
		}
	}

	return s.createVNPayPaymentRecord(order, input.BankCode, input.Locale, input.ClientIP)
}

// createVNPayPaymentRecord 生成新的支付记录与跳转链接，有限重试
func (s *PaymentService) createVNPayPaymentRecord(order *models.Order, bankCode, locale, clientIP string) (*models.Payment, error) {
	var lastErr error
	for attempt := 1; attempt <= paymentCreateAttempts; attempt++ {
		txnRef := fmt.Sprintf("%s-%s", order.OrderNo, randNumeric(4))
		result, err := vnpay.BuildPaymentURL(s.gatewayCfg, vnpay.CreateInput{
			TxnRef:    txnRef,
			Amount:    order.GrandTotal.Decimal,
			OrderInfo: fmt.Sprintf("Thanh toan don hang %s", order.OrderNo),
			ClientIP:  strings.TrimSpace(clientIP),
			BankCode:  bankCode,
			Locale:    locale,
		})
		if err != nil {
			lastErr = err
			logger.Warnw("payment_url_build_failed",
				"order_id", order.ID,
				"order_no", order.OrderNo,
				"attempt", attempt,
				"error", err,
			)
			continue
		}

		payment := &models.Payment{
			OrderID:   order.ID,
			TxnRef:    txnRef,
			Provider:  constants.PaymentProviderVNPay,
			Amount:    order.GrandTotal,
			Currency:  order.Currency,
			Status:    constants.PaymentStatusPending,
			BankCode:  strings.TrimSpace(bankCode),
			PayURL:    result.PayURL,
			ClientIP:  strings.TrimSpace(clientIP),
			ExpiresAt: &result.ExpiresAt,
		}
		if err := s.paymentRepo.Create(payment); err != nil {
			lastErr = err
			logger.Warnw("payment_record_create_failed",
				"order_id", order.ID,
				"txn_ref", txnRef,
				"attempt", attempt,
				"error", err,
			)
			continue
		}
		s.enqueueStatusSync(payment)
		return payment, nil
	}
	logger.Errorw("payment_create_exhausted",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"error", lastErr,
	)
	return nil, ErrPaymentCreateFailed
}

// enqueueStatusSync 支付有效期过后触发一次状态对账
func (s *PaymentService) enqueueStatusSync(payment *models.Payment) {
	if s.queueClient == nil || !s.queueClient.Enabled() || payment.ExpiresAt == nil {
		return
	}
	delay := time.Until(*payment.ExpiresAt) + time.Minute
	if err := s.queueClient.EnqueuePaymentStatusSync(queue.PaymentStatusSyncPayload{
		PaymentID: payment.ID,
	}, delay); err != nil {
		logger.Warnw("payment_status_sync_enqueue_failed",
			"payment_id", payment.ID,
			"error", err,
		)
	}
}

// ChildPaymentResult 单个子订单的支付链接生成结果
type ChildPaymentResult struct {
	OrderID uint            `json:"order_id"`
	OrderNo string          `json:"order_no"`
	Payment *models.Payment `json:"payment,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// CreateOrderWithVNPayResult 下单并发起支付的结果
type CreateOrderWithVNPayResult struct {
	Order    *models.Order        `json:"order"`
	Payments []ChildPaymentResult `json:"payments"`
}

// CreateOrderWithVNPay 一次结算创建全部子订单，再逐个生成支付链接。
// 订单全部创建完成后才发起支付；个别子订单链接生成失败不回滚订单。
func (s *PaymentService) CreateOrderWithVNPay(input CreateOrderInput, bankCode, locale string) (*CreateOrderWithVNPayResult, error) {
	input.PaymentType = constants.PaymentTypeVNPay
	order, err := s.orderService.CreateOrder(input)
	if err != nil {
		return nil, err
	}

	results := make([]ChildPaymentResult, 0, len(order.Children))
	for i := range order.Children {
		child := &order.Children[i]
		entry := ChildPaymentResult{
			OrderID: child.ID,
			OrderNo: child.OrderNo,
		}
		payment, err := s.createVNPayPaymentRecord(child, bankCode, locale, input.ClientIP)
		if err != nil {
			entry.Error = err.Error()
			logger.Warnw("order_child_payment_url_failed",
				"parent_order_id", order.ID,
				"child_order_id", child.ID,
				"error", err,
			)
		} else {
			entry.Payment = payment
		}
		results = append(results, entry)
	}
	return &CreateOrderWithVNPayResult{Order: order, Payments: results}, nil
}

// ConfirmCODPayment 店铺确认货到付款已收款
func (s *PaymentService) ConfirmCODPayment(shopID uint, orderID uint) (*models.Payment, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil || order.ParentID == nil {
		return nil, ErrOrderNotFound
	}
	if order.ShopID != shopID {
		return nil, ErrOrderShopMismatch
	}
	if order.PaymentType != constants.PaymentTypeCOD {
		return nil, ErrPaymentTypeInvalid
	}
	if order.PaymentPaid {
		return nil, ErrPaymentOrderPaid
	}

	now := time.Now()
	payment := &models.Payment{
		OrderID:  order.ID,
		TxnRef:   fmt.Sprintf("%s-COD", order.OrderNo),
		Provider: constants.PaymentProviderCOD,
		Amount:   order.GrandTotal,
		Currency: order.Currency,
		Status:   constants.PaymentStatusCompleted,
		PaidAt:   &now,
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.WithTx(tx).Create(payment); err != nil {
			return err
		}
		return s.markOrderPaid(tx, order, now)
	})
	if err != nil {
		logger.Errorw("payment_cod_confirm_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
		return nil, ErrPaymentCreateFailed
	}
	return payment, nil
}

// SyncPaymentStatus 对账支付记录：有效期已过仍未收到 IPN 的待支付记录置为失败
func (s *PaymentService) SyncPaymentStatus(paymentID uint) error {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return ErrPaymentNotFound
	}
	if payment.Status != constants.PaymentStatusPending {
		return nil
	}
	now := time.Now()
	if payment.ExpiresAt == nil || payment.ExpiresAt.After(now) {
		return nil
	}
	if err := s.paymentRepo.UpdateFields(payment.ID, map[string]interface{}{
		"status":     constants.PaymentStatusFailed,
		"updated_at": now,
	}); err != nil {
		return err
	}
	logger.Infow("payment_expired_marked_failed",
		"payment_id", payment.ID,
		"txn_ref", payment.TxnRef,
		"order_id", payment.OrderID,
	)
	return nil
}

// markOrderPaid 在事务内标记子订单已支付，并在全部子订单付清后回写父订单
func (s *PaymentService) markOrderPaid(tx *gorm.DB, order *models.Order, now time.Time) error {
	orderRepo := s.orderRepo.WithTx(tx)
	if err := orderRepo.UpdateFields(order.ID, map[string]interface{}{
		"payment_paid": true,
		"paid_at":      now,
		"updated_at":   now,
	}); err != nil {
		return err
	}
	order.PaymentPaid = true
	order.PaidAt = &now

	if order.ParentID == nil {
		return nil
	}
	children, err := orderRepo.ListChildren(*order.ParentID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if child.ID == order.ID {
			continue
		}
		if !child.PaymentPaid && child.Status != constants.OrderStatusCanceled {
			return nil
		}
	}
	return orderRepo.UpdateFields(*order.ParentID, map[string]interface{}{
		"payment_paid": true,
		"paid_at":      now,
		"updated_at":   now,
	})
}
