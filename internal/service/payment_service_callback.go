package service

import (
	"net/url"
	"time"

	"github.com/velamall/internal/constants"
	"github.com/velamall/internal/logger"
	"github.com/velamall/internal/models"
	"github.com/velamall/internal/payment/vnpay"

	"gorm.io/gorm"
)

// VNPayReturnResult 同步跳转的确认结果，仅供前端展示
type VNPayReturnResult struct {
	TxnRef       string          `json:"txn_ref"`
	OrderID      uint            `json:"order_id"`
	Success      bool            `json:"success"`
	ResponseCode string          `json:"response_code"`
	Payment      *models.Payment `json:"payment,omitempty"`
}

// IPNResponse 返回给 VNPay 网关的应答
type IPNResponse struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

func ipnResponse(code, message string) *IPNResponse {
	return &IPNResponse{RspCode: code, Message: message}
}

// HandleVNPayReturn 处理用户同步跳转。
// 只校验签名并反映当前支付结果，不改写任何状态，最终状态以 IPN 为准。
func (s *PaymentService) HandleVNPayReturn(query url.Values) (*VNPayReturnResult, error) {
	data, err := vnpay.VerifyCallback(s.gatewayCfg, query)
	if err != nil {
		logger.Warnw("payment_return_verify_failed", "error", err)
		return nil, ErrPaymentSignInvalid
	}

	payment, err := s.paymentRepo.GetByTxnRef(data.TxnRef)
	if err != nil {
		return nil, ErrPaymentNotFound
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	logger.Infow("payment_return_received",
		"txn_ref", data.TxnRef,
		"order_id", payment.OrderID,
		"response_code", data.ResponseCode,
		"gateway_txn_no", data.TransactionNo,
	)
	return &VNPayReturnResult{
		TxnRef:       data.TxnRef,
		OrderID:      payment.OrderID,
		Success:      data.Success(),
		ResponseCode: data.ResponseCode,
		Payment:      payment,
	}, nil
}

// HandleVNPayIPN 处理服务器端异步通知，权威且幂等。
// 重复投递同一结果时返回与首次一致的应答，不产生二次状态迁移。
func (s *PaymentService) HandleVNPayIPN(query url.Values) *IPNResponse {
	data, err := vnpay.VerifyCallback(s.gatewayCfg, query)
	if err != nil {
		logger.Warnw("payment_ipn_verify_failed", "error", err)
		return ipnResponse(constants.VNPayIPNSignatureInvalid, "Invalid signature")
	}

	payment, err := s.paymentRepo.GetByTxnRef(data.TxnRef)
	if err != nil {
		logger.Errorw("payment_ipn_fetch_failed",
			"txn_ref", data.TxnRef,
			"error", err,
		)
		return ipnResponse(constants.VNPayIPNUnknownError, "Unknown error")
	}
	if payment == nil {
		return ipnResponse(constants.VNPayIPNOrderNotFound, "Order not found")
	}

	if !data.Amount.IsZero() && !data.Amount.Equal(payment.Amount.Decimal) {
		logger.Warnw("payment_ipn_amount_mismatch",
			"txn_ref", data.TxnRef,
			"stored_amount", payment.Amount.String(),
			"callback_amount", data.Amount.String(),
		)
		return ipnResponse(constants.VNPayIPNAmountInvalid, "Invalid amount")
	}

	targetStatus := constants.PaymentStatusFailed
	if data.Success() {
		targetStatus = constants.PaymentStatusCompleted
	}

	// 幂等处理：终态不再回退
	switch payment.Status {
	case constants.PaymentStatusCompleted, constants.PaymentStatusFailed:
		if payment.Status == targetStatus {
			s.updateCallbackMeta(payment, data)
			logger.Infow("payment_ipn_idempotent",
				"txn_ref", data.TxnRef,
				"status", payment.Status,
			)
			return ipnResponse(constants.VNPayIPNConfirmSuccess, "Confirm success")
		}
		logger.Warnw("payment_ipn_state_conflict",
			"txn_ref", data.TxnRef,
			"stored_status", payment.Status,
			"callback_status", targetStatus,
		)
		return ipnResponse(constants.VNPayIPNOrderConfirmed, "Order already confirmed")
	}

	order, err := s.orderRepo.GetByID(payment.OrderID)
	if err != nil || order == nil {
		logger.Errorw("payment_ipn_order_fetch_failed",
			"txn_ref", data.TxnRef,
			"order_id", payment.OrderID,
			"error", err,
		)
		return ipnResponse(constants.VNPayIPNUnknownError, "Unknown error")
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":           targetStatus,
			"vnpay_txn_no":     data.TransactionNo,
			"response_code":    data.ResponseCode,
			"bank_code":        data.BankCode,
			"callback_payload": callbackPayload(data),
			"callback_at":      now,
			"updated_at":       now,
		}
		if targetStatus == constants.PaymentStatusCompleted {
			updates["paid_at"] = now
		}
		if err := s.paymentRepo.WithTx(tx).UpdateFields(payment.ID, updates); err != nil {
			return err
		}
		if targetStatus == constants.PaymentStatusCompleted && !order.PaymentPaid {
			return s.markOrderPaid(tx, order, now)
		}
		return nil
	})
	if err != nil {
		logger.Errorw("payment_ipn_apply_failed",
			"txn_ref", data.TxnRef,
			"order_id", order.ID,
			"target_status", targetStatus,
			"error", err,
		)
		return ipnResponse(constants.VNPayIPNUnknownError, "Unknown error")
	}

	logger.Infow("payment_ipn_processed",
		"txn_ref", data.TxnRef,
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"status", targetStatus,
		"gateway_txn_no", data.TransactionNo,
	)
	return ipnResponse(constants.VNPayIPNConfirmSuccess, "Confirm success")
}

// updateCallbackMeta 重复回调只补写回调元数据，不触发状态迁移
func (s *PaymentService) updateCallbackMeta(payment *models.Payment, data *vnpay.CallbackData) {
	now := time.Now()
	if err := s.paymentRepo.UpdateFields(payment.ID, map[string]interface{}{
		"callback_payload": callbackPayload(data),
		"callback_at":      now,
		"updated_at":       now,
	}); err != nil {
		logger.Warnw("payment_callback_meta_update_failed",
			"payment_id", payment.ID,
			"error", err,
		)
	}
}

func callbackPayload(data *vnpay.CallbackData) models.JSON {
	payload := models.JSON{}
	for key, value := range data.Raw {
		payload[key] = value
	}
	return payload
}
