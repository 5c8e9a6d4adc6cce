package queue

import (
	"encoding/json"

	"github.com/velamall/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderTimeoutCancel 超时取消任务
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
	// TaskPaymentStatusSync 支付状态对账任务
	TaskPaymentStatusSync = constants.TaskPaymentStatusSync
)

// OrderTimeoutCancelPayload 超时取消任务载荷
type OrderTimeoutCancelPayload struct {
	OrderID uint `json:"order_id"`
}

// PaymentStatusSyncPayload 支付状态对账任务载荷
type PaymentStatusSyncPayload struct {
	PaymentID uint `json:"payment_id"`
}

// NewOrderTimeoutCancelTask 创建超时取消任务
func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderTimeoutCancel, body), nil
}

// NewPaymentStatusSyncTask 创建支付状态对账任务
func NewPaymentStatusSyncTask(payload PaymentStatusSyncPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentStatusSync, body), nil
}
