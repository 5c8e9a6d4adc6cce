package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment 支付记录
type Payment struct {
	ID              uint           `gorm:"primarykey" json:"id"`                           // 主键
	OrderID         uint           `gorm:"index;not null" json:"order_id"`                 // 订单ID（子订单）
	TxnRef          string         `gorm:"uniqueIndex;not null" json:"txn_ref"`            // 商户交易号
	Provider        string         `gorm:"not null" json:"provider"`                       // 提供方（vnpay/cod）
	Amount          Money          `gorm:"type:decimal(20,2);not null" json:"amount"`      // 支付金额
	Currency        string         `gorm:"not null" json:"currency"`                       // 币种
	Status          string         `gorm:"index;not null" json:"status"`                   // 支付状态
	BankCode        string         `gorm:"type:varchar(32)" json:"bank_code,omitempty"`    // 银行编码
	VNPayTxnNo      string         `gorm:"column:vnpay_txn_no;index" json:"vnpay_transaction_no,omitempty"` // 网关流水号
	ResponseCode    string         `gorm:"type:varchar(8)" json:"response_code,omitempty"` // 网关应答码
	PayURL          string         `gorm:"type:text" json:"pay_url,omitempty"`             // 跳转链接
	ClientIP        string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`    // 发起客户端IP
	CallbackPayload JSON           `gorm:"type:json" json:"callback_payload,omitempty"`    // 回调原始数据
	ExpiresAt       *time.Time     `gorm:"index" json:"expires_at"`                        // 支付链接过期时间
	PaidAt          *time.Time     `gorm:"index" json:"paid_at"`                           // 支付时间
	CallbackAt      *time.Time     `gorm:"index" json:"callback_at"`                       // 回调时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                        // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                 // 软删除时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
