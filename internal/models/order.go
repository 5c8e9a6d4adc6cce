package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表（父订单聚合一次结算，子订单按店铺拆分）
type Order struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                        // 主键
	OrderNo       string         `gorm:"uniqueIndex;not null" json:"order_no"`                        // 订单编号
	ParentID      *uint          `gorm:"index" json:"parent_id,omitempty"`                            // 父订单ID
	UserID        uint           `gorm:"index;not null" json:"user_id"`                               // 买家用户ID
	ShopID        uint           `gorm:"index;default:0" json:"shop_id,omitempty"`                    // 店铺ID（子订单）
	Status        string         `gorm:"index;not null" json:"status"`                                // 订单状态
	PaymentType   string         `gorm:"type:varchar(20);not null" json:"payment_type"`               // 支付方式
	PaymentPaid   bool           `gorm:"default:false;index" json:"payment_paid"`                     // 是否已支付
	Currency      string         `gorm:"not null" json:"currency"`                                    // 币种
	RawTotal      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"raw_total"`      // 折前合计
	DiscountTotal Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_total"` // 优惠合计
	ShippingTotal Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_total"` // 运费合计
	GrandTotal    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"grand_total"`    // 应付合计
	DiscountID    *uint          `gorm:"index" json:"discount_id,omitempty"`                          // 优惠码ID（子订单）
	RejectReason  string         `gorm:"type:varchar(500)" json:"reject_reason,omitempty"`            // 拒绝原因
	ClientIP      string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                 // 下单客户端IP
	ApprovedAt    *time.Time     `gorm:"index" json:"approved_at"`                                    // 审核通过时间
	PaidAt        *time.Time     `gorm:"index" json:"paid_at"`                                        // 支付时间
	CompletedAt   *time.Time     `gorm:"index" json:"completed_at"`                                   // 完成时间
	CanceledAt    *time.Time     `gorm:"index" json:"canceled_at"`                                    // 取消时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	Items    []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`     // 订单项
	Children []Order     `gorm:"foreignKey:ParentID" json:"children,omitempty"` // 子订单
	Shop     *Shop       `gorm:"foreignKey:ShopID" json:"shop,omitempty"`       // 店铺信息
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
