package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表（下单时的不可变快照）
type OrderItem struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID    uint           `gorm:"index;not null" json:"order_id"`                          // 订单ID
	SpuID      uint           `gorm:"index;not null" json:"spu_id"`                            // SPU ID
	SkuID      uint           `gorm:"index;not null" json:"sku_id"`                            // SKU ID
	ShopID     uint           `gorm:"index;not null" json:"shop_id"`                           // 店铺ID
	Name       string         `gorm:"type:varchar(300);not null" json:"name"`                  // 商品名称快照
	SkuValue   JSON           `gorm:"type:json" json:"sku_value"`                              // 变体取值快照（轴名→值）
	UnitPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 单价
	Quantity   int            `gorm:"not null" json:"quantity"`                                // 数量
	TotalPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                                 // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
