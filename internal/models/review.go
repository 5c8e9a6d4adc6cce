package models

import (
	"time"

	"gorm.io/gorm"
)

// Review 商品评价表（同一订单同一 SKU 至多一条）
type Review struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                       // 主键
	OrderID   uint           `gorm:"not null;uniqueIndex:idx_review_order_sku" json:"order_id"`  // 订单ID
	SkuID     uint           `gorm:"not null;uniqueIndex:idx_review_order_sku" json:"sku_id"`    // SKU ID
	SpuID     uint           `gorm:"index;not null" json:"spu_id"`                               // SPU ID
	UserID    uint           `gorm:"index;not null" json:"user_id"`                              // 用户ID
	Rating    int            `gorm:"not null" json:"rating"`                                     // 评分（1-5）
	Content   string         `gorm:"type:text" json:"content"`                                   // 评价内容
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                                 // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间
}

// TableName 指定表名
func (Review) TableName() string {
	return "reviews"
}
