package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem 购物车项
type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                  // 主键
	UserID    uint           `gorm:"not null;uniqueIndex:idx_cart_user_sku" json:"user_id"` // 用户ID
	SkuID     uint           `gorm:"not null;uniqueIndex:idx_cart_user_sku" json:"sku_id"`  // SKU ID
	ShopID    uint           `gorm:"not null;index" json:"shop_id"`                         // 店铺ID
	Quantity  int            `gorm:"not null" json:"quantity"`                              // 数量
	Selected  bool           `json:"selected"`                                              // 是否参与结算
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                               // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间

	Sku *Sku `gorm:"foreignKey:SkuID" json:"sku,omitempty"` // 关联SKU
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
