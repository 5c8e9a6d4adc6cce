package models

import (
	"time"

	"gorm.io/gorm"
)

// Discount 店铺优惠码表
type Discount struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                        // 主键
	ShopID    uint           `gorm:"not null;index;uniqueIndex:idx_discount_shop_code" json:"shop_id"` // 店铺ID
	Code      string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_discount_shop_code" json:"code"` // 优惠码（同店铺内唯一）
	Kind      string         `gorm:"type:varchar(20);not null" json:"kind"`                       // 类型（fixed/percent）
	Value     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"value"`          // 面额或百分比
	MinOrder  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_order"`      // 最低消费门槛
	MaxUses   int            `gorm:"not null;default:0" json:"max_uses"`                          // 最大使用次数（0 不限）
	UsedCount int            `gorm:"not null;default:0" json:"used_count"`                        // 已使用次数
	StartsAt  *time.Time     `gorm:"index" json:"starts_at"`                                      // 生效时间
	EndsAt    *time.Time     `gorm:"index" json:"ends_at"`                                        // 失效时间
	IsActive  bool           `gorm:"index" json:"is_active"`                                      // 是否启用
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                                  // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间
}

// TableName 指定表名
func (Discount) TableName() string {
	return "discounts"
}
