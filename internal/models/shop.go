package models

import (
	"time"

	"gorm.io/gorm"
)

// Shop 店铺表
type Shop struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                      // 主键
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`                          // 唯一标识
	Name        string         `gorm:"type:varchar(200);not null" json:"name"`                    // 店铺名称
	OwnerUserID uint           `gorm:"index;not null" json:"owner_user_id"`                       // 店主用户ID
	ShippingFee Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_fee"` // 每单运费
	IsActive    bool           `gorm:"index" json:"is_active"`                                    // 是否营业
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (Shop) TableName() string {
	return "shops"
}
