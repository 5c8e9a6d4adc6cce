package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表（买家与店铺成员共用）
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                        // 主键
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`                           // 邮箱
	PasswordHash string         `gorm:"type:varchar(200);not null" json:"-"`                         // 密码哈希
	Nickname     string         `gorm:"type:varchar(100)" json:"nickname"`                           // 昵称
	Role         string         `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`    // 角色（customer/shop_staff）
	ShopID       uint           `gorm:"index;default:0" json:"shop_id,omitempty"`                    // 所属店铺（店铺成员）
	IsActive     bool           `json:"is_active"`                                                   // 是否启用
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                                                  // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
