package models

import (
	"time"

	"gorm.io/gorm"
)

// Warehouse 仓库表（多个 SKU 可共享同一仓库）
type Warehouse struct {
	ID        uint           `gorm:"primarykey" json:"id"`                   // 主键
	Name      string         `gorm:"type:varchar(200);not null" json:"name"` // 仓库名称
	Location  string         `gorm:"type:varchar(300)" json:"location"`      // 仓库地址
	Stock     int            `gorm:"not null;default:0" json:"stock"`        // 聚合库存计数
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                             // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间
}

// TableName 指定表名
func (Warehouse) TableName() string {
	return "warehouses"
}
