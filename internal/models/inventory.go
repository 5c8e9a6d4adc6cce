package models

import (
	"time"

	"gorm.io/gorm"
)

// Inventory 库存台账表（与 SKU 一一对应）
type Inventory struct {
	ID          uint           `gorm:"primarykey" json:"id"`                 // 主键
	SkuID       uint           `gorm:"uniqueIndex;not null" json:"sku_id"`   // SKU ID
	ShopID      uint           `gorm:"index;not null" json:"shop_id"`        // 店铺ID
	WarehouseID uint           `gorm:"index;not null" json:"warehouse_id"`   // 仓库ID
	Stock       int            `gorm:"not null;default:0" json:"stock"`      // 在库数量
	Reserved    int            `gorm:"not null;default:0" json:"reserved"`   // 下单占用数量
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`              // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`              // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                       // 软删除时间

	Warehouse *Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"` // 关联仓库
}

// TableName 指定表名
func (Inventory) TableName() string {
	return "inventories"
}
