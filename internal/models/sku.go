package models

import (
	"time"

	"gorm.io/gorm"
)

// Sku 库存单元表（tier_idx 按位置索引 SPU 的变体轴取值）
type Sku struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                                             // 主键
	SpuID     uint           `gorm:"not null;index;uniqueIndex:idx_spu_tier_code" json:"spu_id"`                       // 所属SPU
	TierIdx   IntArray       `gorm:"type:json;not null" json:"tier_idx"`                                               // 层级索引元组
	TierCode  string         `gorm:"column:tier_code;type:varchar(64);not null;uniqueIndex:idx_spu_tier_code" json:"tier_code"` // 索引元组规范编码（同 SPU 内唯一）
	Price     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`                               // SKU价格
	Stock     int            `gorm:"not null;default:0" json:"stock"`                                                  // 可售库存
	Thumb     string         `gorm:"type:varchar(500)" json:"thumb"`                                                   // 缩略图
	Images    StringArray    `gorm:"type:json" json:"images"`                                                          // 图片数组
	IsDefault bool           `gorm:"default:false" json:"is_default"`                                                  // 是否默认SKU
	SortOrder int            `gorm:"default:0;index" json:"sort_order"`                                                // 排序权重
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                                          // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                                                          // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                                                   // 软删除时间

	Spu       *Spu       `gorm:"foreignKey:SpuID" json:"spu,omitempty"` // 关联SPU
	Inventory *Inventory `gorm:"foreignKey:SkuID" json:"inventory,omitempty"` // 关联库存记录
}

// TableName 指定表名
func (Sku) TableName() string {
	return "skus"
}
