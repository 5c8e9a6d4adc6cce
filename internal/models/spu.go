package models

import (
	"time"

	"gorm.io/gorm"
)

// Spu 标准商品单元表（定义变体轴，SKU 按位置引用取值）
type Spu struct {
	ID         uint           `gorm:"primarykey" json:"id"`                  // 主键
	ShopID     uint           `gorm:"not null;index" json:"shop_id"`         // 店铺ID
	CategoryID uint           `gorm:"not null;index" json:"category_id"`     // 分类ID
	Slug       string         `gorm:"uniqueIndex;not null" json:"slug"`      // 唯一标识
	Name       string         `gorm:"type:varchar(300);not null" json:"name"` // 商品名称
	Variations VariationList  `gorm:"type:json" json:"variations"`           // 变体轴定义（有序）
	Attributes JSON           `gorm:"type:json" json:"attributes"`           // 扩展属性
	Thumb      string         `gorm:"type:varchar(500)" json:"thumb"`        // 缩略图
	Images     StringArray    `gorm:"type:json" json:"images"`               // 图片数组
	IsDraft    bool           `gorm:"index" json:"is_draft"`                 // 是否草稿
	IsPublish  bool           `gorm:"default:false;index" json:"is_publish"` // 是否发布
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`               // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                            // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                        // 软删除时间

	// 关联
	Shop     *Shop     `gorm:"foreignKey:ShopID" json:"shop,omitempty"`         // 店铺信息
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
	Skus     []Sku     `gorm:"foreignKey:SpuID" json:"skus,omitempty"`          // SKU 列表
}

// TableName 指定表名
func (Spu) TableName() string {
	return "spus"
}
