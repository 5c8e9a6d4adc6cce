package repository

import "time"

// SpuListFilter 查询商品列表的过滤条件
type SpuListFilter struct {
	Page        int
	PageSize    int
	ShopID      uint
	CategoryID  uint
	Search      string
	OnlyPublish bool
	WithSkus    bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	ShopID      uint
	Status      string
	PaymentType string
	OrderNo     string
	ParentOnly  bool
	Sort        string // created_at / total，前缀 - 表示倒序
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PaymentListFilter 查询支付记录列表的过滤条件
type PaymentListFilter struct {
	Page        int
	PageSize    int
	OrderID     uint
	Provider    string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ReviewListFilter 查询评价列表的过滤条件
type ReviewListFilter struct {
	Page      int
	PageSize  int
	SpuID     uint
	SkuID     uint
	UserID    uint
	MinRating int
}
