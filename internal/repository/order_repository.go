package repository

import (
	"errors"
	"strings"

	"github.com/velamall/internal/models"

	"gorm.io/gorm"
)

// orderSortColumns 订单列表允许的排序字段
var orderSortColumns = map[string]string{
	"created_at": "created_at",
	"total":      "grand_total",
}

// resolveOrderSort 解析排序参数，前缀 - 表示倒序，非法字段回落默认排序。
func resolveOrderSort(sort string) string {
	sort = strings.TrimSpace(sort)
	desc := false
	if strings.HasPrefix(sort, "-") {
		desc = true
		sort = strings.TrimPrefix(sort, "-")
	}
	column, ok := orderSortColumns[sort]
	if !ok {
		return "created_at DESC"
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	GetByIDAndUser(id uint, userID uint) (*models.Order, error)
	GetItem(orderID uint, skuID uint) (*models.OrderItem, error)
	ListChildren(parentID uint) ([]models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListByShop(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	UpdateFields(id uint, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

func (r *GormOrderRepository) withChildren(query *gorm.DB) *gorm.DB {
	return query.Preload("Children").Preload("Children.Items").Preload("Children.Shop")
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	query := r.withChildren(r.db.Preload("Items").Preload("Shop"))
	if err := query.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo 根据订单号获取订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, nil
	}
	var order models.Order
	query := r.withChildren(r.db.Preload("Items").Preload("Shop"))
	if err := query.Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDAndUser 获取用户自己的订单
func (r *GormOrderRepository) GetByIDAndUser(id uint, userID uint) (*models.Order, error) {
	var order models.Order
	query := r.withChildren(r.db.Preload("Items").Preload("Shop"))
	if err := query.Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetItem 获取订单中指定 SKU 的订单项
func (r *GormOrderRepository) GetItem(orderID uint, skuID uint) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.Where("order_id = ? AND sku_id = ?", orderID, skuID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListChildren 获取父订单下的全部子订单
func (r *GormOrderRepository) ListChildren(parentID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").
		Where("parent_id = ?", parentID).
		Order("id ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByUser 分页查询用户订单
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("user_id = ?", filter.UserID)
	if filter.ParentOnly {
		query = query.Where("parent_id IS NULL")
	}
	query = r.applyCommonFilters(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	listQuery := r.withChildren(query.Preload("Items").Preload("Shop"))
	listQuery = applyPagination(listQuery.Order(resolveOrderSort(filter.Sort)), filter.Page, filter.PageSize)
	if err := listQuery.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListByShop 分页查询店铺子订单
func (r *GormOrderRepository) ListByShop(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).
		Where("shop_id = ? AND parent_id IS NOT NULL", filter.ShopID)
	query = r.applyCommonFilters(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	listQuery := query.Preload("Items")
	listQuery = applyPagination(listQuery.Order(resolveOrderSort(filter.Sort)), filter.Page, filter.PageSize)
	if err := listQuery.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *GormOrderRepository) applyCommonFilters(query *gorm.DB, filter OrderListFilter) *gorm.DB {
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if paymentType := strings.TrimSpace(filter.PaymentType); paymentType != "" {
		query = query.Where("payment_type = ?", paymentType)
	}
	if orderNo := strings.TrimSpace(filter.OrderNo); orderNo != "" {
		query = query.Where("order_no = ?", orderNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return query
}

// UpdateStatus 更新订单状态及相关字段
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateFields 更新指定字段
func (r *GormOrderRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}
