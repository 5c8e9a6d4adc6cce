package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/velamall/internal/constants"
	"github.com/velamall/internal/logger"
	"github.com/velamall/internal/models"
	"github.com/velamall/internal/queue"
	"github.com/velamall/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo       repository.OrderRepository
	cartRepo        repository.CartRepository
	skuRepo         repository.SkuRepository
	inventoryRepo   repository.InventoryRepository
	discountRepo    repository.DiscountRepository
	shopRepo        repository.ShopRepository
	queueClient     *queue.Client
	expireMinutes   int
	freeShippingMin decimal.Decimal
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, skuRepo repository.SkuRepository, inventoryRepo repository.InventoryRepository, discountRepo repository.DiscountRepository, shopRepo repository.ShopRepository, queueClient *queue.Client, expireMinutes int, freeShippingMin int) *OrderService {
	return &OrderService{
		orderRepo:       orderRepo,
		cartRepo:        cartRepo,
		skuRepo:         skuRepo,
		inventoryRepo:   inventoryRepo,
		discountRepo:    discountRepo,
		shopRepo:        shopRepo,
		queueClient:     queueClient,
		expireMinutes:   expireMinutes,
		freeShippingMin: decimal.NewFromInt(int64(freeShippingMin)),
	}
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID        uint
	PaymentType   string
	DiscountCodes map[uint]string // 店铺ID → 优惠码
	ClientIP      string
}

// shopOrderPlan 单个店铺的子订单计划
type shopOrderPlan struct {
	Shop     *models.Shop
	Items    []models.OrderItem
	SkuQty   map[uint]int
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Applied  *models.Discount
}

// grandTotal 子订单应付金额
func (p *shopOrderPlan) grandTotal() decimal.Decimal {
	return p.Subtotal.Sub(p.Discount).Add(p.Shipping).Round(2)
}

// CreateOrder 从购物车创建订单，按店铺拆分为子订单。
// 价格在创建时做不可变快照，后续目录调价不影响已生成订单。
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrCartEmpty
	}
	paymentType := normalizePaymentType(input.PaymentType)
	if !isValidPaymentType(paymentType) {
		return nil, ErrPaymentTypeInvalid
	}

	plans, err := s.buildShopPlans(input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rawTotal := decimal.Zero
	discountTotal := decimal.Zero
	shippingTotal := decimal.Zero
	for _, plan := range plans {
		rawTotal = rawTotal.Add(plan.Subtotal)
		discountTotal = discountTotal.Add(plan.Discount)
		shippingTotal = shippingTotal.Add(plan.Shipping)
	}
	grandTotal := rawTotal.Sub(discountTotal).Add(shippingTotal).Round(2)

	parent := &models.Order{
		OrderNo:       generateOrderNo(),
		UserID:        input.UserID,
		Status:        constants.OrderStatusCreated,
		PaymentType:   paymentType,
		Currency:      constants.SiteCurrencyDefault,
		RawTotal:      models.NewMoneyFromDecimal(rawTotal.Round(2)),
		DiscountTotal: models.NewMoneyFromDecimal(discountTotal.Round(2)),
		ShippingTotal: models.NewMoneyFromDecimal(shippingTotal.Round(2)),
		GrandTotal:    models.NewMoneyFromDecimal(grandTotal),
		ClientIP:      strings.TrimSpace(input.ClientIP),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	checkedOutSkuIDs := make([]uint, 0)
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		inventoryRepo := s.inventoryRepo.WithTx(tx)
		discountRepo := s.discountRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		if err := orderRepo.Create(parent, nil); err != nil {
			return err
		}

		for idx, plan := range plans {
			child := &models.Order{
				OrderNo:       buildChildOrderNo(parent.OrderNo, idx+1),
				ParentID:      &parent.ID,
				UserID:        parent.UserID,
				ShopID:        plan.Shop.ID,
				Status:        constants.OrderStatusCreated,
				PaymentType:   parent.PaymentType,
				Currency:      parent.Currency,
				RawTotal:      models.NewMoneyFromDecimal(plan.Subtotal.Round(2)),
				DiscountTotal: models.NewMoneyFromDecimal(plan.Discount.Round(2)),
				ShippingTotal: models.NewMoneyFromDecimal(plan.Shipping.Round(2)),
				GrandTotal:    models.NewMoneyFromDecimal(plan.grandTotal()),
				ClientIP:      parent.ClientIP,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if plan.Applied != nil {
				child.DiscountID = &plan.Applied.ID
			}
			if err := orderRepo.Create(child, plan.Items); err != nil {
				return err
			}

			for skuID, quantity := range plan.SkuQty {
				ok, err := inventoryRepo.ReserveBySkuID(skuID, quantity)
				if err != nil {
					return err
				}
				if !ok {
					return ErrSkuStockShortage
				}
				checkedOutSkuIDs = append(checkedOutSkuIDs, skuID)
			}

			if plan.Applied != nil {
				ok, err := discountRepo.IncrementUsed(plan.Applied.ID)
				if err != nil {
					return err
				}
				if !ok {
					return ErrDiscountUsedUp
				}
			}
		}

		return cartRepo.DeleteByUserAndSkus(input.UserID, checkedOutSkuIDs)
	})
	if err != nil {
		switch err {
		case ErrSkuStockShortage, ErrDiscountUsedUp:
			return nil, err
		}
		logger.Errorw("order_create_failed",
			"user_id", input.UserID,
			"payment_type", input.PaymentType,
			"error", err,
		)
		return nil, ErrOrderCreateFailed
	}

	s.enqueueTimeoutCancel(parent)

	full, err := s.orderRepo.GetByID(parent.ID)
	if err == nil && full != nil {
		fillOrderItemsFromChildren(full)
		return full, nil
	}
	return parent, nil
}

// buildShopPlans 购物车按店铺分组并计算价格快照
func (s *OrderService) buildShopPlans(input CreateOrderInput) ([]*shopOrderPlan, error) {
	cartItems, err := s.cartRepo.ListByUser(input.UserID, true)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrCartEmpty
	}

	planByShop := map[uint]*shopOrderPlan{}
	shopOrder := make([]uint, 0)
	for _, item := range cartItems {
		if item.Quantity <= 0 || item.Sku == nil {
			return nil, ErrCartItemInvalid
		}
		sku := item.Sku
		if sku.Spu == nil || !sku.Spu.IsPublish || sku.Spu.IsDraft {
			return nil, ErrSkuNotOnSale
		}
		shopID := sku.Spu.ShopID

		plan, ok := planByShop[shopID]
		if !ok {
			shop, err := s.shopRepo.GetByID(shopID)
			if err != nil {
				return nil, err
			}
			if shop == nil {
				return nil, ErrShopNotFound
			}
			if !shop.IsActive {
				return nil, ErrShopClosed
			}
			plan = &shopOrderPlan{
				Shop:     shop,
				SkuQty:   map[uint]int{},
				Subtotal: decimal.Zero,
				Discount: decimal.Zero,
				Shipping: decimal.Zero,
			}
			planByShop[shopID] = plan
			shopOrder = append(shopOrder, shopID)
		}

		unitPrice := sku.Price.Decimal.Round(2)
		total := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		plan.Subtotal = plan.Subtotal.Add(total).Round(2)
		plan.SkuQty[sku.ID] += item.Quantity
		plan.Items = append(plan.Items, models.OrderItem{
			SpuID:      sku.SpuID,
			SkuID:      sku.ID,
			ShopID:     shopID,
			Name:       sku.Spu.Name,
			SkuValue:   resolveTierValues(sku.Spu.Variations, sku.TierIdx),
			UnitPrice:  models.NewMoneyFromDecimal(unitPrice),
			Quantity:   item.Quantity,
			TotalPrice: models.NewMoneyFromDecimal(total),
		})
	}

	plans := make([]*shopOrderPlan, 0, len(shopOrder))
	for _, shopID := range shopOrder {
		plan := planByShop[shopID]

		if code := strings.TrimSpace(input.DiscountCodes[shopID]); code != "" {
			applied, amount, err := s.resolveShopDiscount(shopID, code, plan.Subtotal)
			if err != nil {
				return nil, err
			}
			plan.Applied = applied
			plan.Discount = amount
		}

		plan.Shipping = plan.Shop.ShippingFee.Decimal.Round(2)
		if s.freeShippingMin.GreaterThan(decimal.Zero) && plan.Subtotal.GreaterThanOrEqual(s.freeShippingMin) {
			plan.Shipping = decimal.Zero
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// resolveShopDiscount 校验优惠码并计算优惠金额
func (s *OrderService) resolveShopDiscount(shopID uint, code string, subtotal decimal.Decimal) (*models.Discount, decimal.Decimal, error) {
	discount, err := s.discountRepo.GetByShopAndCode(shopID, code)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if discount == nil {
		return nil, decimal.Zero, ErrDiscountNotFound
	}
	if !discount.IsActive {
		return nil, decimal.Zero, ErrDiscountNotActive
	}
	now := time.Now()
	if discount.StartsAt != nil && now.Before(*discount.StartsAt) {
		return nil, decimal.Zero, ErrDiscountNotActive
	}
	if discount.EndsAt != nil && now.After(*discount.EndsAt) {
		return nil, decimal.Zero, ErrDiscountExpired
	}
	if discount.MaxUses > 0 && discount.UsedCount >= discount.MaxUses {
		return nil, decimal.Zero, ErrDiscountUsedUp
	}
	if subtotal.LessThan(discount.MinOrder.Decimal) {
		return nil, decimal.Zero, ErrDiscountMinOrder
	}

	var amount decimal.Decimal
	switch discount.Kind {
	case constants.DiscountKindFixed:
		amount = discount.Value.Decimal.Round(2)
	case constants.DiscountKindPercent:
		amount = subtotal.Mul(discount.Value.Decimal).Div(decimal.NewFromInt(100)).Round(2)
	default:
		return nil, decimal.Zero, ErrDiscountKindBad
	}
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	if amount.LessThan(decimal.Zero) {
		amount = decimal.Zero
	}
	return discount, amount, nil
}

// CancelOrder 用户取消订单。父订单取消会级联全部未收敛的子订单。
func (s *OrderService) CancelOrder(orderID uint, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if isTerminalStatus(order.Status) {
		return nil, ErrOrderCancelNotAllowed
	}

	if order.ParentID == nil {
		if err := s.cancelOrderWithChildren(order); err != nil {
			return nil, ErrOrderUpdateFailed
		}
	} else {
		if err := s.cancelChildOrder(order); err != nil {
			return nil, ErrOrderUpdateFailed
		}
	}
	fillOrderItemsFromChildren(order)
	return order, nil
}

// cancelOrderWithChildren 取消父订单及全部未收敛的子订单并释放资源
func (s *OrderService) cancelOrderWithChildren(order *models.Order) error {
	now := time.Now()
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		updates := map[string]interface{}{
			"canceled_at": now,
			"updated_at":  now,
		}
		if err := orderRepo.UpdateStatus(order.ID, constants.OrderStatusCanceled, updates); err != nil {
			return err
		}
		for i := range order.Children {
			child := &order.Children[i]
			if isTerminalStatus(child.Status) {
				continue
			}
			if err := orderRepo.UpdateStatus(child.ID, constants.OrderStatusCanceled, map[string]interface{}{
				"canceled_at": now,
				"updated_at":  now,
			}); err != nil {
				return err
			}
			if err := s.releaseChildResources(tx, child); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	order.Status = constants.OrderStatusCanceled
	order.CanceledAt = &now
	for i := range order.Children {
		if isTerminalStatus(order.Children[i].Status) {
			continue
		}
		order.Children[i].Status = constants.OrderStatusCanceled
		order.Children[i].CanceledAt = &now
	}
	return nil
}

// cancelChildOrder 取消单个子订单并回写父订单状态
func (s *OrderService) cancelChildOrder(order *models.Order) error {
	now := time.Now()
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		if err := orderRepo.UpdateStatus(order.ID, constants.OrderStatusCanceled, map[string]interface{}{
			"canceled_at": now,
			"updated_at":  now,
		}); err != nil {
			return err
		}
		return s.releaseChildResources(tx, order)
	})
	if err != nil {
		return err
	}
	order.Status = constants.OrderStatusCanceled
	order.CanceledAt = &now

	if order.ParentID != nil {
		if _, err := syncParentStatus(s.orderRepo, *order.ParentID, now); err != nil {
			logger.Warnw("order_sync_parent_status_failed",
				"order_id", order.ID,
				"parent_id", *order.ParentID,
				"error", err,
			)
		}
	}
	return nil
}

// releaseChildResources 释放子订单占用的库存与优惠码次数
func (s *OrderService) releaseChildResources(tx *gorm.DB, child *models.Order) error {
	inventoryRepo := s.inventoryRepo.WithTx(tx)
	for _, item := range child.Items {
		if err := inventoryRepo.ReleaseBySkuID(item.SkuID, item.Quantity); err != nil {
			return err
		}
	}
	if child.DiscountID != nil {
		if err := s.discountRepo.WithTx(tx).DecrementUsed(*child.DiscountID); err != nil {
			return err
		}
	}
	return nil
}

// ApproveOrder 店铺审核通过子订单
func (s *OrderService) ApproveOrder(shopID uint, orderID uint) (*models.Order, error) {
	order, err := s.getShopChildOrder(shopID, orderID)
	if err != nil {
		return nil, err
	}
	if !canTransition(order.Status, constants.OrderStatusApproved) {
		return nil, ErrOrderTransitionInvalid
	}

	now := time.Now()
	if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusApproved, map[string]interface{}{
		"approved_at": now,
		"updated_at":  now,
	}); err != nil {
		return nil, ErrOrderUpdateFailed
	}
	order.Status = constants.OrderStatusApproved
	order.ApprovedAt = &now
	s.syncParentAfterShopAction(order, now)
	return order, nil
}

// RejectOrder 店铺拒绝子订单，必须给出原因
func (s *OrderService) RejectOrder(shopID uint, orderID uint, reason string) (*models.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrRejectReasonRequired
	}
	order, err := s.getShopChildOrder(shopID, orderID)
	if err != nil {
		return nil, err
	}
	if !canTransition(order.Status, constants.OrderStatusRejected) {
		return nil, ErrOrderTransitionInvalid
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).UpdateStatus(order.ID, constants.OrderStatusRejected, map[string]interface{}{
			"reject_reason": reason,
			"updated_at":    now,
		}); err != nil {
			return err
		}
		return s.releaseChildResources(tx, order)
	})
	if err != nil {
		return nil, ErrOrderUpdateFailed
	}
	order.Status = constants.OrderStatusRejected
	order.RejectReason = reason
	s.syncParentAfterShopAction(order, now)
	return order, nil
}

// CompleteOrder 店铺完成子订单，核销库存占用
func (s *OrderService) CompleteOrder(shopID uint, orderID uint) (*models.Order, error) {
	order, err := s.getShopChildOrder(shopID, orderID)
	if err != nil {
		return nil, err
	}
	if !canTransition(order.Status, constants.OrderStatusCompleted) {
		return nil, ErrOrderTransitionInvalid
	}
	// 线上支付的订单必须先收到支付确认
	if !order.PaymentPaid && order.PaymentType == constants.PaymentTypeVNPay {
		return nil, ErrPaymentOrderNotOpen
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"completed_at": now,
			"updated_at":   now,
		}
		// 货到付款在交付完成时视为收款
		if order.PaymentType == constants.PaymentTypeCOD && !order.PaymentPaid {
			updates["payment_paid"] = true
			updates["paid_at"] = now
		}
		if err := s.orderRepo.WithTx(tx).UpdateStatus(order.ID, constants.OrderStatusCompleted, updates); err != nil {
			return err
		}
		inventoryRepo := s.inventoryRepo.WithTx(tx)
		skuRepo := s.skuRepo.WithTx(tx)
		for _, item := range order.Items {
			if err := inventoryRepo.CommitBySkuID(item.SkuID, item.Quantity); err != nil {
				return err
			}
			if _, err := skuRepo.DecrementStock(item.SkuID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, ErrOrderUpdateFailed
	}
	order.Status = constants.OrderStatusCompleted
	order.CompletedAt = &now
	s.syncParentAfterShopAction(order, now)
	return order, nil
}

// getShopChildOrder 校验订单归属并返回子订单
func (s *OrderService) getShopChildOrder(shopID uint, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil || order.ParentID == nil {
		return nil, ErrOrderNotFound
	}
	if order.ShopID != shopID {
		return nil, ErrOrderShopMismatch
	}
	return order, nil
}

func (s *OrderService) syncParentAfterShopAction(order *models.Order, now time.Time) {
	if order.ParentID == nil {
		return
	}
	if _, err := syncParentStatus(s.orderRepo, *order.ParentID, now); err != nil {
		logger.Warnw("order_sync_parent_status_failed",
			"order_id", order.ID,
			"parent_id", *order.ParentID,
			"error", err,
		)
	}
}

// CancelExpiredOrder 超时未支付订单的兜底取消（队列任务调用）
func (s *OrderService) CancelExpiredOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.ParentID != nil || order.PaymentPaid {
		return order, nil
	}
	if order.Status != constants.OrderStatusCreated {
		return order, nil
	}
	if order.PaymentType != constants.PaymentTypeVNPay {
		return order, nil
	}
	if err := s.cancelOrderWithChildren(order); err != nil {
		return nil, ErrOrderUpdateFailed
	}
	logger.Infow("order_timeout_canceled",
		"order_id", order.ID,
		"order_no", order.OrderNo,
	)
	return order, nil
}

// GetOrderByUser 获取用户订单详情
func (s *OrderService) GetOrderByUser(orderID uint, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	fillOrderItemsFromChildren(order)
	return order, nil
}

// ListOrdersByUser 用户订单历史，支持状态 / 时间 / 支付方式过滤与排序
func (s *OrderService) ListOrdersByUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.ParentOnly = true
	orders, total, err := s.orderRepo.ListByUser(filter)
	if err != nil {
		return nil, 0, err
	}
	fillOrdersItemsFromChildren(orders)
	return orders, total, nil
}

// ListOrdersByShop 店铺子订单列表
func (s *OrderService) ListOrdersByShop(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListByShop(filter)
}

// enqueueTimeoutCancel 线上支付订单入队超时取消任务
func (s *OrderService) enqueueTimeoutCancel(order *models.Order) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	if order.PaymentType != constants.PaymentTypeVNPay {
		return
	}
	expireMinutes := s.expireMinutes
	if expireMinutes <= 0 {
		expireMinutes = 15
	}
	if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{
		OrderID: order.ID,
	}, time.Duration(expireMinutes)*time.Minute); err != nil {
		logger.Warnw("order_enqueue_timeout_cancel_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
}

// normalizePaymentType 归一化支付方式，落库和后续比较都用归一化后的值
func normalizePaymentType(paymentType string) string {
	return strings.ToLower(strings.TrimSpace(paymentType))
}

func isValidPaymentType(paymentType string) bool {
	switch normalizePaymentType(paymentType) {
	case constants.PaymentTypeCOD, constants.PaymentTypeVNPay,
		constants.PaymentTypeBankTransfer, constants.PaymentTypeCreditCard:
		return true
	}
	return false
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("VM%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}

// buildChildOrderNo 生成子订单号
func buildChildOrderNo(parentOrderNo string, seq int) string {
	if seq <= 0 {
		return parentOrderNo
	}
	return fmt.Sprintf("%s-%02d", parentOrderNo, seq)
}

// fillOrderItemsFromChildren 从子订单聚合订单项（用于响应兼容）
func fillOrderItemsFromChildren(order *models.Order) {
	if order == nil || len(order.Items) > 0 || len(order.Children) == 0 {
		return
	}
	items := make([]models.OrderItem, 0)
	for _, child := range order.Children {
		for _, item := range child.Items {
			copied := item
			copied.OrderID = order.ID
			items = append(items, copied)
		}
	}
	order.Items = items
}

// fillOrdersItemsFromChildren 批量填充聚合订单项
func fillOrdersItemsFromChildren(orders []models.Order) {
	for i := range orders {
		fillOrderItemsFromChildren(&orders[i])
	}
}
