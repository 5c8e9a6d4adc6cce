package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/velamall/internal/constants"
	"github.com/velamall/internal/models"
	"github.com/velamall/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// orderFixture 两店铺、两 SKU 的下单测试场景
type orderFixture struct {
	db        *gorm.DB
	audioShop models.Shop
	homeShop  models.Shop
	audioSku  models.Sku
	homeSku   models.Sku
}

func setupOrderServiceDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Shop{}, &models.Category{}, &models.Spu{}, &models.Sku{},
		&models.Inventory{}, &models.Warehouse{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{}, &models.Discount{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func seedOrderFixture(t *testing.T, db *gorm.DB) *orderFixture {
	t.Helper()
	f := &orderFixture{db: db}

	f.audioShop = models.Shop{Slug: "audio-shop", Name: "音频店", OwnerUserID: 9, ShippingFee: models.NewMoneyFromInt(10), IsActive: true}
	f.homeShop = models.Shop{Slug: "home-shop", Name: "家居店", OwnerUserID: 9, ShippingFee: models.NewMoneyFromInt(5), IsActive: true}
	for _, shop := range []*models.Shop{&f.audioShop, &f.homeShop} {
		if err := db.Create(shop).Error; err != nil {
			t.Fatalf("create shop failed: %v", err)
		}
	}

	category := models.Category{Slug: "test-category", Name: "测试分类"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	audioSpu := models.Spu{
		ShopID: f.audioShop.ID, CategoryID: category.ID,
		Slug: "earbuds", Name: "无线耳机",
		Variations: models.VariationList{{Name: "color", Values: []string{"black", "white"}}},
		IsDraft:    false, IsPublish: true,
	}
	homeSpu := models.Spu{
		ShopID: f.homeShop.ID, CategoryID: category.ID,
		Slug: "kettle", Name: "电热水壶",
		Variations: models.VariationList{{Name: "size", Values: []string{"1L", "2L"}}},
		IsDraft:    false, IsPublish: true,
	}
	for _, spu := range []*models.Spu{&audioSpu, &homeSpu} {
		if err := db.Create(spu).Error; err != nil {
			t.Fatalf("create spu failed: %v", err)
		}
	}

	f.audioSku = models.Sku{SpuID: audioSpu.ID, TierIdx: models.IntArray{0}, TierCode: "0", Price: models.NewMoneyFromInt(100), Stock: 10}
	f.homeSku = models.Sku{SpuID: homeSpu.ID, TierIdx: models.IntArray{1}, TierCode: "1", Price: models.NewMoneyFromInt(50), Stock: 4}
	for _, sku := range []*models.Sku{&f.audioSku, &f.homeSku} {
		if err := db.Create(sku).Error; err != nil {
			t.Fatalf("create sku failed: %v", err)
		}
	}

	inventories := []models.Inventory{
		{SkuID: f.audioSku.ID, ShopID: f.audioShop.ID, WarehouseID: 1, Stock: 10},
		{SkuID: f.homeSku.ID, ShopID: f.homeShop.ID, WarehouseID: 1, Stock: 4},
	}
	if err := db.Create(&inventories).Error; err != nil {
		t.Fatalf("create inventories failed: %v", err)
	}
	return f
}

func (f *orderFixture) addCartItem(t *testing.T, userID uint, sku *models.Sku, shopID uint, quantity int) {
	t.Helper()
	item := models.CartItem{UserID: userID, SkuID: sku.ID, ShopID: shopID, Quantity: quantity, Selected: true}
	if err := f.db.Create(&item).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}
}

func (f *orderFixture) inventoryOf(t *testing.T, skuID uint) models.Inventory {
	t.Helper()
	var inventory models.Inventory
	if err := f.db.Where("sku_id = ?", skuID).First(&inventory).Error; err != nil {
		t.Fatalf("load inventory failed: %v", err)
	}
	return inventory
}

func newOrderServiceForTest(db *gorm.DB, freeShippingMin int) *OrderService {
	return NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewCartRepository(db),
		repository.NewSkuRepository(db),
		repository.NewInventoryRepository(db),
		repository.NewDiscountRepository(db),
		repository.NewShopRepository(db),
		nil,
		15,
		freeShippingMin,
	)
}

func TestCreateOrderFansOutByShop(t *testing.T) {
	db := setupOrderServiceDB(t, "order_service_fanout")
	f := seedOrderFixture(t, db)
	f.addCartItem(t, 1, &f.audioSku, f.audioShop.ID, 2)
	f.addCartItem(t, 1, &f.homeSku, f.homeShop.ID, 1)
	svc := newOrderServiceForTest(db, 0)

	order, err := svc.CreateOrder(CreateOrderInput{UserID: 1, PaymentType: constants.PaymentTypeCOD, ClientIP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if order.ParentID != nil {
		t.Fatalf("expected parent order, got child of %d", *order.ParentID)
	}
	if len(order.Children) != 2 {
		t.Fatalf("expected 2 child orders, got %d", len(order.Children))
	}
	for i, child := range order.Children {
		wantNo := fmt.Sprintf("%s-%02d", order.OrderNo, i+1)
		if child.OrderNo != wantNo {
			t.Fatalf("expected child order no %s, got %s", wantNo, child.OrderNo)
		}
		if child.Status != constants.OrderStatusCreated {
			t.Fatalf("expected created child, got %s", child.Status)
		}
	}

	// 父订单汇总：200+50 货款，10+5 运费
	if !order.RawTotal.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected raw total 250, got %s", order.RawTotal.String())
	}
	if !order.ShippingTotal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected shipping total 15, got %s", order.ShippingTotal.String())
	}
	if !order.GrandTotal.Equal(decimal.NewFromInt(265)) {
		t.Fatalf("expected grand total 265, got %s", order.GrandTotal.String())
	}

	if inv := f.inventoryOf(t, f.audioSku.ID); inv.Reserved != 2 {
		t.Fatalf("expected audio sku reserved 2, got %d", inv.Reserved)
	}
	if inv := f.inventoryOf(t, f.homeSku.ID); inv.Reserved != 1 {
		t.Fatalf("expected home sku reserved 1, got %d", inv.Reserved)
	}

	var cartCount int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if cartCount != 0 {
		t.Fatalf("expected cart cleared, got %d items", cartCount)
	}
}

func TestCreateOrderSnapshotsPrices(t *testing.T) {
	db := setupOrderServiceDB(t, "order_service_snapshot")
	f := seedOrderFixture(t, db)
	f.addCartItem(t, 1, &f.audioSku, f.audioShop.ID, 1)
	svc := newOrderServiceForTest(db, 0)

	order, err := svc.CreateOrder(CreateOrderInput{UserID: 1, PaymentType: constants.PaymentTypeCOD})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	// 下单后调价不影响已生成的订单快照
	if err := db.Model(&models.Sku{}).Where("id = ?", f.audioSku.ID).
		Update("price", models.NewMoneyFromInt(999)).Error; err != nil {
		t.Fatalf("update sku price failed: %v", err)
	}

	reloaded, err := svc.GetOrderByUser(order.ID, 1)
	if err != nil {
		t.Fatalf("GetOrderByUser error: %v", err)
	}
	if len(reloaded.Items) != 1 {
		t.Fatalf("expected 1 aggregated item, got %d", len(reloaded.Items))
	}
	item := reloaded.Items[0]
	if !item.UnitPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected snapshot unit price 100, got %s", item.UnitPrice.String())
	}
	if item.SkuValue["color"] != "black" {
		t.Fatalf("expected sku value snapshot, got %+v", item.SkuValue)
	}
}

func TestCreateOrderStockShortageRollsBack(t *testing.T) {
	db := setupOrderServiceDB(t, "order_service_shortage")
	f := seedOrderFixture(t, db)
	f.addCartItem(t, 1, &f.audioSku, f.audioShop.ID, 2)
	f.addCartItem(t, 1, &f.homeSku, f.homeShop.ID, 5) // 库存只有 4
	svc := newOrderServiceForTest(db, 0)

	_, err := svc.CreateOrder(CreateOrderInput{UserID: 1, PaymentType: constants.PaymentTypeCOD})
	if err != ErrSkuStockShortage {
		t.Fatalf("expected ErrSkuStockShortage, got %v", err)
	}

	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("expected no order persisted, got %d", orderCount)
	}
	if inv := f.inventoryOf(t, f.audioSku.ID); inv.Reserved != 0 {
		t.Fatalf("expected audio reservation rolled back, got %d", inv.Reserved)
	}
	var cartCount int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if cartCount != 2 {
		t.Fatalf("expected cart kept on failure, got %d items", cartCount)
	}
}

func TestCreateOrderAppliesDiscountAndFreeShipping(t *testing.T) {
	db := setupOrderServiceDB(t, "order_service_discount")
	f := seedOrderFixture(t, db)
	discount := models.Discount{
		ShopID:   f.audioShop.ID,
		Code:     "AUDIO10",
		Kind:     constants.DiscountKindPercent,
		Value:    models.NewMoneyFromInt(10),
		MinOrder: models.NewMoneyFromInt(50),
		MaxUses:  1,
		IsActive: true,
	}
	if err := db.Create(&discount).Error; err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	f.addCartItem(t, 1, &f.audioSku, f.audioShop.ID, 2)
	f.addCartItem(t, 1, &f.homeSku, f.homeShop.ID, 1)
	svc := newOrderServiceForTest(db, 100)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:        1,
		PaymentType:   constants.PaymentTypeCOD,
		DiscountCodes: map[uint]string{f.audioShop.ID: "AUDIO10"},
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	// 音频店铺 200：九折减 20、满 100 免运费；家居店铺 50 照常收 5 运费
	if !order.DiscountTotal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected discount total 20, got %s", order.DiscountTotal.String())
	}
	if !order.ShippingTotal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected shipping total 5, got %s", order.ShippingTotal.String())
	}
	if !order.GrandTotal.Equal(decimal.NewFromInt(235)) {
		t.Fatalf("expected grand total 235, got %s", order.GrandTotal.String())
	}

	var reloaded models.Discount
	if err := db.First(&reloaded, discount.ID).Error; err != nil {
		t.Fatalf("reload discount failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("expected used count 1, got %d", reloaded.UsedCount)
	}

	// 次数用尽后再次下单失败
	f.addCartItem(t, 2, &f.audioSku, f.audioShop.ID, 1)
	_, err = svc.CreateOrder(CreateOrderInput{
		UserID:        2,
		PaymentType:   constants.PaymentTypeCOD,
		DiscountCodes: map[uint]string{f.audioShop.ID: "AUDIO10"},
	})
	if err != ErrDiscountUsedUp {
		t.Fatalf("expected ErrDiscountUsedUp, got %v", err)
	}
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	db := setupOrderServiceDB(t, "order_service_bad_input")
	f := seedOrderFixture(t, db)
	svc := newOrderServiceForTest(db, 0)

	if _, err := svc.CreateOrder(CreateOrderInput{UserID: 1, PaymentType: "paypal"}); err != ErrPaymentTypeInvalid {
		t.Fatalf("expected ErrPaymentTypeInvalid, got %v", err)
	}
	if _, err := svc.CreateOrder(CreateOrderInput{UserID: 1, PaymentType: constants.PaymentTypeCOD}); err != ErrCartEmpty {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}

	// 下架商品不可结算
	if err := db.Model(&models.Spu{}).Where("id = ?", f.audioSku.SpuID).
		Update("is_publish", false).Error; err != nil {
		t.Fatalf("unpublish spu failed: %v", err)
	}
	f.addCartItem(t, 1, &f.audioSku, f.audioShop.ID, 1)
	if _, err := svc.CreateOrder(CreateOrderInput{UserID: 1, PaymentType: constants.PaymentTypeCOD}); err != ErrSkuNotOnSale {
		t.Fatalf("expected ErrSkuNotOnSale, got %v", err)
	}
}

func TestCancelOrderReleasesResources(t *testing.T) {
	db := setupOrderServiceDB(t, "order_service_cancel")
	f := seedOrderFixture(t, db)
	discount := models.Discount{
		ShopID: f.audioShop.ID, Code: "AUDIO10",
		Kind: constants.DiscountKindFixed, Value: models.NewMoneyFromInt(10),
		MaxUses: 5, IsActive: true,
	}
	if err := db.Create(&discount).Error; err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	f.addCartItem(t, 1, &f.audioSku, f.audioShop.ID, 2)
	f.addCartItem(t, 1, &f.homeSku, f.homeShop.ID, 1)
	svc := newOrderServiceForTest(db, 0)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:        1,
		PaymentType:   constants.PaymentTypeCOD,
		DiscountCodes: map[uint]string{f.audioShop.ID: "AUDIO10"},
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	canceled, err := svc.CancelOrder(order.ID, 1)
	if err != nil {
		t.Fatalf("CancelOrder error: %v", err)
	}
	if canceled.Status != constants.OrderStatusCanceled {
		t.Fatalf("expected canceled parent, got %s", canceled.Status)
	}
	for _, child := range canceled.Children {
		if child.Status != constants.OrderStatusCanceled {
			t.Fatalf("expected canceled child, got %s", child.Status)
		}
	}

	if inv := f.inventoryOf(t, f.audioSku.ID); inv.Reserved != 0 {
		t.Fatalf("expected audio reservation released, got %d", inv.Reserved)
	}
	if inv := f.inventoryOf(t, f.homeSku.ID); inv.Reserved != 0 {
		t.Fatalf("expected home reservation released, got %d", inv.Reserved)
	}
	var reloaded models.Discount
	if err := db.First(&reloaded, discount.ID).Error; err != nil {
		t.Fatalf("reload discount failed: %v", err)
	}
	if reloaded.UsedCount != 0 {
		t.Fatalf("expected discount use refunded, got %d", reloaded.UsedCount)
	}

	// 终态订单不可再取消
	if _, err := svc.CancelOrder(order.ID, 1); err != ErrOrderCancelNotAllowed {
		t.Fatalf("expected ErrOrderCancelNotAllowed, got %v", err)
	}
	if _, err := svc.CancelOrder(order.ID, 2); err != ErrOrderNotFound {
		t.Fatalf("expected ErrOrderNotFound for other user, got %v", err)
	}
}

func TestShopOrderLifecycle(t *testing.T) {
	db := setupOrderServiceDB(t, "order_service_lifecycle")
	f := seedOrderFixture(t, db)
	f.addCartItem(t, 1, &f.audioSku, f.audioShop.ID, 2)
	f.addCartItem(t, 1, &f.homeSku, f.homeShop.ID, 1)
	svc := newOrderServiceForTest(db, 0)

	order, err := svc.CreateOrder(CreateOrderInput{UserID: 1, PaymentType: constants.PaymentTypeCOD})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	var audioChild, homeChild *models.Order
	for i := range order.Children {
		switch order.Children[i].ShopID {
		case f.audioShop.ID:
			audioChild = &order.Children[i]
		case f.homeShop.ID:
			homeChild = &order.Children[i]
		}
	}
	if audioChild == nil || homeChild == nil {
		t.Fatalf("missing child orders: %+v", order.Children)
	}

	// 店铺归属校验
	if _, err := svc.ApproveOrder(f.homeShop.ID, audioChild.ID); err != ErrOrderShopMismatch {
		t.Fatalf("expected ErrOrderShopMismatch, got %v", err)
	}
	// 父订单不可被店铺操作
	if _, err := svc.ApproveOrder(f.audioShop.ID, order.ID); err != ErrOrderNotFound {
		t.Fatalf("expected ErrOrderNotFound for parent, got %v", err)
	}

	approved, err := svc.ApproveOrder(f.audioShop.ID, audioChild.ID)
	if err != nil {
		t.Fatalf("ApproveOrder error: %v", err)
	}
	if approved.Status != constants.OrderStatusApproved || approved.ApprovedAt == nil {
		t.Fatalf("unexpected approved order: %+v", approved)
	}
	// 已审核订单不可重复审核
	if _, err := svc.ApproveOrder(f.audioShop.ID, audioChild.ID); err != ErrOrderTransitionInvalid {
		t.Fatalf("expected ErrOrderTransitionInvalid, got %v", err)
	}

	// 拒绝必须给出原因
	if _, err := svc.RejectOrder(f.homeShop.ID, homeChild.ID, "  "); err != ErrRejectReasonRequired {
		t.Fatalf("expected ErrRejectReasonRequired, got %v", err)
	}
	rejected, err := svc.RejectOrder(f.homeShop.ID, homeChild.ID, "out of delivery area")
	if err != nil {
		t.Fatalf("RejectOrder error: %v", err)
	}
	if rejected.Status != constants.OrderStatusRejected || rejected.RejectReason != "out of delivery area" {
		t.Fatalf("unexpected rejected order: %+v", rejected)
	}
	if inv := f.inventoryOf(t, f.homeSku.ID); inv.Reserved != 0 {
		t.Fatalf("expected rejected reservation released, got %d", inv.Reserved)
	}

	completed, err := svc.CompleteOrder(f.audioShop.ID, audioChild.ID)
	if err != nil {
		t.Fatalf("CompleteOrder error: %v", err)
	}
	if completed.Status != constants.OrderStatusCompleted || completed.CompletedAt == nil {
		t.Fatalf("unexpected completed order: %+v", completed)
	}

	// 货到付款在交付完成时计收款
	reloadedChild, err := repository.NewOrderRepository(db).GetByID(audioChild.ID)
	if err != nil || reloadedChild == nil {
		t.Fatalf("reload child failed: %v", err)
	}
	if !reloadedChild.PaymentPaid || reloadedChild.PaidAt == nil {
		t.Fatalf("expected COD order marked paid on completion: %+v", reloadedChild)
	}

	// 完成核销：占用与在库同时扣减
	if inv := f.inventoryOf(t, f.audioSku.ID); inv.Reserved != 0 || inv.Stock != 8 {
		t.Fatalf("expected inventory committed (reserved=0 stock=8), got reserved=%d stock=%d", inv.Reserved, inv.Stock)
	}
	var sku models.Sku
	if err := db.First(&sku, f.audioSku.ID).Error; err != nil {
		t.Fatalf("reload sku failed: %v", err)
	}
	if sku.Stock != 8 {
		t.Fatalf("expected sku stock 8, got %d", sku.Stock)
	}

	// 全部子订单收敛后父订单收敛，且存在完成的子订单时取完成态
	parent, err := repository.NewOrderRepository(db).GetByID(order.ID)
	if err != nil || parent == nil {
		t.Fatalf("reload parent failed: %v", err)
	}
	if parent.Status != constants.OrderStatusCompleted {
		t.Fatalf("expected parent completed, got %s", parent.Status)
	}
}

func TestCompleteOrderVNPayRequiresPayment(t *testing.T) {
	db := setupOrderServiceDB(t, "order_service_vnpay_gate")
	f := seedOrderFixture(t, db)
	f.addCartItem(t, 1, &f.audioSku, f.audioShop.ID, 1)
	svc := newOrderServiceForTest(db, 0)

	order, err := svc.CreateOrder(CreateOrderInput{UserID: 1, PaymentType: constants.PaymentTypeVNPay})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	child := order.Children[0]
	if _, err := svc.ApproveOrder(f.audioShop.ID, child.ID); err != nil {
		t.Fatalf("ApproveOrder error: %v", err)
	}
	if _, err := svc.CompleteOrder(f.audioShop.ID, child.ID); err != ErrPaymentOrderNotOpen {
		t.Fatalf("expected ErrPaymentOrderNotOpen for unpaid online order, got %v", err)
	}

	// 收到支付确认后方可完成
	if err := db.Model(&models.Order{}).Where("id = ?", child.ID).
		Update("payment_paid", true).Error; err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if _, err := svc.CompleteOrder(f.audioShop.ID, child.ID); err != nil {
		t.Fatalf("CompleteOrder after payment error: %v", err)
	}
}

func TestCancelExpiredOrder(t *testing.T) {
	db := setupOrderServiceDB(t, "order_service_expire")
	f := seedOrderFixture(t, db)
	f.addCartItem(t, 1, &f.audioSku, f.audioShop.ID, 1)
	svc := newOrderServiceForTest(db, 0)

	vnpayOrder, err := svc.CreateOrder(CreateOrderInput{UserID: 1, PaymentType: constants.PaymentTypeVNPay})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	canceled, err := svc.CancelExpiredOrder(vnpayOrder.ID)
	if err != nil {
		t.Fatalf("CancelExpiredOrder error: %v", err)
	}
	if canceled.Status != constants.OrderStatusCanceled {
		t.Fatalf("expected canceled, got %s", canceled.Status)
	}
	if inv := f.inventoryOf(t, f.audioSku.ID); inv.Reserved != 0 {
		t.Fatalf("expected reservation released, got %d", inv.Reserved)
	}

	// 货到付款订单不受超时取消影响
	f.addCartItem(t, 1, &f.audioSku, f.audioShop.ID, 1)
	codOrder, err := svc.CreateOrder(CreateOrderInput{UserID: 1, PaymentType: constants.PaymentTypeCOD})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	untouched, err := svc.CancelExpiredOrder(codOrder.ID)
	if err != nil {
		t.Fatalf("CancelExpiredOrder error: %v", err)
	}
	if untouched.Status != constants.OrderStatusCreated {
		t.Fatalf("expected COD order untouched, got %s", untouched.Status)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from string
		to   string
		want bool
	}{
		{constants.OrderStatusCreated, constants.OrderStatusApproved, true},
		{constants.OrderStatusCreated, constants.OrderStatusRejected, true},
		{constants.OrderStatusCreated, constants.OrderStatusCanceled, true},
		{constants.OrderStatusCreated, constants.OrderStatusCompleted, false},
		{constants.OrderStatusApproved, constants.OrderStatusCompleted, true},
		{constants.OrderStatusApproved, constants.OrderStatusCanceled, true},
		{constants.OrderStatusApproved, constants.OrderStatusRejected, false},
		{constants.OrderStatusCompleted, constants.OrderStatusCanceled, false},
		{constants.OrderStatusCanceled, constants.OrderStatusApproved, false},
		{" Created ", constants.OrderStatusApproved, true},
	}
	for _, c := range cases {
		if got := canTransition(c.from, c.to); got != c.want {
			t.Fatalf("canTransition(%q, %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCalcParentStatus(t *testing.T) {
	statuses := func(list ...string) []models.Order {
		orders := make([]models.Order, 0, len(list))
		for _, status := range list {
			orders = append(orders, models.Order{Status: status})
		}
		return orders
	}
	cases := []struct {
		name     string
		children []models.Order
		current  string
		want     string
	}{
		{"all canceled", statuses("canceled", "canceled"), "created", constants.OrderStatusCanceled},
		{"completed wins", statuses("completed", "rejected"), "approved", constants.OrderStatusCompleted},
		{"rejected over canceled", statuses("rejected", "canceled"), "created", constants.OrderStatusRejected},
		{"pending child keeps created", statuses("created", "completed"), "created", constants.OrderStatusCreated},
		{"all approved", statuses("approved", "approved"), "created", constants.OrderStatusApproved},
		{"no children", nil, "created", "created"},
	}
	for _, c := range cases {
		if got := calcParentStatus(c.children, c.current); got != c.want {
			t.Fatalf("%s: calcParentStatus = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestBuildChildOrderNo(t *testing.T) {
	if got := buildChildOrderNo("VM20260101ABC", 3); got != "VM20260101ABC-03" {
		t.Fatalf("unexpected child order no: %s", got)
	}
	if got := buildChildOrderNo("VM20260101ABC", 0); got != "VM20260101ABC" {
		t.Fatalf("expected parent no for seq 0, got %s", got)
	}
}

func TestCreateOrderNormalizesPaymentType(t *testing.T) {
	db := setupOrderServiceDB(t, "order_service_payment_type")
	f := seedOrderFixture(t, db)
	svc := newOrderServiceForTest(db, 0)

	f.addCartItem(t, 1, &f.audioSku, f.audioShop.ID, 1)
	parent, err := svc.CreateOrder(CreateOrderInput{UserID: 1, PaymentType: " COD "})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if parent.PaymentType != constants.PaymentTypeCOD {
		t.Fatalf("expected normalized payment type %q, got %q", constants.PaymentTypeCOD, parent.PaymentType)
	}

	var child models.Order
	if err := db.Where("parent_id = ?", parent.ID).First(&child).Error; err != nil {
		t.Fatalf("load child order failed: %v", err)
	}
	if child.PaymentType != constants.PaymentTypeCOD {
		t.Fatalf("expected child payment type %q, got %q", constants.PaymentTypeCOD, child.PaymentType)
	}

	// 落库的是归一化值，货到付款完成单据正常标记收款
	if _, err := svc.ApproveOrder(f.audioShop.ID, child.ID); err != nil {
		t.Fatalf("ApproveOrder error: %v", err)
	}
	if _, err := svc.CompleteOrder(f.audioShop.ID, child.ID); err != nil {
		t.Fatalf("CompleteOrder error: %v", err)
	}
	var completed models.Order
	if err := db.First(&completed, child.ID).Error; err != nil {
		t.Fatalf("reload child order failed: %v", err)
	}
	if !completed.PaymentPaid || completed.PaidAt == nil {
		t.Fatalf("expected cod order paid on completion, got paid=%v paid_at=%v", completed.PaymentPaid, completed.PaidAt)
	}
}

func TestCreateOrderRejectsClosedShop(t *testing.T) {
	db := setupOrderServiceDB(t, "order_service_closed_shop")
	f := seedOrderFixture(t, db)
	svc := newOrderServiceForTest(db, 0)

	closedShop := models.Shop{Slug: "closed-shop", Name: "歇业店", OwnerUserID: 9, IsActive: false}
	if err := db.Create(&closedShop).Error; err != nil {
		t.Fatalf("create shop failed: %v", err)
	}
	var closed models.Shop
	if err := db.First(&closed, closedShop.ID).Error; err != nil {
		t.Fatalf("reload shop failed: %v", err)
	}
	if closed.IsActive {
		t.Fatalf("expected inactive flag persisted on create")
	}

	if err := db.Model(&models.Spu{}).Where("shop_id = ?", f.audioShop.ID).
		Update("shop_id", closedShop.ID).Error; err != nil {
		t.Fatalf("move spu failed: %v", err)
	}
	f.addCartItem(t, 1, &f.audioSku, closedShop.ID, 1)
	if _, err := svc.CreateOrder(CreateOrderInput{UserID: 1, PaymentType: constants.PaymentTypeCOD}); err != ErrShopClosed {
		t.Fatalf("expected ErrShopClosed, got %v", err)
	}
}
