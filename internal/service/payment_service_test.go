package service

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/velamall/internal/constants"
	"github.com/velamall/internal/models"
	"github.com/velamall/internal/payment/vnpay"
	"github.com/velamall/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const testHashSecret = "VNPAYTESTSECRET"

func testGatewayConfig() *vnpay.Config {
	return &vnpay.Config{
		TmnCode:       "TESTTMN",
		HashSecret:    testHashSecret,
		PayURL:        "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:     "https://shop.example.com/payments/vnpay/return",
		ExpireMinutes: 15,
	}
}

func setupPaymentServiceDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.Payment{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func newPaymentServiceForTest(db *gorm.DB) *PaymentService {
	return NewPaymentService(
		repository.NewOrderRepository(db),
		repository.NewPaymentRepository(db),
		nil,
		nil,
		testGatewayConfig(),
	)
}

// seedPaidableOrder 父订单 + 单个 vnpay 子订单
func seedPaidableOrder(t *testing.T, db *gorm.DB, paymentType string) (*models.Order, *models.Order) {
	t.Helper()
	parent := models.Order{
		OrderNo:     fmt.Sprintf("VM%d", time.Now().UnixNano()),
		UserID:      1,
		Status:      constants.OrderStatusCreated,
		PaymentType: paymentType,
		Currency:    constants.SiteCurrencyDefault,
		GrandTotal:  models.NewMoneyFromInt(150),
	}
	if err := db.Create(&parent).Error; err != nil {
		t.Fatalf("create parent order failed: %v", err)
	}
	child := models.Order{
		OrderNo:     parent.OrderNo + "-01",
		ParentID:    &parent.ID,
		UserID:      1,
		ShopID:      7,
		Status:      constants.OrderStatusCreated,
		PaymentType: paymentType,
		Currency:    constants.SiteCurrencyDefault,
		GrandTotal:  models.NewMoneyFromInt(150),
	}
	if err := db.Create(&child).Error; err != nil {
		t.Fatalf("create child order failed: %v", err)
	}
	return &parent, &child
}

func seedPendingPayment(t *testing.T, db *gorm.DB, order *models.Order, txnRef string) *models.Payment {
	t.Helper()
	expires := time.Now().Add(15 * time.Minute)
	payment := models.Payment{
		OrderID:   order.ID,
		TxnRef:    txnRef,
		Provider:  constants.PaymentProviderVNPay,
		Amount:    order.GrandTotal,
		Currency:  order.Currency,
		Status:    constants.PaymentStatusPending,
		PayURL:    "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html?x=1",
		ExpiresAt: &expires,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	return &payment
}

// signCallbackQuery 按网关规则对回调参数签名
func signCallbackQuery(secret string, params map[string]string) url.Values {
	keys := make([]string, 0, len(params))
	for key := range params {
		if params[key] == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(params[key]))
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "&")))

	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	form.Set("vnp_SecureHash", hex.EncodeToString(mac.Sum(nil)))
	return form
}

func successIPNParams(txnRef string, amount string) map[string]string {
	return map[string]string{
		"vnp_TmnCode":           "TESTTMN",
		"vnp_TxnRef":            txnRef,
		"vnp_Amount":            amount,
		"vnp_ResponseCode":      "00",
		"vnp_TransactionStatus": "00",
		"vnp_TransactionNo":     "14226112",
		"vnp_BankCode":          "NCB",
		"vnp_PayDate":           "20260830120000",
	}
}

func TestHandleVNPayIPNSuccess(t *testing.T) {
	db := setupPaymentServiceDB(t, "payment_ipn_success")
	parent, child := seedPaidableOrder(t, db, constants.PaymentTypeVNPay)
	payment := seedPendingPayment(t, db, child, child.OrderNo+"-1234")
	svc := newPaymentServiceForTest(db)

	form := signCallbackQuery(testHashSecret, successIPNParams(payment.TxnRef, "15000"))
	rsp := svc.HandleVNPayIPN(form)
	if rsp.RspCode != constants.VNPayIPNConfirmSuccess {
		t.Fatalf("expected RspCode 00, got %s (%s)", rsp.RspCode, rsp.Message)
	}

	var reloaded models.Payment
	if err := db.First(&reloaded, payment.ID).Error; err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if reloaded.Status != constants.PaymentStatusCompleted || reloaded.PaidAt == nil {
		t.Fatalf("unexpected payment after IPN: %+v", reloaded)
	}
	if reloaded.VNPayTxnNo != "14226112" || reloaded.ResponseCode != "00" {
		t.Fatalf("expected gateway metadata recorded, got %+v", reloaded)
	}

	var reloadedChild models.Order
	if err := db.First(&reloadedChild, child.ID).Error; err != nil {
		t.Fatalf("reload child failed: %v", err)
	}
	if !reloadedChild.PaymentPaid || reloadedChild.PaidAt == nil {
		t.Fatalf("expected child marked paid: %+v", reloadedChild)
	}
	// 唯一子订单付清后父订单同步为已支付
	var reloadedParent models.Order
	if err := db.First(&reloadedParent, parent.ID).Error; err != nil {
		t.Fatalf("reload parent failed: %v", err)
	}
	if !reloadedParent.PaymentPaid {
		t.Fatalf("expected parent marked paid: %+v", reloadedParent)
	}
}

func TestHandleVNPayIPNIdempotent(t *testing.T) {
	db := setupPaymentServiceDB(t, "payment_ipn_idempotent")
	_, child := seedPaidableOrder(t, db, constants.PaymentTypeVNPay)
	payment := seedPendingPayment(t, db, child, child.OrderNo+"-2345")
	svc := newPaymentServiceForTest(db)

	form := signCallbackQuery(testHashSecret, successIPNParams(payment.TxnRef, "15000"))
	if rsp := svc.HandleVNPayIPN(form); rsp.RspCode != constants.VNPayIPNConfirmSuccess {
		t.Fatalf("first IPN: expected 00, got %s", rsp.RspCode)
	}
	// 同一结果重复投递，应答保持一致且不产生状态迁移
	if rsp := svc.HandleVNPayIPN(form); rsp.RspCode != constants.VNPayIPNConfirmSuccess {
		t.Fatalf("repeat IPN: expected 00, got %s", rsp.RspCode)
	}

	// 终态后投递相反结果应答已确认
	failParams := successIPNParams(payment.TxnRef, "15000")
	failParams["vnp_ResponseCode"] = "24"
	failParams["vnp_TransactionStatus"] = "02"
	failForm := signCallbackQuery(testHashSecret, failParams)
	if rsp := svc.HandleVNPayIPN(failForm); rsp.RspCode != constants.VNPayIPNOrderConfirmed {
		t.Fatalf("conflicting IPN: expected 02, got %s", rsp.RspCode)
	}

	var reloaded models.Payment
	if err := db.First(&reloaded, payment.ID).Error; err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if reloaded.Status != constants.PaymentStatusCompleted {
		t.Fatalf("expected status unchanged, got %s", reloaded.Status)
	}
}

func TestHandleVNPayIPNRejectsBadCallback(t *testing.T) {
	db := setupPaymentServiceDB(t, "payment_ipn_bad")
	_, child := seedPaidableOrder(t, db, constants.PaymentTypeVNPay)
	payment := seedPendingPayment(t, db, child, child.OrderNo+"-3456")
	svc := newPaymentServiceForTest(db)

	// 签名被篡改
	form := signCallbackQuery(testHashSecret, successIPNParams(payment.TxnRef, "15000"))
	form.Set("vnp_Amount", "1")
	if rsp := svc.HandleVNPayIPN(form); rsp.RspCode != constants.VNPayIPNSignatureInvalid {
		t.Fatalf("tampered callback: expected 97, got %s", rsp.RspCode)
	}

	// 金额不一致
	mismatch := signCallbackQuery(testHashSecret, successIPNParams(payment.TxnRef, "99900"))
	if rsp := svc.HandleVNPayIPN(mismatch); rsp.RspCode != constants.VNPayIPNAmountInvalid {
		t.Fatalf("amount mismatch: expected 04, got %s", rsp.RspCode)
	}

	// 交易号不存在
	unknown := signCallbackQuery(testHashSecret, successIPNParams("VM-NOPE-0000", "15000"))
	if rsp := svc.HandleVNPayIPN(unknown); rsp.RspCode != constants.VNPayIPNOrderNotFound {
		t.Fatalf("unknown txn: expected 01, got %s", rsp.RspCode)
	}

	var reloaded models.Payment
	if err := db.First(&reloaded, payment.ID).Error; err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if reloaded.Status != constants.PaymentStatusPending {
		t.Fatalf("expected payment untouched, got %s", reloaded.Status)
	}
}

func TestHandleVNPayReturnDoesNotMutate(t *testing.T) {
	db := setupPaymentServiceDB(t, "payment_return")
	_, child := seedPaidableOrder(t, db, constants.PaymentTypeVNPay)
	payment := seedPendingPayment(t, db, child, child.OrderNo+"-4567")
	svc := newPaymentServiceForTest(db)

	form := signCallbackQuery(testHashSecret, successIPNParams(payment.TxnRef, "15000"))
	result, err := svc.HandleVNPayReturn(form)
	if err != nil {
		t.Fatalf("HandleVNPayReturn error: %v", err)
	}
	if !result.Success || result.OrderID != child.ID {
		t.Fatalf("unexpected return result: %+v", result)
	}

	// 同步跳转只读，权威状态以 IPN 为准
	var reloaded models.Payment
	if err := db.First(&reloaded, payment.ID).Error; err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if reloaded.Status != constants.PaymentStatusPending {
		t.Fatalf("expected pending after return, got %s", reloaded.Status)
	}
	var reloadedChild models.Order
	if err := db.First(&reloadedChild, child.ID).Error; err != nil {
		t.Fatalf("reload child failed: %v", err)
	}
	if reloadedChild.PaymentPaid {
		t.Fatalf("expected order unpaid after return")
	}

	form.Set("vnp_SecureHash", strings.Repeat("ab", 64))
	if _, err := svc.HandleVNPayReturn(form); err != ErrPaymentSignInvalid {
		t.Fatalf("expected ErrPaymentSignInvalid, got %v", err)
	}
}

func TestCreateVNPayPayment(t *testing.T) {
	db := setupPaymentServiceDB(t, "payment_create")
	parent, child := seedPaidableOrder(t, db, constants.PaymentTypeVNPay)
	svc := newPaymentServiceForTest(db)

	// 支付挂在子订单上
	if _, err := svc.CreateVNPayPayment(CreateVNPayPaymentInput{OrderID: parent.ID, UserID: 1}); err != ErrPaymentOrderNotOpen {
		t.Fatalf("parent order: expected ErrPaymentOrderNotOpen, got %v", err)
	}
	if _, err := svc.CreateVNPayPayment(CreateVNPayPaymentInput{OrderID: child.ID, UserID: 2}); err != ErrOrderNotFound {
		t.Fatalf("other user: expected ErrOrderNotFound, got %v", err)
	}

	payment, err := svc.CreateVNPayPayment(CreateVNPayPaymentInput{
		OrderID:  child.ID,
		UserID:   1,
		ClientIP: "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("CreateVNPayPayment error: %v", err)
	}
	if payment.Status != constants.PaymentStatusPending {
		t.Fatalf("expected pending payment, got %s", payment.Status)
	}
	if payment.PayURL == "" || payment.ExpiresAt == nil {
		t.Fatalf("expected pay url and expiry, got %+v", payment)
	}
	if !strings.HasPrefix(payment.TxnRef, child.OrderNo+"-") {
		t.Fatalf("expected txn ref derived from order no, got %s", payment.TxnRef)
	}

	// 未过期的待支付记录直接复用
	again, err := svc.CreateVNPayPayment(CreateVNPayPaymentInput{OrderID: child.ID, UserID: 1})
	if err != nil {
		t.Fatalf("second CreateVNPayPayment error: %v", err)
	}
	if again.ID != payment.ID || again.TxnRef != payment.TxnRef {
		t.Fatalf("expected pending payment reuse, got %d vs %d", again.ID, payment.ID)
	}

	// 已支付订单不可再创建
	if err := db.Model(&models.Order{}).Where("id = ?", child.ID).
		Update("payment_paid", true).Error; err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if _, err := svc.CreateVNPayPayment(CreateVNPayPaymentInput{OrderID: child.ID, UserID: 1}); err != ErrPaymentOrderPaid {
		t.Fatalf("paid order: expected ErrPaymentOrderPaid, got %v", err)
	}
}

func TestCreateVNPayPaymentRejectsCOD(t *testing.T) {
	db := setupPaymentServiceDB(t, "payment_create_cod")
	_, child := seedPaidableOrder(t, db, constants.PaymentTypeCOD)
	svc := newPaymentServiceForTest(db)

	if _, err := svc.CreateVNPayPayment(CreateVNPayPaymentInput{OrderID: child.ID, UserID: 1}); err != ErrPaymentTypeInvalid {
		t.Fatalf("expected ErrPaymentTypeInvalid, got %v", err)
	}
}

func TestConfirmCODPayment(t *testing.T) {
	db := setupPaymentServiceDB(t, "payment_cod_confirm")
	parent, child := seedPaidableOrder(t, db, constants.PaymentTypeCOD)
	svc := newPaymentServiceForTest(db)

	if _, err := svc.ConfirmCODPayment(99, child.ID); err != ErrOrderShopMismatch {
		t.Fatalf("wrong shop: expected ErrOrderShopMismatch, got %v", err)
	}

	payment, err := svc.ConfirmCODPayment(7, child.ID)
	if err != nil {
		t.Fatalf("ConfirmCODPayment error: %v", err)
	}
	if payment.Provider != constants.PaymentProviderCOD || payment.Status != constants.PaymentStatusCompleted {
		t.Fatalf("unexpected COD payment: %+v", payment)
	}
	if !payment.Amount.Equal(child.GrandTotal.Decimal) {
		t.Fatalf("expected amount %s, got %s", child.GrandTotal.String(), payment.Amount.String())
	}

	var reloadedChild, reloadedParent models.Order
	if err := db.First(&reloadedChild, child.ID).Error; err != nil {
		t.Fatalf("reload child failed: %v", err)
	}
	if err := db.First(&reloadedParent, parent.ID).Error; err != nil {
		t.Fatalf("reload parent failed: %v", err)
	}
	if !reloadedChild.PaymentPaid || !reloadedParent.PaymentPaid {
		t.Fatalf("expected both orders marked paid")
	}

	if _, err := svc.ConfirmCODPayment(7, child.ID); err != ErrPaymentOrderPaid {
		t.Fatalf("second confirm: expected ErrPaymentOrderPaid, got %v", err)
	}
}

func TestSyncPaymentStatus(t *testing.T) {
	db := setupPaymentServiceDB(t, "payment_sync")
	_, child := seedPaidableOrder(t, db, constants.PaymentTypeVNPay)
	svc := newPaymentServiceForTest(db)

	expired := seedPendingPayment(t, db, child, child.OrderNo+"-5678")
	past := time.Now().Add(-time.Hour)
	if err := db.Model(&models.Payment{}).Where("id = ?", expired.ID).
		Update("expires_at", past).Error; err != nil {
		t.Fatalf("expire payment failed: %v", err)
	}
	if err := svc.SyncPaymentStatus(expired.ID); err != nil {
		t.Fatalf("SyncPaymentStatus error: %v", err)
	}
	var reloaded models.Payment
	if err := db.First(&reloaded, expired.ID).Error; err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if reloaded.Status != constants.PaymentStatusFailed {
		t.Fatalf("expected expired payment failed, got %s", reloaded.Status)
	}

	// 未过期的待支付记录保持不变
	active := seedPendingPayment(t, db, child, child.OrderNo+"-6789")
	if err := svc.SyncPaymentStatus(active.ID); err != nil {
		t.Fatalf("SyncPaymentStatus error: %v", err)
	}
	var kept models.Payment
	if err := db.First(&kept, active.ID).Error; err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if kept.Status != constants.PaymentStatusPending {
		t.Fatalf("expected pending kept, got %s", kept.Status)
	}

	if err := svc.SyncPaymentStatus(99999); err != ErrPaymentNotFound {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}
