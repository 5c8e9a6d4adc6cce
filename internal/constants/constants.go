package constants

// 订单状态常量
const (
	OrderStatusCreated   = "created"
	OrderStatusApproved  = "approved"
	OrderStatusRejected  = "rejected"
	OrderStatusCompleted = "completed"
	OrderStatusCanceled  = "canceled"
)

// 支付方式常量
const (
	PaymentTypeCOD          = "cod"
	PaymentTypeVNPay        = "vnpay"
	PaymentTypeBankTransfer = "bank_transfer"
	PaymentTypeCreditCard   = "credit_card"
)

// 支付状态常量
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCanceled  = "canceled"
)

// 支付提供方常量
const (
	PaymentProviderVNPay = "vnpay"
	PaymentProviderCOD   = "cod"
)

// 优惠码类型常量
const (
	DiscountKindFixed   = "fixed"
	DiscountKindPercent = "percent"
)

// 用户角色常量
const (
	UserRoleCustomer  = "customer"
	UserRoleShopStaff = "shop_staff"
)

// 队列与任务常量
const (
	QueueDefault = "velamall:default"

	TaskOrderTimeoutCancel = "order:timeout_cancel"
	TaskPaymentStatusSync  = "payment:status_sync"
)

// 站点默认币种
const SiteCurrencyDefault = "VND"

// VNPay IPN 应答码常量（返回给网关的 RspCode）
const (
	VNPayIPNConfirmSuccess   = "00"
	VNPayIPNOrderNotFound    = "01"
	VNPayIPNOrderConfirmed   = "02"
	VNPayIPNAmountInvalid    = "04"
	VNPayIPNSignatureInvalid = "97"
	VNPayIPNUnknownError     = "99"
)
