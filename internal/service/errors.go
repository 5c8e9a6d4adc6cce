package service

import "errors"

// 商品与 SKU 相关错误
var (
	ErrSpuNotFound        = errors.New("product not found")
	ErrSpuSlugExists      = errors.New("product slug already exists")
	ErrSpuUpdateFailed    = errors.New("product update failed")
	ErrSkuNotFound        = errors.New("sku not found")
	ErrTierIndexInvalid   = errors.New("invalid tier index")
	ErrTierIndexDuplicate = errors.New("duplicate tier index tuple")
	ErrSkuCreateFailed    = errors.New("create sku failed")
	ErrSkuPriceInvalid    = errors.New("sku price invalid")
	ErrSkuStockInvalid    = errors.New("sku stock invalid")
	ErrWarehouseNotFound  = errors.New("warehouse not found")
	ErrCategoryNotFound   = errors.New("category not found")
)

// 购物车相关错误
var (
	ErrCartItemInvalid  = errors.New("cart item invalid")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrSkuStockShortage = errors.New("sku stock insufficient")
	ErrSkuNotOnSale     = errors.New("sku not on sale")
)

// 订单相关错误
var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderFetchFailed       = errors.New("order fetch failed")
	ErrOrderCreateFailed      = errors.New("order create failed")
	ErrOrderUpdateFailed      = errors.New("order update failed")
	ErrOrderCancelNotAllowed  = errors.New("order cannot be canceled")
	ErrOrderTransitionInvalid = errors.New("order status transition not allowed")
	ErrOrderNotOwned          = errors.New("order does not belong to user")
	ErrOrderShopMismatch      = errors.New("order does not belong to shop")
	ErrRejectReasonRequired   = errors.New("reject reason required")
	ErrPaymentTypeInvalid     = errors.New("payment type invalid")
	ErrShopNotFound           = errors.New("shop not found")
	ErrShopClosed             = errors.New("shop is closed")
)

// 优惠码相关错误
var (
	ErrDiscountNotFound   = errors.New("discount not found")
	ErrDiscountNotActive  = errors.New("discount not active")
	ErrDiscountExpired    = errors.New("discount expired")
	ErrDiscountMinOrder   = errors.New("order amount below discount threshold")
	ErrDiscountUsedUp     = errors.New("discount usage limit reached")
	ErrDiscountKindBad    = errors.New("discount kind invalid")
	ErrDiscountCodeExists = errors.New("discount code already exists")
)

// 支付相关错误
var (
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrPaymentCreateFailed   = errors.New("payment create failed")
	ErrPaymentOrderPaid      = errors.New("order already paid")
	ErrPaymentOrderNotOpen   = errors.New("order not payable")
	ErrPaymentAmountMismatch = errors.New("payment amount mismatch")
	ErrPaymentSignInvalid    = errors.New("payment signature invalid")
	ErrPaymentInProgress     = errors.New("payment creation in progress")
	ErrPaymentGatewayFailed  = errors.New("payment gateway unavailable")
)

// 评价相关错误
var (
	ErrReviewExists        = errors.New("review already exists")
	ErrReviewOrderNotDone  = errors.New("order not completed")
	ErrReviewNotCustomer   = errors.New("order does not belong to reviewer")
	ErrReviewSkuNotInOrder = errors.New("sku not found in order items")
	ErrReviewRatingInvalid = errors.New("review rating must be between 1 and 5")
	ErrReviewCreateFailed  = errors.New("review create failed")
)

// 用户认证相关错误
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserEmailExists    = errors.New("email already registered")
	ErrUserDisabled       = errors.New("user disabled")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooWeak    = errors.New("password does not meet policy")
)

// 队列相关错误
var ErrQueueUnavailable = errors.New("queue unavailable")
