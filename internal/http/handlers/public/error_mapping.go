package public

import (
	"errors"

	"github.com/velamall/internal/http/response"
	"github.com/velamall/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var orderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentTypeInvalid, code: response.CodeBadRequest, msg: "unsupported payment type"},
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: "no selected cart items"},
	{target: service.ErrCartItemInvalid, code: response.CodeBadRequest, msg: "invalid cart item"},
	{target: service.ErrSkuNotFound, code: response.CodeBadRequest, msg: "sku not found"},
	{target: service.ErrSkuNotOnSale, code: response.CodeBadRequest, msg: "product not on sale"},
	{target: service.ErrSkuStockShortage, code: response.CodeConflict, msg: "insufficient stock"},
	{target: service.ErrShopNotFound, code: response.CodeBadRequest, msg: "shop not found"},
	{target: service.ErrShopClosed, code: response.CodeBadRequest, msg: "shop is closed"},
	{target: service.ErrDiscountNotFound, code: response.CodeBadRequest, msg: "discount code not found"},
	{target: service.ErrDiscountNotActive, code: response.CodeBadRequest, msg: "discount code not active"},
	{target: service.ErrDiscountExpired, code: response.CodeBadRequest, msg: "discount code expired"},
	{target: service.ErrDiscountMinOrder, code: response.CodeBadRequest, msg: "order below discount minimum"},
	{target: service.ErrDiscountUsedUp, code: response.CodeConflict, msg: "discount code used up"},
}

var orderCancelErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderNotOwned, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderCancelNotAllowed, code: response.CodeConflict, msg: "order can no longer be canceled"},
	{target: service.ErrOrderTransitionInvalid, code: response.CodeConflict, msg: "order can no longer be canceled"},
}

var orderFetchErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderNotOwned, code: response.CodeNotFound, msg: "order not found"},
}

var paymentCreateErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderFetchFailed, code: response.CodeInternal, msg: "order fetch failed"},
	{target: service.ErrPaymentTypeInvalid, code: response.CodeBadRequest, msg: "order is not a vnpay order"},
	{target: service.ErrPaymentOrderPaid, code: response.CodeConflict, msg: "order already paid"},
	{target: service.ErrPaymentOrderNotOpen, code: response.CodeConflict, msg: "order not awaiting payment"},
	{target: service.ErrPaymentInProgress, code: response.CodeConflict, msg: "payment creation in progress"},
	{target: service.ErrPaymentGatewayFailed, code: response.CodeInternal, msg: "payment gateway unavailable"},
	{target: service.ErrPaymentCreateFailed, code: response.CodeInternal, msg: "payment creation failed"},
}

var reviewCreateErrorRules = []mappedHandlerError{
	{target: service.ErrReviewRatingInvalid, code: response.CodeBadRequest, msg: "rating must be between 1 and 5"},
	{target: service.ErrReviewExists, code: response.CodeConflict, msg: "sku already reviewed for this order"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrReviewOrderNotDone, code: response.CodeConflict, msg: "order not completed"},
	{target: service.ErrReviewNotCustomer, code: response.CodeForbidden, msg: "not the order customer"},
	{target: service.ErrReviewSkuNotInOrder, code: response.CodeBadRequest, msg: "sku not part of this order"},
}

func respondOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderCreateErrorRules, response.CodeInternal, "order creation failed")
}

func respondOrderCancelError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderCancelErrorRules, response.CodeInternal, "order cancel failed")
}

func respondOrderFetchError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderFetchErrorRules, response.CodeInternal, "order fetch failed")
}

func respondPaymentCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentCreateErrorRules, response.CodeInternal, "payment creation failed")
}

func respondReviewCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, reviewCreateErrorRules, response.CodeInternal, "review creation failed")
}
