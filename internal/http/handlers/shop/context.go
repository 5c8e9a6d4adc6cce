package shop

import (
	handlershared "github.com/velamall/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getShopID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "shop_id")
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}
