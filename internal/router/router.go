package router

import (
	"fmt"
	"strings"

	"github.com/velamall/internal/cache"
	"github.com/velamall/internal/config"
	publichandlers "github.com/velamall/internal/http/handlers/public"
	shophandlers "github.com/velamall/internal/http/handlers/shop"
	"github.com/velamall/internal/logger"
	"github.com/velamall/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按买家/店铺分组）
	publicHandler := publichandlers.New(c)
	shopHandler := shophandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "vm"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}
	paymentRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:payment", redisPrefix),
		WindowSeconds: cfg.Security.PaymentRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.PaymentRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.PaymentRateLimit.BlockSeconds,
		Message:       "too many payment attempts",
	}
	paymentLimiter := RateLimitMiddleware(redisClient, paymentRule, KeyByUserID)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/spus", publicHandler.GetSpus)
			public.GET("/spus/:id", publicHandler.GetSpu)
			public.GET("/spus/slug/:slug", publicHandler.GetSpuBySlug)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/shops", publicHandler.GetShops)
			public.GET("/shops/:id", publicHandler.GetShop)
			public.GET("/reviews", publicHandler.ListReviews)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.UserProfile)
			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/items", publicHandler.AddCartItem)
			user.PUT("/cart/items/:sku_id", publicHandler.UpdateCartItem)
			user.DELETE("/cart/items/:sku_id", publicHandler.DeleteCartItem)
			user.POST("/orders", publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.POST("/orders/:id/cancel", publicHandler.CancelOrder)
			user.GET("/orders/:id/payments", publicHandler.GetOrderPayments)
			user.POST("/checkout/vnpay", paymentLimiter, publicHandler.CheckoutWithVNPay)
			user.POST("/payments", paymentLimiter, publicHandler.CreateVNPayPayment)
			user.POST("/reviews", publicHandler.CreateReview)
		}

		// 支付网关回调（无需鉴权）
		apiV1.GET("/payments/vnpay/return", publicHandler.VNPayReturn)
		apiV1.POST("/payments/vnpay/return", publicHandler.VNPayReturn)
		apiV1.GET("/payments/vnpay-ipn", publicHandler.VNPayIPN)
		apiV1.POST("/payments/vnpay-ipn", publicHandler.VNPayIPN)

		// 店铺接口（需店铺成员身份）
		shop := apiV1.Group("/shop")
		shop.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo), ShopStaffAuthMiddleware())
		{
			shop.GET("/orders", shopHandler.ListOrders)
			shop.POST("/orders/:id/approve", shopHandler.ApproveOrder)
			shop.POST("/orders/:id/reject", shopHandler.RejectOrder)
			shop.POST("/orders/:id/complete", shopHandler.CompleteOrder)
			shop.POST("/orders/:id/cod-paid", shopHandler.ConfirmCODPaid)

			shop.GET("/spus", shopHandler.ListSpus)
			shop.POST("/spus", shopHandler.CreateSpu)
			shop.PUT("/spus/:id", shopHandler.UpdateSpu)
			shop.POST("/spus/:id/skus", shopHandler.CreateSku)
			shop.DELETE("/skus/:sku_id", shopHandler.DeleteSku)

			shop.GET("/warehouses", shopHandler.ListWarehouses)
			shop.POST("/warehouses", shopHandler.CreateWarehouse)
			shop.GET("/warehouses/:id", shopHandler.GetWarehouse)
			shop.GET("/inventories", shopHandler.ListInventories)

			shop.GET("/discounts", shopHandler.ListDiscounts)
			shop.POST("/discounts", shopHandler.CreateDiscount)
			shop.PATCH("/discounts/:id/active", shopHandler.SetDiscountActive)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
