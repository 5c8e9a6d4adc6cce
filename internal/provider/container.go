package provider

import (
	"github.com/velamall/internal/cache"
	"github.com/velamall/internal/config"
	"github.com/velamall/internal/logger"
	"github.com/velamall/internal/models"
	"github.com/velamall/internal/payment/vnpay"
	"github.com/velamall/internal/queue"
	"github.com/velamall/internal/repository"
	"github.com/velamall/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo      repository.UserRepository
	ShopRepo      repository.ShopRepository
	CategoryRepo  repository.CategoryRepository
	SpuRepo       repository.SpuRepository
	SkuRepo       repository.SkuRepository
	InventoryRepo repository.InventoryRepository
	WarehouseRepo repository.WarehouseRepository
	CartRepo      repository.CartRepository
	OrderRepo     repository.OrderRepository
	PaymentRepo   repository.PaymentRepository
	DiscountRepo  repository.DiscountRepository
	ReviewRepo    repository.ReviewRepository

	// Services
	UserAuthService  *service.UserAuthService
	SpuService       *service.SpuService
	SkuService       *service.SkuService
	WarehouseService *service.WarehouseService
	CartService      *service.CartService
	OrderService     *service.OrderService
	PaymentService   *service.PaymentService
	DiscountService  *service.DiscountService
	ReviewService    *service.ReviewService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.ShopRepo = repository.NewShopRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.SpuRepo = repository.NewSpuRepository(db)
	c.SkuRepo = repository.NewSkuRepository(db)
	c.InventoryRepo = repository.NewInventoryRepository(db)
	c.WarehouseRepo = repository.NewWarehouseRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.DiscountRepo = repository.NewDiscountRepository(db)
	c.ReviewRepo = repository.NewReviewRepository(db)
}

func (c *Container) initServices() {
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.SpuService = service.NewSpuService(c.SpuRepo, c.SkuRepo, c.InventoryRepo, c.WarehouseRepo, c.ShopRepo, c.CategoryRepo)
	c.SkuService = service.NewSkuService(c.SpuRepo, c.SkuRepo, c.InventoryRepo, c.WarehouseRepo)
	c.WarehouseService = service.NewWarehouseService(c.WarehouseRepo, c.InventoryRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.SkuRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.CartRepo, c.SkuRepo, c.InventoryRepo, c.DiscountRepo, c.ShopRepo, c.QueueClient, c.Config.Order.PaymentExpireMinutes, c.Config.Order.FreeShippingMin)
	c.DiscountService = service.NewDiscountService(c.DiscountRepo, c.ShopRepo)
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.OrderRepo)

	gatewayCfg := &vnpay.Config{
		TmnCode:       c.Config.VNPay.TmnCode,
		HashSecret:    c.Config.VNPay.HashSecret,
		PayURL:        c.Config.VNPay.PayURL,
		ReturnURL:     c.Config.VNPay.ReturnURL,
		ExpireMinutes: c.Config.VNPay.ExpireMin,
	}
	c.PaymentService = service.NewPaymentService(c.OrderRepo, c.PaymentRepo, c.OrderService, c.QueueClient, gatewayCfg)
}
