package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/velamall/internal/config"
	"github.com/velamall/internal/constants"
	"github.com/velamall/internal/logger"
	"github.com/velamall/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{Slug: "electronics", Name: "Electronics", SortOrder: 300},
		{Slug: "lifestyle", Name: "Lifestyle", SortOrder: 200},
		{Slug: "accessories", Name: "Accessories", SortOrder: 100},
	}
	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"electronics", "lifestyle", "accessories"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}

	// 添加演示用户（买家 + 店铺成员）
	customer := seedUser(stdLog, "buyer@velamall.dev", "Buyer123456", "Demo Buyer", constants.UserRoleCustomer, 0)
	owner := seedUser(stdLog, "staff@velamall.dev", "Staff123456", "Demo Staff", constants.UserRoleShopStaff, 0)
	_ = customer

	// 添加店铺
	shops := []models.Shop{
		{
			Slug:        "velamall-audio",
			Name:        "Velamall Audio",
			OwnerUserID: ownerID(owner),
			ShippingFee: models.NewMoneyFromDecimal(decimal.NewFromFloat(2.50)),
			IsActive:    true,
		},
		{
			Slug:        "velamall-living",
			Name:        "Velamall Living",
			OwnerUserID: ownerID(owner),
			ShippingFee: models.NewMoneyFromDecimal(decimal.NewFromFloat(3.00)),
			IsActive:    true,
		},
	}
	for i := range shops {
		var existing models.Shop
		if err := models.DB.Where("slug = ?", shops[i].Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&shops[i]).Error; err != nil {
				stdLog.Printf("Failed to create shop %s: %v", shops[i].Slug, err)
			} else {
				stdLog.Printf("Created shop: %s", shops[i].Slug)
			}
		} else {
			shops[i] = existing
			stdLog.Printf("Shop already exists: %s", shops[i].Slug)
		}
	}
	audioShop := shops[0]
	livingShop := shops[1]

	// 店铺成员绑定到第一家店
	if owner != nil && owner.ShopID == 0 && audioShop.ID != 0 {
		owner.ShopID = audioShop.ID
		if err := models.DB.Save(owner).Error; err != nil {
			stdLog.Printf("Failed to bind staff to shop: %v", err)
		}
	}

	// 添加仓库
	warehouses := []models.Warehouse{
		{Name: "Hanoi Central", Location: "Hanoi, VN"},
		{Name: "HCMC South", Location: "Ho Chi Minh City, VN"},
	}
	for i := range warehouses {
		var existing models.Warehouse
		if err := models.DB.Where("name = ?", warehouses[i].Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&warehouses[i]).Error; err != nil {
				stdLog.Printf("Failed to create warehouse %s: %v", warehouses[i].Name, err)
			} else {
				stdLog.Printf("Created warehouse: %s", warehouses[i].Name)
			}
		} else {
			warehouses[i] = existing
			stdLog.Printf("Warehouse already exists: %s", warehouses[i].Name)
		}
	}

	// 添加 SPU 与 SKU（变体轴 + 位置索引）
	type skuPlan struct {
		TierIdx []int
		Price   float64
		Stock   int
		Default bool
	}
	type spuPlan struct {
		Spu  models.Spu
		Skus []skuPlan
	}

	plans := []spuPlan{
		{
			Spu: models.Spu{
				ShopID:     audioShop.ID,
				CategoryID: categoryIDs["electronics"],
				Slug:       "wireless-earbuds",
				Name:       "Wireless Earbuds",
				Variations: models.VariationList{
					{Name: "Color", Values: []string{"Black", "White"}},
					{Name: "Edition", Values: []string{"Standard", "Pro"}},
				},
				Thumb:     "https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=800",
				Images:    models.StringArray{"https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=800"},
				IsDraft:   false,
				IsPublish: true,
			},
			Skus: []skuPlan{
				{TierIdx: []int{0, 0}, Price: 49.99, Stock: 120, Default: true},
				{TierIdx: []int{0, 1}, Price: 79.99, Stock: 60},
				{TierIdx: []int{1, 0}, Price: 49.99, Stock: 80},
				{TierIdx: []int{1, 1}, Price: 79.99, Stock: 30},
			},
		},
		{
			Spu: models.Spu{
				ShopID:     audioShop.ID,
				CategoryID: categoryIDs["electronics"],
				Slug:       "smart-watch",
				Name:       "Smart Watch",
				Variations: models.VariationList{
					{Name: "Band", Values: []string{"Sport", "Leather"}},
				},
				Thumb:     "https://images.unsplash.com/photo-1579586337278-3befd40fd17a?w=800",
				Images:    models.StringArray{"https://images.unsplash.com/photo-1579586337278-3befd40fd17a?w=800"},
				IsDraft:   false,
				IsPublish: true,
			},
			Skus: []skuPlan{
				{TierIdx: []int{0}, Price: 199.99, Stock: 40, Default: true},
				{TierIdx: []int{1}, Price: 229.99, Stock: 15},
			},
		},
		{
			Spu: models.Spu{
				ShopID:     livingShop.ID,
				CategoryID: categoryIDs["lifestyle"],
				Slug:       "travel-backpack",
				Name:       "Travel Backpack",
				Variations: models.VariationList{
					{Name: "Size", Values: []string{"20L", "30L", "40L"}},
					{Name: "Color", Values: []string{"Grey", "Navy"}},
				},
				Thumb:     "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=800",
				Images:    models.StringArray{"https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=800"},
				IsDraft:   false,
				IsPublish: true,
			},
			Skus: []skuPlan{
				{TierIdx: []int{0, 0}, Price: 59.99, Stock: 50, Default: true},
				{TierIdx: []int{1, 0}, Price: 69.99, Stock: 35},
				{TierIdx: []int{1, 1}, Price: 69.99, Stock: 0},
				{TierIdx: []int{2, 1}, Price: 79.99, Stock: 10},
			},
		},
	}

	for _, plan := range plans {
		if plan.Spu.ShopID == 0 || plan.Spu.CategoryID == 0 {
			stdLog.Printf("Skip spu %s: shop or category missing", plan.Spu.Slug)
			continue
		}
		var spu models.Spu
		if err := models.DB.Where("slug = ?", plan.Spu.Slug).First(&spu).Error; err != nil {
			spu = plan.Spu
			if err := models.DB.Create(&spu).Error; err != nil {
				stdLog.Printf("Failed to create spu %s: %v", plan.Spu.Slug, err)
				continue
			}
			stdLog.Printf("Created spu: %s", spu.Slug)
		} else {
			stdLog.Printf("Spu already exists: %s", spu.Slug)
		}

		warehouseID := warehouses[0].ID
		if spu.ShopID == livingShop.ID && len(warehouses) > 1 {
			warehouseID = warehouses[1].ID
		}

		for _, sp := range plan.Skus {
			code := tierCode(sp.TierIdx)
			var existing models.Sku
			if err := models.DB.Where("spu_id = ? AND tier_code = ?", spu.ID, code).First(&existing).Error; err == nil {
				continue
			}
			sku := models.Sku{
				SpuID:     spu.ID,
				TierIdx:   models.IntArray(sp.TierIdx),
				TierCode:  code,
				Price:     models.NewMoneyFromDecimal(decimal.NewFromFloat(sp.Price)),
				Stock:     sp.Stock,
				IsDefault: sp.Default,
			}
			if err := models.DB.Create(&sku).Error; err != nil {
				stdLog.Printf("Failed to create sku %s/%s: %v", spu.Slug, code, err)
				continue
			}
			inventory := models.Inventory{
				SkuID:       sku.ID,
				ShopID:      spu.ShopID,
				WarehouseID: warehouseID,
				Stock:       sp.Stock,
			}
			if err := models.DB.Create(&inventory).Error; err != nil {
				stdLog.Printf("Failed to create inventory for sku %s/%s: %v", spu.Slug, code, err)
			}
		}
		stdLog.Printf("Seeded skus for spu: %s", spu.Slug)
	}

	// 添加优惠码
	now := time.Now()
	endsAt := now.AddDate(0, 2, 0)
	discounts := []models.Discount{
		{
			ShopID:   audioShop.ID,
			Code:     "AUDIO10",
			Kind:     constants.DiscountKindPercent,
			Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			MinOrder: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			MaxUses:  100,
			StartsAt: &now,
			EndsAt:   &endsAt,
			IsActive: true,
		},
		{
			ShopID:   livingShop.ID,
			Code:     "WELCOME5",
			Kind:     constants.DiscountKindFixed,
			Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
			MinOrder: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
			MaxUses:  0,
			StartsAt: &now,
			EndsAt:   &endsAt,
			IsActive: true,
		},
	}
	for _, d := range discounts {
		if d.ShopID == 0 {
			continue
		}
		var existing models.Discount
		if err := models.DB.Where("shop_id = ? AND code = ?", d.ShopID, d.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&d).Error; err != nil {
				stdLog.Printf("Failed to create discount %s: %v", d.Code, err)
			} else {
				stdLog.Printf("Created discount: %s", d.Code)
			}
		} else {
			stdLog.Printf("Discount already exists: %s", d.Code)
		}
	}

	fmt.Println("\nSeed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 2 Users (buyer@velamall.dev / staff@velamall.dev)")
	fmt.Println("- 2 Shops, 2 Warehouses, 3 Categories")
	fmt.Println("- 3 SPUs with variation axes and 10 SKUs")
	fmt.Println("- 2 Discount codes (AUDIO10, WELCOME5)")
}

func seedUser(stdLog interface{ Printf(string, ...interface{}) }, email, password, nickname, role string, shopID uint) *models.User {
	var existing models.User
	if err := models.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		stdLog.Printf("User already exists: %s", email)
		return &existing
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Printf("Failed to hash password for %s: %v", email, err)
		return nil
	}
	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Nickname:     nickname,
		Role:         role,
		ShopID:       shopID,
		IsActive:     true,
	}
	if err := models.DB.Create(&user).Error; err != nil {
		stdLog.Printf("Failed to create user %s: %v", email, err)
		return nil
	}
	stdLog.Printf("Created user: %s", email)
	return &user
}

func ownerID(user *models.User) uint {
	if user == nil {
		return 0
	}
	return user.ID
}

func tierCode(tierIdx []int) string {
	parts := make([]string, 0, len(tierIdx))
	for _, idx := range tierIdx {
		parts = append(parts, strconv.Itoa(idx))
	}
	return strings.Join(parts, "-")
}
