package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/velamall/internal/models"
	"github.com/velamall/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupSkuServiceDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Shop{}, &models.Category{}, &models.Spu{}, &models.Sku{}, &models.Inventory{}, &models.Warehouse{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func seedSkuServiceSpu(t *testing.T, db *gorm.DB) (*models.Spu, *models.Warehouse) {
	t.Helper()
	shop := models.Shop{Slug: "test-shop", Name: "测试店铺", OwnerUserID: 1, IsActive: true}
	if err := db.Create(&shop).Error; err != nil {
		t.Fatalf("create shop failed: %v", err)
	}
	category := models.Category{Slug: "test-category", Name: "测试分类"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	spu := models.Spu{
		ShopID:     shop.ID,
		CategoryID: category.ID,
		Slug:       "test-earbuds",
		Name:       "测试耳机",
		Variations: models.VariationList{
			{Name: "color", Values: []string{"black", "white"}},
			{Name: "edition", Values: []string{"standard", "pro"}},
		},
		IsDraft:   false,
		IsPublish: true,
	}
	if err := db.Create(&spu).Error; err != nil {
		t.Fatalf("create spu failed: %v", err)
	}
	warehouse := models.Warehouse{Name: "华北一仓", Location: "Hanoi"}
	if err := db.Create(&warehouse).Error; err != nil {
		t.Fatalf("create warehouse failed: %v", err)
	}
	return &spu, &warehouse
}

func newSkuServiceForTest(db *gorm.DB) *SkuService {
	return NewSkuService(
		repository.NewSpuRepository(db),
		repository.NewSkuRepository(db),
		repository.NewInventoryRepository(db),
		repository.NewWarehouseRepository(db),
	)
}

func TestCreateSkuWritesInventoryAndWarehouse(t *testing.T) {
	db := setupSkuServiceDB(t, "sku_service_create")
	spu, warehouse := seedSkuServiceSpu(t, db)
	svc := newSkuServiceForTest(db)

	view, err := svc.CreateSku(CreateSkuInput{
		SpuID:       spu.ID,
		TierIdx:     []int{0, 1},
		Price:       decimal.NewFromInt(100),
		Stock:       25,
		WarehouseID: warehouse.ID,
		IsDefault:   true,
	})
	if err != nil {
		t.Fatalf("CreateSku error: %v", err)
	}
	if view.TierCode != "0-1" {
		t.Fatalf("expected tier code 0-1, got %s", view.TierCode)
	}
	if view.SkuValue["color"] != "black" || view.SkuValue["edition"] != "pro" {
		t.Fatalf("unexpected sku value: %+v", view.SkuValue)
	}

	var inventory models.Inventory
	if err := db.Where("sku_id = ?", view.ID).First(&inventory).Error; err != nil {
		t.Fatalf("inventory not created: %v", err)
	}
	if inventory.Stock != 25 || inventory.Reserved != 0 {
		t.Fatalf("unexpected inventory: stock=%d reserved=%d", inventory.Stock, inventory.Reserved)
	}
	if inventory.ShopID != spu.ShopID || inventory.WarehouseID != warehouse.ID {
		t.Fatalf("unexpected inventory binding: %+v", inventory)
	}

	var reloaded models.Warehouse
	if err := db.First(&reloaded, warehouse.ID).Error; err != nil {
		t.Fatalf("reload warehouse failed: %v", err)
	}
	if reloaded.Stock != 25 {
		t.Fatalf("expected warehouse stock 25, got %d", reloaded.Stock)
	}
}

func TestCreateSkuRejectsInvalidTierIdx(t *testing.T) {
	db := setupSkuServiceDB(t, "sku_service_tier_invalid")
	spu, warehouse := seedSkuServiceSpu(t, db)
	svc := newSkuServiceForTest(db)

	cases := [][]int{
		{},        // 空元组
		{0, 0, 0}, // 超出轴数
		{2, 0},    // 第一轴越界
		{0, -1},   // 负索引
	}
	for _, tierIdx := range cases {
		_, err := svc.CreateSku(CreateSkuInput{
			SpuID:       spu.ID,
			TierIdx:     tierIdx,
			Price:       decimal.NewFromInt(10),
			Stock:       1,
			WarehouseID: warehouse.ID,
		})
		if err != ErrTierIndexInvalid {
			t.Fatalf("tierIdx %v: expected ErrTierIndexInvalid, got %v", tierIdx, err)
		}
	}

	var count int64
	if err := db.Model(&models.Sku{}).Count(&count).Error; err != nil {
		t.Fatalf("count skus failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no sku persisted, got %d", count)
	}
}

func TestCreateSkuRejectsDuplicateTierCode(t *testing.T) {
	db := setupSkuServiceDB(t, "sku_service_tier_dup")
	spu, warehouse := seedSkuServiceSpu(t, db)
	svc := newSkuServiceForTest(db)

	input := CreateSkuInput{
		SpuID:       spu.ID,
		TierIdx:     []int{1, 0},
		Price:       decimal.NewFromInt(10),
		Stock:       5,
		WarehouseID: warehouse.ID,
	}
	if _, err := svc.CreateSku(input); err != nil {
		t.Fatalf("first CreateSku error: %v", err)
	}
	if _, err := svc.CreateSku(input); err != ErrTierIndexDuplicate {
		t.Fatalf("expected ErrTierIndexDuplicate, got %v", err)
	}
}

func TestCreateSkuValidatesPriceStockAndWarehouse(t *testing.T) {
	db := setupSkuServiceDB(t, "sku_service_validate")
	spu, warehouse := seedSkuServiceSpu(t, db)
	svc := newSkuServiceForTest(db)

	if _, err := svc.CreateSku(CreateSkuInput{
		SpuID:       spu.ID,
		TierIdx:     []int{0, 0},
		Price:       decimal.NewFromInt(-1),
		Stock:       1,
		WarehouseID: warehouse.ID,
	}); err != ErrSkuPriceInvalid {
		t.Fatalf("expected ErrSkuPriceInvalid, got %v", err)
	}

	if _, err := svc.CreateSku(CreateSkuInput{
		SpuID:       spu.ID,
		TierIdx:     []int{0, 0},
		Price:       decimal.NewFromInt(1),
		Stock:       -1,
		WarehouseID: warehouse.ID,
	}); err != ErrSkuStockInvalid {
		t.Fatalf("expected ErrSkuStockInvalid, got %v", err)
	}

	if _, err := svc.CreateSku(CreateSkuInput{
		SpuID:       spu.ID,
		TierIdx:     []int{0, 0},
		Price:       decimal.NewFromInt(1),
		Stock:       1,
		WarehouseID: warehouse.ID + 100,
	}); err != ErrWarehouseNotFound {
		t.Fatalf("expected ErrWarehouseNotFound, got %v", err)
	}

	if _, err := svc.CreateSku(CreateSkuInput{
		SpuID:       spu.ID + 100,
		TierIdx:     []int{0, 0},
		Price:       decimal.NewFromInt(1),
		Stock:       1,
		WarehouseID: warehouse.ID,
	}); err != ErrSpuNotFound {
		t.Fatalf("expected ErrSpuNotFound, got %v", err)
	}
}

func TestCreateSkuRollsBackOnInventoryFailure(t *testing.T) {
	db := setupSkuServiceDB(t, "sku_service_rollback")
	spu, warehouse := seedSkuServiceSpu(t, db)
	svc := newSkuServiceForTest(db)

	// 台账表缺失使事务中途失败，SKU 与仓库计数必须一并回滚
	if err := db.Migrator().DropTable(&models.Inventory{}); err != nil {
		t.Fatalf("drop inventory table failed: %v", err)
	}

	_, err := svc.CreateSku(CreateSkuInput{
		SpuID:       spu.ID,
		TierIdx:     []int{0, 0},
		Price:       decimal.NewFromInt(10),
		Stock:       7,
		WarehouseID: warehouse.ID,
	})
	if err != ErrSkuCreateFailed {
		t.Fatalf("expected ErrSkuCreateFailed, got %v", err)
	}

	var skuCount int64
	if err := db.Model(&models.Sku{}).Count(&skuCount).Error; err != nil {
		t.Fatalf("count skus failed: %v", err)
	}
	if skuCount != 0 {
		t.Fatalf("expected sku rollback, got %d rows", skuCount)
	}
	var reloaded models.Warehouse
	if err := db.First(&reloaded, warehouse.ID).Error; err != nil {
		t.Fatalf("reload warehouse failed: %v", err)
	}
	if reloaded.Stock != 0 {
		t.Fatalf("expected warehouse stock rollback to 0, got %d", reloaded.Stock)
	}
}

func TestDeleteSkuReleasesWarehouseStock(t *testing.T) {
	db := setupSkuServiceDB(t, "sku_service_delete")
	spu, warehouse := seedSkuServiceSpu(t, db)
	svc := newSkuServiceForTest(db)

	view, err := svc.CreateSku(CreateSkuInput{
		SpuID:       spu.ID,
		TierIdx:     []int{1, 1},
		Price:       decimal.NewFromInt(10),
		Stock:       12,
		WarehouseID: warehouse.ID,
	})
	if err != nil {
		t.Fatalf("CreateSku error: %v", err)
	}

	if err := svc.DeleteSku(view.ID); err != nil {
		t.Fatalf("DeleteSku error: %v", err)
	}

	var reloaded models.Warehouse
	if err := db.First(&reloaded, warehouse.ID).Error; err != nil {
		t.Fatalf("reload warehouse failed: %v", err)
	}
	if reloaded.Stock != 0 {
		t.Fatalf("expected warehouse stock back to 0, got %d", reloaded.Stock)
	}
	inventory, err := repository.NewInventoryRepository(db).GetBySkuID(view.ID)
	if err != nil {
		t.Fatalf("query inventory failed: %v", err)
	}
	if inventory != nil {
		t.Fatalf("expected inventory removed, got %+v", inventory)
	}
	if err := svc.DeleteSku(view.ID); err != ErrSkuNotFound {
		t.Fatalf("expected ErrSkuNotFound on second delete, got %v", err)
	}
}

func TestCreateSkuReusesTierAfterDelete(t *testing.T) {
	db := setupSkuServiceDB(t, "sku_service_tier_reuse")
	spu, warehouse := seedSkuServiceSpu(t, db)
	svc := newSkuServiceForTest(db)

	input := CreateSkuInput{
		SpuID:       spu.ID,
		TierIdx:     []int{0, 0},
		Price:       decimal.NewFromInt(10),
		Stock:       3,
		WarehouseID: warehouse.ID,
	}
	first, err := svc.CreateSku(input)
	if err != nil {
		t.Fatalf("CreateSku error: %v", err)
	}
	if err := svc.DeleteSku(first.ID); err != nil {
		t.Fatalf("DeleteSku error: %v", err)
	}

	// 软删除残留不再挡住同元组重建
	second, err := svc.CreateSku(input)
	if err != nil {
		t.Fatalf("recreate after delete error: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expected a fresh sku row, got reused id %d", second.ID)
	}

	// 在售行的唯一性约束不受影响
	if _, err := svc.CreateSku(input); err != ErrTierIndexDuplicate {
		t.Fatalf("expected ErrTierIndexDuplicate, got %v", err)
	}
}
