package service

import (
	"github.com/velamall/internal/logger"
	"github.com/velamall/internal/models"
	"github.com/velamall/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SkuService SKU 服务
type SkuService struct {
	spuRepo       repository.SpuRepository
	skuRepo       repository.SkuRepository
	inventoryRepo repository.InventoryRepository
	warehouseRepo repository.WarehouseRepository
}

// NewSkuService 创建 SKU 服务
func NewSkuService(spuRepo repository.SpuRepository, skuRepo repository.SkuRepository, inventoryRepo repository.InventoryRepository, warehouseRepo repository.WarehouseRepository) *SkuService {
	return &SkuService{
		spuRepo:       spuRepo,
		skuRepo:       skuRepo,
		inventoryRepo: inventoryRepo,
		warehouseRepo: warehouseRepo,
	}
}

// CreateSkuInput 创建 SKU 输入
type CreateSkuInput struct {
	SpuID       uint
	TierIdx     []int
	Price       decimal.Decimal
	Stock       int
	WarehouseID uint
	Thumb       string
	Images      []string
	IsDefault   bool
	SortOrder   int
}

// SkuView SKU 视图，附带按变体轴解析后的取值
type SkuView struct {
	models.Sku
	SkuValue models.JSON `json:"sku_value"`
}

// CreateSku 创建 SKU 并同步建立库存台账与仓库计数。
// SKU、Inventory、仓库库存增量在同一事务内落库，任一步失败全部回滚。
func (s *SkuService) CreateSku(input CreateSkuInput) (*SkuView, error) {
	spu, err := s.spuRepo.GetByID(input.SpuID)
	if err != nil {
		return nil, err
	}
	if spu == nil {
		return nil, ErrSpuNotFound
	}
	if err := validateTierIdx(spu.Variations, input.TierIdx); err != nil {
		return nil, err
	}
	if input.Price.LessThan(decimal.Zero) {
		return nil, ErrSkuPriceInvalid
	}
	if input.Stock < 0 {
		return nil, ErrSkuStockInvalid
	}

	tierCode := buildTierCode(input.TierIdx)
	exists, err := s.skuRepo.ExistsTierCode(input.SpuID, tierCode)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrTierIndexDuplicate
	}

	warehouse, err := s.warehouseRepo.GetByID(input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, ErrWarehouseNotFound
	}

	sku := &models.Sku{
		SpuID:     input.SpuID,
		TierIdx:   models.IntArray(input.TierIdx),
		TierCode:  tierCode,
		Price:     models.NewMoneyFromDecimal(input.Price),
		Stock:     input.Stock,
		Thumb:     input.Thumb,
		Images:    models.StringArray(input.Images),
		IsDefault: input.IsDefault,
		SortOrder: input.SortOrder,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		// 软删除的同元组残留仍占用唯一索引，先物理清除
		if err := s.skuRepo.WithTx(tx).PurgeDeletedTierCode(input.SpuID, tierCode); err != nil {
			return err
		}
		if err := s.skuRepo.WithTx(tx).Create(sku); err != nil {
			return err
		}
		inventory := &models.Inventory{
			SkuID:       sku.ID,
			ShopID:      spu.ShopID,
			WarehouseID: input.WarehouseID,
			Stock:       input.Stock,
		}
		if err := s.inventoryRepo.WithTx(tx).Create(inventory); err != nil {
			return err
		}
		return s.warehouseRepo.WithTx(tx).AddStock(input.WarehouseID, input.Stock)
	})
	if err != nil {
		logger.Errorw("sku_create_failed",
			"spu_id", input.SpuID,
			"tier_code", tierCode,
			"error", err,
		)
		return nil, ErrSkuCreateFailed
	}

	return &SkuView{
		Sku:      *sku,
		SkuValue: resolveTierValues(spu.Variations, input.TierIdx),
	}, nil
}

// GetSku 获取 SKU 详情并解析变体取值
func (s *SkuService) GetSku(skuID uint) (*SkuView, error) {
	sku, err := s.skuRepo.GetByID(skuID)
	if err != nil {
		return nil, err
	}
	if sku == nil {
		return nil, ErrSkuNotFound
	}
	view := &SkuView{Sku: *sku}
	if sku.Spu != nil {
		view.SkuValue = resolveTierValues(sku.Spu.Variations, sku.TierIdx)
	}
	return view, nil
}

// ListSkusBySpu 获取 SPU 下的 SKU 列表，逐条解析变体取值
func (s *SkuService) ListSkusBySpu(spuID uint) ([]SkuView, error) {
	spu, err := s.spuRepo.GetByID(spuID)
	if err != nil {
		return nil, err
	}
	if spu == nil {
		return nil, ErrSpuNotFound
	}
	skus, err := s.skuRepo.ListBySpu(spuID)
	if err != nil {
		return nil, err
	}
	views := make([]SkuView, 0, len(skus))
	for _, sku := range skus {
		views = append(views, SkuView{
			Sku:      sku,
			SkuValue: resolveTierValues(spu.Variations, sku.TierIdx),
		})
	}
	return views, nil
}

// DeleteSku 删除 SKU 并回收库存台账与仓库计数
func (s *SkuService) DeleteSku(skuID uint) error {
	sku, err := s.skuRepo.GetByID(skuID)
	if err != nil {
		return err
	}
	if sku == nil {
		return ErrSkuNotFound
	}
	inventory, err := s.inventoryRepo.GetBySkuID(skuID)
	if err != nil {
		return err
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.skuRepo.WithTx(tx).Delete(skuID); err != nil {
			return err
		}
		if inventory == nil {
			return nil
		}
		if err := s.inventoryRepo.WithTx(tx).DeleteBySkuID(skuID); err != nil {
			return err
		}
		return s.warehouseRepo.WithTx(tx).AddStock(inventory.WarehouseID, -inventory.Stock)
	})
}
