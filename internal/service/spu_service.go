package service

import (
	"errors"
	"strings"

	"github.com/velamall/internal/logger"
	"github.com/velamall/internal/models"
	"github.com/velamall/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SpuService 商品 SPU 服务
type SpuService struct {
	spuRepo       repository.SpuRepository
	skuRepo       repository.SkuRepository
	inventoryRepo repository.InventoryRepository
	warehouseRepo repository.WarehouseRepository
	shopRepo      repository.ShopRepository
	categoryRepo  repository.CategoryRepository
}

// NewSpuService 创建 SPU 服务
func NewSpuService(spuRepo repository.SpuRepository, skuRepo repository.SkuRepository, inventoryRepo repository.InventoryRepository, warehouseRepo repository.WarehouseRepository, shopRepo repository.ShopRepository, categoryRepo repository.CategoryRepository) *SpuService {
	return &SpuService{
		spuRepo:       spuRepo,
		skuRepo:       skuRepo,
		inventoryRepo: inventoryRepo,
		warehouseRepo: warehouseRepo,
		shopRepo:      shopRepo,
		categoryRepo:  categoryRepo,
	}
}

// CreateSpuInput 创建 SPU 输入
type CreateSpuInput struct {
	ShopID     uint
	CategoryID uint
	Slug       string
	Name       string
	Variations models.VariationList
	Attributes models.JSON
	Thumb      string
	Images     []string
	IsDraft    bool
	IsPublish  bool
}

// SpuView SPU 视图，SKU 附带解析后的变体取值
type SpuView struct {
	models.Spu
	SkuViews []SkuView `json:"skus_resolved,omitempty"`
}

// CreateSpu 创建 SPU
func (s *SpuService) CreateSpu(input CreateSpuInput) (*models.Spu, error) {
	shop, err := s.shopRepo.GetByID(input.ShopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	category, err := s.categoryRepo.GetByID(input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	if err := validateVariations(input.Variations); err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(input.Slug)
	existing, err := s.spuRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSpuSlugExists
	}

	spu := &models.Spu{
		ShopID:     input.ShopID,
		CategoryID: input.CategoryID,
		Slug:       slug,
		Name:       strings.TrimSpace(input.Name),
		Variations: input.Variations,
		Attributes: input.Attributes,
		Thumb:      input.Thumb,
		Images:     models.StringArray(input.Images),
		IsDraft:    input.IsDraft,
		IsPublish:  input.IsPublish,
	}
	if err := s.spuRepo.Create(spu); err != nil {
		return nil, err
	}
	return spu, nil
}

// GetSpu 获取 SPU 详情，SKU 取值按变体轴解析
func (s *SpuService) GetSpu(spuID uint) (*SpuView, error) {
	spu, err := s.spuRepo.GetByIDWithSkus(spuID)
	if err != nil {
		return nil, err
	}
	if spu == nil {
		return nil, ErrSpuNotFound
	}
	view := &SpuView{Spu: *spu}
	for _, sku := range spu.Skus {
		view.SkuViews = append(view.SkuViews, SkuView{
			Sku:      sku,
			SkuValue: resolveTierValues(spu.Variations, sku.TierIdx),
		})
	}
	return view, nil
}

// ListSpus 分页查询 SPU 列表
func (s *SpuService) ListSpus(filter repository.SpuListFilter) ([]models.Spu, int64, error) {
	return s.spuRepo.List(filter)
}

// SpuSkuAddInput 更新 SPU 时新增的 SKU
type SpuSkuAddInput struct {
	TierIdx     []int
	Price       decimal.Decimal
	Stock       int
	WarehouseID uint
	Thumb       string
	Images      []string
	IsDefault   bool
	SortOrder   int
}

// SpuSkuUpdateInput 更新 SPU 时修改的 SKU，指针字段为空表示不变更
type SpuSkuUpdateInput struct {
	SkuID     uint
	Price     *decimal.Decimal
	Stock     *int
	Thumb     *string
	IsDefault *bool
	SortOrder *int
}

// UpdateSpuInput 更新 SPU 输入，嵌套 SKU 的新增 / 修改 / 删除一次提交
type UpdateSpuInput struct {
	SpuID        uint
	ShopID       uint // 非 0 时校验归属
	Name         *string
	CategoryID   *uint
	Variations   models.VariationList // nil 表示不变更
	Attributes   models.JSON
	Thumb        *string
	Images       []string
	IsDraft      *bool
	IsPublish    *bool
	AddSkus      []SpuSkuAddInput
	UpdateSkus   []SpuSkuUpdateInput
	RemoveSkuIDs []uint
}

// UpdateSpu 更新 SPU 与嵌套 SKU。全部变更在同一事务内提交。
func (s *SpuService) UpdateSpu(input UpdateSpuInput) (*SpuView, error) {
	spu, err := s.spuRepo.GetByIDWithSkus(input.SpuID)
	if err != nil {
		return nil, err
	}
	if spu == nil {
		return nil, ErrSpuNotFound
	}
	if input.ShopID != 0 && spu.ShopID != input.ShopID {
		return nil, ErrSpuNotFound
	}

	variations := spu.Variations
	if input.Variations != nil {
		if err := validateVariations(input.Variations); err != nil {
			return nil, err
		}
		variations = input.Variations
	}

	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(*input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrCategoryNotFound
		}
	}

	removeSet := map[uint]bool{}
	for _, id := range input.RemoveSkuIDs {
		removeSet[id] = true
	}

	// 变体轴变更后，保留的 SKU 索引元组必须仍然落在新轴范围内
	existingByID := map[uint]models.Sku{}
	tierCodes := map[string]bool{}
	for _, sku := range spu.Skus {
		existingByID[sku.ID] = sku
		if removeSet[sku.ID] {
			continue
		}
		if err := validateTierIdx(variations, sku.TierIdx); err != nil {
			return nil, err
		}
		tierCodes[sku.TierCode] = true
	}

	for _, update := range input.UpdateSkus {
		if _, ok := existingByID[update.SkuID]; !ok || removeSet[update.SkuID] {
			return nil, ErrSkuNotFound
		}
		if update.Price != nil && update.Price.LessThan(decimal.Zero) {
			return nil, ErrSkuPriceInvalid
		}
		if update.Stock != nil && *update.Stock < 0 {
			return nil, ErrSkuStockInvalid
		}
	}

	type addPlan struct {
		input    SpuSkuAddInput
		tierCode string
	}
	addPlans := make([]addPlan, 0, len(input.AddSkus))
	for _, add := range input.AddSkus {
		if err := validateTierIdx(variations, add.TierIdx); err != nil {
			return nil, err
		}
		if add.Price.LessThan(decimal.Zero) {
			return nil, ErrSkuPriceInvalid
		}
		if add.Stock < 0 {
			return nil, ErrSkuStockInvalid
		}
		tierCode := buildTierCode(add.TierIdx)
		if tierCodes[tierCode] {
			return nil, ErrTierIndexDuplicate
		}
		tierCodes[tierCode] = true

		warehouse, err := s.warehouseRepo.GetByID(add.WarehouseID)
		if err != nil {
			return nil, err
		}
		if warehouse == nil {
			return nil, ErrWarehouseNotFound
		}
		addPlans = append(addPlans, addPlan{input: add, tierCode: tierCode})
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		spuRepo := s.spuRepo.WithTx(tx)
		skuRepo := s.skuRepo.WithTx(tx)
		inventoryRepo := s.inventoryRepo.WithTx(tx)
		warehouseRepo := s.warehouseRepo.WithTx(tx)

		spuUpdates := map[string]interface{}{}
		if input.Name != nil {
			spuUpdates["name"] = strings.TrimSpace(*input.Name)
		}
		if input.CategoryID != nil {
			spuUpdates["category_id"] = *input.CategoryID
		}
		if input.Variations != nil {
			spuUpdates["variations"] = input.Variations
		}
		if input.Attributes != nil {
			spuUpdates["attributes"] = input.Attributes
		}
		if input.Thumb != nil {
			spuUpdates["thumb"] = strings.TrimSpace(*input.Thumb)
		}
		if input.Images != nil {
			spuUpdates["images"] = models.StringArray(input.Images)
		}
		if input.IsDraft != nil {
			spuUpdates["is_draft"] = *input.IsDraft
		}
		if input.IsPublish != nil {
			spuUpdates["is_publish"] = *input.IsPublish
		}
		if len(spuUpdates) > 0 {
			if err := spuRepo.UpdateFields(spu.ID, spuUpdates); err != nil {
				return err
			}
		}

		for _, skuID := range input.RemoveSkuIDs {
			if _, ok := existingByID[skuID]; !ok {
				return ErrSkuNotFound
			}
			inventory, err := inventoryRepo.GetBySkuID(skuID)
			if err != nil {
				return err
			}
			if err := skuRepo.Delete(skuID); err != nil {
				return err
			}
			if inventory != nil {
				if err := inventoryRepo.DeleteBySkuID(skuID); err != nil {
					return err
				}
				if err := warehouseRepo.AddStock(inventory.WarehouseID, -inventory.Stock); err != nil {
					return err
				}
			}
		}

		for _, update := range input.UpdateSkus {
			sku := existingByID[update.SkuID]
			skuUpdates := map[string]interface{}{}
			if update.Price != nil {
				skuUpdates["price"] = models.NewMoneyFromDecimal(*update.Price)
			}
			if update.Thumb != nil {
				skuUpdates["thumb"] = strings.TrimSpace(*update.Thumb)
			}
			if update.IsDefault != nil {
				skuUpdates["is_default"] = *update.IsDefault
			}
			if update.SortOrder != nil {
				skuUpdates["sort_order"] = *update.SortOrder
			}
			if update.Stock != nil {
				delta := *update.Stock - sku.Stock
				skuUpdates["stock"] = *update.Stock
				if delta != 0 {
					inventory, err := inventoryRepo.GetBySkuID(update.SkuID)
					if err != nil {
						return err
					}
					if inventory != nil {
						if err := inventoryRepo.UpdateFields(inventory.ID, map[string]interface{}{
							"stock": gorm.Expr("stock + ?", delta),
						}); err != nil {
							return err
						}
						if err := warehouseRepo.AddStock(inventory.WarehouseID, delta); err != nil {
							return err
						}
					}
				}
			}
			if len(skuUpdates) == 0 {
				continue
			}
			if err := skuRepo.UpdateFields(update.SkuID, skuUpdates); err != nil {
				return err
			}
		}

		for _, plan := range addPlans {
			// 软删除的同元组残留仍占用唯一索引，先物理清除
			if err := skuRepo.PurgeDeletedTierCode(spu.ID, plan.tierCode); err != nil {
				return err
			}
			sku := &models.Sku{
				SpuID:     spu.ID,
				TierIdx:   models.IntArray(plan.input.TierIdx),
				TierCode:  plan.tierCode,
				Price:     models.NewMoneyFromDecimal(plan.input.Price),
				Stock:     plan.input.Stock,
				Thumb:     plan.input.Thumb,
				Images:    models.StringArray(plan.input.Images),
				IsDefault: plan.input.IsDefault,
				SortOrder: plan.input.SortOrder,
			}
			if err := skuRepo.Create(sku); err != nil {
				return err
			}
			inventory := &models.Inventory{
				SkuID:       sku.ID,
				ShopID:      spu.ShopID,
				WarehouseID: plan.input.WarehouseID,
				Stock:       plan.input.Stock,
			}
			if err := inventoryRepo.Create(inventory); err != nil {
				return err
			}
			if err := warehouseRepo.AddStock(plan.input.WarehouseID, plan.input.Stock); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSkuNotFound) {
			return nil, err
		}
		logger.Errorw("spu_update_failed",
			"spu_id", spu.ID,
			"error", err,
		)
		return nil, ErrSpuUpdateFailed
	}

	return s.GetSpu(spu.ID)
}
