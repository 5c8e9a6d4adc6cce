package shop

import (
	"errors"
	"strconv"

	"github.com/velamall/internal/http/response"
	"github.com/velamall/internal/models"
	"github.com/velamall/internal/repository"
	"github.com/velamall/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateSpuRequest 创建商品请求
type CreateSpuRequest struct {
	CategoryID uint                 `json:"category_id" binding:"required"`
	Slug       string               `json:"slug" binding:"required"`
	Name       string               `json:"name" binding:"required"`
	Variations models.VariationList `json:"variations"`
	Attributes models.JSON          `json:"attributes"`
	Thumb      string               `json:"thumb"`
	Images     []string             `json:"images"`
	IsDraft    bool                 `json:"is_draft"`
	IsPublish  bool                 `json:"is_publish"`
}

// SkuPayload 创建/新增 SKU 的请求体
type SkuPayload struct {
	TierIdx     []int           `json:"tier_idx"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	WarehouseID uint            `json:"warehouse_id"`
	Thumb       string          `json:"thumb"`
	Images      []string        `json:"images"`
	IsDefault   bool            `json:"is_default"`
	SortOrder   int             `json:"sort_order"`
}

// SkuUpdatePayload 更新 SKU 的请求体，指针字段为空表示不变更
type SkuUpdatePayload struct {
	SkuID     uint             `json:"sku_id" binding:"required"`
	Price     *decimal.Decimal `json:"price"`
	Stock     *int             `json:"stock"`
	Thumb     *string          `json:"thumb"`
	IsDefault *bool            `json:"is_default"`
	SortOrder *int             `json:"sort_order"`
}

// UpdateSpuRequest 更新商品请求，嵌套 SKU 变更一次提交
type UpdateSpuRequest struct {
	Name         *string              `json:"name"`
	CategoryID   *uint                `json:"category_id"`
	Variations   models.VariationList `json:"variations"`
	Attributes   models.JSON          `json:"attributes"`
	Thumb        *string              `json:"thumb"`
	Images       []string             `json:"images"`
	IsDraft      *bool                `json:"is_draft"`
	IsPublish    *bool                `json:"is_publish"`
	AddSkus      []SkuPayload         `json:"add_skus"`
	UpdateSkus   []SkuUpdatePayload   `json:"update_skus"`
	RemoveSkuIDs []uint               `json:"remove_sku_ids"`
}

func respondSpuError(c *gin.Context, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, service.ErrSpuNotFound):
		respondError(c, response.CodeNotFound, "product not found", nil)
	case errors.Is(err, service.ErrSpuSlugExists):
		respondError(c, response.CodeConflict, "slug already in use", nil)
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, response.CodeBadRequest, "category not found", nil)
	case errors.Is(err, service.ErrShopNotFound):
		respondError(c, response.CodeBadRequest, "shop not found", nil)
	case errors.Is(err, service.ErrSkuNotFound):
		respondError(c, response.CodeBadRequest, "sku not found", nil)
	case errors.Is(err, service.ErrTierIndexInvalid):
		respondError(c, response.CodeBadRequest, "tier index out of variation range", nil)
	case errors.Is(err, service.ErrTierIndexDuplicate):
		respondError(c, response.CodeConflict, "duplicate variation combination", nil)
	case errors.Is(err, service.ErrSkuPriceInvalid):
		respondError(c, response.CodeBadRequest, "invalid sku price", nil)
	case errors.Is(err, service.ErrSkuStockInvalid):
		respondError(c, response.CodeBadRequest, "invalid sku stock", nil)
	case errors.Is(err, service.ErrWarehouseNotFound):
		respondError(c, response.CodeBadRequest, "warehouse not found", nil)
	default:
		respondError(c, response.CodeInternal, fallbackMsg, err)
	}
}

// CreateSpu 创建商品
func (h *Handler) CreateSpu(c *gin.Context) {
	shopID, ok := getShopID(c)
	if !ok {
		return
	}
	var req CreateSpuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	spu, err := h.SpuService.CreateSpu(service.CreateSpuInput{
		ShopID:     shopID,
		CategoryID: req.CategoryID,
		Slug:       req.Slug,
		Name:       req.Name,
		Variations: req.Variations,
		Attributes: req.Attributes,
		Thumb:      req.Thumb,
		Images:     req.Images,
		IsDraft:    req.IsDraft,
		IsPublish:  req.IsPublish,
	})
	if err != nil {
		respondSpuError(c, err, "product creation failed")
		return
	}
	response.Created(c, spu)
}

// ListSpus 获取本店商品列表（含草稿）
func (h *Handler) ListSpus(c *gin.Context) {
	shopID, ok := getShopID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	spus, total, err := h.SpuService.ListSpus(repository.SpuListFilter{
		Page:     page,
		PageSize: pageSize,
		ShopID:   shopID,
		Search:   c.Query("search"),
		WithSkus: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "product list failed", err)
		return
	}
	response.SuccessWithPage(c, spus, response.NewPagination(page, pageSize, total))
}

// UpdateSpu 更新商品与嵌套 SKU 变更
func (h *Handler) UpdateSpu(c *gin.Context) {
	shopID, ok := getShopID(c)
	if !ok {
		return
	}
	spuID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || spuID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}
	var req UpdateSpuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	input := service.UpdateSpuInput{
		SpuID:        uint(spuID),
		ShopID:       shopID,
		Name:         req.Name,
		CategoryID:   req.CategoryID,
		Variations:   req.Variations,
		Attributes:   req.Attributes,
		Thumb:        req.Thumb,
		Images:       req.Images,
		IsDraft:      req.IsDraft,
		IsPublish:    req.IsPublish,
		RemoveSkuIDs: req.RemoveSkuIDs,
	}
	for _, add := range req.AddSkus {
		input.AddSkus = append(input.AddSkus, service.SpuSkuAddInput{
			TierIdx:     add.TierIdx,
			Price:       add.Price,
			Stock:       add.Stock,
			WarehouseID: add.WarehouseID,
			Thumb:       add.Thumb,
			Images:      add.Images,
			IsDefault:   add.IsDefault,
			SortOrder:   add.SortOrder,
		})
	}
	for _, upd := range req.UpdateSkus {
		input.UpdateSkus = append(input.UpdateSkus, service.SpuSkuUpdateInput{
			SkuID:     upd.SkuID,
			Price:     upd.Price,
			Stock:     upd.Stock,
			Thumb:     upd.Thumb,
			IsDefault: upd.IsDefault,
			SortOrder: upd.SortOrder,
		})
	}

	view, err := h.SpuService.UpdateSpu(input)
	if err != nil {
		respondSpuError(c, err, "product update failed")
		return
	}
	response.Success(c, view)
}

// CreateSku 为商品单独新增一个 SKU
func (h *Handler) CreateSku(c *gin.Context) {
	shopID, ok := getShopID(c)
	if !ok {
		return
	}
	spuID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || spuID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}
	spu, err := h.SpuRepo.GetByID(uint(spuID))
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	if spu == nil || spu.ShopID != shopID {
		respondError(c, response.CodeNotFound, "product not found", nil)
		return
	}
	var req SkuPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	sku, err := h.SkuService.CreateSku(service.CreateSkuInput{
		SpuID:       uint(spuID),
		TierIdx:     req.TierIdx,
		Price:       req.Price,
		Stock:       req.Stock,
		WarehouseID: req.WarehouseID,
		Thumb:       req.Thumb,
		Images:      req.Images,
		IsDefault:   req.IsDefault,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		respondSpuError(c, err, "sku creation failed")
		return
	}
	response.Created(c, sku)
}

// DeleteSku 删除 SKU 并回收库存台账
func (h *Handler) DeleteSku(c *gin.Context) {
	shopID, ok := getShopID(c)
	if !ok {
		return
	}
	skuID, err := strconv.ParseUint(c.Param("sku_id"), 10, 64)
	if err != nil || skuID == 0 {
		respondError(c, response.CodeBadRequest, "invalid sku id", nil)
		return
	}
	sku, err := h.SkuRepo.GetByID(uint(skuID))
	if err != nil {
		respondError(c, response.CodeInternal, "sku fetch failed", err)
		return
	}
	if sku == nil || sku.Spu == nil || sku.Spu.ShopID != shopID {
		respondError(c, response.CodeNotFound, "sku not found", nil)
		return
	}
	if err := h.SkuService.DeleteSku(uint(skuID)); err != nil {
		respondSpuError(c, err, "sku delete failed")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
