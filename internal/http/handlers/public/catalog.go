package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/velamall/internal/http/response"
	"github.com/velamall/internal/repository"
	"github.com/velamall/internal/service"

	"github.com/gin-gonic/gin"
)

// GetSpus 获取商品列表
func (h *Handler) GetSpus(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.SpuListFilter{
		Page:        page,
		PageSize:    pageSize,
		Search:      strings.TrimSpace(c.Query("search")),
		OnlyPublish: true,
		WithSkus:    false,
	}
	if raw := c.Query("shop_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.ShopID = uint(id)
		}
	}
	if raw := c.Query("category_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.CategoryID = uint(id)
		}
	}

	spus, total, err := h.SpuService.ListSpus(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "product list failed", err)
		return
	}
	response.SuccessWithPage(c, spus, response.NewPagination(page, pageSize, total))
}

// GetSpu 获取商品详情（含 SKU 与解析后的变体取值）
func (h *Handler) GetSpu(c *gin.Context) {
	spuID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || spuID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}
	view, err := h.SpuService.GetSpu(uint(spuID))
	if err != nil {
		if errors.Is(err, service.ErrSpuNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	response.Success(c, view)
}

// GetSpuBySlug 根据 slug 获取商品详情
func (h *Handler) GetSpuBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "invalid product slug", nil)
		return
	}
	spu, err := h.SpuRepo.GetBySlug(slug)
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	if spu == nil {
		respondError(c, response.CodeNotFound, "product not found", nil)
		return
	}
	view, err := h.SpuService.GetSpu(spu.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	response.Success(c, view)
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "category list failed", err)
		return
	}
	response.Success(c, categories)
}

// GetShops 获取店铺列表
func (h *Handler) GetShops(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	shops, total, err := h.ShopRepo.List(page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "shop list failed", err)
		return
	}
	response.SuccessWithPage(c, shops, response.NewPagination(page, pageSize, total))
}

// GetShop 获取店铺详情
func (h *Handler) GetShop(c *gin.Context) {
	shopID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || shopID == 0 {
		respondError(c, response.CodeBadRequest, "invalid shop id", nil)
		return
	}
	shop, err := h.ShopRepo.GetByID(uint(shopID))
	if err != nil {
		respondError(c, response.CodeInternal, "shop fetch failed", err)
		return
	}
	if shop == nil {
		respondError(c, response.CodeNotFound, "shop not found", nil)
		return
	}
	response.Success(c, shop)
}
