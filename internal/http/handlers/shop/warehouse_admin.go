package shop

import (
	"errors"
	"strconv"

	"github.com/velamall/internal/http/response"
	"github.com/velamall/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateWarehouseRequest 创建仓库请求
type CreateWarehouseRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

// CreateWarehouse 创建仓库
func (h *Handler) CreateWarehouse(c *gin.Context) {
	if _, ok := getShopID(c); !ok {
		return
	}
	var req CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	warehouse, err := h.WarehouseService.CreateWarehouse(req.Name, req.Location)
	if err != nil {
		respondError(c, response.CodeInternal, "warehouse creation failed", err)
		return
	}
	response.Created(c, warehouse)
}

// ListWarehouses 获取仓库列表
func (h *Handler) ListWarehouses(c *gin.Context) {
	if _, ok := getShopID(c); !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	warehouses, total, err := h.WarehouseService.ListWarehouses(page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "warehouse list failed", err)
		return
	}
	response.SuccessWithPage(c, warehouses, response.NewPagination(page, pageSize, total))
}

// GetWarehouse 获取仓库详情
func (h *Handler) GetWarehouse(c *gin.Context) {
	if _, ok := getShopID(c); !ok {
		return
	}
	warehouseID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || warehouseID == 0 {
		respondError(c, response.CodeBadRequest, "invalid warehouse id", nil)
		return
	}
	warehouse, err := h.WarehouseService.GetWarehouse(uint(warehouseID))
	if err != nil {
		if errors.Is(err, service.ErrWarehouseNotFound) {
			respondError(c, response.CodeNotFound, "warehouse not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "warehouse fetch failed", err)
		return
	}
	response.Success(c, warehouse)
}

// ListInventories 获取本店库存台账
func (h *Handler) ListInventories(c *gin.Context) {
	shopID, ok := getShopID(c)
	if !ok {
		return
	}
	inventories, err := h.WarehouseService.ListShopInventories(shopID)
	if err != nil {
		respondError(c, response.CodeInternal, "inventory list failed", err)
		return
	}
	response.Success(c, gin.H{"items": inventories})
}
