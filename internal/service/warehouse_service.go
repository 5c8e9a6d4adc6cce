package service

import (
	"strings"

	"github.com/velamall/internal/models"
	"github.com/velamall/internal/repository"
)

// WarehouseService 仓库服务
type WarehouseService struct {
	warehouseRepo repository.WarehouseRepository
	inventoryRepo repository.InventoryRepository
}

// NewWarehouseService 创建仓库服务
func NewWarehouseService(warehouseRepo repository.WarehouseRepository, inventoryRepo repository.InventoryRepository) *WarehouseService {
	return &WarehouseService{
		warehouseRepo: warehouseRepo,
		inventoryRepo: inventoryRepo,
	}
}

// CreateWarehouse 创建仓库
func (s *WarehouseService) CreateWarehouse(name, location string) (*models.Warehouse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrWarehouseNotFound
	}
	warehouse := &models.Warehouse{
		Name:     name,
		Location: strings.TrimSpace(location),
	}
	if err := s.warehouseRepo.Create(warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

// GetWarehouse 获取仓库
func (s *WarehouseService) GetWarehouse(id uint) (*models.Warehouse, error) {
	warehouse, err := s.warehouseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, ErrWarehouseNotFound
	}
	return warehouse, nil
}

// ListWarehouses 仓库列表
func (s *WarehouseService) ListWarehouses(page, pageSize int) ([]models.Warehouse, int64, error) {
	return s.warehouseRepo.List(page, pageSize)
}

// ListShopInventories 店铺库存台账
func (s *WarehouseService) ListShopInventories(shopID uint) ([]models.Inventory, error) {
	return s.inventoryRepo.ListByShop(shopID)
}
