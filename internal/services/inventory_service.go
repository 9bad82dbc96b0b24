package services

import (
	"context"
	"log"
	"time"

	"agroledger/internal/caching"
	"agroledger/internal/models"
	"agroledger/internal/repositories"

	"github.com/google/uuid"
)

const inventoryCacheTTL = 5 * time.Minute

type InventoryService interface {
	ListWithCrops(ctx context.Context) ([]*models.InventoryView, error)
	GetByCropID(ctx context.Context, cropID uuid.UUID) (*models.Inventory, error)
	UpdateSettings(ctx context.Context, cropID uuid.UUID, settings *models.InventorySettings) (*models.Inventory, error)
	LowStock(ctx context.Context) ([]*models.InventoryView, error)
}

type inventoryService struct {
	store        repositories.TxStore
	cacheService caching.CacheService
}

func NewInventoryService(store repositories.TxStore, cacheService caching.CacheService) InventoryService {
	return &inventoryService{store: store, cacheService: cacheService}
}

func (s *inventoryService) ListWithCrops(ctx context.Context) ([]*models.InventoryView, error) {
	if cached, err := s.cacheService.GetInventory(ctx); err == nil && cached != nil {
		return cached, nil
	}

	views, err := s.store.Repos().Inventory.ListWithCrops(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetInventory(ctx, views, inventoryCacheTTL); err != nil {
		log.Printf("Failed to cache inventory: %v", err)
	}
	return views, nil
}

func (s *inventoryService) GetByCropID(ctx context.Context, cropID uuid.UUID) (*models.Inventory, error) {
	return s.store.Repos().Inventory.GetByCropID(ctx, cropID)
}

// UpdateSettings changes the user-editable fields only; stock, rate and value stay engine-owned
func (s *inventoryService) UpdateSettings(ctx context.Context, cropID uuid.UUID, settings *models.InventorySettings) (*models.Inventory, error) {
	errs := fieldErrors{}
	if settings.MinStockLevel != nil && settings.MinStockLevel.IsNegative() {
		errs.add("min_stock_level", "min_stock_level cannot be negative")
	}
	if settings.OpeningStock != nil && settings.OpeningStock.IsNegative() {
		errs.add("opening_stock", "opening_stock cannot be negative")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	var inv *models.Inventory
	err := s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		if err := repos.Inventory.UpdateSettings(ctx, cropID, settings); err != nil {
			return err
		}
		var err error
		inv, err = repos.Inventory.GetByCropID(ctx, cropID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.InvalidateBookkeeping(ctx); err != nil {
		log.Printf("Failed to invalidate cache after inventory settings change: %v", err)
	}
	return inv, nil
}

func (s *inventoryService) LowStock(ctx context.Context) ([]*models.InventoryView, error) {
	return s.store.Repos().Inventory.ListLowStock(ctx)
}
