package services

import (
	"context"
	"log"
	"strings"

	"agroledger/internal/caching"
	"agroledger/internal/models"
	"agroledger/internal/repositories"

	"github.com/google/uuid"
)

type CropService interface {
	Create(ctx context.Context, crop *models.Crop) (*models.Crop, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Crop, error)
	Update(ctx context.Context, crop *models.Crop) (*models.Crop, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.Crop, error)
}

type cropService struct {
	store    repositories.TxStore
	cacheSvc caching.CacheService
}

func NewCropService(store repositories.TxStore, cacheSvc caching.CacheService) CropService {
	return &cropService{store: store, cacheSvc: cacheSvc}
}

func validateCrop(c *models.Crop) error {
	errs := fieldErrors{}
	if strings.TrimSpace(c.Name) == "" {
		errs.add("name", "name is required")
	}
	return errs.err()
}

func (s *cropService) invalidate(ctx context.Context) {
	if err := s.cacheSvc.InvalidateBookkeeping(ctx); err != nil {
		log.Printf("Failed to invalidate cache after crop change: %v", err)
	}
}

// Create adds the crop together with its empty inventory row
func (s *cropService) Create(ctx context.Context, crop *models.Crop) (*models.Crop, error) {
	if strings.TrimSpace(crop.Unit) == "" {
		crop.Unit = models.DefaultCropUnit
	}
	if err := validateCrop(crop); err != nil {
		return nil, err
	}

	crop.ID = uuid.New()
	crop.IsActive = true

	err := s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		if err := repos.Crops.Create(ctx, crop); err != nil {
			return err
		}
		return repos.Inventory.Ensure(ctx, crop.ID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return crop, nil
}

func (s *cropService) GetByID(ctx context.Context, id uuid.UUID) (*models.Crop, error) {
	return s.store.Repos().Crops.GetByID(ctx, id)
}

func (s *cropService) Update(ctx context.Context, crop *models.Crop) (*models.Crop, error) {
	if strings.TrimSpace(crop.Unit) == "" {
		crop.Unit = models.DefaultCropUnit
	}
	if err := validateCrop(crop); err != nil {
		return nil, err
	}

	repos := s.store.Repos()
	if err := repos.Crops.Update(ctx, crop); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return repos.Crops.GetByID(ctx, crop.ID)
}

func (s *cropService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Repos().Crops.Deactivate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *cropService) List(ctx context.Context) ([]*models.Crop, error) {
	return s.store.Repos().Crops.List(ctx)
}
