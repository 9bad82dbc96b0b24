package services

import (
	"context"
	"strings"

	"agroledger/internal/models"
	"agroledger/internal/repositories"

	"github.com/google/uuid"
)

type LocationService interface {
	CreateState(ctx context.Context, state *models.State) (*models.State, error)
	UpdateState(ctx context.Context, state *models.State) (*models.State, error)
	DeactivateState(ctx context.Context, id uuid.UUID) error
	ListStates(ctx context.Context) ([]*models.State, error)

	CreateCity(ctx context.Context, city *models.City) (*models.City, error)
	UpdateCity(ctx context.Context, city *models.City) (*models.City, error)
	DeactivateCity(ctx context.Context, id uuid.UUID) error
	ListCities(ctx context.Context, stateID *uuid.UUID) ([]*models.City, error)
}

type locationService struct {
	store repositories.TxStore
}

func NewLocationService(store repositories.TxStore) LocationService {
	return &locationService{store: store}
}

func requireName(name string) error {
	errs := fieldErrors{}
	if strings.TrimSpace(name) == "" {
		errs.add("name", "name is required")
	}
	return errs.err()
}

func (s *locationService) CreateState(ctx context.Context, state *models.State) (*models.State, error) {
	if err := requireName(state.Name); err != nil {
		return nil, err
	}
	state.ID = uuid.New()
	state.IsActive = true
	if err := s.store.Repos().States.Create(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *locationService) UpdateState(ctx context.Context, state *models.State) (*models.State, error) {
	if err := requireName(state.Name); err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	if err := repos.States.Update(ctx, state); err != nil {
		return nil, err
	}
	return repos.States.GetByID(ctx, state.ID)
}

func (s *locationService) DeactivateState(ctx context.Context, id uuid.UUID) error {
	return s.store.Repos().States.Deactivate(ctx, id)
}

func (s *locationService) ListStates(ctx context.Context) ([]*models.State, error) {
	return s.store.Repos().States.List(ctx)
}

func (s *locationService) CreateCity(ctx context.Context, city *models.City) (*models.City, error) {
	if err := requireName(city.Name); err != nil {
		return nil, err
	}
	if city.StateID != nil {
		if _, err := s.store.Repos().States.GetByID(ctx, *city.StateID); err != nil {
			return nil, err
		}
	}
	city.ID = uuid.New()
	city.IsActive = true
	if err := s.store.Repos().Cities.Create(ctx, city); err != nil {
		return nil, err
	}
	return city, nil
}

func (s *locationService) UpdateCity(ctx context.Context, city *models.City) (*models.City, error) {
	if err := requireName(city.Name); err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	if err := repos.Cities.Update(ctx, city); err != nil {
		return nil, err
	}
	return repos.Cities.GetByID(ctx, city.ID)
}

func (s *locationService) DeactivateCity(ctx context.Context, id uuid.UUID) error {
	return s.store.Repos().Cities.Deactivate(ctx, id)
}

func (s *locationService) ListCities(ctx context.Context, stateID *uuid.UUID) ([]*models.City, error) {
	return s.store.Repos().Cities.List(ctx, stateID)
}
