package repositories

import (
	"context"

	"agroledger/internal/models"

	"github.com/google/uuid"
)

type StateRepository interface {
	Create(ctx context.Context, state *models.State) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.State, error)
	Update(ctx context.Context, state *models.State) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.State, error)
}

type CityRepository interface {
	Create(ctx context.Context, city *models.City) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.City, error)
	Update(ctx context.Context, city *models.City) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, stateID *uuid.UUID) ([]*models.City, error)
}

type stateRepo struct {
	db DBTX
}

func NewStateRepo(db DBTX) StateRepository {
	return &stateRepo{db: db}
}

func (r *stateRepo) Create(ctx context.Context, state *models.State) error {
	query := `
		INSERT INTO states (id, name, code, is_active, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query, state.ID, state.Name, state.Code, state.IsActive).Scan(&state.CreatedAt)
}

func (r *stateRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.State, error) {
	state := &models.State{}
	query := `SELECT id, name, code, is_active, created_at FROM states WHERE id = $1`
	if err := r.db.QueryRow(ctx, query, id).Scan(&state.ID, &state.Name, &state.Code, &state.IsActive, &state.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return state, nil
}

func (r *stateRepo) Update(ctx context.Context, state *models.State) error {
	query := `UPDATE states SET name = $1, code = $2, is_active = $3 WHERE id = $4`
	return affected(r.db.Exec(ctx, query, state.Name, state.Code, state.IsActive, state.ID))
}

func (r *stateRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `UPDATE states SET is_active = false WHERE id = $1`, id))
}

func (r *stateRepo) List(ctx context.Context) ([]*models.State, error) {
	query := `
		SELECT id, name, code, is_active, created_at
		FROM states
		WHERE is_active = true
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []*models.State
	for rows.Next() {
		state := &models.State{}
		if err := rows.Scan(&state.ID, &state.Name, &state.Code, &state.IsActive, &state.CreatedAt); err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

type cityRepo struct {
	db DBTX
}

func NewCityRepo(db DBTX) CityRepository {
	return &cityRepo{db: db}
}

func (r *cityRepo) Create(ctx context.Context, city *models.City) error {
	query := `
		INSERT INTO cities (id, name, state_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query, city.ID, city.Name, city.StateID, city.IsActive).Scan(&city.CreatedAt)
}

func (r *cityRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.City, error) {
	city := &models.City{}
	query := `SELECT id, name, state_id, is_active, created_at FROM cities WHERE id = $1`
	if err := r.db.QueryRow(ctx, query, id).Scan(&city.ID, &city.Name, &city.StateID, &city.IsActive, &city.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return city, nil
}

func (r *cityRepo) Update(ctx context.Context, city *models.City) error {
	query := `UPDATE cities SET name = $1, state_id = $2, is_active = $3 WHERE id = $4`
	return affected(r.db.Exec(ctx, query, city.Name, city.StateID, city.IsActive, city.ID))
}

func (r *cityRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `UPDATE cities SET is_active = false WHERE id = $1`, id))
}

// List returns active cities, optionally restricted to one state
func (r *cityRepo) List(ctx context.Context, stateID *uuid.UUID) ([]*models.City, error) {
	query := `
		SELECT id, name, state_id, is_active, created_at
		FROM cities
		WHERE is_active = true AND ($1::uuid IS NULL OR state_id = $1)
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, stateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []*models.City
	for rows.Next() {
		city := &models.City{}
		if err := rows.Scan(&city.ID, &city.Name, &city.StateID, &city.IsActive, &city.CreatedAt); err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}
