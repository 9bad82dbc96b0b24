package repositories

import (
	"context"

	"agroledger/internal/models"

	"github.com/google/uuid"
)

type CropRepository interface {
	Create(ctx context.Context, crop *models.Crop) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Crop, error)
	Update(ctx context.Context, crop *models.Crop) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.Crop, error)
}

type cropRepo struct {
	db DBTX
}

func NewCropRepo(db DBTX) CropRepository {
	return &cropRepo{db: db}
}

func (r *cropRepo) Create(ctx context.Context, crop *models.Crop) error {
	query := `
		INSERT INTO crops (id, name, variety, category, unit, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, crop.ID, crop.Name, crop.Variety, crop.Category, crop.Unit, crop.Description, crop.IsActive).
		Scan(&crop.CreatedAt, &crop.UpdatedAt)
}

func (r *cropRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Crop, error) {
	crop := &models.Crop{}
	query := `
		SELECT id, name, variety, category, unit, description, is_active, created_at, updated_at
		FROM crops
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&crop.ID, &crop.Name, &crop.Variety, &crop.Category, &crop.Unit,
		&crop.Description, &crop.IsActive, &crop.CreatedAt, &crop.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return crop, nil
}

func (r *cropRepo) Update(ctx context.Context, crop *models.Crop) error {
	query := `
		UPDATE crops
		SET name = $1, variety = $2, category = $3, unit = $4, description = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
	`
	return affected(r.db.Exec(ctx, query, crop.Name, crop.Variety, crop.Category, crop.Unit, crop.Description, crop.IsActive, crop.ID))
}

func (r *cropRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `UPDATE crops SET is_active = false, updated_at = NOW() WHERE id = $1`, id))
}

func (r *cropRepo) List(ctx context.Context) ([]*models.Crop, error) {
	query := `
		SELECT id, name, variety, category, unit, description, is_active, created_at, updated_at
		FROM crops
		WHERE is_active = true
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var crops []*models.Crop
	for rows.Next() {
		crop := &models.Crop{}
		if err := rows.Scan(&crop.ID, &crop.Name, &crop.Variety, &crop.Category, &crop.Unit,
			&crop.Description, &crop.IsActive, &crop.CreatedAt, &crop.UpdatedAt); err != nil {
			return nil, err
		}
		crops = append(crops, crop)
	}
	return crops, rows.Err()
}
