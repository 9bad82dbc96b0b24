package repositories

import (
	"context"

	"agroledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InventoryRepository interface {
	// Ensure creates an empty inventory row for the crop if none exists
	Ensure(ctx context.Context, cropID uuid.UUID) error
	GetByCropID(ctx context.Context, cropID uuid.UUID) (*models.Inventory, error)
	GetByCropIDForUpdate(ctx context.Context, cropID uuid.UUID) (*models.Inventory, error)
	UpdateStock(ctx context.Context, cropID uuid.UUID, quantity, averageRate, stockValue decimal.Decimal) error
	UpdateSettings(ctx context.Context, cropID uuid.UUID, settings *models.InventorySettings) error
	ListWithCrops(ctx context.Context) ([]*models.InventoryView, error)
	ListLowStock(ctx context.Context) ([]*models.InventoryView, error)
}

type inventoryRepo struct {
	db DBTX
}

func NewInventoryRepo(db DBTX) InventoryRepository {
	return &inventoryRepo{db: db}
}

func (r *inventoryRepo) Ensure(ctx context.Context, cropID uuid.UUID) error {
	query := `
		INSERT INTO inventory (id, crop_id, opening_stock, current_stock, average_rate, stock_value, min_stock_level, updated_at)
		VALUES ($1, $2, 0, 0, 0, 0, 0, NOW())
		ON CONFLICT (crop_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, uuid.New(), cropID)
	return err
}

func (r *inventoryRepo) get(ctx context.Context, query string, cropID uuid.UUID) (*models.Inventory, error) {
	inv := &models.Inventory{}
	err := r.db.QueryRow(ctx, query, cropID).Scan(&inv.ID, &inv.CropID, &inv.OpeningStock, &inv.CurrentStock,
		&inv.AverageRate, &inv.StockValue, &inv.MinStockLevel, &inv.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return inv, nil
}

func (r *inventoryRepo) GetByCropID(ctx context.Context, cropID uuid.UUID) (*models.Inventory, error) {
	query := `
		SELECT id, crop_id, opening_stock, current_stock, average_rate, stock_value, min_stock_level, updated_at
		FROM inventory
		WHERE crop_id = $1
	`
	return r.get(ctx, query, cropID)
}

func (r *inventoryRepo) GetByCropIDForUpdate(ctx context.Context, cropID uuid.UUID) (*models.Inventory, error) {
	query := `
		SELECT id, crop_id, opening_stock, current_stock, average_rate, stock_value, min_stock_level, updated_at
		FROM inventory
		WHERE crop_id = $1
		FOR UPDATE
	`
	return r.get(ctx, query, cropID)
}

func (r *inventoryRepo) UpdateStock(ctx context.Context, cropID uuid.UUID, quantity, averageRate, stockValue decimal.Decimal) error {
	query := `
		UPDATE inventory
		SET current_stock = $1, average_rate = $2, stock_value = $3, updated_at = NOW()
		WHERE crop_id = $4
	`
	return affected(r.db.Exec(ctx, query, quantity, averageRate, stockValue, cropID))
}

func (r *inventoryRepo) UpdateSettings(ctx context.Context, cropID uuid.UUID, settings *models.InventorySettings) error {
	query := `
		UPDATE inventory
		SET min_stock_level = COALESCE($1, min_stock_level),
			opening_stock = COALESCE($2, opening_stock),
			updated_at = NOW()
		WHERE crop_id = $3
	`
	return affected(r.db.Exec(ctx, query, settings.MinStockLevel, settings.OpeningStock, cropID))
}

const inventoryViewQuery = `
	SELECT i.id, i.crop_id, c.name, c.variety, c.category, c.unit,
		i.opening_stock, i.current_stock, i.average_rate, i.stock_value, i.min_stock_level
	FROM inventory i
	JOIN crops c ON c.id = i.crop_id
	WHERE c.is_active = true
`

func (r *inventoryRepo) listViews(ctx context.Context, query string) ([]*models.InventoryView, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*models.InventoryView
	for rows.Next() {
		v := &models.InventoryView{}
		if err := rows.Scan(&v.ID, &v.CropID, &v.CropName, &v.Variety, &v.Category, &v.Unit,
			&v.OpeningStock, &v.CurrentStock, &v.AverageRate, &v.StockValue, &v.MinStockLevel); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *inventoryRepo) ListWithCrops(ctx context.Context) ([]*models.InventoryView, error) {
	return r.listViews(ctx, inventoryViewQuery+` ORDER BY c.name`)
}

func (r *inventoryRepo) ListLowStock(ctx context.Context) ([]*models.InventoryView, error) {
	return r.listViews(ctx, inventoryViewQuery+` AND i.current_stock <= i.min_stock_level ORDER BY c.name`)
}
