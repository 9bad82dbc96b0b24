package repositories

import (
	"context"

	"agroledger/internal/models"
)

type DashboardRepository interface {
	Metrics(ctx context.Context) (*models.DashboardMetrics, error)
}

type dashboardRepo struct {
	db DBTX
}

func NewDashboardRepo(db DBTX) DashboardRepository {
	return &dashboardRepo{db: db}
}

func (r *dashboardRepo) Metrics(ctx context.Context) (*models.DashboardMetrics, error) {
	m := &models.DashboardMetrics{}
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'sale'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'purchase'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM transactions
		WHERE status = 'active'
	`
	if err := r.db.QueryRow(ctx, query).Scan(&m.TotalSales, &m.TotalPurchases, &m.TotalExpenses); err != nil {
		return nil, err
	}

	stockQuery := `
		SELECT
			COALESCE(SUM(i.stock_value), 0),
			COUNT(*) FILTER (WHERE c.is_active),
			COUNT(*) FILTER (WHERE c.is_active AND i.current_stock <= i.min_stock_level)
		FROM inventory i
		JOIN crops c ON c.id = i.crop_id
	`
	if err := r.db.QueryRow(ctx, stockQuery).Scan(&m.InventoryValue, &m.TotalCrops, &m.LowStockItems); err != nil {
		return nil, err
	}

	m.NetProfit = m.TotalSales.Sub(m.TotalPurchases).Sub(m.TotalExpenses)
	return m, nil
}
