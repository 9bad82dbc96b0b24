package repositories

import (
	"context"
	"regexp"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardRepo_MetricsNetProfit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions")).
		WillReturnRows(pgxmock.NewRows([]string{"sales", "purchases", "expenses"}).
			AddRow(decimal.NewFromInt(5000), decimal.NewFromInt(3000), decimal.NewFromInt(450)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM inventory i")).
		WillReturnRows(pgxmock.NewRows([]string{"value", "crops", "low"}).
			AddRow(decimal.NewFromInt(1200), 4, 1))

	m, err := NewDashboardRepo(mock).Metrics(context.Background())
	require.NoError(t, err)
	assert.True(t, m.NetProfit.Equal(decimal.NewFromInt(1550)))
	assert.True(t, m.InventoryValue.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, 4, m.TotalCrops)
	assert.Equal(t, 1, m.LowStockItems)
	assert.NoError(t, mock.ExpectationsWereMet())
}
