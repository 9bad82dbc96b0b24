package testhelpers

import (
	"context"
	"os"
	"testing"

	"agroledger/internal/models"
	"agroledger/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB connects to TEST_DATABASE_URL and applies the migrations.
// The test is skipped when no database is configured.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, connString, database.PoolOptions{MaxConns: 4})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestCrop inserts a crop with an empty inventory row
func SetupTestCrop(t *testing.T, db *TestDB, name string) uuid.UUID {
	t.Helper()

	cropID := uuid.New()
	ctx := context.Background()
	if _, err := db.Pool.Exec(ctx, `INSERT INTO crops (id, name, unit) VALUES ($1, $2, $3)`, cropID, name, models.DefaultCropUnit); err != nil {
		t.Fatalf("Failed to create test crop: %v", err)
	}
	if _, err := db.Pool.Exec(ctx, `INSERT INTO inventory (id, crop_id) VALUES ($1, $2)`, uuid.New(), cropID); err != nil {
		t.Fatalf("Failed to create test inventory: %v", err)
	}
	return cropID
}

// SetupTestParty inserts a farmer with the given opening balance
func SetupTestParty(t *testing.T, db *TestDB, name string, opening decimal.Decimal) uuid.UUID {
	t.Helper()

	partyID := uuid.New()
	code := "T" + partyID.String()[:8]
	_, err := db.Pool.Exec(context.Background(), `
		INSERT INTO parties (id, name, code, type, phone, opening_balance)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, partyID, name, code, models.PartyTypeFarmer, "9999999999", opening)
	if err != nil {
		t.Fatalf("Failed to create test party: %v", err)
	}
	return partyID
}
