package testhelpers

import (
	"context"
	"errors"
	"testing"
	"time"

	"agroledger/internal/models"
	"agroledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAgainstPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup()

	ctx := context.Background()
	store := repositories.NewStore(testDB.Pool)
	cropID := SetupTestCrop(t, testDB, "Wheat")
	partyID := SetupTestParty(t, testDB, "Ramesh", decimal.NewFromInt(100))

	t.Run("stock update commits", func(t *testing.T) {
		err := store.WithTx(ctx, func(repos *repositories.Repositories) error {
			return repos.Inventory.UpdateStock(ctx, cropID, decimal.NewFromInt(100), decimal.NewFromInt(2000), decimal.NewFromInt(200000))
		})
		require.NoError(t, err)

		inv, err := store.Repos().Inventory.GetByCropID(ctx, cropID)
		require.NoError(t, err)
		assert.True(t, inv.CurrentStock.Equal(decimal.NewFromInt(100)))
	})

	t.Run("failed callback rolls back", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.WithTx(ctx, func(repos *repositories.Repositories) error {
			if err := repos.Inventory.UpdateStock(ctx, cropID, decimal.NewFromInt(1), decimal.Zero, decimal.Zero); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		inv, err := store.Repos().Inventory.GetByCropID(ctx, cropID)
		require.NoError(t, err)
		assert.True(t, inv.CurrentStock.Equal(decimal.NewFromInt(100)))
	})

	t.Run("negative stock violates constraint", func(t *testing.T) {
		err := store.Repos().Inventory.UpdateStock(ctx, cropID, decimal.NewFromInt(-1), decimal.Zero, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("ledger latest follows date order", func(t *testing.T) {
		ledger := store.Repos().Ledger
		later := &models.LedgerEntry{ID: uuid.New(), PartyID: partyID, Date: time.Now(), Description: "later", Debit: decimal.NewFromInt(10), Balance: decimal.NewFromInt(110)}
		earlier := &models.LedgerEntry{ID: uuid.New(), PartyID: partyID, Date: time.Now().Add(-48 * time.Hour), Description: "earlier", Credit: decimal.NewFromInt(5), Balance: decimal.NewFromInt(95)}
		require.NoError(t, ledger.Create(ctx, later))
		require.NoError(t, ledger.Create(ctx, earlier))

		latest, err := ledger.Latest(ctx, partyID)
		require.NoError(t, err)
		assert.Equal(t, later.ID, latest.ID)

		entries, err := ledger.ListChronological(ctx, partyID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, earlier.ID, entries[0].ID)
	})

	t.Run("missing crop", func(t *testing.T) {
		_, err := store.Repos().Inventory.GetByCropID(ctx, uuid.New())
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}
