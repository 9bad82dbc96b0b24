package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"agroledger/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cashRowColumns = []string{"id", "date", "type", "description", "reference", "amount", "balance", "party_id", "created_at"}

func TestCashRegisterRepo_Lock(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(cashRegisterLockKey).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	assert.NoError(t, NewCashRegisterRepo(mock).Lock(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCashRegisterRepo_LatestUsesOrderNotMax(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	date := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM cash_register ORDER BY date DESC, created_at DESC, seq DESC LIMIT 1")).
		WillReturnRows(pgxmock.NewRows(cashRowColumns).
			AddRow(id, date, models.CashOut, "diesel", (*string)(nil), decimal.NewFromInt(700),
				decimal.NewFromInt(-200), (*uuid.UUID)(nil), date))

	entry, err := NewCashRegisterRepo(mock).Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, entry.ID)
	assert.True(t, entry.Balance.Equal(decimal.NewFromInt(-200)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCashRegisterRepo_LatestEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM cash_register")).WillReturnError(pgx.ErrNoRows)

	entry, err := NewCashRegisterRepo(mock).Latest(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, entry)
}

func TestCashRegisterRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	createdAt := time.Now().UTC()
	entry := &models.CashEntry{
		ID:          uuid.New(),
		Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Type:        models.CashIn,
		Description: "opening float",
		Amount:      decimal.NewFromInt(1000),
		Balance:     decimal.NewFromInt(1000),
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO cash_register")).
		WithArgs(entry.ID, entry.Date, entry.Type, entry.Description, entry.Reference, entry.Amount, entry.Balance, entry.PartyID).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	require.NoError(t, NewCashRegisterRepo(mock).Create(context.Background(), entry))
	assert.Equal(t, createdAt, entry.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
