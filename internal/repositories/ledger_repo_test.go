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
	"github.com/stretchr/testify/suite"
)

var ledgerRowColumns = []string{"id", "party_id", "transaction_id", "source_cash_entry_id", "date", "description", "debit", "credit", "balance", "created_at"}

type LedgerRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    LedgerRepository
	partyID uuid.UUID
	context context.Context
}

func (suite *LedgerRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewLedgerRepo(mock)
	suite.partyID = uuid.New()
	suite.context = context.Background()
}

func (suite *LedgerRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestLedgerRepoTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerRepoTestSuite))
}

func (suite *LedgerRepoTestSuite) TestCreate_WithCashSource() {
	cashID := uuid.New()
	createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	entry := &models.LedgerEntry{
		ID:                uuid.New(),
		PartyID:           suite.partyID,
		SourceCashEntryID: &cashID,
		Date:              time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Description:       "Cash In - advance",
		Debit:             decimal.Zero,
		Credit:            decimal.NewFromInt(250),
		Balance:           decimal.NewFromInt(250),
	}

	suite.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO party_ledger")).
		WithArgs(entry.ID, entry.PartyID, entry.TransactionID, entry.SourceCashEntryID, entry.Date,
			entry.Description, entry.Debit, entry.Credit, entry.Balance).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	err := suite.repo.Create(suite.context, entry)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), createdAt, entry.CreatedAt)
}

func (suite *LedgerRepoTestSuite) TestLatest_OrdersByDateThenInsertion() {
	id := uuid.New()
	now := time.Now().UTC()

	suite.mock.ExpectQuery(regexp.QuoteMeta("ORDER BY date DESC, created_at DESC, seq DESC")).
		WithArgs(suite.partyID).
		WillReturnRows(pgxmock.NewRows(ledgerRowColumns).
			AddRow(id, suite.partyID, (*uuid.UUID)(nil), (*uuid.UUID)(nil), now, "Sale - INV-9",
				decimal.NewFromInt(200), decimal.Zero, decimal.NewFromInt(300), now))

	entry, err := suite.repo.Latest(suite.context, suite.partyID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), id, entry.ID)
	assert.True(suite.T(), entry.Balance.Equal(decimal.NewFromInt(300)))
}

func (suite *LedgerRepoTestSuite) TestLatest_NoEntries() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("FROM party_ledger")).
		WithArgs(suite.partyID).
		WillReturnError(pgx.ErrNoRows)

	entry, err := suite.repo.Latest(suite.context, suite.partyID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
	assert.Nil(suite.T(), entry)
}

func (suite *LedgerRepoTestSuite) TestListChronological() {
	now := time.Now().UTC()
	rows := pgxmock.NewRows(ledgerRowColumns).
		AddRow(uuid.New(), suite.partyID, (*uuid.UUID)(nil), (*uuid.UUID)(nil), now, "Purchase - N/A",
			decimal.Zero, decimal.NewFromInt(500), decimal.NewFromInt(500), now).
		AddRow(uuid.New(), suite.partyID, (*uuid.UUID)(nil), (*uuid.UUID)(nil), now.Add(time.Hour), "Sale - N/A",
			decimal.NewFromInt(200), decimal.Zero, decimal.NewFromInt(300), now)

	suite.mock.ExpectQuery(regexp.QuoteMeta("WHERE party_id = $1 ORDER BY date, created_at, seq")).
		WithArgs(suite.partyID).
		WillReturnRows(rows)

	entries, err := suite.repo.ListChronological(suite.context, suite.partyID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), entries, 2)
	assert.Equal(suite.T(), "Purchase - N/A", entries[0].Description)
}

func (suite *LedgerRepoTestSuite) TestDeleteByTransactionID_ReturnsParties() {
	txnID := uuid.New()
	suite.mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM party_ledger WHERE transaction_id = $1 RETURNING party_id")).
		WithArgs(txnID).
		WillReturnRows(pgxmock.NewRows([]string{"party_id"}).AddRow(suite.partyID))

	parties, err := suite.repo.DeleteByTransactionID(suite.context, txnID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []uuid.UUID{suite.partyID}, parties)
}

func (suite *LedgerRepoTestSuite) TestDeleteByCashEntryID_NothingToDelete() {
	cashID := uuid.New()
	suite.mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM party_ledger WHERE source_cash_entry_id = $1")).
		WithArgs(cashID).
		WillReturnRows(pgxmock.NewRows([]string{"party_id"}))

	parties, err := suite.repo.DeleteByCashEntryID(suite.context, cashID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), parties)
}

func (suite *LedgerRepoTestSuite) TestUpdateBalance_Missing() {
	id := uuid.New()
	suite.mock.ExpectExec(regexp.QuoteMeta("UPDATE party_ledger SET balance = $1 WHERE id = $2")).
		WithArgs(decimal.NewFromInt(10), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.UpdateBalance(suite.context, id, decimal.NewFromInt(10))
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}
