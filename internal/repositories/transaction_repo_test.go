package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"agroledger/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

var transactionViewColumns = []string{"id", "type", "date", "invoice_number", "party_id", "crop_id", "quantity", "rate",
	"amount", "payment_mode", "payment_status", "quality", "notes", "category", "attachment_key", "status",
	"created_at", "updated_at", "party_name", "crop_name"}

type TransactionRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    TransactionRepository
	context context.Context
}

func (suite *TransactionRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewTransactionRepo(mock)
	suite.context = context.Background()
}

func (suite *TransactionRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestTransactionRepoTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionRepoTestSuite))
}

func (suite *TransactionRepoTestSuite) viewRow(rows *pgxmock.Rows, txnType models.TransactionType, partyName string) *pgxmock.Rows {
	now := time.Now().UTC()
	qty := decimal.NewFromInt(10)
	rate := decimal.NewFromInt(25)
	return rows.AddRow(uuid.New(), txnType, now, (*string)(nil), (*uuid.UUID)(nil), (*uuid.UUID)(nil), &qty, &rate,
		decimal.NewFromInt(250), models.PaymentModeCash, models.PaymentStatusCompleted, (*string)(nil), (*string)(nil),
		(*string)(nil), (*string)(nil), models.TransactionStatusActive, now, now, &partyName, (*string)(nil))
}

func (suite *TransactionRepoTestSuite) TestList_TypeFilterWins() {
	txnType := models.TransactionTypeSale
	partyID := uuid.New()

	rows := suite.viewRow(pgxmock.NewRows(transactionViewColumns), txnType, "Ramesh")
	suite.mock.ExpectQuery(regexp.QuoteMeta("WHERE t.status = 'active' AND t.type = $1 ORDER BY t.date DESC")).
		WithArgs(txnType).
		WillReturnRows(rows)

	views, err := suite.repo.List(suite.context, models.TransactionFilter{Type: &txnType, PartyID: &partyID})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), views, 1)
	assert.Equal(suite.T(), "Ramesh", *views[0].PartyName)
}

func (suite *TransactionRepoTestSuite) TestList_ByCrop() {
	cropID := uuid.New()
	suite.mock.ExpectQuery(regexp.QuoteMeta("AND t.crop_id = $1")).
		WithArgs(cropID).
		WillReturnRows(pgxmock.NewRows(transactionViewColumns))

	views, err := suite.repo.List(suite.context, models.TransactionFilter{CropID: &cropID})
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), views)
}

func (suite *TransactionRepoTestSuite) TestListDeleted() {
	rows := suite.viewRow(pgxmock.NewRows(transactionViewColumns), models.TransactionTypePurchase, "Suresh")
	suite.mock.ExpectQuery(regexp.QuoteMeta("WHERE t.status = 'trashed'")).WillReturnRows(rows)

	views, err := suite.repo.ListDeleted(suite.context)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), views, 1)
}

func (suite *TransactionRepoTestSuite) TestSetStatus() {
	id := uuid.New()
	suite.mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET status = $1")).
		WithArgs(models.TransactionStatusTrashed, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(suite.T(), suite.repo.SetStatus(suite.context, id, models.TransactionStatusTrashed))
}

func (suite *TransactionRepoTestSuite) TestDelete_Missing() {
	id := uuid.New()
	suite.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM transactions WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(suite.T(), suite.repo.Delete(suite.context, id), ErrNotFound)
}
