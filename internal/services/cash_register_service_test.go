package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"agroledger/internal/caching"
	"agroledger/internal/models"
	"agroledger/testhelpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type CashRegisterServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *testhelpers.MemStore
	cache   caching.CacheService
	service CashRegisterService
	day1    time.Time
	day2    time.Time
}

func (suite *CashRegisterServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = testhelpers.NewMemStore()
	suite.cache = caching.NewLocalCacheService()
	suite.service = NewCashRegisterService(suite.store, suite.cache)
	suite.day2 = time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	suite.day1 = suite.day2.Add(-24 * time.Hour)
}

func TestCashRegisterServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CashRegisterServiceTestSuite))
}

func (suite *CashRegisterServiceTestSuite) create(date time.Time, typ models.CashEntryType, amount int64, party *models.Party) *models.CashEntry {
	entry := &models.CashEntry{Date: date, Type: typ, Description: "entry", Amount: dec(amount)}
	if party != nil {
		id := party.ID
		entry.PartyID = &id
	}
	created, err := suite.service.Create(suite.ctx, entry)
	suite.Require().NoError(err)
	return created
}

func balances[T any](items []T, get func(T) decimal.Decimal) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = get(item).String()
	}
	return out
}

func (suite *CashRegisterServiceTestSuite) TestCreate_RunningBalance() {
	suite.create(suite.day1, models.CashIn, 1000, nil)
	second := suite.create(suite.day2, models.CashOut, 250, nil)

	assert.True(suite.T(), second.Balance.Equal(dec(750)))

	balance, err := suite.service.Balance(suite.ctx)
	suite.Require().NoError(err)
	assert.True(suite.T(), balance.Equal(dec(750)))
}

func (suite *CashRegisterServiceTestSuite) TestCreate_BackDatedEntryReplaysRegister() {
	suite.create(suite.day2, models.CashIn, 100, nil)
	early := suite.create(suite.day1, models.CashIn, 40, nil)

	assert.True(suite.T(), early.Balance.Equal(dec(40)))
	got := balances(suite.store.CashEntries(), func(e models.CashEntry) decimal.Decimal { return e.Balance })
	assert.Equal(suite.T(), []string{"40", "140"}, got)
}

func (suite *CashRegisterServiceTestSuite) TestCreate_DefaultsDateToNow() {
	created, err := suite.service.Create(suite.ctx, &models.CashEntry{Type: models.CashIn, Description: "walk-in", Amount: dec(5)})
	suite.Require().NoError(err)

	assert.WithinDuration(suite.T(), time.Now(), created.Date, time.Minute)
}

func (suite *CashRegisterServiceTestSuite) TestCreate_Validation() {
	_, err := suite.service.Create(suite.ctx, &models.CashEntry{Date: suite.day1, Type: "refund", Amount: decimal.Zero})

	var validation *ValidationError
	suite.Require().True(errors.As(err, &validation))
	assert.Contains(suite.T(), validation.Fields, "type")
	assert.Contains(suite.T(), validation.Fields, "description")
	assert.Contains(suite.T(), validation.Fields, "amount")
	assert.Empty(suite.T(), suite.store.CashEntries())
}

func (suite *CashRegisterServiceTestSuite) TestCreate_PostsToPartyLedger() {
	party := suite.store.AddParty("Mahesh", dec(10))

	suite.create(suite.day1, models.CashIn, 100, &party)
	suite.create(suite.day2, models.CashOut, 30, &party)

	entries := suite.store.LedgerFor(party.ID)
	suite.Require().Len(entries, 2)
	assert.Equal(suite.T(), "Cash In - entry", entries[0].Description)
	assert.NotNil(suite.T(), entries[0].SourceCashEntryID)
	assert.Nil(suite.T(), entries[0].TransactionID)
	assert.Equal(suite.T(), []string{"110", "80"}, balances(entries, func(e models.LedgerEntry) decimal.Decimal { return e.Balance }))
}

func (suite *CashRegisterServiceTestSuite) TestUpdate_EditReplaysRegisterAndLedger() {
	party := suite.store.AddParty("Mahesh", decimal.Zero)
	first := suite.create(suite.day1, models.CashIn, 100, &party)
	suite.create(suite.day2, models.CashOut, 30, &party)

	amount := dec(150)
	updated, err := suite.service.Update(suite.ctx, first.ID, &models.CashEntryPatch{Amount: &amount})
	suite.Require().NoError(err)

	assert.True(suite.T(), updated.Balance.Equal(dec(150)))
	assert.Equal(suite.T(), []string{"150", "120"},
		balances(suite.store.CashEntries(), func(e models.CashEntry) decimal.Decimal { return e.Balance }))

	entries := suite.store.LedgerFor(party.ID)
	suite.Require().Len(entries, 2)
	assert.Equal(suite.T(), []string{"150", "120"},
		balances(entries, func(e models.LedgerEntry) decimal.Decimal { return e.Balance }))
}

func (suite *CashRegisterServiceTestSuite) TestUpdate_ClearingPartyRemovesLedgerEntry() {
	party := suite.store.AddParty("Mahesh", decimal.Zero)
	entry := suite.create(suite.day1, models.CashIn, 100, &party)

	_, err := suite.service.Update(suite.ctx, entry.ID, &models.CashEntryPatch{PartyID: models.UUIDUpdate{Set: true}})
	suite.Require().NoError(err)

	assert.Empty(suite.T(), suite.store.LedgerFor(party.ID))
}

func (suite *CashRegisterServiceTestSuite) TestRecalculate_FixesStaleBalancesOnce() {
	suite.create(suite.day1, models.CashIn, 100, nil)
	second := suite.create(suite.day2, models.CashIn, 50, nil)
	suite.store.SetCashBalance(second.ID, dec(999))

	corrected, err := suite.service.Recalculate(suite.ctx)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, corrected)

	corrected, err = suite.service.Recalculate(suite.ctx)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, corrected)

	balance, err := suite.service.Balance(suite.ctx)
	suite.Require().NoError(err)
	assert.True(suite.T(), balance.Equal(dec(150)))
}

func (suite *CashRegisterServiceTestSuite) TestBalance_EmptyRegister() {
	balance, err := suite.service.Balance(suite.ctx)
	suite.Require().NoError(err)
	assert.True(suite.T(), balance.IsZero())
}
