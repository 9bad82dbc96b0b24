package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"agroledger/internal/caching"
	"agroledger/internal/common"
	"agroledger/internal/models"
	"agroledger/internal/services"
	"agroledger/testhelpers"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type APITestSuite struct {
	suite.Suite
	store *testhelpers.MemStore
	auth  services.AuthService
	e     *echo.Echo
	user  *models.User
}

func (s *APITestSuite) SetupTest() {
	s.store = testhelpers.NewMemStore()
	cache := caching.NewLocalCacheService()
	repos := s.store.Repos()

	s.auth = services.NewAuthService(repos.Users, cache, "test-secret", 900, 3600)
	require.NoError(s.T(), s.auth.EnsureUser(context.Background(), "admin", "admin@example.com", "secret123", "Admin", "admin"))
	user, err := repos.Users.GetByEmail(context.Background(), "admin@example.com")
	require.NoError(s.T(), err)
	s.user = user

	api := &API{
		Auth:         NewAuthHandlers(s.auth),
		Dashboard:    NewDashboardHandlers(services.NewDashboardService(s.store, cache)),
		Locations:    NewLocationHandlers(services.NewLocationService(s.store)),
		Parties:      NewPartyHandlers(services.NewPartyService(s.store, cache)),
		Crops:        NewCropHandlers(services.NewCropService(s.store, cache)),
		Transactions: NewTransactionHandlers(services.NewTransactionService(s.store, cache, nil, "")),
		Inventory:    NewInventoryHandlers(services.NewInventoryService(s.store, cache)),
		CashRegister: NewCashRegisterHandlers(services.NewCashRegisterService(s.store, cache)),
		Ledger:       NewLedgerHandlers(services.NewLedgerService(s.store)),
	}

	s.e = echo.New()
	s.e.Validator = NewRequestValidator()
	v1 := s.e.Group("/api/v1")
	api.RegisterPublic(v1)

	// Stands in for the JWT middleware
	protected := v1.Group("", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, s.user.ID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	api.RegisterProtected(protected)
}

func (s *APITestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *APITestSuite) TestPurchaseAndSaleThroughAPI() {
	party := s.store.AddParty("Ramesh", decimal.Zero)
	crop := s.store.AddCrop("Wheat", "quintal")

	rec := s.do(http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"type": "purchase", "date": "2024-01-10", "party_id": party.ID,
		"crop_id": crop.ID, "quantity": 60, "rate": 10, "amount": 600,
	})
	require.Equal(s.T(), http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Transaction](s.T(), rec)
	assert.Equal(s.T(), models.TransactionStatusActive, created.Status)

	rec = s.do(http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"type": "sale", "date": "2024-01-11", "crop_id": crop.ID,
		"quantity": 100, "rate": 12, "amount": 1200,
	})
	require.Equal(s.T(), http.StatusBadRequest, rec.Code)
	errResp := decode[common.ErrorResponse](s.T(), rec)
	assert.Equal(s.T(), "CLIENT_ERROR", errResp.Error.Code)
	assert.Equal(s.T(), "Insufficient stock for Wheat. Available: 60.00 quintal, Requested: 100.00 quintal", errResp.Error.Message)

	rec = s.do(http.MethodGet, "/api/v1/inventory", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)
	views := decode[[]models.InventoryView](s.T(), rec)
	require.Len(s.T(), views, 1)
	assert.True(s.T(), decimal.NewFromInt(60).Equal(views[0].CurrentStock))

	rec = s.do(http.MethodGet, "/api/v1/ledger/"+party.ID.String(), nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)
	entries := decode[[]models.LedgerEntry](s.T(), rec)
	require.Len(s.T(), entries, 1)
	assert.True(s.T(), decimal.NewFromInt(600).Equal(entries[0].Balance))
}

func (s *APITestSuite) TestCreateTransactionValidation() {
	rec := s.do(http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"type": "barter", "amount": 10,
	})
	require.Equal(s.T(), http.StatusBadRequest, rec.Code)
	errResp := decode[common.ErrorResponse](s.T(), rec)
	assert.Equal(s.T(), "VALIDATION_ERROR", errResp.Error.Code)
	assert.Contains(s.T(), errResp.Error.Details, "type")
	assert.Contains(s.T(), errResp.Error.Details, "date")

	party := s.store.AddParty("Mohan", decimal.Zero)
	rec = s.do(http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"type": "expense", "date": "2024-03-01", "party_id": party.ID, "category": "transport",
	})
	require.Equal(s.T(), http.StatusBadRequest, rec.Code, rec.Body.String())
	errResp = decode[common.ErrorResponse](s.T(), rec)
	assert.Equal(s.T(), "VALIDATION_ERROR", errResp.Error.Code)
	assert.Contains(s.T(), errResp.Error.Details, "amount")
	assert.Empty(s.T(), s.store.LedgerFor(party.ID))

	rec = s.do(http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"type": "expense", "date": "2024-03-01", "party_id": party.ID, "amount": 0,
	})
	require.Equal(s.T(), http.StatusBadRequest, rec.Code, rec.Body.String())
	errResp = decode[common.ErrorResponse](s.T(), rec)
	assert.Equal(s.T(), "amount must be positive", errResp.Error.Details["amount"])
	assert.Empty(s.T(), s.store.LedgerFor(party.ID))
}

func (s *APITestSuite) TestTransactionLifecycle() {
	crop := s.store.AddCrop("Rice", "quintal")
	rec := s.do(http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"type": "purchase", "date": "2024-02-01", "crop_id": crop.ID,
		"quantity": 10, "rate": 5, "amount": 50,
	})
	require.Equal(s.T(), http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[models.Transaction](s.T(), rec).ID.String()

	rec = s.do(http.MethodPost, "/api/v1/transactions/"+id+"/restore", nil)
	assert.Equal(s.T(), http.StatusConflict, rec.Code)

	rec = s.do(http.MethodDelete, "/api/v1/transactions/"+id, nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)
	inv, ok := s.store.Inventory(crop.ID)
	require.True(s.T(), ok)
	assert.True(s.T(), inv.CurrentStock.IsZero())

	rec = s.do(http.MethodGet, "/api/v1/transactions/deleted/all", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Len(s.T(), decode[[]models.TransactionView](s.T(), rec), 1)

	rec = s.do(http.MethodDelete, "/api/v1/transactions/"+id+"/permanent", nil)
	assert.Equal(s.T(), http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/transactions/"+id, nil)
	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
}

func (s *APITestSuite) TestUpdateTransactionClearsParty() {
	party := s.store.AddParty("Suresh", decimal.Zero)
	rec := s.do(http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"type": "expense", "date": "2024-03-01", "party_id": party.ID, "amount": 75, "category": "transport",
	})
	require.Equal(s.T(), http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[models.Transaction](s.T(), rec).ID.String()
	require.Len(s.T(), s.store.LedgerFor(party.ID), 1)

	rec = s.do(http.MethodPut, "/api/v1/transactions/"+id, map[string]interface{}{"party_id": nil})
	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Transaction](s.T(), rec)
	assert.Nil(s.T(), updated.PartyID)
	assert.Empty(s.T(), s.store.LedgerFor(party.ID))
}

func (s *APITestSuite) TestUpdateTransactionRejectsBadFields() {
	rec := s.do(http.MethodPut, "/api/v1/transactions/"+uuid.New().String(), map[string]interface{}{
		"date": "10/01/2024", "amount": "lots",
	})
	require.Equal(s.T(), http.StatusBadRequest, rec.Code)
	errResp := decode[common.ErrorResponse](s.T(), rec)
	assert.Contains(s.T(), errResp.Error.Details, "date")
	assert.Contains(s.T(), errResp.Error.Details, "amount")
}

func (s *APITestSuite) TestInvalidPathID() {
	rec := s.do(http.MethodGet, "/api/v1/transactions/not-a-uuid", nil)
	require.Equal(s.T(), http.StatusBadRequest, rec.Code)
	errResp := decode[common.ErrorResponse](s.T(), rec)
	assert.Contains(s.T(), errResp.Error.Details, "id")
}

func (s *APITestSuite) TestAttachmentsDisabled() {
	crop := s.store.AddCrop("Maize", "quintal")
	rec := s.do(http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"type": "purchase", "date": "2024-02-01", "crop_id": crop.ID,
		"quantity": 1, "rate": 1, "amount": 1,
	})
	require.Equal(s.T(), http.StatusCreated, rec.Code)
	id := decode[models.Transaction](s.T(), rec).ID.String()

	rec = s.do(http.MethodGet, "/api/v1/transactions/"+id+"/attachment", nil)
	assert.Equal(s.T(), http.StatusServiceUnavailable, rec.Code)
}

func (s *APITestSuite) TestCashRegisterFlow() {
	rec := s.do(http.MethodPost, "/api/v1/cash-register", map[string]interface{}{
		"date": "2024-01-01", "type": "cash_in", "description": "Opening float", "amount": 100,
	})
	require.Equal(s.T(), http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/api/v1/cash-register", map[string]interface{}{
		"date": "2024-01-02", "type": "cash_out", "description": "Diesel", "amount": 30,
	})
	require.Equal(s.T(), http.StatusCreated, rec.Code, rec.Body.String())
	outID := decode[models.CashEntry](s.T(), rec).ID.String()

	rec = s.do(http.MethodGet, "/api/v1/cash-register/balance", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)
	balance := decode[map[string]decimal.Decimal](s.T(), rec)
	assert.True(s.T(), decimal.NewFromInt(70).Equal(balance["balance"]))

	rec = s.do(http.MethodPut, "/api/v1/cash-register/"+outID, map[string]interface{}{"amount": 50})
	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/v1/cash-register/balance", nil)
	balance = decode[map[string]decimal.Decimal](s.T(), rec)
	assert.True(s.T(), decimal.NewFromInt(50).Equal(balance["balance"]))

	rec = s.do(http.MethodPost, "/api/v1/cash-register", map[string]interface{}{"type": "cash_in"})
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *APITestSuite) TestPartiesAndLocations() {
	rec := s.do(http.MethodPost, "/api/v1/states", map[string]interface{}{"name": "Punjab"})
	require.Equal(s.T(), http.StatusCreated, rec.Code, rec.Body.String())
	state := decode[models.State](s.T(), rec)

	rec = s.do(http.MethodPost, "/api/v1/cities", map[string]interface{}{"name": "Ludhiana", "state_id": state.ID})
	require.Equal(s.T(), http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/v1/cities?stateId="+state.ID.String(), nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Len(s.T(), decode[[]models.City](s.T(), rec), 1)

	rec = s.do(http.MethodGet, "/api/v1/cities?stateId=bogus", nil)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/parties", map[string]interface{}{
		"name": "Gurpreet", "type": "farmer", "phone": "9800000000", "opening_balance": 250, "state_id": state.ID,
	})
	require.Equal(s.T(), http.StatusCreated, rec.Code, rec.Body.String())
	party := decode[models.Party](s.T(), rec)
	assert.Equal(s.T(), "P001", party.Code)

	rec = s.do(http.MethodGet, "/api/v1/parties/with-balance", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)
	balances := decode[[]models.PartyBalance](s.T(), rec)
	require.Len(s.T(), balances, 1)
	assert.True(s.T(), decimal.NewFromInt(250).Equal(balances[0].TotalBalance))

	rec = s.do(http.MethodPost, "/api/v1/parties", map[string]interface{}{"name": "X", "type": "alien", "phone": "1"})
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/api/v1/parties/"+party.ID.String(), nil)
	assert.Equal(s.T(), http.StatusNoContent, rec.Code)
}

func (s *APITestSuite) TestCropsProvisionInventory() {
	rec := s.do(http.MethodPost, "/api/v1/crops", map[string]interface{}{"name": "Mustard"})
	require.Equal(s.T(), http.StatusCreated, rec.Code, rec.Body.String())
	crop := decode[models.Crop](s.T(), rec)
	assert.Equal(s.T(), models.DefaultCropUnit, crop.Unit)

	_, ok := s.store.Inventory(crop.ID)
	assert.True(s.T(), ok)

	rec = s.do(http.MethodPut, "/api/v1/inventory/"+crop.ID.String()+"/settings", map[string]interface{}{"min_stock_level": 5})
	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/v1/inventory/low-stock", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Len(s.T(), decode[[]models.InventoryView](s.T(), rec), 1)

	rec = s.do(http.MethodGet, "/api/v1/dashboard/metrics", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)
	metrics := decode[models.DashboardMetrics](s.T(), rec)
	assert.Equal(s.T(), 1, metrics.TotalCrops)
	assert.Equal(s.T(), 1, metrics.LowStockItems)
}

func (s *APITestSuite) TestLoginRefreshAndMe() {
	rec := s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "admin@example.com", "password": "secret123"})
	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())
	login := decode[LoginResponse](s.T(), rec)
	assert.NotEmpty(s.T(), login.AccessToken)
	assert.Equal(s.T(), "admin@example.com", login.User.Email)

	rec = s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "admin@example.com", "password": "nope"})
	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": login.RefreshToken})
	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": login.RefreshToken})
	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Equal(s.T(), s.user.ID, decode[models.User](s.T(), rec).ID)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestDetailedHealthCheck(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name       string
		db         Pinger
		wantCode   int
		wantStatus string
	}{
		{"all healthy", fakePinger{}, http.StatusOK, "healthy"},
		{"database down", fakePinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandlers(tt.db, caching.NewLocalCacheService(), nil, "", "test")
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/detailed", nil), rec)

			require.NoError(t, h.DetailedHealthCheck(c))
			assert.Equal(t, tt.wantCode, rec.Code)

			body := decode[map[string]interface{}](t, rec)
			assert.Equal(t, tt.wantStatus, body["status"])
			statuses := body["services"].(map[string]interface{})
			assert.Equal(t, "disabled", statuses["storage"])
		})
	}
}

func TestHandleErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{&services.ValidationError{Fields: map[string]string{"amount": "required"}}, http.StatusBadRequest},
		{services.ErrInvalidTransition, http.StatusConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrAttachmentsDisabled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		var he *echo.HTTPError
		require.True(t, errors.As(handleError(tt.err, "Thing"), &he))
		assert.Equal(t, tt.code, he.Code, tt.err.Error())
	}
}
