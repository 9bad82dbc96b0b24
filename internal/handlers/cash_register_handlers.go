package handlers

import (
	"net/http"
	"time"

	"agroledger/internal/common"
	"agroledger/internal/models"
	"agroledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type CashRegisterHandlers struct {
	cashService services.CashRegisterService
}

func NewCashRegisterHandlers(cashService services.CashRegisterService) *CashRegisterHandlers {
	return &CashRegisterHandlers{cashService: cashService}
}

// CreateCashEntryRequest represents a cash in/out payload. Date defaults to now.
type CreateCashEntryRequest struct {
	Date        string          `json:"date"`
	Type        string          `json:"type" validate:"required,oneof=cash_in cash_out"`
	Description string          `json:"description" validate:"required"`
	Reference   *string         `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	PartyID     *uuid.UUID      `json:"party_id"`
}

// CreateCashEntry appends to the cash register and posts to the party ledger
// @Summary Create cash register entry
// @Tags cash-register
// @Accept json
// @Produce json
// @Param request body CreateCashEntryRequest true "Cash entry"
// @Success 201 {object} models.CashEntry
// @Failure 400 {object} common.ErrorResponse
// @Security BearerAuth
// @Router /cash-register [post]
func (h *CashRegisterHandlers) CreateCashEntry(c echo.Context) error {
	var req CreateCashEntryRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := common.ParseDate(req.Date, "date")
		if err != nil {
			return apiError(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", map[string]string{"date": err.Error()})
		}
		date = parsed
	}

	entry, err := h.cashService.Create(c.Request().Context(), &models.CashEntry{
		Date:        date,
		Type:        models.CashEntryType(req.Type),
		Description: req.Description,
		Reference:   req.Reference,
		Amount:      req.Amount,
		PartyID:     req.PartyID,
	})
	if err != nil {
		return handleError(err, "Cash entry")
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *CashRegisterHandlers) ListCashEntries(c echo.Context) error {
	entries, err := h.cashService.List(c.Request().Context())
	if err != nil {
		return handleError(err, "Cash entry")
	}
	if entries == nil {
		entries = []*models.CashEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *CashRegisterHandlers) GetCashEntry(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	entry, err := h.cashService.GetByID(c.Request().Context(), id)
	if err != nil {
		return handleError(err, "Cash entry")
	}
	return c.JSON(http.StatusOK, entry)
}

// UpdateCashEntry edits an entry and replays the register and affected ledgers
func (h *CashRegisterHandlers) UpdateCashEntry(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	body, err := decodePatch(c)
	if err != nil {
		return err
	}

	errs := map[string]string{}
	patch := &models.CashEntryPatch{
		Date:        body.dateField("date", errs),
		Description: body.stringField("description", errs),
		Reference:   body.stringField("reference", errs),
		Amount:      body.decimalField("amount", errs),
	}
	if t := body.stringField("type", errs); t != nil {
		entryType := models.CashEntryType(*t)
		patch.Type = &entryType
	}
	if body.has("party_id") {
		patch.PartyID = models.UUIDUpdate{Set: true, Value: body.uuidField("party_id", errs)}
	}
	if err := patchError(errs); err != nil {
		return err
	}

	entry, err := h.cashService.Update(c.Request().Context(), id, patch)
	if err != nil {
		return handleError(err, "Cash entry")
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *CashRegisterHandlers) GetBalance(c echo.Context) error {
	balance, err := h.cashService.Balance(c.Request().Context())
	if err != nil {
		return handleError(err, "Cash balance")
	}
	return c.JSON(http.StatusOK, map[string]decimal.Decimal{"balance": balance})
}
