package handlers

import (
	"net/http"

	"agroledger/internal/models"
	"agroledger/internal/services"

	"github.com/labstack/echo/v4"
)

type LedgerHandlers struct {
	ledgerService services.LedgerService
}

func NewLedgerHandlers(ledgerService services.LedgerService) *LedgerHandlers {
	return &LedgerHandlers{ledgerService: ledgerService}
}

// GetPartyLedger returns a party's entries, newest first
func (h *LedgerHandlers) GetPartyLedger(c echo.Context) error {
	partyID, err := pathID(c, "partyId")
	if err != nil {
		return err
	}
	entries, err := h.ledgerService.GetPartyLedger(c.Request().Context(), partyID)
	if err != nil {
		return handleError(err, "Party")
	}
	if entries == nil {
		entries = []*models.LedgerEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *LedgerHandlers) GetAllEntries(c echo.Context) error {
	entries, err := h.ledgerService.GetAllEntries(c.Request().Context())
	if err != nil {
		return handleError(err, "Ledger")
	}
	if entries == nil {
		entries = []*models.LedgerEntryView{}
	}
	return c.JSON(http.StatusOK, entries)
}

// Recalculate replays one party's running balances
func (h *LedgerHandlers) Recalculate(c echo.Context) error {
	partyID, err := pathID(c, "partyId")
	if err != nil {
		return err
	}
	corrected, err := h.ledgerService.Recalculate(c.Request().Context(), partyID)
	if err != nil {
		return handleError(err, "Party")
	}
	return c.JSON(http.StatusOK, map[string]int{"corrected": corrected})
}
