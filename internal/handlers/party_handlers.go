package handlers

import (
	"net/http"

	"agroledger/internal/models"
	"agroledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PartyHandlers struct {
	partyService services.PartyService
}

func NewPartyHandlers(partyService services.PartyService) *PartyHandlers {
	return &PartyHandlers{partyService: partyService}
}

// PartyRequest is shared by create and update. An empty code is generated on create.
type PartyRequest struct {
	Name           string          `json:"name" validate:"required"`
	Code           string          `json:"code"`
	Type           string          `json:"type" validate:"required,oneof=farmer buyer trader contractor thekedar company other"`
	Phone          string          `json:"phone" validate:"required"`
	Email          *string         `json:"email" validate:"omitempty,email"`
	GSTNumber      *string         `json:"gst_number"`
	AadharCard     *string         `json:"aadhar_card"`
	Address        *string         `json:"address"`
	StateID        *uuid.UUID      `json:"state_id"`
	CityID         *uuid.UUID      `json:"city_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	BalanceType    string          `json:"balance_type" validate:"omitempty,oneof=credit debit"`
}

func (r *PartyRequest) toModel() *models.Party {
	return &models.Party{
		Name:           r.Name,
		Code:           r.Code,
		Type:           models.PartyType(r.Type),
		Phone:          r.Phone,
		Email:          r.Email,
		GSTNumber:      r.GSTNumber,
		AadharCard:     r.AadharCard,
		Address:        r.Address,
		StateID:        r.StateID,
		CityID:         r.CityID,
		OpeningBalance: r.OpeningBalance,
		BalanceType:    r.BalanceType,
	}
}

// CreateParty registers a trade counterparty
// @Summary Create party
// @Tags parties
// @Accept json
// @Produce json
// @Param request body PartyRequest true "Party"
// @Success 201 {object} models.Party
// @Security BearerAuth
// @Router /parties [post]
func (h *PartyHandlers) CreateParty(c echo.Context) error {
	var req PartyRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	party, err := h.partyService.Create(c.Request().Context(), req.toModel())
	if err != nil {
		return handleError(err, "Party")
	}
	return c.JSON(http.StatusCreated, party)
}

func (h *PartyHandlers) ListParties(c echo.Context) error {
	parties, err := h.partyService.List(c.Request().Context())
	if err != nil {
		return handleError(err, "Party")
	}
	if parties == nil {
		parties = []*models.Party{}
	}
	return c.JSON(http.StatusOK, parties)
}

// ListPartiesWithBalance returns active parties with their latest ledger balance
func (h *PartyHandlers) ListPartiesWithBalance(c echo.Context) error {
	parties, err := h.partyService.ListWithBalance(c.Request().Context())
	if err != nil {
		return handleError(err, "Party")
	}
	if parties == nil {
		parties = []*models.PartyBalance{}
	}
	return c.JSON(http.StatusOK, parties)
}

func (h *PartyHandlers) GetParty(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	party, err := h.partyService.GetByID(c.Request().Context(), id)
	if err != nil {
		return handleError(err, "Party")
	}
	return c.JSON(http.StatusOK, party)
}

func (h *PartyHandlers) UpdateParty(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req PartyRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	party := req.toModel()
	party.ID = id
	party.IsActive = true
	updated, err := h.partyService.Update(c.Request().Context(), party)
	if err != nil {
		return handleError(err, "Party")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *PartyHandlers) DeleteParty(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.partyService.Deactivate(c.Request().Context(), id); err != nil {
		return handleError(err, "Party")
	}
	return c.NoContent(http.StatusNoContent)
}
