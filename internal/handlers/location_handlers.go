package handlers

import (
	"net/http"

	"agroledger/internal/common"
	"agroledger/internal/models"
	"agroledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// LocationHandlers serves the state and city lookup tables
type LocationHandlers struct {
	locationService services.LocationService
}

func NewLocationHandlers(locationService services.LocationService) *LocationHandlers {
	return &LocationHandlers{locationService: locationService}
}

type StateRequest struct {
	Name string  `json:"name" validate:"required"`
	Code *string `json:"code"`
}

type CityRequest struct {
	Name    string     `json:"name" validate:"required"`
	StateID *uuid.UUID `json:"state_id"`
}

func (h *LocationHandlers) ListStates(c echo.Context) error {
	states, err := h.locationService.ListStates(c.Request().Context())
	if err != nil {
		return handleError(err, "State")
	}
	if states == nil {
		states = []*models.State{}
	}
	return c.JSON(http.StatusOK, states)
}

func (h *LocationHandlers) CreateState(c echo.Context) error {
	var req StateRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	state, err := h.locationService.CreateState(c.Request().Context(), &models.State{Name: req.Name, Code: req.Code})
	if err != nil {
		return handleError(err, "State")
	}
	return c.JSON(http.StatusCreated, state)
}

func (h *LocationHandlers) UpdateState(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req StateRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	state, err := h.locationService.UpdateState(c.Request().Context(), &models.State{ID: id, Name: req.Name, Code: req.Code, IsActive: true})
	if err != nil {
		return handleError(err, "State")
	}
	return c.JSON(http.StatusOK, state)
}

func (h *LocationHandlers) DeleteState(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.locationService.DeactivateState(c.Request().Context(), id); err != nil {
		return handleError(err, "State")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListCities lists active cities, optionally only those of ?stateId=
func (h *LocationHandlers) ListCities(c echo.Context) error {
	stateID, err := common.OptionalUUID(c.QueryParam("stateId"), "stateId")
	if err != nil {
		return apiError(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", map[string]string{"stateId": err.Error()})
	}
	cities, err := h.locationService.ListCities(c.Request().Context(), stateID)
	if err != nil {
		return handleError(err, "City")
	}
	if cities == nil {
		cities = []*models.City{}
	}
	return c.JSON(http.StatusOK, cities)
}

func (h *LocationHandlers) CreateCity(c echo.Context) error {
	var req CityRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	city, err := h.locationService.CreateCity(c.Request().Context(), &models.City{Name: req.Name, StateID: req.StateID})
	if err != nil {
		return handleError(err, "State")
	}
	return c.JSON(http.StatusCreated, city)
}

func (h *LocationHandlers) UpdateCity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req CityRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	city, err := h.locationService.UpdateCity(c.Request().Context(), &models.City{ID: id, Name: req.Name, StateID: req.StateID, IsActive: true})
	if err != nil {
		return handleError(err, "City")
	}
	return c.JSON(http.StatusOK, city)
}

func (h *LocationHandlers) DeleteCity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.locationService.DeactivateCity(c.Request().Context(), id); err != nil {
		return handleError(err, "City")
	}
	return c.NoContent(http.StatusNoContent)
}
