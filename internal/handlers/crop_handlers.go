package handlers

import (
	"net/http"

	"agroledger/internal/models"
	"agroledger/internal/services"

	"github.com/labstack/echo/v4"
)

type CropHandlers struct {
	cropService services.CropService
}

func NewCropHandlers(cropService services.CropService) *CropHandlers {
	return &CropHandlers{cropService: cropService}
}

type CropRequest struct {
	Name        string  `json:"name" validate:"required"`
	Variety     *string `json:"variety"`
	Category    *string `json:"category"`
	Unit        string  `json:"unit"`
	Description *string `json:"description"`
}

func (r *CropRequest) toModel() *models.Crop {
	return &models.Crop{
		Name:        r.Name,
		Variety:     r.Variety,
		Category:    r.Category,
		Unit:        r.Unit,
		Description: r.Description,
	}
}

// CreateCrop adds a crop together with its empty inventory record
func (h *CropHandlers) CreateCrop(c echo.Context) error {
	var req CropRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	crop, err := h.cropService.Create(c.Request().Context(), req.toModel())
	if err != nil {
		return handleError(err, "Crop")
	}
	return c.JSON(http.StatusCreated, crop)
}

func (h *CropHandlers) ListCrops(c echo.Context) error {
	crops, err := h.cropService.List(c.Request().Context())
	if err != nil {
		return handleError(err, "Crop")
	}
	if crops == nil {
		crops = []*models.Crop{}
	}
	return c.JSON(http.StatusOK, crops)
}

func (h *CropHandlers) GetCrop(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	crop, err := h.cropService.GetByID(c.Request().Context(), id)
	if err != nil {
		return handleError(err, "Crop")
	}
	return c.JSON(http.StatusOK, crop)
}

func (h *CropHandlers) UpdateCrop(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req CropRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	crop := req.toModel()
	crop.ID = id
	crop.IsActive = true
	updated, err := h.cropService.Update(c.Request().Context(), crop)
	if err != nil {
		return handleError(err, "Crop")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *CropHandlers) DeleteCrop(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.cropService.Deactivate(c.Request().Context(), id); err != nil {
		return handleError(err, "Crop")
	}
	return c.NoContent(http.StatusNoContent)
}
