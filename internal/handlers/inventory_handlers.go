package handlers

import (
	"net/http"

	"agroledger/internal/models"
	"agroledger/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// InventoryHandlers handles inventory-related HTTP requests
type InventoryHandlers struct {
	inventoryService services.InventoryService
}

// NewInventoryHandlers creates a new inventory handlers instance
func NewInventoryHandlers(inventoryService services.InventoryService) *InventoryHandlers {
	return &InventoryHandlers{inventoryService: inventoryService}
}

// ListInventory returns stock positions joined with their crops
// @Summary List inventory
// @Tags inventory
// @Produce json
// @Success 200 {array} models.InventoryView
// @Security BearerAuth
// @Router /inventory [get]
func (h *InventoryHandlers) ListInventory(c echo.Context) error {
	views, err := h.inventoryService.ListWithCrops(c.Request().Context())
	if err != nil {
		return handleError(err, "Inventory")
	}
	if views == nil {
		views = []*models.InventoryView{}
	}
	return c.JSON(http.StatusOK, views)
}

func (h *InventoryHandlers) ListLowStock(c echo.Context) error {
	views, err := h.inventoryService.LowStock(c.Request().Context())
	if err != nil {
		return handleError(err, "Inventory")
	}
	if views == nil {
		views = []*models.InventoryView{}
	}
	return c.JSON(http.StatusOK, views)
}

// UpdateInventorySettingsRequest represents the user-editable inventory fields
type UpdateInventorySettingsRequest struct {
	MinStockLevel *decimal.Decimal `json:"min_stock_level"`
	OpeningStock  *decimal.Decimal `json:"opening_stock"`
}

// UpdateSettings changes the minimum stock level and opening stock of a crop
func (h *InventoryHandlers) UpdateSettings(c echo.Context) error {
	cropID, err := pathID(c, "cropId")
	if err != nil {
		return err
	}

	var req UpdateInventorySettingsRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	inv, err := h.inventoryService.UpdateSettings(c.Request().Context(), cropID, &models.InventorySettings{
		MinStockLevel: req.MinStockLevel,
		OpeningStock:  req.OpeningStock,
	})
	if err != nil {
		return handleError(err, "Inventory")
	}
	return c.JSON(http.StatusOK, inv)
}
