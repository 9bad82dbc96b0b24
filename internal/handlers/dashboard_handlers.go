package handlers

import (
	"net/http"

	"agroledger/internal/services"

	"github.com/labstack/echo/v4"
)

type DashboardHandlers struct {
	dashboardService services.DashboardService
}

func NewDashboardHandlers(dashboardService services.DashboardService) *DashboardHandlers {
	return &DashboardHandlers{dashboardService: dashboardService}
}

// GetMetrics returns sales, purchase, expense and stock totals
// @Summary Dashboard metrics
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.DashboardMetrics
// @Security BearerAuth
// @Router /dashboard/metrics [get]
func (h *DashboardHandlers) GetMetrics(c echo.Context) error {
	metrics, err := h.dashboardService.Metrics(c.Request().Context())
	if err != nil {
		return handleError(err, "Dashboard")
	}
	return c.JSON(http.StatusOK, metrics)
}
