package jobs

import (
	"context"
	"log"

	"agroledger/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InventoryAlertService struct {
	inventoryService services.InventoryService
}

type InventoryAlert struct {
	CropID        uuid.UUID
	CropName      string
	Unit          string
	CurrentStock  decimal.Decimal
	MinStockLevel decimal.Decimal
}

func NewInventoryAlertService(inventoryService services.InventoryService) *InventoryAlertService {
	return &InventoryAlertService{inventoryService: inventoryService}
}

// CheckLowStock returns an alert for every crop whose stock is at or below its minimum
func (a *InventoryAlertService) CheckLowStock(ctx context.Context) ([]InventoryAlert, error) {
	views, err := a.inventoryService.LowStock(ctx)
	if err != nil {
		log.Printf("Failed to list low stock inventory: %v", err)
		return nil, err
	}

	alerts := make([]InventoryAlert, 0, len(views))
	for _, v := range views {
		alerts = append(alerts, InventoryAlert{
			CropID:        v.CropID,
			CropName:      v.CropName,
			Unit:          v.Unit,
			CurrentStock:  v.CurrentStock,
			MinStockLevel: v.MinStockLevel,
		})
	}
	return alerts, nil
}

func (a *InventoryAlertService) LogLowStockAlerts(alerts []InventoryAlert) {
	if len(alerts) == 0 {
		log.Println("No low stock alerts to log")
		return
	}

	for _, alert := range alerts {
		log.Printf("ALERT: %s has %s %s in stock (minimum: %s)",
			alert.CropName,
			alert.CurrentStock.StringFixed(2),
			alert.Unit,
			alert.MinStockLevel.StringFixed(2))
	}
}

// ScheduledLowStockCheck is the body of the hourly low-stock job
func (a *InventoryAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	log.Println("Starting scheduled low stock check")

	alerts, err := a.CheckLowStock(ctx)
	if err != nil {
		log.Printf("Scheduled low stock check failed: %v", err)
		return err
	}
	a.LogLowStockAlerts(alerts)

	log.Printf("Scheduled low stock check completed, %d alerts", len(alerts))
	return nil
}
