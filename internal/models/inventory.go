package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Inventory is the stock position of a single crop. Stock fields are owned by
// the ledger engine; only MinStockLevel and OpeningStock are user editable.
type Inventory struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CropID        uuid.UUID       `json:"crop_id" db:"crop_id"`
	OpeningStock  decimal.Decimal `json:"opening_stock" db:"opening_stock"`
	CurrentStock  decimal.Decimal `json:"current_stock" db:"current_stock"`
	AverageRate   decimal.Decimal `json:"average_rate" db:"average_rate"`
	StockValue    decimal.Decimal `json:"stock_value" db:"stock_value"`
	MinStockLevel decimal.Decimal `json:"min_stock_level" db:"min_stock_level"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// InventoryView joins an inventory row with its crop for display
type InventoryView struct {
	ID            uuid.UUID       `json:"id"`
	CropID        uuid.UUID       `json:"crop_id"`
	CropName      string          `json:"crop_name"`
	Variety       *string         `json:"variety"`
	Category      *string         `json:"category"`
	Unit          string          `json:"unit"`
	OpeningStock  decimal.Decimal `json:"opening_stock"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	AverageRate   decimal.Decimal `json:"average_rate"`
	StockValue    decimal.Decimal `json:"stock_value"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
}

// IsLowStock reports whether current stock has fallen to the configured minimum
func (v *InventoryView) IsLowStock() bool {
	return v.CurrentStock.LessThanOrEqual(v.MinStockLevel)
}

// InventorySettings are the user-editable inventory fields
type InventorySettings struct {
	MinStockLevel *decimal.Decimal `json:"min_stock_level,omitempty"`
	OpeningStock  *decimal.Decimal `json:"opening_stock,omitempty"`
}
