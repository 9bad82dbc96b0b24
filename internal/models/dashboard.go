package models

import "github.com/shopspring/decimal"

type DashboardMetrics struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	NetProfit      decimal.Decimal `json:"net_profit"`
	TotalCrops     int             `json:"total_crops"`
	LowStockItems  int             `json:"low_stock_items"`
}
