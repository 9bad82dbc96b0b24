// Package bookkeeping holds the pure arithmetic behind inventory valuation,
// party ledgers and the cash register. Nothing here touches storage.
package bookkeeping

import (
	"github.com/shopspring/decimal"
)

// RateScale is the number of decimal places kept on a weighted-average rate
const RateScale int32 = 6

// Stock is a crop's quantity on hand valued at its weighted-average rate
type Stock struct {
	Quantity    decimal.Decimal
	AverageRate decimal.Decimal
}

// Value is always derived, so Value() == Quantity * AverageRate holds exactly
func (s Stock) Value() decimal.Decimal {
	return s.Quantity.Mul(s.AverageRate)
}

// ApplyPurchase blends the incoming lot into the weighted-average rate
func ApplyPurchase(s Stock, qty, rate decimal.Decimal) Stock {
	newQty := s.Quantity.Add(qty)
	if newQty.IsZero() {
		return Stock{Quantity: newQty, AverageRate: decimal.Zero}
	}
	avg := s.Value().Add(qty.Mul(rate)).Div(newQty).Round(RateScale)
	return Stock{Quantity: newQty, AverageRate: avg}
}

// ApplySale consumes stock at the existing average rate
func ApplySale(s Stock, qty decimal.Decimal) Stock {
	return Stock{Quantity: s.Quantity.Sub(qty), AverageRate: s.AverageRate}
}

// ReversePurchase removes a purchase's quantity and value contribution.
// When the stock empties the rate is reset to zero.
func ReversePurchase(s Stock, qty, rate decimal.Decimal) Stock {
	newQty := s.Quantity.Sub(qty)
	if newQty.IsZero() {
		return Stock{Quantity: newQty, AverageRate: decimal.Zero}
	}
	avg := s.Value().Sub(qty.Mul(rate)).Div(newQty).Round(RateScale)
	return Stock{Quantity: newQty, AverageRate: avg}
}

// ReverseSale returns sold quantity to stock at the existing average rate
func ReverseSale(s Stock, qty decimal.Decimal) Stock {
	return Stock{Quantity: s.Quantity.Add(qty), AverageRate: s.AverageRate}
}

// SaleAdjustment is the stock an edit frees up (positive) or consumes
// (negative) by reversing the old version of a transaction on the same crop.
func SaleAdjustment(oldIsSale, oldIsPurchase bool, oldQty decimal.Decimal) decimal.Decimal {
	switch {
	case oldIsSale:
		return oldQty
	case oldIsPurchase:
		return oldQty.Neg()
	default:
		return decimal.Zero
	}
}
