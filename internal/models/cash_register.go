package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CashEntryType string

const (
	CashIn  CashEntryType = "cash_in"
	CashOut CashEntryType = "cash_out"
)

// CashEntry is one row of the cash register. Balance is the running total
// after this entry in date order.
type CashEntry struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Date        time.Time       `json:"date" db:"date"`
	Type        CashEntryType   `json:"type" db:"type"`
	Description string          `json:"description" db:"description"`
	Reference   *string         `json:"reference" db:"reference"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Balance     decimal.Decimal `json:"balance" db:"balance"`
	PartyID     *uuid.UUID      `json:"party_id" db:"party_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Signed returns the amount with the sign it contributes to the cash balance
func (e *CashEntry) Signed() decimal.Decimal {
	if e.Type == CashOut {
		return e.Amount.Neg()
	}
	return e.Amount
}

// CashEntryPatch holds a partial cash entry update
type CashEntryPatch struct {
	Date        *time.Time
	Type        *CashEntryType
	Description *string
	Reference   *string
	Amount      *decimal.Decimal
	PartyID     UUIDUpdate
}

// Merge returns a copy of e with the patch applied
func (e CashEntry) Merge(p *CashEntryPatch) CashEntry {
	if p == nil {
		return e
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Reference != nil {
		e.Reference = p.Reference
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.PartyID.Set {
		e.PartyID = p.PartyID.Value
	}
	return e
}
