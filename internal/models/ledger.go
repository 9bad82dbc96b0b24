package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntry is one debit/credit posting in a party's running ledger.
// At most one of TransactionID and SourceCashEntryID is set.
type LedgerEntry struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	PartyID           uuid.UUID       `json:"party_id" db:"party_id"`
	TransactionID     *uuid.UUID      `json:"transaction_id" db:"transaction_id"`
	SourceCashEntryID *uuid.UUID      `json:"source_cash_entry_id" db:"source_cash_entry_id"`
	Date              time.Time       `json:"date" db:"date"`
	Description       string          `json:"description" db:"description"`
	Debit             decimal.Decimal `json:"debit" db:"debit"`
	Credit            decimal.Decimal `json:"credit" db:"credit"`
	Balance           decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

// LedgerEntryView is a ledger entry joined with its party name
type LedgerEntryView struct {
	LedgerEntry
	PartyName *string `json:"party_name"`
}
