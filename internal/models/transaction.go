package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeSale     TransactionType = "sale"
	TransactionTypeExpense  TransactionType = "expense"
)

type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "cash"
	PaymentModeCredit       PaymentMode = "credit"
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeCheque       PaymentMode = "cheque"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

// TransactionStatus is the lifecycle state of a transaction. Purged is never
// stored: a purged transaction no longer has a row.
type TransactionStatus string

const (
	TransactionStatusActive  TransactionStatus = "active"
	TransactionStatusTrashed TransactionStatus = "trashed"
	TransactionStatusPurged  TransactionStatus = "purged"
)

var ErrInvalidTransition = errors.New("invalid transaction state transition")

var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusActive:  {TransactionStatusTrashed},
	TransactionStatusTrashed: {TransactionStatusActive, TransactionStatusPurged},
}

// TransitionTo checks that moving from s to next is a legal lifecycle step
func (s TransactionStatus) TransitionTo(next TransactionStatus) error {
	for _, allowed := range transactionTransitions[s] {
		if allowed == next {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
}

type Transaction struct {
	ID            uuid.UUID         `json:"id" db:"id"`
	Type          TransactionType   `json:"type" db:"type"`
	Date          time.Time         `json:"date" db:"date"`
	InvoiceNumber *string           `json:"invoice_number" db:"invoice_number"`
	PartyID       *uuid.UUID        `json:"party_id" db:"party_id"`
	CropID        *uuid.UUID        `json:"crop_id" db:"crop_id"`
	Quantity      *decimal.Decimal  `json:"quantity" db:"quantity"`
	Rate          *decimal.Decimal  `json:"rate" db:"rate"`
	Amount        decimal.Decimal   `json:"amount" db:"amount"`
	PaymentMode   PaymentMode       `json:"payment_mode" db:"payment_mode"`
	PaymentStatus PaymentStatus     `json:"payment_status" db:"payment_status"`
	Quality       *string           `json:"quality" db:"quality"`
	Notes         *string           `json:"notes" db:"notes"`
	Category      *string           `json:"category" db:"category"`
	AttachmentKey *string           `json:"attachment_key,omitempty" db:"attachment_key"`
	Status        TransactionStatus `json:"status" db:"status"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

// MovesStock reports whether the transaction has an inventory effect
func (t *Transaction) MovesStock() bool {
	if t.Type != TransactionTypePurchase && t.Type != TransactionTypeSale {
		return false
	}
	return t.CropID != nil && t.Quantity != nil && t.Quantity.IsPositive()
}

// QuantityOrZero returns the quantity, or zero when unset
func (t *Transaction) QuantityOrZero() decimal.Decimal {
	if t.Quantity == nil {
		return decimal.Zero
	}
	return *t.Quantity
}

// RateOrZero returns the rate, or zero when unset
func (t *Transaction) RateOrZero() decimal.Decimal {
	if t.Rate == nil {
		return decimal.Zero
	}
	return *t.Rate
}

// UUIDUpdate distinguishes an untouched optional reference (Set == false)
// from an explicit new value, where a nil Value clears the reference.
type UUIDUpdate struct {
	Set   bool
	Value *uuid.UUID
}

// DecimalUpdate is the decimal counterpart of UUIDUpdate
type DecimalUpdate struct {
	Set   bool
	Value *decimal.Decimal
}

// TransactionPatch holds a partial update; nil pointers leave fields unchanged
type TransactionPatch struct {
	Type          *TransactionType
	Date          *time.Time
	InvoiceNumber *string
	PartyID       UUIDUpdate
	CropID        UUIDUpdate
	Quantity      DecimalUpdate
	Rate          DecimalUpdate
	Amount        *decimal.Decimal
	PaymentMode   *PaymentMode
	PaymentStatus *PaymentStatus
	Quality       *string
	Notes         *string
	Category      *string
}

// Merge returns a copy of t with the patch applied
func (t Transaction) Merge(p *TransactionPatch) Transaction {
	if p == nil {
		return t
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.InvoiceNumber != nil {
		t.InvoiceNumber = p.InvoiceNumber
	}
	if p.PartyID.Set {
		t.PartyID = p.PartyID.Value
	}
	if p.CropID.Set {
		t.CropID = p.CropID.Value
	}
	if p.Quantity.Set {
		t.Quantity = p.Quantity.Value
	}
	if p.Rate.Set {
		t.Rate = p.Rate.Value
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.PaymentMode != nil {
		t.PaymentMode = *p.PaymentMode
	}
	if p.PaymentStatus != nil {
		t.PaymentStatus = *p.PaymentStatus
	}
	if p.Quality != nil {
		t.Quality = p.Quality
	}
	if p.Notes != nil {
		t.Notes = p.Notes
	}
	if p.Category != nil {
		t.Category = p.Category
	}
	return t
}

// TransactionFilter selects transactions for listing. Only the first non-empty
// criterion in the order Type, PartyID, CropID is applied.
type TransactionFilter struct {
	Type    *TransactionType
	PartyID *uuid.UUID
	CropID  *uuid.UUID
}

// TransactionView is a transaction joined with party and crop names
type TransactionView struct {
	Transaction
	PartyName *string `json:"party_name,omitempty"`
	CropName  *string `json:"crop_name,omitempty"`
}
