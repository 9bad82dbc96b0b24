package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PartyType string

const (
	PartyTypeFarmer     PartyType = "farmer"
	PartyTypeBuyer      PartyType = "buyer"
	PartyTypeTrader     PartyType = "trader"
	PartyTypeContractor PartyType = "contractor"
	PartyTypeThekedar   PartyType = "thekedar"
	PartyTypeCompany    PartyType = "company"
	PartyTypeOther      PartyType = "other"
)

// Party is a trade counterparty with a running ledger balance.
// A positive balance is a receivable, a negative balance a payable.
type Party struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Code           string          `json:"code" db:"code"`
	Type           PartyType       `json:"type" db:"type"`
	Phone          string          `json:"phone" db:"phone"`
	Email          *string         `json:"email" db:"email"`
	GSTNumber      *string         `json:"gst_number" db:"gst_number"`
	AadharCard     *string         `json:"aadhar_card" db:"aadhar_card"`
	Address        *string         `json:"address" db:"address"`
	StateID        *uuid.UUID      `json:"state_id" db:"state_id"`
	CityID         *uuid.UUID      `json:"city_id" db:"city_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance" db:"opening_balance"`
	BalanceType    string          `json:"balance_type" db:"balance_type"` // credit or debit, informational only
	IsActive       bool            `json:"is_active" db:"is_active"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// PartyBalance is an active party with its latest ledger balance
type PartyBalance struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Code           string          `json:"code"`
	Type           PartyType       `json:"type"`
	Phone          string          `json:"phone"`
	Email          *string         `json:"email"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	BalanceType    string          `json:"balance_type"`
	TotalBalance   decimal.Decimal `json:"total_balance"`
}
