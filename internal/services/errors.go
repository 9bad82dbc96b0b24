package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"agroledger/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInventoryMissing   = errors.New("inventory record missing")
	ErrInvalidTransition  = models.ErrInvalidTransition
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// InsufficientStockError is returned when a sale or reversal would take a
// crop's stock below zero. Its message is shown to the user as is.
type InsufficientStockError struct {
	Crop      string
	Unit      string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %s %s, Requested: %s %s",
		e.Crop, e.Available.StringFixed(2), e.Unit, e.Requested.StringFixed(2), e.Unit)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// MissingInventoryError is returned when a sale references a crop without an inventory row
type MissingInventoryError struct {
	Crop string
}

func (e *MissingInventoryError) Error() string {
	return fmt.Sprintf("Cannot sell %s. No inventory record found. Please purchase this item first.", e.Crop)
}

func (e *MissingInventoryError) Unwrap() error { return ErrInventoryMissing }

// ValidationError lists offending fields; no state is touched when it is returned
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
