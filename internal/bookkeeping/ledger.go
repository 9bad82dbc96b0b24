package bookkeeping

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Posting is the debit/credit pair a document contributes to a party ledger
type Posting struct {
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// NextBalance applies a posting to a running balance. Positive balances are
// owed to the business, negative balances are owed by it.
func NextBalance(prev decimal.Decimal, p Posting) decimal.Decimal {
	return prev.Sub(p.Debit).Add(p.Credit)
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}

// PurchasePosting credits the party with the purchase amount
func PurchasePosting(amount decimal.Decimal, invoiceNumber *string) Posting {
	return Posting{Debit: decimal.Zero, Credit: amount, Description: fmt.Sprintf("Purchase - %s", orNA(invoiceNumber))}
}

// SalePosting debits the party with the sale amount
func SalePosting(amount decimal.Decimal, invoiceNumber *string) Posting {
	return Posting{Debit: amount, Credit: decimal.Zero, Description: fmt.Sprintf("Sale - %s", orNA(invoiceNumber))}
}

// ExpensePosting credits the party with the expense amount
func ExpensePosting(amount decimal.Decimal, category *string) Posting {
	return Posting{Debit: decimal.Zero, Credit: amount, Description: fmt.Sprintf("Expense - %s", orNA(category))}
}

// CashInPosting credits the party with cash received
func CashInPosting(amount decimal.Decimal, description string) Posting {
	return Posting{Debit: decimal.Zero, Credit: amount, Description: "Cash In - " + description}
}

// CashOutPosting debits the party with cash paid out
func CashOutPosting(amount decimal.Decimal, description string) Posting {
	return Posting{Debit: amount, Credit: decimal.Zero, Description: "Cash Out - " + description}
}

// Movement is a stored entry as seen by a replay
type Movement struct {
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Balance decimal.Decimal
}

// Correction is a position in a replayed sequence whose stored balance is stale
type Correction struct {
	Index   int
	Balance decimal.Decimal
}

// ReplayLedger walks chronologically ordered movements from the opening
// balance and returns only the positions whose stored balance differs.
func ReplayLedger(opening decimal.Decimal, movements []Movement) []Correction {
	var corrections []Correction
	running := opening
	for i, m := range movements {
		running = running.Sub(m.Debit).Add(m.Credit)
		if !running.Equal(m.Balance) {
			corrections = append(corrections, Correction{Index: i, Balance: running})
		}
	}
	return corrections
}
