package bookkeeping

import "github.com/shopspring/decimal"

// CashMovement is a stored cash register row as seen by a replay. Amount is
// signed: positive for cash in, negative for cash out.
type CashMovement struct {
	Amount  decimal.Decimal
	Balance decimal.Decimal
}

// ReplayCash walks chronologically ordered cash movements from zero and
// returns the positions whose stored balance differs.
func ReplayCash(movements []CashMovement) []Correction {
	var corrections []Correction
	running := decimal.Zero
	for i, m := range movements {
		running = running.Add(m.Amount)
		if !running.Equal(m.Balance) {
			corrections = append(corrections, Correction{Index: i, Balance: running})
		}
	}
	return corrections
}
