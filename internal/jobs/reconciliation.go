package jobs

import (
	"context"
	"fmt"
	"log"

	"agroledger/internal/services"
)

// ReconciliationService replays every stored running balance from its entries
type ReconciliationService struct {
	ledgerService services.LedgerService
	cashService   services.CashRegisterService
}

type ReconciliationResult struct {
	LedgerEntriesCorrected int
	CashEntriesCorrected   int
}

func NewReconciliationService(ledgerService services.LedgerService, cashService services.CashRegisterService) *ReconciliationService {
	return &ReconciliationService{ledgerService: ledgerService, cashService: cashService}
}

// Reconcile replays the party ledgers and then the cash register. A ledger
// failure still lets the cash register run; the first error is returned.
func (r *ReconciliationService) Reconcile(ctx context.Context) (ReconciliationResult, error) {
	var result ReconciliationResult
	var firstErr error

	ledgerFixed, err := r.ledgerService.RecalculateAll(ctx)
	if err != nil {
		firstErr = fmt.Errorf("ledger reconciliation: %w", err)
		log.Printf("WARN: %v", firstErr)
	}
	result.LedgerEntriesCorrected = ledgerFixed

	cashFixed, err := r.cashService.Recalculate(ctx)
	if err != nil {
		err = fmt.Errorf("cash register reconciliation: %w", err)
		log.Printf("WARN: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	result.CashEntriesCorrected = cashFixed

	if result.LedgerEntriesCorrected > 0 || result.CashEntriesCorrected > 0 {
		log.Printf("Reconciliation corrected %d ledger and %d cash register balances",
			result.LedgerEntriesCorrected, result.CashEntriesCorrected)
	} else {
		log.Println("Reconciliation found no drifted balances")
	}
	return result, firstErr
}
