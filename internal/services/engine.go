package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"agroledger/internal/bookkeeping"
	"agroledger/internal/models"
	"agroledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The helpers below keep inventory, party ledgers and the cash register
// consistent. They all run on tx-bound repositories handed out by
// TxStore.WithTx, so any error rolls back every write made so far.

// cropLabel returns the crop name and unit used in user-facing stock errors
func cropLabel(ctx context.Context, repos *repositories.Repositories, cropID uuid.UUID) (string, string) {
	crop, err := repos.Crops.GetByID(ctx, cropID)
	if err != nil {
		return "", ""
	}
	return crop.Name, crop.Unit
}

// validateSale checks that a sale of qty fits in the crop's stock once the
// adjustment from reversing an edited transaction is taken into account.
// It locks the inventory row, so nothing can change it before the write.
func validateSale(ctx context.Context, repos *repositories.Repositories, cropID uuid.UUID, qty, adjustment decimal.Decimal) error {
	name, unit := cropLabel(ctx, repos, cropID)

	inv, err := repos.Inventory.GetByCropIDForUpdate(ctx, cropID)
	if errors.Is(err, repositories.ErrNotFound) {
		if name == "" {
			name = "this item"
		}
		return &MissingInventoryError{Crop: name}
	}
	if err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}

	available := inv.CurrentStock.Add(adjustment)
	if available.LessThan(qty) {
		if name == "" {
			name = "item"
		}
		if unit == "" {
			unit = "units"
		}
		return &InsufficientStockError{Crop: name, Unit: unit, Available: available, Requested: qty}
	}
	return nil
}

type stockStep struct {
	txn     *models.Transaction
	reverse bool
}

func (s stockStep) run(stock bookkeeping.Stock) bookkeeping.Stock {
	qty := s.txn.QuantityOrZero()
	switch {
	case s.txn.Type == models.TransactionTypePurchase && !s.reverse:
		return bookkeeping.ApplyPurchase(stock, qty, s.txn.RateOrZero())
	case s.txn.Type == models.TransactionTypePurchase:
		return bookkeeping.ReversePurchase(stock, qty, s.txn.RateOrZero())
	case !s.reverse:
		return bookkeeping.ApplySale(stock, qty)
	default:
		return bookkeeping.ReverseSale(stock, qty)
	}
}

// restateInventory reverses the stock effect of reversed and applies the
// effect of applied; either may be nil. Steps on the same crop are folded in
// memory and written once, so only the final stock has to be non-negative.
func restateInventory(ctx context.Context, repos *repositories.Repositories, reversed, applied *models.Transaction) error {
	steps := make(map[uuid.UUID][]stockStep)
	var order []uuid.UUID
	add := func(t *models.Transaction, reverse bool) {
		if t == nil || !t.MovesStock() {
			return
		}
		cropID := *t.CropID
		if _, seen := steps[cropID]; !seen {
			order = append(order, cropID)
		}
		steps[cropID] = append(steps[cropID], stockStep{txn: t, reverse: reverse})
	}
	add(reversed, true)
	add(applied, false)

	for _, cropID := range order {
		cropSteps := steps[cropID]

		inv, err := repos.Inventory.GetByCropIDForUpdate(ctx, cropID)
		if errors.Is(err, repositories.ErrNotFound) {
			// Nothing was ever recorded for this crop, so there is nothing to reverse
			var forward []stockStep
			for _, s := range cropSteps {
				if !s.reverse {
					forward = append(forward, s)
				}
			}
			if len(forward) == 0 {
				log.Printf("No inventory record for crop %s, skipping stock reversal", cropID)
				continue
			}
			if forward[0].txn.Type == models.TransactionTypeSale {
				name, _ := cropLabel(ctx, repos, cropID)
				if name == "" {
					name = "this item"
				}
				return &MissingInventoryError{Crop: name}
			}
			if err := repos.Inventory.Ensure(ctx, cropID); err != nil {
				return fmt.Errorf("failed to create inventory record: %w", err)
			}
			if inv, err = repos.Inventory.GetByCropIDForUpdate(ctx, cropID); err != nil {
				return fmt.Errorf("failed to load inventory: %w", err)
			}
			cropSteps = forward
		} else if err != nil {
			return fmt.Errorf("failed to load inventory: %w", err)
		}

		stock := bookkeeping.Stock{Quantity: inv.CurrentStock, AverageRate: inv.AverageRate}
		for _, s := range cropSteps {
			stock = s.run(stock)
		}

		if stock.Quantity.IsNegative() {
			name, unit := cropLabel(ctx, repos, cropID)
			if name == "" {
				name, unit = "item", "units"
			}
			return &InsufficientStockError{
				Crop:      name,
				Unit:      unit,
				Available: inv.CurrentStock,
				Requested: inv.CurrentStock.Sub(stock.Quantity),
			}
		}

		if err := repos.Inventory.UpdateStock(ctx, cropID, stock.Quantity, stock.AverageRate, stock.Value()); err != nil {
			return fmt.Errorf("failed to update inventory: %w", err)
		}
	}
	return nil
}

func transactionPosting(t *models.Transaction) bookkeeping.Posting {
	switch t.Type {
	case models.TransactionTypePurchase:
		return bookkeeping.PurchasePosting(t.Amount, t.InvoiceNumber)
	case models.TransactionTypeSale:
		return bookkeeping.SalePosting(t.Amount, t.InvoiceNumber)
	default:
		return bookkeeping.ExpensePosting(t.Amount, t.Category)
	}
}

func cashPosting(e *models.CashEntry) bookkeeping.Posting {
	if e.Type == models.CashOut {
		return bookkeeping.CashOutPosting(e.Amount, e.Description)
	}
	return bookkeeping.CashInPosting(e.Amount, e.Description)
}

// appendLedger posts to the end of a party's ledger. When the entry is dated
// before the party's latest entry the whole ledger is replayed instead of
// trusting the appended balance.
func appendLedger(ctx context.Context, repos *repositories.Repositories, entry *models.LedgerEntry, posting bookkeeping.Posting) error {
	party, err := repos.Parties.GetForUpdate(ctx, entry.PartyID)
	if err != nil {
		return fmt.Errorf("failed to load party %s: %w", entry.PartyID, err)
	}

	previous := party.OpeningBalance
	latest, err := repos.Ledger.Latest(ctx, entry.PartyID)
	switch {
	case err == nil:
		previous = latest.Balance
	case !errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("failed to load latest ledger entry: %w", err)
	}

	entry.ID = uuid.New()
	entry.Description = posting.Description
	entry.Debit = posting.Debit
	entry.Credit = posting.Credit
	entry.Balance = bookkeeping.NextBalance(previous, posting)
	if err := repos.Ledger.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	if latest != nil && latest.Date.After(entry.Date) {
		if _, err := recalculateLedger(ctx, repos, entry.PartyID); err != nil {
			return err
		}
	}
	return nil
}

func appendFromTransaction(ctx context.Context, repos *repositories.Repositories, t *models.Transaction) error {
	if t.PartyID == nil {
		return nil
	}
	txnID := t.ID
	entry := &models.LedgerEntry{PartyID: *t.PartyID, TransactionID: &txnID, Date: t.Date}
	return appendLedger(ctx, repos, entry, transactionPosting(t))
}

func appendFromCashEntry(ctx context.Context, repos *repositories.Repositories, e *models.CashEntry) error {
	if e.PartyID == nil {
		return nil
	}
	cashID := e.ID
	entry := &models.LedgerEntry{PartyID: *e.PartyID, SourceCashEntryID: &cashID, Date: e.Date}
	return appendLedger(ctx, repos, entry, cashPosting(e))
}

// recalculateLedger replays a party's ledger from its opening balance and
// persists only stale balances. It returns the number of entries corrected.
func recalculateLedger(ctx context.Context, repos *repositories.Repositories, partyID uuid.UUID) (int, error) {
	party, err := repos.Parties.GetForUpdate(ctx, partyID)
	if err != nil {
		return 0, fmt.Errorf("failed to load party %s: %w", partyID, err)
	}

	entries, err := repos.Ledger.ListChronological(ctx, partyID)
	if err != nil {
		return 0, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	movements := make([]bookkeeping.Movement, len(entries))
	for i, e := range entries {
		movements[i] = bookkeeping.Movement{Debit: e.Debit, Credit: e.Credit, Balance: e.Balance}
	}

	corrections := bookkeeping.ReplayLedger(party.OpeningBalance, movements)
	for _, c := range corrections {
		if err := repos.Ledger.UpdateBalance(ctx, entries[c.Index].ID, c.Balance); err != nil {
			return 0, fmt.Errorf("failed to update ledger balance: %w", err)
		}
	}
	return len(corrections), nil
}

// recalculateParties replays each distinct party once
func recalculateParties(ctx context.Context, repos *repositories.Repositories, partyIDs ...uuid.UUID) error {
	seen := make(map[uuid.UUID]bool)
	for _, id := range partyIDs {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		if _, err := recalculateLedger(ctx, repos, id); err != nil {
			return err
		}
	}
	return nil
}

// recalculateCashRegister replays the whole register from zero under the
// register lock and returns the number of rows corrected.
func recalculateCashRegister(ctx context.Context, repos *repositories.Repositories) (int, error) {
	if err := repos.CashRegister.Lock(ctx); err != nil {
		return 0, fmt.Errorf("failed to lock cash register: %w", err)
	}

	entries, err := repos.CashRegister.ListChronological(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list cash entries: %w", err)
	}

	movements := make([]bookkeeping.CashMovement, len(entries))
	for i, e := range entries {
		movements[i] = bookkeeping.CashMovement{Amount: e.Signed(), Balance: e.Balance}
	}

	corrections := bookkeeping.ReplayCash(movements)
	for _, c := range corrections {
		if err := repos.CashRegister.UpdateBalance(ctx, entries[c.Index].ID, c.Balance); err != nil {
			return 0, fmt.Errorf("failed to update cash balance: %w", err)
		}
	}
	return len(corrections), nil
}

func partyIDOrNil(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
