package services

import (
	"context"
	"fmt"
	"log"

	"agroledger/internal/models"
	"agroledger/internal/repositories"

	"github.com/google/uuid"
)

type LedgerService interface {
	GetPartyLedger(ctx context.Context, partyID uuid.UUID) ([]*models.LedgerEntry, error)
	GetAllEntries(ctx context.Context) ([]*models.LedgerEntryView, error)
	Recalculate(ctx context.Context, partyID uuid.UUID) (int, error)
	// RecalculateAll replays every party's ledger, each in its own transaction.
	// A failing party does not stop the others; the first failure is returned
	// alongside the count of rows corrected elsewhere.
	RecalculateAll(ctx context.Context) (int, error)
}

type ledgerService struct {
	store repositories.TxStore
}

func NewLedgerService(store repositories.TxStore) LedgerService {
	return &ledgerService{store: store}
}

func (s *ledgerService) GetPartyLedger(ctx context.Context, partyID uuid.UUID) ([]*models.LedgerEntry, error) {
	if _, err := s.store.Repos().Parties.GetByID(ctx, partyID); err != nil {
		return nil, err
	}
	return s.store.Repos().Ledger.ListForParty(ctx, partyID)
}

func (s *ledgerService) GetAllEntries(ctx context.Context) ([]*models.LedgerEntryView, error) {
	return s.store.Repos().Ledger.ListAll(ctx)
}

func (s *ledgerService) Recalculate(ctx context.Context, partyID uuid.UUID) (int, error) {
	var corrected int
	err := s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		var err error
		corrected, err = recalculateLedger(ctx, repos, partyID)
		return err
	})
	return corrected, err
}

func (s *ledgerService) RecalculateAll(ctx context.Context) (int, error) {
	partyIDs, err := s.store.Repos().Parties.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	var firstErr error
	for _, id := range partyIDs {
		corrected, err := s.Recalculate(ctx, id)
		if err != nil {
			log.Printf("Failed to recalculate ledger for party %s: %v", id, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("recalculate ledger for party %s: %w", id, err)
			}
			continue
		}
		total += corrected
	}
	return total, firstErr
}
