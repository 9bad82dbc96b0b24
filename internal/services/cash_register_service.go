package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"agroledger/internal/caching"
	"agroledger/internal/models"
	"agroledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const cashBalanceTTL = 5 * time.Minute

type CashRegisterService interface {
	Create(ctx context.Context, entry *models.CashEntry) (*models.CashEntry, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.CashEntryPatch) (*models.CashEntry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.CashEntry, error)
	List(ctx context.Context) ([]*models.CashEntry, error)
	Balance(ctx context.Context) (decimal.Decimal, error)
	Recalculate(ctx context.Context) (int, error)
}

type cashRegisterService struct {
	store    repositories.TxStore
	cacheSvc caching.CacheService
	now      func() time.Time
}

func NewCashRegisterService(store repositories.TxStore, cacheSvc caching.CacheService) CashRegisterService {
	return &cashRegisterService{store: store, cacheSvc: cacheSvc, now: time.Now}
}

func validateCashEntry(e *models.CashEntry) error {
	errs := fieldErrors{}
	if e.Type != models.CashIn && e.Type != models.CashOut {
		errs.add("type", "type must be one of: cash_in, cash_out")
	}
	if strings.TrimSpace(e.Description) == "" {
		errs.add("description", "description is required")
	}
	if !e.Amount.IsPositive() {
		errs.add("amount", "amount must be positive")
	}
	return errs.err()
}

func (s *cashRegisterService) invalidate(ctx context.Context) {
	if err := s.cacheSvc.InvalidateBookkeeping(ctx); err != nil {
		log.Printf("Failed to invalidate cache after cash register change: %v", err)
	}
}

func (s *cashRegisterService) Create(ctx context.Context, entry *models.CashEntry) (*models.CashEntry, error) {
	if entry.Date.IsZero() {
		entry.Date = s.now()
	}
	if err := validateCashEntry(entry); err != nil {
		return nil, err
	}
	entry.ID = uuid.New()

	err := s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		if err := repos.CashRegister.Lock(ctx); err != nil {
			return fmt.Errorf("failed to lock cash register: %w", err)
		}

		previous := decimal.Zero
		latest, err := repos.CashRegister.Latest(ctx)
		switch {
		case err == nil:
			previous = latest.Balance
		case !errors.Is(err, repositories.ErrNotFound):
			return fmt.Errorf("failed to load cash balance: %w", err)
		}

		entry.Balance = previous.Add(entry.Signed())
		if err := repos.CashRegister.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to create cash entry: %w", err)
		}

		// A back-dated entry shifts every later running balance
		if latest != nil && latest.Date.After(entry.Date) {
			if _, err := recalculateCashRegister(ctx, repos); err != nil {
				return err
			}
			stored, err := repos.CashRegister.GetByID(ctx, entry.ID)
			if err != nil {
				return err
			}
			entry.Balance = stored.Balance
		}

		return appendFromCashEntry(ctx, repos, entry)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return entry, nil
}

func (s *cashRegisterService) Update(ctx context.Context, id uuid.UUID, patch *models.CashEntryPatch) (*models.CashEntry, error) {
	var updated *models.CashEntry
	err := s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		if err := repos.CashRegister.Lock(ctx); err != nil {
			return fmt.Errorf("failed to lock cash register: %w", err)
		}

		old, err := repos.CashRegister.GetByID(ctx, id)
		if err != nil {
			return err
		}
		merged := old.Merge(patch)
		if err := validateCashEntry(&merged); err != nil {
			return err
		}

		if err := repos.CashRegister.Update(ctx, &merged); err != nil {
			return fmt.Errorf("failed to update cash entry: %w", err)
		}
		if _, err := recalculateCashRegister(ctx, repos); err != nil {
			return err
		}

		touched, err := repos.Ledger.DeleteByCashEntryID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to remove ledger entries: %w", err)
		}
		if err := appendFromCashEntry(ctx, repos, &merged); err != nil {
			return err
		}
		touched = append(touched, partyIDOrNil(old.PartyID), partyIDOrNil(merged.PartyID))
		if err := recalculateParties(ctx, repos, touched...); err != nil {
			return err
		}

		updated, err = repos.CashRegister.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return updated, nil
}

func (s *cashRegisterService) GetByID(ctx context.Context, id uuid.UUID) (*models.CashEntry, error) {
	return s.store.Repos().CashRegister.GetByID(ctx, id)
}

func (s *cashRegisterService) List(ctx context.Context) ([]*models.CashEntry, error) {
	return s.store.Repos().CashRegister.List(ctx)
}

// Balance is the running balance of the latest entry, or zero for an empty register
func (s *cashRegisterService) Balance(ctx context.Context) (decimal.Decimal, error) {
	if cached, err := s.cacheSvc.GetCashBalance(ctx); err == nil && cached != nil {
		return *cached, nil
	}

	latest, err := s.store.Repos().CashRegister.Latest(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}

	if err := s.cacheSvc.SetCashBalance(ctx, latest.Balance, cashBalanceTTL); err != nil {
		log.Printf("Failed to cache cash balance: %v", err)
	}
	return latest.Balance, nil
}

func (s *cashRegisterService) Recalculate(ctx context.Context) (int, error) {
	var corrected int
	err := s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		var err error
		corrected, err = recalculateCashRegister(ctx, repos)
		return err
	})
	if err != nil {
		return 0, err
	}
	if corrected > 0 {
		s.invalidate(ctx)
	}
	return corrected, nil
}
