package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"agroledger/internal/caching"
	"agroledger/internal/models"
	"agroledger/internal/repositories"

	"github.com/google/uuid"
)

type PartyService interface {
	Create(ctx context.Context, party *models.Party) (*models.Party, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Party, error)
	Update(ctx context.Context, party *models.Party) (*models.Party, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.Party, error)
	ListWithBalance(ctx context.Context) ([]*models.PartyBalance, error)
}

type partyService struct {
	store    repositories.TxStore
	cacheSvc caching.CacheService
}

func NewPartyService(store repositories.TxStore, cacheSvc caching.CacheService) PartyService {
	return &partyService{store: store, cacheSvc: cacheSvc}
}

var partyTypes = map[models.PartyType]bool{
	models.PartyTypeFarmer: true, models.PartyTypeBuyer: true, models.PartyTypeTrader: true,
	models.PartyTypeContractor: true, models.PartyTypeThekedar: true, models.PartyTypeCompany: true,
	models.PartyTypeOther: true,
}

func validateParty(p *models.Party) error {
	errs := fieldErrors{}
	if strings.TrimSpace(p.Name) == "" {
		errs.add("name", "name is required")
	}
	if strings.TrimSpace(p.Phone) == "" {
		errs.add("phone", "phone is required")
	}
	if !partyTypes[p.Type] {
		errs.add("type", "type must be one of: farmer, buyer, trader, contractor, thekedar, company, other")
	}
	if p.BalanceType != "credit" && p.BalanceType != "debit" {
		errs.add("balance_type", "balance_type must be credit or debit")
	}
	return errs.err()
}

func (s *partyService) Create(ctx context.Context, party *models.Party) (*models.Party, error) {
	if party.BalanceType == "" {
		party.BalanceType = "credit"
	}
	if err := validateParty(party); err != nil {
		return nil, err
	}

	party.ID = uuid.New()
	party.IsActive = true

	err := s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		if strings.TrimSpace(party.Code) == "" {
			count, err := repos.Parties.Count(ctx)
			if err != nil {
				return fmt.Errorf("failed to count parties: %w", err)
			}
			party.Code = fmt.Sprintf("P%03d", count+1)
		}
		return repos.Parties.Create(ctx, party)
	})
	if err != nil {
		return nil, err
	}
	return party, nil
}

func (s *partyService) GetByID(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	return s.store.Repos().Parties.GetByID(ctx, id)
}

// Update replaces the editable fields. A changed opening balance reseeds the
// party's ledger, so the running balances are replayed in the same transaction.
func (s *partyService) Update(ctx context.Context, party *models.Party) (*models.Party, error) {
	if party.BalanceType == "" {
		party.BalanceType = "credit"
	}
	if err := validateParty(party); err != nil {
		return nil, err
	}

	var updated *models.Party
	err := s.store.WithTx(ctx, func(repos *repositories.Repositories) error {
		existing, err := repos.Parties.GetForUpdate(ctx, party.ID)
		if err != nil {
			return err
		}
		if strings.TrimSpace(party.Code) == "" {
			party.Code = existing.Code
		}
		if err := repos.Parties.Update(ctx, party); err != nil {
			return err
		}
		if !existing.OpeningBalance.Equal(party.OpeningBalance) {
			if _, err := recalculateLedger(ctx, repos, party.ID); err != nil {
				return err
			}
		}
		updated, err = repos.Parties.GetByID(ctx, party.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.cacheSvc.InvalidateBookkeeping(ctx); err != nil {
		log.Printf("Failed to invalidate cache after party update: %v", err)
	}
	return updated, nil
}

func (s *partyService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.store.Repos().Parties.Deactivate(ctx, id)
}

func (s *partyService) List(ctx context.Context) ([]*models.Party, error) {
	return s.store.Repos().Parties.List(ctx)
}

func (s *partyService) ListWithBalance(ctx context.Context) ([]*models.PartyBalance, error) {
	return s.store.Repos().Parties.ListWithBalance(ctx)
}
