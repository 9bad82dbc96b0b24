package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a lookup by id matches no row
var ErrNotFound = errors.New("record not found")

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock, so every repository
// can run either standalone or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is a DBTX that can open transactions
type Pool interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repositories groups every repository bound to the same DBTX
type Repositories struct {
	Users        UserRepository
	States       StateRepository
	Cities       CityRepository
	Parties      PartyRepository
	Crops        CropRepository
	Inventory    InventoryRepository
	Transactions TransactionRepository
	CashRegister CashRegisterRepository
	Ledger       LedgerRepository
	Dashboard    DashboardRepository
}

func New(db DBTX) *Repositories {
	return &Repositories{
		Users:        NewUserRepo(db),
		States:       NewStateRepo(db),
		Cities:       NewCityRepo(db),
		Parties:      NewPartyRepo(db),
		Crops:        NewCropRepo(db),
		Inventory:    NewInventoryRepo(db),
		Transactions: NewTransactionRepo(db),
		CashRegister: NewCashRegisterRepo(db),
		Ledger:       NewLedgerRepo(db),
		Dashboard:    NewDashboardRepo(db),
	}
}

// TxStore hands out pool-bound repositories for reads and runs multi-step
// writes inside a single database transaction.
type TxStore interface {
	Repos() *Repositories
	WithTx(ctx context.Context, fn func(repos *Repositories) error) error
}

type pgStore struct {
	pool  Pool
	repos *Repositories
}

func NewStore(pool Pool) TxStore {
	return &pgStore{pool: pool, repos: New(pool)}
}

func (s *pgStore) Repos() *Repositories {
	return s.repos
}

// WithTx commits when fn returns nil and rolls back on any error
func (s *pgStore) WithTx(ctx context.Context, fn func(repos *Repositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(New(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// affected turns a zero-row update or delete into ErrNotFound
func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
