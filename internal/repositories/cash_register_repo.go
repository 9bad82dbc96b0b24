package repositories

import (
	"context"

	"agroledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// cashRegisterLockKey is the advisory lock id that serializes balance writes
const cashRegisterLockKey int64 = 0x636173685f726567

type CashRegisterRepository interface {
	// Lock holds the register's advisory lock until the surrounding transaction ends
	Lock(ctx context.Context) error
	Create(ctx context.Context, entry *models.CashEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CashEntry, error)
	Update(ctx context.Context, entry *models.CashEntry) error
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	// Latest returns the last entry by date, created_at then insertion order
	Latest(ctx context.Context) (*models.CashEntry, error)
	List(ctx context.Context) ([]*models.CashEntry, error)
	ListChronological(ctx context.Context) ([]*models.CashEntry, error)
}

type cashRegisterRepo struct {
	db DBTX
}

func NewCashRegisterRepo(db DBTX) CashRegisterRepository {
	return &cashRegisterRepo{db: db}
}

const cashEntryColumns = `id, date, type, description, reference, amount, balance, party_id, created_at`

func scanCashEntry(row interface{ Scan(dest ...any) error }) (*models.CashEntry, error) {
	e := &models.CashEntry{}
	if err := row.Scan(&e.ID, &e.Date, &e.Type, &e.Description, &e.Reference, &e.Amount, &e.Balance, &e.PartyID, &e.CreatedAt); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *cashRegisterRepo) Lock(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, cashRegisterLockKey)
	return err
}

func (r *cashRegisterRepo) Create(ctx context.Context, entry *models.CashEntry) error {
	query := `
		INSERT INTO cash_register (id, date, type, description, reference, amount, balance, party_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query, entry.ID, entry.Date, entry.Type, entry.Description, entry.Reference,
		entry.Amount, entry.Balance, entry.PartyID).Scan(&entry.CreatedAt)
}

func (r *cashRegisterRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CashEntry, error) {
	e, err := scanCashEntry(r.db.QueryRow(ctx, `SELECT `+cashEntryColumns+` FROM cash_register WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *cashRegisterRepo) Update(ctx context.Context, entry *models.CashEntry) error {
	query := `
		UPDATE cash_register
		SET date = $1, type = $2, description = $3, reference = $4, amount = $5, balance = $6, party_id = $7
		WHERE id = $8
	`
	return affected(r.db.Exec(ctx, query, entry.Date, entry.Type, entry.Description, entry.Reference,
		entry.Amount, entry.Balance, entry.PartyID, entry.ID))
}

func (r *cashRegisterRepo) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return affected(r.db.Exec(ctx, `UPDATE cash_register SET balance = $1 WHERE id = $2`, balance, id))
}

func (r *cashRegisterRepo) Latest(ctx context.Context) (*models.CashEntry, error) {
	query := `SELECT ` + cashEntryColumns + ` FROM cash_register ORDER BY date DESC, created_at DESC, seq DESC LIMIT 1`
	e, err := scanCashEntry(r.db.QueryRow(ctx, query))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *cashRegisterRepo) List(ctx context.Context) ([]*models.CashEntry, error) {
	return r.list(ctx, `SELECT `+cashEntryColumns+` FROM cash_register ORDER BY date DESC, created_at DESC, seq DESC`)
}

func (r *cashRegisterRepo) ListChronological(ctx context.Context) ([]*models.CashEntry, error) {
	return r.list(ctx, `SELECT `+cashEntryColumns+` FROM cash_register ORDER BY date, created_at, seq`)
}

func (r *cashRegisterRepo) list(ctx context.Context, query string) ([]*models.CashEntry, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.CashEntry
	for rows.Next() {
		e, err := scanCashEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
