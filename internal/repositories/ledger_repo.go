package repositories

import (
	"context"

	"agroledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LedgerRepository interface {
	Create(ctx context.Context, entry *models.LedgerEntry) error
	// Latest returns the party's last entry by date, created_at then insertion order
	Latest(ctx context.Context, partyID uuid.UUID) (*models.LedgerEntry, error)
	ListForParty(ctx context.Context, partyID uuid.UUID) ([]*models.LedgerEntry, error)
	ListChronological(ctx context.Context, partyID uuid.UUID) ([]*models.LedgerEntry, error)
	ListAll(ctx context.Context) ([]*models.LedgerEntryView, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	// DeleteByTransactionID returns the parties whose entries were removed
	DeleteByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]uuid.UUID, error)
	DeleteByCashEntryID(ctx context.Context, cashEntryID uuid.UUID) ([]uuid.UUID, error)
}

type ledgerRepo struct {
	db DBTX
}

func NewLedgerRepo(db DBTX) LedgerRepository {
	return &ledgerRepo{db: db}
}

const ledgerColumns = `id, party_id, transaction_id, source_cash_entry_id, date, description, debit, credit, balance, created_at`

func scanLedgerEntry(row interface{ Scan(dest ...any) error }) (*models.LedgerEntry, error) {
	e := &models.LedgerEntry{}
	if err := row.Scan(&e.ID, &e.PartyID, &e.TransactionID, &e.SourceCashEntryID, &e.Date, &e.Description,
		&e.Debit, &e.Credit, &e.Balance, &e.CreatedAt); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *ledgerRepo) Create(ctx context.Context, entry *models.LedgerEntry) error {
	query := `
		INSERT INTO party_ledger (id, party_id, transaction_id, source_cash_entry_id, date, description, debit, credit, balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query, entry.ID, entry.PartyID, entry.TransactionID, entry.SourceCashEntryID,
		entry.Date, entry.Description, entry.Debit, entry.Credit, entry.Balance).Scan(&entry.CreatedAt)
}

func (r *ledgerRepo) Latest(ctx context.Context, partyID uuid.UUID) (*models.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM party_ledger
		WHERE party_id = $1
		ORDER BY date DESC, created_at DESC, seq DESC
		LIMIT 1
	`
	e, err := scanLedgerEntry(r.db.QueryRow(ctx, query, partyID))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *ledgerRepo) ListForParty(ctx context.Context, partyID uuid.UUID) ([]*models.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM party_ledger WHERE party_id = $1 ORDER BY date DESC, created_at DESC, seq DESC`
	return r.list(ctx, query, partyID)
}

func (r *ledgerRepo) ListChronological(ctx context.Context, partyID uuid.UUID) ([]*models.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM party_ledger WHERE party_id = $1 ORDER BY date, created_at, seq`
	return r.list(ctx, query, partyID)
}

func (r *ledgerRepo) list(ctx context.Context, query string, args ...any) ([]*models.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *ledgerRepo) ListAll(ctx context.Context) ([]*models.LedgerEntryView, error) {
	query := `
		SELECT l.id, l.party_id, l.transaction_id, l.source_cash_entry_id, l.date, l.description,
			l.debit, l.credit, l.balance, l.created_at, p.name
		FROM party_ledger l
		LEFT JOIN parties p ON p.id = l.party_id
		ORDER BY l.date DESC, l.created_at DESC, l.seq DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*models.LedgerEntryView
	for rows.Next() {
		v := &models.LedgerEntryView{}
		if err := rows.Scan(&v.ID, &v.PartyID, &v.TransactionID, &v.SourceCashEntryID, &v.Date, &v.Description,
			&v.Debit, &v.Credit, &v.Balance, &v.CreatedAt, &v.PartyName); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *ledgerRepo) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return affected(r.db.Exec(ctx, `UPDATE party_ledger SET balance = $1 WHERE id = $2`, balance, id))
}

func (r *ledgerRepo) DeleteByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]uuid.UUID, error) {
	return r.deleteReturningParties(ctx, `DELETE FROM party_ledger WHERE transaction_id = $1 RETURNING party_id`, transactionID)
}

func (r *ledgerRepo) DeleteByCashEntryID(ctx context.Context, cashEntryID uuid.UUID) ([]uuid.UUID, error) {
	return r.deleteReturningParties(ctx, `DELETE FROM party_ledger WHERE source_cash_entry_id = $1 RETURNING party_id`, cashEntryID)
}

func (r *ledgerRepo) deleteReturningParties(ctx context.Context, query string, id uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parties []uuid.UUID
	for rows.Next() {
		var partyID uuid.UUID
		if err := rows.Scan(&partyID); err != nil {
			return nil, err
		}
		parties = append(parties, partyID)
	}
	return parties, rows.Err()
}
