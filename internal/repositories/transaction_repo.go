package repositories

import (
	"context"

	"agroledger/internal/models"

	"github.com/google/uuid"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	Update(ctx context.Context, txn *models.Transaction) error
	SetStatus(ctx context.Context, id uuid.UUID, status models.TransactionStatus) error
	SetAttachment(ctx context.Context, id uuid.UUID, key string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter models.TransactionFilter) ([]*models.TransactionView, error)
	ListDeleted(ctx context.Context) ([]*models.TransactionView, error)
}

type transactionRepo struct {
	db DBTX
}

func NewTransactionRepo(db DBTX) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Create(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, type, date, invoice_number, party_id, crop_id, quantity, rate, amount,
			payment_mode, payment_status, quality, notes, category, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		txn.ID, txn.Type, txn.Date, txn.InvoiceNumber, txn.PartyID, txn.CropID, txn.Quantity, txn.Rate, txn.Amount,
		txn.PaymentMode, txn.PaymentStatus, txn.Quality, txn.Notes, txn.Category, txn.Status,
	).Scan(&txn.CreatedAt, &txn.UpdatedAt)
}

func (r *transactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	t := &models.Transaction{}
	query := `
		SELECT id, type, date, invoice_number, party_id, crop_id, quantity, rate, amount, payment_mode, payment_status,
			quality, notes, category, attachment_key, status, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Type, &t.Date, &t.InvoiceNumber, &t.PartyID, &t.CropID,
		&t.Quantity, &t.Rate, &t.Amount, &t.PaymentMode, &t.PaymentStatus, &t.Quality, &t.Notes, &t.Category,
		&t.AttachmentKey, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r *transactionRepo) Update(ctx context.Context, txn *models.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $1, date = $2, invoice_number = $3, party_id = $4, crop_id = $5, quantity = $6, rate = $7,
			amount = $8, payment_mode = $9, payment_status = $10, quality = $11, notes = $12, category = $13,
			updated_at = NOW()
		WHERE id = $14
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		txn.Type, txn.Date, txn.InvoiceNumber, txn.PartyID, txn.CropID, txn.Quantity, txn.Rate, txn.Amount,
		txn.PaymentMode, txn.PaymentStatus, txn.Quality, txn.Notes, txn.Category, txn.ID,
	).Scan(&txn.UpdatedAt)
	return notFound(err)
}

func (r *transactionRepo) SetStatus(ctx context.Context, id uuid.UUID, status models.TransactionStatus) error {
	return affected(r.db.Exec(ctx, `UPDATE transactions SET status = $1, updated_at = NOW() WHERE id = $2`, status, id))
}

func (r *transactionRepo) SetAttachment(ctx context.Context, id uuid.UUID, key string) error {
	return affected(r.db.Exec(ctx, `UPDATE transactions SET attachment_key = $1, updated_at = NOW() WHERE id = $2`, key, id))
}

// Delete removes the row; ledger entries keep their history with a null transaction_id
func (r *transactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id))
}

const transactionViewQuery = `
	SELECT t.id, t.type, t.date, t.invoice_number, t.party_id, t.crop_id, t.quantity, t.rate, t.amount,
		t.payment_mode, t.payment_status, t.quality, t.notes, t.category, t.attachment_key, t.status,
		t.created_at, t.updated_at, p.name, c.name
	FROM transactions t
	LEFT JOIN parties p ON p.id = t.party_id
	LEFT JOIN crops c ON c.id = t.crop_id
`

func (r *transactionRepo) List(ctx context.Context, filter models.TransactionFilter) ([]*models.TransactionView, error) {
	query := transactionViewQuery + ` WHERE t.status = 'active'`
	var args []any
	switch {
	case filter.Type != nil:
		query += ` AND t.type = $1`
		args = append(args, *filter.Type)
	case filter.PartyID != nil:
		query += ` AND t.party_id = $1`
		args = append(args, *filter.PartyID)
	case filter.CropID != nil:
		query += ` AND t.crop_id = $1`
		args = append(args, *filter.CropID)
	}
	query += ` ORDER BY t.date DESC, t.created_at DESC`
	return r.listViews(ctx, query, args...)
}

func (r *transactionRepo) ListDeleted(ctx context.Context) ([]*models.TransactionView, error) {
	return r.listViews(ctx, transactionViewQuery+` WHERE t.status = 'trashed' ORDER BY t.updated_at DESC`)
}

func (r *transactionRepo) listViews(ctx context.Context, query string, args ...any) ([]*models.TransactionView, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*models.TransactionView
	for rows.Next() {
		v := &models.TransactionView{}
		if err := rows.Scan(&v.ID, &v.Type, &v.Date, &v.InvoiceNumber, &v.PartyID, &v.CropID, &v.Quantity, &v.Rate,
			&v.Amount, &v.PaymentMode, &v.PaymentStatus, &v.Quality, &v.Notes, &v.Category, &v.AttachmentKey,
			&v.Status, &v.CreatedAt, &v.UpdatedAt, &v.PartyName, &v.CropName); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
