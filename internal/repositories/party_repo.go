package repositories

import (
	"context"

	"agroledger/internal/models"

	"github.com/google/uuid"
)

type PartyRepository interface {
	Create(ctx context.Context, party *models.Party) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Party, error)
	// GetForUpdate locks the party row until the surrounding transaction ends
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Party, error)
	Update(ctx context.Context, party *models.Party) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.Party, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	Count(ctx context.Context) (int, error)
	ListWithBalance(ctx context.Context) ([]*models.PartyBalance, error)
}

type partyRepo struct {
	db DBTX
}

func NewPartyRepo(db DBTX) PartyRepository {
	return &partyRepo{db: db}
}

const partyColumns = `id, name, code, type, phone, email, gst_number, aadhar_card, address, state_id, city_id,
		opening_balance, balance_type, is_active, created_at, updated_at`

func scanParty(row interface{ Scan(dest ...any) error }) (*models.Party, error) {
	p := &models.Party{}
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Type, &p.Phone, &p.Email, &p.GSTNumber, &p.AadharCard, &p.Address,
		&p.StateID, &p.CityID, &p.OpeningBalance, &p.BalanceType, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *partyRepo) Create(ctx context.Context, party *models.Party) error {
	query := `
		INSERT INTO parties (id, name, code, type, phone, email, gst_number, aadhar_card, address, state_id, city_id,
			opening_balance, balance_type, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		party.ID, party.Name, party.Code, party.Type, party.Phone, party.Email, party.GSTNumber, party.AadharCard,
		party.Address, party.StateID, party.CityID, party.OpeningBalance, party.BalanceType, party.IsActive,
	).Scan(&party.CreatedAt, &party.UpdatedAt)
}

func (r *partyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE id = $1`
	p, err := scanParty(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *partyRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE id = $1 FOR UPDATE`
	p, err := scanParty(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *partyRepo) Update(ctx context.Context, party *models.Party) error {
	query := `
		UPDATE parties
		SET name = $1, code = $2, type = $3, phone = $4, email = $5, gst_number = $6, aadhar_card = $7, address = $8,
			state_id = $9, city_id = $10, opening_balance = $11, balance_type = $12, is_active = $13, updated_at = NOW()
		WHERE id = $14
	`
	return affected(r.db.Exec(ctx, query,
		party.Name, party.Code, party.Type, party.Phone, party.Email, party.GSTNumber, party.AadharCard, party.Address,
		party.StateID, party.CityID, party.OpeningBalance, party.BalanceType, party.IsActive, party.ID,
	))
}

func (r *partyRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `UPDATE parties SET is_active = false, updated_at = NOW() WHERE id = $1`, id))
}

func (r *partyRepo) List(ctx context.Context) ([]*models.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE is_active = true ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parties []*models.Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

// ListIDs returns every party, active or not, since inactive parties keep their ledgers
func (r *partyRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM parties ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *partyRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM parties`).Scan(&count)
	return count, err
}

// ListWithBalance pairs each active party with the balance of its latest
// ledger entry, falling back to the opening balance
func (r *partyRepo) ListWithBalance(ctx context.Context) ([]*models.PartyBalance, error) {
	query := `
		SELECT p.id, p.name, p.code, p.type, p.phone, p.email, p.opening_balance, p.balance_type,
			COALESCE(l.balance, p.opening_balance, 0)
		FROM parties p
		LEFT JOIN LATERAL (
			SELECT balance FROM party_ledger
			WHERE party_id = p.id
			ORDER BY date DESC, created_at DESC, seq DESC
			LIMIT 1
		) l ON true
		WHERE p.is_active = true
		ORDER BY p.name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.PartyBalance
	for rows.Next() {
		pb := &models.PartyBalance{}
		if err := rows.Scan(&pb.ID, &pb.Name, &pb.Code, &pb.Type, &pb.Phone, &pb.Email, &pb.OpeningBalance, &pb.BalanceType, &pb.TotalBalance); err != nil {
			return nil, err
		}
		result = append(result, pb)
	}
	return result, rows.Err()
}
