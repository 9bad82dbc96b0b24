package testhelpers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"agroledger/internal/models"
	"agroledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemStore is an in-memory repositories.TxStore. WithTx works on a copy of
// the data and only publishes it when the callback succeeds, so rollback
// behaviour matches the Postgres store.
type MemStore struct {
	mu    sync.Mutex
	db    *memDB
	repos *repositories.Repositories
}

type cashRow struct {
	entry models.CashEntry
	seq   int64
}

type ledgerRow struct {
	entry models.LedgerEntry
	seq   int64
}

type memDB struct {
	users        map[uuid.UUID]models.User
	states       map[uuid.UUID]models.State
	cities       map[uuid.UUID]models.City
	parties      map[uuid.UUID]models.Party
	crops        map[uuid.UUID]models.Crop
	inventory    map[uuid.UUID]models.Inventory // keyed by crop id
	transactions map[uuid.UUID]models.Transaction
	cash         map[uuid.UUID]cashRow
	ledger       map[uuid.UUID]ledgerRow
	seq          int64
}

func newMemDB() *memDB {
	return &memDB{
		users:        map[uuid.UUID]models.User{},
		states:       map[uuid.UUID]models.State{},
		cities:       map[uuid.UUID]models.City{},
		parties:      map[uuid.UUID]models.Party{},
		crops:        map[uuid.UUID]models.Crop{},
		inventory:    map[uuid.UUID]models.Inventory{},
		transactions: map[uuid.UUID]models.Transaction{},
		cash:         map[uuid.UUID]cashRow{},
		ledger:       map[uuid.UUID]ledgerRow{},
	}
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (d *memDB) clone() *memDB {
	return &memDB{
		users:        cloneMap(d.users),
		states:       cloneMap(d.states),
		cities:       cloneMap(d.cities),
		parties:      cloneMap(d.parties),
		crops:        cloneMap(d.crops),
		inventory:    cloneMap(d.inventory),
		transactions: cloneMap(d.transactions),
		cash:         cloneMap(d.cash),
		ledger:       cloneMap(d.ledger),
		seq:          d.seq,
	}
}

func (d *memDB) nextSeq() int64 {
	d.seq++
	return d.seq
}

func NewMemStore() *MemStore {
	s := &MemStore{db: newMemDB()}
	s.repos = newMemRepos(s.db)
	return s
}

func newMemRepos(db *memDB) *repositories.Repositories {
	return &repositories.Repositories{
		Users:        &memUsers{db},
		States:       &memStates{db},
		Cities:       &memCities{db},
		Parties:      &memParties{db},
		Crops:        &memCrops{db},
		Inventory:    &memInventory{db},
		Transactions: &memTransactions{db},
		CashRegister: &memCash{db},
		Ledger:       &memLedger{db},
		Dashboard:    &memDashboard{db},
	}
}

func (s *MemStore) Repos() *repositories.Repositories {
	return s.repos
}

func (s *MemStore) WithTx(ctx context.Context, fn func(repos *repositories.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.db.clone()
	if err := fn(newMemRepos(work)); err != nil {
		return err
	}
	*s.db = *work
	return nil
}

// Seed helpers for tests

func (s *MemStore) AddParty(name string, opening decimal.Decimal) models.Party {
	p := models.Party{
		ID: uuid.New(), Name: name, Code: fmt.Sprintf("P%03d", len(s.db.parties)+1), Type: models.PartyTypeFarmer,
		Phone: "9999999999", OpeningBalance: opening, BalanceType: "credit", IsActive: true,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	s.db.parties[p.ID] = p
	return p
}

// AddCrop stores a crop together with its zero-stock inventory row
func (s *MemStore) AddCrop(name, unit string) models.Crop {
	c := models.Crop{ID: uuid.New(), Name: name, Unit: unit, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.db.crops[c.ID] = c
	s.db.inventory[c.ID] = models.Inventory{ID: uuid.New(), CropID: c.ID, UpdatedAt: time.Now()}
	return c
}

func (s *MemStore) Inventory(cropID uuid.UUID) (models.Inventory, bool) {
	inv, ok := s.db.inventory[cropID]
	return inv, ok
}

func (s *MemStore) RemoveInventory(cropID uuid.UUID) {
	delete(s.db.inventory, cropID)
}

// LedgerFor returns a party's entries in replay order
func (s *MemStore) LedgerFor(partyID uuid.UUID) []models.LedgerEntry {
	rows := s.db.ledgerRows(partyID)
	out := make([]models.LedgerEntry, len(rows))
	for i, r := range rows {
		out[i] = r.entry
	}
	return out
}

// CashEntries returns the register in replay order
func (s *MemStore) CashEntries() []models.CashEntry {
	rows := s.db.cashRows()
	out := make([]models.CashEntry, len(rows))
	for i, r := range rows {
		out[i] = r.entry
	}
	return out
}

// SetLedgerBalance corrupts a stored balance so replays have something to fix
func (s *MemStore) SetLedgerBalance(id uuid.UUID, balance decimal.Decimal) {
	row := s.db.ledger[id]
	row.entry.Balance = balance
	s.db.ledger[id] = row
}

func (s *MemStore) SetCashBalance(id uuid.UUID, balance decimal.Decimal) {
	row := s.db.cash[id]
	row.entry.Balance = balance
	s.db.cash[id] = row
}

func (d *memDB) ledgerRows(partyID uuid.UUID) []ledgerRow {
	var rows []ledgerRow
	for _, r := range d.ledger {
		if r.entry.PartyID == partyID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.entry.Date.Equal(b.entry.Date) {
			return a.entry.Date.Before(b.entry.Date)
		}
		if !a.entry.CreatedAt.Equal(b.entry.CreatedAt) {
			return a.entry.CreatedAt.Before(b.entry.CreatedAt)
		}
		return a.seq < b.seq
	})
	return rows
}

func (d *memDB) cashRows() []cashRow {
	rows := make([]cashRow, 0, len(d.cash))
	for _, r := range d.cash {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.entry.Date.Equal(b.entry.Date) {
			return a.entry.Date.Before(b.entry.Date)
		}
		if !a.entry.CreatedAt.Equal(b.entry.CreatedAt) {
			return a.entry.CreatedAt.Before(b.entry.CreatedAt)
		}
		return a.seq < b.seq
	})
	return rows
}

type memUsers struct{ db *memDB }

func (r *memUsers) Create(_ context.Context, user *models.User) error {
	for _, u := range r.db.users {
		if u.Email == user.Email || u.Username == user.Username {
			return fmt.Errorf("user with email '%s' already exists", user.Email)
		}
	}
	user.CreatedAt, user.UpdatedAt = time.Now(), time.Now()
	r.db.users[user.ID] = *user
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := r.db.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

type memStates struct{ db *memDB }

func (r *memStates) Create(_ context.Context, state *models.State) error {
	state.CreatedAt = time.Now()
	r.db.states[state.ID] = *state
	return nil
}

func (r *memStates) GetByID(_ context.Context, id uuid.UUID) (*models.State, error) {
	st, ok := r.db.states[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &st, nil
}

func (r *memStates) Update(_ context.Context, state *models.State) error {
	existing, ok := r.db.states[state.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	state.CreatedAt = existing.CreatedAt
	r.db.states[state.ID] = *state
	return nil
}

func (r *memStates) Deactivate(_ context.Context, id uuid.UUID) error {
	st, ok := r.db.states[id]
	if !ok {
		return repositories.ErrNotFound
	}
	st.IsActive = false
	r.db.states[id] = st
	return nil
}

func (r *memStates) List(_ context.Context) ([]*models.State, error) {
	var out []*models.State
	for _, st := range r.db.states {
		if st.IsActive {
			st := st
			out = append(out, &st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memCities struct{ db *memDB }

func (r *memCities) Create(_ context.Context, city *models.City) error {
	city.CreatedAt = time.Now()
	r.db.cities[city.ID] = *city
	return nil
}

func (r *memCities) GetByID(_ context.Context, id uuid.UUID) (*models.City, error) {
	c, ok := r.db.cities[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r *memCities) Update(_ context.Context, city *models.City) error {
	existing, ok := r.db.cities[city.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	city.CreatedAt = existing.CreatedAt
	r.db.cities[city.ID] = *city
	return nil
}

func (r *memCities) Deactivate(_ context.Context, id uuid.UUID) error {
	c, ok := r.db.cities[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.IsActive = false
	r.db.cities[id] = c
	return nil
}

func (r *memCities) List(_ context.Context, stateID *uuid.UUID) ([]*models.City, error) {
	var out []*models.City
	for _, c := range r.db.cities {
		if !c.IsActive {
			continue
		}
		if stateID != nil && (c.StateID == nil || *c.StateID != *stateID) {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memParties struct{ db *memDB }

func (r *memParties) Create(_ context.Context, party *models.Party) error {
	party.CreatedAt, party.UpdatedAt = time.Now(), time.Now()
	r.db.parties[party.ID] = *party
	return nil
}

func (r *memParties) GetByID(_ context.Context, id uuid.UUID) (*models.Party, error) {
	p, ok := r.db.parties[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *memParties) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	return r.GetByID(ctx, id)
}

func (r *memParties) Update(_ context.Context, party *models.Party) error {
	existing, ok := r.db.parties[party.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	party.CreatedAt, party.UpdatedAt = existing.CreatedAt, time.Now()
	r.db.parties[party.ID] = *party
	return nil
}

func (r *memParties) Deactivate(_ context.Context, id uuid.UUID) error {
	p, ok := r.db.parties[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.IsActive = false
	r.db.parties[id] = p
	return nil
}

func (r *memParties) List(_ context.Context) ([]*models.Party, error) {
	var out []*models.Party
	for _, p := range r.db.parties {
		if p.IsActive {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memParties) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(r.db.parties))
	for id := range r.db.parties {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (r *memParties) Count(_ context.Context) (int, error) {
	return len(r.db.parties), nil
}

func (r *memParties) ListWithBalance(ctx context.Context) ([]*models.PartyBalance, error) {
	parties, _ := r.List(ctx)
	out := make([]*models.PartyBalance, 0, len(parties))
	for _, p := range parties {
		balance := p.OpeningBalance
		if rows := r.db.ledgerRows(p.ID); len(rows) > 0 {
			balance = rows[len(rows)-1].entry.Balance
		}
		out = append(out, &models.PartyBalance{
			ID: p.ID, Name: p.Name, Code: p.Code, Type: p.Type, Phone: p.Phone, Email: p.Email,
			OpeningBalance: p.OpeningBalance, BalanceType: p.BalanceType, TotalBalance: balance,
		})
	}
	return out, nil
}

type memCrops struct{ db *memDB }

func (r *memCrops) Create(_ context.Context, crop *models.Crop) error {
	crop.CreatedAt, crop.UpdatedAt = time.Now(), time.Now()
	r.db.crops[crop.ID] = *crop
	return nil
}

func (r *memCrops) GetByID(_ context.Context, id uuid.UUID) (*models.Crop, error) {
	c, ok := r.db.crops[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r *memCrops) Update(_ context.Context, crop *models.Crop) error {
	existing, ok := r.db.crops[crop.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	crop.CreatedAt, crop.UpdatedAt = existing.CreatedAt, time.Now()
	r.db.crops[crop.ID] = *crop
	return nil
}

func (r *memCrops) Deactivate(_ context.Context, id uuid.UUID) error {
	c, ok := r.db.crops[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.IsActive = false
	r.db.crops[id] = c
	return nil
}

func (r *memCrops) List(_ context.Context) ([]*models.Crop, error) {
	var out []*models.Crop
	for _, c := range r.db.crops {
		if c.IsActive {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memInventory struct{ db *memDB }

func (r *memInventory) Ensure(_ context.Context, cropID uuid.UUID) error {
	if _, ok := r.db.inventory[cropID]; !ok {
		r.db.inventory[cropID] = models.Inventory{ID: uuid.New(), CropID: cropID, UpdatedAt: time.Now()}
	}
	return nil
}

func (r *memInventory) GetByCropID(_ context.Context, cropID uuid.UUID) (*models.Inventory, error) {
	inv, ok := r.db.inventory[cropID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &inv, nil
}

func (r *memInventory) GetByCropIDForUpdate(ctx context.Context, cropID uuid.UUID) (*models.Inventory, error) {
	return r.GetByCropID(ctx, cropID)
}

func (r *memInventory) UpdateStock(_ context.Context, cropID uuid.UUID, quantity, averageRate, stockValue decimal.Decimal) error {
	inv, ok := r.db.inventory[cropID]
	if !ok {
		return repositories.ErrNotFound
	}
	if quantity.IsNegative() {
		return fmt.Errorf("inventory_stock_non_negative check violated")
	}
	inv.CurrentStock, inv.AverageRate, inv.StockValue, inv.UpdatedAt = quantity, averageRate, stockValue, time.Now()
	r.db.inventory[cropID] = inv
	return nil
}

func (r *memInventory) UpdateSettings(_ context.Context, cropID uuid.UUID, settings *models.InventorySettings) error {
	inv, ok := r.db.inventory[cropID]
	if !ok {
		return repositories.ErrNotFound
	}
	if settings.MinStockLevel != nil {
		inv.MinStockLevel = *settings.MinStockLevel
	}
	if settings.OpeningStock != nil {
		inv.OpeningStock = *settings.OpeningStock
	}
	r.db.inventory[cropID] = inv
	return nil
}

func (r *memInventory) views(lowOnly bool) []*models.InventoryView {
	var out []*models.InventoryView
	for cropID, inv := range r.db.inventory {
		crop, ok := r.db.crops[cropID]
		if !ok || !crop.IsActive {
			continue
		}
		v := &models.InventoryView{
			ID: inv.ID, CropID: cropID, CropName: crop.Name, Variety: crop.Variety, Category: crop.Category,
			Unit: crop.Unit, OpeningStock: inv.OpeningStock, CurrentStock: inv.CurrentStock,
			AverageRate: inv.AverageRate, StockValue: inv.StockValue, MinStockLevel: inv.MinStockLevel,
		}
		if lowOnly && !v.IsLowStock() {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CropName < out[j].CropName })
	return out
}

func (r *memInventory) ListWithCrops(_ context.Context) ([]*models.InventoryView, error) {
	return r.views(false), nil
}

func (r *memInventory) ListLowStock(_ context.Context) ([]*models.InventoryView, error) {
	return r.views(true), nil
}

type memTransactions struct{ db *memDB }

func (r *memTransactions) Create(_ context.Context, txn *models.Transaction) error {
	txn.CreatedAt, txn.UpdatedAt = time.Now(), time.Now()
	r.db.transactions[txn.ID] = *txn
	return nil
}

func (r *memTransactions) GetByID(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	t, ok := r.db.transactions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (r *memTransactions) Update(_ context.Context, txn *models.Transaction) error {
	existing, ok := r.db.transactions[txn.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	txn.Status, txn.AttachmentKey, txn.CreatedAt, txn.UpdatedAt = existing.Status, existing.AttachmentKey, existing.CreatedAt, time.Now()
	r.db.transactions[txn.ID] = *txn
	return nil
}

func (r *memTransactions) SetStatus(_ context.Context, id uuid.UUID, status models.TransactionStatus) error {
	t, ok := r.db.transactions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	t.Status = status
	r.db.transactions[id] = t
	return nil
}

func (r *memTransactions) SetAttachment(_ context.Context, id uuid.UUID, key string) error {
	t, ok := r.db.transactions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	t.AttachmentKey = &key
	r.db.transactions[id] = t
	return nil
}

func (r *memTransactions) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.db.transactions[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.db.transactions, id)
	for lid, row := range r.db.ledger {
		if row.entry.TransactionID != nil && *row.entry.TransactionID == id {
			row.entry.TransactionID = nil
			r.db.ledger[lid] = row
		}
	}
	return nil
}

func (r *memTransactions) view(t models.Transaction) *models.TransactionView {
	v := &models.TransactionView{Transaction: t}
	if t.PartyID != nil {
		if p, ok := r.db.parties[*t.PartyID]; ok {
			name := p.Name
			v.PartyName = &name
		}
	}
	if t.CropID != nil {
		if c, ok := r.db.crops[*t.CropID]; ok {
			name := c.Name
			v.CropName = &name
		}
	}
	return v
}

func (r *memTransactions) List(_ context.Context, filter models.TransactionFilter) ([]*models.TransactionView, error) {
	var out []*models.TransactionView
	for _, t := range r.db.transactions {
		if t.Status != models.TransactionStatusActive {
			continue
		}
		switch {
		case filter.Type != nil:
			if t.Type != *filter.Type {
				continue
			}
		case filter.PartyID != nil:
			if t.PartyID == nil || *t.PartyID != *filter.PartyID {
				continue
			}
		case filter.CropID != nil:
			if t.CropID == nil || *t.CropID != *filter.CropID {
				continue
			}
		}
		out = append(out, r.view(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *memTransactions) ListDeleted(_ context.Context) ([]*models.TransactionView, error) {
	var out []*models.TransactionView
	for _, t := range r.db.transactions {
		if t.Status == models.TransactionStatusTrashed {
			out = append(out, r.view(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

type memCash struct{ db *memDB }

func (r *memCash) Lock(_ context.Context) error { return nil }

func (r *memCash) Create(_ context.Context, entry *models.CashEntry) error {
	entry.CreatedAt = time.Now()
	r.db.cash[entry.ID] = cashRow{entry: *entry, seq: r.db.nextSeq()}
	return nil
}

func (r *memCash) GetByID(_ context.Context, id uuid.UUID) (*models.CashEntry, error) {
	row, ok := r.db.cash[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	e := row.entry
	return &e, nil
}

func (r *memCash) Update(_ context.Context, entry *models.CashEntry) error {
	row, ok := r.db.cash[entry.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	entry.CreatedAt = row.entry.CreatedAt
	row.entry = *entry
	r.db.cash[entry.ID] = row
	return nil
}

func (r *memCash) UpdateBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
	row, ok := r.db.cash[id]
	if !ok {
		return repositories.ErrNotFound
	}
	row.entry.Balance = balance
	r.db.cash[id] = row
	return nil
}

func (r *memCash) Latest(_ context.Context) (*models.CashEntry, error) {
	rows := r.db.cashRows()
	if len(rows) == 0 {
		return nil, repositories.ErrNotFound
	}
	e := rows[len(rows)-1].entry
	return &e, nil
}

func (r *memCash) List(ctx context.Context) ([]*models.CashEntry, error) {
	rows := r.db.cashRows()
	out := make([]*models.CashEntry, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		e := rows[i].entry
		out = append(out, &e)
	}
	return out, nil
}

func (r *memCash) ListChronological(_ context.Context) ([]*models.CashEntry, error) {
	rows := r.db.cashRows()
	out := make([]*models.CashEntry, len(rows))
	for i := range rows {
		e := rows[i].entry
		out[i] = &e
	}
	return out, nil
}

type memLedger struct{ db *memDB }

func (r *memLedger) Create(_ context.Context, entry *models.LedgerEntry) error {
	if entry.TransactionID != nil && entry.SourceCashEntryID != nil {
		return fmt.Errorf("party_ledger_single_source check violated")
	}
	entry.CreatedAt = time.Now()
	r.db.ledger[entry.ID] = ledgerRow{entry: *entry, seq: r.db.nextSeq()}
	return nil
}

func (r *memLedger) Latest(_ context.Context, partyID uuid.UUID) (*models.LedgerEntry, error) {
	rows := r.db.ledgerRows(partyID)
	if len(rows) == 0 {
		return nil, repositories.ErrNotFound
	}
	e := rows[len(rows)-1].entry
	return &e, nil
}

func (r *memLedger) ListForParty(_ context.Context, partyID uuid.UUID) ([]*models.LedgerEntry, error) {
	rows := r.db.ledgerRows(partyID)
	out := make([]*models.LedgerEntry, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		e := rows[i].entry
		out = append(out, &e)
	}
	return out, nil
}

func (r *memLedger) ListChronological(_ context.Context, partyID uuid.UUID) ([]*models.LedgerEntry, error) {
	rows := r.db.ledgerRows(partyID)
	out := make([]*models.LedgerEntry, len(rows))
	for i := range rows {
		e := rows[i].entry
		out[i] = &e
	}
	return out, nil
}

func (r *memLedger) ListAll(_ context.Context) ([]*models.LedgerEntryView, error) {
	var out []*models.LedgerEntryView
	for _, row := range r.db.ledger {
		v := &models.LedgerEntryView{LedgerEntry: row.entry}
		if p, ok := r.db.parties[row.entry.PartyID]; ok {
			name := p.Name
			v.PartyName = &name
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memLedger) UpdateBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
	row, ok := r.db.ledger[id]
	if !ok {
		return repositories.ErrNotFound
	}
	row.entry.Balance = balance
	r.db.ledger[id] = row
	return nil
}

func (r *memLedger) deleteWhere(match func(models.LedgerEntry) bool) []uuid.UUID {
	var parties []uuid.UUID
	for id, row := range r.db.ledger {
		if match(row.entry) {
			parties = append(parties, row.entry.PartyID)
			delete(r.db.ledger, id)
		}
	}
	return parties
}

func (r *memLedger) DeleteByTransactionID(_ context.Context, transactionID uuid.UUID) ([]uuid.UUID, error) {
	return r.deleteWhere(func(e models.LedgerEntry) bool {
		return e.TransactionID != nil && *e.TransactionID == transactionID
	}), nil
}

func (r *memLedger) DeleteByCashEntryID(_ context.Context, cashEntryID uuid.UUID) ([]uuid.UUID, error) {
	return r.deleteWhere(func(e models.LedgerEntry) bool {
		return e.SourceCashEntryID != nil && *e.SourceCashEntryID == cashEntryID
	}), nil
}

type memDashboard struct{ db *memDB }

func (r *memDashboard) Metrics(_ context.Context) (*models.DashboardMetrics, error) {
	m := &models.DashboardMetrics{}
	for _, t := range r.db.transactions {
		if t.Status != models.TransactionStatusActive {
			continue
		}
		switch t.Type {
		case models.TransactionTypeSale:
			m.TotalSales = m.TotalSales.Add(t.Amount)
		case models.TransactionTypePurchase:
			m.TotalPurchases = m.TotalPurchases.Add(t.Amount)
		case models.TransactionTypeExpense:
			m.TotalExpenses = m.TotalExpenses.Add(t.Amount)
		}
	}
	for cropID, inv := range r.db.inventory {
		m.InventoryValue = m.InventoryValue.Add(inv.StockValue)
		if crop, ok := r.db.crops[cropID]; ok && crop.IsActive {
			m.TotalCrops++
			if inv.CurrentStock.LessThanOrEqual(inv.MinStockLevel) {
				m.LowStockItems++
			}
		}
	}
	m.NetProfit = m.TotalSales.Sub(m.TotalPurchases).Sub(m.TotalExpenses)
	return m, nil
}

var _ repositories.TxStore = (*MemStore)(nil)

// DescriptionsOf is a small helper for asserting ledger contents
func DescriptionsOf(entries []models.LedgerEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Description
	}
	return strings.Join(parts, "; ")
}
