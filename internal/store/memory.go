package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"fjacquet/ledger-import/internal/models"

	"github.com/shopspring/decimal"
)

// MemoryStore is an in-process Store used by tests and the "memory" driver.
// A Tx holds an exclusive lock on the whole store until it ends, which stands
// in for the account row lock of the SQL stores.
//
// The exported error fields inject failures for testing.
type MemoryStore struct {
	LoadCategoriesError    error
	LoadAccountError       error
	TransactionExistsError error
	BeginError             error
	UpdateBalanceError     error
	CommitError            error
	// InsertHook, when set, is called before every insert; a non-nil error is
	// returned as is.
	InsertHook func(rec models.TransactionRecord) error

	writeMu sync.Mutex // held by an open Tx

	mu           sync.RWMutex
	categories   map[int64]models.Category
	accounts     []models.Account
	transactions []storedRow
	nextID       int64
}

type storedRow struct {
	id  int64
	rec models.TransactionRecord
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{categories: make(map[int64]models.Category)}
}

func (m *MemoryStore) newID() int64 {
	m.nextID++
	return m.nextID
}

// LoadCategories returns the categories in ascending id order.
func (m *MemoryStore) LoadCategories(_ context.Context) ([]models.Category, error) {
	if m.LoadCategoriesError != nil {
		return nil, m.LoadCategoriesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveCategory upserts by (name, type); an explicit id is kept.
func (m *MemoryStore) SaveCategory(_ context.Context, c models.Category) (models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, existing := range m.categories {
		if strings.EqualFold(existing.Name, c.Name) && strings.EqualFold(string(existing.Type), string(c.Type)) {
			existing.Description = c.Description
			m.categories[id] = existing
			return existing, nil
		}
	}
	if c.ID == 0 {
		c.ID = m.newID()
	} else if _, taken := m.categories[c.ID]; taken {
		return models.Category{}, fmt.Errorf("category id %d: %w", c.ID, ErrRowRejected)
	} else if c.ID > m.nextID {
		m.nextID = c.ID
	}
	m.categories[c.ID] = c
	return c, nil
}

// LoadAccount returns the user's account with the lowest id.
func (m *MemoryStore) LoadAccount(_ context.Context, userID int64) (models.Account, error) {
	if m.LoadAccountError != nil {
		return models.Account{}, m.LoadAccountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findAccount(userID)
}

func (m *MemoryStore) findAccount(userID int64) (models.Account, error) {
	for _, a := range m.accounts {
		if a.UserID == userID {
			return a, nil
		}
	}
	return models.Account{}, ErrAccountNotFound
}

// CreateAccount stores a and assigns its id.
func (m *MemoryStore) CreateAccount(_ context.Context, a models.Account) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.accounts {
		if existing.UserID == a.UserID && strings.EqualFold(existing.Name, a.Name) {
			return models.Account{}, fmt.Errorf("account %q: %w", a.Name, ErrRowRejected)
		}
	}
	a.ID = m.newID()
	m.accounts = append(m.accounts, a)
	return a, nil
}

// TransactionExists matches on user, day and absolute amount.
func (m *MemoryStore) TransactionExists(_ context.Context, userID int64, date time.Time, amount decimal.Decimal) (bool, error) {
	if m.TransactionExistsError != nil {
		return false, m.TransactionExistsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	abs := amount.Abs()
	for _, row := range m.transactions {
		if row.rec.UserID == userID && SameDay(row.rec.Date, date) && row.rec.Amount.Abs().Equal(abs) {
			return true, nil
		}
	}
	return false, nil
}

// ListTransactions returns rows in [from, to] ordered by date then id.
func (m *MemoryStore) ListTransactions(_ context.Context, userID int64, from, to time.Time) ([]models.StoredTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.StoredTransaction
	for _, row := range m.transactions {
		rec := row.rec
		if rec.UserID != userID {
			continue
		}
		if !from.IsZero() && rec.Date.Before(from) {
			continue
		}
		if !to.IsZero() && rec.Date.After(to) {
			continue
		}
		st := models.StoredTransaction{
			ID:            row.id,
			Date:          rec.Date,
			Description:   rec.Description,
			Amount:        rec.Amount,
			Type:          rec.Type,
			DebitAccount:  rec.DebitAccount,
			CreditAccount: rec.CreditAccount,
			CategoryID:    rec.CategoryID,
			Source:        rec.Source,
			BatchID:       rec.BatchID,
		}
		if c, ok := m.categories[rec.CategoryID]; ok {
			st.CategoryName = c.Name
		}
		for _, a := range m.accounts {
			if a.ID == rec.AccountID {
				st.AccountName = a.Name
			}
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Transactions returns every stored record in insertion order.
func (m *MemoryStore) Transactions() []models.TransactionRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.TransactionRecord, len(m.transactions))
	for i, row := range m.transactions {
		out[i] = row.rec
	}
	return out
}

// Begin blocks until no other Tx is open.
func (m *MemoryStore) Begin(ctx context.Context) (Tx, error) {
	if m.BeginError != nil {
		return nil, m.BeginError
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.writeMu.Lock()
	return &memoryTx{store: m, balances: make(map[int64]decimal.Decimal)}, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

var errTxDone = errors.New("transaction already committed or rolled back")

// memoryTx stages inserts and balance updates and applies them on Commit.
type memoryTx struct {
	store    *MemoryStore
	inserts  []storedRow
	balances map[int64]decimal.Decimal
	done     bool
}

func (tx *memoryTx) LockAccount(_ context.Context, userID int64) (models.Account, error) {
	if tx.done {
		return models.Account{}, errTxDone
	}
	if tx.store.LoadAccountError != nil {
		return models.Account{}, tx.store.LoadAccountError
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	return tx.store.findAccount(userID)
}

func (tx *memoryTx) InsertTransaction(_ context.Context, rec models.TransactionRecord) (int64, error) {
	if tx.done {
		return 0, errTxDone
	}
	if hook := tx.store.InsertHook; hook != nil {
		if err := hook(rec); err != nil {
			return 0, err
		}
	}

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	if _, ok := tx.store.categories[rec.CategoryID]; !ok {
		return 0, fmt.Errorf("unknown category %d: %w", rec.CategoryID, ErrRowRejected)
	}
	known := false
	for _, a := range tx.store.accounts {
		if a.ID == rec.AccountID && a.UserID == rec.UserID {
			known = true
		}
	}
	if !known {
		return 0, fmt.Errorf("unknown account %d: %w", rec.AccountID, ErrRowRejected)
	}

	row := storedRow{id: tx.store.newID(), rec: rec}
	tx.inserts = append(tx.inserts, row)
	return row.id, nil
}

func (tx *memoryTx) UpdateBalance(_ context.Context, accountID int64, balance decimal.Decimal) error {
	if tx.done {
		return errTxDone
	}
	if tx.store.UpdateBalanceError != nil {
		return tx.store.UpdateBalanceError
	}
	tx.balances[accountID] = balance
	return nil
}

func (tx *memoryTx) Commit(_ context.Context) error {
	if tx.done {
		return errTxDone
	}
	tx.done = true
	defer tx.store.writeMu.Unlock()

	if tx.store.CommitError != nil {
		return tx.store.CommitError
	}

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	tx.store.transactions = append(tx.store.transactions, tx.inserts...)
	for i, a := range tx.store.accounts {
		if bal, ok := tx.balances[a.ID]; ok {
			tx.store.accounts[i].Balance = bal
		}
	}
	return nil
}

func (tx *memoryTx) Rollback(_ context.Context) error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.inserts = nil
	tx.store.writeMu.Unlock()
	return nil
}
