// Package store defines the transactional storage boundary of the ingestion
// pipeline and provides an in-memory implementation plus the YAML category
// catalog file used to seed stores.
//
// SQL-backed implementations live in the postgres and sqlite subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"fjacquet/ledger-import/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound is returned when the user has no bank account.
	ErrAccountNotFound = errors.New("user or bank account not found")
	// ErrRowRejected is returned by Tx.InsertTransaction when the store's
	// integrity constraints refuse the row. The transaction stays usable.
	ErrRowRejected = errors.New("row rejected by store constraints")
	// ErrNoTransactions is returned when a date range holds no transactions.
	ErrNoTransactions = errors.New("no transactions found")
)

// Store is the persistence boundary consumed by the pipeline.
type Store interface {
	// LoadCategories returns the whole catalog in ascending id order.
	LoadCategories(ctx context.Context) ([]models.Category, error)
	// SaveCategory inserts c, or updates the category with the same name and
	// type, and returns the stored row.
	SaveCategory(ctx context.Context, c models.Category) (models.Category, error)

	// LoadAccount returns the user's first account (lowest id).
	LoadAccount(ctx context.Context, userID int64) (models.Account, error)
	CreateAccount(ctx context.Context, a models.Account) (models.Account, error)

	// TransactionExists reports whether the user already has a transaction on
	// date whose absolute amount equals |amount|. The description is not compared.
	TransactionExists(ctx context.Context, userID int64, date time.Time, amount decimal.Decimal) (bool, error)
	// ListTransactions returns the user's transactions with from <= date <= to,
	// ordered by date then id. A zero bound is open.
	ListTransactions(ctx context.Context, userID int64, from, to time.Time) ([]models.StoredTransaction, error)

	// Begin opens the atomic unit used to commit a batch.
	Begin(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is one atomic unit of work. Rollback after Commit is a no-op so callers
// can defer it.
type Tx interface {
	// LockAccount locks the user's first account until the unit ends and
	// returns it with its current balance.
	LockAccount(ctx context.Context, userID int64) (models.Account, error)
	// InsertTransaction writes one row and returns its id. A constraint
	// violation yields ErrRowRejected and leaves the unit usable; any other
	// error is fatal for the unit.
	InsertTransaction(ctx context.Context, rec models.TransactionRecord) (int64, error)
	UpdateBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// SameDay reports whether a and b fall on the same calendar day in UTC.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
