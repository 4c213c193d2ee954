// Package sqlite implements store.Store on a local SQLite file.
//
// Write transactions are opened with BEGIN IMMEDIATE, so the database write
// lock is held from the account read until commit or rollback.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fjacquet/ledger-import/internal/dateutils"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/parsererror"
	"fjacquet/ledger-import/internal/store"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store is a SQLite-backed store.Store.
type Store struct {
	db     *sql.DB
	path   string
	logger logging.Logger
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("Opened SQLite store",
		logging.F(logging.FieldDriver, "sqlite"),
		logging.F(logging.FieldFile, path))
	return &Store{db: db, path: path, logger: logger}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("%s: %w: %v", op, store.ErrRowRejected, err)
	}
	return parsererror.NewStoreError(op, err)
}

// LoadCategories returns the catalog ordered by id.
func (s *Store) LoadCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, mapError("load categories", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var (
			c   models.Category
			typ string
		)
		if err := rows.Scan(&c.ID, &c.Name, &typ, &c.Description); err != nil {
			return nil, mapError("load categories", err)
		}
		c.Type = models.TransactionType(typ)
		out = append(out, c)
	}
	return out, mapError("load categories", rows.Err())
}

// SaveCategory upserts on (name, type).
func (s *Store) SaveCategory(ctx context.Context, c models.Category) (models.Category, error) {
	var id sql.NullInt64
	if c.ID != 0 {
		id = sql.NullInt64{Int64: c.ID, Valid: true}
	}

	var (
		saved models.Category
		typ   string
	)
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, type, description) VALUES (?, ?, ?, ?)
		ON CONFLICT (name, type) DO UPDATE SET description = excluded.description
		RETURNING id, name, type, description`,
		id, c.Name, string(c.Type), c.Description,
	).Scan(&saved.ID, &saved.Name, &typ, &saved.Description)
	if err != nil {
		return models.Category{}, mapError("save category", err)
	}
	saved.Type = models.TransactionType(typ)
	return saved, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

const accountColumns = `id, user_id, account_name, current_balance, currency`

func scanAccount(row rowScanner) (models.Account, error) {
	var (
		a       models.Account
		balance string
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &balance, &a.Currency); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, store.ErrAccountNotFound
		}
		return models.Account{}, err
	}
	bal, err := decimal.NewFromString(balance)
	if err != nil {
		return models.Account{}, fmt.Errorf("invalid balance %q: %w", balance, err)
	}
	a.Balance = bal
	return a, nil
}

// LoadAccount returns the user's first account.
func (s *Store) LoadAccount(ctx context.Context, userID int64) (models.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE user_id = ? ORDER BY id LIMIT 1`, userID))
	if errors.Is(err, store.ErrAccountNotFound) {
		return models.Account{}, err
	}
	return a, mapError("load account", err)
}

// CreateAccount inserts a and returns it with its id.
func (s *Store) CreateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	if a.Currency == "" {
		a.Currency = "INR"
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO bank_accounts (user_id, account_name, current_balance, currency) VALUES (?, ?, ?, ?)`,
		a.UserID, a.Name, a.Balance.StringFixed(2), a.Currency)
	if err != nil {
		return models.Account{}, mapError("create account", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return models.Account{}, mapError("create account", err)
	}
	return a, nil
}

// TransactionExists compares the day and the absolute amount only.
func (s *Store) TransactionExists(ctx context.Context, userID int64, date time.Time, amount decimal.Decimal) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transactions WHERE user_id = ? AND date = ? AND abs_amount = ?
		)`, userID, dateutils.ToISODate(date), amount.Abs().StringFixed(2)).Scan(&exists)
	if err != nil {
		return false, mapError("check existing transaction", err)
	}
	return exists, nil
}

// ListTransactions returns the user's transactions in [from, to] ordered by date and id.
func (s *Store) ListTransactions(ctx context.Context, userID int64, from, to time.Time) ([]models.StoredTransaction, error) {
	query := `
		SELECT t.id, t.date, t.description, t.amount, t.type,
		       t.debit_account, t.credit_account, t.category_id,
		       COALESCE(c.name, ''), b.account_name, t.source, t.batch_id
		FROM transactions t
		JOIN bank_accounts b ON b.id = t.bank_account_id
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?`
	args := []any{userID}
	if !from.IsZero() {
		query += ` AND t.date >= ?`
		args = append(args, dateutils.ToISODate(from))
	}
	if !to.IsZero() {
		query += ` AND t.date <= ?`
		args = append(args, dateutils.ToISODate(to))
	}
	query += ` ORDER BY t.date, t.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list transactions", err)
	}
	defer rows.Close()

	var out []models.StoredTransaction
	for rows.Next() {
		var (
			st           models.StoredTransaction
			date, amount string
			typ          string
		)
		if err := rows.Scan(&st.ID, &date, &st.Description, &amount, &typ,
			&st.DebitAccount, &st.CreditAccount, &st.CategoryID,
			&st.CategoryName, &st.AccountName, &st.Source, &st.BatchID); err != nil {
			return nil, mapError("list transactions", err)
		}
		if st.Date, err = time.Parse(dateutils.DateLayoutISO, date); err != nil {
			return nil, mapError("list transactions", err)
		}
		if st.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, mapError("list transactions", err)
		}
		st.Type = models.TransactionType(typ)
		out = append(out, st)
	}
	return out, mapError("list transactions", rows.Err())
}

// Begin starts an immediate write transaction.
func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapError("begin transaction", err)
	}
	return &sqliteTx{tx: tx}, nil
}

type sqliteTx struct {
	tx *sql.Tx
}

// LockAccount reads the account; the immediate transaction already holds the write lock.
func (t *sqliteTx) LockAccount(ctx context.Context, userID int64) (models.Account, error) {
	a, err := scanAccount(t.tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE user_id = ? ORDER BY id LIMIT 1`, userID))
	if errors.Is(err, store.ErrAccountNotFound) {
		return models.Account{}, err
	}
	return a, mapError("lock account", err)
}

// InsertTransaction wraps the insert in a savepoint so a rejected row leaves
// earlier inserts intact.
func (t *sqliteTx) InsertTransaction(ctx context.Context, rec models.TransactionRecord) (int64, error) {
	if _, err := t.tx.ExecContext(ctx, `SAVEPOINT row_insert`); err != nil {
		return 0, mapError("savepoint", err)
	}

	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO transactions (
			user_id, bank_account_id, category_id, date, description, amount, abs_amount,
			type, debit_account, credit_account, source, batch_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.AccountID, rec.CategoryID, dateutils.ToISODate(rec.Date), rec.Description,
		rec.Amount.StringFixed(2), rec.Amount.Abs().StringFixed(2),
		string(rec.Type), rec.DebitAccount, rec.CreditAccount, rec.Source, rec.BatchID)
	if err != nil {
		if _, rbErr := t.tx.ExecContext(ctx, `ROLLBACK TO row_insert; RELEASE row_insert`); rbErr != nil {
			return 0, mapError("rollback to savepoint", rbErr)
		}
		return 0, mapError("insert transaction", err)
	}
	if _, err := t.tx.ExecContext(ctx, `RELEASE row_insert`); err != nil {
		return 0, mapError("release savepoint", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, mapError("insert transaction", err)
	}
	return id, nil
}

func (t *sqliteTx) UpdateBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE bank_accounts SET current_balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		balance.StringFixed(2), accountID)
	return mapError("update balance", err)
}

func (t *sqliteTx) Commit(_ context.Context) error {
	return mapError("commit", t.tx.Commit())
}

// Rollback ignores sql.ErrTxDone so it can be deferred after Commit.
func (t *sqliteTx) Rollback(_ context.Context) error {
	err := t.tx.Rollback()
	if err == nil || errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return mapError("rollback", err)
}
