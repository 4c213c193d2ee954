// Package postgres implements store.Store on PostgreSQL using a pgx connection pool.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/parsererror"
	"fjacquet/ledger-import/internal/store"

	"github.com/avast/retry-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

//go:embed schema.sql
var migrationSQL string

// Config holds the PostgreSQL connection settings. URL, when set, wins over
// the individual fields.
type Config struct {
	URL      string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int
	// ConnectAttempts bounds the ping retries before giving up.
	ConnectAttempts int
	// RetryDelay is the base delay between connection attempts.
	RetryDelay time.Duration
}

// ConnString returns the DSN for cfg.
func (cfg Config) ConnString() string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)
}

func (cfg *Config) applyDefaults() {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 10
	}
	if cfg.ConnectAttempts <= 0 {
		cfg.ConnectAttempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
}

// Store is a PostgreSQL-backed store.Store.
type Store struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

var _ store.Store = (*Store)(nil)

// New connects, retrying the initial ping, and applies the schema.
func New(ctx context.Context, cfg Config, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	cfg.applyDefaults()

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	err = retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		},
		retry.Context(ctx),
		retry.Attempts(uint(cfg.ConnectAttempts)),
		retry.Delay(cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.WithError(err).Warn("PostgreSQL not reachable, retrying",
				logging.F("attempt", n+1))
		}),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		logging.F(logging.FieldDriver, "postgres"),
		logging.F("host", poolConfig.ConnConfig.Host),
		logging.F("database", poolConfig.ConnConfig.Database))

	s := &Store{pool: pool, logger: logger}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, migrationSQL); err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	s.logger.Debug("Schema migration applied")
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// isConstraintViolation reports SQLSTATE class 23 (integrity constraint violation).
func isConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23")
}

// mapError converts constraint violations to store.ErrRowRejected and wraps
// everything else as a fatal store error.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("%s: %w: %v", op, store.ErrRowRejected, err)
	}
	return parsererror.NewStoreError(op, err)
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid numeric %q: %w", s, err)
	}
	return d, nil
}

// LoadCategories returns the catalog ordered by id.
func (s *Store) LoadCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, type, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, mapError("load categories", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		var typ string
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
	var (
		row pgx.Row
		typ string
	)
	if c.ID == 0 {
		row = s.pool.QueryRow(ctx, `
			INSERT INTO categories (name, type, description) VALUES ($1, $2, $3)
			ON CONFLICT (name, type) DO UPDATE SET description = EXCLUDED.description
			RETURNING id, name, type, description`,
			c.Name, string(c.Type), c.Description)
	} else {
		row = s.pool.QueryRow(ctx, `
			INSERT INTO categories (id, name, type, description) VALUES ($1, $2, $3, $4)
			ON CONFLICT (name, type) DO UPDATE SET description = EXCLUDED.description
			RETURNING id, name, type, description`,
			c.ID, c.Name, string(c.Type), c.Description)
	}

	var saved models.Category
	if err := row.Scan(&saved.ID, &saved.Name, &typ, &saved.Description); err != nil {
		return models.Category{}, mapError("save category", err)
	}
	saved.Type = models.TransactionType(typ)

	if c.ID != 0 {
		// explicit ids bypass the sequence
		if _, err := s.pool.Exec(ctx,
			`SELECT setval(pg_get_serial_sequence('categories', 'id'), (SELECT MAX(id) FROM categories))`); err != nil {
			return models.Category{}, mapError("save category", err)
		}
	}
	return saved, nil
}

const accountColumns = `id, user_id, account_name, current_balance::text, currency`

func scanAccount(row pgx.Row) (models.Account, error) {
	var (
		a       models.Account
		balance string
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &balance, &a.Currency); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, store.ErrAccountNotFound
		}
		return models.Account{}, err
	}
	bal, err := parseAmount(balance)
	if err != nil {
		return models.Account{}, err
	}
	a.Balance = bal
	return a, nil
}

// LoadAccount returns the user's oldest account.
func (s *Store) LoadAccount(ctx context.Context, userID int64) (models.Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE user_id = $1 ORDER BY created_at, id LIMIT 1`,
		userID))
	if errors.Is(err, store.ErrAccountNotFound) {
		return models.Account{}, err
	}
	if err != nil {
		return models.Account{}, mapError("load account", err)
	}
	return a, nil
}

// CreateAccount inserts a and returns it with its id.
func (s *Store) CreateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	if a.Currency == "" {
		a.Currency = "INR"
	}
	created, err := scanAccount(s.pool.QueryRow(ctx,
		`INSERT INTO bank_accounts (user_id, account_name, current_balance, currency)
		 VALUES ($1, $2, $3, $4) RETURNING `+accountColumns,
		a.UserID, a.Name, a.Balance.StringFixed(2), a.Currency))
	if err != nil {
		return models.Account{}, mapError("create account", err)
	}
	return created, nil
}

// TransactionExists compares the date and the absolute amount only.
func (s *Store) TransactionExists(ctx context.Context, userID int64, date time.Time, amount decimal.Decimal) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE user_id = $1 AND date = $2 AND ABS(amount) = $3::numeric
		)`, userID, date, amount.Abs().StringFixed(2)).Scan(&exists)
	if err != nil {
		return false, mapError("check existing transaction", err)
	}
	return exists, nil
}

// ListTransactions returns the user's transactions in [from, to] ordered by date and id.
func (s *Store) ListTransactions(ctx context.Context, userID int64, from, to time.Time) ([]models.StoredTransaction, error) {
	query := `
		SELECT t.id, t.date, t.description, t.amount::text, t.type,
		       t.debit_account, t.credit_account, t.category_id,
		       COALESCE(c.name, ''), b.account_name, t.source, t.batch_id
		FROM transactions t
		JOIN bank_accounts b ON b.id = t.bank_account_id
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1`
	args := []any{userID}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND t.date >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND t.date <= $%d", len(args))
	}
	query += " ORDER BY t.date, t.id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list transactions", err)
	}
	defer rows.Close()

	var out []models.StoredTransaction
	for rows.Next() {
		var (
			st     models.StoredTransaction
			amount string
			typ    string
		)
		if err := rows.Scan(&st.ID, &st.Date, &st.Description, &amount, &typ,
			&st.DebitAccount, &st.CreditAccount, &st.CategoryID,
			&st.CategoryName, &st.AccountName, &st.Source, &st.BatchID); err != nil {
			return nil, mapError("list transactions", err)
		}
		if st.Amount, err = parseAmount(amount); err != nil {
			return nil, mapError("list transactions", err)
		}
		st.Type = models.TransactionType(typ)
		out = append(out, st)
	}
	return out, mapError("list transactions", rows.Err())
}

// Begin opens a database transaction.
func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, mapError("begin transaction", err)
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct {
	tx pgx.Tx
}

// LockAccount takes a row lock with SELECT ... FOR UPDATE.
func (t *pgTx) LockAccount(ctx context.Context, userID int64) (models.Account, error) {
	a, err := scanAccount(t.tx.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE user_id = $1
		 ORDER BY created_at, id LIMIT 1 FOR UPDATE`, userID))
	if errors.Is(err, store.ErrAccountNotFound) {
		return models.Account{}, err
	}
	if err != nil {
		return models.Account{}, mapError("lock account", err)
	}
	return a, nil
}

// InsertTransaction runs inside a savepoint so a rejected row does not
// abort the enclosing transaction.
func (t *pgTx) InsertTransaction(ctx context.Context, rec models.TransactionRecord) (int64, error) {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return 0, mapError("savepoint", err)
	}

	var id int64
	err = sp.QueryRow(ctx, `
		INSERT INTO transactions (
			user_id, bank_account_id, category_id, date, description, amount,
			type, debit_account, credit_account, source, batch_id
		) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10, $11)
		RETURNING id`,
		rec.UserID, rec.AccountID, rec.CategoryID, rec.Date, rec.Description,
		rec.Amount.StringFixed(2), string(rec.Type), rec.DebitAccount, rec.CreditAccount,
		rec.Source, rec.BatchID,
	).Scan(&id)
	if err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return 0, mapError("rollback to savepoint", rbErr)
		}
		return 0, mapError("insert transaction", err)
	}
	if err := sp.Commit(ctx); err != nil {
		return 0, mapError("release savepoint", err)
	}
	return id, nil
}

func (t *pgTx) UpdateBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE bank_accounts
		SET current_balance = $1::numeric, updated_at = NOW()
		WHERE id = $2`, balance.StringFixed(2), accountID)
	return mapError("update balance", err)
}

func (t *pgTx) Commit(ctx context.Context) error {
	return mapError("commit", t.tx.Commit(ctx))
}

// Rollback ignores pgx.ErrTxClosed so it can be deferred after Commit.
func (t *pgTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err == nil || errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return mapError("rollback", err)
}
