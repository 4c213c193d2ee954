package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seededMemoryStore(t *testing.T) (*MemoryStore, models.Account) {
	t.Helper()
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := Seed(ctx, s, []models.Category{
		{ID: 1, Name: "Salary", Type: models.TypeIncome},
		{ID: 6, Name: "Food & Dining", Type: models.TypeExpense},
	})
	require.NoError(t, err)
	acct, err := s.CreateAccount(ctx, models.Account{UserID: 7, Name: "HDFC", Balance: decimal.NewFromInt(100), Currency: "INR"})
	require.NoError(t, err)
	return s, acct
}

func record(acct models.Account, categoryID int64, date time.Time, amount string, desc string) models.TransactionRecord {
	return models.TransactionRecord{
		UserID:      acct.UserID,
		AccountID:   acct.ID,
		CategoryID:  categoryID,
		Date:        date,
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Type:        models.TypeExpense,
		Source:      models.SourceImport,
	}
}

func TestCatalogFile_LoadCategories(t *testing.T) {
	dir := t.TempDir()

	t.Run("keyed document", func(t *testing.T) {
		path := filepath.Join(dir, "keyed.yaml")
		writeFile(t, path, `categories:
  - id: 6
    name: Food & Dining
    type: expense
    description: Groceries and eating out
  - id: 1
    name: Salary
    type: income
`)
		cats, err := NewCatalogFile(path, logging.NewMockLogger()).LoadCategories(context.Background())
		require.NoError(t, err)
		require.Len(t, cats, 2)
		assert.Equal(t, int64(1), cats[0].ID, "sorted by id")
		assert.Equal(t, "Groceries and eating out", cats[1].Description)
	})

	t.Run("bare list", func(t *testing.T) {
		path := filepath.Join(dir, "bare.yaml")
		writeFile(t, path, `- id: 3
  name: Freelance
  type: income
`)
		cats, err := NewCatalogFile(path, logging.NewMockLogger()).LoadCategories(context.Background())
		require.NoError(t, err)
		require.Len(t, cats, 1)
		assert.Equal(t, "Freelance", cats[0].Name)
	})

	t.Run("missing file is empty", func(t *testing.T) {
		logger := logging.NewMockLogger()
		cats, err := NewCatalogFile(filepath.Join(dir, "nope.yaml"), logger).LoadCategories(context.Background())
		require.NoError(t, err)
		assert.Empty(t, cats)
		assert.True(t, logger.HasEntry("WARN", "Categories file not found"))
	})

	t.Run("invalid type", func(t *testing.T) {
		path := filepath.Join(dir, "badtype.yaml")
		writeFile(t, path, `categories:
  - id: 1
    name: Odd
    type: refund
`)
		_, err := NewCatalogFile(path, logging.NewMockLogger()).LoadCategories(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown transaction type")
	})
}

func TestCatalogFile_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "categories.yaml")
	file := NewCatalogFile(path, logging.NewMockLogger())

	in := []models.Category{
		{ID: 2, Name: "Utilities", Type: models.TypeExpense},
		{ID: 1, Name: "Salary", Type: models.TypeIncome, Description: "Monthly pay"},
	}
	require.NoError(t, file.SaveCategories(in))

	out, err := file.LoadCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.NewCatalog(in).Categories(), out)
}

func TestValidateCategories(t *testing.T) {
	tests := []struct {
		name    string
		cats    []models.Category
		wantErr string
	}{
		{"ok", []models.Category{{ID: 1, Name: "A", Type: models.TypeIncome}}, ""},
		{"empty name", []models.Category{{ID: 1, Name: " ", Type: models.TypeIncome}}, "has no name"},
		{"duplicate id", []models.Category{
			{ID: 1, Name: "A", Type: models.TypeIncome},
			{ID: 1, Name: "B", Type: models.TypeIncome},
		}, "duplicate category id"},
		{"duplicate name per type", []models.Category{
			{Name: "Other", Type: models.TypeIncome},
			{Name: "other", Type: models.TypeIncome},
		}, "duplicate income category"},
		{"same name different type", []models.Category{
			{Name: "Other", Type: models.TypeIncome},
			{Name: "Other", Type: models.TypeExpense},
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCategories(tt.cats)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMemoryStore_SaveCategoryUpserts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first, err := s.SaveCategory(ctx, models.Category{Name: "Health", Type: models.TypeExpense})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	again, err := s.SaveCategory(ctx, models.Category{Name: "health", Type: models.TypeExpense, Description: "Doctors"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	cats, err := s.LoadCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Doctors", cats[0].Description)
}

func TestMemoryStore_LoadAccount(t *testing.T) {
	s, acct := seededMemoryStore(t)

	got, err := s.LoadAccount(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, acct, got)

	_, err = s.LoadAccount(context.Background(), 8)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestMemoryStore_CommitAppliesInsertsAndBalance(t *testing.T) {
	ctx := context.Background()
	s, acct := seededMemoryStore(t)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	locked, err := tx.LockAccount(ctx, 7)
	require.NoError(t, err)
	assert.True(t, locked.Balance.Equal(decimal.NewFromInt(100)))

	_, err = tx.InsertTransaction(ctx, record(acct, 6, day(2024, 1, 5), "-40", "Lunch"))
	require.NoError(t, err)
	require.NoError(t, tx.UpdateBalance(ctx, acct.ID, decimal.NewFromInt(60)))

	assert.Empty(t, s.Transactions(), "nothing visible before commit")
	require.NoError(t, tx.Commit(ctx))

	assert.Len(t, s.Transactions(), 1)
	got, err := s.LoadAccount(ctx, 7)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(60)))
}

func TestMemoryStore_RollbackDiscards(t *testing.T) {
	ctx := context.Background()
	s, acct := seededMemoryStore(t)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.InsertTransaction(ctx, record(acct, 6, day(2024, 1, 5), "-40", "Lunch"))
	require.NoError(t, err)
	require.NoError(t, tx.UpdateBalance(ctx, acct.ID, decimal.NewFromInt(60)))
	require.NoError(t, tx.Rollback(ctx))
	require.NoError(t, tx.Rollback(ctx), "second rollback is a no-op")

	assert.Empty(t, s.Transactions())
	got, _ := s.LoadAccount(ctx, 7)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(100)))

	// the write lock was released
	tx2, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx2.Rollback(ctx))
}

func TestMemoryStore_InsertRejectsUnknownCategory(t *testing.T) {
	ctx := context.Background()
	s, acct := seededMemoryStore(t)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	_, err = tx.InsertTransaction(ctx, record(acct, 404, day(2024, 1, 5), "-1", "Ghost"))
	assert.ErrorIs(t, err, ErrRowRejected)

	_, err = tx.InsertTransaction(ctx, record(acct, 6, day(2024, 1, 5), "-1", "Real"))
	assert.NoError(t, err, "tx stays usable after a rejected row")
}

func TestMemoryStore_InsertHook(t *testing.T) {
	ctx := context.Background()
	s, acct := seededMemoryStore(t)
	boom := errors.New("disk full")
	s.InsertHook = func(models.TransactionRecord) error { return boom }

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	_, err = tx.InsertTransaction(ctx, record(acct, 6, day(2024, 1, 5), "-1", "x"))
	assert.ErrorIs(t, err, boom)
}

func TestMemoryStore_TransactionExistsIgnoresSignAndDescription(t *testing.T) {
	ctx := context.Background()
	s, acct := seededMemoryStore(t)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.InsertTransaction(ctx, record(acct, 6, day(2024, 2, 1), "-250.00", "Dinner"))
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	exists, err := s.TransactionExists(ctx, 7, day(2024, 2, 1), decimal.NewFromInt(250))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.TransactionExists(ctx, 7, day(2024, 2, 2), decimal.NewFromInt(250))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = s.TransactionExists(ctx, 8, day(2024, 2, 1), decimal.NewFromInt(250))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore_ListTransactions(t *testing.T) {
	ctx := context.Background()
	s, acct := seededMemoryStore(t)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	for _, r := range []models.TransactionRecord{
		record(acct, 6, day(2024, 3, 3), "-3", "third"),
		record(acct, 6, day(2024, 3, 1), "-1", "first"),
		record(acct, 6, day(2024, 3, 2), "-2", "second"),
		record(acct, 6, day(2024, 4, 1), "-4", "outside"),
	} {
		_, err := tx.InsertTransaction(ctx, r)
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit(ctx))

	rows, err := s.ListTransactions(ctx, 7, day(2024, 3, 1), day(2024, 3, 31))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "first", rows[0].Description)
	assert.Equal(t, "third", rows[2].Description)
	assert.Equal(t, "Food & Dining", rows[0].CategoryName)
	assert.Equal(t, "HDFC", rows[0].AccountName)

	all, err := s.ListTransactions(ctx, 7, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSameDay(t *testing.T) {
	assert.True(t, SameDay(day(2024, 1, 1), time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)))
	assert.False(t, SameDay(day(2024, 1, 1), day(2024, 1, 2)))
}
