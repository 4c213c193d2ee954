// Package storetest holds the behavioural test suite every store.Store
// implementation must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Categories is the catalog seeded by the suite.
var Categories = []models.Category{
	{ID: 1, Name: "Salary", Type: models.TypeIncome},
	{ID: 4, Name: "Other Income", Type: models.TypeIncome},
	{ID: 6, Name: "Food & Dining", Type: models.TypeExpense, Description: "Groceries and restaurants"},
	{ID: 14, Name: "Other Expense", Type: models.TypeExpense},
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, s store.Store) models.Account {
	t.Helper()
	ctx := context.Background()
	_, err := store.Seed(ctx, s, Categories)
	require.NoError(t, err)
	acct, err := s.CreateAccount(ctx, models.Account{
		UserID:   42,
		Name:     "HDFC Savings",
		Balance:  decimal.RequireFromString("1000.50"),
		Currency: "INR",
	})
	require.NoError(t, err)
	return acct
}

func rec(acct models.Account, categoryID int64, date time.Time, amount, desc string) models.TransactionRecord {
	a := decimal.RequireFromString(amount)
	typ := models.TypeExpense
	if a.IsPositive() {
		typ = models.TypeIncome
	}
	return models.TransactionRecord{
		UserID:        acct.UserID,
		AccountID:     acct.ID,
		CategoryID:    categoryID,
		Date:          date,
		Description:   desc,
		Amount:        a,
		Type:          typ,
		DebitAccount:  "Expenses:Food",
		CreditAccount: "Assets:Banking:HDFC",
		Source:        models.SourceImport,
		BatchID:       "batch-1",
	}
}

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("categories round trip", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		cats, err := s.LoadCategories(context.Background())
		require.NoError(t, err)
		require.Len(t, cats, len(Categories))
		assert.Equal(t, Categories, cats)

		// re-seeding updates in place
		updated := models.Category{Name: "Food & Dining", Type: models.TypeExpense, Description: "Eating"}
		saved, err := s.SaveCategory(context.Background(), updated)
		require.NoError(t, err)
		assert.Equal(t, int64(6), saved.ID)
	})

	t.Run("account load", func(t *testing.T) {
		s := newStore(t)
		acct := seed(t, s)

		got, err := s.LoadAccount(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, acct.ID, got.ID)
		assert.Equal(t, "HDFC Savings", got.Name)
		assert.True(t, got.Balance.Equal(decimal.RequireFromString("1000.50")))

		_, err = s.LoadAccount(context.Background(), 43)
		assert.ErrorIs(t, err, store.ErrAccountNotFound)
	})

	t.Run("commit persists rows and balance", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		acct := seed(t, s)

		tx, err := s.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		locked, err := tx.LockAccount(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, acct.ID, locked.ID)

		id1, err := tx.InsertTransaction(ctx, rec(acct, 6, day(2024, 1, 10), "-200.25", "Groceries"))
		require.NoError(t, err)
		id2, err := tx.InsertTransaction(ctx, rec(acct, 1, day(2024, 1, 11), "5000", "Salary"))
		require.NoError(t, err)
		assert.NotEqual(t, id1, id2)

		require.NoError(t, tx.UpdateBalance(ctx, acct.ID, decimal.RequireFromString("5800.25")))
		require.NoError(t, tx.Commit(ctx))

		got, err := s.LoadAccount(ctx, 42)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.RequireFromString("5800.25")), got.Balance.String())

		rows, err := s.ListTransactions(ctx, 42, time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Groceries", rows[0].Description)
		assert.True(t, rows[0].Amount.Equal(decimal.RequireFromString("-200.25")))
		assert.Equal(t, "Food & Dining", rows[0].CategoryName)
		assert.Equal(t, "HDFC Savings", rows[0].AccountName)
		assert.Equal(t, "batch-1", rows[0].BatchID)
		assert.True(t, rows[0].Date.Equal(day(2024, 1, 10)))
	})

	t.Run("rollback discards everything", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		acct := seed(t, s)

		tx, err := s.Begin(ctx)
		require.NoError(t, err)
		_, err = tx.LockAccount(ctx, 42)
		require.NoError(t, err)
		_, err = tx.InsertTransaction(ctx, rec(acct, 6, day(2024, 1, 10), "-10", "Snack"))
		require.NoError(t, err)
		require.NoError(t, tx.UpdateBalance(ctx, acct.ID, decimal.RequireFromString("990.50")))
		require.NoError(t, tx.Rollback(ctx))

		rows, err := s.ListTransactions(ctx, 42, time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Empty(t, rows)
		got, err := s.LoadAccount(ctx, 42)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.RequireFromString("1000.50")))
	})

	t.Run("rejected row keeps the unit usable", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		acct := seed(t, s)

		tx, err := s.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)
		_, err = tx.LockAccount(ctx, 42)
		require.NoError(t, err)

		_, err = tx.InsertTransaction(ctx, rec(acct, 999, day(2024, 1, 10), "-10", "Unknown category"))
		require.ErrorIs(t, err, store.ErrRowRejected)

		_, err = tx.InsertTransaction(ctx, rec(acct, 6, day(2024, 1, 10), "-10", "Valid"))
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		rows, err := s.ListTransactions(ctx, 42, time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Valid", rows[0].Description)
	})

	t.Run("exists ignores sign and description", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		acct := seed(t, s)

		tx, err := s.Begin(ctx)
		require.NoError(t, err)
		_, err = tx.InsertTransaction(ctx, rec(acct, 6, day(2024, 2, 1), "-250.00", "Dinner"))
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		exists, err := s.TransactionExists(ctx, 42, day(2024, 2, 1), decimal.NewFromInt(250))
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = s.TransactionExists(ctx, 42, day(2024, 2, 1), decimal.NewFromInt(-250))
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = s.TransactionExists(ctx, 42, day(2024, 2, 2), decimal.NewFromInt(250))
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = s.TransactionExists(ctx, 42, day(2024, 2, 1), decimal.RequireFromString("250.01"))
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("list filters and orders by date", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		acct := seed(t, s)

		tx, err := s.Begin(ctx)
		require.NoError(t, err)
		for _, r := range []models.TransactionRecord{
			rec(acct, 6, day(2024, 3, 3), "-3", "third"),
			rec(acct, 6, day(2024, 3, 1), "-1", "first"),
			rec(acct, 6, day(2024, 3, 2), "-2", "second"),
			rec(acct, 6, day(2024, 4, 1), "-4", "april"),
		} {
			_, err := tx.InsertTransaction(ctx, r)
			require.NoError(t, err)
		}
		require.NoError(t, tx.Commit(ctx))

		rows, err := s.ListTransactions(ctx, 42, day(2024, 3, 1), day(2024, 3, 31))
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"first", "second", "third"},
			[]string{rows[0].Description, rows[1].Description, rows[2].Description})

		none, err := s.ListTransactions(ctx, 42, day(2025, 1, 1), day(2025, 12, 31))
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
