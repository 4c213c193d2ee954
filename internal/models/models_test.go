package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() Catalog {
	return NewCatalog([]Category{
		{ID: 9, Name: "Shopping", Type: TypeExpense},
		{ID: 4, Name: "Other Income", Type: TypeIncome},
		{ID: 1, Name: "Salary", Type: TypeIncome},
		{ID: 6, Name: "Food & Dining", Type: TypeExpense},
	})
}

func TestParseTransactionType(t *testing.T) {
	got, err := ParseTransactionType(" Income ")
	require.NoError(t, err)
	assert.Equal(t, TypeIncome, got)

	got, err = ParseTransactionType("EXPENSE")
	require.NoError(t, err)
	assert.Equal(t, TypeExpense, got)

	_, err = ParseTransactionType("refund")
	assert.Error(t, err)
}

func TestCatalog_OrderedByID(t *testing.T) {
	c := testCatalog()
	require.Equal(t, 4, c.Len())

	var ids []int64
	for _, cat := range c.Categories() {
		ids = append(ids, cat.ID)
	}
	assert.Equal(t, []int64{1, 4, 6, 9}, ids)

	expenses := c.ByType(TypeExpense)
	require.Len(t, expenses, 2)
	assert.Equal(t, int64(6), expenses[0].ID)

	cat, ok := c.Get(4)
	require.True(t, ok)
	assert.Equal(t, "Other Income", cat.Name)
	_, ok = c.Get(99)
	assert.False(t, ok)
}

func TestCatalog_IsImmutable(t *testing.T) {
	source := []Category{{ID: 1, Name: "Salary", Type: TypeIncome}}
	c := NewCatalog(source)
	source[0].Name = "changed"

	got := c.Categories()
	got[0].Name = "also changed"

	cat, _ := c.Get(1)
	assert.Equal(t, "Salary", cat.Name)
}

func TestCatalog_FindByName(t *testing.T) {
	c := testCatalog()
	cat, ok := c.FindByName(TypeExpense, "shopping")
	require.True(t, ok)
	assert.Equal(t, int64(9), cat.ID)

	_, ok = c.FindByName(TypeIncome, "shopping")
	assert.False(t, ok)
}

func TestParsedTransaction_SignedAmount(t *testing.T) {
	income := mustBuild(t, NewTransactionBuilder().WithDate("2024/01/01").WithAmountFromString("200").AsIncome())
	expense := mustBuild(t, NewTransactionBuilder().WithDate("2024/01/01").WithAmountFromString("50.25"))

	assert.True(t, income.SignedAmount().Equal(decimal.NewFromInt(200)))
	assert.True(t, expense.SignedAmount().Equal(decimal.RequireFromString("-50.25")))
	assert.True(t, expense.IsExpense())
	assert.False(t, income.IsExpense())
}

func TestParsedTransaction_DuplicateKeyNormalizesAmount(t *testing.T) {
	a := mustBuild(t, NewTransactionBuilder().WithDate("2024/01/15").WithAmountFromString("500.00").WithDescription("Rent"))
	b := mustBuild(t, NewTransactionBuilder().WithDate("2024-01-15").WithAmountFromString("500").WithDescription("Rent"))
	c := mustBuild(t, NewTransactionBuilder().WithDate("2024-01-15").WithAmountFromString("500").WithDescription("rent"))

	assert.Equal(t, a.DuplicateKey(), b.DuplicateKey())
	assert.NotEqual(t, a.DuplicateKey(), c.DuplicateKey())
}

func TestParsedTransaction_CategorizationAccount(t *testing.T) {
	tx := mustBuild(t, NewTransactionBuilder().WithDate("2024/01/01").WithPostings("Assets:Bank", "Income:Salary").AsIncome())
	assert.Equal(t, "Income:Salary", tx.CategorizationAccount())

	tx.Type = TypeExpense
	assert.Equal(t, "Assets:Bank", tx.CategorizationAccount())
}

func mustBuild(t *testing.T, b *TransactionBuilder) ParsedTransaction {
	t.Helper()
	tx, err := b.Build()
	require.NoError(t, err)
	return tx
}

func TestTransactionBuilder_Errors(t *testing.T) {
	_, err := NewTransactionBuilder().WithDate("15.01.2024").Build()
	assert.ErrorContains(t, err, "invalid date")

	_, err = NewTransactionBuilder().WithDate("2024/01/15").WithAmount(decimal.NewFromInt(-1)).Build()
	assert.Error(t, err)

	_, err = NewTransactionBuilder().WithAmountFromString("abc").Build()
	assert.Error(t, err)

	_, err = NewTransactionBuilder().Build()
	assert.EqualError(t, err, "date is required")

	_, err = NewTransactionBuilder().WithDateFromTime(time.Time{}).Build()
	assert.Error(t, err)

	_, err = NewTransactionBuilder().WithDate("2024/01/15").WithAmountFromString("10.005").Build()
	assert.ErrorContains(t, err, "more than 2 decimal places")

	_, err = NewTransactionBuilder().WithDate("2024/01/15").WithType(TypeTransfer).Build()
	assert.ErrorContains(t, err, `transaction type "transfer" is not allowed`)
}

func TestTransactionBuilder_WithType(t *testing.T) {
	income := mustBuild(t, NewTransactionBuilder().WithDate("2024/01/15").WithType(TypeIncome))
	assert.Equal(t, TypeIncome, income.Type)

	tenFifty := mustBuild(t, NewTransactionBuilder().WithDate("2024/01/15").WithAmountFromString("10.500"))
	assert.Equal(t, "10.50", tenFifty.Amount.StringFixed(2))
}

func TestNewTransactionRecord(t *testing.T) {
	account := Account{ID: 3, UserID: 7, Name: "HDFC", Balance: decimal.NewFromInt(100)}
	tx := mustBuild(t, NewTransactionBuilder().
		WithDate("2024/01/15").
		WithDescription("Grocery Run").
		WithAmountFromString("500.00").
		WithPostings("Expenses:Food & Dining", "Assets:Banking:HDFC").
		WithCategory(6, 0.4))

	rec := NewTransactionRecord(account, tx, SourceImport, "batch-1")
	assert.Equal(t, int64(7), rec.UserID)
	assert.Equal(t, int64(3), rec.AccountID)
	assert.Equal(t, int64(6), rec.CategoryID)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("-500")))
	assert.Equal(t, "import", rec.Source)
	assert.Equal(t, "batch-1", rec.BatchID)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]ValidationOutcome{
		{Status: StatusProcessable},
		{Status: StatusProcessable},
		{Status: StatusDuplicateInBatch},
		{Status: StatusExistingInStore},
		{Status: StatusUnprocessable},
	})
	assert.Equal(t, VerificationSummary{TotalEntries: 5, Repeated: 1, ExistingInDB: 1, Processable: 2, Unprocessable: 1}, s)
}

func TestProcessingResult_Message(t *testing.T) {
	tx := mustBuild(t, NewTransactionBuilder().WithDate("2024/01/01").WithAmountFromString("10"))

	r := NewProcessingResult("b", decimal.Zero)
	assert.Equal(t, "File processing completed. No transactions found.", r.Message())

	r.AddSuccess(tx, 1)
	assert.Equal(t, "All 1 transactions processed successfully.", r.Message())

	r.AddFailure(tx, "nope")
	assert.Equal(t, "Partially successful. 1 transactions processed, 1 failed.", r.Message())
	assert.Equal(t, 2, r.TotalProcessed)
	assert.True(t, r.Successful[0].ProcessedAmount.Equal(decimal.NewFromInt(-10)))

	failed := NewProcessingResult("b", decimal.Zero)
	failed.AddFailure(tx, "nope")
	assert.Equal(t, "Processing failed. All 1 transactions failed.", failed.Message())
}
