package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBatch() []models.ParsedTransaction {
	return []models.ParsedTransaction{
		{
			Date:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Description:   "Grocery Run, weekly",
			Type:          models.TypeExpense,
			Amount:        decimal.RequireFromString("500"),
			DebitAccount:  "Expenses:Food & Dining",
			CreditAccount: "Assets:Banking:HDFC",
			CategoryID:    6,
			Confidence:    0.25,
		},
		{
			Date:          time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			Description:   "Salary",
			Type:          models.TypeIncome,
			Amount:        decimal.RequireFromString("50000.5"),
			DebitAccount:  "Assets:Banking:HDFC",
			CreditAccount: "Income:Salary",
			CategoryID:    1,
			Confidence:    1,
		},
	}
}

func newGenerator(t *testing.T, format string) *Generator {
	t.Helper()
	g, err := NewGenerator(format, logging.NewMockLogger())
	require.NoError(t, err)
	return g
}

func TestNewGenerator_RejectsUnknownFormat(t *testing.T) {
	_, err := NewGenerator("xml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format")
}

func TestWriteTransactions_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newGenerator(t, FormatCSV).WriteTransactions(&buf, sampleBatch()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,description,type,amount,debit_account,credit_account,category_id,confidence", lines[0])
	assert.Equal(t, `2024-01-15,"Grocery Run, weekly",expense,500.00,Expenses:Food & Dining,Assets:Banking:HDFC,6,0.2500`, lines[1])
	assert.Equal(t, "2024-01-31,Salary,income,50000.50,Assets:Banking:HDFC,Income:Salary,1,1.0000", lines[2])
}

func TestWriteTransactions_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newGenerator(t, FormatJSON).WriteTransactions(&buf, sampleBatch()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Grocery Run, weekly", decoded[0]["description"])
	assert.Equal(t, "500", decoded[0]["amount"])
	assert.Equal(t, float64(6), decoded[0]["category_id"])
}

func TestReadTransactions_RoundTripsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newGenerator(t, FormatCSV).WriteTransactions(&buf, sampleBatch()))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	want := sampleBatch()
	for i := range want {
		assert.True(t, want[i].Date.Equal(got[i].Date))
		assert.True(t, want[i].Amount.Equal(got[i].Amount))
		assert.Equal(t, want[i].Description, got[i].Description)
		assert.Equal(t, want[i].Type, got[i].Type)
		assert.Equal(t, want[i].CategoryID, got[i].CategoryID)
		assert.InDelta(t, want[i].Confidence, got[i].Confidence, 1e-9)
	}
}

func TestReadTransactions_Errors(t *testing.T) {
	header := "date,description,type,amount,debit_account,credit_account,category_id,confidence\n"
	tests := []struct {
		name    string
		row     string
		wantErr string
	}{
		{"bad date", "15/01/2024,x,expense,1,a,b,6,\n", "line 2: invalid date"},
		{"bad type", "2024-01-15,x,refund,1,a,b,6,\n", "unknown transaction type"},
		{"bad amount", "2024-01-15,x,expense,lots,a,b,6,\n", "invalid amount"},
		{"bad confidence", "2024-01-15,x,expense,1,a,b,6,high\n", "invalid confidence"},
		{"transfer", "2024-01-15,x,transfer,1000.00,a,b,15,\n", `line 2: transaction type "transfer" is not allowed`},
		{"sub-cent amount", "2024-01-15,x,expense,10.005,a,b,6,\n", "more than 2 decimal places"},
		{"negative amount", "2024-01-15,x,expense,-5,a,b,6,\n", "must be non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTransactions(strings.NewReader(header + tt.row))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteVerification(t *testing.T) {
	batch := sampleBatch()
	report := models.VerificationReport{
		AccountName:      "HDFC",
		CurrentBalance:   decimal.NewFromInt(1000),
		ProjectedBalance: decimal.NewFromInt(500),
		TotalImpact:      decimal.NewFromInt(-500),
		Outcomes: []models.ValidationOutcome{
			{Index: 0, Transaction: batch[0], Status: models.StatusProcessable, Message: models.MessageProcessable, DuplicateOf: -1, ProjectedBalance: decimal.NewFromInt(500)},
			{Index: 1, Transaction: batch[0], Status: models.StatusDuplicateInBatch, Message: models.MessageDuplicateInBatch, DuplicateOf: 0},
		},
	}
	report.Summary = models.Summarize(report.Outcomes)

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, newGenerator(t, FormatCSV).WriteVerification(&buf, report))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasSuffix(lines[1], "processable,Transaction is valid and can be processed,-1,500.00"), lines[1])
		assert.True(t, strings.HasSuffix(lines[2], "duplicate_in_batch,Duplicate entry found in uploaded file,0,"), lines[2])
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, newGenerator(t, FormatJSON).WriteVerification(&buf, report))
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "HDFC", decoded["account_name"])
		summary := decoded["validation_summary"].(map[string]any)
		assert.Equal(t, float64(1), summary["repeated_entries"])
	})
}

func TestWriteResult(t *testing.T) {
	batch := sampleBatch()
	result := models.NewProcessingResult("batch-1", decimal.NewFromInt(100))
	result.AddSuccess(batch[1], 7)
	result.AddFailure(batch[0], "Insufficient balance")

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, newGenerator(t, FormatCSV).WriteResult(&buf, result))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "date,description,type,amount,status,processed_amount,record_id,error", lines[0])
		assert.Equal(t, "2024-01-31,Salary,income,50000.50,success,50000.50,7,", lines[1])
		assert.Equal(t, `2024-01-15,"Grocery Run, weekly",expense,500.00,failed,,0,Insufficient balance`, lines[2])
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, newGenerator(t, FormatJSON).WriteResult(&buf, result))
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "Partially successful. 1 transactions processed, 1 failed.", decoded["message"])
		assert.Equal(t, "batch-1", decoded["batch_id"])
		assert.Equal(t, float64(1), decoded["total_failed"])
	})
}

func TestWriteCategories_CSV(t *testing.T) {
	var buf bytes.Buffer
	categories := []models.Category{
		{ID: 1, Name: "Salary", Type: models.TypeIncome},
		{ID: 6, Name: "Food & Dining", Type: models.TypeExpense, Description: "Groceries, restaurants"},
	}
	require.NoError(t, newGenerator(t, FormatCSV).WriteCategories(&buf, categories))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,type,name,description", lines[0])
	assert.Equal(t, "1,income,Salary,", lines[1])
	assert.Equal(t, `6,expense,Food & Dining,"Groceries, restaurants"`, lines[2])
}

func TestWriteAccount(t *testing.T) {
	account := models.Account{ID: 3, UserID: 42, Name: "HDFC", Balance: decimal.RequireFromString("1000.5"), Currency: "INR"}

	var csvBuf bytes.Buffer
	require.NoError(t, newGenerator(t, FormatCSV).WriteAccount(&csvBuf, account))
	assert.Equal(t, "id,user_id,account_name,current_balance,currency\n3,42,HDFC,1000.50,INR\n", csvBuf.String())

	var jsonBuf bytes.Buffer
	require.NoError(t, newGenerator(t, FormatJSON).WriteAccount(&jsonBuf, account))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))
	assert.Equal(t, "HDFC", decoded["account_name"])
	assert.Equal(t, "1000.5", decoded["current_balance"])
}

func TestWriteMatch_JSON(t *testing.T) {
	var buf bytes.Buffer
	match := MatchRow{Description: "swiggy order", Type: "expense", CategoryID: 6, CategoryName: "Food & Dining", Confidence: 0.2}
	require.NoError(t, newGenerator(t, FormatJSON).WriteMatch(&buf, match))

	var decoded MatchRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, match, decoded)
}
