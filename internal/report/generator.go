// Package report renders parse, verification and upload results as JSON or CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"

	"github.com/gocarina/gocsv"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// TransactionRow is the CSV shape of a parsed transaction.
type TransactionRow struct {
	Date          string `csv:"date"`
	Description   string `csv:"description"`
	Type          string `csv:"type"`
	Amount        string `csv:"amount"`
	DebitAccount  string `csv:"debit_account"`
	CreditAccount string `csv:"credit_account"`
	CategoryID    int64  `csv:"category_id"`
	Confidence    string `csv:"confidence"`
}

// OutcomeRow is the CSV shape of a validation outcome.
type OutcomeRow struct {
	Index            int    `csv:"index"`
	Date             string `csv:"date"`
	Description      string `csv:"description"`
	Type             string `csv:"type"`
	Amount           string `csv:"amount"`
	Status           string `csv:"status"`
	Message          string `csv:"validation_message"`
	DuplicateOf      int    `csv:"duplicate_of"`
	ProjectedBalance string `csv:"projected_balance"`
}

// ResultRow is the CSV shape of a committed or failed transaction.
type ResultRow struct {
	Date            string `csv:"date"`
	Description     string `csv:"description"`
	Type            string `csv:"type"`
	Amount          string `csv:"amount"`
	Status          string `csv:"status"`
	ProcessedAmount string `csv:"processed_amount"`
	RecordID        int64  `csv:"record_id"`
	Error           string `csv:"error"`
}

// CategoryRow is the CSV shape of a catalog entry.
type CategoryRow struct {
	ID          int64  `csv:"id"`
	Type        string `csv:"type"`
	Name        string `csv:"name"`
	Description string `csv:"description"`
}

// AccountRow is the CSV shape of a bank account.
type AccountRow struct {
	ID       int64  `csv:"id"`
	UserID   int64  `csv:"user_id"`
	Name     string `csv:"account_name"`
	Balance  string `csv:"current_balance"`
	Currency string `csv:"currency"`
}

// MatchRow is one categorization answer.
type MatchRow struct {
	Description  string  `json:"description" csv:"description"`
	Type         string  `json:"type" csv:"type"`
	CategoryID   int64   `json:"category_id" csv:"category_id"`
	CategoryName string  `json:"category_name" csv:"category_name"`
	Confidence   float64 `json:"confidence" csv:"confidence"`
}

// Generator writes reports in a fixed format.
type Generator struct {
	format string
	logger logging.Logger
}

// NewGenerator creates a generator for format (json or csv).
func NewGenerator(format string, logger logging.Logger) (*Generator, error) {
	switch format {
	case FormatJSON, FormatCSV:
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Generator{format: format, logger: logger}, nil
}

// Format returns the generator's output format.
func (g *Generator) Format() string {
	return g.format
}

// WriteTransactions writes a parsed batch.
func (g *Generator) WriteTransactions(w io.Writer, txs []models.ParsedTransaction) error {
	if g.format == FormatJSON {
		return g.writeJSON(w, txs)
	}
	rows := make([]TransactionRow, len(txs))
	for i, tx := range txs {
		rows[i] = TransactionRow{
			Date:          tx.Date.Format(models.DateLayout),
			Description:   tx.Description,
			Type:          string(tx.Type),
			Amount:        tx.Amount.StringFixed(2),
			DebitAccount:  tx.DebitAccount,
			CreditAccount: tx.CreditAccount,
			CategoryID:    tx.CategoryID,
			Confidence:    strconv.FormatFloat(tx.Confidence, 'f', 4, 64),
		}
	}
	return g.writeCSV(w, &rows)
}

// WriteVerification writes a dry-run report. The CSV form carries the
// per-transaction outcomes only.
func (g *Generator) WriteVerification(w io.Writer, report models.VerificationReport) error {
	if g.format == FormatJSON {
		return g.writeJSON(w, report)
	}
	rows := make([]OutcomeRow, len(report.Outcomes))
	for i, o := range report.Outcomes {
		rows[i] = OutcomeRow{
			Index:       o.Index,
			Date:        o.Transaction.Date.Format(models.DateLayout),
			Description: o.Transaction.Description,
			Type:        string(o.Transaction.Type),
			Amount:      o.Transaction.Amount.StringFixed(2),
			Status:      string(o.Status),
			Message:     o.Message,
			DuplicateOf: o.DuplicateOf,
		}
		if o.Status == models.StatusProcessable {
			rows[i].ProjectedBalance = o.ProjectedBalance.StringFixed(2)
		}
	}
	return g.writeCSV(w, &rows)
}

// WriteResult writes an upload result, successes first.
func (g *Generator) WriteResult(w io.Writer, result *models.ProcessingResult) error {
	if g.format == FormatJSON {
		return g.writeJSON(w, struct {
			Message string `json:"message"`
			*models.ProcessingResult
		}{result.Message(), result})
	}
	rows := make([]ResultRow, 0, result.TotalProcessed)
	for _, list := range [][]models.TransactionOutcome{result.Successful, result.Failed} {
		for _, o := range list {
			row := ResultRow{
				Date:        o.Transaction.Date.Format(models.DateLayout),
				Description: o.Transaction.Description,
				Type:        string(o.Transaction.Type),
				Amount:      o.Transaction.Amount.StringFixed(2),
				Status:      string(o.Status),
				RecordID:    o.RecordID,
				Error:       o.Error,
			}
			if o.Status == models.OutcomeSuccess {
				row.ProcessedAmount = o.ProcessedAmount.StringFixed(2)
			}
			rows = append(rows, row)
		}
	}
	return g.writeCSV(w, &rows)
}

// WriteCategories writes the catalog.
func (g *Generator) WriteCategories(w io.Writer, categories []models.Category) error {
	if g.format == FormatJSON {
		return g.writeJSON(w, categories)
	}
	rows := make([]CategoryRow, len(categories))
	for i, c := range categories {
		rows[i] = CategoryRow{ID: c.ID, Type: string(c.Type), Name: c.Name, Description: c.Description}
	}
	return g.writeCSV(w, &rows)
}

// WriteAccount writes a single account.
func (g *Generator) WriteAccount(w io.Writer, account models.Account) error {
	if g.format == FormatJSON {
		return g.writeJSON(w, account)
	}
	rows := []AccountRow{{
		ID:       account.ID,
		UserID:   account.UserID,
		Name:     account.Name,
		Balance:  account.Balance.StringFixed(2),
		Currency: account.Currency,
	}}
	return g.writeCSV(w, &rows)
}

// WriteMatch writes a categorization answer.
func (g *Generator) WriteMatch(w io.Writer, match MatchRow) error {
	if g.format == FormatJSON {
		return g.writeJSON(w, match)
	}
	rows := []MatchRow{match}
	return g.writeCSV(w, &rows)
}

func (g *Generator) writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return nil
}

func (g *Generator) writeCSV(w io.Writer, rows any) error {
	csvWriter := csv.NewWriter(w)
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		g.logger.WithError(err).Error("Failed to marshal CSV report")
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// ReadTransactions loads a batch previously written by WriteTransactions in
// CSV form, so categories can be reviewed by hand before upload.
func ReadTransactions(r io.Reader) ([]models.ParsedTransaction, error) {
	var rows []TransactionRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("error reading CSV data: %w", err)
	}

	txs := make([]models.ParsedTransaction, 0, len(rows))
	for i, row := range rows {
		line := i + 2 // header is line 1
		typ, err := models.ParseTransactionType(row.Type)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var confidence float64
		if row.Confidence != "" {
			if confidence, err = strconv.ParseFloat(row.Confidence, 64); err != nil {
				return nil, fmt.Errorf("line %d: invalid confidence %q: %w", line, row.Confidence, err)
			}
		}

		tx, err := models.NewTransactionBuilder().
			WithDate(row.Date).
			WithDescription(row.Description).
			WithType(typ).
			WithAmountFromString(row.Amount).
			WithPostings(row.DebitAccount, row.CreditAccount).
			WithCategory(row.CategoryID, confidence).
			Build()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
