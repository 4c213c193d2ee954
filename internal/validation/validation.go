// Package validation checks uploaded ledger files and dry-runs a parsed batch
// against an account before anything is committed.
package validation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"fjacquet/ledger-import/internal/currencyutils"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/parsererror"

	"github.com/shopspring/decimal"
)

// LedgerExtension is the only accepted upload extension.
const LedgerExtension = ".ledger"

// IsValidPath checks if a given path exists and is accessible.
func IsValidPath(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}

	if !info.IsDir() && !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is neither a file nor a directory", path)
	}

	return nil
}

// IsValidOutputFormat checks if the given report format is supported.
func IsValidOutputFormat(format string) error {
	switch format {
	case "json", "csv":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are 'json', 'csv'", format)
	}
}

// ValidateLedgerFile rejects anything that is not a readable UTF-8 .ledger file.
func ValidateLedgerFile(path string) error {
	if !strings.EqualFold(filepath.Ext(path), LedgerExtension) {
		return &parsererror.ValidationError{FilePath: path, Reason: "invalid file format, please upload a .ledger file"}
	}
	if err := IsValidPath(path); err != nil {
		return &parsererror.ValidationError{FilePath: path, Reason: err.Error()}
	}
	content, err := os.ReadFile(path) // #nosec G304 -- path is the user's own input file
	if err != nil {
		return &parsererror.ValidationError{FilePath: path, Reason: fmt.Sprintf("unable to read file: %v", err)}
	}
	if !utf8.Valid(content) {
		return &parsererror.ValidationError{FilePath: path, Reason: "unable to decode file, ensure it is UTF-8 encoded"}
	}
	return nil
}

// FindRepeated returns, for every transaction, the batch index of the first
// transaction with the same date, amount and description, or -1 when it is
// the first occurrence.
func FindRepeated(txs []models.ParsedTransaction) []int {
	firstSeen := make(map[string]int, len(txs))
	dups := make([]int, len(txs))
	for i, tx := range txs {
		key := tx.DuplicateKey()
		if first, ok := firstSeen[key]; ok {
			dups[i] = first
			continue
		}
		firstSeen[key] = i
		dups[i] = -1
	}
	return dups
}

// ApplyToBalance returns the balance after tx. An expense that would take the
// balance below zero is refused and current is returned unchanged.
func ApplyToBalance(current decimal.Decimal, tx models.ParsedTransaction) (decimal.Decimal, *parsererror.InsufficientBalanceError) {
	next := current.Add(tx.SignedAmount())
	if tx.IsExpense() && next.IsNegative() {
		return current, &parsererror.InsufficientBalanceError{
			Description: tx.Description,
			Required:    tx.Amount,
			Available:   current,
		}
	}
	return next, nil
}

// ValidateBatch classifies txs against startingBalance without touching a
// store: in-batch duplicates first, then the running-balance simulation.
func ValidateBatch(txs []models.ParsedTransaction, startingBalance decimal.Decimal) []models.ValidationOutcome {
	outcomes := newOutcomes(txs)
	simulateBalance(outcomes, startingBalance)
	return outcomes
}

func newOutcomes(txs []models.ParsedTransaction) []models.ValidationOutcome {
	dups := FindRepeated(txs)
	outcomes := make([]models.ValidationOutcome, len(txs))
	for i, tx := range txs {
		outcomes[i] = models.ValidationOutcome{Index: i, Transaction: tx, DuplicateOf: dups[i]}
		if dups[i] >= 0 {
			outcomes[i].Status = models.StatusDuplicateInBatch
			outcomes[i].Message = models.MessageDuplicateInBatch
		}
	}
	return outcomes
}

// simulateBalance settles every outcome without a status yet and returns the
// final running balance.
func simulateBalance(outcomes []models.ValidationOutcome, balance decimal.Decimal) decimal.Decimal {
	for i := range outcomes {
		o := &outcomes[i]
		if o.Status != "" {
			continue
		}
		if err := currencyutils.CheckPrecision(o.Transaction.Amount); err != nil {
			o.Status = models.StatusUnprocessable
			o.Message = err.Error()
			continue
		}
		next, insufficient := ApplyToBalance(balance, o.Transaction)
		if insufficient != nil {
			o.Status = models.StatusUnprocessable
			o.Message = insufficient.ValidationMessage()
			continue
		}
		balance = next
		o.Status = models.StatusProcessable
		o.Message = models.MessageProcessable
		o.ProjectedBalance = balance
	}
	return balance
}

// AccountReader is the part of the store the validator reads.
type AccountReader interface {
	LoadAccount(ctx context.Context, userID int64) (models.Account, error)
	TransactionExists(ctx context.Context, userID int64, date time.Time, amount decimal.Decimal) (bool, error)
}

// Validator dry-runs a batch against a user's stored account.
type Validator struct {
	store  AccountReader
	logger logging.Logger
}

// NewValidator creates a validator reading from store.
func NewValidator(store AccountReader, logger logging.Logger) *Validator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Validator{store: store, logger: logger}
}

// Verify classifies txs for userID: in-batch duplicates, rows that already
// exist in the store, then the running-balance simulation from the stored
// balance. Nothing is written.
func (v *Validator) Verify(ctx context.Context, userID int64, txs []models.ParsedTransaction) (models.VerificationReport, error) {
	account, err := v.store.LoadAccount(ctx, userID)
	if err != nil {
		return models.VerificationReport{}, fmt.Errorf("failed to load account for user %d: %w", userID, err)
	}

	outcomes := newOutcomes(txs)
	for i := range outcomes {
		o := &outcomes[i]
		if o.Status != "" {
			continue
		}
		exists, err := v.store.TransactionExists(ctx, userID, o.Transaction.Date, o.Transaction.Amount)
		if err != nil {
			return models.VerificationReport{}, fmt.Errorf("failed to check existing transactions: %w", err)
		}
		if exists {
			o.Status = models.StatusExistingInStore
			o.Message = models.MessageExistingInStore
		}
	}

	projected := simulateBalance(outcomes, account.Balance)
	report := models.VerificationReport{
		AccountName:      account.Name,
		CurrentBalance:   account.Balance,
		ProjectedBalance: projected,
		TotalImpact:      projected.Sub(account.Balance),
		Summary:          models.Summarize(outcomes),
		Outcomes:         outcomes,
	}

	v.logger.Info("Verified batch",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldCount, len(txs)),
		logging.F("processable", report.Summary.Processable),
		logging.F("repeated", report.Summary.Repeated),
		logging.F("existing", report.Summary.ExistingInDB),
		logging.F("unprocessable", report.Summary.Unprocessable))
	return report, nil
}
