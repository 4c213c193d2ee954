// Package ledgerexport renders stored transactions back into ledger text.
package ledgerexport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"fjacquet/ledger-import/internal/currencyutils"
	"fjacquet/ledger-import/internal/dateutils"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/store"
)

const (
	// DefaultWidth is the column the amount is right-aligned to.
	DefaultWidth = 80

	postingIndent = "    "
	minGap        = 2 // the parser splits account from amount on two spaces

	cashDepositPrefix     = "cash deposit"
	cashDepositCredit     = "Income:Deposit"
	cashDepositBankPrefix = "Assets:Banking:"
)

// Lister reads stored transactions.
type Lister interface {
	ListTransactions(ctx context.Context, userID int64, from, to time.Time) ([]models.StoredTransaction, error)
}

// Exporter writes a user's transactions as a ledger file.
type Exporter struct {
	lister Lister
	width  int
	symbol string
	logger logging.Logger
}

// NewExporter creates an exporter. A non-positive width selects DefaultWidth
// and an empty symbol selects the rupee sign.
func NewExporter(lister Lister, width int, symbol string, logger logging.Logger) *Exporter {
	if width <= 0 {
		width = DefaultWidth
	}
	if symbol == "" {
		symbol = currencyutils.DefaultSymbol
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Exporter{lister: lister, width: width, symbol: symbol, logger: logger}
}

// Export writes every transaction of userID dated within [from, to] to w and
// returns how many were written. An empty range yields store.ErrNoTransactions.
func (e *Exporter) Export(ctx context.Context, userID int64, from, to time.Time, w io.Writer) (int, error) {
	txs, err := e.lister.ListTransactions(ctx, userID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	if len(txs) == 0 {
		return 0, fmt.Errorf("%s to %s: %w", dateutils.ToISODate(from), dateutils.ToISODate(to), store.ErrNoTransactions)
	}

	if err := e.Render(w, txs); err != nil {
		return 0, err
	}

	e.logger.Info("Exported ledger",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldCount, len(txs)))
	return len(txs), nil
}

// Render writes txs in order, each entry followed by a blank line.
func (e *Exporter) Render(w io.Writer, txs []models.StoredTransaction) error {
	bw := bufio.NewWriter(w)
	for _, tx := range txs {
		if _, err := bw.WriteString(e.FormatEntry(tx)); err != nil {
			return fmt.Errorf("failed to write ledger entry: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	return nil
}

// FormatEntry renders one transaction: the header, the debit posting with the
// amount right-aligned to the exporter width, the credit posting and a blank line.
func (e *Exporter) FormatEntry(tx models.StoredTransaction) string {
	debit, credit := tx.DebitAccount, tx.CreditAccount
	if strings.HasPrefix(strings.ToLower(tx.Description), cashDepositPrefix) {
		debit = cashDepositBankPrefix + tx.AccountName
		credit = cashDepositCredit
	}

	amount := currencyutils.FormatAmount(tx.Amount.Abs(), e.symbol)
	first := postingIndent + debit

	var b strings.Builder
	b.WriteString(dateutils.FormatLedgerDate(tx.Date))
	b.WriteByte(' ')
	b.WriteString(tx.Description)
	b.WriteByte('\n')
	b.WriteString(first)
	b.WriteString(strings.Repeat(" ", e.padding(first, amount)))
	b.WriteString(amount)
	b.WriteByte('\n')
	b.WriteString(postingIndent)
	b.WriteString(credit)
	b.WriteString("\n\n")
	return b.String()
}

func (e *Exporter) padding(line, amount string) int {
	gap := e.width - utf8.RuneCountInString(line) - utf8.RuneCountInString(amount)
	if gap < minGap {
		return minGap
	}
	return gap
}
