// Package ledgerparser reads plain-text double-entry ledger files.
//
// A transaction is a header line starting with a date followed by indented
// posting lines:
//
//	2024/01/15 Swiggy order
//	    Expenses:Food                 ₹450.00
//	    Assets:Bank:Checking
//
// Only transactions with exactly two postings are emitted.
package ledgerparser

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"fjacquet/ledger-import/internal/categorizer"
	"fjacquet/ledger-import/internal/currencyutils"
	"fjacquet/ledger-import/internal/dateutils"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/parser"
	"fjacquet/ledger-import/internal/parsererror"
	"fjacquet/ledger-import/internal/textutils"

	"github.com/shopspring/decimal"
)

// maxLineLength bounds a single ledger line.
const maxLineLength = 1024 * 1024

type state int

const (
	awaitingHeader state = iota
	inPostings
)

// pending accumulates the header and postings of the transaction being read.
type pending struct {
	line        int
	date        time.Time
	description string
	accounts    []string
	amount      decimal.Decimal
	hasAmount   bool
}

// Parser parses ledger text and categorizes every transaction it emits.
type Parser struct {
	parser.BaseParser
	categorizer categorizer.Categorizer
}

var _ parser.Parser = (*Parser)(nil)

// NewParser creates a ledger parser that assigns categories with c.
func NewParser(c categorizer.Categorizer, logger logging.Logger) *Parser {
	return &Parser{
		BaseParser:  parser.NewBaseParser(logger),
		categorizer: c,
	}
}

// Parse reads r line by line. Blank lines never end a transaction; comments
// and directives are ignored; a header with an unreadable date is skipped
// together with its postings.
func (p *Parser) Parse(r io.Reader) ([]models.ParsedTransaction, error) {
	logger := p.GetLogger()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	var (
		transactions []models.ParsedTransaction
		current      *pending
		st           = awaitingHeader
		lineNo       int
		headers      int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		first, _ := utf8.DecodeRuneInString(line)
		switch {
		case unicode.IsDigit(first):
			headers++
			if current != nil {
				transactions = p.flush(transactions, current)
			}
			current = p.openHeader(line, lineNo)
			st = awaitingHeader
			if current != nil {
				st = inPostings
			}

		case unicode.IsSpace(first):
			if st != inPostings {
				continue
			}
			p.addPosting(current, line, lineNo)

		default:
			// comments (;, #, *) and directives
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger input at line %d: %w", lineNo, err)
	}

	if current != nil {
		transactions = p.flush(transactions, current)
	}

	logger.WithFields(
		logging.F(logging.FieldCount, len(transactions)),
		logging.F("headers", headers),
	).Info("Parsed ledger entries")
	return transactions, nil
}

func (p *Parser) openHeader(line string, lineNo int) *pending {
	datePart, rest := line, ""
	if len(line) >= dateutils.LedgerDateWidth {
		datePart, rest = line[:dateutils.LedgerDateWidth], line[dateutils.LedgerDateWidth:]
	}

	date, err := dateutils.ParseLedgerDate(datePart)
	if err != nil {
		perr := &parsererror.ParseError{Line: lineNo, Field: "date", Value: datePart, Err: err}
		p.GetLogger().WithError(perr).Warn("Skipping transaction with malformed header date",
			logging.F(logging.FieldLine, lineNo))
		return nil
	}

	return &pending{
		line:        lineNo,
		date:        date,
		description: strings.TrimSpace(rest),
	}
}

func (p *Parser) addPosting(tx *pending, line string, lineNo int) {
	fields := textutils.SplitFields(line)
	if len(fields) == 0 {
		return
	}
	tx.accounts = append(tx.accounts, fields[0])

	if len(fields) < 2 {
		return
	}
	raw := fields[len(fields)-1]
	amount, err := currencyutils.ParseAmount(raw)
	if err != nil {
		p.GetLogger().Debug("Ignoring unparsable posting amount",
			logging.F(logging.FieldLine, lineNo),
			logging.F(logging.FieldAmount, raw))
		return
	}
	tx.amount = amount
	tx.hasAmount = true
}

// flush appends tx to out when it is a complete two-posting transaction.
func (p *Parser) flush(out []models.ParsedTransaction, tx *pending) []models.ParsedTransaction {
	logger := p.GetLogger().WithFields(
		logging.F(logging.FieldLine, tx.line),
		logging.F(logging.FieldDescription, tx.description),
	)

	if len(tx.accounts) != 2 {
		logger.Debug("Dropping transaction without exactly two postings",
			logging.F(logging.FieldCount, len(tx.accounts)))
		return out
	}
	if !tx.hasAmount {
		logger.Warn("Dropping transaction without an amount")
		return out
	}

	b := models.NewTransactionBuilder().
		WithDateFromTime(tx.date).
		WithDescription(tx.description).
		WithAmount(tx.amount.Abs()).
		WithPostings(tx.accounts[0], tx.accounts[1])
	if strings.Contains(tx.accounts[1], models.IncomeAccountMarker) {
		b.AsIncome()
	} else {
		b.AsExpense()
	}

	parsed, err := b.Build()
	if err != nil {
		logger.WithError(err).Warn("Dropping malformed transaction")
		return out
	}
	match := p.categorizer.Match(parsed.Description, parsed.CategorizationAccount(), parsed.Type)
	parsed.CategoryID = match.CategoryID
	parsed.Confidence = match.Confidence

	return append(out, parsed)
}
