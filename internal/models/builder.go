package models

import (
	"errors"
	"fmt"
	"time"

	"fjacquet/ledger-import/internal/currencyutils"
	"fjacquet/ledger-import/internal/dateutils"

	"github.com/shopspring/decimal"
)

// TransactionBuilder provides a fluent API for constructing parsed transactions.
type TransactionBuilder struct {
	tx  ParsedTransaction
	err error
}

// NewTransactionBuilder creates a builder defaulting to an expense of zero.
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{
		tx: ParsedTransaction{
			Type:   TypeExpense,
			Amount: decimal.Zero,
		},
	}
}

// WithDate sets the date from a YYYY/MM/DD or YYYY-MM-DD string.
func (b *TransactionBuilder) WithDate(dateStr string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	d, err := dateutils.ParseLedgerDate(dateStr)
	if err != nil {
		b.err = fmt.Errorf("invalid date %q: %w", dateStr, err)
		return b
	}
	b.tx.Date = d
	return b
}

// WithDateFromTime sets the date, dropping the clock part.
func (b *TransactionBuilder) WithDateFromTime(date time.Time) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if date.IsZero() {
		b.err = errors.New("date cannot be zero")
		return b
	}
	b.tx.Date = dateutils.TruncateToDay(date)
	return b
}

// WithDescription sets the description.
func (b *TransactionBuilder) WithDescription(description string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Description = description
	return b
}

// WithAmount sets the amount.
func (b *TransactionBuilder) WithAmount(amount decimal.Decimal) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if amount.IsNegative() {
		b.err = fmt.Errorf("amount must be non-negative, got %s", amount)
		return b
	}
	if err := currencyutils.CheckPrecision(amount); err != nil {
		b.err = err
		return b
	}
	b.tx.Amount = amount
	return b
}

// WithAmountFromString sets the amount from a plain decimal string.
func (b *TransactionBuilder) WithAmountFromString(amountStr string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		b.err = fmt.Errorf("invalid amount %q: %w", amountStr, err)
		return b
	}
	return b.WithAmount(amount)
}

// WithPostings sets the debit (first) and credit (second) posting accounts.
func (b *TransactionBuilder) WithPostings(debit, credit string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.DebitAccount = debit
	b.tx.CreditAccount = credit
	return b
}

// WithCategory sets the category id and match confidence.
func (b *TransactionBuilder) WithCategory(id int64, confidence float64) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.CategoryID = id
	b.tx.Confidence = confidence
	return b
}

// WithType sets the type. Only income and expense move a bank balance the
// pipeline can check, so any other type is an error.
func (b *TransactionBuilder) WithType(t TransactionType) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	switch t {
	case TypeIncome, TypeExpense:
		b.tx.Type = t
	default:
		b.err = fmt.Errorf("transaction type %q is not allowed in a batch (expected income or expense)", t)
	}
	return b
}

// AsIncome marks the transaction as income.
func (b *TransactionBuilder) AsIncome() *TransactionBuilder {
	b.tx.Type = TypeIncome
	return b
}

// AsExpense marks the transaction as an expense.
func (b *TransactionBuilder) AsExpense() *TransactionBuilder {
	b.tx.Type = TypeExpense
	return b
}

// Build returns the transaction or the first error recorded.
func (b *TransactionBuilder) Build() (ParsedTransaction, error) {
	if b.err != nil {
		return ParsedTransaction{}, b.err
	}
	if b.tx.Date.IsZero() {
		return ParsedTransaction{}, errors.New("date is required")
	}
	return b.tx, nil
}
