package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParsedTransaction is one two-posting entry read from a ledger file.
type ParsedTransaction struct {
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	DebitAccount  string          `json:"debit_account"`
	CreditAccount string          `json:"credit_account"`
	CategoryID    int64           `json:"category_id"`
	Confidence    float64         `json:"confidence"`
}

// SignedAmount returns the balance effect: +amount for income, -amount otherwise.
func (t ParsedTransaction) SignedAmount() decimal.Decimal {
	if t.Type == TypeIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}

// IsExpense reports whether the transaction must keep the balance non-negative.
func (t ParsedTransaction) IsExpense() bool {
	return t.Type == TypeExpense
}

// DuplicateKey identifies a transaction inside one batch: exact date, amount and description.
func (t ParsedTransaction) DuplicateKey() string {
	return t.Date.Format(DateLayout) + "_" + t.Amount.String() + "_" + t.Description
}

// CategorizationAccount is the posting used to categorize the transaction:
// the income-side account for income, the expense-side account otherwise.
func (t ParsedTransaction) CategorizationAccount() string {
	if t.Type == TypeIncome {
		return t.CreditAccount
	}
	return t.DebitAccount
}

// TransactionRecord is the row persisted for each committed transaction.
type TransactionRecord struct {
	UserID        int64
	AccountID     int64
	CategoryID    int64
	Date          time.Time
	Description   string
	Amount        decimal.Decimal // signed
	Type          TransactionType
	DebitAccount  string
	CreditAccount string
	Source        string
	BatchID       string
}

// NewTransactionRecord builds the row for tx committed against account.
func NewTransactionRecord(account Account, tx ParsedTransaction, source, batchID string) TransactionRecord {
	return TransactionRecord{
		UserID:        account.UserID,
		AccountID:     account.ID,
		CategoryID:    tx.CategoryID,
		Date:          tx.Date,
		Description:   tx.Description,
		Amount:        tx.SignedAmount(),
		Type:          tx.Type,
		DebitAccount:  tx.DebitAccount,
		CreditAccount: tx.CreditAccount,
		Source:        source,
		BatchID:       batchID,
	}
}

// StoredTransaction is a persisted transaction joined with its category and account.
type StoredTransaction struct {
	ID            int64
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	Type          TransactionType
	DebitAccount  string
	CreditAccount string
	CategoryID    int64
	CategoryName  string
	AccountName   string
	Source        string
	BatchID       string
}
