package models

import "github.com/shopspring/decimal"

// Account is a user's bank account; Balance is the only state the pipeline mutates.
type Account struct {
	ID       int64           `json:"id"`
	UserID   int64           `json:"user_id"`
	Name     string          `json:"account_name"`
	Balance  decimal.Decimal `json:"current_balance"`
	Currency string          `json:"currency"`
}
