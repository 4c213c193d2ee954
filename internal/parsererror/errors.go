// Package parsererror defines the typed errors of the ledger ingestion pipeline.
package parsererror

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseError represents a malformed ledger line. Such lines are dropped and
// logged; the error never aborts a parse.
type ParseError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: failed to parse %s='%s': %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents an uploaded file rejected before parsing.
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}

// InsufficientBalanceError reports an expense that would take the balance below zero.
type InsufficientBalanceError struct {
	Description string
	Required    decimal.Decimal
	Available   decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Insufficient balance for transaction: %s. Required: %s, Available: %s",
		e.Description, e.Required.StringFixed(2), e.Available.StringFixed(2))
}

// ValidationMessage is the wording used by the dry-run validator.
func (e *InsufficientBalanceError) ValidationMessage() string {
	return fmt.Sprintf("Insufficient balance for expense. Required: %s, Available: %s",
		e.Required.StringFixed(2), e.Available.StringFixed(2))
}

// StoreError wraps a persistence failure. It aborts the current atomic unit.
type StoreError struct {
	Operation string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err, or returns nil when err is nil.
func NewStoreError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Operation: operation, Err: err}
}
