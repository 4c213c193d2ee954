package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OutcomeStatus is the commit status of a single transaction.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
)

// TransactionOutcome is the per-transaction commit result.
type TransactionOutcome struct {
	Transaction     ParsedTransaction `json:"transaction"`
	Status          OutcomeStatus     `json:"status"`
	ProcessedAmount decimal.Decimal   `json:"processed_amount"`
	RecordID        int64             `json:"record_id,omitempty"`
	Error           string            `json:"error,omitempty"`
}

// ProcessingResult summarizes one committed batch.
type ProcessingResult struct {
	BatchID         string               `json:"batch_id"`
	Successful      []TransactionOutcome `json:"successful"`
	Failed          []TransactionOutcome `json:"failed"`
	TotalProcessed  int                  `json:"total_processed"`
	TotalSuccess    int                  `json:"total_success"`
	TotalFailed     int                  `json:"total_failed"`
	StartingBalance decimal.Decimal      `json:"starting_balance"`
	FinalBalance    decimal.Decimal      `json:"final_balance"`
}

// NewProcessingResult returns an empty result with non-nil outcome slices.
func NewProcessingResult(batchID string, startingBalance decimal.Decimal) *ProcessingResult {
	return &ProcessingResult{
		BatchID:         batchID,
		Successful:      []TransactionOutcome{},
		Failed:          []TransactionOutcome{},
		StartingBalance: startingBalance,
		FinalBalance:    startingBalance,
	}
}

// AddSuccess records a committed transaction.
func (r *ProcessingResult) AddSuccess(tx ParsedTransaction, recordID int64) {
	r.TotalProcessed++
	r.TotalSuccess++
	r.Successful = append(r.Successful, TransactionOutcome{
		Transaction:     tx,
		Status:          OutcomeSuccess,
		ProcessedAmount: tx.SignedAmount(),
		RecordID:        recordID,
	})
}

// AddFailure records a transaction that was not committed.
func (r *ProcessingResult) AddFailure(tx ParsedTransaction, reason string) {
	r.TotalProcessed++
	r.TotalFailed++
	r.Failed = append(r.Failed, TransactionOutcome{
		Transaction: tx,
		Status:      OutcomeFailed,
		Error:       reason,
	})
}

// Message returns the human summary shown after an upload.
func (r *ProcessingResult) Message() string {
	switch {
	case r.TotalSuccess > 0 && r.TotalFailed > 0:
		return fmt.Sprintf("Partially successful. %d transactions processed, %d failed.", r.TotalSuccess, r.TotalFailed)
	case r.TotalSuccess > 0:
		return fmt.Sprintf("All %d transactions processed successfully.", r.TotalSuccess)
	case r.TotalProcessed == 0:
		return "File processing completed. No transactions found."
	default:
		return fmt.Sprintf("Processing failed. All %d transactions failed.", r.TotalFailed)
	}
}
