// Package committer persists a parsed batch against a user's account in a
// single store transaction.
package committer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fjacquet/ledger-import/internal/currencyutils"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/store"
	"fjacquet/ledger-import/internal/validation"

	"github.com/google/uuid"
)

// MessageMissingCategory is the failure reason for a row with no category.
const MessageMissingCategory = "No category assigned to transaction"

// Committer writes batches through a store.Store.
type Committer struct {
	store  store.Store
	source string
	logger logging.Logger
	newID  func() string
}

// New creates a committer tagging rows with source ("import" when empty).
func New(s store.Store, source string, logger logging.Logger) *Committer {
	if source == "" {
		source = models.SourceImport
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Committer{store: s, source: source, logger: logger, newID: uuid.NewString}
}

// Commit applies txs in order against the user's account.
//
// The account is locked before its balance is read and stays locked until the
// unit ends. Rows with no category, rows that would overdraw the account and
// rows the store rejects are reported as failed; the remaining rows are
// inserted and the final balance is written once. When nothing succeeded the
// unit is rolled back. Any other store failure rolls back everything and is
// returned as an error.
func (c *Committer) Commit(ctx context.Context, userID int64, txs []models.ParsedTransaction) (*models.ProcessingResult, error) {
	start := time.Now()
	batchID := c.newID()
	logger := c.logger.WithFields(
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldBatchID, batchID))

	tx, err := c.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logger.WithError(rbErr).Warn("Rollback failed")
		}
	}()

	account, err := tx.LockAccount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account for user %d: %w", userID, err)
	}

	result := models.NewProcessingResult(batchID, account.Balance)
	balance := account.Balance

	for _, ptx := range txs {
		if ptx.CategoryID == 0 {
			c.fail(logger, result, ptx, MessageMissingCategory)
			continue
		}
		if err := currencyutils.CheckPrecision(ptx.Amount); err != nil {
			c.fail(logger, result, ptx, err.Error())
			continue
		}

		next, insufficient := validation.ApplyToBalance(balance, ptx)
		if insufficient != nil {
			c.fail(logger, result, ptx, insufficient.Error())
			continue
		}

		id, err := tx.InsertTransaction(ctx, models.NewTransactionRecord(account, ptx, c.source, batchID))
		if errors.Is(err, store.ErrRowRejected) {
			c.fail(logger, result, ptx, err.Error())
			continue
		}
		if err != nil {
			logger.WithError(err).Error("Batch aborted, rolling back")
			return nil, fmt.Errorf("failed to insert transaction %q: %w", ptx.Description, err)
		}

		balance = next
		result.AddSuccess(ptx, id)
	}

	if result.TotalSuccess == 0 {
		if err := tx.Rollback(ctx); err != nil {
			return nil, fmt.Errorf("failed to roll back: %w", err)
		}
		logger.Warn("No transactions were processed successfully, rolling back",
			logging.F(logging.FieldCount, result.TotalFailed))
		return result, nil
	}

	if err := tx.UpdateBalance(ctx, account.ID, balance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit batch: %w", err)
	}
	result.FinalBalance = balance

	logger.Info("Committed batch",
		logging.F(logging.FieldAccountID, account.ID),
		logging.F("successful", result.TotalSuccess),
		logging.F("failed", result.TotalFailed),
		logging.F(logging.FieldBalance, balance.StringFixed(2)),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return result, nil
}

func (c *Committer) fail(logger logging.Logger, result *models.ProcessingResult, tx models.ParsedTransaction, reason string) {
	logger.Error("Failed to process transaction",
		logging.F(logging.FieldDescription, tx.Description),
		logging.F(logging.FieldReason, reason))
	result.AddFailure(tx, reason)
}
