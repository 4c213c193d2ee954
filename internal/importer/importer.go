// Package importer is the entry point of the ledger ingestion pipeline. It
// wires parsing, categorization, validation, commit and export over one store.
package importer

import (
	"context"
	"fmt"
	"io"
	"time"

	"fjacquet/ledger-import/internal/categorizer"
	"fjacquet/ledger-import/internal/committer"
	"fjacquet/ledger-import/internal/fileutils"
	"fjacquet/ledger-import/internal/ledgerexport"
	"fjacquet/ledger-import/internal/ledgerparser"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/store"
	"fjacquet/ledger-import/internal/validation"

	"github.com/shopspring/decimal"
)

// Options configures a Service. An empty Source tags rows "import".
type Options struct {
	Categorization categorizer.Options
	Source         string
	ExportWidth    int
	CurrencySymbol string
}

// DefaultOptions returns the standard options.
func DefaultOptions() Options {
	return Options{
		Categorization: categorizer.DefaultOptions(),
		Source:         models.SourceImport,
		ExportWidth:    ledgerexport.DefaultWidth,
	}
}

// Service runs the pipeline against a store.
type Service struct {
	store     store.Store
	opts      Options
	validator *validation.Validator
	committer *committer.Committer
	exporter  *ledgerexport.Exporter
	logger    logging.Logger
}

// NewService creates a service over s.
func NewService(s store.Store, opts Options, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Service{
		store:     s,
		opts:      opts,
		validator: validation.NewValidator(s, logger),
		committer: committer.New(s, opts.Source, logger),
		exporter:  ledgerexport.NewExporter(s, opts.ExportWidth, opts.CurrencySymbol, logger),
		logger:    logger,
	}
}

// Matcher loads the current catalog from the store and returns a matcher over it.
func (s *Service) Matcher(ctx context.Context) (*categorizer.Matcher, error) {
	m, err := categorizer.LoadMatcher(ctx, s.store, s.opts.Categorization, s.logger)
	if err != nil {
		return nil, err
	}
	if m.Catalog().Len() == 0 {
		s.logger.Warn("Category catalog is empty, transactions will be left uncategorized")
	}
	return m, nil
}

// Parse reads ledger text from r and categorizes every transaction.
func (s *Service) Parse(ctx context.Context, r io.Reader) ([]models.ParsedTransaction, error) {
	m, err := s.Matcher(ctx)
	if err != nil {
		return nil, err
	}
	return ledgerparser.NewParser(m, s.logger).Parse(r)
}

// ParseFile validates and parses a .ledger file.
func (s *Service) ParseFile(ctx context.Context, path string) ([]models.ParsedTransaction, error) {
	if err := validation.ValidateLedgerFile(path); err != nil {
		return nil, err
	}
	f, err := fileutils.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	txs, err := s.Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return txs, nil
}

// Match categorizes a single description against the current catalog.
func (s *Service) Match(ctx context.Context, description, accountHint string, t models.TransactionType) (models.MatchResult, error) {
	m, err := s.Matcher(ctx)
	if err != nil {
		return models.MatchResult{}, err
	}
	return m.Match(description, accountHint, t), nil
}

// ValidateBatch classifies txs against startingBalance without reading the store.
func (s *Service) ValidateBatch(txs []models.ParsedTransaction, startingBalance decimal.Decimal) []models.ValidationOutcome {
	return validation.ValidateBatch(txs, startingBalance)
}

// Verify dry-runs txs against the user's stored account.
func (s *Service) Verify(ctx context.Context, userID int64, txs []models.ParsedTransaction) (models.VerificationReport, error) {
	return s.validator.Verify(ctx, userID, txs)
}

// Upload commits txs to the user's account.
func (s *Service) Upload(ctx context.Context, userID int64, txs []models.ParsedTransaction) (*models.ProcessingResult, error) {
	return s.committer.Commit(ctx, userID, txs)
}

// Export writes the user's transactions in [from, to] as ledger text.
func (s *Service) Export(ctx context.Context, userID int64, from, to time.Time, w io.Writer) (int, error) {
	return s.exporter.Export(ctx, userID, from, to, w)
}
