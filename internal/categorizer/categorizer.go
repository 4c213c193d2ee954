// Package categorizer maps transaction text to a category of the catalog using
// word overlap between the text and per-category keyword sets.
//
// Keyword sets are built once from the category name, its description and a
// static synonym table. Matching is deterministic: the highest score wins, ties
// resolve to the lowest category id and anything under the threshold falls back
// to a designated catch-all category of the requested type.
package categorizer

import (
	"context"
	"fmt"

	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/textutils"
)

const (
	// DefaultThreshold is the minimum score a match must reach.
	DefaultThreshold = 0.2
	// DefaultKeyTermBonus is added per shared key financial term.
	DefaultKeyTermBonus = 0.1
)

// Options tunes the scoring.
type Options struct {
	Threshold    float64
	KeyTermBonus float64
}

// DefaultOptions returns the standard scoring options.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, KeyTermBonus: DefaultKeyTermBonus}
}

// Matcher scores transaction text against an immutable catalog.
type Matcher struct {
	catalog  models.Catalog
	keywords map[int64]map[string]struct{}
	opts     Options
	logger   logging.Logger
}

// NewMatcher builds the keyword sets for every category of catalog.
func NewMatcher(catalog models.Catalog, opts Options, logger logging.Logger) *Matcher {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if opts.Threshold < 0 {
		opts.Threshold = 0
	}
	if opts.KeyTermBonus < 0 {
		opts.KeyTermBonus = 0
	}

	m := &Matcher{
		catalog:  catalog,
		keywords: make(map[int64]map[string]struct{}, catalog.Len()),
		opts:     opts,
		logger:   logger,
	}
	for _, c := range catalog.Categories() {
		m.keywords[c.ID] = buildKeywords(c)
	}

	logger.WithFields(
		logging.F(logging.FieldComponent, "categorizer"),
		logging.F(logging.FieldCount, catalog.Len()),
	).Debug("Category matcher ready")
	return m
}

// LoadMatcher reads the catalog from src and builds a matcher over it.
// This is the only fallible step of categorization.
func LoadMatcher(ctx context.Context, src CategorySource, opts Options, logger logging.Logger) (*Matcher, error) {
	categories, err := src.LoadCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load category catalog: %w", err)
	}
	return NewMatcher(models.NewCatalog(categories), opts, logger), nil
}

func buildKeywords(c models.Category) map[string]struct{} {
	set := textutils.TokenSet(c.Name + " " + c.Description)
	for _, phrase := range synonymsFor(c.Name) {
		for _, tok := range textutils.Tokens(phrase) {
			set[tok] = struct{}{}
		}
	}
	return set
}

// Catalog returns the catalog the matcher was built from.
func (m *Matcher) Catalog() models.Catalog {
	return m.catalog
}

// Options returns the effective scoring options.
func (m *Matcher) Options() Options {
	return m.opts
}

// Match uses the configured threshold.
func (m *Matcher) Match(description, accountHint string, t models.TransactionType) models.MatchResult {
	return m.MatchWithThreshold(description, accountHint, t, m.opts.Threshold)
}

// MatchWithThreshold scores description and accountHint against every
// category of type t and returns the best one if it reaches threshold.
func (m *Matcher) MatchWithThreshold(description, accountHint string, t models.TransactionType, threshold float64) models.MatchResult {
	text := textutils.TokenSet(description + " " + accountHint)
	candidates := m.catalog.ByType(t)

	var best models.MatchResult
	for _, c := range candidates {
		score := m.score(text, m.keywords[c.ID])
		// candidates are in ascending id order, so strict > keeps the lowest id on ties
		if score > best.Confidence {
			best = models.MatchResult{CategoryID: c.ID, Confidence: score}
		}
	}

	if best.Confidence == 0 || best.Confidence < threshold {
		best = models.MatchResult{CategoryID: m.fallback(t, candidates)}
	}

	name := "Unknown"
	if c, ok := m.catalog.Get(best.CategoryID); ok {
		name = c.Name
	}
	m.logger.WithFields(
		logging.F(logging.FieldDescription, description),
		logging.F(logging.FieldCategory, name),
		logging.F(logging.FieldConfidence, best.Confidence),
	).Debug("Matched transaction to category")
	return best
}

func (m *Matcher) score(text, keywords map[string]struct{}) float64 {
	if len(keywords) == 0 || len(text) == 0 {
		return 0
	}

	overlap, keyHits := 0, 0
	for tok := range text {
		if _, ok := keywords[tok]; !ok {
			continue
		}
		overlap++
		if _, ok := keyTerms[tok]; ok {
			keyHits++
		}
	}
	if overlap == 0 {
		return 0
	}

	denom := len(text)
	if len(keywords) > denom {
		denom = len(keywords)
	}
	score := float64(overlap)/float64(denom) + float64(keyHits)*m.opts.KeyTermBonus
	if score > 1 {
		score = 1
	}
	return score
}

// fallback picks the catch-all category for t; 0 when t has no category at all.
func (m *Matcher) fallback(t models.TransactionType, candidates []models.Category) int64 {
	switch t {
	case models.TypeExpense:
		if c, ok := m.catalog.FindByName(t, models.CategoryOtherExpense); ok {
			return c.ID
		}
		if c, ok := m.catalog.FindByName(t, models.CategoryShopping); ok {
			return c.ID
		}
	case models.TypeIncome:
		if c, ok := m.catalog.FindByName(t, models.CategoryOtherIncome); ok {
			return c.ID
		}
	}
	if len(candidates) > 0 {
		return candidates[0].ID
	}
	return 0
}
