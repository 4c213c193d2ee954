package categorizer

import "fjacquet/ledger-import/internal/models"

// Categorizer assigns a category to a transaction text.
// The ledger parser depends on this interface rather than on *Matcher.
type Categorizer interface {
	// Match returns the best category for description and accountHint among
	// categories of type t. It never fails: when nothing clears the threshold
	// a fallback category is returned with zero confidence.
	Match(description, accountHint string, t models.TransactionType) models.MatchResult
}

var _ Categorizer = (*Matcher)(nil)
