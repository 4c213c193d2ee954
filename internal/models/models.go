// Package models provides the data structures shared by the ledger ingestion pipeline.
package models

import (
	"fmt"
	"sort"
	"strings"
)

// TransactionType classifies categories and transactions.
type TransactionType string

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

// ParseTransactionType parses a case-insensitive transaction type.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeIncome:
		return TypeIncome, nil
	case TypeExpense:
		return TypeExpense, nil
	case TypeTransfer:
		return TypeTransfer, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q (expected income, expense or transfer)", s)
	}
}

// Category represents a reporting bucket for transactions.
type Category struct {
	ID          int64           `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Type        TransactionType `json:"type" yaml:"type"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
}

// CategoriesConfig represents the structure of the categories YAML file
type CategoriesConfig struct {
	Categories []Category `yaml:"categories"`
}

// Catalog is an immutable, id-ordered view of the category catalog.
// It is built once per pipeline run and handed to the matcher.
type Catalog struct {
	categories []Category
	byID       map[int64]int
}

// NewCatalog copies categories into a catalog ordered by ascending id.
func NewCatalog(categories []Category) Catalog {
	sorted := make([]Category, len(categories))
	copy(sorted, categories)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byID := make(map[int64]int, len(sorted))
	for i, c := range sorted {
		byID[c.ID] = i
	}
	return Catalog{categories: sorted, byID: byID}
}

// Categories returns a copy of the catalog entries in id order.
func (c Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Len returns the number of categories.
func (c Catalog) Len() int {
	return len(c.categories)
}

// Get returns the category with the given id.
func (c Catalog) Get(id int64) (Category, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Category{}, false
	}
	return c.categories[i], true
}

// ByType returns the categories of the given type in id order.
func (c Catalog) ByType(t TransactionType) []Category {
	var out []Category
	for _, cat := range c.categories {
		if strings.EqualFold(string(cat.Type), string(t)) {
			out = append(out, cat)
		}
	}
	return out
}

// FindByName returns the first category of type t whose name equals name, ignoring case.
func (c Catalog) FindByName(t TransactionType, name string) (Category, bool) {
	for _, cat := range c.ByType(t) {
		if strings.EqualFold(strings.TrimSpace(cat.Name), name) {
			return cat, true
		}
	}
	return Category{}, false
}

// MatchResult is the outcome of matching one transaction text against the catalog.
// CategoryID is zero only when the catalog holds no category of the requested type.
type MatchResult struct {
	CategoryID int64   `json:"category_id"`
	Confidence float64 `json:"confidence"`
}
