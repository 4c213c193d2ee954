package categorizer

import (
	"context"

	"fjacquet/ledger-import/internal/models"
)

// CategorySource loads the category catalog. store.Store satisfies it.
type CategorySource interface {
	LoadCategories(ctx context.Context) ([]models.Category, error)
}
