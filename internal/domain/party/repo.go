package party

import (
	"context"

	"fakturo/internal/domain"
)

// Repository defines the interface for Party persistence.
type Repository interface {
	domain.CatalogRepository[*Party]

	// FindByTaxID retrieves party by tax ID (unique within workspace).
	FindByTaxID(ctx context.Context, taxID string) (*Party, error)

	// Search finds parties by numeric code (exact) or name prefix.
	Search(ctx context.Context, query string, limit int) ([]*Party, error)

	// NextCode returns the next free numeric code (max + 1).
	NextCode(ctx context.Context) (int64, error)
}
