package product

import (
	"context"

	"fakturo/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// NextCode returns the next free numeric code (max + 1).
	NextCode(ctx context.Context) (int64, error)
}
