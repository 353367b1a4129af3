package catalog_repo

import (
	"context"

	"fakturo/internal/domain/product"
)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a PostgreSQL product repository.
func NewProductRepo() *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*product.Product](
			"products", "product",
			[]string{"code", "name", "kind", "unit", "default_price"},
		),
	}
}

// NextCode returns the next free numeric code.
func (r *ProductRepo) NextCode(ctx context.Context) (int64, error) {
	return nextNumericCode(ctx, r.querier(ctx), "products")
}
