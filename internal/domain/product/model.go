// Package product provides the Product catalog: sellable goods and
// services that invoice lines reference.
package product

import (
	"context"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/entity"
	"fakturo/internal/core/types"
	"fakturo/internal/domain/ref"
)

// Kind defines the kind of product.
type Kind string

const (
	KindProduct Kind = "product" // physical goods, sold by quantity
	KindService Kind = "service" // services, may be sold by duration
)

// Reference kinds for polymorphic item links.
const (
	RefProduct ref.Kind = "product"
	RefService ref.Kind = "service"
)

// RefKind maps a product kind to its reference kind.
func RefKind(k Kind) ref.Kind {
	if k == KindService {
		return RefService
	}
	return RefProduct
}

// Product represents a sellable good or service.
type Product struct {
	entity.Catalog

	// Kind defines whether this is a physical product or a service
	Kind Kind `db:"kind" json:"kind"`

	// Unit is the unit of measure (pcs, hour, kg, ...)
	Unit string `db:"unit" json:"unit"`

	// DefaultPrice is the suggested unit price; invoice lines may override it
	DefaultPrice types.Money `db:"default_price" json:"defaultPrice"`

	// Description is a free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name string, kind Kind) *Product {
	return &Product{
		Catalog: entity.NewCatalog(code, name),
		Kind:    kind,
		Unit:    "pcs",
	}
}

// Ref returns a polymorphic reference to this product.
func (p *Product) Ref() ref.Ref {
	return ref.Ref{Kind: RefKind(p.Kind), ID: p.ID, Code: p.Code}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidKind(p.Kind) {
		return apperror.NewValidation("invalid product kind").
			WithDetail("field", "kind").
			WithDetail("value", string(p.Kind))
	}

	if p.DefaultPrice.IsNegative() {
		return apperror.NewValidation("default price cannot be negative").
			WithDetail("field", "defaultPrice")
	}

	return nil
}

// IsService returns true for service products.
func (p *Product) IsService() bool {
	return p.Kind == KindService
}

func isValidKind(k Kind) bool {
	return k == KindProduct || k == KindService
}
