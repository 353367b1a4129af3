package product

import (
	"context"
	"fmt"
	"strconv"

	"fakturo/internal/domain"
)

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

// NewService creates a new Product service.
func NewService(repo Repository) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  nil, // obtained from context
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnPreSave(svc.prepareForSave)

	return svc
}

// prepareForSave assigns a numeric code and normalizes the unit.
func (s *Service) prepareForSave(ctx context.Context, p *Product) error {
	if p.Code == "" {
		next, err := s.repo.NextCode(ctx)
		if err != nil {
			return fmt.Errorf("generate product code: %w", err)
		}
		p.Code = strconv.FormatInt(next, 10)
	}

	if p.Unit == "" {
		p.Unit = "pcs"
	}

	return nil
}
