package party

import (
	"context"
	"fmt"
	"strconv"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/domain"
)

// Service provides business logic for the Party catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Party]
	repo Repository
}

// NewService creates a new Party service.
// In Database-per-Workspace mode, TxManager is obtained from context.
func NewService(repo Repository) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Party]{
		Repo:       repo,
		TxManager:  nil, // obtained from context
		EntityName: "party",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnPreSave(svc.prepareForSave)

	return svc
}

// prepareForSave assigns a numeric code and enforces tax ID uniqueness.
func (s *Service) prepareForSave(ctx context.Context, p *Party) error {
	if p.Code == "" {
		next, err := s.repo.NextCode(ctx)
		if err != nil {
			return fmt.Errorf("generate party code: %w", err)
		}
		p.Code = strconv.FormatInt(next, 10)
	}

	if p.TaxID != nil && *p.TaxID != "" {
		exists, err := s.checkTaxIDExists(ctx, *p.TaxID, p.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflict("party with this tax ID already exists").
				WithDetail("taxId", *p.TaxID)
		}
	}

	return nil
}

// Search finds parties by numeric code or name prefix.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*Party, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.Search(ctx, query, limit)
}

// FindByTaxID retrieves a party by tax ID.
func (s *Service) FindByTaxID(ctx context.Context, taxID string) (*Party, error) {
	return s.repo.FindByTaxID(ctx, taxID)
}

// checkTaxIDExists checks if the tax ID is already used by another party.
func (s *Service) checkTaxIDExists(ctx context.Context, taxID string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByTaxID(ctx, taxID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}
