package catalog_repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"fakturo/internal/core/apperror"
	"fakturo/internal/domain/party"
)

// PartyRepo implements party.Repository.
type PartyRepo struct {
	*BaseCatalogRepo[*party.Party]
}

var _ party.Repository = (*PartyRepo)(nil)

// NewPartyRepo creates a PostgreSQL party repository.
func NewPartyRepo() *PartyRepo {
	return &PartyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*party.Party](
			"parties", "party",
			[]string{"code", "name", "kind", "tax_id"},
		),
	}
}

// FindByTaxID retrieves a party by tax ID.
func (r *PartyRepo) FindByTaxID(ctx context.Context, taxID string) (*party.Party, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"tax_id": taxID}).
		Limit(1)

	items, err := r.selectMany(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperror.NewNotFound("party", taxID)
	}
	return items[0], nil
}

// Search finds parties by exact numeric code or name prefix.
// Deleted parties are excluded.
func (r *PartyRepo) Search(ctx context.Context, query string, limit int) ([]*party.Party, error) {
	cond := squirrel.Sqlizer(squirrel.ILike{"name": query + "%"})
	if _, err := strconv.ParseInt(query, 10, 64); err == nil {
		cond = squirrel.Or{
			squirrel.Eq{"code": query},
			squirrel.ILike{"name": query + "%"},
		}
	}

	q := r.baseSelect().
		Where(cond).
		OrderBy("name ASC").
		Limit(uint64(limit))
	return r.selectMany(ctx, q)
}

// NextCode returns the next free numeric code.
func (r *PartyRepo) NextCode(ctx context.Context) (int64, error) {
	return nextNumericCode(ctx, r.querier(ctx), "parties")
}

// nextNumericCode computes max(code)+1 over rows with purely numeric
// codes. Soft-deleted rows count too, so their codes are never reused.
func nextNumericCode(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}, table string) (int64, error) {
	query := fmt.Sprintf(
		`SELECT COALESCE(MAX(code::bigint), 0) + 1 FROM %s WHERE code ~ '^[0-9]+$'`,
		table,
	)

	var next int64
	if err := q.QueryRow(ctx, query).Scan(&next); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 1, nil
		}
		return 0, apperror.NewInternal(fmt.Errorf("next code for %s: %w", table, err))
	}
	return next, nil
}
