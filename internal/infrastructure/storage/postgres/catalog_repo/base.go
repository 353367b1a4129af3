// Package catalog_repo provides PostgreSQL repositories for catalog entities.
package catalog_repo

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/entity"
	"fakturo/internal/core/id"
	"fakturo/internal/domain"
	"fakturo/internal/infrastructure/storage/postgres"
)

// sq is the statement builder configured for PostgreSQL placeholders.
var sq = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// catalogEntity is the constraint for entities stored by BaseCatalogRepo.
// SetVersion lets the repository sync the in-memory version after updates.
type catalogEntity interface {
	entity.Validatable
	SetVersion(v int)
}

// BaseCatalogRepo implements domain.CatalogRepository for a single table.
// Concrete repositories embed it and add entity-specific queries.
type BaseCatalogRepo[T catalogEntity] struct {
	table      string
	entityName string
	columns    []string
	orderable  map[string]struct{}
}

// NewBaseCatalogRepo creates a repository for the given table.
// orderable lists the columns List accepts in OrderBy (a "-" prefix
// in the filter means descending).
func NewBaseCatalogRepo[T catalogEntity](table, entityName string, orderable []string) *BaseCatalogRepo[T] {
	allowed := make(map[string]struct{}, len(orderable))
	for _, col := range orderable {
		allowed[col] = struct{}{}
	}
	return &BaseCatalogRepo[T]{
		table:      table,
		entityName: entityName,
		columns:    postgres.ExtractDBColumns[T](),
		orderable:  allowed,
	}
}

// querier returns the transaction-aware querier from context.
func (r *BaseCatalogRepo[T]) querier(ctx context.Context) postgres.Querier {
	return postgres.MustGetTxManager(ctx).GetQuerier(ctx)
}

// Create inserts a new entity.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, e T) error {
	values := postgres.StructToMap(e)

	query, args, err := sq.Insert(r.table).SetMap(values).ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build insert for %s: %w", r.table, err))
	}

	if _, err := r.querier(ctx).Exec(ctx, query, args...); err != nil {
		return postgres.MapConstraintError(err, r.entityName, "code", fmt.Sprint(values["code"]))
	}
	return nil
}

// GetByID retrieves an entity by ID.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.findOne(ctx, squirrel.Eq{"id": entityID}, entityID.String())
}

// GetByCode retrieves an entity by code.
func (r *BaseCatalogRepo[T]) GetByCode(ctx context.Context, code string) (T, error) {
	return r.findOne(ctx, squirrel.Eq{"code": code}, code)
}

// findOne runs a single-row select with the given condition.
func (r *BaseCatalogRepo[T]) findOne(ctx context.Context, cond squirrel.Sqlizer, key string) (T, error) {
	var zero T

	query, args, err := sq.Select(r.columns...).From(r.table).Where(cond).ToSql()
	if err != nil {
		return zero, apperror.NewInternal(fmt.Errorf("build select for %s: %w", r.table, err))
	}

	e := newEntity[T]()
	if err := pgxscan.Get(ctx, r.querier(ctx), e, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, apperror.NewNotFound(r.entityName, key)
		}
		return zero, apperror.NewInternal(fmt.Errorf("get %s: %w", r.entityName, err))
	}
	return e, nil
}

// Update modifies an existing entity with optimistic locking.
// The stored version must match the entity's version; on success the
// in-memory version is advanced to match the database.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, e T) error {
	values := postgres.StructToMap(e)

	entityID, ok := values["id"].(id.ID)
	if !ok {
		return apperror.NewInternal(fmt.Errorf("%s: entity has no id column", r.table))
	}
	version, ok := values["version"].(int)
	if !ok {
		return apperror.NewInternal(fmt.Errorf("%s: entity has no version column", r.table))
	}
	delete(values, "id")
	delete(values, "version")

	update := sq.Update(r.table).
		SetMap(values).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID, "version": version})

	query, args, err := update.ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build update for %s: %w", r.table, err))
	}

	tag, err := r.querier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapConstraintError(err, r.entityName, "code", fmt.Sprint(values["code"]))
	}
	if tag.RowsAffected() == 0 {
		exists, checkErr := r.Exists(ctx, entityID)
		if checkErr == nil && !exists {
			return apperror.NewNotFound(r.entityName, entityID.String())
		}
		return apperror.NewConcurrentModification(r.entityName, entityID.String())
	}

	e.SetVersion(version + 1)
	return nil
}

// SetDeletionMark sets or clears the soft-delete mark.
func (r *BaseCatalogRepo[T]) SetDeletionMark(ctx context.Context, entityID id.ID, marked bool) error {
	query, args, err := sq.Update(r.table).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build update for %s: %w", r.table, err))
	}

	tag, err := r.querier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("set deletion mark on %s: %w", r.entityName, err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

// List retrieves entities with filtering and pagination.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Items:  []T{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	base := sq.Select(r.columns...).From(r.table)
	base = applyCatalogFilter(base, filter)

	// total count over the filtered set, before pagination
	countQuery, countArgs, err := sq.Select("COUNT(*)").
		FromSelect(base, "sub").
		ToSql()
	if err != nil {
		return result, apperror.NewInternal(fmt.Errorf("build count for %s: %w", r.table, err))
	}
	if err := r.querier(ctx).QueryRow(ctx, countQuery, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, apperror.NewInternal(fmt.Errorf("count %s: %w", r.table, err))
	}

	column, desc, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	direction := "ASC"
	if desc {
		direction = "DESC"
	}
	base = base.OrderBy(column + " " + direction)

	if filter.Limit > 0 {
		base = base.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		base = base.Offset(uint64(filter.Offset))
	}

	query, args, err := base.ToSql()
	if err != nil {
		return result, apperror.NewInternal(fmt.Errorf("build list for %s: %w", r.table, err))
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &result.Items, query, args...); err != nil {
		return result, apperror.NewInternal(fmt.Errorf("list %s: %w", r.table, err))
	}
	return result, nil
}

// Exists checks existence by ID.
func (r *BaseCatalogRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return r.existsWhere(ctx, squirrel.Eq{"id": entityID})
}

// ExistsByCode checks existence by code.
func (r *BaseCatalogRepo[T]) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return r.existsWhere(ctx, squirrel.Eq{"code": code})
}

func (r *BaseCatalogRepo[T]) existsWhere(ctx context.Context, cond squirrel.Sqlizer) (bool, error) {
	query, args, err := sq.Select("1").From(r.table).Where(cond).Limit(1).ToSql()
	if err != nil {
		return false, apperror.NewInternal(fmt.Errorf("build exists for %s: %w", r.table, err))
	}

	var one int
	err = r.querier(ctx).QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperror.NewInternal(fmt.Errorf("check %s exists: %w", r.entityName, err))
	}
	return true, nil
}

// selectMany runs an entity-specific multi-row query built on the base columns.
func (r *BaseCatalogRepo[T]) selectMany(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("build query for %s: %w", r.table, err))
	}
	items := []T{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, query, args...); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("query %s: %w", r.entityName, err))
	}
	return items, nil
}

// baseSelect returns a select over all entity columns, excluding
// soft-deleted rows.
func (r *BaseCatalogRepo[T]) baseSelect() squirrel.SelectBuilder {
	return sq.Select(r.columns...).From(r.table).Where(squirrel.Eq{"deletion_mark": false})
}

// parseOrderBy validates the filter's OrderBy against the whitelist.
func (r *BaseCatalogRepo[T]) parseOrderBy(orderBy string) (column string, desc bool, err error) {
	if orderBy == "" {
		orderBy = "name"
	}
	column = orderBy
	if strings.HasPrefix(column, "-") {
		column = strings.TrimPrefix(column, "-")
		desc = true
	}
	if _, ok := r.orderable[column]; !ok {
		return "", false, apperror.NewValidation("unsupported sort field").
			WithDetail("field", "orderBy").
			WithDetail("value", orderBy)
	}
	return column, desc, nil
}

// applyCatalogFilter adds the common filter conditions to a select.
func applyCatalogFilter(q squirrel.SelectBuilder, filter domain.ListFilter) squirrel.SelectBuilder {
	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"code": filter.Search},
			squirrel.ILike{"name": filter.Search + "%"},
		})
	}
	return q
}

// newEntity allocates a fresh T (T is a pointer type).
func newEntity[T any]() T {
	var zero T
	return reflect.New(reflect.TypeOf(zero).Elem()).Interface().(T)
}
