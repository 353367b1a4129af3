// Package document_repo provides PostgreSQL repositories for documents.
package document_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/domain"
	"fakturo/internal/domain/invoice"
	"fakturo/internal/domain/ref"
	"fakturo/internal/infrastructure/storage/postgres"
)

var sq = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const (
	invoicesTable = "invoices"
	itemsTable    = "invoice_items"
)

// invoiceRow is the database shape of an invoice. The polymorphic client
// reference is flattened into explicit columns.
type invoiceRow struct {
	invoice.Invoice

	ClientKind string `db:"client_kind"`
	ClientID   id.ID  `db:"client_id"`
	ClientCode string `db:"client_code"`
}

// itemRow is the database shape of an invoice line.
type itemRow struct {
	invoice.InvoiceItem

	ProductKind string `db:"product_kind"`
	ProductID   id.ID  `db:"product_id"`
	ProductCode string `db:"product_code"`
}

// invoiceOrderable lists the columns List accepts in OrderBy.
var invoiceOrderable = map[string]struct{}{
	"number":      {},
	"reserved_at": {},
	"valid_till":  {},
	"created_at":  {},
	"updated_at":  {},
}

// InvoiceRepo implements invoice.Repository on PostgreSQL.
type InvoiceRepo struct {
	columns     []string
	itemColumns []string
}

var _ invoice.Repository = (*InvoiceRepo)(nil)

// NewInvoiceRepo creates a PostgreSQL invoice repository.
func NewInvoiceRepo() *InvoiceRepo {
	return &InvoiceRepo{
		columns:     postgres.ExtractDBColumns[invoiceRow](),
		itemColumns: postgres.ExtractDBColumns[itemRow](),
	}
}

func (r *InvoiceRepo) querier(ctx context.Context) postgres.Querier {
	return postgres.MustGetTxManager(ctx).GetQuerier(ctx)
}

// Create inserts the invoice row. A taken number surfaces as a duplicate
// error via the unique constraint.
func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	values := postgres.StructToMap(inv)
	values["client_kind"] = string(inv.Client.Kind)
	values["client_id"] = inv.Client.ID
	values["client_code"] = inv.Client.Code

	query, args, err := sq.Insert(invoicesTable).SetMap(values).ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build invoice insert: %w", err))
	}
	if _, err := r.querier(ctx).Exec(ctx, query, args...); err != nil {
		return postgres.MapConstraintError(err, "invoice", "number", fmt.Sprint(inv.Number))
	}
	return nil
}

// Update modifies the invoice row with optimistic locking. The client
// reference is set once at creation and never written again. On success
// the in-memory version is advanced to match the database.
func (r *InvoiceRepo) Update(ctx context.Context, inv *invoice.Invoice) error {
	values := postgres.StructToMap(inv)
	version := inv.Version
	delete(values, "id")
	delete(values, "version")
	delete(values, "created_at")
	delete(values, "created_by")

	update := sq.Update(invoicesTable).
		SetMap(values).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": inv.ID, "version": version})

	query, args, err := update.ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build invoice update: %w", err))
	}
	tag, err := r.querier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapConstraintError(err, "invoice", "number", fmt.Sprint(inv.Number))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("invoice", inv.ID.String())
	}

	inv.SetVersion(version + 1)
	return nil
}

// GetByID retrieves the invoice row without items.
func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	query, args, err := sq.Select(r.columns...).
		From(invoicesTable).
		Where(squirrel.Eq{"id": invoiceID}).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("build invoice select: %w", err))
	}

	var row invoiceRow
	if err := pgxscan.Get(ctx, r.querier(ctx), &row, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("invoice", invoiceID.String())
		}
		return nil, apperror.NewInternal(fmt.Errorf("get invoice: %w", err))
	}
	return rowToInvoice(&row), nil
}

// Delete removes the invoice and its items. Items go first so the
// operation does not depend on cascade rules in the schema.
func (r *InvoiceRepo) Delete(ctx context.Context, invoiceID id.ID) error {
	q := r.querier(ctx)

	itemsQuery, itemsArgs, err := sq.Delete(itemsTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build item delete: %w", err))
	}
	if _, err := q.Exec(ctx, itemsQuery, itemsArgs...); err != nil {
		return apperror.NewInternal(fmt.Errorf("delete invoice items: %w", err))
	}

	query, args, err := sq.Delete(invoicesTable).
		Where(squirrel.Eq{"id": invoiceID}).
		ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build invoice delete: %w", err))
	}
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("delete invoice: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", invoiceID.String())
	}
	return nil
}

// ExistsByNumber reports whether any invoice uses the number.
func (r *InvoiceRepo) ExistsByNumber(ctx context.Context, number int64) (bool, error) {
	query, args, err := sq.Select("1").
		From(invoicesTable).
		Where(squirrel.Eq{"number": number}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, apperror.NewInternal(fmt.Errorf("build number check: %w", err))
	}

	var one int
	err = r.querier(ctx).QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperror.NewInternal(fmt.Errorf("check invoice number: %w", err))
	}
	return true, nil
}

// Count returns the total number of invoices.
func (r *InvoiceRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.querier(ctx).
		QueryRow(ctx, "SELECT COUNT(*) FROM "+invoicesTable).
		Scan(&count)
	if err != nil {
		return 0, apperror.NewInternal(fmt.Errorf("count invoices: %w", err))
	}
	return count, nil
}

// GetItems retrieves all items of an invoice. Item IDs are time-ordered
// UUIDs, so ordering by id keeps insertion order stable.
func (r *InvoiceRepo) GetItems(ctx context.Context, invoiceID id.ID) ([]*invoice.InvoiceItem, error) {
	query, args, err := sq.Select(r.itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("build items select: %w", err))
	}

	rows := []*itemRow{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, query, args...); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("get invoice items: %w", err))
	}

	items := make([]*invoice.InvoiceItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, rowToItem(row))
	}
	return items, nil
}

// ApplyItemChanges executes a reconciliation plan. Must run inside a
// transaction started by the caller.
func (r *InvoiceRepo) ApplyItemChanges(ctx context.Context, cs invoice.ChangeSet) error {
	q := r.querier(ctx)

	if len(cs.Deletes) > 0 {
		query, args, err := sq.Delete(itemsTable).
			Where(squirrel.Eq{"id": cs.Deletes}).
			ToSql()
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("build item deletes: %w", err))
		}
		if _, err := q.Exec(ctx, query, args...); err != nil {
			return apperror.NewInternal(fmt.Errorf("delete items: %w", err))
		}
	}

	for _, item := range cs.Updates {
		query, args, err := sq.Update(itemsTable).
			Set("unit_price", item.UnitPrice).
			Set("quantity", item.Quantity).
			Set("duration", item.Duration).
			Set("discount_percent", item.DiscountPercent).
			Set("note", item.Note).
			Where(squirrel.Eq{"id": item.ID}).
			ToSql()
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("build item update: %w", err))
		}
		tag, err := q.Exec(ctx, query, args...)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("update item: %w", err))
		}
		if tag.RowsAffected() == 0 {
			return apperror.NewNotFound("invoice item", item.ID.String())
		}
	}

	if len(cs.Creates) > 0 {
		insert := sq.Insert(itemsTable).Columns(
			"id", "invoice_id",
			"product_kind", "product_id", "product_code",
			"unit_price", "quantity", "duration", "discount_percent", "note",
		)
		for _, item := range cs.Creates {
			insert = insert.Values(
				item.ID, item.InvoiceID,
				string(item.Product.Kind), item.Product.ID, item.Product.Code,
				item.UnitPrice, item.Quantity, item.Duration, item.DiscountPercent, item.Note,
			)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("build item inserts: %w", err))
		}
		if _, err := q.Exec(ctx, query, args...); err != nil {
			return apperror.NewInternal(fmt.Errorf("insert items: %w", err))
		}
	}

	return nil
}

// List retrieves invoices (without items) with filtering and pagination.
func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	result := domain.ListResult[*invoice.Invoice]{
		Items:  []*invoice.Invoice{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	columns := make([]string, len(r.columns))
	for i, col := range r.columns {
		columns[i] = "i." + col
	}

	base := sq.Select(columns...).From(invoicesTable + " i")
	base = applyInvoiceFilter(base, filter)

	countQuery, countArgs, err := sq.Select("COUNT(*)").FromSelect(base, "sub").ToSql()
	if err != nil {
		return result, apperror.NewInternal(fmt.Errorf("build invoice count: %w", err))
	}
	if err := r.querier(ctx).QueryRow(ctx, countQuery, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, apperror.NewInternal(fmt.Errorf("count invoices: %w", err))
	}

	column, direction, err := parseInvoiceOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	base = base.OrderBy("i." + column + " " + direction)

	if filter.Limit > 0 {
		base = base.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		base = base.Offset(uint64(filter.Offset))
	}

	query, args, err := base.ToSql()
	if err != nil {
		return result, apperror.NewInternal(fmt.Errorf("build invoice list: %w", err))
	}

	rows := []*invoiceRow{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, query, args...); err != nil {
		return result, apperror.NewInternal(fmt.Errorf("list invoices: %w", err))
	}
	for _, row := range rows {
		result.Items = append(result.Items, rowToInvoice(row))
	}
	return result, nil
}

// applyInvoiceFilter adds list filter conditions. The client query joins
// the parties catalog to match code exactly or name by prefix.
func applyInvoiceFilter(q squirrel.SelectBuilder, filter invoice.ListFilter) squirrel.SelectBuilder {
	if filter.Number != nil {
		q = q.Where(squirrel.Eq{"i.number": *filter.Number})
	}
	if filter.ClientID != nil {
		q = q.Where(squirrel.Eq{"i.client_id": *filter.ClientID})
	}
	if filter.ClientQuery != "" {
		q = q.Join("parties p ON p.id = i.client_id").
			Where(squirrel.Or{
				squirrel.Eq{"p.code": filter.ClientQuery},
				squirrel.ILike{"p.name": filter.ClientQuery + "%"},
			})
	}
	if filter.ReservedFrom != nil {
		q = q.Where(squirrel.GtOrEq{"i.reserved_at": *filter.ReservedFrom})
	}
	if filter.ReservedTo != nil {
		q = q.Where(squirrel.LtOrEq{"i.reserved_at": *filter.ReservedTo})
	}
	return q
}

func parseInvoiceOrderBy(orderBy string) (column, direction string, err error) {
	if orderBy == "" {
		orderBy = "-number"
	}
	column = orderBy
	direction = "ASC"
	if strings.HasPrefix(column, "-") {
		column = strings.TrimPrefix(column, "-")
		direction = "DESC"
	}
	if _, ok := invoiceOrderable[column]; !ok {
		return "", "", apperror.NewValidation("unsupported sort field").
			WithDetail("field", "orderBy").
			WithDetail("value", orderBy)
	}
	return column, direction, nil
}

func rowToInvoice(row *invoiceRow) *invoice.Invoice {
	inv := row.Invoice
	inv.Client = ref.Ref{
		Kind: ref.Kind(row.ClientKind),
		ID:   row.ClientID,
		Code: row.ClientCode,
	}
	return &inv
}

func rowToItem(row *itemRow) *invoice.InvoiceItem {
	item := row.InvoiceItem
	item.Product = ref.Ref{
		Kind: ref.Kind(row.ProductKind),
		ID:   row.ProductID,
		Code: row.ProductCode,
	}
	return &item
}
