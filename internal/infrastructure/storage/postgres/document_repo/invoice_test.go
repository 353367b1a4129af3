package document_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/domain/invoice"
)

func TestApplyInvoiceFilter_SQL(t *testing.T) {
	base := sq.Select("i.id", "i.number").From("invoices i")

	t.Run("no filter adds nothing", func(t *testing.T) {
		query, args, err := applyInvoiceFilter(base, invoice.ListFilter{}).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT i.id, i.number FROM invoices i", query)
		assert.Empty(t, args)
	})

	t.Run("number filter", func(t *testing.T) {
		n := int64(42)
		query, args, err := applyInvoiceFilter(base, invoice.ListFilter{Number: &n}).ToSql()
		require.NoError(t, err)
		assert.Contains(t, query, "i.number = $1")
		assert.Equal(t, []any{int64(42)}, args)
	})

	t.Run("client query joins parties", func(t *testing.T) {
		query, args, err := applyInvoiceFilter(base, invoice.ListFilter{ClientQuery: "acme"}).ToSql()
		require.NoError(t, err)
		assert.Contains(t, query, "JOIN parties p ON p.id = i.client_id")
		assert.Contains(t, query, "p.code = $1")
		assert.Contains(t, query, "p.name ILIKE $2")
		assert.Equal(t, []any{"acme", "acme%"}, args)
	})

	t.Run("client id filter", func(t *testing.T) {
		clientID := id.New()
		query, args, err := applyInvoiceFilter(base, invoice.ListFilter{ClientID: &clientID}).ToSql()
		require.NoError(t, err)
		assert.Contains(t, query, "i.client_id = $1")
		// uuid.UUID is a driver.Valuer, so the bound arg is its string form
		assert.Equal(t, []any{clientID.String()}, args)
	})

	t.Run("reservation date range is inclusive", func(t *testing.T) {
		from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
		query, args, err := applyInvoiceFilter(base, invoice.ListFilter{
			ReservedFrom: &from,
			ReservedTo:   &to,
		}).ToSql()
		require.NoError(t, err)
		assert.Contains(t, query, "i.reserved_at >= $1")
		assert.Contains(t, query, "i.reserved_at <= $2")
		assert.Equal(t, []any{from, to}, args)
	})
}

func TestParseInvoiceOrderBy(t *testing.T) {
	tests := []struct {
		name    string
		orderBy string
		wantCol string
		wantDir string
		wantErr bool
	}{
		{name: "empty defaults to newest numbers first", orderBy: "", wantCol: "number", wantDir: "DESC"},
		{name: "ascending number", orderBy: "number", wantCol: "number", wantDir: "ASC"},
		{name: "descending reservation date", orderBy: "-reserved_at", wantCol: "reserved_at", wantDir: "DESC"},
		{name: "unknown column rejected", orderBy: "client_kind", wantErr: true},
		{name: "injection attempt rejected", orderBy: "number; DROP TABLE invoices", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, dir, err := parseInvoiceOrderBy(tt.orderBy)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCol, col)
			assert.Equal(t, tt.wantDir, dir)
		})
	}
}

func TestInvoiceColumns(t *testing.T) {
	repo := NewInvoiceRepo()

	assert.Contains(t, repo.columns, "number")
	assert.Contains(t, repo.columns, "client_kind")
	assert.Contains(t, repo.columns, "client_id")
	assert.Contains(t, repo.columns, "factors")
	// in-memory only fields never become columns
	assert.NotContains(t, repo.columns, "items")
	assert.NotContains(t, repo.columns, "client")

	assert.Contains(t, repo.itemColumns, "invoice_id")
	assert.Contains(t, repo.itemColumns, "product_id")
	assert.NotContains(t, repo.itemColumns, "product")
}
