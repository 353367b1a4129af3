package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/domain"
	"fakturo/internal/domain/party"
)

func TestApplyCatalogFilter_SQL(t *testing.T) {
	base := sq.Select("id", "code", "name").From("parties")

	t.Run("default excludes deleted", func(t *testing.T) {
		query, args, err := applyCatalogFilter(base, domain.ListFilter{}).ToSql()
		require.NoError(t, err)
		assert.Contains(t, query, "deletion_mark = $1")
		assert.Equal(t, []any{false}, args)
	})

	t.Run("include deleted drops the condition", func(t *testing.T) {
		query, _, err := applyCatalogFilter(base, domain.ListFilter{IncludeDeleted: true}).ToSql()
		require.NoError(t, err)
		assert.NotContains(t, query, "deletion_mark")
	})

	t.Run("search matches code exactly or name prefix", func(t *testing.T) {
		query, args, err := applyCatalogFilter(base, domain.ListFilter{
			Search:         "acme",
			IncludeDeleted: true,
		}).ToSql()
		require.NoError(t, err)
		assert.Contains(t, query, "code = $1")
		assert.Contains(t, query, "name ILIKE $2")
		assert.Equal(t, []any{"acme", "acme%"}, args)
	})

	t.Run("ids filter", func(t *testing.T) {
		ids := []id.ID{id.New(), id.New()}
		query, args, err := applyCatalogFilter(base, domain.ListFilter{
			IDs:            ids,
			IncludeDeleted: true,
		}).ToSql()
		require.NoError(t, err)
		assert.Contains(t, query, "id IN ($1,$2)")
		assert.Len(t, args, 2)
	})
}

func TestParseOrderBy(t *testing.T) {
	repo := NewBaseCatalogRepo[*party.Party]("parties", "party", []string{"code", "name", "kind"})

	tests := []struct {
		name     string
		orderBy  string
		wantCol  string
		wantDesc bool
		wantErr  bool
	}{
		{name: "empty defaults to name", orderBy: "", wantCol: "name"},
		{name: "plain column", orderBy: "code", wantCol: "code"},
		{name: "descending", orderBy: "-kind", wantCol: "kind", wantDesc: true},
		{name: "unknown column rejected", orderBy: "password", wantErr: true},
		{name: "injection attempt rejected", orderBy: "name; DROP TABLE parties", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, desc, err := repo.parseOrderBy(tt.orderBy)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCol, col)
			assert.Equal(t, tt.wantDesc, desc)
		})
	}
}

func TestNewEntityAllocates(t *testing.T) {
	p := newEntity[*party.Party]()
	require.NotNil(t, p)
	assert.Empty(t, p.Code)
}

func TestBaseRepoColumns(t *testing.T) {
	repo := NewPartyRepo()
	assert.Contains(t, repo.columns, "id")
	assert.Contains(t, repo.columns, "version")
	assert.Contains(t, repo.columns, "tax_id")
	assert.NotContains(t, repo.columns, "items")
}
