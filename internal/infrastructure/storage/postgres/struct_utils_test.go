package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakturo/internal/core/entity"
	"fakturo/internal/core/id"
)

type testCatalogEntity struct {
	entity.Catalog

	TaxID *string `db:"tax_id" json:"taxId,omitempty"`
	Email *string `db:"email" json:"email,omitempty"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[testCatalogEntity]()

	expected := []string{
		"id", "deletion_mark", "version", "attributes",
		"code", "name",
		"tax_id", "email",
	}
	assert.ElementsMatch(t, expected, cols)
}

func TestExtractDBColumns_SkipsUntagged(t *testing.T) {
	type withUntagged struct {
		ID     id.ID  `db:"id"`
		Code   string `db:"code"`
		Cached string // no db tag, not a column
		Hidden string `db:"-"`
	}

	cols := ExtractDBColumns[withUntagged]()
	assert.ElementsMatch(t, []string{"id", "code"}, cols)
}

func TestStructToMap(t *testing.T) {
	taxID := "1234567890"
	e := &testCatalogEntity{
		Catalog: entity.NewCatalog("42", "Acme s.r.o."),
		TaxID:   &taxID,
	}

	m := StructToMap(e)

	assert.Equal(t, e.ID, m["id"])
	assert.Equal(t, false, m["deletion_mark"])
	assert.Equal(t, 1, m["version"])
	assert.Equal(t, "42", m["code"])
	assert.Equal(t, "Acme s.r.o.", m["name"])

	require.Contains(t, m, "tax_id")
	assert.Equal(t, &taxID, m["tax_id"])

	// nil pointer fields still appear so inserts write explicit NULLs
	require.Contains(t, m, "email")
}

func TestStructToMap_EmbeddedVersionRoundTrip(t *testing.T) {
	e := &testCatalogEntity{Catalog: entity.NewCatalog("1", "First")}
	e.Touch()
	e.Touch()

	m := StructToMap(e)
	assert.Equal(t, 3, m["version"])
}
