package ref

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
)

type stubResolver struct {
	known map[id.ID]bool
}

func (r *stubResolver) Exists(_ context.Context, entityID id.ID) (bool, error) {
	return r.known[entityID], nil
}

func TestRefValidate(t *testing.T) {
	assert.NoError(t, Ref{}.Validate())

	err := Ref{ID: id.New()}.Validate()
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	err = Ref{Kind: "person"}.Validate()
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	assert.NoError(t, Ref{Kind: "person", ID: id.New()}.Validate())
}

func TestResolverSetCheck(t *testing.T) {
	ctx := context.Background()
	knownID := id.New()

	set := NewResolverSet()
	set.Register("person", &stubResolver{known: map[id.ID]bool{knownID: true}})

	t.Run("zero ref passes", func(t *testing.T) {
		assert.NoError(t, set.Check(ctx, Ref{}))
	})

	t.Run("existing entity passes", func(t *testing.T) {
		assert.NoError(t, set.Check(ctx, Ref{Kind: "person", ID: knownID}))
	})

	t.Run("missing entity is not found", func(t *testing.T) {
		err := set.Check(ctx, Ref{Kind: "person", ID: id.New()})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		err := set.Check(ctx, Ref{Kind: "warehouse", ID: knownID})
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
	})
}
