package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConcurrentModification(t *testing.T) {
	err := NewConcurrentModification("invoice", "0198b1c2-0000-7000-8000-000000000001")

	assert.Equal(t, CodeConcurrentModification, err.Code)
	assert.Equal(t, http.StatusConflict, err.HTTPStatus)
	assert.Equal(t, "invoice", err.Details["entity"])
	assert.Equal(t, "0198b1c2-0000-7000-8000-000000000001", err.Details["id"])
	assert.True(t, IsConcurrentModification(err))
	assert.False(t, IsConcurrentModification(NewConflict("taken")))
}

func TestWithDetailAndCause(t *testing.T) {
	cause := errors.New("row vanished")
	err := NewValidation("bad input").
		WithDetail("field", "number").
		WithCause(cause)

	assert.Equal(t, "number", err.Details["field"])
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by")
}

func TestAsAppErrorUnwrapsChain(t *testing.T) {
	inner := NewNotFound("party", "p-1")
	wrapped := fmt.Errorf("loading client: %w", inner)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("plain")))
}
