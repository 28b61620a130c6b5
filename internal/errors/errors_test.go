package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/lingoflash/internal/errors"
)

func TestAppError_Error(t *testing.T) {
	err := errors.NewNotFoundError("word", 12)
	assert.Equal(t, "NOT_FOUND: word not found: 12", err.Error())
	assert.Equal(t, http.StatusNotFound, err.Status)

	cause := stderrors.New("disk full")
	internal := errors.NewInternalError(cause)
	assert.Equal(t, "INTERNAL_ERROR: internal server error (disk full)", internal.Error())
	assert.ErrorIs(t, internal, cause)
}

func TestAs(t *testing.T) {
	conflict := errors.NewConflictError("answer not revealed", nil)
	wrapped := fmt.Errorf("scoring: %w", conflict)

	assert.Same(t, conflict, errors.As(wrapped))

	plain := stderrors.New("boom")
	got := errors.As(plain)
	assert.Equal(t, errors.ErrCodeInternal, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.ErrorIs(t, got, plain)
}

func TestValidationError(t *testing.T) {
	err := errors.NewValidationError("score", "must be between 1 and 5")
	assert.Equal(t, errors.ErrCodeValidation, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Contains(t, err.Message, "score")
}

func TestMethodNotAllowedError(t *testing.T) {
	err := errors.NewMethodNotAllowedError("PATCH")
	assert.Equal(t, errors.ErrCodeMethod, err.Code)
	assert.Equal(t, http.StatusMethodNotAllowed, err.Status)
	assert.Equal(t, "method PATCH not allowed", err.Message)
}
