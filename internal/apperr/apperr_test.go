package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		typ    Type
		status int
	}{
		{"validation", Validation("Invalid payload"), TypeValidation, http.StatusBadRequest},
		{"authentication", Authentication("Invalid team"), TypeAuthentication, http.StatusUnauthorized},
		{"forbidden", Forbidden("Time over"), TypeForbidden, http.StatusForbidden},
		{"not found", NotFound("Question not found"), TypeNotFound, http.StatusNotFound},
		{"internal", Internal("Server error", errors.New("boom")), TypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.StatusCode)
		})
	}
}

func TestWithCopiesDetails(t *testing.T) {
	base := Forbidden("No attempts left").With("attemptsLeft", 0)
	derived := base.With("imageUrl", "/images/section1.1.png")

	assert.Len(t, base.Details, 1)
	assert.Len(t, derived.Details, 2)
	assert.Equal(t, "No attempts left", derived.Message)
}

func TestAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", NotFound("Assignment not found"))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "Assignment not found", appErr.Message)
	assert.True(t, IsType(wrapped, TypeNotFound))
	assert.False(t, IsType(errors.New("plain"), TypeNotFound))
}

func TestErrorStringIncludesInternal(t *testing.T) {
	err := Internal("Server error", errors.New("mongo down"))
	assert.Equal(t, "internal: Server error (mongo down)", err.Error())
	assert.ErrorContains(t, err, "mongo down")
	assert.Equal(t, "not_found: missing", NotFound("missing").Error())
}
