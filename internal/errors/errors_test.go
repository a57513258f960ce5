package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Is_MatchesByCode(t *testing.T) {
	err := Duplicate("subcategory 'bakeries' already exists")

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestError_Is_ThroughWrapping(t *testing.T) {
	inner := NotFound("category not found")
	wrapped := fmt.Errorf("load tree: %w", inner)

	assert.ErrorIs(t, wrapped, ErrNotFound)

	var domainErr *Error
	require.ErrorAs(t, wrapped, &domainErr)
	assert.Equal(t, CodeNotFound, domainErr.Code)
}

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Internal("save failed").WithCause(cause)

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, cause, Unwrap(err))
}

func TestError_WithDetails(t *testing.T) {
	err := ValidationWithDetails("validation failed", map[string]string{
		"merchantId": "is required",
	})

	assert.Equal(t, CodeValidation, err.Code)
	details, ok := err.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["merchantId"])
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeDuplicate, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeMissingField, http.StatusBadRequest},
		{CodeInvalidOrdering, http.StatusBadRequest},
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInternal, http.StatusInternalServerError},
		{CodeInconsistency, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.code.HTTPStatus())
		})
	}
}
