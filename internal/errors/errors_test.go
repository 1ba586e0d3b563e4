package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simmerapp/simmer-server/internal/errors"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.CodeNotFound, http.StatusNotFound},
		{errors.CodeTagCreation, http.StatusConflict},
		{errors.CodeInvalidCredentials, http.StatusUnauthorized},
		{errors.CodeValidation, http.StatusBadRequest},
		{errors.CodeUnavailable, http.StatusServiceUnavailable},
		{errors.CodeInternal, http.StatusInternalServerError},
		{errors.Code("SOMETHING_NEW"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("load recipe: %w", errors.NotFound("recipe not found"))

	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.False(t, errors.Is(err, errors.ErrForbidden))
}

func TestError_WithCause(t *testing.T) {
	cause := stderrors.New("token signature invalid")
	err := errors.TokenExpired("invalid or expired refresh token").WithCause(cause)

	assert.Equal(t, "invalid or expired refresh token: token signature invalid", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, errors.ErrTokenExpired)
	assert.Equal(t, http.StatusUnauthorized, err.HTTPStatus())
}

func TestValidationWithDetails(t *testing.T) {
	err := errors.ValidationWithDetails("recipe is incomplete", map[string]string{"title": "is required"})

	assert.Equal(t, errors.CodeValidation, err.Code)
	assert.Equal(t, map[string]string{"title": "is required"}, err.Details)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestWrap_NilCause(t *testing.T) {
	err := errors.Wrap(nil, errors.CodeUnavailable, "search is disabled")

	assert.Equal(t, "search is disabled", err.Error())
	assert.Nil(t, err.Unwrap())
}
