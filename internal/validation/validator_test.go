package validation_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/validation"
)

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

type recipeForm struct {
	Title      string `form:"title" validate:"notblank,max=200"`
	Difficulty string `form:"difficulty" validate:"difficulty"`
	Servings   *int   `form:"servings" validate:"omitempty,gte=1"`
	ImageURL   string `form:"image_url" validate:"omitempty,http_url"`
}

type profileForm struct {
	Username string `json:"username" validate:"username"`
}

func intPtr(v int) *int { return &v }

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(signupRequest{Email: "cook@example.com", Password: "password123"}))
	assert.NoError(t, v.Validate(recipeForm{Title: "Pasta", Difficulty: "medium", Servings: intPtr(2)}))
	assert.NoError(t, v.Validate(recipeForm{Title: "Soup"}), "difficulty and optional fields may be empty")
	assert.NoError(t, v.Validate(profileForm{}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       any
		wantField string
	}{
		{name: "missing email", req: signupRequest{Password: "password123"}, wantField: "email"},
		{name: "invalid email", req: signupRequest{Email: "nope", Password: "password123"}, wantField: "email"},
		{name: "short password", req: signupRequest{Email: "a@b.co", Password: "short"}, wantField: "password"},
		{name: "long password", req: signupRequest{Email: "a@b.co", Password: strings.Repeat("x", 1025)}, wantField: "password"},
		{name: "blank title", req: recipeForm{Title: "   "}, wantField: "title"},
		{name: "unknown difficulty", req: recipeForm{Title: "Pie", Difficulty: "Extreme"}, wantField: "difficulty"},
		{name: "zero servings", req: recipeForm{Title: "Pie", Servings: intPtr(0)}, wantField: "servings"},
		{name: "bad image url", req: recipeForm{Title: "Pie", ImageURL: "not a url"}, wantField: "image_url"},
		{name: "bad username", req: profileForm{Username: "a b"}, wantField: "username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var de *domainerrors.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, http.StatusBadRequest, de.HTTPStatus())

			details, ok := de.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestValidator_FieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(signupRequest{Password: "password123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
	assert.NotContains(t, err.Error(), "Email")

	err = v.Validate(recipeForm{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
}

func TestValidator_FriendlyMessages(t *testing.T) {
	v := validation.New()

	err := v.Validate(recipeForm{Title: "Pie", Difficulty: "impossible"})
	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "must be Easy, Medium or Hard", de.Details.(map[string]string)["difficulty"])

	err = v.Validate(signupRequest{Email: "a@b.co", Password: "short"})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "must be at least 8 characters", de.Details.(map[string]string)["password"])
}
