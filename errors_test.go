package auth_test

import (
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-shop-auth"
	"github.com/goliatone/go-shop-auth/repository"
)

func TestSentinelCategories(t *testing.T) {
	tests := []struct {
		name     string
		err      *goerrors.Error
		category goerrors.Category
		code     int
	}{
		{name: "invalid credentials", err: auth.ErrInvalidCredentials, category: goerrors.CategoryAuth, code: 401},
		{name: "token expired", err: auth.ErrTokenExpired, category: goerrors.CategoryAuth, code: 401},
		{name: "session revoked", err: auth.ErrSessionRevoked, category: goerrors.CategoryAuth, code: 401},
		{name: "forbidden", err: auth.ErrForbidden, category: goerrors.CategoryAuthz, code: 403},
		{name: "user not found", err: auth.ErrUserNotFound, category: goerrors.CategoryNotFound, code: 404},
		{name: "password policy", err: auth.ErrPasswordPolicy, category: goerrors.CategoryBadInput, code: 400},
		{name: "crypto", err: auth.ErrCryptoUnavailable, category: goerrors.CategoryInternal, code: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.TextCode)
		})
	}

	wrapped := fmt.Errorf("validate: %w", auth.ErrTokenExpired)
	assert.ErrorIs(t, wrapped, auth.ErrTokenExpired)
	assert.NotErrorIs(t, wrapped, auth.ErrTokenMalformed)
	assert.True(t, goerrors.IsCategory(wrapped, goerrors.CategoryAuth))
}

func TestNewDuplicateFieldError(t *testing.T) {
	cause := repository.DuplicateKey(auth.UsersCollection, auth.FieldEmail, "", errors.New("UNIQUE constraint failed"))
	err := auth.NewDuplicateFieldError("email", "a@example.com", cause)

	assert.Equal(t, goerrors.CategoryConflict, err.Category)
	assert.Equal(t, goerrors.CodeConflict, err.Code)
	assert.Equal(t, "Duplicate value for field: email", err.Message)

	field, value, ok := auth.AsDuplicateField(fmt.Errorf("signup: %w", err))
	require.True(t, ok)
	assert.Equal(t, "email", field)
	assert.Equal(t, "a@example.com", value)

	assert.True(t, repository.IsDuplicateKey(err))

	_, _, ok = auth.AsDuplicateField(cause)
	assert.False(t, ok)
	_, _, ok = auth.AsDuplicateField(errors.New("boom"))
	assert.False(t, ok)
}

func TestValidateInput(t *testing.T) {
	in := auth.SignupInput{Email: "not-an-email"}
	err := auth.ValidateInput(in.Validate, "Invalid signup")
	require.Error(t, err)

	var rich *goerrors.Error
	require.ErrorAs(t, err, &rich)
	assert.Equal(t, goerrors.CategoryValidation, rich.Category)
	assert.Equal(t, goerrors.CodeBadRequest, rich.Code)
	assert.Equal(t, "Invalid signup", rich.Message)

	fields, ok := auth.ValidationFields(err)
	require.True(t, ok)
	assert.Contains(t, fields, "userName")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	valid := auth.SignupInput{UserName: "alice", Email: "alice@example.com", Password: "secret1"}
	assert.NoError(t, auth.ValidateInput(valid.Validate, "Invalid signup"))
}

func TestNewValidationError(t *testing.T) {
	err := auth.NewValidationError("Validation failed", map[string]string{"stock": "must be a non negative integer"})

	assert.Equal(t, goerrors.CategoryValidation, err.Category)
	assert.Equal(t, goerrors.CodeBadRequest, err.Code)

	fields, ok := auth.ValidationFields(fmt.Errorf("update: %w", err))
	require.True(t, ok)
	assert.Equal(t, map[string]string{"stock": "must be a non negative integer"}, fields)

	_, ok = auth.ValidationFields(auth.ErrInvalidID)
	assert.False(t, ok)
}
