package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-shop-auth"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
		},
		{
			name:     "Unicode password",
			password: "pässwörd-✓",
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  auth.ErrNoEmptyString,
		},
		{
			name:     "Password over 72 bytes",
			password: strings.Repeat("a", 73),
			wantErr:  auth.ErrPasswordTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := auth.HashPassword(tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)

			err = auth.ComparePasswordAndHash(tt.password, hash)
			assert.NoError(t, err)
		})
	}
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	h1, err := auth.HashPassword("same-password")
	require.NoError(t, err)
	h2, err := auth.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, auth.Hasher{}.VerifyPassword("same-password", h1))
	assert.True(t, auth.Hasher{}.VerifyPassword("same-password", h2))
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPassword123!"
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  bool
	}{
		{
			name:     "Matching password",
			password: password,
			hash:     hash,
		},
		{
			name:     "Wrong password",
			password: "wrongPassword",
			hash:     hash,
			wantErr:  true,
		},
		{
			name:     "Invalid hash",
			password: password,
			hash:     "invalidhash",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ComparePasswordAndHash(tt.password, tt.hash)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.ErrorIs(t, auth.ComparePasswordAndHash("wrongPassword", hash), auth.ErrMismatchedHashAndPassword)
}

func TestVerifyPasswordNeverPanics(t *testing.T) {
	h := auth.NewHasher(bcrypt.MinCost)

	for _, hash := range []string{"", "$2a$", "not a hash", strings.Repeat("$", 100)} {
		assert.NotPanics(t, func() {
			assert.False(t, h.VerifyPassword("secret", hash))
		})
	}
}

func TestNewHasherCost(t *testing.T) {
	h := auth.NewHasher(bcrypt.MinCost)
	assert.Equal(t, bcrypt.MinCost, h.Cost())

	hash, err := h.HashPassword("secret")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.NotEqual(t, 100, auth.NewHasher(100).Cost())
	assert.NotZero(t, auth.NewHasher(0).Cost())
}
