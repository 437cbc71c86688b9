package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-shop-auth"
)

func TestJWTClaims_Subject(t *testing.T) {
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user123",
		},
	}

	assert.Equal(t, "user123", claims.Subject())
}

func TestJWTClaims_UserID(t *testing.T) {
	t.Run("returns UID when present", func(t *testing.T) {
		claims := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject: "user123",
			},
			UID: "uid456",
		}

		assert.Equal(t, "uid456", claims.UserID())
	})

	t.Run("fallback to subject when UID is empty", func(t *testing.T) {
		claims := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject: "user123",
			},
		}

		assert.Equal(t, "user123", claims.UserID())
	})
}

func TestJWTClaims_Accessors(t *testing.T) {
	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Subject:   "user123",
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
		},
		UName:    "alice",
		UEmail:   "alice@example.com",
		UserRole: "admin",
	}

	assert.Equal(t, "alice", claims.UserName())
	assert.Equal(t, "alice@example.com", claims.Email())
	assert.Equal(t, "admin", claims.Role())
	assert.Equal(t, "jti-1", claims.TokenID())
	assert.True(t, claims.IssuedAt().Equal(issued))
	assert.True(t, claims.Expires().Equal(issued.Add(time.Hour)))
}

func TestJWTClaims_MissingTimes(t *testing.T) {
	claims := &auth.JWTClaims{}

	assert.True(t, claims.Expires().IsZero())
	assert.True(t, claims.IssuedAt().IsZero())
}

func TestJWTClaims_Roles(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		check   string
		has     bool
		atLeast bool
	}{
		{name: "user checks user", role: "user", check: "user", has: true, atLeast: true},
		{name: "admin checks user", role: "admin", check: "user", has: false, atLeast: true},
		{name: "user checks admin", role: "user", check: "admin", has: false, atLeast: false},
		{name: "admin checks admin", role: "admin", check: "admin", has: true, atLeast: true},
		{name: "unknown role", role: "guest", check: "user", has: false, atLeast: false},
		{name: "unknown requirement", role: "admin", check: "root", has: false, atLeast: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &auth.JWTClaims{UserRole: tt.role}
			assert.Equal(t, tt.has, claims.HasRole(tt.check))
			assert.Equal(t, tt.atLeast, claims.IsAtLeast(tt.check))
		})
	}
}
