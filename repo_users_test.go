package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-shop-auth"
	"github.com/goliatone/go-shop-auth/repository"
)

func TestUsers_RegisterDefaults(t *testing.T) {
	created := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	users := newSQLiteUsers(t, auth.WithUsersClock(fixedClock(created)))
	ctx := context.Background()

	user, err := users.Register(ctx, &auth.User{
		UserName:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Role:         "superuser",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, auth.RoleUser, user.Role)
	assert.True(t, user.CreatedAt.Equal(created))
	assert.True(t, user.UpdatedAt.Equal(created))
	assert.Empty(t, user.Token)

	got, err := users.GetByUserName(ctx, " alice ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
}

func TestUsers_RegisterDuplicate(t *testing.T) {
	users := newSQLiteUsers(t)
	ctx := context.Background()

	_, err := users.Register(ctx, &auth.User{UserName: "alice", Email: "alice@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = users.Register(ctx, &auth.User{UserName: "bob", Email: "alice@example.com", PasswordHash: "h"})

	field, value, ok := auth.AsDuplicateField(err)
	require.True(t, ok, err)
	assert.Equal(t, "email", field)
	assert.Equal(t, "alice@example.com", value)
	assert.True(t, repository.IsDuplicateKey(err))
}

func TestUsers_EnsureUnique(t *testing.T) {
	users := newSQLiteUsers(t)
	ctx := context.Background()

	alice, err := users.Register(ctx, &auth.User{UserName: "alice", Email: "alice@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	assert.NoError(t, users.EnsureUnique(ctx, auth.FieldUserName, "bob", ""))
	assert.NoError(t, users.EnsureUnique(ctx, auth.FieldUserName, "alice", alice.ID))

	err = users.EnsureUnique(ctx, auth.FieldEmail, "alice@example.com", "")
	field, value, ok := auth.AsDuplicateField(err)
	require.True(t, ok, err)
	assert.Equal(t, "email", field)
	assert.Equal(t, "alice@example.com", value)
}

func TestUsers_SetTokenAndPassword(t *testing.T) {
	clock := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	users := newSQLiteUsers(t, auth.WithUsersClock(func() time.Time { return clock }))
	ctx := context.Background()

	user, err := users.Register(ctx, &auth.User{UserName: "alice", Email: "alice@example.com", PasswordHash: "h1"})
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	withToken, err := users.SetToken(ctx, user.ID, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "token-1", withToken.Token)
	assert.Equal(t, "h1", withToken.PasswordHash)
	assert.True(t, withToken.UpdatedAt.Equal(clock))

	withHash, err := users.SetPasswordHash(ctx, user.ID, "h2")
	require.NoError(t, err)
	assert.Equal(t, "h2", withHash.PasswordHash)
	assert.Equal(t, "token-1", withHash.Token)

	_, err = users.SetToken(ctx, "missing", "token")
	assert.True(t, repository.IsNotFound(err))
}

func TestUsers_UpdateFieldsDuplicate(t *testing.T) {
	users := newSQLiteUsers(t)
	ctx := context.Background()

	alice, err := users.Register(ctx, &auth.User{UserName: "alice", Email: "alice@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = users.Register(ctx, &auth.User{UserName: "bob", Email: "bob@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = users.UpdateFields(ctx, alice.ID, repository.Fields{auth.FieldUserName: "bob"})

	field, value, ok := auth.AsDuplicateField(err)
	require.True(t, ok, err)
	assert.Equal(t, "userName", field)
	assert.Equal(t, "bob", value)

	status, body := auth.ErrorStatus(err)
	assert.Equal(t, 409, status)
	assert.Equal(t, "bob", body.Value)

	same, err := users.UpdateFields(ctx, alice.ID, repository.Fields{})
	require.NoError(t, err)
	assert.Equal(t, "alice", same.UserName)
}
