package storage_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-shop-auth"
	"github.com/goliatone/go-shop-auth/config"
	"github.com/goliatone/go-shop-auth/repository"
	"github.com/goliatone/go-shop-auth/repository/bunstore"
	"github.com/goliatone/go-shop-auth/shop"
	"github.com/goliatone/go-shop-auth/storage"
)

func openSQLite(t *testing.T) *storage.Manager {
	t.Helper()

	cfg := config.Config{
		StoreDriver: config.DriverSQLite,
		DatabaseDSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}

	m, err := storage.Open(context.Background(), cfg, auth.DefaultLogger("test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m
}

func TestOpenSQLiteMigratesSchema(t *testing.T) {
	ctx := context.Background()
	m := openSQLite(t)

	require.NoError(t, m.Validate())

	user, err := m.Users().Register(ctx, &auth.User{
		UserName:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, user.Role)

	_, err = m.Users().Register(ctx, &auth.User{
		UserName:     "alice",
		Email:        "other@example.com",
		PasswordHash: "hash",
	})
	field, value, ok := auth.AsDuplicateField(err)
	require.True(t, ok, err)
	assert.Equal(t, "userName", field)
	assert.Equal(t, "alice", value)

	product, err := m.Products().Create(ctx, &shop.Product{ProductName: "Lamp", Price: 12.5, Stock: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)

	order, err := m.Orders().Create(ctx, &shop.Order{
		UserName: "alice",
		Items:    []shop.OrderItem{{ItemName: "Lamp", Quantity: 2}},
		Status:   shop.DefaultOrderStatus,
	})
	require.NoError(t, err)

	stored, err := m.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, []shop.OrderItem{{ItemName: "Lamp", Quantity: 2}}, stored.Items)

	updated, err := m.Orders().Update(ctx, order.ID, repository.Fields{
		shop.FieldItems: []shop.OrderItem{{ItemName: "Desk", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, []shop.OrderItem{{ItemName: "Desk", Quantity: 1}}, updated.Items)
}

func TestOpenBunIsIdempotent(t *testing.T) {
	ctx := context.Background()

	db, err := bunstore.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	defer db.Close()

	_, err = storage.OpenBun(ctx, db)
	require.NoError(t, err)

	m, err := storage.OpenBun(ctx, db)
	require.NoError(t, err)

	users, err := m.Users().List(ctx, repository.All())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), config.Config{StoreDriver: "redis"}, auth.DefaultLogger("test"))
	assert.Error(t, err)
}
