package shop_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-shop-auth/repository/bunstore"
	"github.com/goliatone/go-shop-auth/storage"
)

// newStore returns a migrated in-memory SQLite store
func newStore(t *testing.T) *storage.Manager {
	t.Helper()

	db, err := bunstore.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := storage.OpenBun(context.Background(), db)
	require.NoError(t, err)
	return store
}

// ticker returns a clock that advances one second per call
func ticker(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}
