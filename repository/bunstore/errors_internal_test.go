package bunstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-shop-auth/repository"
)

func TestDuplicateKeyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantNil   bool
		wantField string
		wantValue string
	}{
		{
			name: "postgres unique violation",
			err: fmt.Errorf("insert: %w", &pgconn.PgError{
				Code:   "23505",
				Detail: "Key (user_name)=(alice) already exists.",
			}),
			wantField: "user_name",
			wantValue: "alice",
		},
		{
			name:    "postgres other error",
			err:     &pgconn.PgError{Code: "23503"},
			wantNil: true,
		},
		{
			name:      "sqlite unique violation",
			err:       errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"),
			wantField: "email",
		},
		{
			name:    "unrelated error",
			err:     errors.New("connection refused"),
			wantNil: true,
		},
		{
			name:    "nil",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := duplicateKeyError("users", tt.err)
			if tt.wantNil {
				assert.Nil(t, err)
				return
			}

			dup, ok := repository.AsDuplicateKey(err)
			require.True(t, ok)
			assert.Equal(t, "users", dup.Collection)
			assert.Equal(t, tt.wantField, dup.Field)
			assert.Equal(t, tt.wantValue, dup.Value)
			assert.True(t, repository.IsDuplicateKey(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestColumnValue(t *testing.T) {
	assert.Equal(t, `["a","b"]`, columnValue([]string{"a", "b"}))
	assert.Equal(t, `{"k":1}`, columnValue(map[string]int{"k": 1}))
	assert.Equal(t, 3, columnValue(3))
	assert.Equal(t, "plain", columnValue("plain"))
	assert.Nil(t, columnValue(nil))
}
