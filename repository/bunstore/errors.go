package bunstore

import (
	"errors"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/goliatone/go-shop-auth/repository"
)

const pgUniqueViolation = "23505"

var (
	sqliteUniqueRe = regexp.MustCompile(`UNIQUE constraint failed: \w+\.(\w+)`)
	pgDetailRe     = regexp.MustCompile(`Key \((\w+)\)=\((.*)\) already exists`)
)

// duplicateKeyError translates unique constraint violations reported by
// PostgreSQL or SQLite into a repository.DuplicateKey conflict. It returns nil
// for any other error.
func duplicateKeyError(collection string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return nil
		}
		if m := pgDetailRe.FindStringSubmatch(pgErr.Detail); m != nil {
			return repository.DuplicateKey(collection, m[1], m[2], err)
		}
		return repository.DuplicateKey(collection, pgErr.ColumnName, "", err)
	}

	if m := sqliteUniqueRe.FindStringSubmatch(err.Error()); m != nil {
		return repository.DuplicateKey(collection, m[1], "", err)
	}

	return nil
}
