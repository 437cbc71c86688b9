package auth

import (
	"embed"
	"io/fs"
)

const migrationsDir = "data/sql/migrations"

//go:embed data/sql/migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the goose SQL migrations for the users, products and
// orders tables, rooted at the migrations directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, migrationsDir)
	if err != nil {
		panic(err)
	}
	return sub
}
