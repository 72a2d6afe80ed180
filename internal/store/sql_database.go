package store

import (
	"database/sql"

	"github.com/ndedov/go-stash-sync/internal/logger"
	"github.com/ndedov/go-stash-sync/migrations"
)

// DB wraps *sql.DB together with the driver-specific error classifier so
// repositories can distinguish constraint violations from transient
// failures without importing driver packages.
type DB struct {
	*sql.DB
	errorClassifier ErrorClassifier
	driver          string
	logger          *logger.Logger
}

// Migrate applies all pending schema migrations for the connected backend.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.driver)
}
