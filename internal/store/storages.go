package store

import (
	"context"
	"fmt"

	"github.com/ndedov/go-stash-sync/internal/config"
	"github.com/ndedov/go-stash-sync/internal/logger"
)

// Storages bundles every repository the service layer depends on.
type Storages struct {
	NoteRepository     NoteRepository
	BookmarkRepository BookmarkRepository
	FileRepository     FileRepository
}

// NewStorages opens the configured database backend, runs pending
// migrations, and wires up one repository per entity family.
//
// cfg.Driver selects the backend: "postgres" (default) or "sqlite".
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	var (
		db  *DB
		err error
	)

	switch cfg.DB.Driver {
	case "", "postgres":
		db, err = NewConnectPostgres(ctx, cfg.DB, log)
	case "sqlite":
		db, err = NewConnectSQLite(ctx, cfg.DB, log)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DB.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	return &Storages{
		NoteRepository:     NewNoteRepository(db, log),
		BookmarkRepository: NewBookmarkRepository(db, log),
		FileRepository:     NewFileRepository(db, log),
	}, nil
}
