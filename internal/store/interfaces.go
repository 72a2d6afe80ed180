// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"time"

	"github.com/ndedov/go-stash-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// NoteRepository is the persistence capability set consumed by the note
// family's sync adapter. All reads and writes are scoped by user_id; no
// method ever crosses owners.
//
// Writes are single-row check-then-write operations. There is deliberately
// no transaction spanning a whole batch: losing a race against a concurrent
// batch surfaces as a version conflict on the next attempt rather than
// silent data loss.
type NoteRepository interface {
	// GetByID fetches one note, tombstoned or not.
	// Returns [ErrEntityNotFound] when no row matches.
	GetByID(ctx context.Context, userID int64, id string) (*models.Note, error)

	// Insert persists a new note. Returns [ErrDuplicateEntity] when the id
	// is already taken for this owner.
	Insert(ctx context.Context, note *models.Note) error

	// Update overwrites the mutable fields of an existing note.
	Update(ctx context.Context, note *models.Note) error

	// Tombstone soft-deletes the note: deleted_at and updated_at are both
	// set to now so the deletion replicates as a delta.
	Tombstone(ctx context.Context, userID int64, id string, now time.Time) error

	// ListChangedSince returns every note of the owner, tombstoned or not,
	// with updated_at at or after since.
	ListChangedSince(ctx context.Context, userID int64, since time.Time) ([]*models.Note, error)

	// ListLive returns every non-tombstoned note of the owner.
	ListLive(ctx context.Context, userID int64) ([]*models.Note, error)

	// MaxPinnedOrder returns the highest pinned_order among the owner's
	// pinned notes, or -1 when none are pinned.
	MaxPinnedOrder(ctx context.Context, userID int64) (int64, error)
}

// BookmarkRepository mirrors [NoteRepository] for the bookmark family.
type BookmarkRepository interface {
	GetByID(ctx context.Context, userID int64, id string) (*models.Bookmark, error)
	Insert(ctx context.Context, bookmark *models.Bookmark) error
	Update(ctx context.Context, bookmark *models.Bookmark) error
	Tombstone(ctx context.Context, userID int64, id string, now time.Time) error
	ListChangedSince(ctx context.Context, userID int64, since time.Time) ([]*models.Bookmark, error)
	ListLive(ctx context.Context, userID int64) ([]*models.Bookmark, error)
	MaxPinnedOrder(ctx context.Context, userID int64) (int64, error)
}

// FileRepository mirrors [NoteRepository] for uploaded file metadata.
// Files cannot be pinned, so there is no pinned-order query.
type FileRepository interface {
	GetByID(ctx context.Context, userID int64, id string) (*models.FileObject, error)
	Insert(ctx context.Context, file *models.FileObject) error
	Update(ctx context.Context, file *models.FileObject) error
	Tombstone(ctx context.Context, userID int64, id string, now time.Time) error
	ListChangedSince(ctx context.Context, userID int64, since time.Time) ([]*models.FileObject, error)
	ListLive(ctx context.Context, userID int64) ([]*models.FileObject, error)
}
