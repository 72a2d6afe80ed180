// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/ndedov/go-stash-sync/internal/logger"
	"github.com/ndedov/go-stash-sync/models"
)

// noteColumns is the canonical column order shared by every note query and
// row scan in this file.
var noteColumns = []string{
	"id", "user_id", "title", "content", "folder",
	"pinned", "pinned_order", "archived",
	"created_at", "updated_at", "deleted_at",
}

// noteRepository is the SQL-backed implementation of [NoteRepository]. It
// executes all note reads and writes against the "notes" table using the
// embedded [*DB] connection.
//
// Every public method obtains a context-scoped logger via
// [logger.FromContext] so that all database interactions are traced with
// structured fields (user_id, id, and so on).
type noteRepository struct {
	*DB
	logger *logger.Logger
}

// NewNoteRepository constructs a [NoteRepository] backed by the provided
// database connection and logger.
func NewNoteRepository(db *DB, logger *logger.Logger) NoteRepository {
	return &noteRepository{
		DB:     db,
		logger: logger,
	}
}

func scanNote(scanner interface{ Scan(...any) error }) (*models.Note, error) {
	var note models.Note

	err := scanner.Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Content,
		&note.Folder,
		&note.Pinned,
		&note.PinnedOrder,
		&note.Archived,
		&note.CreatedAt,
		&note.UpdatedAt,
		&note.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	return &note, nil
}

// GetByID implements [NoteRepository].
func (r *noteRepository) GetByID(ctx context.Context, userID int64, id string) (*models.Note, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetByIDQuery("notes", noteColumns, userID, id)
	if err != nil {
		log.Err(err).
			Str("func", "noteRepository.GetByID").
			Int64("user_id", userID).
			Str("id", id).
			Msg("failed to build query")
		return nil, err
	}

	note, scanErr := scanNote(r.DB.QueryRowContext(ctx, query, args...))
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil, ErrEntityNotFound
		}

		log.Err(scanErr).
			Str("func", "noteRepository.GetByID").
			Int64("user_id", userID).
			Str("id", id).
			Msg("failed to scan note row")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	return note, nil
}

// Insert implements [NoteRepository].
func (r *noteRepository) Insert(ctx context.Context, note *models.Note) error {
	log := logger.FromContext(ctx)

	query, args, err := psql.
		Insert("notes").
		Columns(noteColumns...).
		Values(
			note.ID, note.UserID, note.Title, note.Content, note.Folder,
			note.Pinned, note.PinnedOrder, note.Archived,
			note.CreatedAt, note.UpdatedAt, note.DeletedAt,
		).
		ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "noteRepository.Insert").
			Str("id", note.ID).
			Msg("failed to build insert query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, execErr := r.DB.ExecContext(ctx, query, args...); execErr != nil {
		if r.errorClassifier.IsUniqueViolation(execErr) {
			return ErrDuplicateEntity
		}

		log.Err(execErr).
			Str("func", "noteRepository.Insert").
			Int64("user_id", note.UserID).
			Str("id", note.ID).
			Msg("failed to insert note")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, execErr)
	}

	return nil
}

// Update implements [NoteRepository]. The caller has already stamped
// updated_at; the row is overwritten as given.
func (r *noteRepository) Update(ctx context.Context, note *models.Note) error {
	log := logger.FromContext(ctx)

	query, args, err := psql.
		Update("notes").
		Set("title", note.Title).
		Set("content", note.Content).
		Set("folder", note.Folder).
		Set("pinned", note.Pinned).
		Set("pinned_order", note.PinnedOrder).
		Set("archived", note.Archived).
		Set("updated_at", note.UpdatedAt).
		Where(sq.Eq{"user_id": note.UserID, "id": note.ID}).
		ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "noteRepository.Update").
			Str("id", note.ID).
			Msg("failed to build update query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, execErr := r.DB.ExecContext(ctx, query, args...)
	if execErr != nil {
		log.Err(execErr).
			Str("func", "noteRepository.Update").
			Int64("user_id", note.UserID).
			Str("id", note.ID).
			Msg("failed to update note")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, execErr)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		log.Warn().
			Str("func", "noteRepository.Update").
			Int64("user_id", note.UserID).
			Str("id", note.ID).
			Msg("note not found")
		return ErrEntityNotFound
	}

	return nil
}

// Tombstone implements [NoteRepository].
func (r *noteRepository) Tombstone(ctx context.Context, userID int64, id string, now time.Time) error {
	log := logger.FromContext(ctx)

	query, args, err := buildTombstoneQuery("notes", userID, id, now)
	if err != nil {
		log.Err(err).
			Str("func", "noteRepository.Tombstone").
			Str("id", id).
			Msg("failed to build tombstone query")
		return err
	}

	result, execErr := r.DB.ExecContext(ctx, query, args...)
	if execErr != nil {
		log.Err(execErr).
			Str("func", "noteRepository.Tombstone").
			Int64("user_id", userID).
			Str("id", id).
			Msg("failed to execute soft delete query")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, execErr)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		// Either the row never existed or a concurrent batch tombstoned it
		// first; both resolve to not-found for the caller.
		return ErrEntityNotFound
	}

	log.Debug().
		Str("func", "noteRepository.Tombstone").
		Int64("user_id", userID).
		Str("id", id).
		Msg("soft-deleted note")

	return nil
}

// ListChangedSince implements [NoteRepository].
func (r *noteRepository) ListChangedSince(ctx context.Context, userID int64, since time.Time) ([]*models.Note, error) {
	query, args, err := buildListChangedSinceQuery("notes", noteColumns, userID, since)
	if err != nil {
		return nil, err
	}

	return r.queryNotes(ctx, "noteRepository.ListChangedSince", userID, query, args)
}

// ListLive implements [NoteRepository].
func (r *noteRepository) ListLive(ctx context.Context, userID int64) ([]*models.Note, error) {
	query, args, err := buildListLiveQuery("notes", noteColumns, userID)
	if err != nil {
		return nil, err
	}

	return r.queryNotes(ctx, "noteRepository.ListLive", userID, query, args)
}

// MaxPinnedOrder implements [NoteRepository].
func (r *noteRepository) MaxPinnedOrder(ctx context.Context, userID int64) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildMaxPinnedOrderQuery("notes", userID)
	if err != nil {
		return 0, err
	}

	var max int64
	if scanErr := r.DB.QueryRowContext(ctx, query, args...).Scan(&max); scanErr != nil {
		log.Err(scanErr).
			Str("func", "noteRepository.MaxPinnedOrder").
			Int64("user_id", userID).
			Msg("failed to query max pinned order")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, scanErr)
	}

	return max, nil
}

// queryNotes runs a multi-row note query and scans the full result set.
func (r *noteRepository) queryNotes(ctx context.Context, caller string, userID int64, query string, args []any) ([]*models.Note, error) {
	log := logger.FromContext(ctx)

	rows, queryErr := r.DB.QueryContext(ctx, query, args...)
	if queryErr != nil {
		log.Err(queryErr).
			Str("func", caller).
			Int64("user_id", userID).
			Msg("failed to execute note list query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, queryErr)
	}
	defer rows.Close()

	notes := make([]*models.Note, 0, 50)

	for rows.Next() {
		note, scanErr := scanNote(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", caller).
				Int64("user_id", userID).
				Msg("failed to scan note row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		notes = append(notes, note)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", caller).
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return notes, nil
}
