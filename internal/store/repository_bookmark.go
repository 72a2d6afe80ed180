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

var bookmarkColumns = []string{
	"id", "user_id", "url", "title", "folder",
	"pinned", "pinned_order",
	"created_at", "updated_at", "deleted_at",
}

// bookmarkRepository is the SQL-backed implementation of [BookmarkRepository],
// structured identically to the note repository.
type bookmarkRepository struct {
	*DB
	logger *logger.Logger
}

// NewBookmarkRepository constructs a [BookmarkRepository] backed by the
// provided database connection and logger.
func NewBookmarkRepository(db *DB, logger *logger.Logger) BookmarkRepository {
	return &bookmarkRepository{
		DB:     db,
		logger: logger,
	}
}

func scanBookmark(scanner interface{ Scan(...any) error }) (*models.Bookmark, error) {
	var bookmark models.Bookmark

	err := scanner.Scan(
		&bookmark.ID,
		&bookmark.UserID,
		&bookmark.URL,
		&bookmark.Title,
		&bookmark.Folder,
		&bookmark.Pinned,
		&bookmark.PinnedOrder,
		&bookmark.CreatedAt,
		&bookmark.UpdatedAt,
		&bookmark.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	return &bookmark, nil
}

// GetByID implements [BookmarkRepository].
func (r *bookmarkRepository) GetByID(ctx context.Context, userID int64, id string) (*models.Bookmark, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetByIDQuery("bookmarks", bookmarkColumns, userID, id)
	if err != nil {
		return nil, err
	}

	bookmark, scanErr := scanBookmark(r.DB.QueryRowContext(ctx, query, args...))
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil, ErrEntityNotFound
		}

		log.Err(scanErr).
			Str("func", "bookmarkRepository.GetByID").
			Int64("user_id", userID).
			Str("id", id).
			Msg("failed to scan bookmark row")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	return bookmark, nil
}

// Insert implements [BookmarkRepository].
func (r *bookmarkRepository) Insert(ctx context.Context, bookmark *models.Bookmark) error {
	log := logger.FromContext(ctx)

	query, args, err := psql.
		Insert("bookmarks").
		Columns(bookmarkColumns...).
		Values(
			bookmark.ID, bookmark.UserID, bookmark.URL, bookmark.Title, bookmark.Folder,
			bookmark.Pinned, bookmark.PinnedOrder,
			bookmark.CreatedAt, bookmark.UpdatedAt, bookmark.DeletedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, execErr := r.DB.ExecContext(ctx, query, args...); execErr != nil {
		if r.errorClassifier.IsUniqueViolation(execErr) {
			return ErrDuplicateEntity
		}

		log.Err(execErr).
			Str("func", "bookmarkRepository.Insert").
			Int64("user_id", bookmark.UserID).
			Str("id", bookmark.ID).
			Msg("failed to insert bookmark")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, execErr)
	}

	return nil
}

// Update implements [BookmarkRepository].
func (r *bookmarkRepository) Update(ctx context.Context, bookmark *models.Bookmark) error {
	log := logger.FromContext(ctx)

	query, args, err := psql.
		Update("bookmarks").
		Set("url", bookmark.URL).
		Set("title", bookmark.Title).
		Set("folder", bookmark.Folder).
		Set("pinned", bookmark.Pinned).
		Set("pinned_order", bookmark.PinnedOrder).
		Set("updated_at", bookmark.UpdatedAt).
		Where(sq.Eq{"user_id": bookmark.UserID, "id": bookmark.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, execErr := r.DB.ExecContext(ctx, query, args...)
	if execErr != nil {
		log.Err(execErr).
			Str("func", "bookmarkRepository.Update").
			Int64("user_id", bookmark.UserID).
			Str("id", bookmark.ID).
			Msg("failed to update bookmark")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, execErr)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrEntityNotFound
	}

	return nil
}

// Tombstone implements [BookmarkRepository].
func (r *bookmarkRepository) Tombstone(ctx context.Context, userID int64, id string, now time.Time) error {
	log := logger.FromContext(ctx)

	query, args, err := buildTombstoneQuery("bookmarks", userID, id, now)
	if err != nil {
		return err
	}

	result, execErr := r.DB.ExecContext(ctx, query, args...)
	if execErr != nil {
		log.Err(execErr).
			Str("func", "bookmarkRepository.Tombstone").
			Int64("user_id", userID).
			Str("id", id).
			Msg("failed to execute soft delete query")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, execErr)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrEntityNotFound
	}

	return nil
}

// ListChangedSince implements [BookmarkRepository].
func (r *bookmarkRepository) ListChangedSince(ctx context.Context, userID int64, since time.Time) ([]*models.Bookmark, error) {
	query, args, err := buildListChangedSinceQuery("bookmarks", bookmarkColumns, userID, since)
	if err != nil {
		return nil, err
	}

	return r.queryBookmarks(ctx, "bookmarkRepository.ListChangedSince", userID, query, args)
}

// ListLive implements [BookmarkRepository].
func (r *bookmarkRepository) ListLive(ctx context.Context, userID int64) ([]*models.Bookmark, error) {
	query, args, err := buildListLiveQuery("bookmarks", bookmarkColumns, userID)
	if err != nil {
		return nil, err
	}

	return r.queryBookmarks(ctx, "bookmarkRepository.ListLive", userID, query, args)
}

// MaxPinnedOrder implements [BookmarkRepository].
func (r *bookmarkRepository) MaxPinnedOrder(ctx context.Context, userID int64) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildMaxPinnedOrderQuery("bookmarks", userID)
	if err != nil {
		return 0, err
	}

	var max int64
	if scanErr := r.DB.QueryRowContext(ctx, query, args...).Scan(&max); scanErr != nil {
		log.Err(scanErr).
			Str("func", "bookmarkRepository.MaxPinnedOrder").
			Int64("user_id", userID).
			Msg("failed to query max pinned order")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, scanErr)
	}

	return max, nil
}

func (r *bookmarkRepository) queryBookmarks(ctx context.Context, caller string, userID int64, query string, args []any) ([]*models.Bookmark, error) {
	log := logger.FromContext(ctx)

	rows, queryErr := r.DB.QueryContext(ctx, query, args...)
	if queryErr != nil {
		log.Err(queryErr).
			Str("func", caller).
			Int64("user_id", userID).
			Msg("failed to execute bookmark list query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, queryErr)
	}
	defer rows.Close()

	bookmarks := make([]*models.Bookmark, 0, 50)

	for rows.Next() {
		bookmark, scanErr := scanBookmark(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", caller).
				Int64("user_id", userID).
				Msg("failed to scan bookmark row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		bookmarks = append(bookmarks, bookmark)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", caller).
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return bookmarks, nil
}
