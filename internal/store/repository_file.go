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

var fileColumns = []string{
	"id", "user_id", "name", "path", "size", "content_type",
	"created_at", "updated_at", "deleted_at",
}

// fileRepository is the SQL-backed implementation of [FileRepository].
type fileRepository struct {
	*DB
	logger *logger.Logger
}

// NewFileRepository constructs a [FileRepository] backed by the provided
// database connection and logger.
func NewFileRepository(db *DB, logger *logger.Logger) FileRepository {
	return &fileRepository{
		DB:     db,
		logger: logger,
	}
}

func scanFile(scanner interface{ Scan(...any) error }) (*models.FileObject, error) {
	var file models.FileObject

	err := scanner.Scan(
		&file.ID,
		&file.UserID,
		&file.Name,
		&file.Path,
		&file.Size,
		&file.ContentType,
		&file.CreatedAt,
		&file.UpdatedAt,
		&file.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	return &file, nil
}

// GetByID implements [FileRepository].
func (r *fileRepository) GetByID(ctx context.Context, userID int64, id string) (*models.FileObject, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetByIDQuery("files", fileColumns, userID, id)
	if err != nil {
		return nil, err
	}

	file, scanErr := scanFile(r.DB.QueryRowContext(ctx, query, args...))
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil, ErrEntityNotFound
		}

		log.Err(scanErr).
			Str("func", "fileRepository.GetByID").
			Int64("user_id", userID).
			Str("id", id).
			Msg("failed to scan file row")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	return file, nil
}

// Insert implements [FileRepository].
func (r *fileRepository) Insert(ctx context.Context, file *models.FileObject) error {
	log := logger.FromContext(ctx)

	query, args, err := psql.
		Insert("files").
		Columns(fileColumns...).
		Values(
			file.ID, file.UserID, file.Name, file.Path, file.Size, file.ContentType,
			file.CreatedAt, file.UpdatedAt, file.DeletedAt,
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
			Str("func", "fileRepository.Insert").
			Int64("user_id", file.UserID).
			Str("id", file.ID).
			Msg("failed to insert file")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, execErr)
	}

	return nil
}

// Update implements [FileRepository].
func (r *fileRepository) Update(ctx context.Context, file *models.FileObject) error {
	log := logger.FromContext(ctx)

	query, args, err := psql.
		Update("files").
		Set("name", file.Name).
		Set("path", file.Path).
		Set("size", file.Size).
		Set("content_type", file.ContentType).
		Set("updated_at", file.UpdatedAt).
		Where(sq.Eq{"user_id": file.UserID, "id": file.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, execErr := r.DB.ExecContext(ctx, query, args...)
	if execErr != nil {
		log.Err(execErr).
			Str("func", "fileRepository.Update").
			Int64("user_id", file.UserID).
			Str("id", file.ID).
			Msg("failed to update file")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, execErr)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrEntityNotFound
	}

	return nil
}

// Tombstone implements [FileRepository].
func (r *fileRepository) Tombstone(ctx context.Context, userID int64, id string, now time.Time) error {
	log := logger.FromContext(ctx)

	query, args, err := buildTombstoneQuery("files", userID, id, now)
	if err != nil {
		return err
	}

	result, execErr := r.DB.ExecContext(ctx, query, args...)
	if execErr != nil {
		log.Err(execErr).
			Str("func", "fileRepository.Tombstone").
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

// ListChangedSince implements [FileRepository].
func (r *fileRepository) ListChangedSince(ctx context.Context, userID int64, since time.Time) ([]*models.FileObject, error) {
	query, args, err := buildListChangedSinceQuery("files", fileColumns, userID, since)
	if err != nil {
		return nil, err
	}

	return r.queryFiles(ctx, "fileRepository.ListChangedSince", userID, query, args)
}

// ListLive implements [FileRepository].
func (r *fileRepository) ListLive(ctx context.Context, userID int64) ([]*models.FileObject, error) {
	query, args, err := buildListLiveQuery("files", fileColumns, userID)
	if err != nil {
		return nil, err
	}

	return r.queryFiles(ctx, "fileRepository.ListLive", userID, query, args)
}

func (r *fileRepository) queryFiles(ctx context.Context, caller string, userID int64, query string, args []any) ([]*models.FileObject, error) {
	log := logger.FromContext(ctx)

	rows, queryErr := r.DB.QueryContext(ctx, query, args...)
	if queryErr != nil {
		log.Err(queryErr).
			Str("func", caller).
			Int64("user_id", userID).
			Msg("failed to execute file list query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, queryErr)
	}
	defer rows.Close()

	files := make([]*models.FileObject, 0, 50)

	for rows.Next() {
		file, scanErr := scanFile(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", caller).
				Int64("user_id", userID).
				Msg("failed to scan file row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		files = append(files, file)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", caller).
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return files, nil
}
