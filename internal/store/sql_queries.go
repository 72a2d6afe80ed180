// SPDX-License-Identifier: Apache-2.0

package store

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// psql builds parameterised queries with $N placeholders. PostgreSQL needs
// them and the sqlite3 driver accepts them, so one builder serves both
// backends.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildGetByIDQuery selects a single entity row by owner and id, tombstoned
// or not.
func buildGetByIDQuery(table string, columns []string, userID int64, id string) (string, []any, error) {
	query, args, err := psql.
		Select(columns...).
		From(table).
		Where(sq.Eq{"user_id": userID, "id": id}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildListLiveQuery selects every non-tombstoned entity of the owner,
// oldest-modified first.
func buildListLiveQuery(table string, columns []string, userID int64) (string, []any, error) {
	query, args, err := psql.
		Select(columns...).
		From(table).
		Where(sq.Eq{"user_id": userID}).
		Where("deleted_at IS NULL").
		OrderBy("updated_at ASC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildListChangedSinceQuery selects every entity of the owner, tombstones
// included, whose updated_at is at or after since. The inclusive bound means
// a client resending the exact watermark it was handed always re-receives
// the boundary row, which keeps the watermark monotonic.
func buildListChangedSinceQuery(table string, columns []string, userID int64, since time.Time) (string, []any, error) {
	query, args, err := psql.
		Select(columns...).
		From(table).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"updated_at": since}).
		OrderBy("updated_at ASC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildMaxPinnedOrderQuery returns the highest pinned_order among the
// owner's live pinned entities, or -1 when none are pinned. Orders are never
// reused: a freed slot stays free.
func buildMaxPinnedOrderQuery(table string, userID int64) (string, []any, error) {
	query, args, err := psql.
		Select("COALESCE(MAX(pinned_order), -1)").
		From(table).
		Where(sq.Eq{"user_id": userID, "pinned": true}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildTombstoneQuery soft-deletes a live entity, stamping both deleted_at
// and updated_at so the deletion shows up in delta queries. The
// deleted_at IS NULL guard makes the write race-tolerant: a concurrent
// tombstone simply affects zero rows.
func buildTombstoneQuery(table string, userID int64, id string, now time.Time) (string, []any, error) {
	query, args, err := psql.
		Update(table).
		Set("deleted_at", now).
		Set("updated_at", now).
		Where(sq.Eq{"user_id": userID, "id": id}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}
