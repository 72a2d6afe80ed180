package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/stretchr/testify/assert"
)

func TestPostgresErrorClassifier(t *testing.T) {
	classifier := NewPostgresErrorClassifier()

	assert.Equal(t, Retryable, classifier.Classify(&pgconn.PgError{Code: pgerrcode.DeadlockDetected}))
	assert.Equal(t, Retryable, classifier.Classify(&pgconn.PgError{Code: pgerrcode.ConnectionFailure}))
	assert.Equal(t, NonRetryable, classifier.Classify(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.Equal(t, NonRetryable, classifier.Classify(errors.New("not a pg error")))
	assert.Equal(t, NonRetryable, classifier.Classify(nil))

	assert.True(t, classifier.IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.False(t, classifier.IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.DeadlockDetected}))
	assert.False(t, classifier.IsUniqueViolation(errors.New("not a pg error")))
}

func TestSQLiteErrorClassifier(t *testing.T) {
	classifier := NewSQLiteErrorClassifier()

	assert.Equal(t, Retryable, classifier.Classify(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.Equal(t, Retryable, classifier.Classify(sqlite3.Error{Code: sqlite3.ErrLocked}))
	assert.Equal(t, NonRetryable, classifier.Classify(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.Equal(t, NonRetryable, classifier.Classify(nil))

	assert.True(t, classifier.IsUniqueViolation(sqlite3.Error{
		Code:         sqlite3.ErrConstraint,
		ExtendedCode: sqlite3.ErrConstraintPrimaryKey,
	}))
	assert.True(t, classifier.IsUniqueViolation(sqlite3.Error{
		Code:         sqlite3.ErrConstraint,
		ExtendedCode: sqlite3.ErrConstraintUnique,
	}))
	assert.False(t, classifier.IsUniqueViolation(errors.New("not a sqlite error")))
}
