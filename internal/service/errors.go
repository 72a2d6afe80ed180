package service

import "errors"

var (
	ErrValidationError = errors.New("validation error")
	ErrNoUserID        = errors.New("user id is not provided")
	ErrSyncFailed      = errors.New("sync failed")
	ErrRecentFailed    = errors.New("recent lookup failed")
)
