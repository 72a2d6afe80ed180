package http

import (
	"errors"
	"net/http"

	"github.com/ndedov/go-stash-sync/internal/service"
	"github.com/ndedov/go-stash-sync/internal/store"
	"github.com/ndedov/go-stash-sync/internal/syncer"
)

var errorStatusMap = map[error]int{
	service.ErrValidationError: http.StatusBadRequest,
	service.ErrNoUserID:        http.StatusBadRequest,

	store.ErrEntityNotFound:  http.StatusNotFound,
	store.ErrDuplicateEntity: http.StatusConflict,

	store.ErrEntityNotSaved:   http.StatusInternalServerError,
	store.ErrBuildingSQLQuery: http.StatusInternalServerError,
	store.ErrExecutingQuery:   http.StatusInternalServerError,
	store.ErrScanningRow:      http.StatusInternalServerError,
	store.ErrScanningRows:     http.StatusInternalServerError,
}

// statusFromError maps service and store failures to HTTP status codes.
// Envelope-level rejections carry a [syncer.BadRequestError] and always map
// to 400; anything unrecognized is a 500.
func statusFromError(err error) int {
	if syncer.IsBadRequest(err) {
		return http.StatusBadRequest
	}

	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
