// SPDX-License-Identifier: Apache-2.0

package http

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ndedov/go-stash-sync/internal/app"
	"github.com/ndedov/go-stash-sync/internal/config"
	"github.com/ndedov/go-stash-sync/internal/logger"
	"github.com/ndedov/go-stash-sync/internal/mock"
	"github.com/ndedov/go-stash-sync/internal/service"
	"github.com/ndedov/go-stash-sync/internal/store"
	"github.com/ndedov/go-stash-sync/internal/syncer"
	"github.com/ndedov/go-stash-sync/internal/utils"
	"github.com/ndedov/go-stash-sync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testSignKey = "test-sign-key"
	testIssuer  = "stash-sync"
	testUserID  = int64(7)
)

func newTestHandler(t *testing.T, ctrl *gomock.Controller) (*Handler, *mock.MockSyncService) {
	t.Helper()

	svc := mock.NewMockSyncService(ctrl)
	services := &service.Services{
		NoteSync:     svc,
		BookmarkSync: svc,
		FileSync:     svc,
	}

	appCfg := config.App{
		TokenSignKey: testSignKey,
		TokenIssuer:  testIssuer,
		Version:      "1.2.3",
	}

	return NewHandler(services, appCfg, logger.Nop()), svc
}

func bearerToken(t *testing.T, userID int64, duration time.Duration) string {
	t.Helper()

	token, err := utils.GenerateJWTToken(testIssuer, userID, duration, testSignKey)
	require.NoError(t, err)

	return "Bearer " + token.SignedString
}

func TestSyncNotesEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, svc := newTestHandler(t, ctrl)
	router := h.Init()

	body := `{"operations": [{"operation_id": "op-1", "op": "create", "id": "n1", "content": "milk"}]}`
	watermark := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	svc.EXPECT().
		Sync(gomock.Any(), testUserID, []byte(body)).
		Return(models.SyncResult{
			AppliedIDs:         []string{"op-1"},
			Entities:           []models.SyncEntity{},
			Conflicts:          []models.Conflict{},
			UpdatedEntities:    []models.SyncEntity{},
			ServerUpdatedSince: watermark,
		}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/sync/notes", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, testUserID, time.Hour))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result struct {
		AppliedIDs         []string  `json:"applied_ids"`
		ServerUpdatedSince time.Time `json:"server_updated_since"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, []string{"op-1"}, result.AppliedIDs)
	assert.Equal(t, watermark, result.ServerUpdatedSince)
}

func TestSyncNotesEndpoint_GzipRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, svc := newTestHandler(t, ctrl)
	router := h.Init()

	body := `{"operations": [{"operation_id": "op-1", "op": "create", "id": "n1", "content": "milk"}]}`
	watermark := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// The service must see the decompressed envelope.
	svc.EXPECT().
		Sync(gomock.Any(), testUserID, []byte(body)).
		Return(models.SyncResult{
			AppliedIDs:         []string{"op-1"},
			Entities:           []models.SyncEntity{},
			Conflicts:          []models.Conflict{},
			UpdatedEntities:    []models.SyncEntity{},
			ServerUpdatedSince: watermark,
		}, nil)

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	_, err := zw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sync/notes", &compressed)
	req.Header.Set("Authorization", bearerToken(t, testUserID, time.Hour))
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	decoded, err := io.ReadAll(zr)
	require.NoError(t, err)

	var result struct {
		AppliedIDs []string `json:"applied_ids"`
	}
	require.NoError(t, json.Unmarshal(decoded, &result))
	assert.Equal(t, []string{"op-1"}, result.AppliedIDs)
}

func TestSyncEndpoint_InvalidGzipBodyRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _ := newTestHandler(t, ctrl)
	router := h.Init()

	req := httptest.NewRequest(http.MethodPost, "/api/sync/notes", strings.NewReader("not gzip at all"))
	req.Header.Set("Authorization", bearerToken(t, testUserID, time.Hour))
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncEndpoint_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{
			name:       "malformed envelope",
			svcErr:     fmt.Errorf("%w: %w", service.ErrSyncFailed, &syncer.BadRequestError{Field: "last_sync", Reason: "cannot parse"}),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "store failure",
			svcErr:     fmt.Errorf("%w: %w", service.ErrSyncFailed, store.ErrExecutingQuery),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "validation failure",
			svcErr:     fmt.Errorf("%w: %w", service.ErrValidationError, service.ErrNoUserID),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			h, svc := newTestHandler(t, ctrl)
			router := h.Init()

			svc.EXPECT().
				Sync(gomock.Any(), testUserID, gomock.Any()).
				Return(models.SyncResult{}, tt.svcErr)

			req := httptest.NewRequest(http.MethodPost, "/api/sync/bookmarks", strings.NewReader(`{"operations": []}`))
			req.Header.Set("Authorization", bearerToken(t, testUserID, time.Hour))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRecentNotesEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, svc := newTestHandler(t, ctrl)
	router := h.Init()

	note := &models.Note{Title: "groceries", Content: "milk"}
	note.ID = "n1"
	note.UserID = testUserID

	svc.EXPECT().
		Recent(gomock.Any(), testUserID).
		Return([]models.SyncEntity{note}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/recent/notes", nil)
	req.Header.Set("Authorization", bearerToken(t, testUserID, time.Hour))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Entities []json.RawMessage `json:"entities"`
		Length   int               `json:"length"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Length)
	require.Len(t, response.Entities, 1)
	assert.Contains(t, string(response.Entities[0]), `"id":"n1"`)
}

func TestRecentEndpoint_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, svc := newTestHandler(t, ctrl)
	router := h.Init()

	svc.EXPECT().
		Recent(gomock.Any(), testUserID).
		Return(nil, fmt.Errorf("%w: %w", service.ErrRecentFailed, store.ErrExecutingQuery))

	req := httptest.NewRequest(http.MethodGet, "/api/recent/files", nil)
	req.Header.Set("Authorization", bearerToken(t, testUserID, time.Hour))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), app.MsgErrorListingRecent)
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		wantBody   string
	}{
		{
			name:     "missing header",
			wantBody: ErrEmptyAuthorizationHeader.Error(),
		},
		{
			name:       "header without token",
			authHeader: "Bearer",
			wantBody:   ErrInvalidAuthorizationHeader.Error(),
		},
		{
			name:       "empty token",
			authHeader: "Bearer ",
			wantBody:   ErrEmptyToken.Error(),
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not.a.jwt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			h, _ := newTestHandler(t, ctrl)
			router := h.Init()

			req := httptest.NewRequest(http.MethodGet, "/api/recent/notes", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _ := newTestHandler(t, ctrl)
	router := h.Init()

	req := httptest.NewRequest(http.MethodGet, "/api/recent/notes", nil)
	req.Header.Set("Authorization", bearerToken(t, testUserID, -time.Hour))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), app.MsgTokenIsExpired)
}

func TestVersionEndpoint_NoAuthRequired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _ := newTestHandler(t, ctrl)
	router := h.Init()

	req := httptest.NewRequest(http.MethodGet, "/api/version/", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1.2.3", rec.Body.String())
}

func TestUnsupportedMethodHidesRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _ := newTestHandler(t, ctrl)
	router := h.Init()

	req := httptest.NewRequest(http.MethodDelete, "/api/sync/notes", nil)
	req.Header.Set("Authorization", bearerToken(t, testUserID, time.Hour))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	// Unsupported methods answer 404, not 405, so the route set is not
	// enumerable.
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFromError(&syncer.BadRequestError{Field: "batch", Reason: "x"}))
	assert.Equal(t, http.StatusNotFound, statusFromError(store.ErrEntityNotFound))
	assert.Equal(t, http.StatusConflict, statusFromError(store.ErrDuplicateEntity))
	assert.Equal(t, http.StatusInternalServerError, statusFromError(fmt.Errorf("wrapped: %w", store.ErrScanningRow)))
	assert.Equal(t, http.StatusInternalServerError, statusFromError(fmt.Errorf("something else")))
}
