// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndedov/go-stash-sync/internal/logger"
	"github.com/ndedov/go-stash-sync/models"
)

func TestSyncClient_Sync_StoresWatermark(t *testing.T) {
	watermark := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	var gotLastSync atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/sync/notes", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req models.SyncRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotLastSync.Store(string(req.LastSync))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"applied_ids":          []string{"op-1"},
			"entities":             []any{},
			"conflicts":            []any{},
			"updated_entities":     []any{},
			"server_updated_since": watermark,
		})
	}))
	defer srv.Close()

	c := NewSyncClient(srv.URL, time.Second, logger.Nop())
	c.SetToken("test-token")

	// First call carries no watermark.
	outcome, err := c.Sync(context.Background(), FamilyNotes, []models.Operation{
		{OperationID: "op-1", Op: models.OpCreate, TargetID: "a"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"op-1"}, outcome.AppliedIDs)
	assert.Equal(t, "", gotLastSync.Load())

	mark, ok := c.Watermark(FamilyNotes)
	require.True(t, ok)
	assert.True(t, mark.Equal(watermark))

	// Second call must echo the stored watermark.
	_, err = c.Sync(context.Background(), FamilyNotes, nil)
	require.NoError(t, err)
	assert.Contains(t, gotLastSync.Load(), "2026-08-01T12:00:00Z")
}

func TestSyncClient_Sync_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request: field \"last_sync\"", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewSyncClient(srv.URL, time.Second, logger.Nop())

	_, err := c.Sync(context.Background(), FamilyNotes, nil)
	require.Error(t, err)

	// A failed sync must not advance the watermark.
	_, ok := c.Watermark(FamilyNotes)
	assert.False(t, ok)
}

func TestSyncClient_Recent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/recent/bookmarks", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"entities": []any{map[string]any{"id": "b1"}},
			"length":   1,
		})
	}))
	defer srv.Close()

	c := NewSyncClient(srv.URL, time.Second, logger.Nop())

	outcome, err := c.Recent(context.Background(), FamilyBookmarks)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Length)
	require.Len(t, outcome.Entities, 1)
}

func TestSyncClient_ServerVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("1.2.3"))
	}))
	defer srv.Close()

	c := NewSyncClient(srv.URL, time.Second, logger.Nop())

	version, err := c.ServerVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", version)
}

func TestSyncJob_StartAndStop(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"applied_ids":          []string{},
			"entities":             []any{},
			"conflicts":            []any{},
			"updated_entities":     []any{},
			"server_updated_since": time.Now().UTC(),
		})
	}))
	defer srv.Close()

	c := NewSyncClient(srv.URL, time.Second, logger.Nop())
	job := NewSyncJob(c, FamilyNotes)

	job.Start(context.Background(), 10*time.Millisecond)

	deadline := time.After(time.Second)
	for calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected the job to pull at least once")
		case <-time.After(5 * time.Millisecond):
		}
	}

	job.Stop()
	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, calls.Load(), "no pulls after Stop")
}

func TestSyncJob_StopWithoutStart(t *testing.T) {
	job := NewSyncJob(NewSyncClient("http://localhost:0", time.Second, logger.Nop()))

	// Must be a no-op, not a panic or deadlock.
	job.Stop()
}
