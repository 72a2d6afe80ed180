// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ndedov/go-stash-sync/internal/mock"
	"github.com/ndedov/go-stash-sync/internal/store"
	"github.com/ndedov/go-stash-sync/internal/syncer"
	"github.com/ndedov/go-stash-sync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// mustOperation decodes a raw operation object so the retained payload is
// populated the same way it would be inside a real batch.
func mustOperation(t *testing.T, raw string) models.Operation {
	t.Helper()

	var op models.Operation
	require.NoError(t, json.Unmarshal([]byte(raw), &op))
	return op
}

func TestNoteAdapterDecode(t *testing.T) {
	adapter := NewNoteAdapter(nil)

	tests := []struct {
		name           string
		raw            string
		wantRecognized bool
		wantField      string
	}{
		{
			name:           "create with content",
			raw:            `{"op": "create", "id": "n1", "title": "groceries", "content": "milk"}`,
			wantRecognized: true,
		},
		{
			name:           "create with empty content is still valid",
			raw:            `{"op": "create", "id": "n1", "content": ""}`,
			wantRecognized: true,
		},
		{
			name:           "create without content",
			raw:            `{"op": "create", "id": "n1", "title": "groceries"}`,
			wantRecognized: true,
			wantField:      "content",
		},
		{
			name:           "rename with title only",
			raw:            `{"op": "rename", "id": "n1", "title": "new title"}`,
			wantRecognized: true,
		},
		{
			name:           "rename with neither title nor content",
			raw:            `{"op": "rename", "id": "n1"}`,
			wantRecognized: true,
			wantField:      "title",
		},
		{
			name:           "move without folder",
			raw:            `{"op": "move", "id": "n1"}`,
			wantRecognized: true,
			wantField:      "folder",
		},
		{
			name:           "pin without flag",
			raw:            `{"op": "pin", "id": "n1"}`,
			wantRecognized: true,
			wantField:      "pinned",
		},
		{
			name:           "archive needs no payload",
			raw:            `{"op": "archive", "id": "n1"}`,
			wantRecognized: true,
		},
		{
			name:           "restore needs no payload",
			raw:            `{"op": "restore", "id": "n1"}`,
			wantRecognized: true,
		},
		{
			name:           "delete needs no payload",
			raw:            `{"op": "delete", "id": "n1"}`,
			wantRecognized: true,
		},
		{
			name: "unknown kind is not recognized",
			raw:  `{"op": "star", "id": "n1"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := mustOperation(t, tt.raw)

			_, recognized, err := adapter.Decode(op)

			assert.Equal(t, tt.wantRecognized, recognized)
			if tt.wantField != "" {
				var bre *syncer.BadRequestError
				require.ErrorAs(t, err, &bre)
				assert.Equal(t, tt.wantField, bre.Field)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNoteAdapterLoad_MapsStoreNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockNoteRepository(ctrl)
	adapter := NewNoteAdapter(repo)

	repo.EXPECT().
		GetByID(gomock.Any(), int64(7), "missing").
		Return(nil, store.ErrEntityNotFound)

	_, err := adapter.Load(context.Background(), 7, "missing")
	assert.ErrorIs(t, err, syncer.ErrEntityNotFound)
}

func TestNoteAdapterCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockNoteRepository(ctrl)
	adapter := NewNoteAdapter(repo)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var inserted *models.Note
	repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, note *models.Note) error {
			inserted = note
			return nil
		})

	content := "milk"
	entity, err := adapter.Create(context.Background(), 7, "n1", noteCreatePayload{
		Title:   "groceries",
		Content: &content,
		Folder:  "home",
	}, now)
	require.NoError(t, err)

	require.NotNil(t, inserted)
	assert.Equal(t, "n1", inserted.ID)
	assert.Equal(t, int64(7), inserted.UserID)
	assert.Equal(t, "groceries", inserted.Title)
	assert.Equal(t, "milk", inserted.Content)
	assert.Equal(t, "home", inserted.Folder)
	assert.Equal(t, now, inserted.CreatedAt)
	assert.Equal(t, now, inserted.UpdatedAt)
	assert.Equal(t, inserted, entity)
}

func TestNoteAdapterApply_FirstPinTakesNextOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockNoteRepository(ctrl)
	adapter := NewNoteAdapter(repo)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	note := &models.Note{Syncable: models.Syncable{ID: "n1", UserID: 7}}

	// No pinned notes yet: MaxPinnedOrder reports -1 and the first pin
	// takes order 0.
	repo.EXPECT().MaxPinnedOrder(gomock.Any(), int64(7)).Return(int64(-1), nil)
	repo.EXPECT().Update(gomock.Any(), note).Return(nil)

	pinned := true
	entity, err := adapter.Apply(context.Background(), models.OpPin, note, pinPayload{Pinned: &pinned}, now)
	require.NoError(t, err)

	got := entity.(*models.Note)
	assert.True(t, got.Pinned)
	require.NotNil(t, got.PinnedOrder)
	assert.Equal(t, int64(0), *got.PinnedOrder)
	assert.Equal(t, now, got.UpdatedAt)
}

func TestNoteAdapterApply_RepinKeepsOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockNoteRepository(ctrl)
	adapter := NewNoteAdapter(repo)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	order := int64(3)
	note := &models.Note{
		Syncable:    models.Syncable{ID: "n1", UserID: 7},
		Pinned:      true,
		PinnedOrder: &order,
	}

	// Already pinned: no order query, the existing slot is kept.
	repo.EXPECT().Update(gomock.Any(), note).Return(nil)

	pinned := true
	entity, err := adapter.Apply(context.Background(), models.OpPin, note, pinPayload{Pinned: &pinned}, now)
	require.NoError(t, err)

	got := entity.(*models.Note)
	require.NotNil(t, got.PinnedOrder)
	assert.Equal(t, int64(3), *got.PinnedOrder)
}

func TestNoteAdapterApply_UnpinFreesSlot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockNoteRepository(ctrl)
	adapter := NewNoteAdapter(repo)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	order := int64(3)
	note := &models.Note{
		Syncable:    models.Syncable{ID: "n1", UserID: 7},
		Pinned:      true,
		PinnedOrder: &order,
	}

	repo.EXPECT().Update(gomock.Any(), note).Return(nil)

	pinned := false
	entity, err := adapter.Apply(context.Background(), models.OpPin, note, pinPayload{Pinned: &pinned}, now)
	require.NoError(t, err)

	got := entity.(*models.Note)
	assert.False(t, got.Pinned)
	assert.Nil(t, got.PinnedOrder)
}

func TestNoteAdapterApply_ArchiveAndRestore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockNoteRepository(ctrl)
	adapter := NewNoteAdapter(repo)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	note := &models.Note{Syncable: models.Syncable{ID: "n1", UserID: 7}}
	repo.EXPECT().Update(gomock.Any(), note).Return(nil).Times(2)

	entity, err := adapter.Apply(context.Background(), models.OpArchive, note, nil, now)
	require.NoError(t, err)
	assert.True(t, entity.(*models.Note).Archived)

	entity, err = adapter.Apply(context.Background(), models.OpRestore, note, nil, now)
	require.NoError(t, err)
	assert.False(t, entity.(*models.Note).Archived)
}

func TestNoteAdapterTombstone_ToleratesLostRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockNoteRepository(ctrl)
	adapter := NewNoteAdapter(repo)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	note := &models.Note{Syncable: models.Syncable{ID: "n1", UserID: 7}}

	// A concurrent batch tombstoned the row first; the requested end state
	// already holds.
	repo.EXPECT().Tombstone(gomock.Any(), int64(7), "n1", now).Return(store.ErrEntityNotFound)

	entity, err := adapter.Tombstone(context.Background(), note, now)
	require.NoError(t, err)
	assert.True(t, entity.IsDeleted())
}

func TestNoteAdapterTombstone_PropagatesStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockNoteRepository(ctrl)
	adapter := NewNoteAdapter(repo)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	note := &models.Note{Syncable: models.Syncable{ID: "n1", UserID: 7}}

	storeErr := errors.New("connection reset")
	repo.EXPECT().Tombstone(gomock.Any(), int64(7), "n1", now).Return(storeErr)

	_, err := adapter.Tombstone(context.Background(), note, now)
	assert.ErrorIs(t, err, storeErr)
}
