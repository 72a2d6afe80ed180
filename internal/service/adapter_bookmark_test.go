package service

import (
	"context"
	"testing"
	"time"

	"github.com/ndedov/go-stash-sync/internal/mock"
	"github.com/ndedov/go-stash-sync/internal/syncer"
	"github.com/ndedov/go-stash-sync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestBookmarkAdapterDecode(t *testing.T) {
	adapter := NewBookmarkAdapter(nil)

	tests := []struct {
		name           string
		raw            string
		wantRecognized bool
		wantField      string
	}{
		{
			name:           "create with url",
			raw:            `{"op": "create", "id": "b1", "url": "https://go.dev", "title": "Go"}`,
			wantRecognized: true,
		},
		{
			name:           "create without url",
			raw:            `{"op": "create", "id": "b1", "title": "Go"}`,
			wantRecognized: true,
			wantField:      "url",
		},
		{
			name:           "rename with url only",
			raw:            `{"op": "rename", "id": "b1", "url": "https://go.dev/doc"}`,
			wantRecognized: true,
		},
		{
			name:           "rename with nothing to change",
			raw:            `{"op": "rename", "id": "b1"}`,
			wantRecognized: true,
			wantField:      "title",
		},
		{
			name: "archive is not in the bookmark vocabulary",
			raw:  `{"op": "archive", "id": "b1"}`,
		},
		{
			name: "restore is not in the bookmark vocabulary",
			raw:  `{"op": "restore", "id": "b1"}`,
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

func TestBookmarkAdapterApply_Pin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockBookmarkRepository(ctrl)
	adapter := NewBookmarkAdapter(repo)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	bookmark := &models.Bookmark{Syncable: models.Syncable{ID: "b1", UserID: 7}}

	repo.EXPECT().MaxPinnedOrder(gomock.Any(), int64(7)).Return(int64(2), nil)
	repo.EXPECT().Update(gomock.Any(), bookmark).Return(nil)

	pinned := true
	entity, err := adapter.Apply(context.Background(), models.OpPin, bookmark, pinPayload{Pinned: &pinned}, now)
	require.NoError(t, err)

	got := entity.(*models.Bookmark)
	assert.True(t, got.Pinned)
	require.NotNil(t, got.PinnedOrder)
	assert.Equal(t, int64(3), *got.PinnedOrder)
}
