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

func TestFileAdapterDecode(t *testing.T) {
	adapter := NewFileAdapter(nil)

	tests := []struct {
		name           string
		raw            string
		wantRecognized bool
		wantField      string
	}{
		{
			name:           "create with name",
			raw:            `{"op": "create", "id": "f1", "name": "report.pdf", "path": "/docs", "size": 2048, "content_type": "application/pdf"}`,
			wantRecognized: true,
		},
		{
			name:           "create without name",
			raw:            `{"op": "create", "id": "f1", "path": "/docs"}`,
			wantRecognized: true,
			wantField:      "name",
		},
		{
			name:           "rename without name",
			raw:            `{"op": "rename", "id": "f1"}`,
			wantRecognized: true,
			wantField:      "name",
		},
		{
			name:           "move with path",
			raw:            `{"op": "move", "id": "f1", "path": "/archive"}`,
			wantRecognized: true,
		},
		{
			name: "pin is not in the file vocabulary",
			raw:  `{"op": "pin", "id": "f1", "pinned": true}`,
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

func TestFileAdapterApply_Move(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockFileRepository(ctrl)
	adapter := NewFileAdapter(repo)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	file := &models.FileObject{
		Syncable: models.Syncable{ID: "f1", UserID: 7},
		Name:     "report.pdf",
		Path:     "/docs",
	}

	repo.EXPECT().Update(gomock.Any(), file).Return(nil)

	path := "/archive"
	entity, err := adapter.Apply(context.Background(), models.OpMove, file, fileMovePayload{Path: &path}, now)
	require.NoError(t, err)

	got := entity.(*models.FileObject)
	assert.Equal(t, "/archive", got.Path)
	assert.Equal(t, now, got.UpdatedAt)
}
