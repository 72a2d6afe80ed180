// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ndedov/go-stash-sync/internal/store"
	"github.com/ndedov/go-stash-sync/internal/syncer"
	"github.com/ndedov/go-stash-sync/models"
)

// fileAdapter binds uploaded-file metadata to the sync engine. Files cannot
// be pinned or archived; the vocabulary is create, rename, move and delete.
// The binary content is out of band and never travels through a batch.
type fileAdapter struct {
	repo store.FileRepository
}

// NewFileAdapter returns the sync adapter for the uploaded-file family.
func NewFileAdapter(repo store.FileRepository) syncer.EntityAdapter {
	return &fileAdapter{repo: repo}
}

func (a *fileAdapter) Family() string { return "file" }

type fileCreatePayload struct {
	Name        *string `json:"name"`
	Path        string  `json:"path"`
	Size        int64   `json:"size"`
	ContentType string  `json:"content_type"`
}

type fileRenamePayload struct {
	Name *string `json:"name"`
}

type fileMovePayload struct {
	Path *string `json:"path"`
}

func (a *fileAdapter) Decode(op models.Operation) (any, bool, error) {
	switch op.Op {
	case models.OpCreate:
		var p fileCreatePayload
		if err := json.Unmarshal(op.Payload(), &p); err != nil {
			return nil, true, &syncer.BadRequestError{Field: "operations", Reason: "malformed create payload"}
		}
		if p.Name == nil {
			return nil, true, &syncer.BadRequestError{Field: "name", Reason: "required for create"}
		}
		return p, true, nil

	case models.OpRename:
		var p fileRenamePayload
		if err := json.Unmarshal(op.Payload(), &p); err != nil {
			return nil, true, &syncer.BadRequestError{Field: "operations", Reason: "malformed rename payload"}
		}
		if p.Name == nil {
			return nil, true, &syncer.BadRequestError{Field: "name", Reason: "required for rename"}
		}
		return p, true, nil

	case models.OpMove:
		var p fileMovePayload
		if err := json.Unmarshal(op.Payload(), &p); err != nil {
			return nil, true, &syncer.BadRequestError{Field: "operations", Reason: "malformed move payload"}
		}
		if p.Path == nil {
			return nil, true, &syncer.BadRequestError{Field: "path", Reason: "required for move"}
		}
		return p, true, nil

	case models.OpDelete:
		return nil, true, nil

	default:
		return nil, false, nil
	}
}

func (a *fileAdapter) Load(ctx context.Context, owner int64, id string) (models.SyncEntity, error) {
	file, err := a.repo.GetByID(ctx, owner, id)
	if err != nil {
		if errors.Is(err, store.ErrEntityNotFound) {
			return nil, syncer.ErrEntityNotFound
		}
		return nil, err
	}

	return file, nil
}

func (a *fileAdapter) Create(ctx context.Context, owner int64, id string, payload any, now time.Time) (models.SyncEntity, error) {
	p, ok := payload.(fileCreatePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected create payload type %T", payload)
	}

	file := &models.FileObject{
		Syncable:    models.Syncable{ID: id, UserID: owner},
		Name:        *p.Name,
		Path:        p.Path,
		Size:        p.Size,
		ContentType: p.ContentType,
	}
	file.InitTimestamps(now)

	if err := a.repo.Insert(ctx, file); err != nil {
		return nil, err
	}

	return file, nil
}

func (a *fileAdapter) Apply(ctx context.Context, kind string, entity models.SyncEntity, payload any, now time.Time) (models.SyncEntity, error) {
	file, ok := entity.(*models.FileObject)
	if !ok {
		return nil, fmt.Errorf("unexpected entity type %T", entity)
	}

	switch kind {
	case models.OpRename:
		file.Name = *payload.(fileRenamePayload).Name

	case models.OpMove:
		file.Path = *payload.(fileMovePayload).Path

	default:
		return nil, fmt.Errorf("unexpected mutating op %q", kind)
	}

	file.Touch(now)

	if err := a.repo.Update(ctx, file); err != nil {
		return nil, err
	}

	return file, nil
}

func (a *fileAdapter) Tombstone(ctx context.Context, entity models.SyncEntity, now time.Time) (models.SyncEntity, error) {
	file, ok := entity.(*models.FileObject)
	if !ok {
		return nil, fmt.Errorf("unexpected entity type %T", entity)
	}

	if err := a.repo.Tombstone(ctx, file.UserID, file.ID, now); err != nil && !errors.Is(err, store.ErrEntityNotFound) {
		return nil, err
	}
	file.MarkDeleted(now)

	return file, nil
}

func (a *fileAdapter) ListChangedSince(ctx context.Context, owner int64, since time.Time) ([]models.SyncEntity, error) {
	files, err := a.repo.ListChangedSince(ctx, owner, since)
	if err != nil {
		return nil, err
	}

	return filesToEntities(files), nil
}

func (a *fileAdapter) ListLive(ctx context.Context, owner int64) ([]models.SyncEntity, error) {
	files, err := a.repo.ListLive(ctx, owner)
	if err != nil {
		return nil, err
	}

	return filesToEntities(files), nil
}

func filesToEntities(files []*models.FileObject) []models.SyncEntity {
	entities := make([]models.SyncEntity, 0, len(files))
	for _, file := range files {
		entities = append(entities, file)
	}
	return entities
}
