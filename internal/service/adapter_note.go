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

// noteAdapter binds the note family to the generic sync engine. It owns the
// note operation vocabulary (create, rename, move, pin, archive, restore,
// delete) and delegates persistence to the note repository.
type noteAdapter struct {
	repo store.NoteRepository
}

// NewNoteAdapter returns the sync adapter for the note entity family.
func NewNoteAdapter(repo store.NoteRepository) syncer.EntityAdapter {
	return &noteAdapter{repo: repo}
}

func (a *noteAdapter) Family() string { return "note" }

type noteCreatePayload struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
	Folder  string  `json:"folder"`
}

type noteRenamePayload struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type noteMovePayload struct {
	Folder *string `json:"folder"`
}

// pinPayload is shared by every family that supports pinning.
type pinPayload struct {
	Pinned *bool `json:"pinned"`
}

// Decode implements [syncer.EntityAdapter]. Payload fields live flat on the
// operation object, so each kind re-reads the raw operation into its own
// payload struct.
func (a *noteAdapter) Decode(op models.Operation) (any, bool, error) {
	switch op.Op {
	case models.OpCreate:
		var p noteCreatePayload
		if err := json.Unmarshal(op.Payload(), &p); err != nil {
			return nil, true, &syncer.BadRequestError{Field: "operations", Reason: "malformed create payload"}
		}
		if p.Content == nil {
			return nil, true, &syncer.BadRequestError{Field: "content", Reason: "required for create"}
		}
		return p, true, nil

	case models.OpRename:
		var p noteRenamePayload
		if err := json.Unmarshal(op.Payload(), &p); err != nil {
			return nil, true, &syncer.BadRequestError{Field: "operations", Reason: "malformed rename payload"}
		}
		if p.Title == nil && p.Content == nil {
			return nil, true, &syncer.BadRequestError{Field: "title", Reason: "rename requires title or content"}
		}
		return p, true, nil

	case models.OpMove:
		var p noteMovePayload
		if err := json.Unmarshal(op.Payload(), &p); err != nil {
			return nil, true, &syncer.BadRequestError{Field: "operations", Reason: "malformed move payload"}
		}
		if p.Folder == nil {
			return nil, true, &syncer.BadRequestError{Field: "folder", Reason: "required for move"}
		}
		return p, true, nil

	case models.OpPin:
		var p pinPayload
		if err := json.Unmarshal(op.Payload(), &p); err != nil {
			return nil, true, &syncer.BadRequestError{Field: "operations", Reason: "malformed pin payload"}
		}
		if p.Pinned == nil {
			return nil, true, &syncer.BadRequestError{Field: "pinned", Reason: "required for pin"}
		}
		return p, true, nil

	case models.OpArchive, models.OpRestore, models.OpDelete:
		// No payload beyond the target id.
		return nil, true, nil

	default:
		return nil, false, nil
	}
}

// Load implements [syncer.EntityAdapter].
func (a *noteAdapter) Load(ctx context.Context, owner int64, id string) (models.SyncEntity, error) {
	note, err := a.repo.GetByID(ctx, owner, id)
	if err != nil {
		if errors.Is(err, store.ErrEntityNotFound) {
			return nil, syncer.ErrEntityNotFound
		}
		return nil, err
	}

	return note, nil
}

// Create implements [syncer.EntityAdapter].
func (a *noteAdapter) Create(ctx context.Context, owner int64, id string, payload any, now time.Time) (models.SyncEntity, error) {
	p, ok := payload.(noteCreatePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected create payload type %T", payload)
	}

	note := &models.Note{
		Syncable: models.Syncable{ID: id, UserID: owner},
		Title:    p.Title,
		Content:  *p.Content,
		Folder:   p.Folder,
	}
	note.InitTimestamps(now)

	if err := a.repo.Insert(ctx, note); err != nil {
		return nil, err
	}

	return note, nil
}

// Apply implements [syncer.EntityAdapter]. Pinning assigns the next free
// pinned order; unpinning frees the slot, and a freed slot is never handed
// out again while any higher order is in use.
func (a *noteAdapter) Apply(ctx context.Context, kind string, entity models.SyncEntity, payload any, now time.Time) (models.SyncEntity, error) {
	note, ok := entity.(*models.Note)
	if !ok {
		return nil, fmt.Errorf("unexpected entity type %T", entity)
	}

	switch kind {
	case models.OpRename:
		p := payload.(noteRenamePayload)
		if p.Title != nil {
			note.Title = *p.Title
		}
		if p.Content != nil {
			note.Content = *p.Content
		}

	case models.OpMove:
		note.Folder = *payload.(noteMovePayload).Folder

	case models.OpPin:
		pinned := *payload.(pinPayload).Pinned
		switch {
		case pinned && !note.Pinned:
			maxOrder, err := a.repo.MaxPinnedOrder(ctx, note.UserID)
			if err != nil {
				return nil, err
			}
			order := maxOrder + 1
			note.Pinned = true
			note.PinnedOrder = &order
		case !pinned:
			note.Pinned = false
			note.PinnedOrder = nil
		}

	case models.OpArchive:
		note.Archived = true

	case models.OpRestore:
		note.Archived = false

	default:
		return nil, fmt.Errorf("unexpected mutating op %q", kind)
	}

	note.Touch(now)

	if err := a.repo.Update(ctx, note); err != nil {
		return nil, err
	}

	return note, nil
}

// Tombstone implements [syncer.EntityAdapter]. Losing the race to a
// concurrent deletion is tolerated: the requested end state already holds.
func (a *noteAdapter) Tombstone(ctx context.Context, entity models.SyncEntity, now time.Time) (models.SyncEntity, error) {
	note, ok := entity.(*models.Note)
	if !ok {
		return nil, fmt.Errorf("unexpected entity type %T", entity)
	}

	if err := a.repo.Tombstone(ctx, note.UserID, note.ID, now); err != nil && !errors.Is(err, store.ErrEntityNotFound) {
		return nil, err
	}
	note.MarkDeleted(now)

	return note, nil
}

// ListChangedSince implements [syncer.EntityAdapter].
func (a *noteAdapter) ListChangedSince(ctx context.Context, owner int64, since time.Time) ([]models.SyncEntity, error) {
	notes, err := a.repo.ListChangedSince(ctx, owner, since)
	if err != nil {
		return nil, err
	}

	return notesToEntities(notes), nil
}

// ListLive implements [syncer.EntityAdapter].
func (a *noteAdapter) ListLive(ctx context.Context, owner int64) ([]models.SyncEntity, error) {
	notes, err := a.repo.ListLive(ctx, owner)
	if err != nil {
		return nil, err
	}

	return notesToEntities(notes), nil
}

func notesToEntities(notes []*models.Note) []models.SyncEntity {
	entities := make([]models.SyncEntity, 0, len(notes))
	for _, note := range notes {
		entities = append(entities, note)
	}
	return entities
}
