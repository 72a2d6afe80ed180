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

// bookmarkAdapter binds the bookmark family to the sync engine. Bookmarks
// recognize create, rename, move, pin and delete; the archive pair is not
// part of this family's vocabulary and is absorbed as unknown.
type bookmarkAdapter struct {
	repo store.BookmarkRepository
}

// NewBookmarkAdapter returns the sync adapter for the bookmark entity family.
func NewBookmarkAdapter(repo store.BookmarkRepository) syncer.EntityAdapter {
	return &bookmarkAdapter{repo: repo}
}

func (a *bookmarkAdapter) Family() string { return "bookmark" }

type bookmarkCreatePayload struct {
	URL    *string `json:"url"`
	Title  string  `json:"title"`
	Folder string  `json:"folder"`
}

type bookmarkRenamePayload struct {
	Title *string `json:"title"`
	URL   *string `json:"url"`
}

type bookmarkMovePayload struct {
	Folder *string `json:"folder"`
}

func (a *bookmarkAdapter) Decode(op models.Operation) (any, bool, error) {
	switch op.Op {
	case models.OpCreate:
		var p bookmarkCreatePayload
		if err := json.Unmarshal(op.Payload(), &p); err != nil {
			return nil, true, &syncer.BadRequestError{Field: "operations", Reason: "malformed create payload"}
		}
		if p.URL == nil {
			return nil, true, &syncer.BadRequestError{Field: "url", Reason: "required for create"}
		}
		return p, true, nil

	case models.OpRename:
		var p bookmarkRenamePayload
		if err := json.Unmarshal(op.Payload(), &p); err != nil {
			return nil, true, &syncer.BadRequestError{Field: "operations", Reason: "malformed rename payload"}
		}
		if p.Title == nil && p.URL == nil {
			return nil, true, &syncer.BadRequestError{Field: "title", Reason: "rename requires title or url"}
		}
		return p, true, nil

	case models.OpMove:
		var p bookmarkMovePayload
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

	case models.OpDelete:
		return nil, true, nil

	default:
		return nil, false, nil
	}
}

func (a *bookmarkAdapter) Load(ctx context.Context, owner int64, id string) (models.SyncEntity, error) {
	bookmark, err := a.repo.GetByID(ctx, owner, id)
	if err != nil {
		if errors.Is(err, store.ErrEntityNotFound) {
			return nil, syncer.ErrEntityNotFound
		}
		return nil, err
	}

	return bookmark, nil
}

func (a *bookmarkAdapter) Create(ctx context.Context, owner int64, id string, payload any, now time.Time) (models.SyncEntity, error) {
	p, ok := payload.(bookmarkCreatePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected create payload type %T", payload)
	}

	bookmark := &models.Bookmark{
		Syncable: models.Syncable{ID: id, UserID: owner},
		URL:      *p.URL,
		Title:    p.Title,
		Folder:   p.Folder,
	}
	bookmark.InitTimestamps(now)

	if err := a.repo.Insert(ctx, bookmark); err != nil {
		return nil, err
	}

	return bookmark, nil
}

func (a *bookmarkAdapter) Apply(ctx context.Context, kind string, entity models.SyncEntity, payload any, now time.Time) (models.SyncEntity, error) {
	bookmark, ok := entity.(*models.Bookmark)
	if !ok {
		return nil, fmt.Errorf("unexpected entity type %T", entity)
	}

	switch kind {
	case models.OpRename:
		p := payload.(bookmarkRenamePayload)
		if p.Title != nil {
			bookmark.Title = *p.Title
		}
		if p.URL != nil {
			bookmark.URL = *p.URL
		}

	case models.OpMove:
		bookmark.Folder = *payload.(bookmarkMovePayload).Folder

	case models.OpPin:
		pinned := *payload.(pinPayload).Pinned
		switch {
		case pinned && !bookmark.Pinned:
			maxOrder, err := a.repo.MaxPinnedOrder(ctx, bookmark.UserID)
			if err != nil {
				return nil, err
			}
			order := maxOrder + 1
			bookmark.Pinned = true
			bookmark.PinnedOrder = &order
		case !pinned:
			bookmark.Pinned = false
			bookmark.PinnedOrder = nil
		}

	default:
		return nil, fmt.Errorf("unexpected mutating op %q", kind)
	}

	bookmark.Touch(now)

	if err := a.repo.Update(ctx, bookmark); err != nil {
		return nil, err
	}

	return bookmark, nil
}

func (a *bookmarkAdapter) Tombstone(ctx context.Context, entity models.SyncEntity, now time.Time) (models.SyncEntity, error) {
	bookmark, ok := entity.(*models.Bookmark)
	if !ok {
		return nil, fmt.Errorf("unexpected entity type %T", entity)
	}

	if err := a.repo.Tombstone(ctx, bookmark.UserID, bookmark.ID, now); err != nil && !errors.Is(err, store.ErrEntityNotFound) {
		return nil, err
	}
	bookmark.MarkDeleted(now)

	return bookmark, nil
}

func (a *bookmarkAdapter) ListChangedSince(ctx context.Context, owner int64, since time.Time) ([]models.SyncEntity, error) {
	bookmarks, err := a.repo.ListChangedSince(ctx, owner, since)
	if err != nil {
		return nil, err
	}

	return bookmarksToEntities(bookmarks), nil
}

func (a *bookmarkAdapter) ListLive(ctx context.Context, owner int64) ([]models.SyncEntity, error) {
	bookmarks, err := a.repo.ListLive(ctx, owner)
	if err != nil {
		return nil, err
	}

	return bookmarksToEntities(bookmarks), nil
}

func bookmarksToEntities(bookmarks []*models.Bookmark) []models.SyncEntity {
	entities := make([]models.SyncEntity, 0, len(bookmarks))
	for _, bookmark := range bookmarks {
		entities = append(entities, bookmark)
	}
	return entities
}
