// SPDX-License-Identifier: Apache-2.0

// Package service contains the application's business logic: one sync
// service per entity family, all backed by the shared reconciliation engine.
package service

import (
	"fmt"

	"github.com/ndedov/go-stash-sync/internal/config"
	"github.com/ndedov/go-stash-sync/internal/logger"
	"github.com/ndedov/go-stash-sync/internal/store"
	"github.com/ndedov/go-stash-sync/internal/syncer"
	"github.com/ndedov/go-stash-sync/internal/utils"
)

// Services bundles the per-family sync services handed to the transport
// layer.
type Services struct {
	NoteSync     SyncService
	BookmarkSync SyncService
	FileSync     SyncService

	// Cache is exposed so the janitor worker can sweep expired entries.
	Cache *syncer.DeltaCache
}

// NewServices wires the repositories, the shared sync engine and the delta
// cache into one service per entity family.
func NewServices(storages *store.Storages, cfg config.Sync, log *logger.Logger) (*Services, error) {
	clock := syncer.SystemClock()

	engine, err := syncer.NewEngine(clock, utils.NewUUIDGenerator(), cfg.MaxBatchSize, log)
	if err != nil {
		return nil, fmt.Errorf("creating sync engine: %w", err)
	}

	cache := syncer.NewDeltaCache(cfg.CacheTTL, clock)

	return &Services{
		NoteSync:     newFamilySyncService(engine, NewNoteAdapter(storages.NoteRepository), cache, clock, cfg.RecentWindow, log),
		BookmarkSync: newFamilySyncService(engine, NewBookmarkAdapter(storages.BookmarkRepository), cache, clock, cfg.RecentWindow, log),
		FileSync:     newFamilySyncService(engine, NewFileAdapter(storages.FileRepository), cache, clock, cfg.RecentWindow, log),
		Cache:        cache,
	}, nil
}
