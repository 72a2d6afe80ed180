// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ndedov/go-stash-sync/internal/logger"
	"github.com/ndedov/go-stash-sync/internal/syncer"
	"github.com/ndedov/go-stash-sync/models"
)

// familySyncService is the [SyncService] implementation shared by all entity
// families: the family specifics live entirely in the injected adapter.
type familySyncService struct {
	engine  *syncer.Engine
	adapter syncer.EntityAdapter
	cache   *syncer.DeltaCache
	clock   syncer.Clock
	window  time.Duration

	logger *logger.Logger
}

func newFamilySyncService(engine *syncer.Engine, adapter syncer.EntityAdapter, cache *syncer.DeltaCache, clock syncer.Clock, window time.Duration, log *logger.Logger) *familySyncService {
	return &familySyncService{
		engine:  engine,
		adapter: adapter,
		cache:   cache,
		clock:   clock,
		window:  window,
		logger:  log,
	}
}

// Sync implements [SyncService].
func (s *familySyncService) Sync(ctx context.Context, userID int64, body []byte) (models.SyncResult, error) {
	if userID <= 0 {
		return models.SyncResult{}, fmt.Errorf("%w: %w", ErrValidationError, ErrNoUserID)
	}

	result, err := s.engine.Sync(ctx, s.adapter, userID, body)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	if len(result.Entities) > 0 {
		s.cache.Invalidate(userID, s.adapter.Family())
	}

	return result, nil
}

// Recent implements [SyncService]. The view lists live entities the owner
// touched within the recency window, newest first, and is served from the
// delta cache between mutations.
func (s *familySyncService) Recent(ctx context.Context, userID int64) ([]models.SyncEntity, error) {
	log := logger.FromContext(ctx)

	if userID <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidationError, ErrNoUserID)
	}

	family := s.adapter.Family()
	if cached, ok := s.cache.Get(userID, family); ok {
		return cached, nil
	}

	since := s.clock.Now().Add(-s.window)
	changed, err := s.adapter.ListChangedSince(ctx, userID, since)
	if err != nil {
		log.Err(err).
			Str("func", "familySyncService.Recent").
			Str("family", family).
			Int64("user_id", userID).
			Msg("listing recent activity")
		return nil, fmt.Errorf("%w: %w", ErrRecentFailed, err)
	}

	recent := make([]models.SyncEntity, 0, len(changed))
	for _, entity := range changed {
		if !entity.IsDeleted() {
			recent = append(recent, entity)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].UpdatedTime().After(recent[j].UpdatedTime())
	})

	s.cache.Put(userID, family, recent)

	return recent, nil
}
