package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/ndedov/go-stash-sync/models"
)

// computeDelta returns the set of entities the client is missing.
//
// A nil lastSync means the client has no watermark yet and gets a full
// resync: every live entity of the owner, tombstones excluded. With a
// watermark, the delta is every entity whose modification timestamp is at or
// after it, tombstones included, so deletions propagate to the client.
func (e *Engine) computeDelta(ctx context.Context, adapter EntityAdapter, owner int64, lastSync *time.Time) ([]models.SyncEntity, error) {
	if lastSync == nil {
		entities, err := adapter.ListLive(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("listing live entities for full resync: %w", err)
		}
		return entities, nil
	}

	entities, err := adapter.ListChangedSince(ctx, owner, *lastSync)
	if err != nil {
		return nil, fmt.Errorf("listing entities changed since watermark: %w", err)
	}

	return entities, nil
}

// watermark derives the new watermark handed back to the client: the maximum
// modification timestamp across the delta set and everything this batch
// touched. When the owner has no entities at all it falls back to the
// current time so a watermark is always returned and stays monotonic across
// successive calls.
func (e *Engine) watermark(delta, touched []models.SyncEntity) time.Time {
	var max time.Time

	for _, entity := range delta {
		if entity.UpdatedTime().After(max) {
			max = entity.UpdatedTime()
		}
	}
	for _, entity := range touched {
		if entity.UpdatedTime().After(max) {
			max = entity.UpdatedTime()
		}
	}

	if max.IsZero() {
		return e.clock.Now()
	}

	return max
}
