// SPDX-License-Identifier: Apache-2.0

package workers

import (
	"time"

	"github.com/ndedov/go-stash-sync/internal/logger"
	"github.com/ndedov/go-stash-sync/internal/syncer"
)

// CacheJanitor periodically sweeps expired entries out of the delta cache.
// Expired entries are also ignored on read, so the janitor only bounds
// memory; correctness does not depend on it.
type CacheJanitor struct {
	cache    *syncer.DeltaCache
	interval time.Duration

	stop chan struct{}

	logger *logger.Logger
}

// NewCacheJanitor constructs a janitor sweeping cache every interval.
// A non-positive interval disables the janitor; Run becomes a no-op.
func NewCacheJanitor(cache *syncer.DeltaCache, interval time.Duration, log *logger.Logger) *CacheJanitor {
	return &CacheJanitor{
		cache:    cache,
		interval: interval,
		stop:     make(chan struct{}),
		logger:   log,
	}
}

// Run implements [Worker]. It spawns the sweep loop and returns immediately.
func (j *CacheJanitor) Run() {
	if j.interval <= 0 {
		j.logger.Info().Msg("cache janitor disabled")
		return
	}

	go j.loop()
}

// Stop terminates the sweep loop. Safe to call only once.
func (j *CacheJanitor) Stop() {
	close(j.stop)
}

func (j *CacheJanitor) loop() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stop:
			return
		case <-ticker.C:
			if dropped := j.cache.Sweep(); dropped > 0 {
				j.logger.Debug().
					Str("func", "CacheJanitor.loop").
					Int("dropped", dropped).
					Msg("swept expired cache entries")
			}
		}
	}
}
