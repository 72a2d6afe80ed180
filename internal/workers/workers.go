package workers

import (
	"github.com/ndedov/go-stash-sync/internal/config"
	"github.com/ndedov/go-stash-sync/internal/logger"
	"github.com/ndedov/go-stash-sync/internal/syncer"
)

type Workers struct {
	workers []Worker
}

// NewWorkers assembles the application's background workers. Currently that
// is the delta-cache janitor; more workers can be appended here as they
// appear.
func NewWorkers(cache *syncer.DeltaCache, cfg config.Workers, log *logger.Logger) *Workers {
	return &Workers{
		workers: []Worker{
			NewCacheJanitor(cache, cfg.SweepInterval, log),
		},
	}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
