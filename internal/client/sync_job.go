package client

import (
	"context"
	"sync"
	"time"
)

// SyncJob periodically pulls deltas for a set of families so local state
// stays fresh between explicit batches. The job is idle until Start is
// called.
type SyncJob struct {
	client   *SyncClient
	families []string

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a SyncJob polling the given families.
func NewSyncJob(client *SyncClient, families ...string) *SyncJob {
	if len(families) == 0 {
		families = []string{FamilyNotes, FamilyBookmarks, FamilyFiles}
	}
	return &SyncJob{client: client, families: families}
}

// Start stops any previously running job, then launches a background
// goroutine that pulls deltas every interval. If interval is zero or
// negative it defaults to 5 minutes. The goroutine exits when ctx is
// cancelled or Stop is called.
func (j *SyncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				for _, family := range j.families {
					_, _ = j.client.Sync(jobCtx, family, nil)
				}
			}
		}
	}()
}

// Stop cancels the background goroutine's context and blocks until the
// goroutine has fully exited. Safe to call when the job is not running
// (no-op in that case).
func (j *SyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
