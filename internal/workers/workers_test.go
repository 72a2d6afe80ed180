// SPDX-License-Identifier: Apache-2.0

package workers

import (
	"testing"
	"time"

	"github.com/ndedov/go-stash-sync/internal/logger"
	"github.com/ndedov/go-stash-sync/internal/syncer"
)

// mockWorker is a test implementation of the Worker interface
// that tracks how many times Run was called.
type mockWorker struct {
	runCount int
}

func (m *mockWorker) Run() {
	m.runCount++
}

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1 := &mockWorker{}
	w2 := &mockWorker{}
	w3 := &mockWorker{}

	ws := &Workers{workers: []Worker{w1, w2, w3}}
	ws.Run()

	for i, w := range []*mockWorker{w1, w2, w3} {
		if w.runCount != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, w.runCount)
		}
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	ws := &Workers{workers: []Worker{}}

	// Should not panic on empty workers list
	ws.Run()
}

func TestWorkers_Run_Nil(t *testing.T) {
	ws := &Workers{}

	// Should not panic when workers field is nil
	ws.Run()
}

func TestCacheJanitor_DisabledOnNonPositiveInterval(t *testing.T) {
	cache := syncer.NewDeltaCache(time.Minute, syncer.SystemClock())
	janitor := NewCacheJanitor(cache, 0, logger.Nop())

	// Must return without spawning the loop; Stop would panic a live loop
	// reading from a closed channel forever, so just verify Run is a no-op.
	janitor.Run()
}

func TestCacheJanitor_SweepsExpiredEntries(t *testing.T) {
	// TTL in the past relative to the next read: entries expire immediately.
	cache := syncer.NewDeltaCache(time.Nanosecond, syncer.SystemClock())
	cache.Put(1, "note", nil)

	janitor := NewCacheJanitor(cache, time.Millisecond, logger.Nop())
	janitor.Run()
	defer janitor.Stop()

	deadline := time.After(time.Second)
	for {
		if _, ok := cache.Get(1, "note"); !ok {
			return
		}
		select {
		case <-deadline:
			t.Fatal("expected janitor to sweep the expired entry")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
