package syncer

import (
	"testing"
	"time"

	"github.com/ndedov/go-stash-sync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cachedNote(t *testing.T, id string) models.SyncEntity {
	t.Helper()

	note := &models.Note{Title: "cached"}
	note.ID = id
	note.UserID = testOwner
	return note
}

func TestDeltaCache_GetReturnsFreshEntry(t *testing.T) {
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewDeltaCache(30*time.Second, clock)

	cache.Put(testOwner, "note", []models.SyncEntity{cachedNote(t, "n1")})

	got, ok := cache.Get(testOwner, "note")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "n1", got[0].EntityID())
}

func TestDeltaCache_GetReturnsIndependentSlice(t *testing.T) {
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewDeltaCache(30*time.Second, clock)

	cache.Put(testOwner, "note", []models.SyncEntity{cachedNote(t, "n1"), cachedNote(t, "n2")})

	first, ok := cache.Get(testOwner, "note")
	require.True(t, ok)

	// A caller scribbling over its copy must not corrupt the cached view.
	first[0] = cachedNote(t, "clobbered")

	second, ok := cache.Get(testOwner, "note")
	require.True(t, ok)
	require.Len(t, second, 2)
	assert.Equal(t, "n1", second[0].EntityID())
}

func TestDeltaCache_EntryExpires(t *testing.T) {
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewDeltaCache(30*time.Second, clock)

	cache.Put(testOwner, "note", []models.SyncEntity{cachedNote(t, "n1")})

	clock.now = clock.now.Add(31 * time.Second)

	_, ok := cache.Get(testOwner, "note")
	assert.False(t, ok)
}

func TestDeltaCache_KeysAreOwnerAndFamilyScoped(t *testing.T) {
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewDeltaCache(30*time.Second, clock)

	cache.Put(testOwner, "note", []models.SyncEntity{cachedNote(t, "n1")})

	_, ok := cache.Get(testOwner, "bookmark")
	assert.False(t, ok)

	_, ok = cache.Get(testOwner+1, "note")
	assert.False(t, ok)
}

func TestDeltaCache_InvalidateDropsEntry(t *testing.T) {
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewDeltaCache(30*time.Second, clock)

	cache.Put(testOwner, "note", []models.SyncEntity{cachedNote(t, "n1")})
	cache.Put(testOwner, "bookmark", []models.SyncEntity{cachedNote(t, "b1")})

	cache.Invalidate(testOwner, "note")

	_, ok := cache.Get(testOwner, "note")
	assert.False(t, ok)

	// Sibling families are untouched.
	_, ok = cache.Get(testOwner, "bookmark")
	assert.True(t, ok)
}

func TestDeltaCache_NonPositiveTTLDisablesCaching(t *testing.T) {
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewDeltaCache(0, clock)

	cache.Put(testOwner, "note", []models.SyncEntity{cachedNote(t, "n1")})

	_, ok := cache.Get(testOwner, "note")
	assert.False(t, ok)
}

func TestDeltaCache_SweepDropsOnlyExpired(t *testing.T) {
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewDeltaCache(30*time.Second, clock)

	cache.Put(testOwner, "note", []models.SyncEntity{cachedNote(t, "n1")})

	clock.now = clock.now.Add(20 * time.Second)
	cache.Put(testOwner, "bookmark", []models.SyncEntity{cachedNote(t, "b1")})

	clock.now = clock.now.Add(15 * time.Second)

	dropped := cache.Sweep()
	assert.Equal(t, 1, dropped)

	_, ok := cache.Get(testOwner, "note")
	assert.False(t, ok)

	_, ok = cache.Get(testOwner, "bookmark")
	assert.True(t, ok)
}
