// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"context"
	"time"

	"github.com/ndedov/go-stash-sync/models"
)

//go:generate mockgen -source=adapter.go -destination=../mock/entity_adapter_mock.go -package=mock

// EntityAdapter parameterizes the generic sync engine with one entity
// family's vocabulary and persistence. Implementations live in the service
// layer and delegate storage to the family's repository.
//
// All methods are owner-scoped; an adapter must never expose one user's
// entities to another.
type EntityAdapter interface {
	// Family returns the entity family label used in logs and route names
	// (e.g. "note", "bookmark", "file").
	Family() string

	// Decode extracts and validates the op-specific payload fields for op.
	//
	// recognized reports whether the operation kind belongs to this family's
	// vocabulary. A syntactically present but unrecognized kind must return
	// recognized == false with a nil error: the engine absorbs such
	// operations silently so that clients with a newer or older vocabulary
	// still sync. A non-nil error means a recognized kind is missing a
	// required payload field and rejects the whole batch.
	//
	// The returned payload is opaque to the engine; it is handed back
	// unchanged to Create and Apply.
	Decode(op models.Operation) (payload any, recognized bool, err error)

	// Load fetches the entity with the given id scoped to owner, tombstoned
	// or not. Returns [ErrEntityNotFound] when no such entity exists.
	Load(ctx context.Context, owner int64, id string) (models.SyncEntity, error)

	// Create inserts a new entity built from the decoded create payload.
	// The adapter stamps both lifecycle timestamps with now.
	Create(ctx context.Context, owner int64, id string, payload any, now time.Time) (models.SyncEntity, error)

	// Apply executes the state transition for a recognized mutating kind on
	// a live entity and persists the result, stamping the entity's
	// modification timestamp with now. The staleness check has already run;
	// Apply must not repeat it.
	Apply(ctx context.Context, kind string, entity models.SyncEntity, payload any, now time.Time) (models.SyncEntity, error)

	// Tombstone soft-deletes a live entity, stamping the tombstone and
	// modification timestamps with now.
	Tombstone(ctx context.Context, entity models.SyncEntity, now time.Time) (models.SyncEntity, error)

	// ListChangedSince returns every entity of the owner, tombstoned or not,
	// whose modification timestamp is at or after since.
	ListChangedSince(ctx context.Context, owner int64, since time.Time) ([]models.SyncEntity, error)

	// ListLive returns every non-tombstoned entity of the owner, used for a
	// full resync when the client has no watermark yet.
	ListLive(ctx context.Context, owner int64) ([]models.SyncEntity, error)
}

// Clock abstracts time for the engine and the delta-view cache so tests can
// drive it deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// IDGenerator mints operation identifiers for batch items that arrived
// without one. Minted identifiers exist for in-batch tracking only and are
// not usable for later dedupe.
type IDGenerator interface {
	Generate() string
}
