// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ndedov/go-stash-sync/internal/logger"
	"github.com/ndedov/go-stash-sync/models"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Engine is the generic batch-reconciliation engine. It is stateless apart
// from its injected collaborators and is shared by every entity family; the
// family-specific behavior arrives through the [EntityAdapter] passed to
// each Sync call.
type Engine struct {
	clock    Clock
	ids      IDGenerator
	schema   *jsonschema.Schema
	maxBatch int

	logger *logger.Logger
}

// NewEngine constructs an Engine with the given clock and operation-id
// generator. maxBatch caps the operations accepted per batch; a non-positive
// value removes the cap. Returns an error only if the embedded envelope
// schema fails to compile, which indicates a broken build rather than a
// runtime condition.
func NewEngine(clock Clock, ids IDGenerator, maxBatch int, log *logger.Logger) (*Engine, error) {
	schema, err := compileEnvelopeSchema()
	if err != nil {
		return nil, err
	}

	return &Engine{
		clock:    clock,
		ids:      ids,
		schema:   schema,
		maxBatch: maxBatch,
		logger:   log,
	}, nil
}

// outcomeKind classifies the result of a single operation.
type outcomeKind int

const (
	outcomeApplied outcomeKind = iota
	outcomeIgnored
	outcomeConflict
)

// outcome is the per-operation result folded into the batch response.
// Exactly one of entity/conflict is meaningful depending on kind.
type outcome struct {
	kind     outcomeKind
	entity   models.SyncEntity
	conflict *models.Conflict
}

// Sync reconciles one client batch against the server state for owner.
//
// Operations are applied strictly in submission order. Once the envelope has
// been decoded, an individual operation can only resolve to an applied,
// ignored, or conflict outcome; it never aborts its siblings. A store-level
// failure, by contrast, is fatal for the whole batch and propagates to the
// caller, who must not assume any partial effects were committed.
func (e *Engine) Sync(ctx context.Context, adapter EntityAdapter, owner int64, body []byte) (models.SyncResult, error) {
	log := logger.FromContext(ctx)

	env, err := e.decodeEnvelope(adapter, body)
	if err != nil {
		log.Warn().
			Str("func", "Engine.Sync").
			Str("family", adapter.Family()).
			Int64("user_id", owner).
			Err(err).
			Msg("batch rejected at envelope decoding")
		return models.SyncResult{}, err
	}

	result := models.SyncResult{
		AppliedIDs:      make([]string, 0, len(env.ops)),
		Entities:        make([]models.SyncEntity, 0, len(env.ops)),
		Conflicts:       make([]models.Conflict, 0),
		UpdatedEntities: make([]models.SyncEntity, 0),
	}

	touched := make([]models.SyncEntity, 0, len(env.ops))
	entityIndex := make(map[string]int, len(env.ops))

	for _, dop := range env.ops {
		out, applyErr := e.applyOne(ctx, adapter, owner, dop)
		if applyErr != nil {
			log.Err(applyErr).
				Str("func", "Engine.Sync").
				Str("family", adapter.Family()).
				Int64("user_id", owner).
				Str("operation_id", dop.op.OperationID).
				Msg("store failure while applying batch")
			return models.SyncResult{}, applyErr
		}

		// Every operation that survived decoding contributes exactly one id,
		// whatever its outcome.
		result.AppliedIDs = append(result.AppliedIDs, dop.op.OperationID)

		switch out.kind {
		case outcomeApplied:
			if out.entity != nil {
				// One snapshot per entity: a later operation on the same id
				// replaces the earlier echo instead of duplicating it.
				if i, seen := entityIndex[out.entity.EntityID()]; seen {
					result.Entities[i] = out.entity
				} else {
					entityIndex[out.entity.EntityID()] = len(result.Entities)
					result.Entities = append(result.Entities, out.entity)
				}
				touched = append(touched, out.entity)
			}
		case outcomeConflict:
			result.Conflicts = append(result.Conflicts, *out.conflict)
		case outcomeIgnored:
			// Idempotent no-op or unknown kind: id only.
		}
	}

	delta, err := e.computeDelta(ctx, adapter, owner, env.lastSync)
	if err != nil {
		return models.SyncResult{}, err
	}
	result.UpdatedEntities = delta
	result.ServerUpdatedSince = e.watermark(delta, touched)

	log.Info().
		Str("func", "Engine.Sync").
		Str("family", adapter.Family()).
		Int64("user_id", owner).
		Int("operations", len(env.ops)).
		Int("applied", len(result.Entities)).
		Int("conflicts", len(result.Conflicts)).
		Int("delta", len(result.UpdatedEntities)).
		Msg("batch reconciled")

	return result, nil
}

// applyOne resolves a single decoded operation to its outcome.
//
// The staleness and existence checks run here, before any mutation; the
// adapter's Create/Apply/Tombstone never re-check them. A returned error is
// always a store-level failure.
func (e *Engine) applyOne(ctx context.Context, adapter EntityAdapter, owner int64, dop decodedOp) (outcome, error) {
	if !dop.recognized {
		// Forward/backward vocabulary skew: absorb silently.
		return outcome{kind: outcomeIgnored}, nil
	}

	entity, err := adapter.Load(ctx, owner, dop.targetID)
	switch {
	case err == nil:
	case errors.Is(err, ErrEntityNotFound):
		entity = nil
	default:
		return outcome{}, fmt.Errorf("loading entity %q: %w", dop.targetID, err)
	}

	switch dop.kind {
	case models.OpCreate:
		if entity != nil {
			// The id is already taken, live or tombstoned. Replaying the
			// create is satisfied by current state; recreating deleted
			// content requires a fresh id.
			return outcome{kind: outcomeIgnored}, nil
		}

		created, createErr := adapter.Create(ctx, owner, dop.targetID, dop.payload, e.clock.Now())
		if createErr != nil {
			return outcome{}, fmt.Errorf("creating entity %q: %w", dop.targetID, createErr)
		}
		return outcome{kind: outcomeApplied, entity: created}, nil

	case models.OpDelete:
		if entity == nil || entity.IsDeleted() {
			// Deleting something already gone is a successful no-op.
			return outcome{kind: outcomeIgnored}, nil
		}

		if conflict := e.detectStaleness(dop, entity); conflict != nil {
			return outcome{kind: outcomeConflict, conflict: conflict}, nil
		}

		deleted, delErr := adapter.Tombstone(ctx, entity, e.clock.Now())
		if delErr != nil {
			return outcome{}, fmt.Errorf("tombstoning entity %q: %w", dop.targetID, delErr)
		}
		return outcome{kind: outcomeApplied, entity: deleted}, nil

	default:
		if conflict := e.detectMissing(dop, entity); conflict != nil {
			return outcome{kind: outcomeConflict, conflict: conflict}, nil
		}

		if conflict := e.detectStaleness(dop, entity); conflict != nil {
			return outcome{kind: outcomeConflict, conflict: conflict}, nil
		}

		mutated, applyErr := adapter.Apply(ctx, dop.kind, entity, dop.payload, e.clock.Now())
		if applyErr != nil {
			return outcome{}, fmt.Errorf("applying op %q to entity %q: %w", dop.kind, dop.targetID, applyErr)
		}
		return outcome{kind: outcomeApplied, entity: mutated}, nil
	}
}
