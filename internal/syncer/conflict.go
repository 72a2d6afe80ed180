package syncer

import (
	"time"

	"github.com/ndedov/go-stash-sync/models"
)

// detectMissing raises a not-found conflict for a mutating, non-delete
// operation whose target is absent or already tombstoned. A tombstoned
// entity still yields its snapshot so the client can see what it is
// conflicting with; an absent one cannot.
func (e *Engine) detectMissing(dop decodedOp, entity models.SyncEntity) *models.Conflict {
	if entity != nil && !entity.IsDeleted() {
		return nil
	}

	conflict := &models.Conflict{
		OperationID:     dop.op.OperationID,
		Op:              dop.kind,
		ID:              dop.targetID,
		ClientUpdatedAt: dop.clientUpdatedAt,
		Reason:          models.ConflictReasonNotFound,
	}

	if entity != nil {
		serverUpdated := entity.UpdatedTime()
		conflict.ServerUpdatedAt = &serverUpdated
		conflict.ServerEntity = entity
	}

	return conflict
}

// detectStaleness runs the optimistic-concurrency check for an operation
// targeting a live entity.
//
// The check only runs when the client supplied its last-known server
// timestamp; omitting it means last-write-wins and the operation overwrites
// unconditionally. A version conflict is raised when the entity's current
// timestamp is strictly greater than the client's, i.e. the entity changed
// on the server after the client last saw it.
func (e *Engine) detectStaleness(dop decodedOp, entity models.SyncEntity) *models.Conflict {
	if dop.clientUpdatedAt == nil {
		return nil
	}

	serverUpdated := entity.UpdatedTime()
	if !serverUpdated.After(*dop.clientUpdatedAt) {
		return nil
	}

	return &models.Conflict{
		OperationID:     dop.op.OperationID,
		Op:              dop.kind,
		ID:              dop.targetID,
		ClientUpdatedAt: cloneTime(dop.clientUpdatedAt),
		ServerUpdatedAt: &serverUpdated,
		ServerEntity:    entity,
		Reason:          models.ConflictReasonVersion,
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
