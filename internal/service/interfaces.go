package service

import (
	"context"

	"github.com/ndedov/go-stash-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/services.go -package=mock

// SyncService reconciles a client batch against the server state of one
// entity family and answers recency queries for that family.
type SyncService interface {
	// Sync applies a raw batch envelope on behalf of userID and returns
	// the reconciliation result. The whole batch is rejected before any
	// write when the envelope is malformed.
	Sync(ctx context.Context, userID int64, body []byte) (models.SyncResult, error)

	// Recent lists the entities the owner touched within the recency
	// window, newest first.
	Recent(ctx context.Context, userID int64) ([]models.SyncEntity, error)
}
