package models

import "time"

// SyncEntity is implemented by every entity family that participates in
// batch synchronization. The sync engine only ever touches entities through
// this capability set, which keeps it independent of the concrete family
// (note, bookmark, file object).
type SyncEntity interface {
	// EntityID returns the opaque unique identifier of the entity.
	EntityID() string

	// OwnerID returns the user the entity is scoped to. Entities are never
	// visible across owners.
	OwnerID() int64

	// UpdatedTime returns the server-side modification timestamp. It is
	// strictly non-decreasing per entity across successful mutations.
	UpdatedTime() time.Time

	// IsDeleted reports whether the entity carries a tombstone marker.
	IsDeleted() bool

	// Touch stamps the modification timestamp. Called exactly once per
	// successful state transition.
	Touch(now time.Time)

	// MarkDeleted sets the tombstone marker and stamps the modification
	// timestamp so the deletion itself replicates as a delta.
	MarkDeleted(now time.Time)
}

// Syncable provides the common identity and lifecycle fields shared by all
// synchronizable entities. It is embedded into every concrete entity model
// and satisfies most of [SyncEntity].
type Syncable struct {
	// ID is the opaque unique identifier of the record. Client-minted on
	// creation so that offline-created entities keep a stable identity.
	ID string `json:"id"`

	// UserID is the owner of the record.
	UserID int64 `json:"user_id"`

	// CreatedAt is the timestamp when the record was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last successful mutation.
	UpdatedAt time.Time `json:"updated_at"`

	// DeletedAt is the soft-delete tombstone marker. A non-nil value means
	// the record is logically gone but kept so deletions propagate during
	// delta computation. A fresh ID is required to recreate deleted content.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// EntityID implements [SyncEntity].
func (s *Syncable) EntityID() string { return s.ID }

// OwnerID implements [SyncEntity].
func (s *Syncable) OwnerID() int64 { return s.UserID }

// UpdatedTime implements [SyncEntity].
func (s *Syncable) UpdatedTime() time.Time { return s.UpdatedAt }

// IsDeleted implements [SyncEntity].
func (s *Syncable) IsDeleted() bool { return s.DeletedAt != nil }

// Touch implements [SyncEntity].
func (s *Syncable) Touch(now time.Time) { s.UpdatedAt = now }

// MarkDeleted implements [SyncEntity].
func (s *Syncable) MarkDeleted(now time.Time) {
	s.DeletedAt = &now
	s.UpdatedAt = now
}

// InitTimestamps sets both CreatedAt and UpdatedAt. Called once when a new
// entity is inserted.
func (s *Syncable) InitTimestamps(now time.Time) {
	s.CreatedAt = now
	s.UpdatedAt = now
}
