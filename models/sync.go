// SPDX-License-Identifier: Apache-2.0

package models

import (
	"encoding/json"
	"time"
)

// Operation kinds shared across entity families. Each family recognizes a
// subset of these; a kind that is present but not recognized by the target
// family is absorbed without effect so that clients and servers with
// diverging vocabularies can still talk to each other.
const (
	OpCreate  = "create"
	OpRename  = "rename"
	OpMove    = "move"
	OpPin     = "pin"
	OpArchive = "archive"
	OpRestore = "restore"
	OpDelete  = "delete"
)

// Conflict reasons reported back to the client.
const (
	// ConflictReasonNotFound means the client referenced an entity that does
	// not exist, or no longer exists, from the server's point of view.
	ConflictReasonNotFound = "not_found"

	// ConflictReasonVersion means the entity changed on the server after the
	// client last saw it.
	ConflictReasonVersion = "version_conflict"
)

// SyncRequest is the batch envelope a client submits to reconcile its local
// edits against the server in one round trip.
//
// LastSync and each operation's client_updated_at are kept as raw JSON here;
// the sync engine parses and validates them before any mutation so that a
// malformed timestamp rejects the whole batch up front.
type SyncRequest struct {
	// LastSync is the watermark returned by the previous sync call, or null
	// for a full resync. Accepted forms: RFC3339 string or epoch number.
	LastSync json.RawMessage `json:"last_sync,omitempty"`

	// Operations is the ordered list of local edits to replay.
	Operations []Operation `json:"operations"`
}

// Operation is a single client edit inside a sync batch.
//
// Op-specific payload fields (title, content, folder, pinned, ...) live flat
// on the operation object; the full raw object is retained so the entity
// family adapter can decode the payload for the kinds it recognizes.
type Operation struct {
	// OperationID is a client-supplied idempotency token. When blank the
	// server mints one for in-batch tracking, but a minted token cannot be
	// used for later dedupe.
	OperationID string `json:"operation_id,omitempty"`

	// Op is the operation kind discriminator. An operation with a blank Op
	// is dropped at decode time and does not count toward the batch.
	Op string `json:"op"`

	// TargetID identifies the entity the operation applies to. Required for
	// every kind except create, where it names the entity being created.
	TargetID string `json:"id,omitempty"`

	// ClientUpdatedAt is the client's last-known server timestamp for the
	// target, used for the staleness check. Raw because both RFC3339 strings
	// and epoch numbers are accepted. When absent the write is unconditional.
	ClientUpdatedAt json.RawMessage `json:"client_updated_at,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the known operation fields and retains the complete
// raw object for later payload decoding.
func (o *Operation) UnmarshalJSON(data []byte) error {
	type operation Operation

	var op operation
	if err := json.Unmarshal(data, &op); err != nil {
		return err
	}

	*o = Operation(op)
	o.raw = append(o.raw[:0], data...)

	return nil
}

// Payload returns the complete raw operation object, from which the entity
// family adapter extracts the op-specific fields.
func (o *Operation) Payload() json.RawMessage {
	if o.raw == nil {
		return json.RawMessage("{}")
	}
	return o.raw
}

// Conflict describes a single operation from the batch that could not be
// applied because the server's view of the target diverged from the
// client's. It carries enough state for the client to reconcile locally
// without a follow-up fetch.
type Conflict struct {
	// OperationID echoes the operation's idempotency token.
	OperationID string `json:"operationId"`

	// Op is the kind of the conflicting operation.
	Op string `json:"op"`

	// ID is the target entity identifier.
	ID string `json:"id"`

	// ClientUpdatedAt is the timestamp the client believed was current.
	ClientUpdatedAt *time.Time `json:"clientUpdatedAt,omitempty"`

	// ServerUpdatedAt is the entity's actual current timestamp.
	ServerUpdatedAt *time.Time `json:"serverUpdatedAt,omitempty"`

	// ServerEntity is a full snapshot of the current server state, when one
	// exists. Nil for not-found conflicts.
	ServerEntity SyncEntity `json:"serverEntity"`

	// Reason is one of the ConflictReason constants.
	Reason string `json:"reason"`
}

// SyncResult is the outcome of one reconciliation round trip.
type SyncResult struct {
	// AppliedIDs lists the operation IDs in submission order, one entry per
	// operation that survived envelope decoding, regardless of outcome.
	AppliedIDs []string `json:"applied_ids"`

	// Entities contains only entities actually mutated by this batch.
	Entities []SyncEntity `json:"entities"`

	// Conflicts lists operations that were rejected by the staleness or
	// existence checks. Conflicts are expected outcomes, not errors.
	Conflicts []Conflict `json:"conflicts"`

	// UpdatedEntities is the delta: everything that changed since the
	// caller's last watermark, tombstones included, so deletions propagate.
	UpdatedEntities []SyncEntity `json:"updated_entities"`

	// ServerUpdatedSince is the new watermark the client must store and send
	// back on its next call. Monotonic per owner.
	ServerUpdatedSince time.Time `json:"server_updated_since"`
}
