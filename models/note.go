// SPDX-License-Identifier: Apache-2.0

package models

// Note is a single text note in a user's collection.
type Note struct {
	Syncable

	// Title is the human-readable display name of the note.
	Title string `json:"title"`

	// Content holds the note body.
	Content string `json:"content"`

	// Folder is an optional logical container used to group notes.
	Folder string `json:"folder,omitempty"`

	// Pinned marks the note as pinned to the top of its collection.
	Pinned bool `json:"pinned"`

	// PinnedOrder is the position among the owner's pinned notes.
	// Assigned on first pin, cleared on unpin, never reused.
	PinnedOrder *int64 `json:"pinned_order,omitempty"`

	// Archived moves the note out of the active view without deleting it.
	Archived bool `json:"archived"`
}

// TableName returns the name of the database table
// associated with the Note model.
func (n *Note) TableName() string {
	return "notes"
}
