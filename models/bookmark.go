package models

// Bookmark is a saved web page in a user's collection.
//
// Bookmarks support the same sync operations as notes except archiving;
// the client vocabulary for this family simply never includes it.
type Bookmark struct {
	Syncable

	// URL is the bookmarked page address.
	URL string `json:"url"`

	// Title is the display name shown in listings.
	Title string `json:"title"`

	// Folder is an optional logical container used to group bookmarks.
	Folder string `json:"folder,omitempty"`

	// Pinned marks the bookmark as pinned to the top of its collection.
	Pinned bool `json:"pinned"`

	// PinnedOrder is the position among the owner's pinned bookmarks.
	PinnedOrder *int64 `json:"pinned_order,omitempty"`
}

// TableName returns the name of the database table
// associated with the Bookmark model.
func (b *Bookmark) TableName() string {
	return "bookmarks"
}
