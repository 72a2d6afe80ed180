package models

// FileObject describes an uploaded file in a user's collection.
//
// Only the metadata record participates in synchronization; the binary
// content itself is transferred through a separate upload path and is
// opaque to the sync protocol.
type FileObject struct {
	Syncable

	// Name is the display file name.
	Name string `json:"name"`

	// Path is the logical location of the file within the owner's tree.
	Path string `json:"path"`

	// Size is the content length in bytes.
	Size int64 `json:"size"`

	// ContentType is the MIME type recorded at upload time.
	ContentType string `json:"content_type,omitempty"`
}

// TableName returns the name of the database table
// associated with the FileObject model.
func (f *FileObject) TableName() string {
	return "files"
}
