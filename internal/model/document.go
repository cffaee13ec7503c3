package model

import "time"

// Document is the versioned metadata record for an uploaded file.
// These are pure domain models with no database-specific dependencies or tags;
// they can be used across layers (HTTP, service, storage) without coupling to persistence.
//
// CurrentVersionNumber always equals the VersionNumber of the most recently
// added DocumentVersion of the same document.
type Document struct {
	ID                   int64     `json:"id"`
	Title                string    `json:"title"`
	Description          *string   `json:"description,omitempty"`
	CurrentVersionNumber int       `json:"current_version_number"`
	OwnerID              *int64    `json:"owner_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DocumentVersion is an immutable snapshot of one upload. A new upload always
// creates a new row; existing rows are never mutated or individually deleted.
// UploadedByName is denormalized at upload time and does not follow later
// renames of the uploader.
type DocumentVersion struct {
	ID             int64     `json:"id"`
	DocumentID     int64     `json:"document_id"`
	VersionNumber  int       `json:"version_number"`
	StoragePath    string    `json:"-"`
	MimeType       string    `json:"mime_type"`
	FileSize       int64     `json:"file_size"`
	UploadedBy     *int64    `json:"uploaded_by,omitempty"`
	UploadedByName string    `json:"uploaded_by_name"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

// Tag is a deduplicated label shared across documents (many-to-many).
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DocumentPermission grants a department view/download access to a document.
// At most one row exists per (document, department) pair; absence of a row
// means no access.
type DocumentPermission struct {
	ID           int64 `json:"id"`
	DocumentID   int64 `json:"document_id"`
	DepartmentID int64 `json:"department_id"`
	CanView      bool  `json:"can_view"`
	CanDownload  bool  `json:"can_download"`
}
