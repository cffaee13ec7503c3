package repository

import (
	"context"

	"docrepo/internal/model"
)

// VersionBuilder produces the version row to insert once the repository has
// fixed the document id and the next version number inside its transaction.
// It is where the caller performs the blob write: returning an error aborts
// the transaction, so no version row is ever committed without a confirmed
// blob behind it.
type VersionBuilder func(documentID int64, versionNumber int) (*model.DocumentVersion, error)

// SearchFilter narrows accessible-document queries. Nil fields are ignored.
// Title and Description match as case-insensitive substrings, Tags with OR
// semantics on tag names, Version on the exact current_version_number.
type SearchFilter struct {
	Title       *string
	Description *string
	Tags        []string
	Version     *int
}

// DocumentRepository defines data access for documents and their version
// history using SQL queries only. No business logic here.
type DocumentRepository interface {
	// CreateWithFirstVersion inserts the document and its first version as a
	// single transaction. The builder is invoked with the generated document
	// id and version number 1.
	CreateWithFirstVersion(ctx context.Context, doc *model.Document, build VersionBuilder) (*model.Document, *model.DocumentVersion, error)

	// AddVersion locks the document row, computes the next version number,
	// invokes the builder, inserts the version, and advances
	// current_version_number, all inside one transaction. Returns
	// sql.ErrNoRows if the document does not exist.
	AddVersion(ctx context.Context, documentID int64, build VersionBuilder) (*model.DocumentVersion, error)

	// FindByID returns a document by its id, or sql.ErrNoRows.
	FindByID(ctx context.Context, id int64) (*model.Document, error)

	// ListAccessible returns documents the given department can view,
	// most recently updated first.
	ListAccessible(ctx context.Context, departmentID int64) ([]model.Document, error)

	// ListByOwner returns all documents owned by the user regardless of
	// department grants, most recently updated first.
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Document, error)

	// Search is ListAccessible narrowed by the filter.
	Search(ctx context.Context, departmentID int64, f SearchFilter) ([]model.Document, error)

	// ListVersions returns all versions of a document, newest first.
	ListVersions(ctx context.Context, documentID int64) ([]model.DocumentVersion, error)

	// FindVersion returns one version by (document, number), or sql.ErrNoRows.
	FindVersion(ctx context.Context, documentID int64, versionNumber int) (*model.DocumentVersion, error)

	// UpdateMetadata sets title and/or description; nil fields are left
	// unchanged. updated_at is bumped either way.
	UpdateMetadata(ctx context.Context, id int64, title, description *string) error
}
