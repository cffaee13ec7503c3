package repository

import (
	"context"

	"docrepo/internal/model"
)

// PermissionRepository maps (document, department) pairs to view/download
// grants. Rows are only ever inserted idempotently or replaced wholesale,
// never partially edited in place.
type PermissionRepository interface {
	// Grant inserts view+download grants for each department, skipping pairs
	// that already exist.
	Grant(ctx context.Context, documentID int64, departmentIDs []int64) error

	// Replace deletes all grants for the document and inserts fresh
	// view+download grants for the given departments. An empty list leaves
	// the document with zero grants.
	Replace(ctx context.Context, documentID int64, departmentIDs []int64) error

	// CanView reports whether the department holds a view grant.
	CanView(ctx context.Context, documentID, departmentID int64) (bool, error)

	// CanDownload reports whether the department holds a download grant.
	CanDownload(ctx context.Context, documentID, departmentID int64) (bool, error)

	// ListForDocument returns all grants for the document.
	ListForDocument(ctx context.Context, documentID int64) ([]model.DocumentPermission, error)
}
