package service

import (
	"context"

	"docrepo/internal/auth"
	"docrepo/internal/model"
	"docrepo/internal/repository"
)

// AccessEvaluator decides per-operation rights for a caller on a document.
// Rules, in precedence order:
//
//   - view:     owner, or caller's department holds a can_view grant
//   - download: owner, or caller's department holds a can_download grant
//   - upload new version: owner, or caller's department equals the owner's
//     department (both non-nil)
//   - edit metadata / replace permissions: owner only
//
// A caller without a department never matches a department-based grant, so
// unassigned users see nothing outside their own documents.
type AccessEvaluator struct {
	perms repository.PermissionRepository
}

func NewAccessEvaluator(perms repository.PermissionRepository) *AccessEvaluator {
	return &AccessEvaluator{perms: perms}
}

// IsOwner reports whether the caller owns the document.
func IsOwner(caller *auth.Identity, doc *model.Document) bool {
	return doc.OwnerID != nil && *doc.OwnerID == caller.UserID
}

// CanView applies the view rule.
func (a *AccessEvaluator) CanView(ctx context.Context, caller *auth.Identity, doc *model.Document) (bool, error) {
	if IsOwner(caller, doc) {
		return true, nil
	}
	if caller.DepartmentID == nil {
		return false, nil
	}
	return a.perms.CanView(ctx, doc.ID, *caller.DepartmentID)
}

// CanDownload applies the download rule.
func (a *AccessEvaluator) CanDownload(ctx context.Context, caller *auth.Identity, doc *model.Document) (bool, error) {
	if IsOwner(caller, doc) {
		return true, nil
	}
	if caller.DepartmentID == nil {
		return false, nil
	}
	return a.perms.CanDownload(ctx, doc.ID, *caller.DepartmentID)
}

// CanUploadVersion applies the upload-new-version rule. ownerDepartmentID is
// the document owner's department, nil when the owner is gone or unassigned.
func CanUploadVersion(caller *auth.Identity, doc *model.Document, ownerDepartmentID *int64) bool {
	if IsOwner(caller, doc) {
		return true
	}
	return caller.DepartmentID != nil && ownerDepartmentID != nil &&
		*caller.DepartmentID == *ownerDepartmentID
}

// CanEditMetadata applies the strictest rule: owner only.
func CanEditMetadata(caller *auth.Identity, doc *model.Document) bool {
	return IsOwner(caller, doc)
}
