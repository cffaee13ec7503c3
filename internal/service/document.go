package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"docrepo/internal/auth"
	"docrepo/internal/model"
	"docrepo/internal/repository"
	"docrepo/internal/storage"
)

// FileUpload is the inbound stream for a document version.
type FileUpload struct {
	Reader       io.Reader
	OriginalName string
	ContentType  string
	Size         int64
}

// CreateDocumentInput carries the fields for create-with-first-version.
type CreateDocumentInput struct {
	Title         string
	Description   *string
	TagNames      []string
	DepartmentIDs []int64
	File          FileUpload
}

// ReplaceMetadataInput carries the owner-only metadata replacement. Nil
// fields are left unchanged; an explicitly empty TagNames or DepartmentIDs
// slice clears that association entirely.
type ReplaceMetadataInput struct {
	Title         *string
	Description   *string
	TagNames      *[]string
	DepartmentIDs *[]int64
}

// SearchInput narrows the accessible listing. Nil fields are ignored.
type SearchInput struct {
	Title       *string
	Description *string
	TagNames    []string
	Version     *int
}

// DocumentSummary is the listing projection.
type DocumentSummary struct {
	ID                   int64     `json:"id"`
	Title                string    `json:"title"`
	CurrentVersionNumber int       `json:"current_version_number"`
	Tags                 []string  `json:"tags"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DocumentDetail is the single-document projection with the caller's
// capability flags precomputed.
type DocumentDetail struct {
	ID                   int64     `json:"id"`
	Title                string    `json:"title"`
	Description          *string   `json:"description,omitempty"`
	CurrentVersionNumber int       `json:"current_version_number"`
	OwnerID              *int64    `json:"owner_id,omitempty"`
	Tags                 []string  `json:"tags"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
	CanUploadVersion     bool      `json:"can_upload_version"`
	CanEditMetadata      bool      `json:"can_edit_metadata"`
}

// DownloadResult streams one version's content. The caller owns Body.
type DownloadResult struct {
	Body     io.ReadCloser
	Filename string
	MimeType string
	Size     int64
}

// VersionSelectorLatest resolves to the document's current version.
const VersionSelectorLatest = "latest"

// DocumentService defines the document repository use cases. Every operation
// takes the resolved caller identity and applies the access rules before
// touching state.
type DocumentService interface {
	// CreateWithFirstVersion persists the document together with version 1,
	// resolves tags, and grants department permissions. With no explicit
	// departments the grant list defaults to the caller's own department.
	CreateWithFirstVersion(ctx context.Context, caller *auth.Identity, in CreateDocumentInput) (*DocumentSummary, error)

	// ListAccessible returns documents the caller's department can view.
	// Callers without a department get an empty list.
	ListAccessible(ctx context.Context, caller *auth.Identity) ([]DocumentSummary, error)

	// ListOwned returns the caller's own documents regardless of grants.
	ListOwned(ctx context.Context, caller *auth.Identity) ([]DocumentSummary, error)

	// Search applies the ListAccessible visibility filter narrowed by the
	// input, most recently updated first.
	Search(ctx context.Context, caller *auth.Identity, in SearchInput) ([]DocumentSummary, error)

	// GetDetail returns the document with capability flags for the caller.
	GetDetail(ctx context.Context, caller *auth.Identity, documentID int64) (*DocumentDetail, error)

	// ListVersions returns the version history, newest first.
	ListVersions(ctx context.Context, caller *auth.Identity, documentID int64) ([]model.DocumentVersion, error)

	// Download streams the selected version ("latest", empty, or a number).
	Download(ctx context.Context, caller *auth.Identity, documentID int64, selector string) (*DownloadResult, error)

	// AddVersion appends a new version and advances the current pointer.
	AddVersion(ctx context.Context, caller *auth.Identity, documentID int64, file FileUpload) (*model.DocumentVersion, error)

	// ReplaceMetadata updates title/description and replaces tag and
	// permission sets wholesale where provided. Owner only.
	ReplaceMetadata(ctx context.Context, caller *auth.Identity, documentID int64, in ReplaceMetadataInput) (*DocumentDetail, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store  storage.Storage
	docs   repository.DocumentRepository
	tags   repository.TagRepository
	perms  repository.PermissionRepository
	users  repository.UserRepository
	access *AccessEvaluator
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	store storage.Storage,
	docs repository.DocumentRepository,
	tags repository.TagRepository,
	perms repository.PermissionRepository,
	users repository.UserRepository,
) DocumentService {
	return &documentService{
		store:  store,
		docs:   docs,
		tags:   tags,
		perms:  perms,
		users:  users,
		access: NewAccessEvaluator(perms),
	}
}

func (s *documentService) CreateWithFirstVersion(ctx context.Context, caller *auth.Identity, in CreateDocumentInput) (*DocumentSummary, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrBadRequest)
	}
	if in.File.Reader == nil {
		return nil, fmt.Errorf("%w: file is required", ErrBadRequest)
	}

	ownerID := caller.UserID
	doc := &model.Document{
		Title:       title,
		Description: in.Description,
		OwnerID:     &ownerID,
	}

	// The version builder runs inside the repository transaction: the blob is
	// written before the version row exists, and a builder error aborts the
	// whole create.
	var uploadedKey string
	stored, _, err := s.docs.CreateWithFirstVersion(ctx, doc, func(documentID int64, versionNumber int) (*model.DocumentVersion, error) {
		v, key, err := s.putVersionBlob(ctx, caller, documentID, versionNumber, in.File)
		if err != nil {
			return nil, err
		}
		uploadedKey = key
		return v, nil
	})
	if err != nil {
		s.discardBlob(ctx, uploadedKey)
		return nil, fmt.Errorf("create document: %w", err)
	}

	tagNames, err := s.applyTags(ctx, stored.ID, in.TagNames)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}

	// Default the grant list to the uploader's own department.
	departmentIDs := in.DepartmentIDs
	if len(departmentIDs) == 0 && caller.DepartmentID != nil {
		departmentIDs = []int64{*caller.DepartmentID}
	}
	if err := s.perms.Grant(ctx, stored.ID, departmentIDs); err != nil {
		return nil, fmt.Errorf("grant permissions: %w", err)
	}

	return &DocumentSummary{
		ID:                   stored.ID,
		Title:                stored.Title,
		CurrentVersionNumber: stored.CurrentVersionNumber,
		Tags:                 tagNames,
		UpdatedAt:            stored.UpdatedAt,
	}, nil
}

func (s *documentService) ListAccessible(ctx context.Context, caller *auth.Identity) ([]DocumentSummary, error) {
	if caller.DepartmentID == nil {
		return []DocumentSummary{}, nil
	}
	docs, err := s.docs.ListAccessible(ctx, *caller.DepartmentID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, docs)
}

func (s *documentService) ListOwned(ctx context.Context, caller *auth.Identity) ([]DocumentSummary, error) {
	docs, err := s.docs.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, docs)
}

func (s *documentService) Search(ctx context.Context, caller *auth.Identity, in SearchInput) ([]DocumentSummary, error) {
	if caller.DepartmentID == nil {
		return []DocumentSummary{}, nil
	}
	docs, err := s.docs.Search(ctx, *caller.DepartmentID, repository.SearchFilter{
		Title:       in.Title,
		Description: in.Description,
		Tags:        in.TagNames,
		Version:     in.Version,
	})
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, docs)
}

func (s *documentService) GetDetail(ctx context.Context, caller *auth.Identity, documentID int64) (*DocumentDetail, error) {
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireView(ctx, caller, doc); err != nil {
		return nil, err
	}
	return s.detail(ctx, caller, doc)
}

func (s *documentService) ListVersions(ctx context.Context, caller *auth.Identity, documentID int64) ([]model.DocumentVersion, error) {
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireView(ctx, caller, doc); err != nil {
		return nil, err
	}
	return s.docs.ListVersions(ctx, doc.ID)
}

func (s *documentService) Download(ctx context.Context, caller *auth.Identity, documentID int64, selector string) (*DownloadResult, error) {
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.access.CanDownload(ctx, caller, doc)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: download not permitted", ErrForbidden)
	}

	versionNumber, err := resolveVersionSelector(doc, selector)
	if err != nil {
		return nil, err
	}

	v, err := s.docs.FindVersion(ctx, doc.ID, versionNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: version %d", ErrNotFound, versionNumber)
		}
		return nil, err
	}

	body, _, err := s.store.Get(ctx, v.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("read storage: %w", err)
	}

	return &DownloadResult{
		Body:     body,
		Filename: path.Base(v.StoragePath),
		MimeType: v.MimeType,
		Size:     v.FileSize,
	}, nil
}

func (s *documentService) AddVersion(ctx context.Context, caller *auth.Identity, documentID int64, file FileUpload) (*model.DocumentVersion, error) {
	if file.Reader == nil {
		return nil, fmt.Errorf("%w: file is required", ErrBadRequest)
	}

	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	ownerDept, err := s.ownerDepartment(ctx, doc)
	if err != nil {
		return nil, err
	}
	if !CanUploadVersion(caller, doc, ownerDept) {
		return nil, fmt.Errorf("%w: uploading a new version is not permitted", ErrForbidden)
	}

	var uploadedKey string
	v, err := s.docs.AddVersion(ctx, doc.ID, func(docID int64, versionNumber int) (*model.DocumentVersion, error) {
		nv, key, err := s.putVersionBlob(ctx, caller, docID, versionNumber, file)
		if err != nil {
			return nil, err
		}
		uploadedKey = key
		return nv, nil
	})
	if err != nil {
		s.discardBlob(ctx, uploadedKey)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %d", ErrNotFound, documentID)
		}
		return nil, fmt.Errorf("add version: %w", err)
	}
	return v, nil
}

func (s *documentService) ReplaceMetadata(ctx context.Context, caller *auth.Identity, documentID int64, in ReplaceMetadataInput) (*DocumentDetail, error) {
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !CanEditMetadata(caller, doc) {
		return nil, fmt.Errorf("%w: only the owner may edit metadata", ErrForbidden)
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrBadRequest)
	}

	if in.Title != nil || in.Description != nil {
		if err := s.docs.UpdateMetadata(ctx, doc.ID, in.Title, in.Description); err != nil {
			return nil, err
		}
	}

	// Tags are replaced wholesale when provided; an empty list clears them.
	if in.TagNames != nil {
		if _, err := s.applyTags(ctx, doc.ID, *in.TagNames); err != nil {
			return nil, fmt.Errorf("replace tags: %w", err)
		}
	}

	if in.DepartmentIDs != nil {
		if err := s.perms.Replace(ctx, doc.ID, *in.DepartmentIDs); err != nil {
			return nil, fmt.Errorf("replace permissions: %w", err)
		}
	}

	updated, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, caller, updated)
}

// putVersionBlob writes the content to the object store under a fresh
// per-version key and returns the version row to insert plus the key for
// rollback.
func (s *documentService) putVersionBlob(ctx context.Context, caller *auth.Identity, documentID int64, versionNumber int, file FileUpload) (*model.DocumentVersion, string, error) {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.VersionKey(documentID, versionNumber, file.OriginalName)
	info, err := s.store.Put(ctx, key, file.Reader, storage.PutObjectOptions{
		Size:        file.Size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": file.OriginalName,
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("upload to storage: %w", err)
	}

	uploaderID := caller.UserID
	return &model.DocumentVersion{
		DocumentID:     documentID,
		VersionNumber:  versionNumber,
		StoragePath:    info.Key,
		MimeType:       contentType,
		FileSize:       info.Size,
		UploadedBy:     &uploaderID,
		UploadedByName: caller.Name,
	}, key, nil
}

// discardBlob best-effort deletes a blob whose version row never committed.
func (s *documentService) discardBlob(ctx context.Context, key string) {
	if key == "" {
		return
	}
	_ = s.store.Delete(ctx, key)
}

// applyTags resolves the names and replaces the document's tag set, returning
// the resolved names in storage order.
func (s *documentService) applyTags(ctx context.Context, documentID int64, names []string) ([]string, error) {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}

	resolved, err := s.tags.Resolve(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(resolved))
	out := make([]string, len(resolved))
	for i, t := range resolved {
		ids[i] = t.ID
		out[i] = t.Name
	}
	if err := s.tags.SetDocumentTags(ctx, documentID, ids); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *documentService) loadDocument(ctx context.Context, documentID int64) (*model.Document, error) {
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %d", ErrNotFound, documentID)
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) requireView(ctx context.Context, caller *auth.Identity, doc *model.Document) error {
	allowed, err := s.access.CanView(ctx, caller, doc)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: viewing this document is not permitted", ErrForbidden)
	}
	return nil
}

// ownerDepartment resolves the document owner's department id, nil when the
// owner is gone or has no department.
func (s *documentService) ownerDepartment(ctx context.Context, doc *model.Document) (*int64, error) {
	if doc.OwnerID == nil {
		return nil, nil
	}
	owner, err := s.users.FindByID(ctx, *doc.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return owner.DepartmentID, nil
}

// summarize builds listing projections, batching the tag lookup.
func (s *documentService) summarize(ctx context.Context, docs []model.Document) ([]DocumentSummary, error) {
	ids := make([]int64, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	tagsByDoc, err := s.tags.ListByDocuments(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]DocumentSummary, len(docs))
	for i, d := range docs {
		out[i] = DocumentSummary{
			ID:                   d.ID,
			Title:                d.Title,
			CurrentVersionNumber: d.CurrentVersionNumber,
			Tags:                 tagNames(tagsByDoc[d.ID]),
			UpdatedAt:            d.UpdatedAt,
		}
	}
	return out, nil
}

func (s *documentService) detail(ctx context.Context, caller *auth.Identity, doc *model.Document) (*DocumentDetail, error) {
	tags, err := s.tags.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	ownerDept, err := s.ownerDepartment(ctx, doc)
	if err != nil {
		return nil, err
	}
	return &DocumentDetail{
		ID:                   doc.ID,
		Title:                doc.Title,
		Description:          doc.Description,
		CurrentVersionNumber: doc.CurrentVersionNumber,
		OwnerID:              doc.OwnerID,
		Tags:                 tagNames(tags),
		CreatedAt:            doc.CreatedAt,
		UpdatedAt:            doc.UpdatedAt,
		CanUploadVersion:     CanUploadVersion(caller, doc, ownerDept),
		CanEditMetadata:      CanEditMetadata(caller, doc),
	}, nil
}

// resolveVersionSelector maps "latest"/empty to the current version and a
// numeric selector to its value. Anything else is a bad request, distinct
// from a missing version.
func resolveVersionSelector(doc *model.Document, selector string) (int, error) {
	if selector == "" || selector == VersionSelectorLatest {
		return doc.CurrentVersionNumber, nil
	}
	n, err := strconv.Atoi(selector)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: version must be %q or a positive integer", ErrBadRequest, VersionSelectorLatest)
	}
	return n, nil
}

func tagNames(tags []model.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Name
	}
	return out
}
