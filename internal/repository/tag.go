package repository

import (
	"context"

	"docrepo/internal/model"
)

// TagRepository deduplicates tag names into stable tag identities and owns the
// document_tags association.
type TagRepository interface {
	// Resolve returns tags for all given names, creating the ones that do not
	// exist yet. Name matching is case-sensitive and exact. The storage-layer
	// uniqueness constraint is the source of truth for concurrent creates of
	// the same name; a unique violation is resolved by re-fetching.
	Resolve(ctx context.Context, names []string) ([]model.Tag, error)

	// List returns all tags ordered by name.
	List(ctx context.Context) ([]model.Tag, error)

	// SetDocumentTags replaces the document's tag associations wholesale.
	// An empty tagIDs slice clears them.
	SetDocumentTags(ctx context.Context, documentID int64, tagIDs []int64) error

	// ListByDocument returns the document's tags ordered by name.
	ListByDocument(ctx context.Context, documentID int64) ([]model.Tag, error)

	// ListByDocuments returns tags keyed by document id for a batch of
	// documents in a single query.
	ListByDocuments(ctx context.Context, documentIDs []int64) (map[int64][]model.Tag, error)
}
