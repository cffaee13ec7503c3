package postgres

import (
	"context"
	"database/sql"

	"docrepo/internal/model"
	"docrepo/internal/repository"
)

// TagPostgres is a PostgreSQL implementation of repository.TagRepository.
type TagPostgres struct {
	db *sql.DB
}

// NewTagPostgres creates a new TagPostgres repository.
func NewTagPostgres(db *sql.DB) *TagPostgres {
	return &TagPostgres{db: db}
}

var _ repository.TagRepository = (*TagPostgres)(nil)

// Resolve creates any unknown names and returns tags for all of them. The
// UNIQUE(name) index is the source of truth under concurrency: ON CONFLICT DO
// NOTHING absorbs a concurrent create and the follow-up select picks the row
// up regardless of which caller inserted it.
func (r *TagPostgres) Resolve(ctx context.Context, names []string) ([]model.Tag, error) {
	if len(names) == 0 {
		return []model.Tag{}, nil
	}

	const qInsert = `
		INSERT INTO tags (name)
		SELECT unnest($1::text[])
		ON CONFLICT (name) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, qInsert, names); err != nil {
		return nil, err
	}

	const qSelect = `SELECT id, name FROM tags WHERE name = ANY($1) ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, qSelect, names)
	if err != nil {
		return nil, err
	}
	return collectTags(rows)
}

// List returns all tags ordered by name.
func (r *TagPostgres) List(ctx context.Context) ([]model.Tag, error) {
	const q = `SELECT id, name FROM tags ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectTags(rows)
}

// SetDocumentTags replaces the document's associations wholesale inside one
// transaction, so readers never observe a half-updated tag set.
func (r *TagPostgres) SetDocumentTags(ctx context.Context, documentID int64, tagIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const qDelete = `DELETE FROM document_tags WHERE document_id = $1`
	if _, err := tx.ExecContext(ctx, qDelete, documentID); err != nil {
		return err
	}

	if len(tagIDs) > 0 {
		const qInsert = `
			INSERT INTO document_tags (document_id, tag_id)
			SELECT $1, unnest($2::bigint[])
		`
		if _, err := tx.ExecContext(ctx, qInsert, documentID, tagIDs); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListByDocument returns the document's tags ordered by name.
func (r *TagPostgres) ListByDocument(ctx context.Context, documentID int64) ([]model.Tag, error) {
	const q = `
		SELECT t.id, t.name
		FROM document_tags dt
		JOIN tags t ON t.id = dt.tag_id
		WHERE dt.document_id = $1
		ORDER BY t.name ASC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	return collectTags(rows)
}

// ListByDocuments batches tag lookup for a set of documents in one query.
func (r *TagPostgres) ListByDocuments(ctx context.Context, documentIDs []int64) (map[int64][]model.Tag, error) {
	out := make(map[int64][]model.Tag, len(documentIDs))
	if len(documentIDs) == 0 {
		return out, nil
	}

	const q = `
		SELECT dt.document_id, t.id, t.name
		FROM document_tags dt
		JOIN tags t ON t.id = dt.tag_id
		WHERE dt.document_id = ANY($1)
		ORDER BY t.name ASC
	`
	rows, err := r.db.QueryContext(ctx, q, documentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var docID int64
		var t model.Tag
		if err := rows.Scan(&docID, &t.ID, &t.Name); err != nil {
			return nil, err
		}
		out[docID] = append(out[docID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func collectTags(rows *sql.Rows) ([]model.Tag, error) {
	defer rows.Close()

	items := make([]model.Tag, 0)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
