package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"docrepo/internal/model"
	"docrepo/internal/repository"
)

const documentColumns = "id, title, description, current_version_number, owner_id, created_at, updated_at"

const versionColumns = "id, document_id, version_number, storage_path, mime_type, file_size, uploaded_by, uploaded_by_name, uploaded_at"

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// CreateWithFirstVersion inserts the document and its first version in one
// transaction. The version builder runs between the two inserts so the blob
// write can use the generated document id; if it fails nothing persists.
func (r *DocumentPostgres) CreateWithFirstVersion(ctx context.Context, doc *model.Document, build repository.VersionBuilder) (*model.Document, *model.DocumentVersion, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	const qDoc = `
		INSERT INTO documents (title, description, current_version_number, owner_id)
		VALUES ($1, $2, 1, $3)
		RETURNING ` + documentColumns
	var out model.Document
	if err := scanDocument(tx.QueryRowContext(ctx, qDoc, doc.Title, doc.Description, doc.OwnerID), &out); err != nil {
		return nil, nil, err
	}

	v, err := build(out.ID, 1)
	if err != nil {
		return nil, nil, err
	}

	stored, err := insertVersion(ctx, tx, v)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &out, stored, nil
}

// AddVersion serializes concurrent uploads against the same document with a
// row lock on the document, so two uploads can never claim the same version
// number. The pointer advance and the version insert commit together.
func (r *DocumentPostgres) AddVersion(ctx context.Context, documentID int64, build repository.VersionBuilder) (*model.DocumentVersion, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const qLock = `SELECT current_version_number FROM documents WHERE id = $1 FOR UPDATE`
	var current int
	if err := tx.QueryRowContext(ctx, qLock, documentID).Scan(&current); err != nil {
		return nil, err
	}
	next := current + 1

	v, err := build(documentID, next)
	if err != nil {
		return nil, err
	}

	stored, err := insertVersion(ctx, tx, v)
	if err != nil {
		return nil, err
	}

	const qAdvance = `UPDATE documents SET current_version_number = $1, updated_at = now() WHERE id = $2`
	if _, err := tx.ExecContext(ctx, qAdvance, next, documentID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

func insertVersion(ctx context.Context, tx *sql.Tx, v *model.DocumentVersion) (*model.DocumentVersion, error) {
	const q = `
		INSERT INTO document_versions (document_id, version_number, storage_path, mime_type, file_size, uploaded_by, uploaded_by_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + versionColumns
	row := tx.QueryRowContext(ctx, q,
		v.DocumentID,
		v.VersionNumber,
		v.StoragePath,
		v.MimeType,
		v.FileSize,
		v.UploadedBy,
		v.UploadedByName,
	)
	var out model.DocumentVersion
	if err := scanVersion(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single document by its id.
func (r *DocumentPostgres) FindByID(ctx context.Context, id int64) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	var d model.Document
	if err := scanDocument(r.db.QueryRowContext(ctx, q, id), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListAccessible returns documents the department holds a view grant for.
func (r *DocumentPostgres) ListAccessible(ctx context.Context, departmentID int64) ([]model.Document, error) {
	const q = `
		SELECT d.id, d.title, d.description, d.current_version_number, d.owner_id, d.created_at, d.updated_at
		FROM documents d
		JOIN document_permissions p ON p.document_id = d.id
		WHERE p.department_id = $1 AND p.can_view
		ORDER BY d.updated_at DESC, d.id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, departmentID)
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

// ListByOwner returns all documents owned by the user.
func (r *DocumentPostgres) ListByOwner(ctx context.Context, ownerID int64) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_id = $1
		ORDER BY updated_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

// Search narrows the accessible set by the filter. The WHERE clause is built
// incrementally from parameterized fragments only.
func (r *DocumentPostgres) Search(ctx context.Context, departmentID int64, f repository.SearchFilter) ([]model.Document, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT d.id, d.title, d.description, d.current_version_number, d.owner_id, d.created_at, d.updated_at
		FROM documents d
		JOIN document_permissions p ON p.document_id = d.id
		WHERE p.department_id = $1 AND p.can_view
	`)
	args := []any{departmentID}

	if f.Title != nil {
		args = append(args, "%"+*f.Title+"%")
		fmt.Fprintf(&sb, " AND d.title ILIKE $%d", len(args))
	}
	if f.Description != nil {
		args = append(args, "%"+*f.Description+"%")
		fmt.Fprintf(&sb, " AND d.description ILIKE $%d", len(args))
	}
	if len(f.Tags) > 0 {
		args = append(args, f.Tags)
		fmt.Fprintf(&sb, ` AND EXISTS (
			SELECT 1 FROM document_tags dt
			JOIN tags t ON t.id = dt.tag_id
			WHERE dt.document_id = d.id AND t.name = ANY($%d)
		)`, len(args))
	}
	if f.Version != nil {
		args = append(args, *f.Version)
		fmt.Fprintf(&sb, " AND d.current_version_number = $%d", len(args))
	}

	sb.WriteString(" ORDER BY d.updated_at DESC, d.id DESC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

// ListVersions returns the document's versions newest first.
func (r *DocumentPostgres) ListVersions(ctx context.Context, documentID int64) ([]model.DocumentVersion, error) {
	const q = `
		SELECT ` + versionColumns + `
		FROM document_versions
		WHERE document_id = $1
		ORDER BY version_number DESC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentVersion, 0)
	for rows.Next() {
		var v model.DocumentVersion
		if err := scanVersion(rows, &v); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindVersion fetches one version by (document, number).
func (r *DocumentPostgres) FindVersion(ctx context.Context, documentID int64, versionNumber int) (*model.DocumentVersion, error) {
	const q = `
		SELECT ` + versionColumns + `
		FROM document_versions
		WHERE document_id = $1 AND version_number = $2
	`
	var v model.DocumentVersion
	if err := scanVersion(r.db.QueryRowContext(ctx, q, documentID, versionNumber), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateMetadata sets the provided fields and bumps updated_at. COALESCE keeps
// omitted (nil) fields at their stored values.
func (r *DocumentPostgres) UpdateMetadata(ctx context.Context, id int64, title, description *string) error {
	const q = `
		UPDATE documents
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id, title, description)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(s rowScanner, d *model.Document) error {
	return s.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.CurrentVersionNumber,
		&d.OwnerID,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
}

func scanVersion(s rowScanner, v *model.DocumentVersion) error {
	return s.Scan(
		&v.ID,
		&v.DocumentID,
		&v.VersionNumber,
		&v.StoragePath,
		&v.MimeType,
		&v.FileSize,
		&v.UploadedBy,
		&v.UploadedByName,
		&v.UploadedAt,
	)
}

func collectDocuments(rows *sql.Rows) ([]model.Document, error) {
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := scanDocument(rows, &d); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
