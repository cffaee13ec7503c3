package postgres

import (
	"context"
	"database/sql"

	"docrepo/internal/model"
	"docrepo/internal/repository"
)

// PermissionPostgres is a PostgreSQL implementation of repository.PermissionRepository.
type PermissionPostgres struct {
	db *sql.DB
}

// NewPermissionPostgres creates a new PermissionPostgres repository.
func NewPermissionPostgres(db *sql.DB) *PermissionPostgres {
	return &PermissionPostgres{db: db}
}

var _ repository.PermissionRepository = (*PermissionPostgres)(nil)

// Grant inserts view+download grants, skipping (document, department) pairs
// already present. The UNIQUE constraint backs the idempotency.
func (r *PermissionPostgres) Grant(ctx context.Context, documentID int64, departmentIDs []int64) error {
	if len(departmentIDs) == 0 {
		return nil
	}
	const q = `
		INSERT INTO document_permissions (document_id, department_id, can_view, can_download)
		SELECT $1, unnest($2::bigint[]), TRUE, TRUE
		ON CONFLICT (document_id, department_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q, documentID, departmentIDs)
	return err
}

// Replace deletes all grants for the document and inserts fresh ones inside a
// single transaction. An empty department list leaves zero grants.
func (r *PermissionPostgres) Replace(ctx context.Context, documentID int64, departmentIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const qDelete = `DELETE FROM document_permissions WHERE document_id = $1`
	if _, err := tx.ExecContext(ctx, qDelete, documentID); err != nil {
		return err
	}

	if len(departmentIDs) > 0 {
		const qInsert = `
			INSERT INTO document_permissions (document_id, department_id, can_view, can_download)
			SELECT $1, unnest($2::bigint[]), TRUE, TRUE
		`
		if _, err := tx.ExecContext(ctx, qInsert, documentID, departmentIDs); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CanView reports whether the department holds a view grant on the document.
func (r *PermissionPostgres) CanView(ctx context.Context, documentID, departmentID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM document_permissions
			WHERE document_id = $1 AND department_id = $2 AND can_view
		)
	`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, documentID, departmentID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// CanDownload reports whether the department holds a download grant on the document.
func (r *PermissionPostgres) CanDownload(ctx context.Context, documentID, departmentID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM document_permissions
			WHERE document_id = $1 AND department_id = $2 AND can_download
		)
	`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, documentID, departmentID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ListForDocument returns all grants for the document.
func (r *PermissionPostgres) ListForDocument(ctx context.Context, documentID int64) ([]model.DocumentPermission, error) {
	const q = `
		SELECT id, document_id, department_id, can_view, can_download
		FROM document_permissions
		WHERE document_id = $1
		ORDER BY department_id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentPermission, 0)
	for rows.Next() {
		var p model.DocumentPermission
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.DepartmentID, &p.CanView, &p.CanDownload); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
