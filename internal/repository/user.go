package repository

import (
	"context"

	"docrepo/internal/model"
)

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// Create inserts a new user and returns the stored record.
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// FindByID returns a user by id, or sql.ErrNoRows.
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail returns a user by unique email, or sql.ErrNoRows.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// DepartmentRepository defines data access for departments. Departments are
// created at seed time; this layer only reads them.
type DepartmentRepository interface {
	// FindByID returns a department by id, or sql.ErrNoRows.
	FindByID(ctx context.Context, id int64) (*model.Department, error)

	// List returns all departments ordered by name.
	List(ctx context.Context) ([]model.Department, error)
}
