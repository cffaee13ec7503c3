package model

import "time"

// Department groups users and is the unit of document access grants.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User belongs to at most one department. DepartmentID is nil for unassigned
// users, who never match department-based grants.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DepartmentID *int64    `json:"department_id,omitempty"`
	Role         *string   `json:"role,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
