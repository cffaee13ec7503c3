package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"docrepo/internal/auth"
	"docrepo/internal/model"
	"docrepo/internal/repository"
)

// RegisterInput carries a new account request.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	DepartmentID *int64
	Role         *string
}

// UserProfile is the account projection returned by register and me.
type UserProfile struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Role           *string `json:"role,omitempty"`
	DepartmentID   *int64  `json:"department_id,omitempty"`
	DepartmentName *string `json:"department_name,omitempty"`
}

// AuthService owns registration, login, and bearer-credential resolution.
type AuthService interface {
	// Register creates an account. A duplicate email or unknown department id
	// is a bad request.
	Register(ctx context.Context, in RegisterInput) (*UserProfile, error)

	// Login verifies the credentials and returns a signed access token.
	Login(ctx context.Context, email, password string) (string, error)

	// Resolve verifies a bearer token and loads the caller identity from the
	// user store, so a department change takes effect on the next request.
	Resolve(ctx context.Context, token string) (*auth.Identity, error)

	// Profile returns the account projection for an authenticated user.
	Profile(ctx context.Context, userID int64) (*UserProfile, error)
}

type authService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	hasher      *auth.PasswordHasher
	tokens      *auth.TokenManager
}

// NewAuthService constructs a new AuthService.
func NewAuthService(
	users repository.UserRepository,
	departments repository.DepartmentRepository,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenManager,
) AuthService {
	return &authService{
		users:       users,
		departments: departments,
		hasher:      hasher,
		tokens:      tokens,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*UserProfile, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", ErrBadRequest)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrBadRequest)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var department *model.Department
	if in.DepartmentID != nil {
		d, err := s.departments.FindByID(ctx, *in.DepartmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: invalid department_id", ErrBadRequest)
			}
			return nil, err
		}
		department = d
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		DepartmentID: in.DepartmentID,
		Role:         in.Role,
	})
	if err != nil {
		return nil, err
	}

	profile := &UserProfile{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
	}
	if department != nil {
		profile.DepartmentName = &department.Name
	}
	return profile, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: invalid email or password", ErrBadRequest)
		}
		return "", err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", fmt.Errorf("%w: invalid email or password", ErrBadRequest)
	}

	var departmentName string
	if user.DepartmentID != nil {
		if d, err := s.departments.FindByID(ctx, *user.DepartmentID); err == nil {
			departmentName = d.Name
		}
	}

	role := "employee"
	if user.Role != nil && *user.Role != "" {
		role = *user.Role
	}

	return s.tokens.Issue(auth.Identity{
		UserID:       user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         role,
		DepartmentID: user.DepartmentID,
	}, departmentName)
}

func (s *authService) Resolve(ctx context.Context, token string) (*auth.Identity, error) {
	claimed, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claimed.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}

	role := ""
	if user.Role != nil {
		role = *user.Role
	}
	return &auth.Identity{
		UserID:       user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         role,
		DepartmentID: user.DepartmentID,
	}, nil
}

func (s *authService) Profile(ctx context.Context, userID int64) (*UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}

	profile := &UserProfile{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
	}
	if user.DepartmentID != nil {
		if d, err := s.departments.FindByID(ctx, *user.DepartmentID); err == nil {
			profile.DepartmentName = &d.Name
		}
	}
	return profile, nil
}
