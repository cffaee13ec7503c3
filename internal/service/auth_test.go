package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"docrepo/internal/auth"
	"docrepo/internal/model"
	repoMocks "docrepo/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthServiceFixture() (*repoMocks.MockUserRepository, *repoMocks.MockDepartmentRepository, AuthService) {
	users := new(repoMocks.MockUserRepository)
	departments := new(repoMocks.MockDepartmentRepository)
	// bcrypt.MinCost keeps the hashing rounds cheap under test
	hasher := auth.NewPasswordHasher(4)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return users, departments, NewAuthService(users, departments, hasher, tokens)
}

func TestAuthService_Register(t *testing.T) {
	t.Run("success with department", func(t *testing.T) {
		users, departments, svc := newAuthServiceFixture()

		users.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, sql.ErrNoRows).Once()
		departments.On("FindByID", mock.Anything, int64(2)).
			Return(&model.Department{ID: 2, Name: "Finance"}, nil).Once()
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "alice@example.com" && u.PasswordHash != "" && u.PasswordHash != "secret"
		})).Return(&model.User{ID: 1, Name: "Alice", Email: "alice@example.com", DepartmentID: ptrInt64(2)}, nil).Once()

		profile, err := svc.Register(context.Background(), RegisterInput{
			Name:         "Alice",
			Email:        "alice@example.com",
			Password:     "secret",
			DepartmentID: ptrInt64(2),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), profile.ID)
		require.NotNil(t, profile.DepartmentName)
		assert.Equal(t, "Finance", *profile.DepartmentName)
		users.AssertExpectations(t)
		departments.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users, _, svc := newAuthServiceFixture()

		users.On("FindByEmail", mock.Anything, "alice@example.com").
			Return(&model.User{ID: 1, Email: "alice@example.com"}, nil).Once()

		_, err := svc.Register(context.Background(), RegisterInput{
			Name:     "Alice",
			Email:    "alice@example.com",
			Password: "secret",
		})

		assert.ErrorIs(t, err, ErrBadRequest)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown department", func(t *testing.T) {
		users, departments, svc := newAuthServiceFixture()

		users.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, sql.ErrNoRows).Once()
		departments.On("FindByID", mock.Anything, int64(77)).Return(nil, sql.ErrNoRows).Once()

		_, err := svc.Register(context.Background(), RegisterInput{
			Name:         "Alice",
			Email:        "alice@example.com",
			Password:     "secret",
			DepartmentID: ptrInt64(77),
		})

		assert.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, _, svc := newAuthServiceFixture()

		_, err := svc.Register(context.Background(), RegisterInput{Name: "Alice"})

		assert.ErrorIs(t, err, ErrBadRequest)
	})
}

func TestAuthService_LoginAndResolve(t *testing.T) {
	users, departments, svc := newAuthServiceFixture()

	hasher := auth.NewPasswordHasher(4)
	hash, err := hasher.Hash("secret")
	require.NoError(t, err)

	stored := &model.User{
		ID:           1,
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		DepartmentID: ptrInt64(2),
	}

	t.Run("login issues a resolvable token", func(t *testing.T) {
		users.On("FindByEmail", mock.Anything, "alice@example.com").Return(stored, nil).Once()
		departments.On("FindByID", mock.Anything, int64(2)).
			Return(&model.Department{ID: 2, Name: "Finance"}, nil).Once()

		token, err := svc.Login(context.Background(), "alice@example.com", "secret")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		// Resolve reloads the user so later department changes take effect.
		users.On("FindByID", mock.Anything, int64(1)).Return(stored, nil).Once()

		identity, err := svc.Resolve(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, int64(1), identity.UserID)
		assert.Equal(t, "alice@example.com", identity.Email)
		require.NotNil(t, identity.DepartmentID)
		assert.Equal(t, int64(2), *identity.DepartmentID)
	})

	t.Run("wrong password", func(t *testing.T) {
		users.On("FindByEmail", mock.Anything, "alice@example.com").Return(stored, nil).Once()

		_, err := svc.Login(context.Background(), "alice@example.com", "nope")

		assert.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("unknown email looks like bad credentials", func(t *testing.T) {
		users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, sql.ErrNoRows).Once()

		_, err := svc.Login(context.Background(), "ghost@example.com", "secret")

		assert.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Resolve(context.Background(), "not.a.jwt")

		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		users.On("FindByEmail", mock.Anything, "alice@example.com").Return(stored, nil).Once()
		departments.On("FindByID", mock.Anything, int64(2)).
			Return(&model.Department{ID: 2, Name: "Finance"}, nil).Once()

		token, err := svc.Login(context.Background(), "alice@example.com", "secret")
		require.NoError(t, err)

		users.On("FindByID", mock.Anything, int64(1)).Return(nil, sql.ErrNoRows).Once()

		_, err = svc.Resolve(context.Background(), token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestAuthService_Profile(t *testing.T) {
	t.Run("with department name", func(t *testing.T) {
		users, departments, svc := newAuthServiceFixture()

		users.On("FindByID", mock.Anything, int64(1)).
			Return(&model.User{ID: 1, Name: "Alice", Email: "alice@example.com", DepartmentID: ptrInt64(2)}, nil).Once()
		departments.On("FindByID", mock.Anything, int64(2)).
			Return(&model.Department{ID: 2, Name: "Finance"}, nil).Once()

		profile, err := svc.Profile(context.Background(), 1)

		require.NoError(t, err)
		require.NotNil(t, profile.DepartmentName)
		assert.Equal(t, "Finance", *profile.DepartmentName)
	})

	t.Run("unknown user", func(t *testing.T) {
		users, _, svc := newAuthServiceFixture()

		users.On("FindByID", mock.Anything, int64(404)).Return(nil, sql.ErrNoRows).Once()

		_, err := svc.Profile(context.Background(), 404)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}
