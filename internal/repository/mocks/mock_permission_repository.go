package mocks

import (
	"context"

	"docrepo/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) Grant(ctx context.Context, documentID int64, departmentIDs []int64) error {
	args := m.Called(ctx, documentID, departmentIDs)
	return args.Error(0)
}

func (m *MockPermissionRepository) Replace(ctx context.Context, documentID int64, departmentIDs []int64) error {
	args := m.Called(ctx, documentID, departmentIDs)
	return args.Error(0)
}

func (m *MockPermissionRepository) CanView(ctx context.Context, documentID, departmentID int64) (bool, error) {
	args := m.Called(ctx, documentID, departmentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPermissionRepository) CanDownload(ctx context.Context, documentID, departmentID int64) (bool, error) {
	args := m.Called(ctx, documentID, departmentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPermissionRepository) ListForDocument(ctx context.Context, documentID int64) ([]model.DocumentPermission, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentPermission), args.Error(1)
}
