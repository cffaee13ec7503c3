package mocks

import (
	"context"

	"docrepo/internal/model"
	"docrepo/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) CreateWithFirstVersion(ctx context.Context, doc *model.Document, build repository.VersionBuilder) (*model.Document, *model.DocumentVersion, error) {
	args := m.Called(ctx, doc, build)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Document), args.Get(1).(*model.DocumentVersion), args.Error(2)
}

func (m *MockDocumentRepository) AddVersion(ctx context.Context, documentID int64, build repository.VersionBuilder) (*model.DocumentVersion, error) {
	args := m.Called(ctx, documentID, build)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentVersion), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id int64) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListAccessible(ctx context.Context, departmentID int64) ([]model.Document, error) {
	args := m.Called(ctx, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.Document, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) Search(ctx context.Context, departmentID int64, f repository.SearchFilter) ([]model.Document, error) {
	args := m.Called(ctx, departmentID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListVersions(ctx context.Context, documentID int64) ([]model.DocumentVersion, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentVersion), args.Error(1)
}

func (m *MockDocumentRepository) FindVersion(ctx context.Context, documentID int64, versionNumber int) (*model.DocumentVersion, error) {
	args := m.Called(ctx, documentID, versionNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentVersion), args.Error(1)
}

func (m *MockDocumentRepository) UpdateMetadata(ctx context.Context, id int64, title, description *string) error {
	args := m.Called(ctx, id, title, description)
	return args.Error(0)
}
