package mocks

import (
	"context"

	"docrepo/internal/auth"
	"docrepo/internal/model"
	"docrepo/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) CreateWithFirstVersion(ctx context.Context, caller *auth.Identity, in service.CreateDocumentInput) (*service.DocumentSummary, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentSummary), args.Error(1)
}

func (m *MockDocumentService) ListAccessible(ctx context.Context, caller *auth.Identity) ([]service.DocumentSummary, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DocumentSummary), args.Error(1)
}

func (m *MockDocumentService) ListOwned(ctx context.Context, caller *auth.Identity) ([]service.DocumentSummary, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DocumentSummary), args.Error(1)
}

func (m *MockDocumentService) Search(ctx context.Context, caller *auth.Identity, in service.SearchInput) ([]service.DocumentSummary, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DocumentSummary), args.Error(1)
}

func (m *MockDocumentService) GetDetail(ctx context.Context, caller *auth.Identity, documentID int64) (*service.DocumentDetail, error) {
	args := m.Called(ctx, caller, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentDetail), args.Error(1)
}

func (m *MockDocumentService) ListVersions(ctx context.Context, caller *auth.Identity, documentID int64) ([]model.DocumentVersion, error) {
	args := m.Called(ctx, caller, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentVersion), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, caller *auth.Identity, documentID int64, selector string) (*service.DownloadResult, error) {
	args := m.Called(ctx, caller, documentID, selector)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DownloadResult), args.Error(1)
}

func (m *MockDocumentService) AddVersion(ctx context.Context, caller *auth.Identity, documentID int64, file service.FileUpload) (*model.DocumentVersion, error) {
	args := m.Called(ctx, caller, documentID, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentVersion), args.Error(1)
}

func (m *MockDocumentService) ReplaceMetadata(ctx context.Context, caller *auth.Identity, documentID int64, in service.ReplaceMetadataInput) (*service.DocumentDetail, error) {
	args := m.Called(ctx, caller, documentID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentDetail), args.Error(1)
}
