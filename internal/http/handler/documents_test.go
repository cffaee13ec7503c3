package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docrepo/internal/model"
	"docrepo/internal/service"
	serviceMocks "docrepo/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func multipartUpload(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte(content))
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	dept := int64(3)
	caller := testCaller(&dept)

	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents/upload", withIdentity(caller), UploadDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, contentType := multipartUpload(t, map[string]string{
			"title": "Quarterly Report",
			"tags":  "finance, report",
		}, "report.pdf", "pdf bytes")

		expected := &service.DocumentSummary{
			ID:                   7,
			Title:                "Quarterly Report",
			CurrentVersionNumber: 1,
			Tags:                 []string{"finance", "report"},
		}
		mockSvc.On("CreateWithFirstVersion", mock.Anything, caller, mock.MatchedBy(func(in service.CreateDocumentInput) bool {
			return in.Title == "Quarterly Report" &&
				len(in.TagNames) == 2 &&
				in.File.OriginalName == "report.pdf"
		})).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result service.DocumentSummary
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.ID, result.ID)
		assert.Equal(t, 1, result.CurrentVersionNumber)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("malformed department ids", func(t *testing.T) {
		body, contentType := multipartUpload(t, map[string]string{
			"title":                     "Doc",
			"permission_department_ids": "1,two,3",
		}, "doc.txt", "hello")

		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "BAD_REQUEST", res.Error.Code)
	})

	t.Run("service rejects blank title", func(t *testing.T) {
		body, contentType := multipartUpload(t, nil, "doc.txt", "hello")

		mockSvc.On("CreateWithFirstVersion", mock.Anything, caller, mock.Anything).
			Return(nil, fmt.Errorf("%w: title is required", service.ErrBadRequest)).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListDocuments(t *testing.T) {
	dept := int64(3)
	caller := testCaller(&dept)

	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents", withIdentity(caller), ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		items := []service.DocumentSummary{
			{ID: 1, Title: "Handbook", CurrentVersionNumber: 2, Tags: []string{"hr"}, UpdatedAt: time.Now()},
		}
		mockSvc.On("ListAccessible", mock.Anything, caller).Return(items, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []service.DocumentSummary
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result, 1)
		assert.Equal(t, "Handbook", result[0].Title)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("ListAccessible", mock.Anything, caller).Return(nil, errors.New("boom")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestSearchDocuments(t *testing.T) {
	dept := int64(3)
	caller := testCaller(&dept)

	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/search", withIdentity(caller), SearchDocuments(mockSvc))

	t.Run("filters forwarded", func(t *testing.T) {
		mockSvc.On("Search", mock.Anything, caller, mock.MatchedBy(func(in service.SearchInput) bool {
			return in.Title != nil && *in.Title == "report" &&
				len(in.TagNames) == 2 &&
				in.Version != nil && *in.Version == 2
		})).Return([]service.DocumentSummary{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/search?title=report&tags=finance,legal&version=2", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("non-numeric version", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents/search?version=newest", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_VERSION", res.Error.Code)
	})
}

func TestGetDocument(t *testing.T) {
	dept := int64(3)
	caller := testCaller(&dept)

	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id", withIdentity(caller), GetDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		detail := &service.DocumentDetail{
			ID:                   5,
			Title:                "Handbook",
			CurrentVersionNumber: 3,
			Tags:                 []string{"hr"},
			CanUploadVersion:     true,
		}
		mockSvc.On("GetDetail", mock.Anything, caller, int64(5)).Return(detail, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/5", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.DocumentDetail
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, int64(5), result.ID)
		assert.True(t, result.CanUploadVersion)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents/abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("GetDetail", mock.Anything, caller, int64(404)).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/404", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("forbidden", func(t *testing.T) {
		mockSvc.On("GetDetail", mock.Anything, caller, int64(9)).Return(nil, service.ErrForbidden).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/9", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FORBIDDEN", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestUpdateDocument(t *testing.T) {
	dept := int64(3)
	caller := testCaller(&dept)

	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Put("/documents/:id", withIdentity(caller), UpdateDocument(mockSvc))

	t.Run("partial update leaves omitted fields alone", func(t *testing.T) {
		detail := &service.DocumentDetail{ID: 5, Title: "Renamed"}
		mockSvc.On("ReplaceMetadata", mock.Anything, caller, int64(5), mock.MatchedBy(func(in service.ReplaceMetadataInput) bool {
			return in.Title != nil && *in.Title == "Renamed" &&
				in.Description == nil && in.TagNames == nil && in.DepartmentIDs == nil
		})).Return(detail, nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/documents/5", strings.NewReader(`{"title":"Renamed"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty tag list clears tags", func(t *testing.T) {
		detail := &service.DocumentDetail{ID: 5, Title: "Handbook", Tags: []string{}}
		mockSvc.On("ReplaceMetadata", mock.Anything, caller, int64(5), mock.MatchedBy(func(in service.ReplaceMetadataInput) bool {
			return in.TagNames != nil && len(*in.TagNames) == 0
		})).Return(detail, nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/documents/5", strings.NewReader(`{"tags":[]}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		mockSvc.On("ReplaceMetadata", mock.Anything, caller, int64(6), mock.Anything).
			Return(nil, service.ErrForbidden).Once()

		req := httptest.NewRequest(http.MethodPut, "/documents/6", strings.NewReader(`{"title":"X"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListDocumentVersions(t *testing.T) {
	dept := int64(3)
	caller := testCaller(&dept)

	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id/versions", withIdentity(caller), ListDocumentVersions(mockSvc))

	versions := []model.DocumentVersion{
		{ID: 12, DocumentID: 5, VersionNumber: 2, MimeType: "application/pdf"},
		{ID: 11, DocumentID: 5, VersionNumber: 1, MimeType: "application/pdf"},
	}
	mockSvc.On("ListVersions", mock.Anything, caller, int64(5)).Return(versions, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/documents/5/versions", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result []model.DocumentVersion
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Len(t, result, 2)
	assert.Equal(t, 2, result[0].VersionNumber)
	mockSvc.AssertExpectations(t)
}

func TestDownloadDocument(t *testing.T) {
	dept := int64(3)
	caller := testCaller(&dept)

	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id/download", withIdentity(caller), DownloadDocument(mockSvc))

	t.Run("streams content with headers", func(t *testing.T) {
		content := "file payload"
		res := &service.DownloadResult{
			Body:     io.NopCloser(strings.NewReader(content)),
			Filename: "v2_ab12cd34_report.pdf",
			MimeType: "application/pdf",
			Size:     int64(len(content)),
		}
		mockSvc.On("Download", mock.Anything, caller, int64(5), "2").Return(res, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/5/download?version=2", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
		assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, content, string(body))
		mockSvc.AssertExpectations(t)
	})

	t.Run("defaults to latest selector", func(t *testing.T) {
		res := &service.DownloadResult{
			Body:     io.NopCloser(strings.NewReader("x")),
			Filename: "f",
			MimeType: "application/octet-stream",
			Size:     1,
		}
		mockSvc.On("Download", mock.Anything, caller, int64(5), "").Return(res, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/5/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("download forbidden", func(t *testing.T) {
		mockSvc.On("Download", mock.Anything, caller, int64(6), "").Return(nil, service.ErrForbidden).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/6/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestAddDocumentVersion(t *testing.T) {
	dept := int64(3)
	caller := testCaller(&dept)

	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents/:id/version", withIdentity(caller), AddDocumentVersion(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, contentType := multipartUpload(t, nil, "report_v2.pdf", "new bytes")

		v := &model.DocumentVersion{ID: 20, DocumentID: 5, VersionNumber: 2}
		mockSvc.On("AddVersion", mock.Anything, caller, int64(5), mock.MatchedBy(func(f service.FileUpload) bool {
			return f.OriginalName == "report_v2.pdf"
		})).Return(v, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/5/version", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.DocumentVersion
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, 2, result.VersionNumber)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/documents/5/version", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})
}
