package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docrepo/internal/http/middleware"
	"docrepo/internal/service"
)

type updateDocumentRequest struct {
	Title                   *string   `json:"title"`
	Description             *string   `json:"description"`
	Tags                    *[]string `json:"tags"`
	PermissionDepartmentIDs *[]int64  `json:"permission_department_ids"`
}

// UploadDocument creates a document with its first version from a
// multipart/form-data request (fields: title, description, tags,
// permission_department_ids, file).
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.IdentityFromCtx(c)
		if caller == nil {
			return fiber.ErrUnauthorized
		}

		departmentIDs, err := parseIDCSV(c.FormValue("permission_department_ids"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "permission_department_ids must be comma-separated integers")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		var description *string
		if d := c.FormValue("description"); d != "" {
			description = &d
		}

		summary, err := docSvc.CreateWithFirstVersion(c.UserContext(), caller, service.CreateDocumentInput{
			Title:         c.FormValue("title"),
			Description:   description,
			TagNames:      splitCSV(c.FormValue("tags")),
			DepartmentIDs: departmentIDs,
			File: service.FileUpload{
				Reader:       f,
				OriginalName: fh.Filename,
				ContentType:  fh.Header.Get("Content-Type"),
				Size:         fh.Size,
			},
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(summary)
	}
}

// ListDocuments returns the documents visible to the caller's department.
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.IdentityFromCtx(c)
		if caller == nil {
			return fiber.ErrUnauthorized
		}

		items, err := docSvc.ListAccessible(c.UserContext(), caller)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// SearchDocuments narrows the accessible listing by title, description,
// tags (CSV, OR semantics), and exact current version.
func SearchDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.IdentityFromCtx(c)
		if caller == nil {
			return fiber.ErrUnauthorized
		}

		var in service.SearchInput
		if v := c.Query("title"); v != "" {
			in.Title = &v
		}
		if v := c.Query("description"); v != "" {
			in.Description = &v
		}
		in.TagNames = splitCSV(c.Query("tags"))
		if v := c.Query("version"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_VERSION", "version must be an integer")
			}
			in.Version = &n
		}

		items, err := docSvc.Search(c.UserContext(), caller, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// GetDocument returns one document's detail with capability flags.
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.IdentityFromCtx(c)
		if caller == nil {
			return fiber.ErrUnauthorized
		}

		id, err := parseDocumentID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		detail, err := docSvc.GetDetail(c.UserContext(), caller, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(detail)
	}
}

// UpdateDocument replaces metadata: omitted fields stay untouched, empty
// tag/department lists clear the association. Owner only.
func UpdateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.IdentityFromCtx(c)
		if caller == nil {
			return fiber.ErrUnauthorized
		}

		id, err := parseDocumentID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req updateDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		detail, err := docSvc.ReplaceMetadata(c.UserContext(), caller, id, service.ReplaceMetadataInput{
			Title:         req.Title,
			Description:   req.Description,
			TagNames:      req.Tags,
			DepartmentIDs: req.PermissionDepartmentIDs,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(detail)
	}
}

// ListDocumentVersions returns the version history, newest first.
func ListDocumentVersions(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.IdentityFromCtx(c)
		if caller == nil {
			return fiber.ErrUnauthorized
		}

		id, err := parseDocumentID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		versions, err := docSvc.ListVersions(c.UserContext(), caller, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(versions)
	}
}

// DownloadDocument streams one version's content
// (?version=latest or ?version=N, defaulting to latest).
func DownloadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.IdentityFromCtx(c)
		if caller == nil {
			return fiber.ErrUnauthorized
		}

		id, err := parseDocumentID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		res, err := docSvc.Download(c.UserContext(), caller, id, c.Query("version"))
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(fiber.HeaderContentType, res.MimeType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", res.Filename))
		return c.SendStream(res.Body, int(res.Size))
	}
}

// AddDocumentVersion appends a new version from a multipart upload.
func AddDocumentVersion(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.IdentityFromCtx(c)
		if caller == nil {
			return fiber.ErrUnauthorized
		}

		id, err := parseDocumentID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		v, err := docSvc.AddVersion(c.UserContext(), caller, id, service.FileUpload{
			Reader:       f,
			OriginalName: fh.Filename,
			ContentType:  fh.Header.Get("Content-Type"),
			Size:         fh.Size,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	}
}

func parseDocumentID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// splitCSV parses a comma-separated value list, dropping empty entries.
func splitCSV(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseIDCSV parses a comma-separated id list; any non-integer entry fails.
func parseIDCSV(csv string) ([]int64, error) {
	names := splitCSV(csv)
	out := make([]int64, 0, len(names))
	for _, n := range names {
		id, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
