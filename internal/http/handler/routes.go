package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"docrepo/internal/http/middleware"
	"docrepo/internal/repository"
	"docrepo/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// stay free of business logic; everything below the parse/respond boundary
// lives in the services.
func RegisterRoutes(
	app *fiber.App,
	db *sql.DB,
	authSvc service.AuthService,
	docSvc service.DocumentService,
	tags repository.TagRepository,
	departments repository.DepartmentRepository,
) {
	// Health endpoint: checks DB connectivity only
	app.Get("/health", HealthCheck(db))

	// Simple liveness probe
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", Register(authSvc))
	authGroup.Post("/login", Login(authSvc))
	authGroup.Get("/me", middleware.RequireAuth(authSvc), Me(authSvc))

	authed := api.Group("", middleware.RequireAuth(authSvc))

	authed.Get("/departments", ListDepartments(departments))
	authed.Get("/tags", ListTags(tags))

	authed.Get("/users/me/documents", MyDocuments(docSvc))

	docs := authed.Group("/documents")
	docs.Post("/upload", UploadDocument(docSvc))
	docs.Get("", ListDocuments(docSvc))
	docs.Get("/search", SearchDocuments(docSvc))
	docs.Get("/:id", GetDocument(docSvc))
	docs.Put("/:id", UpdateDocument(docSvc))
	docs.Get("/:id/versions", ListDocumentVersions(docSvc))
	docs.Get("/:id/download", DownloadDocument(docSvc))
	docs.Post("/:id/version", AddDocumentVersion(docSvc))
}

// HealthCheck reports readiness based on database connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200 while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
