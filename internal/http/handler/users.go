package handler

import (
	"github.com/gofiber/fiber/v2"

	"docrepo/internal/http/middleware"
	"docrepo/internal/service"
)

// MyDocuments lists the caller's own documents, keyed on ownership alone and
// unfiltered by department grants.
func MyDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.IdentityFromCtx(c)
		if caller == nil {
			return fiber.ErrUnauthorized
		}

		items, err := docSvc.ListOwned(c.UserContext(), caller)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}
