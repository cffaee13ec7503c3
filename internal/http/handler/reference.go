package handler

import (
	"github.com/gofiber/fiber/v2"

	"docrepo/internal/repository"
)

// ListDepartments returns all departments ordered by name.
func ListDepartments(departments repository.DepartmentRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := departments.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(items)
	}
}

// ListTags returns all tags ordered by name.
func ListTags(tags repository.TagRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := tags.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(items)
	}
}
