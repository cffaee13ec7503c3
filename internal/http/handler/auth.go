package handler

import (
	"github.com/gofiber/fiber/v2"

	"docrepo/internal/http/middleware"
	"docrepo/internal/service"
)

type registerRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	DepartmentID *int64  `json:"department_id"`
	Role         *string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates a new user account.
func Register(authSvc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		profile, err := authSvc.Register(c.UserContext(), service.RegisterInput{
			Name:         req.Name,
			Email:        req.Email,
			Password:     req.Password,
			DepartmentID: req.DepartmentID,
			Role:         req.Role,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(profile)
	}
}

// Login verifies credentials and issues an access token.
func Login(authSvc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		token, err := authSvc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(tokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}

// Me returns the authenticated caller's profile.
func Me(authSvc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.IdentityFromCtx(c)
		if caller == nil {
			return fiber.ErrUnauthorized
		}

		profile, err := authSvc.Profile(c.UserContext(), caller.UserID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(profile)
	}
}
