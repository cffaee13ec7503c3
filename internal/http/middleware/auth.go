package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docrepo/internal/auth"
)

// IdentityLocalKey is the key under which the resolved caller identity is
// stored in Fiber's context locals.
const IdentityLocalKey = "caller_identity"

// IdentityResolver turns a bearer credential into a caller identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*auth.Identity, error)
}

// RequireAuth extracts the Bearer token from the Authorization header,
// resolves it to a caller identity, and stores the identity in locals.
// Requests without a valid credential are rejected with 401 before any
// handler runs.
func RequireAuth(resolver IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		identity, err := resolver.Resolve(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(IdentityLocalKey, identity)
		return c.Next()
	}
}

// IdentityFromCtx returns the identity stored by RequireAuth, or nil.
func IdentityFromCtx(c *fiber.Ctx) *auth.Identity {
	if v := c.Locals(IdentityLocalKey); v != nil {
		if id, ok := v.(*auth.Identity); ok {
			return id
		}
	}
	return nil
}
