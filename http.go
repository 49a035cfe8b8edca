package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// DefaultContextKey is where verified session claims are stored on the
// request context.
const DefaultContextKey = "auth_claims"

// RoleResolver is the narrow lookup the permission middleware needs.
// The Roles repository satisfies it.
type RoleResolver interface {
	GetByID(ctx context.Context, roleID uuid.UUID) (*Role, error)
}

// RequireAuth verifies the bearer token and stores the claims under
// contextKey. Missing, garbled, and invalid credentials all produce
// the same 401 response.
func RequireAuth(ts TokenService, contextKey string) fiber.Handler {
	if contextKey == "" {
		contextKey = DefaultContextKey
	}

	return func(c *fiber.Ctx) error {
		token, ok := ExtractTokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthenticated(c)
		}

		claims, err := ts.Verify(token)
		if err != nil {
			return unauthenticated(c)
		}

		c.Locals(contextKey, claims)
		return c.Next()
	}
}

// RequirePermission resolves the caller's role and checks the required
// capability. It must run after RequireAuth.
func RequirePermission(required Capability, roles RoleResolver, contextKey string) fiber.Handler {
	if contextKey == "" {
		contextKey = DefaultContextKey
	}

	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c, contextKey)
		if !ok {
			return unauthenticated(c)
		}

		roleID, err := uuid.Parse(claims.RoleID())
		if err != nil {
			return forbidden(c)
		}

		role, err := roles.GetByID(c.UserContext(), roleID)
		if err != nil {
			return forbidden(c)
		}

		if !HasPermission(role, required) {
			return forbidden(c)
		}

		return c.Next()
	}
}

// ClaimsFromContext retrieves the verified session claims stored by
// RequireAuth.
func ClaimsFromContext(c *fiber.Ctx, contextKey string) (*SessionClaims, bool) {
	if contextKey == "" {
		contextKey = DefaultContextKey
	}

	claims, ok := c.Locals(contextKey).(*SessionClaims)
	return claims, ok
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": ErrUnauthenticated.Error(),
	})
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": "insufficient permissions",
	})
}
