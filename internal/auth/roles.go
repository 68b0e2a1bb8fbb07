package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-service/internal/domain"
)

const scopeKey = "auth_scope"

// RequireOwner resolves an owner scope or fails with 401.
func RequireOwner(resolver ScopeResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := resolver.ResolveOwner(c)
		if err != nil {
			return err
		}
		c.Locals(scopeKey, scope)
		return c.Next()
	}
}

// RequireAdmin resolves an admin scope or fails with 403.
func RequireAdmin(resolver ScopeResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := resolver.ResolveAdmin(c)
		if err != nil {
			return err
		}
		c.Locals(scopeKey, scope)
		return c.Next()
	}
}

// ScopeFromContext retrieves the scope stored by RequireOwner/RequireAdmin.
func ScopeFromContext(c *fiber.Ctx) (domain.Scope, bool) {
	scope, ok := c.Locals(scopeKey).(domain.Scope)
	return scope, ok
}
