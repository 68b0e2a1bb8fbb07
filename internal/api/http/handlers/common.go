package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-service/internal/auth"
	"github.com/spec-kit/repair-service/internal/domain"
	apperrors "github.com/spec-kit/repair-service/pkg/util/errorutil"
)

// decodeBody parses a JSON body with the app's decoder. An empty body decodes
// to the zero value.
func decodeBody(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := c.App().Config().JSONDecoder(body, v); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func requestID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid request id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func scopeOf(c *fiber.Ctx) (domain.Scope, error) {
	scope, ok := auth.ScopeFromContext(c)
	if !ok {
		return domain.Scope{}, apperrors.NewUnauthorized("Unauthorized")
	}
	return scope, nil
}
