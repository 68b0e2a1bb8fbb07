package auth

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-service/internal/config"
	"github.com/spec-kit/repair-service/internal/domain"
	apperrors "github.com/spec-kit/repair-service/pkg/util/errorutil"
)

// ScopeResolver derives the caller's access scope from a request. Swapping
// the implementation changes how identity is established without touching
// the lifecycle code.
type ScopeResolver interface {
	ResolveOwner(c *fiber.Ctx) (domain.Scope, error)
	ResolveAdmin(c *fiber.Ctx) (domain.Scope, error)
}

// HeaderScopeResolver trusts caller-supplied identity headers. The headers
// are not signed.
type HeaderScopeResolver struct {
	OwnerHeader    string
	AdminHeader    string
	AdminAssertion string
}

// NewHeaderScopeResolver builds a resolver from config, falling back to the
// X-UID / X-Admin: 1 convention.
func NewHeaderScopeResolver(cfg config.AuthConfig) *HeaderScopeResolver {
	r := &HeaderScopeResolver{
		OwnerHeader:    cfg.OwnerHeader,
		AdminHeader:    cfg.AdminHeader,
		AdminAssertion: cfg.AdminAssert,
	}
	if r.OwnerHeader == "" {
		r.OwnerHeader = "X-UID"
	}
	if r.AdminHeader == "" {
		r.AdminHeader = "X-Admin"
	}
	if r.AdminAssertion == "" {
		r.AdminAssertion = "1"
	}
	return r
}

// ResolveOwner requires a positive numeric caller id.
func (r *HeaderScopeResolver) ResolveOwner(c *fiber.Ctx) (domain.Scope, error) {
	raw := strings.TrimSpace(c.Get(r.OwnerHeader))
	if raw == "" {
		return domain.Scope{}, apperrors.NewUnauthorized("Unauthorized")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return domain.Scope{}, apperrors.NewUnauthorized("Unauthorized")
	}
	return domain.OwnerScope(id), nil
}

// ResolveAdmin requires the admin assertion header to carry the configured value.
func (r *HeaderScopeResolver) ResolveAdmin(c *fiber.Ctx) (domain.Scope, error) {
	if strings.TrimSpace(c.Get(r.AdminHeader)) != r.AdminAssertion {
		return domain.Scope{}, apperrors.NewForbidden("Forbidden")
	}
	return domain.AdminScope(), nil
}
