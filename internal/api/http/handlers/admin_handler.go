package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-service/internal/api/dto"
	"github.com/spec-kit/repair-service/internal/service"
	apperrors "github.com/spec-kit/repair-service/pkg/util/errorutil"
)

// AdminHandler serves the unrestricted request and user endpoints.
type AdminHandler struct {
	requests *service.RequestService
	auth     *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(requestService *service.RequestService, authService *service.AuthService) *AdminHandler {
	return &AdminHandler{requests: requestService, auth: authService}
}

// ListRequests GET /api/admin/requests?uid=.
func (h *AdminHandler) ListRequests(c *fiber.Ctx) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	filter := service.RequestListFilter{}
	if raw := strings.TrimSpace(c.Query("uid")); raw != "" {
		uid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("uid must be an integer", map[string]any{"uid": raw})
		}
		filter.OwnerID = &uid
	}
	reqs, err := h.requests.List(c.UserContext(), scope, filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewRequestList(reqs))
}

// UpdateRequest PUT /api/admin/requests/:id.
func (h *AdminHandler) UpdateRequest(c *fiber.Ctx) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, err := requestID(c)
	if err != nil {
		return err
	}
	var payload dto.AdminUpdateRequestPayload
	if err := decodeBody(c, &payload); err != nil {
		return err
	}
	out, err := h.requests.Update(c.UserContext(), scope, id, payload.Patch())
	if err != nil {
		return err
	}
	return c.JSON(updateResponse(out))
}

// DeleteRequest DELETE /api/admin/requests/:id.
func (h *AdminHandler) DeleteRequest(c *fiber.Ctx) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, err := requestID(c)
	if err != nil {
		return err
	}
	if err := h.requests.Delete(c.UserContext(), scope, id); err != nil {
		return err
	}
	return c.JSON(dto.MutationResponse{ID: id, Message: "deleted"})
}

// ListUsers GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserList(users))
}
