package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-service/internal/api/dto"
	"github.com/spec-kit/repair-service/internal/service"
)

// RequestsHandler serves the owner-scoped request endpoints.
type RequestsHandler struct {
	service *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{service: requestService}
}

// List GET /api/requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	reqs, err := h.service.List(c.UserContext(), scope, service.RequestListFilter{})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewRequestList(reqs))
}

// Get GET /api/requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, err := requestID(c)
	if err != nil {
		return err
	}
	req, err := h.service.Get(c.UserContext(), scope, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewRequestResponse(req))
}

// Create POST /api/requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	var payload dto.CreateRequestPayload
	if err := decodeBody(c, &payload); err != nil {
		return err
	}
	req, err := h.service.Create(c.UserContext(), scope.UserID, service.RequestCreateInput{
		ServiceType:        payload.ServiceType,
		ContactPhone:       payload.ContactPhone,
		DeviceModel:        payload.DeviceModel,
		ProblemDescription: payload.ProblemDescription,
		Status:             payload.Status,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.MutationResponse{ID: req.ID, Message: "created"})
}

// Update PUT /api/requests/:id. Keys the owner may not change, such as uid,
// are ignored.
func (h *RequestsHandler) Update(c *fiber.Ctx) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, err := requestID(c)
	if err != nil {
		return err
	}
	var payload dto.UpdateRequestPayload
	if err := decodeBody(c, &payload); err != nil {
		return err
	}
	out, err := h.service.Update(c.UserContext(), scope, id, payload.Patch())
	if err != nil {
		return err
	}
	return c.JSON(updateResponse(out))
}

// Delete DELETE /api/requests/:id.
func (h *RequestsHandler) Delete(c *fiber.Ctx) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, err := requestID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), scope, id); err != nil {
		return err
	}
	return c.JSON(dto.MutationResponse{ID: id, Message: "deleted"})
}

func updateResponse(out service.UpdateOutcome) dto.MutationResponse {
	if !out.Changed {
		return dto.MutationResponse{ID: out.ID, Message: "no changes"}
	}
	return dto.MutationResponse{ID: out.ID, Message: "updated"}
}
