package dto

import (
	"time"

	"github.com/spec-kit/repair-service/internal/domain"
)

// CreateRequestPayload is the body of POST /api/requests.
type CreateRequestPayload struct {
	ServiceType        *string `json:"serviceType"`
	ContactPhone       string  `json:"contactPhone"`
	DeviceModel        *string `json:"deviceModel"`
	ProblemDescription *string `json:"problemDescription"`
	Status             *string `json:"status"`
}

// UpdateRequestPayload is the owner patch. Absent keys are left untouched.
type UpdateRequestPayload struct {
	ServiceType        domain.Optional[string] `json:"serviceType"`
	ContactPhone       domain.Optional[string] `json:"contactPhone"`
	DeviceModel        domain.Optional[string] `json:"deviceModel"`
	ProblemDescription domain.Optional[string] `json:"problemDescription"`
	Status             domain.Optional[string] `json:"status"`
}

// Patch converts the payload into a domain patch.
func (p UpdateRequestPayload) Patch() domain.RequestPatch {
	return domain.RequestPatch{
		ServiceType:        p.ServiceType,
		ContactPhone:       p.ContactPhone,
		DeviceModel:        p.DeviceModel,
		ProblemDescription: p.ProblemDescription,
		Status:             p.Status,
	}
}

// AdminUpdateRequestPayload additionally lets an admin reassign or clear the owner.
type AdminUpdateRequestPayload struct {
	UpdateRequestPayload
	UID domain.Optional[int64] `json:"uid"`
}

// Patch converts the payload into a domain patch.
func (p AdminUpdateRequestPayload) Patch() domain.RequestPatch {
	patch := p.UpdateRequestPayload.Patch()
	patch.OwnerID = p.UID
	return patch
}

// RequestResponse is the wire form of a repair request.
type RequestResponse struct {
	ID                 int64     `json:"id"`
	UID                *int64    `json:"uid"`
	ServiceType        *string   `json:"serviceType"`
	ContactPhone       *string   `json:"contactPhone"`
	DeviceModel        *string   `json:"deviceModel"`
	ProblemDescription *string   `json:"problemDescription"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// MutationResponse acknowledges a create, update or delete.
type MutationResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// NewRequestResponse maps a domain request.
func NewRequestResponse(req *domain.Request) RequestResponse {
	return RequestResponse{
		ID:                 req.ID,
		UID:                req.OwnerID,
		ServiceType:        req.ServiceType,
		ContactPhone:       req.ContactPhone,
		DeviceModel:        req.DeviceModel,
		ProblemDescription: req.ProblemDescription,
		Status:             req.Status,
		CreatedAt:          req.CreatedAt,
		UpdatedAt:          req.UpdatedAt,
	}
}

// NewRequestList maps a slice, never returning nil so the body is `[]`.
func NewRequestList(reqs []domain.Request) []RequestResponse {
	items := make([]RequestResponse, 0, len(reqs))
	for i := range reqs {
		items = append(items, NewRequestResponse(&reqs[i]))
	}
	return items
}
