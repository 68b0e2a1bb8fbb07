package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-service/internal/domain"
	"github.com/spec-kit/repair-service/internal/events"
	"github.com/spec-kit/repair-service/internal/repository"
	apperrors "github.com/spec-kit/repair-service/pkg/util/errorutil"
)

// RequestService coordinates the repair request lifecycle.
type RequestService struct {
	requests  repository.RequestRepository
	publisher events.Publisher
	notifier  Notifier
	completed string
	logger    *zap.Logger
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestRepo     repository.RequestRepository
	Publisher       events.Publisher
	Notifier        Notifier
	CompletedStatus string
	Logger          *zap.Logger
}

// RequestCreateInput describes a new request. A nil Status lets the store
// choose the initial status; a blank one is rejected.
type RequestCreateInput struct {
	ServiceType        *string
	ContactPhone       string
	DeviceModel        *string
	ProblemDescription *string
	Status             *string
}

// RequestListFilter narrows admin listings. Owner listings ignore it.
type RequestListFilter struct {
	OwnerID *int64
}

// UpdateOutcome reports whether an update issued a write. It deliberately
// does not say whether a row matched.
type UpdateOutcome struct {
	ID      int64
	Changed bool
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	svc := &RequestService{
		requests:  deps.RequestRepo,
		publisher: deps.Publisher,
		notifier:  deps.Notifier,
		completed: deps.CompletedStatus,
		logger:    deps.Logger,
	}
	if svc.completed == "" {
		svc.completed = "completed"
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// Create stores a request owned by ownerID and announces it to live streams.
func (s *RequestService) Create(ctx context.Context, ownerID int64, input RequestCreateInput) (*domain.Request, error) {
	phone, ok := domain.NormalizeContactPhone(input.ContactPhone)
	if !ok {
		return nil, invalidPhone()
	}

	req := &domain.Request{
		OwnerID:            &ownerID,
		ServiceType:        input.ServiceType,
		ContactPhone:       &phone,
		DeviceModel:        input.DeviceModel,
		ProblemDescription: input.ProblemDescription,
	}
	if input.Status != nil {
		if strings.TrimSpace(*input.Status) == "" {
			return nil, emptyStatus()
		}
		req.Status = *input.Status
	}

	if err := s.requests.Create(ctx, req); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, apperrors.NewUnauthorized("unknown user")
		}
		return nil, storeError(err)
	}

	s.publish(ctx, events.Event{
		Type:        events.EventRequestCreated,
		ID:          req.ID,
		UID:         req.OwnerID,
		ServiceType: req.ServiceType,
		Status:      req.Status,
	})
	return req, nil
}

// Update applies the present patch fields within the caller's scope. An
// owner-scoped update of a row the caller does not own succeeds without
// touching anything.
func (s *RequestService) Update(ctx context.Context, scope domain.Scope, id int64, patch domain.RequestPatch) (UpdateOutcome, error) {
	if !scope.IsAdmin() {
		patch.OwnerID = domain.Optional[int64]{}
	}
	if patch.Empty() {
		return UpdateOutcome{ID: id}, nil
	}
	if err := s.validatePatch(&patch); err != nil {
		return UpdateOutcome{}, err
	}

	res, err := s.requests.Update(ctx, scope, id, patch)
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return UpdateOutcome{}, apperrors.NewValidationError("owner does not exist", map[string]any{"field": "uid"})
		}
		return UpdateOutcome{}, storeError(err)
	}
	if !res.Matched {
		s.logger.Debug("update matched no request", zap.Int64("request_id", id), zap.String("scope", string(scope.Kind)))
	}

	if res.Matched && s.enteredCompleted(res) {
		s.publish(ctx, events.Event{
			Type:   events.EventRequestStatus,
			ID:     id,
			UID:    res.OwnerID,
			Status: res.Status,
		})
		if s.notifier != nil {
			s.notifier.RequestCompleted(ctx, id, res.OwnerID)
		}
	}
	return UpdateOutcome{ID: id, Changed: true}, nil
}

// Delete removes the request within the caller's scope. Deleting a missing
// or foreign request succeeds.
func (s *RequestService) Delete(ctx context.Context, scope domain.Scope, id int64) error {
	n, err := s.requests.Delete(ctx, scope, id)
	if err != nil {
		return storeError(err)
	}
	if n == 0 {
		s.logger.Debug("delete matched no request", zap.Int64("request_id", id), zap.String("scope", string(scope.Kind)))
	}
	return nil
}

// Get fetches one request owned by the caller. Admins list instead of
// fetching single rows.
func (s *RequestService) Get(ctx context.Context, scope domain.Scope, id int64) (*domain.Request, error) {
	if scope.IsAdmin() {
		return nil, apperrors.NewForbidden("single request lookup requires an owner")
	}
	req, err := s.requests.GetByID(ctx, scope, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"id": id})
		}
		return nil, storeError(err)
	}
	return req, nil
}

// List returns requests visible to the caller, newest first.
func (s *RequestService) List(ctx context.Context, scope domain.Scope, filter RequestListFilter) ([]domain.Request, error) {
	repoFilter := repository.RequestFilter{OwnerID: scope.OwnerFilter()}
	if scope.IsAdmin() {
		repoFilter.OwnerID = filter.OwnerID
	}
	requests, err := s.requests.List(ctx, repoFilter)
	if err != nil {
		return nil, storeError(err)
	}
	return requests, nil
}

func (s *RequestService) validatePatch(patch *domain.RequestPatch) error {
	if patch.ContactPhone.Set {
		if patch.ContactPhone.Null {
			return invalidPhone()
		}
		phone, ok := domain.NormalizeContactPhone(patch.ContactPhone.Value)
		if !ok {
			return invalidPhone()
		}
		patch.ContactPhone.Value = phone
	}
	if patch.Status.Set && (patch.Status.Null || strings.TrimSpace(patch.Status.Value) == "") {
		return emptyStatus()
	}
	if patch.OwnerID.Set && !patch.OwnerID.Null && patch.OwnerID.Value <= 0 {
		return apperrors.NewValidationError("uid must be a positive integer", map[string]any{"field": "uid"})
	}
	return nil
}

// enteredCompleted gates the notification on an actual transition.
func (s *RequestService) enteredCompleted(res repository.RequestUpdateResult) bool {
	return res.Status == s.completed && res.PreviousStatus != s.completed
}

func (s *RequestService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, event)
}

func invalidPhone() error {
	return apperrors.NewValidationError("Invalid phone number", map[string]any{"field": "contactPhone"})
}

func emptyStatus() error {
	return apperrors.NewValidationError("status must not be empty", map[string]any{"field": "status"})
}

func storeError(err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewStoreError(err)
}
