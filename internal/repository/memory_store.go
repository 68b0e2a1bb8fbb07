package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/repair-service/internal/domain"
)

// MemoryStore keeps users and requests in-process. It backs local runs without
// POSTGRES_DSN and mirrors the Postgres constraints: unique email, owner
// foreign key, status default, newest-first ordering.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[int64]domain.User
	emails   map[string]int64
	requests map[int64]domain.Request
	userSeq  int64
	reqSeq   int64
	now      func() time.Time
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]domain.User),
		emails:   make(map[string]int64),
		requests: make(map[int64]domain.Request),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Requests exposes the store as a RequestRepository.
func (m *MemoryStore) Requests() RequestRepository {
	return memoryRequests{m}
}

// Users exposes the store as a UserRepository.
func (m *MemoryStore) Users() UserRepository {
	return memoryUsers{m}
}

// DeleteUser removes an account and leaves its requests ownerless.
func (m *MemoryStore) DeleteUser(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return
	}
	delete(m.users, id)
	delete(m.emails, user.Email)
	for rid, req := range m.requests {
		if req.OwnerID != nil && *req.OwnerID == id {
			req.OwnerID = nil
			m.requests[rid] = req
		}
	}
}

type memoryRequests struct{ m *MemoryStore }

func (r memoryRequests) Create(_ context.Context, req *domain.Request) error {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOwner(req.OwnerID); err != nil {
		return err
	}
	m.reqSeq++
	stored := *req
	stored.ID = m.reqSeq
	if stored.Status == "" {
		stored.Status = domain.DefaultRequestStatus
	}
	stored.CreatedAt = m.now()
	stored.UpdatedAt = stored.CreatedAt
	m.requests[stored.ID] = stored
	*req = stored
	return nil
}

func (r memoryRequests) Update(_ context.Context, scope domain.Scope, id int64, patch domain.RequestPatch) (RequestUpdateResult, error) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok || !ownedBy(scope, req) {
		return RequestUpdateResult{}, nil
	}
	prev := req.Status
	if patch.ServiceType.Set {
		req.ServiceType = patch.ServiceType.Ptr()
	}
	if patch.ContactPhone.Set {
		req.ContactPhone = patch.ContactPhone.Ptr()
	}
	if patch.DeviceModel.Set {
		req.DeviceModel = patch.DeviceModel.Ptr()
	}
	if patch.ProblemDescription.Set {
		req.ProblemDescription = patch.ProblemDescription.Ptr()
	}
	if patch.Status.Set {
		req.Status = patch.Status.Value
	}
	if patch.OwnerID.Set {
		if err := m.checkOwner(patch.OwnerID.Ptr()); err != nil {
			return RequestUpdateResult{}, err
		}
		req.OwnerID = patch.OwnerID.Ptr()
	}
	req.UpdatedAt = m.now()
	m.requests[id] = req
	return RequestUpdateResult{Matched: true, OwnerID: req.OwnerID, PreviousStatus: prev, Status: req.Status}, nil
}

func (r memoryRequests) Delete(_ context.Context, scope domain.Scope, id int64) (int64, error) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok || !ownedBy(scope, req) {
		return 0, nil
	}
	delete(m.requests, id)
	return 1, nil
}

func (r memoryRequests) GetByID(_ context.Context, scope domain.Scope, id int64) (*domain.Request, error) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok || !ownedBy(scope, req) {
		return nil, pgx.ErrNoRows
	}
	return &req, nil
}

func (r memoryRequests) List(_ context.Context, filter RequestFilter) ([]domain.Request, error) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []domain.Request{}
	for _, req := range m.requests {
		if filter.OwnerID != nil && (req.OwnerID == nil || *req.OwnerID != *filter.OwnerID) {
			continue
		}
		result = append(result, req)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

type memoryUsers struct{ m *MemoryStore }

func (u memoryUsers) Create(_ context.Context, user *domain.User) error {
	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.emails[user.Email]; exists {
		return &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"}
	}
	m.userSeq++
	user.ID = m.userSeq
	m.users[user.ID] = *user
	m.emails[user.Email] = user.ID
	return nil
}

func (u memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.emails[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user := m.users[id]
	return &user, nil
}

func (u memoryUsers) List(_ context.Context) ([]domain.User, error) {
	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]domain.User, 0, len(m.users))
	for _, user := range m.users {
		user.PasswordHash = ""
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MemoryStore) checkOwner(ownerID *int64) error {
	if ownerID == nil {
		return nil
	}
	if _, ok := m.users[*ownerID]; !ok {
		return &pgconn.PgError{Code: foreignKeyViolation, ConstraintName: "service_requests_owner_id_fkey"}
	}
	return nil
}

func ownedBy(scope domain.Scope, req domain.Request) bool {
	owner := scope.OwnerFilter()
	if owner == nil {
		return true
	}
	return req.OwnerID != nil && *req.OwnerID == *owner
}
