package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-service/internal/domain"
)

const requestColumns = `id, owner_id, service_type, contact_phone, device_model,
               problem_description, status, created_at, updated_at`

// RequestFilter narrows request listings.
type RequestFilter struct {
	OwnerID *int64
}

// RequestUpdateResult reports what a guarded update touched.
type RequestUpdateResult struct {
	Matched        bool
	OwnerID        *int64
	PreviousStatus string
	Status         string
}

// RequestRepository encapsulates repair request persistence. Every
// scope-taking method applies the scope's owner predicate to the statement.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.Request) error
	Update(ctx context.Context, scope domain.Scope, id int64, patch domain.RequestPatch) (RequestUpdateResult, error)
	Delete(ctx context.Context, scope domain.Scope, id int64) (int64, error)
	GetByID(ctx context.Context, scope domain.Scope, id int64) (*domain.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]domain.Request, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository returns a Postgres-backed implementation.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

// Create inserts the request. An empty Status leaves the column out so the
// table default applies; the stored row is scanned back into req.
func (r *requestRepository) Create(ctx context.Context, req *domain.Request) error {
	if r.pool == nil {
		return errNoPool
	}
	cols := []string{"owner_id", "service_type", "contact_phone", "device_model", "problem_description"}
	args := []any{req.OwnerID, req.ServiceType, req.ContactPhone, req.DeviceModel, req.ProblemDescription}
	if req.Status != "" {
		cols = append(cols, "status")
		args = append(args, req.Status)
	}

	query := fmt.Sprintf(`
        INSERT INTO service_requests (%s)
        VALUES (%s)
        RETURNING %s`, strings.Join(cols, ", "), placeholders(1, len(args)), requestColumns)

	return scanRequest(r.pool.QueryRow(ctx, query, args...), req)
}

// Update applies the present patch fields in a single statement. The target
// row is locked before the write so the returned previous status is the one
// this write replaced.
func (r *requestRepository) Update(ctx context.Context, scope domain.Scope, id int64, patch domain.RequestPatch) (RequestUpdateResult, error) {
	if r.pool == nil {
		return RequestUpdateResult{}, errNoPool
	}
	query, args := buildUpdateQuery(scope, id, patch)
	if query == "" {
		return RequestUpdateResult{}, errors.New("empty patch")
	}

	var res RequestUpdateResult
	err := r.pool.QueryRow(ctx, query, args...).Scan(&res.OwnerID, &res.PreviousStatus, &res.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return RequestUpdateResult{}, nil
	}
	if err != nil {
		return RequestUpdateResult{}, err
	}
	res.Matched = true
	return res, nil
}

func (r *requestRepository) Delete(ctx context.Context, scope domain.Scope, id int64) (int64, error) {
	if r.pool == nil {
		return 0, errNoPool
	}
	query := `DELETE FROM service_requests WHERE id=$1`
	args := []any{id}
	if owner := scope.OwnerFilter(); owner != nil {
		args = append(args, *owner)
		query += ` AND owner_id=$2`
	}
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *requestRepository) GetByID(ctx context.Context, scope domain.Scope, id int64) (*domain.Request, error) {
	if r.pool == nil {
		return nil, errNoPool
	}
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE id=$1`
	args := []any{id}
	if owner := scope.OwnerFilter(); owner != nil {
		args = append(args, *owner)
		query += ` AND owner_id=$2`
	}
	var req domain.Request
	if err := scanRequest(r.pool.QueryRow(ctx, query, args...), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]domain.Request, error) {
	if r.pool == nil {
		return nil, errNoPool
	}
	query := `SELECT ` + requestColumns + ` FROM service_requests`
	args := []any{}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		query += ` WHERE owner_id=$1`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Request{}
	for rows.Next() {
		var req domain.Request
		if err := scanRequest(rows, &req); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

// buildUpdateQuery assembles the guarded update for the present patch fields.
// It returns an empty query when the patch is empty.
func buildUpdateQuery(scope domain.Scope, id int64, patch domain.RequestPatch) (string, []any) {
	sets := []string{}
	args := []any{}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if patch.ServiceType.Set {
		set("service_type", patch.ServiceType.Ptr())
	}
	if patch.ContactPhone.Set {
		set("contact_phone", patch.ContactPhone.Ptr())
	}
	if patch.DeviceModel.Set {
		set("device_model", patch.DeviceModel.Ptr())
	}
	if patch.ProblemDescription.Set {
		set("problem_description", patch.ProblemDescription.Ptr())
	}
	if patch.Status.Set {
		set("status", patch.Status.Ptr())
	}
	if patch.OwnerID.Set {
		set("owner_id", patch.OwnerID.Ptr())
	}
	if len(sets) == 0 {
		return "", nil
	}

	args = append(args, id)
	guard := fmt.Sprintf("id=$%d", len(args))
	if owner := scope.OwnerFilter(); owner != nil {
		args = append(args, *owner)
		guard += fmt.Sprintf(" AND owner_id=$%d", len(args))
	}

	query := fmt.Sprintf(`
        WITH prev AS (
            SELECT id, status FROM service_requests WHERE %s FOR UPDATE
        )
        UPDATE service_requests AS r SET %s, updated_at=NOW()
        FROM prev WHERE r.id = prev.id
        RETURNING r.owner_id, prev.status, r.status`, guard, strings.Join(sets, ", "))
	return query, args
}

func scanRequest(row pgx.Row, req *domain.Request) error {
	return row.Scan(
		&req.ID,
		&req.OwnerID,
		&req.ServiceType,
		&req.ContactPhone,
		&req.DeviceModel,
		&req.ProblemDescription,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
}

func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(parts, ",")
}
