package repository

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/repair-service/internal/domain"
)

func normalizeSQL(q string) string {
	return strings.Join(strings.Fields(q), " ")
}

func TestBuildUpdateQueryOwnerScope(t *testing.T) {
	patch := domain.RequestPatch{
		ContactPhone: domain.Some("0812345678"),
		Status:       domain.Some("completed"),
	}
	query, args := buildUpdateQuery(domain.OwnerScope(5), 12, patch)

	want := "WITH prev AS ( SELECT id, status FROM service_requests WHERE id=$3 AND owner_id=$4 FOR UPDATE ) " +
		"UPDATE service_requests AS r SET contact_phone=$1, status=$2, updated_at=NOW() " +
		"FROM prev WHERE r.id = prev.id RETURNING r.owner_id, prev.status, r.status"
	if got := normalizeSQL(query); got != want {
		t.Fatalf("query:\n got %s\nwant %s", got, want)
	}
	phone, status := "0812345678", "completed"
	wantArgs := []any{&phone, &status, int64(12), int64(5)}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("args = %#v", args)
	}
}

func TestBuildUpdateQueryAdminScopeCanClearOwner(t *testing.T) {
	patch := domain.RequestPatch{
		DeviceModel: domain.Null[string](),
		OwnerID:     domain.Null[int64](),
	}
	query, args := buildUpdateQuery(domain.AdminScope(), 3, patch)

	if !strings.Contains(normalizeSQL(query), "SET device_model=$1, owner_id=$2, updated_at=NOW()") {
		t.Fatalf("unexpected set clause: %s", normalizeSQL(query))
	}
	if !strings.Contains(normalizeSQL(query), "WHERE id=$3 FOR UPDATE") {
		t.Fatalf("admin update must not carry an owner guard: %s", normalizeSQL(query))
	}
	if len(args) != 3 || args[0] != (*string)(nil) || args[1] != (*int64)(nil) || args[2] != int64(3) {
		t.Fatalf("args = %#v", args)
	}
}

func TestBuildUpdateQueryEmptyPatch(t *testing.T) {
	query, args := buildUpdateQuery(domain.AdminScope(), 1, domain.RequestPatch{})
	if query != "" || args != nil {
		t.Fatalf("empty patch should build nothing, got %q %v", query, args)
	}
}

func TestPlaceholders(t *testing.T) {
	if got := placeholders(1, 5); got != "$1,$2,$3,$4,$5" {
		t.Fatalf("placeholders = %s", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	if !IsUniqueViolation(fmt.Errorf("insert user: %w", dup)) {
		t.Fatalf("wrapped unique violation not detected")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("23505")) {
		t.Fatalf("plain errors are never unique violations")
	}
}
