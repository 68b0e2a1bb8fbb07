package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestToDomainErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", NewValidationError("bad phone", nil), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"unauthorized", NewUnauthorized("missing identity"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", NewForbidden("admin required"), http.StatusForbidden, "FORBIDDEN"},
		{"not found", NewNotFound("request", nil), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", NewConflict("email taken", nil), http.StatusConflict, "CONFLICT"},
		{"store", NewStoreError(errors.New("connection refused")), http.StatusInternalServerError, "STORE_ERROR"},
		{"rate limited", NewTooManyRequests(3), http.StatusTooManyRequests, "RATE_LIMITED"},
		{"wrapped", fmt.Errorf("handler: %w", NewNotFound("request", nil)), http.StatusNotFound, "NOT_FOUND"},
		{"fiber", fiber.NewError(http.StatusNotFound, "Cannot GET /nope"), http.StatusNotFound, "NOT_FOUND"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			if de.HTTPStatus != tc.status {
				t.Fatalf("status = %d, want %d", de.HTTPStatus, tc.status)
			}
			if de.Code != tc.code {
				t.Fatalf("code = %s, want %s", de.Code, tc.code)
			}
		})
	}
}

func TestStoreErrorSurfacesUnderlyingMessage(t *testing.T) {
	de := ToDomainError(NewStoreError(errors.New("relation \"service_requests\" does not exist")))
	if de.Message != "relation \"service_requests\" does not exist" {
		t.Fatalf("unexpected message %q", de.Message)
	}
	if !errors.Is(de, de.Err) {
		t.Fatalf("store error should unwrap to its cause")
	}
}
