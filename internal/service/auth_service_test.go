package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/spec-kit/repair-service/internal/auth"
	"github.com/spec-kit/repair-service/internal/domain"
	"github.com/spec-kit/repair-service/internal/repository"
)

func newAuthService(t *testing.T) (*AuthService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewAuthService(AuthDependencies{
		UserRepo:    store.Users(),
		Credentials: auth.NewBcryptVerifier(4),
	}), store
}

// lostRaceUsers reports the email as free, then hits the unique constraint.
type lostRaceUsers struct{ repository.UserRepository }

func (u lostRaceUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	_, err := repository.NewMemoryStore().Users().GetByEmail(ctx, email)
	return nil, err
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterInput{Firstname: "Ann", Lastname: "Lee", Email: "ann@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == 0 || user.PasswordHash == "secret" || !strings.HasPrefix(user.PasswordHash, "$2") {
		t.Fatalf("registered user = %+v", user)
	}

	_, err = svc.RegisterUser(ctx, RegisterInput{Firstname: "Ann", Lastname: "Again", Email: "ann@example.com", Password: "other"})
	if statusOf(err) != http.StatusConflict {
		t.Fatalf("duplicate register err = %v", err)
	}

	logged, err := svc.LoginUser(ctx, "ann@example.com", "secret")
	if err != nil || logged.ID != user.ID || logged.Firstname != "Ann" {
		t.Fatalf("login = %+v, %v", logged, err)
	}
	if _, err := svc.LoginUser(ctx, "ann@example.com", "wrong"); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := svc.LoginUser(ctx, "bob@example.com", "secret"); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("unknown email err = %v", err)
	}
}

func TestRegisterRequiresAllFields(t *testing.T) {
	svc, _ := newAuthService(t)
	full := RegisterInput{Firstname: "Ann", Lastname: "Lee", Email: "ann@example.com", Password: "secret"}
	cases := map[string]func(*RegisterInput){
		"firstname": func(in *RegisterInput) { in.Firstname = " " },
		"lastname":  func(in *RegisterInput) { in.Lastname = "" },
		"email":     func(in *RegisterInput) { in.Email = "" },
		"password":  func(in *RegisterInput) { in.Password = "" },
	}
	for name, blank := range cases {
		in := full
		blank(&in)
		if _, err := svc.RegisterUser(context.Background(), in); statusOf(err) != http.StatusBadRequest {
			t.Fatalf("missing %s: err = %v", name, err)
		}
	}
	if _, err := svc.LoginUser(context.Background(), "", "secret"); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("login without email: err = %v", err)
	}
}

func TestRegisterMapsUniqueViolationToConflict(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	if err := store.Users().Create(ctx, &domain.User{Email: "ann@example.com"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewAuthService(AuthDependencies{
		UserRepo:    lostRaceUsers{store.Users()},
		Credentials: auth.NewBcryptVerifier(4),
	})
	_, err := svc.RegisterUser(ctx, RegisterInput{Firstname: "Ann", Lastname: "Lee", Email: "ann@example.com", Password: "secret"})
	if statusOf(err) != http.StatusConflict {
		t.Fatalf("err = %v", err)
	}
}

func TestListUsersOrderedWithoutHashes(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	for _, email := range []string{"a@example.com", "b@example.com"} {
		if _, err := svc.RegisterUser(ctx, RegisterInput{Firstname: "F", Lastname: "L", Email: email, Password: "pw"}); err != nil {
			t.Fatalf("register %s: %v", email, err)
		}
	}
	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 || users[0].ID > users[1].ID || users[0].PasswordHash != "" {
		t.Fatalf("users = %+v", users)
	}
}
