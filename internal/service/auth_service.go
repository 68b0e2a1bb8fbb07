package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-service/internal/auth"
	"github.com/spec-kit/repair-service/internal/domain"
	"github.com/spec-kit/repair-service/internal/repository"
	apperrors "github.com/spec-kit/repair-service/pkg/util/errorutil"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Firstname string
	Lastname  string
	Email     string
	Password  string
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users       repository.UserRepository
	credentials auth.CredentialVerifier
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	Credentials auth.CredentialVerifier
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:       deps.UserRepo,
		credentials: deps.Credentials,
	}
}

// RegisterUser creates a new account. The email must be unused.
func (s *AuthService) RegisterUser(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	if strings.TrimSpace(input.Firstname) == "" || strings.TrimSpace(input.Lastname) == "" ||
		input.Email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("Missing fields", nil)
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, emailTaken()
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, storeError(err)
	}

	hash, err := s.credentials.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Firstname:    input.Firstname,
		Lastname:     input.Lastname,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, emailTaken()
		}
		return nil, storeError(err)
	}
	return user, nil
}

// LoginUser checks the credentials and returns the account.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("Missing fields", nil)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invalidCredentials()
		}
		return nil, storeError(err)
	}
	if err := s.credentials.Compare(user.PasswordHash, password); err != nil {
		return nil, invalidCredentials()
	}
	return user, nil
}

// ListUsers returns every account ordered by id.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

func emailTaken() error {
	return apperrors.NewConflict("Email already registered", nil)
}

func invalidCredentials() error {
	return apperrors.NewUnauthorized("Invalid credentials")
}
