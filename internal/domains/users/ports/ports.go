package ports

import (
	"context"
	"errors"

	"github.com/broasteria/broasteria/internal/domains/users/domain"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Repository persists user accounts partitioned by tenant.
type Repository interface {
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	Get(ctx context.Context, tenantID, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.User, error)
}

// RegisterInput carries the fields for a new account.
type RegisterInput struct {
	TenantID string
	Email    string
	Name     string
	Phone    string
	Role     string
	Password string
}

// LoginResult bundles the signed token with its subject.
type LoginResult struct {
	Token string
	User  *domain.User
}

// Service exposes account and authentication use cases.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, tenantID, email, password string) (*LoginResult, error)
	Verify(ctx context.Context, token string) (*domain.Claims, error)
	GetUser(ctx context.Context, tenantID, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, tenantID string) ([]*domain.User, error)
	SetActive(ctx context.Context, tenantID, userID string, active bool) (*domain.User, error)
	ChangePassword(ctx context.Context, tenantID, userID, oldPassword, newPassword string) error
}
