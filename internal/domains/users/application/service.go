package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/broasteria/broasteria/internal/domains/users/domain"
	"github.com/broasteria/broasteria/internal/domains/users/ports"
)

var (
	ErrValidation         = errors.New("invalid user input")
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// DefaultTokenTTL is how long a login token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// Service manages accounts and issues signed tokens.
type Service struct {
	repo     ports.Repository
	secret   []byte
	tokenTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) { s.tokenTTL = ttl }
}

func NewService(repo ports.Repository, secret []byte, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		secret:   secret,
		tokenTTL: DefaultTokenTTL,
		logger:   slog.Default(),
		now:      time.Now,
		newID:    func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if input.TenantID == "" {
		return nil, fmt.Errorf("%w: tenantId is required", ErrValidation)
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.repo.GetByEmail(ctx, input.TenantID, email); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	} else if !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	user, err := domain.NewUser(s.newID(), input.TenantID, email, input.Name, role, input.Password, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	user.Phone = input.Phone

	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	s.logger.Info("user registered",
		slog.String("tenantId", saved.TenantID),
		slog.String("userId", saved.ID),
		slog.String("role", saved.Role))
	return saved, nil
}

// Login verifies credentials and returns a signed token. Lookup and
// password failures both report invalid credentials, never which one.
func (s *Service) Login(ctx context.Context, tenantID, email, password string) (*ports.LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetByEmail(ctx, tenantID, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	token, err := domain.SignToken(domain.Claims{
		UserID:    user.ID,
		TenantID:  user.TenantID,
		Email:     user.Email,
		Role:      user.Role,
		ExpiresAt: s.now().UTC().Add(s.tokenTTL),
	}, s.secret)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in",
		slog.String("tenantId", user.TenantID),
		slog.String("userId", user.ID))
	return &ports.LoginResult{Token: token, User: user}, nil
}

func (s *Service) Verify(_ context.Context, token string) (*domain.Claims, error) {
	claims, err := domain.VerifyToken(token, s.secret, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return claims, nil
}

func (s *Service) GetUser(ctx context.Context, tenantID, userID string) (*domain.User, error) {
	user, err := s.repo.Get(ctx, tenantID, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, tenantID string) ([]*domain.User, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

func (s *Service) SetActive(ctx context.Context, tenantID, userID string, active bool) (*domain.User, error) {
	user, err := s.repo.Get(ctx, tenantID, userID)
	if err != nil {
		return nil, mapError(err)
	}
	user.Active = active
	user.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

func (s *Service) ChangePassword(ctx context.Context, tenantID, userID, oldPassword, newPassword string) error {
	user, err := s.repo.Get(ctx, tenantID, userID)
	if err != nil {
		return mapError(err)
	}
	if !user.CheckPassword(oldPassword) {
		return ErrInvalidCredentials
	}
	if err := user.SetPassword(newPassword, s.now().UTC()); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if _, err := s.repo.Update(ctx, user); err != nil {
		return mapError(err)
	}
	return nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, ports.ErrEmailTaken):
		return fmt.Errorf("%w: %w", ErrEmailTaken, err)
	}
	return err
}

var _ ports.Service = (*Service)(nil)
