package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/broasteria/broasteria/internal/domains/users/adapters/memory"
	"github.com/broasteria/broasteria/internal/domains/users/domain"
	"github.com/broasteria/broasteria/internal/domains/users/ports"
)

var testSecret = []byte("test-secret-key")

func newUserService(opts ...Option) *Service {
	base := []Option{
		WithClock(func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }),
	}
	return NewService(memory.NewRepository(), testSecret, append(base, opts...)...)
}

func register(t *testing.T, svc *Service, email, role string) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), ports.RegisterInput{
		TenantID: "tenant-1",
		Email:    email,
		Name:     "Test User",
		Role:     role,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return user
}

func TestRegister_HashesPassword(t *testing.T) {
	svc := newUserService()
	user := register(t, svc, "ana@example.com", domain.RoleManager)

	require.NotEmpty(t, user.PasswordHash)
	require.NotEmpty(t, user.Salt)
	require.NotContains(t, user.PasswordHash, "correct-horse")
	require.True(t, user.CheckPassword("correct-horse"))
	require.False(t, user.CheckPassword("wrong"))
}

func TestRegister_Validation(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, ports.RegisterInput{TenantID: "t", Email: "a@b.c", Password: "short", Role: domain.RoleStaff})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, ports.RegisterInput{TenantID: "t", Password: "long-enough", Role: domain.RoleStaff})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, ports.RegisterInput{TenantID: "t", Email: "a@b.c", Password: "long-enough", Role: "wizard"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newUserService()
	register(t, svc, "ana@example.com", domain.RoleStaff)

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		TenantID: "tenant-1",
		Email:    "ANA@example.com",
		Password: "another-pass",
		Role:     domain.RoleStaff,
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	svc := newUserService()
	user := register(t, svc, "ana@example.com", domain.RoleManager)

	result, err := svc.Login(context.Background(), "tenant-1", "Ana@Example.com", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	claims, err := svc.Verify(context.Background(), result.Token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, "tenant-1", claims.TenantID)
	require.Equal(t, domain.RoleManager, claims.Role)
}

func TestLogin_Failures(t *testing.T) {
	svc := newUserService()
	user := register(t, svc, "ana@example.com", domain.RoleStaff)
	ctx := context.Background()

	_, err := svc.Login(ctx, "tenant-1", "ana@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "tenant-1", "ghost@example.com", "correct-horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SetActive(ctx, "tenant-1", user.ID, false)
	require.NoError(t, err)
	_, err = svc.Login(ctx, "tenant-1", "ana@example.com", "correct-horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerify_RejectsTamperedAndExpired(t *testing.T) {
	svc := newUserService()
	register(t, svc, "ana@example.com", domain.RoleStaff)

	result, err := svc.Login(context.Background(), "tenant-1", "ana@example.com", "correct-horse")
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), result.Token+"x")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Verify(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	expired, err := domain.SignToken(domain.Claims{
		UserID:    "u1",
		TenantID:  "tenant-1",
		ExpiresAt: time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC),
	}, testSecret)
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), expired)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc := newUserService()
	user := register(t, svc, "ana@example.com", domain.RoleStaff)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "tenant-1", user.ID, "wrong", "new-password-1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, "tenant-1", user.ID, "correct-horse", "short")
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.ChangePassword(ctx, "tenant-1", user.ID, "correct-horse", "new-password-1"))
	_, err = svc.Login(ctx, "tenant-1", "ana@example.com", "new-password-1")
	require.NoError(t, err)
}
