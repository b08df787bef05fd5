package domain

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// Roles recognized by the authorization middleware.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrUnknownRole      = errors.New("unknown role")
)

const pbkdf2Iterations = 100_000

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

// User is an account scoped to a tenant.
type User struct {
	ID       string
	TenantID string
	Email    string
	Name     string
	Phone    string
	Role     string
	// Salt and PasswordHash are hex-encoded PBKDF2-SHA256 material.
	Salt         string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser validates inputs, hashes the password, and builds an active account.
func NewUser(id, tenantID, email, name, role, password string, now time.Time) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return &User{
		ID:           id,
		TenantID:     tenantID,
		Email:        email,
		Name:         name,
		Role:         role,
		Salt:         hex.EncodeToString(salt),
		PasswordHash: hashPassword(password, salt),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CheckPassword verifies a candidate password in constant time.
func (u *User) CheckPassword(password string) bool {
	salt, err := hex.DecodeString(u.Salt)
	if err != nil {
		return false
	}
	candidate := hashPassword(password, salt)
	return hmac.Equal([]byte(candidate), []byte(u.PasswordHash))
}

// SetPassword rehashes with a fresh salt.
func (u *User) SetPassword(password string, now time.Time) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	u.Salt = hex.EncodeToString(salt)
	u.PasswordHash = hashPassword(password, salt)
	u.UpdatedAt = now
	return nil
}

func hashPassword(password string, salt []byte) string {
	return hex.EncodeToString(pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, 32, sha256.New))
}
