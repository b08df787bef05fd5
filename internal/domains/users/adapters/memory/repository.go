package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/broasteria/broasteria/internal/domains/users/domain"
	"github.com/broasteria/broasteria/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

type key struct {
	tenantID string
	userID   string
}

// Repository is an in-memory user store.
type Repository struct {
	mu    sync.RWMutex
	users map[key]*domain.User
}

func NewRepository() *Repository {
	return &Repository{users: map[key]*domain.User{}}
}

func (r *Repository) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, existing := range r.users {
		if k.tenantID == user.TenantID && existing.Email == user.Email && k.userID != user.ID {
			return nil, ports.ErrEmailTaken
		}
	}
	clone := *user
	r.users[key{user.TenantID, user.ID}] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) Get(_ context.Context, tenantID, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[key{tenantID, userID}]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *Repository) GetByEmail(_ context.Context, tenantID, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k, user := range r.users {
		if k.tenantID == tenantID && user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[key{user.TenantID, user.ID}]; !ok {
		return nil, ports.ErrNotFound
	}
	clone := *user
	r.users[key{user.TenantID, user.ID}] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) ListByTenant(_ context.Context, tenantID string) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.User
	for k, user := range r.users {
		if k.tenantID == tenantID {
			clone := *user
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })
	return list, nil
}
