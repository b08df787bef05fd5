package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/broasteria/broasteria/internal/domains/promotions/domain"
	"github.com/broasteria/broasteria/internal/domains/promotions/ports"
)

var _ ports.Repository = (*Repository)(nil)

type key struct {
	tenantID string
	promoID  string
}

// Repository is an in-memory promotion store.
type Repository struct {
	mu     sync.RWMutex
	promos map[key]*domain.Promotion
}

func NewRepository() *Repository {
	return &Repository{promos: map[key]*domain.Promotion{}}
}

func (r *Repository) Save(_ context.Context, promo *domain.Promotion) (*domain.Promotion, error) {
	if promo == nil {
		return nil, errors.New("promotion is nil")
	}
	clone := *promo
	r.mu.Lock()
	defer r.mu.Unlock()
	r.promos[key{promo.TenantID, promo.ID}] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) Get(_ context.Context, tenantID, promoID string) (*domain.Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	promo, ok := r.promos[key{tenantID, promoID}]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *promo
	return &clone, nil
}

func (r *Repository) GetByCode(_ context.Context, tenantID, code string) (*domain.Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k, promo := range r.promos {
		if k.tenantID == tenantID && promo.Code == code {
			clone := *promo
			return &clone, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) Update(_ context.Context, promo *domain.Promotion) (*domain.Promotion, error) {
	if promo == nil {
		return nil, errors.New("promotion is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.promos[key{promo.TenantID, promo.ID}]; !ok {
		return nil, ports.ErrNotFound
	}
	clone := *promo
	r.promos[key{promo.TenantID, promo.ID}] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) Delete(_ context.Context, tenantID, promoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.promos[key{tenantID, promoID}]; !ok {
		return ports.ErrNotFound
	}
	delete(r.promos, key{tenantID, promoID})
	return nil
}

func (r *Repository) ListByTenant(_ context.Context, tenantID string) ([]*domain.Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Promotion
	for k, promo := range r.promos {
		if k.tenantID == tenantID {
			clone := *promo
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}
