package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/broasteria/broasteria/internal/domains/inventory/domain"
	"github.com/broasteria/broasteria/internal/domains/inventory/ports"
)

var _ ports.Repository = (*Repository)(nil)

type key struct {
	tenantID string
	stockID  string
}

// Repository is an in-memory stock store.
type Repository struct {
	mu    sync.RWMutex
	stock map[key]*domain.Stock
}

func NewRepository() *Repository {
	return &Repository{stock: map[key]*domain.Stock{}}
}

func (r *Repository) Save(_ context.Context, stock *domain.Stock) (*domain.Stock, error) {
	if stock == nil {
		return nil, errors.New("stock is nil")
	}
	clone := *stock
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stock[key{stock.TenantID, stock.ID}] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) Get(_ context.Context, tenantID, stockID string) (*domain.Stock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stock, ok := r.stock[key{tenantID, stockID}]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *stock
	return &clone, nil
}

func (r *Repository) Update(_ context.Context, stock *domain.Stock) (*domain.Stock, error) {
	if stock == nil {
		return nil, errors.New("stock is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stock[key{stock.TenantID, stock.ID}]; !ok {
		return nil, ports.ErrNotFound
	}
	clone := *stock
	r.stock[key{stock.TenantID, stock.ID}] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) Delete(_ context.Context, tenantID, stockID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stock[key{tenantID, stockID}]; !ok {
		return ports.ErrNotFound
	}
	delete(r.stock, key{tenantID, stockID})
	return nil
}

func (r *Repository) ListByTenant(_ context.Context, tenantID string) ([]*domain.Stock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Stock
	for k, stock := range r.stock {
		if k.tenantID == tenantID {
			clone := *stock
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}
