package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/broasteria/broasteria/internal/domains/locations/domain"
	"github.com/broasteria/broasteria/internal/domains/locations/ports"
)

var _ ports.Repository = (*Repository)(nil)

type key struct {
	tenantID   string
	locationID string
}

// Repository is an in-memory branch store.
type Repository struct {
	mu        sync.RWMutex
	locations map[key]*domain.Location
}

func NewRepository() *Repository {
	return &Repository{locations: map[key]*domain.Location{}}
}

func (r *Repository) Save(_ context.Context, loc *domain.Location) (*domain.Location, error) {
	if loc == nil {
		return nil, errors.New("location is nil")
	}
	clone := *loc
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[key{loc.TenantID, loc.ID}] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) Get(_ context.Context, tenantID, locationID string) (*domain.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loc, ok := r.locations[key{tenantID, locationID}]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *loc
	return &clone, nil
}

func (r *Repository) Update(_ context.Context, loc *domain.Location) (*domain.Location, error) {
	if loc == nil {
		return nil, errors.New("location is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.locations[key{loc.TenantID, loc.ID}]; !ok {
		return nil, ports.ErrNotFound
	}
	clone := *loc
	r.locations[key{loc.TenantID, loc.ID}] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) Delete(_ context.Context, tenantID, locationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.locations[key{tenantID, locationID}]; !ok {
		return ports.ErrNotFound
	}
	delete(r.locations, key{tenantID, locationID})
	return nil
}

func (r *Repository) ListByTenant(_ context.Context, tenantID string) ([]*domain.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Location
	for k, loc := range r.locations {
		if k.tenantID == tenantID {
			clone := *loc
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}
