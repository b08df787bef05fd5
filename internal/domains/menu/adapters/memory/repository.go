package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/broasteria/broasteria/internal/domains/menu/domain"
	"github.com/broasteria/broasteria/internal/domains/menu/ports"
)

var _ ports.Repository = (*Repository)(nil)

type key struct {
	tenantID string
	itemID   string
}

// Repository is an in-memory menu store.
type Repository struct {
	mu    sync.RWMutex
	items map[key]*domain.Item
}

func NewRepository() *Repository {
	return &Repository{items: map[key]*domain.Item{}}
}

func (r *Repository) Save(_ context.Context, item *domain.Item) (*domain.Item, error) {
	if item == nil {
		return nil, errors.New("menu item is nil")
	}
	clone := cloneItem(item)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key{item.TenantID, item.ID}] = clone
	return cloneItem(clone), nil
}

func (r *Repository) Get(_ context.Context, tenantID, itemID string) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[key{tenantID, itemID}]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneItem(item), nil
}

func (r *Repository) Update(_ context.Context, item *domain.Item) (*domain.Item, error) {
	if item == nil {
		return nil, errors.New("menu item is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[key{item.TenantID, item.ID}]; !ok {
		return nil, ports.ErrNotFound
	}
	clone := cloneItem(item)
	r.items[key{item.TenantID, item.ID}] = clone
	return cloneItem(clone), nil
}

func (r *Repository) Delete(_ context.Context, tenantID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[key{tenantID, itemID}]; !ok {
		return ports.ErrNotFound
	}
	delete(r.items, key{tenantID, itemID})
	return nil
}

func (r *Repository) ListByTenant(_ context.Context, tenantID string) ([]*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Item
	for k, item := range r.items {
		if k.tenantID == tenantID {
			list = append(list, cloneItem(item))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *Repository) ListByCategory(ctx context.Context, tenantID, category string) ([]*domain.Item, error) {
	all, err := r.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var list []*domain.Item
	for _, item := range all {
		if item.Category == category {
			list = append(list, item)
		}
	}
	return list, nil
}

func cloneItem(item *domain.Item) *domain.Item {
	clone := *item
	clone.Tags = append([]string(nil), item.Tags...)
	return &clone
}
