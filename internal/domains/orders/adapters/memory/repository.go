package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/broasteria/broasteria/internal/domains/orders/domain"
	"github.com/broasteria/broasteria/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

type key struct {
	tenantID string
	orderID  string
}

// Repository is an in-memory order persistence adapter. It mirrors the
// semantics of the record store: per-key atomicity, optional
// compare-and-swap on the version column.
type Repository struct {
	mu     sync.RWMutex
	orders map[key]*domain.Order
}

func NewRepository() *Repository {
	return &Repository{orders: map[key]*domain.Order{}}
}

func (r *Repository) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := cloneOrder(order)
	clone.Version = 1
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[key{clone.TenantID, clone.ID}] = clone
	return cloneOrder(clone), nil
}

func (r *Repository) Get(_ context.Context, tenantID, orderID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[key{tenantID, orderID}]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *Repository) Update(_ context.Context, order *domain.Order, expectedVersion int64) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[key{order.TenantID, order.ID}]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if expectedVersion >= 0 && stored.Version != expectedVersion {
		return nil, ports.ErrVersionConflict
	}
	clone := cloneOrder(order)
	clone.Version = stored.Version + 1
	r.orders[key{clone.TenantID, clone.ID}] = clone
	return cloneOrder(clone), nil
}

func (r *Repository) ListByTenant(_ context.Context, tenantID string, limit int) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Order
	for k, order := range r.orders {
		if k.tenantID == tenantID {
			list = append(list, cloneOrder(order))
		}
	}
	// Most recent first, matching the record store's reverse range scan.
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *Repository) ListByStatus(ctx context.Context, tenantID string, status domain.Status) ([]*domain.Order, error) {
	all, err := r.ListByTenant(ctx, tenantID, 0)
	if err != nil {
		return nil, err
	}
	var list []*domain.Order
	for _, order := range all {
		if order.Status == status {
			list = append(list, order)
		}
	}
	return list, nil
}

func (r *Repository) ListByCustomer(ctx context.Context, tenantID, customerID string) ([]*domain.Order, error) {
	all, err := r.ListByTenant(ctx, tenantID, 0)
	if err != nil {
		return nil, err
	}
	var list []*domain.Order
	for _, order := range all {
		if order.CustomerID == customerID {
			list = append(list, order)
		}
	}
	return list, nil
}

// cloneOrder deep-copies the mutable sub-structures so callers cannot
// mutate stored state (and the append-only history stays append-only).
func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	clone.Items = append([]domain.LineItem(nil), o.Items...)
	clone.StatusHistory = append([]domain.StatusEntry(nil), o.StatusHistory...)
	clone.Workflow.Steps = append([]domain.WorkflowStep(nil), o.Workflow.Steps...)
	if o.Workflow.AssignedStaff != nil {
		clone.Workflow.AssignedStaff = make(map[string]domain.StaffAssignment, len(o.Workflow.AssignedStaff))
		for role, staff := range o.Workflow.AssignedStaff {
			clone.Workflow.AssignedStaff[role] = staff
		}
	}
	return &clone
}
