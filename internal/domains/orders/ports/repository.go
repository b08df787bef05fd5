package ports

import (
	"context"
	"errors"

	"github.com/broasteria/broasteria/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrVersionConflict signals a compare-and-swap failure: the record
	// changed between the caller's read and its write.
	ErrVersionConflict = errors.New("order version conflict")
)

// Repository persists orders partitioned by tenant.
type Repository interface {
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)
	Get(ctx context.Context, tenantID, orderID string) (*domain.Order, error)
	// Update writes an existing order. When expectedVersion is
	// non-negative the write must be conditional on the stored version
	// matching, failing with ErrVersionConflict otherwise; a negative
	// expectedVersion requests an unconditional last-write-wins update.
	Update(ctx context.Context, order *domain.Order, expectedVersion int64) (*domain.Order, error)
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]*domain.Order, error)
	ListByStatus(ctx context.Context, tenantID string, status domain.Status) ([]*domain.Order, error)
	ListByCustomer(ctx context.Context, tenantID, customerID string) ([]*domain.Order, error)
}
