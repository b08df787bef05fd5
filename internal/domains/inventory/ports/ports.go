package ports

import (
	"context"
	"errors"

	"github.com/broasteria/broasteria/internal/domains/inventory/domain"
)

var ErrNotFound = errors.New("stock item not found")

// Repository persists stock records partitioned by tenant.
type Repository interface {
	Save(ctx context.Context, stock *domain.Stock) (*domain.Stock, error)
	Get(ctx context.Context, tenantID, stockID string) (*domain.Stock, error)
	Update(ctx context.Context, stock *domain.Stock) (*domain.Stock, error)
	Delete(ctx context.Context, tenantID, stockID string) error
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.Stock, error)
}

// CreateStockInput registers a new tracked item.
type CreateStockInput struct {
	TenantID          string
	Name              string
	Unit              string
	Quantity          float64
	LowStockThreshold float64
}

// AdjustStockInput applies a signed quantity change.
type AdjustStockInput struct {
	TenantID string
	StockID  string
	Delta    float64
	// Reason is recorded in the adjustment log line.
	Reason string
}

// Service exposes inventory tracking use cases.
type Service interface {
	CreateStock(ctx context.Context, input CreateStockInput) (*domain.Stock, error)
	GetStock(ctx context.Context, tenantID, stockID string) (*domain.Stock, error)
	ListStock(ctx context.Context, tenantID string) ([]*domain.Stock, error)
	AdjustStock(ctx context.Context, input AdjustStockInput) (*domain.Stock, error)
	LowStock(ctx context.Context, tenantID string) ([]*domain.Stock, error)
	DeleteStock(ctx context.Context, tenantID, stockID string) error
}
