package ports

import (
	"context"
	"errors"

	"github.com/broasteria/broasteria/internal/domains/menu/domain"
)

var ErrNotFound = errors.New("menu item not found")

// Repository persists menu items partitioned by tenant.
type Repository interface {
	Save(ctx context.Context, item *domain.Item) (*domain.Item, error)
	Get(ctx context.Context, tenantID, itemID string) (*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) (*domain.Item, error)
	Delete(ctx context.Context, tenantID, itemID string) error
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.Item, error)
	ListByCategory(ctx context.Context, tenantID, category string) ([]*domain.Item, error)
}

// CreateItemInput carries the fields a manager sets when adding an item.
type CreateItemInput struct {
	TenantID           string
	Name               string
	Description        string
	Category           string
	Price              float64
	ImageURL           string
	PreparationMinutes int
	Tags               []string
}

// UpdateItemInput applies a partial update; nil fields stay untouched.
type UpdateItemInput struct {
	TenantID    string
	ItemID      string
	Name        *string
	Description *string
	Category    *string
	Price       *float64
	ImageURL    *string
	Tags        []string
}

// Service exposes menu management use cases.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*domain.Item, error)
	GetItem(ctx context.Context, tenantID, itemID string) (*domain.Item, error)
	ListItems(ctx context.Context, tenantID string) ([]*domain.Item, error)
	ListByCategory(ctx context.Context, tenantID, category string) ([]*domain.Item, error)
	UpdateItem(ctx context.Context, input UpdateItemInput) (*domain.Item, error)
	SetAvailability(ctx context.Context, tenantID, itemID string, available bool) (*domain.Item, error)
	DeleteItem(ctx context.Context, tenantID, itemID string) error
}
