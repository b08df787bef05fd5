package ports

import (
	"context"
	"errors"

	"github.com/broasteria/broasteria/internal/domains/locations/domain"
)

var ErrNotFound = errors.New("location not found")

// Repository persists branch locations partitioned by tenant.
type Repository interface {
	Save(ctx context.Context, loc *domain.Location) (*domain.Location, error)
	Get(ctx context.Context, tenantID, locationID string) (*domain.Location, error)
	Update(ctx context.Context, loc *domain.Location) (*domain.Location, error)
	Delete(ctx context.Context, tenantID, locationID string) error
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.Location, error)
}

// CreateLocationInput carries the fields for a new branch.
type CreateLocationInput struct {
	TenantID              string
	Name                  string
	Address               string
	Phone                 string
	Latitude              float64
	Longitude             float64
	DeliveryRadiusKm      float64
	MinimumOrder          float64
	DeliveryFee           float64
	FreeDeliveryThreshold float64
}

// Availability is the delivery answer for a customer coordinate.
type Availability struct {
	Available bool
	// Location is the nearest branch able to deliver, or the nearest
	// branch overall when none can.
	Location     *domain.Location
	DistanceKm   float64
	DeliveryFee  float64
	MinimumOrder float64
	Reason       string
}

// Service exposes branch management and delivery availability checks.
type Service interface {
	CreateLocation(ctx context.Context, input CreateLocationInput) (*domain.Location, error)
	GetLocation(ctx context.Context, tenantID, locationID string) (*domain.Location, error)
	ListLocations(ctx context.Context, tenantID string) ([]*domain.Location, error)
	SetActive(ctx context.Context, tenantID, locationID string, active bool) (*domain.Location, error)
	DeleteLocation(ctx context.Context, tenantID, locationID string) error
	CheckAvailability(ctx context.Context, tenantID string, lat, lng, subtotal float64) (*Availability, error)
}
