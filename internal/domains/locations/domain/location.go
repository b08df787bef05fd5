package domain

import (
	"errors"
	"math"
	"time"
)

var (
	ErrNameRequired = errors.New("location name is required")
	ErrBadCoords    = errors.New("latitude/longitude out of range")
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Location is one restaurant branch of a tenant.
type Location struct {
	ID        string
	TenantID  string
	Name      string
	Address   string
	Phone     string
	Latitude  float64
	Longitude float64
	// DeliveryRadiusKm bounds the area this branch delivers to.
	DeliveryRadiusKm float64
	MinimumOrder     float64
	DeliveryFee      float64
	// FreeDeliveryThreshold waives the fee at or above this subtotal;
	// zero means the fee always applies.
	FreeDeliveryThreshold float64
	Active                bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewLocation validates and builds an active branch.
func NewLocation(id, tenantID, name string, lat, lng float64, now time.Time) (*Location, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, ErrBadCoords
	}
	return &Location{
		ID:        id,
		TenantID:  tenantID,
		Name:      name,
		Latitude:  lat,
		Longitude: lng,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DistanceKm is the haversine distance from this branch to a point.
// Identical coordinates yield exactly zero.
func (l *Location) DistanceKm(lat, lng float64) float64 {
	if l.Latitude == lat && l.Longitude == lng {
		return 0
	}
	lat1 := lat * math.Pi / 180
	lat2 := l.Latitude * math.Pi / 180
	dLat := (l.Latitude - lat) * math.Pi / 180
	dLng := (l.Longitude - lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Delivers reports whether a point is inside the delivery radius.
func (l *Location) Delivers(lat, lng float64) bool {
	if !l.Active || l.DeliveryRadiusKm <= 0 {
		return false
	}
	return l.DistanceKm(lat, lng) <= l.DeliveryRadiusKm
}

// FeeFor returns the delivery fee for a given order subtotal.
func (l *Location) FeeFor(subtotal float64) float64 {
	if l.FreeDeliveryThreshold > 0 && subtotal >= l.FreeDeliveryThreshold {
		return 0
	}
	return l.DeliveryFee
}
