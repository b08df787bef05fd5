package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/broasteria/broasteria/internal/domains/locations/adapters/memory"
	"github.com/broasteria/broasteria/internal/domains/locations/domain"
	"github.com/broasteria/broasteria/internal/domains/locations/ports"
)

// Central Lima coordinates used across the cases.
const (
	limaLat = -12.0464
	limaLng = -77.0428
)

func newLocService() *Service {
	return NewService(memory.NewRepository(),
		WithClock(func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }))
}

func seedBranch(t *testing.T, svc *Service, name string, lat, lng, radius float64) *domain.Location {
	t.Helper()
	loc, err := svc.CreateLocation(context.Background(), ports.CreateLocationInput{
		TenantID:              "tenant-1",
		Name:                  name,
		Latitude:              lat,
		Longitude:             lng,
		DeliveryRadiusKm:      radius,
		MinimumOrder:          20,
		DeliveryFee:           5,
		FreeDeliveryThreshold: 100,
	})
	require.NoError(t, err)
	return loc
}

func TestDistanceKm_IdenticalPointsAreZero(t *testing.T) {
	loc, err := domain.NewLocation("id", "t", "Centro", limaLat, limaLng, time.Now())
	require.NoError(t, err)
	require.Zero(t, loc.DistanceKm(limaLat, limaLng))
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	loc, err := domain.NewLocation("id", "t", "Centro", limaLat, limaLng, time.Now())
	require.NoError(t, err)
	// Central Lima to the Callao side, roughly 8 km.
	dist := loc.DistanceKm(-12.0566, -77.1181)
	require.InDelta(t, 8.3, dist, 1.0)
}

func TestCheckAvailability_InsideRadius(t *testing.T) {
	svc := newLocService()
	seedBranch(t, svc, "Centro", limaLat, limaLng, 5)

	avail, err := svc.CheckAvailability(context.Background(), "tenant-1", limaLat+0.01, limaLng, 50)
	require.NoError(t, err)
	require.True(t, avail.Available)
	require.Equal(t, "Centro", avail.Location.Name)
	require.InDelta(t, 5.0, avail.DeliveryFee, 1e-9)
}

func TestCheckAvailability_FreeDeliveryThreshold(t *testing.T) {
	svc := newLocService()
	seedBranch(t, svc, "Centro", limaLat, limaLng, 5)

	avail, err := svc.CheckAvailability(context.Background(), "tenant-1", limaLat, limaLng, 150)
	require.NoError(t, err)
	require.True(t, avail.Available)
	require.Zero(t, avail.DeliveryFee)
}

func TestCheckAvailability_OutsideRadius(t *testing.T) {
	svc := newLocService()
	seedBranch(t, svc, "Centro", limaLat, limaLng, 5)

	// A point well over 5 km away.
	avail, err := svc.CheckAvailability(context.Background(), "tenant-1", limaLat+0.5, limaLng, 50)
	require.NoError(t, err)
	require.False(t, avail.Available)
	require.Contains(t, avail.Reason, "outside delivery radius")
}

func TestCheckAvailability_BelowMinimum(t *testing.T) {
	svc := newLocService()
	seedBranch(t, svc, "Centro", limaLat, limaLng, 5)

	avail, err := svc.CheckAvailability(context.Background(), "tenant-1", limaLat, limaLng, 10)
	require.NoError(t, err)
	require.False(t, avail.Available)
	require.Contains(t, avail.Reason, "below minimum")
}

func TestCheckAvailability_PicksNearestBranch(t *testing.T) {
	svc := newLocService()
	seedBranch(t, svc, "Centro", limaLat, limaLng, 5)
	seedBranch(t, svc, "Miraflores", -12.1211, -77.0297, 5)

	avail, err := svc.CheckAvailability(context.Background(), "tenant-1", -12.12, -77.03, 50)
	require.NoError(t, err)
	require.True(t, avail.Available)
	require.Equal(t, "Miraflores", avail.Location.Name)
}

func TestCheckAvailability_Errors(t *testing.T) {
	svc := newLocService()

	_, err := svc.CheckAvailability(context.Background(), "tenant-1", limaLat, limaLng, 50)
	require.ErrorIs(t, err, ErrNoBranches)

	seedBranch(t, svc, "Centro", limaLat, limaLng, 5)
	_, err = svc.CheckAvailability(context.Background(), "tenant-1", 123, limaLng, 50)
	require.ErrorIs(t, err, ErrValidation)
}

func TestSetActive_InactiveBranchDoesNotDeliver(t *testing.T) {
	svc := newLocService()
	loc := seedBranch(t, svc, "Centro", limaLat, limaLng, 5)

	_, err := svc.SetActive(context.Background(), "tenant-1", loc.ID, false)
	require.NoError(t, err)

	avail, err := svc.CheckAvailability(context.Background(), "tenant-1", limaLat, limaLng, 50)
	require.NoError(t, err)
	require.False(t, avail.Available)
}
