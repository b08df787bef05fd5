package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/broasteria/broasteria/internal/domains/locations/domain"
	"github.com/broasteria/broasteria/internal/domains/locations/ports"
)

var (
	ErrValidation = errors.New("invalid location input")
	ErrNotFound   = errors.New("location not found")
	ErrNoBranches = errors.New("tenant has no locations")
)

// Service manages branches and answers delivery availability queries.
type Service struct {
	repo   ports.Repository
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: slog.Default(),
		now:    time.Now,
		newID:  func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) CreateLocation(ctx context.Context, input ports.CreateLocationInput) (*domain.Location, error) {
	if input.TenantID == "" {
		return nil, fmt.Errorf("%w: tenantId is required", ErrValidation)
	}
	loc, err := domain.NewLocation(s.newID(), input.TenantID, input.Name, input.Latitude, input.Longitude, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	loc.Address = input.Address
	loc.Phone = input.Phone
	loc.DeliveryRadiusKm = input.DeliveryRadiusKm
	loc.MinimumOrder = input.MinimumOrder
	loc.DeliveryFee = input.DeliveryFee
	loc.FreeDeliveryThreshold = input.FreeDeliveryThreshold

	saved, err := s.repo.Save(ctx, loc)
	if err != nil {
		return nil, err
	}
	s.logger.Info("location created",
		slog.String("tenantId", saved.TenantID),
		slog.String("locationId", saved.ID),
		slog.String("name", saved.Name))
	return saved, nil
}

func (s *Service) GetLocation(ctx context.Context, tenantID, locationID string) (*domain.Location, error) {
	loc, err := s.repo.Get(ctx, tenantID, locationID)
	if err != nil {
		return nil, mapError(err)
	}
	return loc, nil
}

func (s *Service) ListLocations(ctx context.Context, tenantID string) ([]*domain.Location, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

func (s *Service) SetActive(ctx context.Context, tenantID, locationID string, active bool) (*domain.Location, error) {
	loc, err := s.repo.Get(ctx, tenantID, locationID)
	if err != nil {
		return nil, mapError(err)
	}
	loc.Active = active
	loc.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, loc)
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

func (s *Service) DeleteLocation(ctx context.Context, tenantID, locationID string) error {
	if err := s.repo.Delete(ctx, tenantID, locationID); err != nil {
		return mapError(err)
	}
	return nil
}

// CheckAvailability finds the nearest branch to a customer coordinate
// and reports whether it delivers there and at what fee.
func (s *Service) CheckAvailability(ctx context.Context, tenantID string, lat, lng, subtotal float64) (*ports.Availability, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, domain.ErrBadCoords)
	}
	branches, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(branches) == 0 {
		return nil, ErrNoBranches
	}

	var nearest *domain.Location
	nearestDist := 0.0
	for _, branch := range branches {
		dist := branch.DistanceKm(lat, lng)
		if nearest == nil || dist < nearestDist {
			nearest, nearestDist = branch, dist
		}
	}

	avail := &ports.Availability{
		Location:     nearest,
		DistanceKm:   nearestDist,
		MinimumOrder: nearest.MinimumOrder,
	}
	switch {
	case !nearest.Delivers(lat, lng):
		avail.Reason = fmt.Sprintf("outside delivery radius of %s (%.1f km away)", nearest.Name, nearestDist)
	case subtotal > 0 && subtotal < nearest.MinimumOrder:
		avail.Reason = fmt.Sprintf("order below minimum of %.2f", nearest.MinimumOrder)
	default:
		avail.Available = true
		avail.DeliveryFee = nearest.FeeFor(subtotal)
	}
	return avail, nil
}

func mapError(err error) error {
	if errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

var _ ports.Service = (*Service)(nil)
