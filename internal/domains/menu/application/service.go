package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/broasteria/broasteria/internal/domains/menu/domain"
	"github.com/broasteria/broasteria/internal/domains/menu/ports"
)

var (
	ErrValidation = errors.New("invalid menu input")
	ErrNotFound   = errors.New("menu item not found")
)

// Service manages a tenant's menu.
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

func (s *Service) CreateItem(ctx context.Context, input ports.CreateItemInput) (*domain.Item, error) {
	if input.TenantID == "" {
		return nil, fmt.Errorf("%w: tenantId is required", ErrValidation)
	}
	item, err := domain.NewItem(s.newID(), input.TenantID, input.Name, input.Category, input.Price, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	item.Description = input.Description
	item.ImageURL = input.ImageURL
	item.PreparationMinutes = input.PreparationMinutes
	item.Tags = input.Tags

	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		return nil, err
	}
	s.logger.Info("menu item created",
		slog.String("tenantId", saved.TenantID),
		slog.String("itemId", saved.ID),
		slog.String("name", saved.Name))
	return saved, nil
}

func (s *Service) GetItem(ctx context.Context, tenantID, itemID string) (*domain.Item, error) {
	item, err := s.repo.Get(ctx, tenantID, itemID)
	if err != nil {
		return nil, mapError(err)
	}
	return item, nil
}

func (s *Service) ListItems(ctx context.Context, tenantID string) ([]*domain.Item, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

func (s *Service) ListByCategory(ctx context.Context, tenantID, category string) ([]*domain.Item, error) {
	return s.repo.ListByCategory(ctx, tenantID, category)
}

func (s *Service) UpdateItem(ctx context.Context, input ports.UpdateItemInput) (*domain.Item, error) {
	item, err := s.repo.Get(ctx, input.TenantID, input.ItemID)
	if err != nil {
		return nil, mapError(err)
	}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, fmt.Errorf("%w: %w", ErrValidation, domain.ErrNameRequired)
		}
		item.Name = *input.Name
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, fmt.Errorf("%w: %w", ErrValidation, domain.ErrBadPrice)
		}
		item.Price = *input.Price
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.ImageURL != nil {
		item.ImageURL = *input.ImageURL
	}
	if input.Tags != nil {
		item.Tags = input.Tags
	}
	item.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

func (s *Service) SetAvailability(ctx context.Context, tenantID, itemID string, available bool) (*domain.Item, error) {
	item, err := s.repo.Get(ctx, tenantID, itemID)
	if err != nil {
		return nil, mapError(err)
	}
	item.Available = available
	item.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, mapError(err)
	}
	s.logger.Info("menu item availability changed",
		slog.String("tenantId", tenantID),
		slog.String("itemId", itemID),
		slog.Bool("available", available))
	return updated, nil
}

func (s *Service) DeleteItem(ctx context.Context, tenantID, itemID string) error {
	if err := s.repo.Delete(ctx, tenantID, itemID); err != nil {
		return mapError(err)
	}
	return nil
}

func mapError(err error) error {
	if errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

var _ ports.Service = (*Service)(nil)
