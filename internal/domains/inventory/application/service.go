package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/broasteria/broasteria/internal/domains/inventory/domain"
	"github.com/broasteria/broasteria/internal/domains/inventory/ports"
)

var (
	ErrValidation = errors.New("invalid inventory input")
	ErrNotFound   = errors.New("stock item not found")
)

// Service tracks kitchen stock for a tenant.
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

func (s *Service) CreateStock(ctx context.Context, input ports.CreateStockInput) (*domain.Stock, error) {
	if input.TenantID == "" {
		return nil, fmt.Errorf("%w: tenantId is required", ErrValidation)
	}
	stock, err := domain.NewStock(s.newID(), input.TenantID, input.Name, input.Unit, input.Quantity, input.LowStockThreshold, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	saved, err := s.repo.Save(ctx, stock)
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock item created",
		slog.String("tenantId", saved.TenantID),
		slog.String("stockId", saved.ID),
		slog.String("name", saved.Name))
	return saved, nil
}

func (s *Service) GetStock(ctx context.Context, tenantID, stockID string) (*domain.Stock, error) {
	stock, err := s.repo.Get(ctx, tenantID, stockID)
	if err != nil {
		return nil, mapError(err)
	}
	return stock, nil
}

func (s *Service) ListStock(ctx context.Context, tenantID string) ([]*domain.Stock, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

func (s *Service) AdjustStock(ctx context.Context, input ports.AdjustStockInput) (*domain.Stock, error) {
	if input.Delta == 0 {
		return nil, fmt.Errorf("%w: delta must be non-zero", ErrValidation)
	}
	stock, err := s.repo.Get(ctx, input.TenantID, input.StockID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := stock.Adjust(input.Delta, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	updated, err := s.repo.Update(ctx, stock)
	if err != nil {
		return nil, mapError(err)
	}
	s.logger.Info("stock adjusted",
		slog.String("tenantId", input.TenantID),
		slog.String("stockId", input.StockID),
		slog.Float64("delta", input.Delta),
		slog.Float64("quantity", updated.Quantity),
		slog.String("reason", input.Reason))
	if updated.Low() {
		s.logger.Warn("stock below threshold",
			slog.String("tenantId", input.TenantID),
			slog.String("name", updated.Name),
			slog.Float64("quantity", updated.Quantity),
			slog.Float64("threshold", updated.LowStockThreshold))
	}
	return updated, nil
}

func (s *Service) LowStock(ctx context.Context, tenantID string) ([]*domain.Stock, error) {
	all, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var low []*domain.Stock
	for _, stock := range all {
		if stock.Low() {
			low = append(low, stock)
		}
	}
	return low, nil
}

func (s *Service) DeleteStock(ctx context.Context, tenantID, stockID string) error {
	if err := s.repo.Delete(ctx, tenantID, stockID); err != nil {
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
