package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/broasteria/broasteria/internal/domains/promotions/domain"
	"github.com/broasteria/broasteria/internal/domains/promotions/ports"
)

var (
	ErrValidation = errors.New("invalid promotion input")
	ErrNotFound   = errors.New("promotion not found")
	// ErrNotRedeemable wraps every gate failure during code validation
	// (inactive, expired, below minimum, usage exhausted).
	ErrNotRedeemable = errors.New("promotion not redeemable")
)

// Service manages promotions and code redemption for a tenant.
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

func (s *Service) CreatePromotion(ctx context.Context, input ports.CreatePromotionInput) (*domain.Promotion, error) {
	if input.TenantID == "" {
		return nil, fmt.Errorf("%w: tenantId is required", ErrValidation)
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	promo, err := domain.NewPromotion(s.newID(), input.TenantID, code, input.Name, input.Type, input.Value, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	promo.Description = input.Description
	promo.MinimumOrder = input.MinimumOrder
	promo.MaxDiscount = input.MaxDiscount
	promo.ValidFrom = input.ValidFrom
	promo.ValidUntil = input.ValidUntil
	promo.UsageLimit = input.UsageLimit

	saved, err := s.repo.Save(ctx, promo)
	if err != nil {
		return nil, err
	}
	s.logger.Info("promotion created",
		slog.String("tenantId", saved.TenantID),
		slog.String("code", saved.Code),
		slog.String("type", saved.Type))
	return saved, nil
}

func (s *Service) GetPromotion(ctx context.Context, tenantID, promoID string) (*domain.Promotion, error) {
	promo, err := s.repo.Get(ctx, tenantID, promoID)
	if err != nil {
		return nil, mapError(err)
	}
	return promo, nil
}

func (s *Service) ListPromotions(ctx context.Context, tenantID string) ([]*domain.Promotion, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

func (s *Service) SetActive(ctx context.Context, tenantID, promoID string, active bool) (*domain.Promotion, error) {
	promo, err := s.repo.Get(ctx, tenantID, promoID)
	if err != nil {
		return nil, mapError(err)
	}
	promo.Active = active
	promo.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, promo)
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

func (s *Service) DeletePromotion(ctx context.Context, tenantID, promoID string) error {
	if err := s.repo.Delete(ctx, tenantID, promoID); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Service) ValidateCode(ctx context.Context, tenantID, code string, subtotal float64) (*ports.Redemption, error) {
	return s.redeem(ctx, tenantID, code, subtotal, false)
}

func (s *Service) RedeemCode(ctx context.Context, tenantID, code string, subtotal float64) (*ports.Redemption, error) {
	return s.redeem(ctx, tenantID, code, subtotal, true)
}

func (s *Service) redeem(ctx context.Context, tenantID, code string, subtotal float64, consume bool) (*ports.Redemption, error) {
	promo, err := s.repo.GetByCode(ctx, tenantID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, mapError(err)
	}
	if err := promo.Redeemable(subtotal, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotRedeemable, err)
	}
	discount := promo.Discount(subtotal)
	if consume {
		promo.UsedCount++
		promo.UpdatedAt = s.now().UTC()
		if promo, err = s.repo.Update(ctx, promo); err != nil {
			return nil, mapError(err)
		}
		s.logger.Info("promotion redeemed",
			slog.String("tenantId", tenantID),
			slog.String("code", promo.Code),
			slog.Float64("discount", discount))
	}
	return &ports.Redemption{
		Promotion: promo,
		Discount:  discount,
		NewTotal:  subtotal - discount,
	}, nil
}

func mapError(err error) error {
	if errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

var _ ports.Service = (*Service)(nil)
