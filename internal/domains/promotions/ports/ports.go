package ports

import (
	"context"
	"errors"
	"time"

	"github.com/broasteria/broasteria/internal/domains/promotions/domain"
)

var ErrNotFound = errors.New("promotion not found")

// Repository persists promotions partitioned by tenant.
type Repository interface {
	Save(ctx context.Context, promo *domain.Promotion) (*domain.Promotion, error)
	Get(ctx context.Context, tenantID, promoID string) (*domain.Promotion, error)
	GetByCode(ctx context.Context, tenantID, code string) (*domain.Promotion, error)
	Update(ctx context.Context, promo *domain.Promotion) (*domain.Promotion, error)
	Delete(ctx context.Context, tenantID, promoID string) error
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.Promotion, error)
}

// CreatePromotionInput carries the fields a manager sets on a new promotion.
type CreatePromotionInput struct {
	TenantID     string
	Code         string
	Name         string
	Description  string
	Type         string
	Value        float64
	MinimumOrder float64
	MaxDiscount  float64
	ValidFrom    time.Time
	ValidUntil   time.Time
	UsageLimit   int
}

// Redemption is the outcome of validating a code against a subtotal.
type Redemption struct {
	Promotion *domain.Promotion
	Discount  float64
	NewTotal  float64
}

// Service exposes promotion management and code redemption.
type Service interface {
	CreatePromotion(ctx context.Context, input CreatePromotionInput) (*domain.Promotion, error)
	GetPromotion(ctx context.Context, tenantID, promoID string) (*domain.Promotion, error)
	ListPromotions(ctx context.Context, tenantID string) ([]*domain.Promotion, error)
	SetActive(ctx context.Context, tenantID, promoID string, active bool) (*domain.Promotion, error)
	DeletePromotion(ctx context.Context, tenantID, promoID string) error
	// ValidateCode checks a code against a subtotal and returns the
	// discount without consuming a redemption.
	ValidateCode(ctx context.Context, tenantID, code string, subtotal float64) (*Redemption, error)
	// RedeemCode validates and consumes one redemption.
	RedeemCode(ctx context.Context, tenantID, code string, subtotal float64) (*Redemption, error)
}
