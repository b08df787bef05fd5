package domain

import (
	"errors"
	"fmt"
	"time"
)

// Discount types.
const (
	TypePercentage = "PERCENTAGE"
	TypeFixed      = "FIXED"
)

var (
	ErrUnknownType   = errors.New("unknown promotion type")
	ErrBadValue      = errors.New("promotion value must be positive")
	ErrCodeRequired  = errors.New("promotion code is required")
	ErrInactive      = errors.New("promotion is not active")
	ErrExpired       = errors.New("promotion is outside its validity window")
	ErrBelowMinimum  = errors.New("order subtotal is below the promotion minimum")
	ErrUsageExceeded = errors.New("promotion usage limit reached")
)

// Promotion is a tenant-scoped discount rule redeemed by code.
type Promotion struct {
	ID          string
	TenantID    string
	Code        string
	Name        string
	Description string
	// Type selects the discount formula: TypePercentage reads Value as
	// a percent of the subtotal, TypeFixed as an absolute amount.
	Type         string
	Value        float64
	MinimumOrder float64
	// MaxDiscount caps percentage discounts; zero means uncapped.
	MaxDiscount float64
	ValidFrom   time.Time
	ValidUntil  time.Time
	Active      bool
	// UsageLimit caps total redemptions; zero means unlimited.
	UsageLimit int
	UsedCount  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewPromotion validates and builds an active promotion.
func NewPromotion(id, tenantID, code, name, promoType string, value float64, now time.Time) (*Promotion, error) {
	if code == "" {
		return nil, ErrCodeRequired
	}
	if promoType != TypePercentage && promoType != TypeFixed {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, promoType)
	}
	if value <= 0 {
		return nil, fmt.Errorf("%w: %.2f", ErrBadValue, value)
	}
	return &Promotion{
		ID:        id,
		TenantID:  tenantID,
		Code:      code,
		Name:      name,
		Type:      promoType,
		Value:     value,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Redeemable checks every gate short of computing the discount.
func (p *Promotion) Redeemable(subtotal float64, now time.Time) error {
	if !p.Active {
		return ErrInactive
	}
	if !p.ValidFrom.IsZero() && now.Before(p.ValidFrom) {
		return ErrExpired
	}
	if !p.ValidUntil.IsZero() && now.After(p.ValidUntil) {
		return ErrExpired
	}
	if subtotal < p.MinimumOrder {
		return fmt.Errorf("%w: need %.2f", ErrBelowMinimum, p.MinimumOrder)
	}
	if p.UsageLimit > 0 && p.UsedCount >= p.UsageLimit {
		return ErrUsageExceeded
	}
	return nil
}

// Discount computes the amount taken off the given subtotal.
// Percentage discounts are capped by MaxDiscount when set; fixed
// discounts never exceed the subtotal itself.
func (p *Promotion) Discount(subtotal float64) float64 {
	switch p.Type {
	case TypePercentage:
		discount := subtotal * p.Value / 100
		if p.MaxDiscount > 0 && discount > p.MaxDiscount {
			return p.MaxDiscount
		}
		return discount
	case TypeFixed:
		if p.Value > subtotal {
			return subtotal
		}
		return p.Value
	}
	return 0
}
