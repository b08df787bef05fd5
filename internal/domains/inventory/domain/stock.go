package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNameRequired  = errors.New("stock item name is required")
	ErrNegativeStock = errors.New("stock cannot go negative")
)

// Stock tracks one ingredient or supply for a tenant's kitchen.
type Stock struct {
	ID       string
	TenantID string
	Name     string
	// Unit is free-form: "kg", "units", "liters".
	Unit     string
	Quantity float64
	// LowStockThreshold flags the item on the low-stock report when
	// Quantity drops to or below it.
	LowStockThreshold float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewStock validates and builds a stock record.
func NewStock(id, tenantID, name, unit string, quantity, threshold float64, now time.Time) (*Stock, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: %.2f", ErrNegativeStock, quantity)
	}
	return &Stock{
		ID:                id,
		TenantID:          tenantID,
		Name:              name,
		Unit:              unit,
		Quantity:          quantity,
		LowStockThreshold: threshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Adjust applies a delta (positive restock, negative consumption) and
// rejects adjustments that would take the quantity below zero.
func (s *Stock) Adjust(delta float64, now time.Time) error {
	next := s.Quantity + delta
	if next < 0 {
		return fmt.Errorf("%w: have %.2f, requested %.2f", ErrNegativeStock, s.Quantity, -delta)
	}
	s.Quantity = next
	s.UpdatedAt = now
	return nil
}

// Low reports whether the item sits at or below its threshold.
func (s *Stock) Low() bool {
	return s.LowStockThreshold > 0 && s.Quantity <= s.LowStockThreshold
}
