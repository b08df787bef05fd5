package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNameRequired = errors.New("menu item name is required")
	ErrBadPrice     = errors.New("menu item price must be non-negative")
)

// Categories the kitchen actually works with. Free-form values are
// allowed; these are the ones the seeder and dashboards group by.
const (
	CategoryChicken  = "chicken"
	CategorySides    = "sides"
	CategoryDrinks   = "drinks"
	CategoryDesserts = "desserts"
	CategoryCombos   = "combos"
)

// Item is one sellable entry on a tenant's menu.
type Item struct {
	ID          string
	TenantID    string
	Name        string
	Description string
	Category    string
	Price       float64
	Available   bool
	ImageURL    string
	// PreparationMinutes feeds the order's delivery estimate.
	PreparationMinutes int
	Tags               []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewItem validates and builds a menu item, available by default.
func NewItem(id, tenantID, name, category string, price float64, now time.Time) (*Item, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if price < 0 {
		return nil, fmt.Errorf("%w: %.2f", ErrBadPrice, price)
	}
	return &Item{
		ID:        id,
		TenantID:  tenantID,
		Name:      name,
		Category:  category,
		Price:     price,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
