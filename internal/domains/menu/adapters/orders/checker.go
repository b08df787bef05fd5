package orders

import (
	"context"

	menuports "github.com/broasteria/broasteria/internal/domains/menu/ports"
	orderports "github.com/broasteria/broasteria/internal/domains/orders/ports"
)

// Checker adapts the menu service to the order validation step's
// lookup contract.
type Checker struct {
	menu menuports.Service
}

func NewChecker(menu menuports.Service) *Checker {
	return &Checker{menu: menu}
}

func (c *Checker) LookupItem(ctx context.Context, tenantID, itemID string) (*orderports.MenuItemView, error) {
	item, err := c.menu.GetItem(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	return &orderports.MenuItemView{
		ItemID:    item.ID,
		Name:      item.Name,
		Price:     item.Price,
		Available: item.Available,
	}, nil
}

var _ orderports.MenuChecker = (*Checker)(nil)
