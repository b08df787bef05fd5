package transport

import (
	"time"

	inventorydomain "github.com/broasteria/broasteria/internal/domains/inventory/domain"
	locationsdomain "github.com/broasteria/broasteria/internal/domains/locations/domain"
	locationsports "github.com/broasteria/broasteria/internal/domains/locations/ports"
	menudomain "github.com/broasteria/broasteria/internal/domains/menu/domain"
	promosdomain "github.com/broasteria/broasteria/internal/domains/promotions/domain"
	promosports "github.com/broasteria/broasteria/internal/domains/promotions/ports"
	usersdomain "github.com/broasteria/broasteria/internal/domains/users/domain"
)

// Views translate domain records into the wire shape. Orders serialize
// directly; the other aggregates keep their persistence-facing structs
// free of JSON concerns.

type menuItemView struct {
	ID                 string    `json:"id"`
	TenantID           string    `json:"tenantId"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	Category           string    `json:"category"`
	Price              float64   `json:"price"`
	Available          bool      `json:"available"`
	ImageURL           string    `json:"imageUrl,omitempty"`
	PreparationMinutes int       `json:"preparationMinutes,omitempty"`
	Tags               []string  `json:"tags,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func toMenuItemView(item *menudomain.Item) menuItemView {
	return menuItemView{
		ID:                 item.ID,
		TenantID:           item.TenantID,
		Name:               item.Name,
		Description:        item.Description,
		Category:           item.Category,
		Price:              item.Price,
		Available:          item.Available,
		ImageURL:           item.ImageURL,
		PreparationMinutes: item.PreparationMinutes,
		Tags:               item.Tags,
		CreatedAt:          item.CreatedAt,
		UpdatedAt:          item.UpdatedAt,
	}
}

func toMenuItemViews(items []*menudomain.Item) []menuItemView {
	views := make([]menuItemView, 0, len(items))
	for _, item := range items {
		views = append(views, toMenuItemView(item))
	}
	return views
}

type promotionView struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenantId"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Type         string    `json:"type"`
	Value        float64   `json:"value"`
	MinimumOrder float64   `json:"minimumOrder,omitempty"`
	MaxDiscount  float64   `json:"maxDiscount,omitempty"`
	ValidFrom    time.Time `json:"validFrom,omitempty"`
	ValidUntil   time.Time `json:"validUntil,omitempty"`
	Active       bool      `json:"active"`
	UsageLimit   int       `json:"usageLimit,omitempty"`
	UsedCount    int       `json:"usedCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toPromotionView(promo *promosdomain.Promotion) promotionView {
	return promotionView{
		ID:           promo.ID,
		TenantID:     promo.TenantID,
		Code:         promo.Code,
		Name:         promo.Name,
		Description:  promo.Description,
		Type:         promo.Type,
		Value:        promo.Value,
		MinimumOrder: promo.MinimumOrder,
		MaxDiscount:  promo.MaxDiscount,
		ValidFrom:    promo.ValidFrom,
		ValidUntil:   promo.ValidUntil,
		Active:       promo.Active,
		UsageLimit:   promo.UsageLimit,
		UsedCount:    promo.UsedCount,
		CreatedAt:    promo.CreatedAt,
		UpdatedAt:    promo.UpdatedAt,
	}
}

func toPromotionViews(promos []*promosdomain.Promotion) []promotionView {
	views := make([]promotionView, 0, len(promos))
	for _, promo := range promos {
		views = append(views, toPromotionView(promo))
	}
	return views
}

type redemptionView struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Discount float64 `json:"discount"`
	NewTotal float64 `json:"newTotal"`
}

func toRedemptionView(r *promosports.Redemption) redemptionView {
	return redemptionView{
		Code:     r.Promotion.Code,
		Name:     r.Promotion.Name,
		Discount: r.Discount,
		NewTotal: r.NewTotal,
	}
}

type locationView struct {
	ID                    string    `json:"id"`
	TenantID              string    `json:"tenantId"`
	Name                  string    `json:"name"`
	Address               string    `json:"address,omitempty"`
	Phone                 string    `json:"phone,omitempty"`
	Latitude              float64   `json:"latitude"`
	Longitude             float64   `json:"longitude"`
	DeliveryRadiusKm      float64   `json:"deliveryRadiusKm"`
	MinimumOrder          float64   `json:"minimumOrder,omitempty"`
	DeliveryFee           float64   `json:"deliveryFee,omitempty"`
	FreeDeliveryThreshold float64   `json:"freeDeliveryThreshold,omitempty"`
	Active                bool      `json:"active"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

func toLocationView(loc *locationsdomain.Location) locationView {
	return locationView{
		ID:                    loc.ID,
		TenantID:              loc.TenantID,
		Name:                  loc.Name,
		Address:               loc.Address,
		Phone:                 loc.Phone,
		Latitude:              loc.Latitude,
		Longitude:             loc.Longitude,
		DeliveryRadiusKm:      loc.DeliveryRadiusKm,
		MinimumOrder:          loc.MinimumOrder,
		DeliveryFee:           loc.DeliveryFee,
		FreeDeliveryThreshold: loc.FreeDeliveryThreshold,
		Active:                loc.Active,
		CreatedAt:             loc.CreatedAt,
		UpdatedAt:             loc.UpdatedAt,
	}
}

func toLocationViews(locs []*locationsdomain.Location) []locationView {
	views := make([]locationView, 0, len(locs))
	for _, loc := range locs {
		views = append(views, toLocationView(loc))
	}
	return views
}

type availabilityView struct {
	Available    bool          `json:"available"`
	Location     *locationView `json:"location,omitempty"`
	DistanceKm   float64       `json:"distanceKm"`
	DeliveryFee  float64       `json:"deliveryFee"`
	MinimumOrder float64       `json:"minimumOrder"`
	Reason       string        `json:"reason,omitempty"`
}

func toAvailabilityView(a *locationsports.Availability) availabilityView {
	view := availabilityView{
		Available:    a.Available,
		DistanceKm:   a.DistanceKm,
		DeliveryFee:  a.DeliveryFee,
		MinimumOrder: a.MinimumOrder,
		Reason:       a.Reason,
	}
	if a.Location != nil {
		loc := toLocationView(a.Location)
		view.Location = &loc
	}
	return view
}

type stockView struct {
	ID                string    `json:"id"`
	TenantID          string    `json:"tenantId"`
	Name              string    `json:"name"`
	Unit              string    `json:"unit,omitempty"`
	Quantity          float64   `json:"quantity"`
	LowStockThreshold float64   `json:"lowStockThreshold,omitempty"`
	Low               bool      `json:"low"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func toStockView(stock *inventorydomain.Stock) stockView {
	return stockView{
		ID:                stock.ID,
		TenantID:          stock.TenantID,
		Name:              stock.Name,
		Unit:              stock.Unit,
		Quantity:          stock.Quantity,
		LowStockThreshold: stock.LowStockThreshold,
		Low:               stock.Low(),
		CreatedAt:         stock.CreatedAt,
		UpdatedAt:         stock.UpdatedAt,
	}
}

func toStockViews(stocks []*inventorydomain.Stock) []stockView {
	views := make([]stockView, 0, len(stocks))
	for _, stock := range stocks {
		views = append(views, toStockView(stock))
	}
	return views
}

// userView never carries password material.
type userView struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserView(user *usersdomain.User) userView {
	return userView{
		ID:        user.ID,
		TenantID:  user.TenantID,
		Email:     user.Email,
		Name:      user.Name,
		Phone:     user.Phone,
		Role:      user.Role,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}

func toUserViews(users []*usersdomain.User) []userView {
	views := make([]userView, 0, len(users))
	for _, user := range users {
		views = append(views, toUserView(user))
	}
	return views
}
