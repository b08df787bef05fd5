package application

import (
	"context"
	"log/slog"
	"sort"
	"time"

	orderdomain "github.com/broasteria/broasteria/internal/domains/orders/domain"
	orderports "github.com/broasteria/broasteria/internal/domains/orders/ports"
)

// Dashboard is the landing-page summary for a tenant.
type Dashboard struct {
	TotalOrders    int                `json:"totalOrders"`
	ActiveOrders   int                `json:"activeOrders"`
	ByStatus       map[string]int     `json:"byStatus"`
	TodayOrders    int                `json:"todayOrders"`
	TodayRevenue   float64            `json:"todayRevenue"`
	AverageMinutes float64            `json:"averageFulfillmentMinutes"`
	TopItems       []ItemCount        `json:"topItems"`
	StaffLoad      map[string]int     `json:"staffLoad"`
	Cancellations  CancellationsStats `json:"cancellations"`
	HourlyToday    []HourlyBucket     `json:"hourlyToday"`
}

// HourlyBucket counts one clock hour of today's orders and revenue.
type HourlyBucket struct {
	Hour    int     `json:"hour"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// TodayStats is the day-level slice of order activity.
type TodayStats struct {
	Date          string         `json:"date"`
	Orders        int            `json:"orders"`
	Revenue       float64        `json:"revenue"`
	AverageTicket float64        `json:"averageTicket"`
	ByStatus      map[string]int `json:"byStatus"`
	Hourly        []HourlyBucket `json:"hourly"`
}

// ItemCount ranks an item by units sold.
type ItemCount struct {
	ItemID   string `json:"itemId"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// CancellationsStats summarizes cancelled orders.
type CancellationsStats struct {
	Count          int `json:"count"`
	RefundsPending int `json:"refundsPending"`
}

// StepStats aggregates one workflow stage across completed orders.
type StepStats struct {
	Step           string  `json:"step"`
	Count          int     `json:"count"`
	AverageMinutes float64 `json:"averageMinutes"`
}

// Service computes read-side reports as pure reductions over the order
// store; nothing here mutates state.
type Service struct {
	orders orderports.Repository
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(orders orderports.Repository, opts ...Option) *Service {
	s := &Service{
		orders: orders,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// BuildDashboard assembles the tenant dashboard from all orders.
func (s *Service) BuildDashboard(ctx context.Context, tenantID string) (*Dashboard, error) {
	orders, err := s.orders.ListByTenant(ctx, tenantID, 0)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	today := now.Truncate(24 * time.Hour)

	dash := &Dashboard{
		TotalOrders: len(orders),
		ByStatus:    map[string]int{},
		StaffLoad:   map[string]int{},
	}
	itemCounts := map[string]*ItemCount{}
	hourly := map[int]*HourlyBucket{}
	var completedMinutes float64
	var completedCount int

	for _, order := range orders {
		dash.ByStatus[string(order.Status)]++
		if order.Active() {
			dash.ActiveOrders++
			for _, staff := range order.Workflow.AssignedStaff {
				dash.StaffLoad[staff.StaffName]++
			}
		}
		if !order.CreatedAt.Before(today) {
			dash.TodayOrders++
			if order.Status != orderdomain.StatusCancelled {
				dash.TodayRevenue += order.Total
			}
			bucketOrder(hourly, order)
		}
		if order.Status == orderdomain.StatusCompleted && order.Workflow.TotalTimeMinutes > 0 {
			completedMinutes += order.Workflow.TotalTimeMinutes
			completedCount++
		}
		if order.Status == orderdomain.StatusCancelled {
			dash.Cancellations.Count++
			if order.RefundStatus == "PENDING" {
				dash.Cancellations.RefundsPending++
			}
		}
		for _, item := range order.Items {
			entry, ok := itemCounts[item.ItemID]
			if !ok {
				entry = &ItemCount{ItemID: item.ItemID, Name: item.Name}
				itemCounts[item.ItemID] = entry
			}
			entry.Quantity += item.Quantity
		}
	}
	if completedCount > 0 {
		dash.AverageMinutes = completedMinutes / float64(completedCount)
	}
	dash.TopItems = topItems(itemCounts, 5)
	dash.HourlyToday = sortedBuckets(hourly)
	return dash, nil
}

// TodayStats reduces today's orders into a day report. Cancelled
// orders count toward volume but never toward revenue.
func (s *Service) TodayStats(ctx context.Context, tenantID string) (*TodayStats, error) {
	orders, err := s.orders.ListByTenant(ctx, tenantID, 0)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	today := now.Truncate(24 * time.Hour)

	stats := &TodayStats{
		Date:     today.Format("2006-01-02"),
		ByStatus: map[string]int{},
	}
	hourly := map[int]*HourlyBucket{}
	var revenueOrders int
	for _, order := range orders {
		if order.CreatedAt.Before(today) {
			continue
		}
		stats.Orders++
		stats.ByStatus[string(order.Status)]++
		if order.Status != orderdomain.StatusCancelled {
			stats.Revenue += order.Total
			revenueOrders++
		}
		bucketOrder(hourly, order)
	}
	if revenueOrders > 0 {
		stats.AverageTicket = stats.Revenue / float64(revenueOrders)
	}
	stats.Hourly = sortedBuckets(hourly)
	return stats, nil
}

func bucketOrder(hourly map[int]*HourlyBucket, order *orderdomain.Order) {
	hour := order.CreatedAt.UTC().Hour()
	bucket, ok := hourly[hour]
	if !ok {
		bucket = &HourlyBucket{Hour: hour}
		hourly[hour] = bucket
	}
	bucket.Orders++
	if order.Status != orderdomain.StatusCancelled {
		bucket.Revenue += order.Total
	}
}

func sortedBuckets(hourly map[int]*HourlyBucket) []HourlyBucket {
	buckets := make([]HourlyBucket, 0, len(hourly))
	for _, bucket := range hourly {
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Hour < buckets[j].Hour })
	return buckets
}

// WorkflowStats reports per-step average durations across all orders
// that have closed steps.
func (s *Service) WorkflowStats(ctx context.Context, tenantID string) ([]StepStats, error) {
	orders, err := s.orders.ListByTenant(ctx, tenantID, 0)
	if err != nil {
		return nil, err
	}
	type acc struct {
		count   int
		minutes float64
	}
	byStep := map[orderdomain.Status]*acc{}
	for _, order := range orders {
		for _, step := range order.Workflow.Steps {
			if step.EndTime == nil {
				continue
			}
			entry, ok := byStep[step.Step]
			if !ok {
				entry = &acc{}
				byStep[step.Step] = entry
			}
			entry.count++
			entry.minutes += step.EndTime.Sub(step.StartTime).Minutes()
		}
	}

	var stats []StepStats
	for _, status := range orderdomain.AllStatuses() {
		entry, ok := byStep[status]
		if !ok {
			continue
		}
		stats = append(stats, StepStats{
			Step:           string(status),
			Count:          entry.count,
			AverageMinutes: entry.minutes / float64(entry.count),
		})
	}
	return stats, nil
}

func topItems(counts map[string]*ItemCount, limit int) []ItemCount {
	items := make([]ItemCount, 0, len(counts))
	for _, entry := range counts {
		items = append(items, *entry)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Quantity != items[j].Quantity {
			return items[i].Quantity > items[j].Quantity
		}
		return items[i].ItemID < items[j].ItemID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
