package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ordermemory "github.com/broasteria/broasteria/internal/domains/orders/adapters/memory"
	orderdomain "github.com/broasteria/broasteria/internal/domains/orders/domain"
)

var reportNow = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func seedOrder(t *testing.T, repo *ordermemory.Repository, id string, createdAt time.Time, items []orderdomain.LineItem) *orderdomain.Order {
	t.Helper()
	order, err := orderdomain.NewOrder(id, "tenant-1", "cust-1", items, 5, 0, "addr", createdAt)
	require.NoError(t, err)
	saved, err := repo.Save(context.Background(), order)
	require.NoError(t, err)
	return saved
}

func TestBuildDashboard(t *testing.T) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo, WithClock(func() time.Time { return reportNow }))
	ctx := context.Background()

	combo := []orderdomain.LineItem{{ItemID: "combo", Name: "Combo", Price: 30, Quantity: 2}}
	drink := []orderdomain.LineItem{{ItemID: "drink", Name: "Drink", Price: 5, Quantity: 1}}

	// One completed order from today.
	completed := seedOrder(t, repo, "o1", reportNow.Add(-2*time.Hour), combo)
	require.NoError(t, completed.ApplyTransition(orderdomain.StatusReceived, "", "", "", reportNow.Add(-100*time.Minute)))
	require.NoError(t, completed.ApplyTransition(orderdomain.StatusCooking, "", "", "", reportNow.Add(-90*time.Minute)))
	require.NoError(t, completed.ApplyTransition(orderdomain.StatusPacking, "", "", "", reportNow.Add(-80*time.Minute)))
	require.NoError(t, completed.ApplyTransition(orderdomain.StatusDelivery, "", "", "", reportNow.Add(-70*time.Minute)))
	require.NoError(t, completed.ApplyTransition(orderdomain.StatusCompleted, "", "", "", reportNow.Add(-60*time.Minute)))
	completed.FinishFulfillment(reportNow.Add(-60 * time.Minute))
	_, err := repo.Update(ctx, completed, -1)
	require.NoError(t, err)

	// One active order from today.
	seedOrder(t, repo, "o2", reportNow.Add(-time.Hour), drink)

	// One cancelled order from yesterday with a pending refund.
	cancelled := seedOrder(t, repo, "o3", reportNow.Add(-30*time.Hour), combo)
	require.NoError(t, cancelled.Cancel("test", "cust-1", true, reportNow.Add(-29*time.Hour)))
	_, err = repo.Update(ctx, cancelled, -1)
	require.NoError(t, err)

	dash, err := svc.BuildDashboard(ctx, "tenant-1")
	require.NoError(t, err)

	require.Equal(t, 3, dash.TotalOrders)
	require.Equal(t, 1, dash.ActiveOrders)
	require.Equal(t, 1, dash.ByStatus["COMPLETED"])
	require.Equal(t, 1, dash.ByStatus["PENDING"])
	require.Equal(t, 1, dash.ByStatus["CANCELLED"])
	require.Equal(t, 2, dash.TodayOrders)
	// Completed 60*1.18+5 plus pending 5*1.18+5; cancelled is excluded.
	require.InDelta(t, 60*1.18+5+5*1.18+5, dash.TodayRevenue, 1e-9)
	require.InDelta(t, 60.0, dash.AverageMinutes, 1e-9)
	require.Equal(t, 1, dash.Cancellations.Count)
	require.Equal(t, 1, dash.Cancellations.RefundsPending)

	require.Equal(t, "combo", dash.TopItems[0].ItemID)
	require.Equal(t, 4, dash.TopItems[0].Quantity)
}

func TestWorkflowStats(t *testing.T) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo, WithClock(func() time.Time { return reportNow }))
	ctx := context.Background()

	items := []orderdomain.LineItem{{ItemID: "combo", Name: "Combo", Price: 30, Quantity: 1}}
	order := seedOrder(t, repo, "o1", reportNow.Add(-time.Hour), items)
	order.OpenStep(orderdomain.StatusCooking, "s1", "Jose", reportNow.Add(-50*time.Minute))
	order.OpenStep(orderdomain.StatusPacking, "s2", "Maria", reportNow.Add(-30*time.Minute))
	// Packing step stays open and must not be counted.
	_, err := repo.Update(ctx, order, -1)
	require.NoError(t, err)

	stats, err := svc.WorkflowStats(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	require.Equal(t, "COOKING", stats[0].Step)
	require.Equal(t, 1, stats[0].Count)
	require.InDelta(t, 20.0, stats[0].AverageMinutes, 1e-9)
}

func TestTodayStats(t *testing.T) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo, WithClock(func() time.Time { return reportNow }))
	ctx := context.Background()

	combo := []orderdomain.LineItem{{ItemID: "combo", Name: "Combo", Price: 30, Quantity: 1}}

	// Two orders this morning, one cancelled this afternoon, one from
	// yesterday that must not appear.
	seedOrder(t, repo, "o1", reportNow.Add(-8*time.Hour), combo)
	seedOrder(t, repo, "o2", reportNow.Add(-8*time.Hour), combo)
	cancelled := seedOrder(t, repo, "o3", reportNow.Add(-2*time.Hour), combo)
	require.NoError(t, cancelled.Cancel("test", "cust-1", false, reportNow.Add(-time.Hour)))
	_, err := repo.Update(ctx, cancelled, -1)
	require.NoError(t, err)
	seedOrder(t, repo, "o4", reportNow.Add(-30*time.Hour), combo)

	stats, err := svc.TodayStats(ctx, "tenant-1")
	require.NoError(t, err)

	require.Equal(t, "2026-03-14", stats.Date)
	require.Equal(t, 3, stats.Orders)
	require.Equal(t, 2, stats.ByStatus["PENDING"])
	require.Equal(t, 1, stats.ByStatus["CANCELLED"])
	perOrder := 30*1.18 + 5
	require.InDelta(t, 2*perOrder, stats.Revenue, 1e-9)
	require.InDelta(t, perOrder, stats.AverageTicket, 1e-9)

	require.Len(t, stats.Hourly, 2)
	require.Equal(t, 10, stats.Hourly[0].Hour)
	require.Equal(t, 2, stats.Hourly[0].Orders)
	require.InDelta(t, 2*perOrder, stats.Hourly[0].Revenue, 1e-9)
	require.Equal(t, 16, stats.Hourly[1].Hour)
	require.Equal(t, 1, stats.Hourly[1].Orders)
	require.Zero(t, stats.Hourly[1].Revenue)
}

func TestBuildDashboard_Empty(t *testing.T) {
	svc := NewService(ordermemory.NewRepository())
	dash, err := svc.BuildDashboard(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Zero(t, dash.TotalOrders)
	require.Empty(t, dash.TopItems)
}
