package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testItems = []LineItem{
	{ItemID: "item-1", Name: "Pollo a la brasa", Price: 25.0, Quantity: 2},
	{ItemID: "item-2", Name: "Inca Kola", Price: 5.0, Quantity: 1},
}

func TestNewOrder_ComputesTotals(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	order, err := NewOrder("01HXYZABCDEFGH", "tenant-1", "cust-1", testItems, 5.0, 2.0, "Av. Arequipa 123", now)
	require.NoError(t, err)

	require.InDelta(t, 55.0, order.Subtotal, 1e-9)
	require.InDelta(t, 9.9, order.Tax, 1e-9)
	require.InDelta(t, 71.9, order.Total, 1e-9)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, "BR-20260314-01HXYZAB", order.OrderNumber)
	require.Len(t, order.StatusHistory, 1)
	require.Equal(t, "Order placed by customer", order.StatusHistory[0].Message)
}

func TestNewOrder_RejectsEmptyAndInvalidItems(t *testing.T) {
	now := time.Now()
	_, err := NewOrder("id", "t", "c", nil, 5, 0, "addr", now)
	require.ErrorIs(t, err, ErrNoItems)

	bad := []LineItem{{ItemID: "x", Price: 10, Quantity: 0}}
	_, err = NewOrder("id", "t", "c", bad, 5, 0, "addr", now)
	require.ErrorIs(t, err, ErrInvalidItem)

	negative := []LineItem{{ItemID: "x", Price: -1, Quantity: 1}}
	_, err = NewOrder("id", "t", "c", negative, 5, 0, "addr", now)
	require.ErrorIs(t, err, ErrInvalidItem)
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusReceived, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCooking, false},
		{StatusReceived, StatusCooking, true},
		{StatusReceived, StatusCancelled, true},
		{StatusCooking, StatusPacking, true},
		{StatusCooking, StatusCancelled, true},
		{StatusPacking, StatusDelivery, true},
		{StatusPacking, StatusCancelled, false},
		{StatusDelivery, StatusCompleted, true},
		{StatusDelivery, StatusCancelled, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusReceived, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.allowed, CanTransitionTo(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	require.True(t, IsTerminal(StatusCompleted))
	require.True(t, IsTerminal(StatusCancelled))
	for _, s := range []Status{StatusPending, StatusReceived, StatusCooking, StatusPacking, StatusDelivery} {
		require.False(t, IsTerminal(s))
	}
	require.False(t, IsTerminal(Status("BOGUS")))
}

func TestApplyTransition_AppendsHistoryAndRejectsTerminal(t *testing.T) {
	now := time.Now().UTC()
	order, err := NewOrder("id", "t", "c", testItems, 5, 0, "addr", now)
	require.NoError(t, err)

	later := now.Add(time.Minute)
	require.NoError(t, order.ApplyTransition(StatusReceived, "staff-1", "Maria", "", later))
	require.Equal(t, StatusReceived, order.Status)
	require.Len(t, order.StatusHistory, 2)
	require.Equal(t, "Status changed to RECEIVED", order.StatusHistory[1].Message)
	require.Equal(t, "staff-1", order.StatusHistory[1].StaffID)

	err = order.ApplyTransition(Status("MADE_UP"), "", "", "", later)
	require.ErrorIs(t, err, ErrUnknownStatus)

	require.NoError(t, order.Cancel("changed my mind", "cust-1", false, later))
	err = order.ApplyTransition(StatusCooking, "", "", "", later)
	require.ErrorIs(t, err, ErrTerminalStatus)
}

func TestCancel_RefundBookkeeping(t *testing.T) {
	now := time.Now().UTC()
	order, err := NewOrder("id", "t", "c", testItems, 5, 0, "addr", now)
	require.NoError(t, err)

	require.NoError(t, order.Cancel("", "cust-1", true, now))
	require.Equal(t, StatusCancelled, order.Status)
	require.Equal(t, "No reason provided", order.CancellationReason)
	require.Equal(t, "PENDING", order.RefundStatus)
	require.NotNil(t, order.CancelledAt)

	other, err := NewOrder("id2", "t", "c", testItems, 5, 0, "addr", now)
	require.NoError(t, err)
	require.NoError(t, other.Cancel("out of stock", "staff-9", false, now))
	require.Equal(t, "NOT_APPLICABLE", other.RefundStatus)
}

func TestCancel_DisallowedAfterPacking(t *testing.T) {
	now := time.Now().UTC()
	order, err := NewOrder("id", "t", "c", testItems, 5, 0, "addr", now)
	require.NoError(t, err)
	require.NoError(t, order.ApplyTransition(StatusReceived, "", "", "", now))
	require.NoError(t, order.ApplyTransition(StatusCooking, "", "", "", now))
	require.NoError(t, order.ApplyTransition(StatusPacking, "", "", "", now))

	err = order.Cancel("too late", "cust-1", false, now)
	require.ErrorIs(t, err, ErrNotCancellable)
	require.Equal(t, StatusPacking, order.Status)
}

func TestOpenStep_ClosesPreviousStep(t *testing.T) {
	now := time.Now().UTC()
	order, err := NewOrder("id", "t", "c", testItems, 5, 0, "addr", now)
	require.NoError(t, err)

	order.OpenStep(StatusReceived, "s1", "Maria", now)
	order.OpenStep(StatusCooking, "s2", "Jose", now.Add(time.Minute))

	require.Len(t, order.Workflow.Steps, 2)
	require.NotNil(t, order.Workflow.Steps[0].EndTime)
	require.Equal(t, now.Add(time.Minute), *order.Workflow.Steps[0].EndTime)
	require.Nil(t, order.Workflow.Steps[1].EndTime)
}

func TestFinishFulfillment(t *testing.T) {
	now := time.Now().UTC()
	order, err := NewOrder("id", "t", "c", testItems, 5, 0, "addr", now)
	require.NoError(t, err)
	order.OpenStep(StatusDelivery, "s3", "Luis", now)

	done := now.Add(30 * time.Minute)
	order.FinishFulfillment(done)

	require.NotNil(t, order.Workflow.CompletedAt)
	require.InDelta(t, 30.0, order.Workflow.TotalTimeMinutes, 1e-9)
	require.Equal(t, "COMPLETED", order.PaymentStatus)
	require.NotNil(t, order.Workflow.Steps[0].EndTime)
}

func TestRecomputeTotal_WithDiscount(t *testing.T) {
	now := time.Now().UTC()
	order, err := NewOrder("id", "t", "c", testItems, 5, 3, "addr", now)
	require.NoError(t, err)
	order.Discount = 10
	order.RecomputeTotal()

	// 55 + 9.9 tax + 5 fee - 10 discount + 3 tip
	require.InDelta(t, 62.9, order.Total, 1e-9)
}
