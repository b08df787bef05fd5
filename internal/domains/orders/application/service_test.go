package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/broasteria/broasteria/internal/domains/orders/domain"
	"github.com/broasteria/broasteria/internal/domains/orders/ports"
)

type fakeOrderRepo struct {
	orders   map[string]*domain.Order
	versions map[string]int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}, versions: map[string]int64{}}
}

func repoKey(tenantID, orderID string) string { return tenantID + "/" + orderID }

func (f *fakeOrderRepo) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	clone := *order
	clone.Version = 1
	f.orders[repoKey(order.TenantID, order.ID)] = &clone
	f.versions[repoKey(order.TenantID, order.ID)] = 1
	out := clone
	return &out, nil
}

func (f *fakeOrderRepo) Get(_ context.Context, tenantID, orderID string) (*domain.Order, error) {
	if o, ok := f.orders[repoKey(tenantID, orderID)]; ok {
		clone := *o
		return &clone, nil
	}
	return nil, ports.ErrNotFound
}

func (f *fakeOrderRepo) Update(_ context.Context, order *domain.Order, expectedVersion int64) (*domain.Order, error) {
	key := repoKey(order.TenantID, order.ID)
	stored, ok := f.orders[key]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if expectedVersion >= 0 && stored.Version != expectedVersion {
		return nil, ports.ErrVersionConflict
	}
	clone := *order
	clone.Version = stored.Version + 1
	f.orders[key] = &clone
	out := clone
	return &out, nil
}

func (f *fakeOrderRepo) ListByTenant(_ context.Context, tenantID string, limit int) ([]*domain.Order, error) {
	var list []*domain.Order
	for _, o := range f.orders {
		if o.TenantID == tenantID {
			clone := *o
			list = append(list, &clone)
		}
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (f *fakeOrderRepo) ListByStatus(_ context.Context, tenantID string, status domain.Status) ([]*domain.Order, error) {
	var list []*domain.Order
	for _, o := range f.orders {
		if o.TenantID == tenantID && o.Status == status {
			clone := *o
			list = append(list, &clone)
		}
	}
	return list, nil
}

func (f *fakeOrderRepo) ListByCustomer(_ context.Context, tenantID, customerID string) ([]*domain.Order, error) {
	var list []*domain.Order
	for _, o := range f.orders {
		if o.TenantID == tenantID && o.CustomerID == customerID {
			clone := *o
			list = append(list, &clone)
		}
	}
	return list, nil
}

type capturePublisher struct {
	events []domain.Event
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, event domain.Event) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

type captureBroadcaster struct {
	messages []any
	err      error
}

func (c *captureBroadcaster) Broadcast(_ context.Context, _ string, message any) (ports.BroadcastResult, error) {
	if c.err != nil {
		return ports.BroadcastResult{}, c.err
	}
	c.messages = append(c.messages, message)
	return ports.BroadcastResult{SuccessCount: 1, TotalConnections: 1}, nil
}

type fakeMenu struct {
	items map[string]*ports.MenuItemView
}

func (f *fakeMenu) LookupItem(_ context.Context, _, itemID string) (*ports.MenuItemView, error) {
	if item, ok := f.items[itemID]; ok {
		return item, nil
	}
	return nil, errors.New("menu item not found")
}

func testCreateInput() ports.CreateOrderInput {
	return ports.CreateOrderInput{
		TenantID:        "tenant-1",
		CustomerID:      "cust-1",
		CustomerName:    "Ana",
		Items:           []domain.LineItem{{ItemID: "item-1", Name: "Combo", Price: 20, Quantity: 2}},
		DeliveryAddress: "Av. Arequipa 123",
	}
}

func newTestService(repo ports.Repository, opts ...Option) *Service {
	base := []Option{
		WithClock(func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }),
		WithIDGenerator(func() string { return "01TESTORDERID" }),
	}
	return NewService(repo, append(base, opts...)...)
}

func TestCreateOrder_PersistsAndNotifies(t *testing.T) {
	repo := newFakeOrderRepo()
	pub := &capturePublisher{}
	bcast := &captureBroadcaster{}
	svc := newTestService(repo, WithEventPublisher(pub), WithBroadcaster(bcast))

	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, order.Status)
	require.InDelta(t, 5.0, order.DeliveryFee, 1e-9)
	require.InDelta(t, 40*1.18+5, order.Total, 1e-9)
	require.Equal(t, "BR-20260314-01TESTOR", order.OrderNumber)

	require.Len(t, pub.events, 1)
	require.Equal(t, domain.EventOrderCreated, pub.events[0].Type)
	require.Len(t, bcast.messages, 1)
}

func TestCreateOrder_ValidatesInput(t *testing.T) {
	svc := newTestService(newFakeOrderRepo())

	input := testCreateInput()
	input.TenantID = ""
	_, err := svc.CreateOrder(context.Background(), input)
	require.ErrorIs(t, err, ErrValidation)

	input = testCreateInput()
	input.DeliveryAddress = ""
	_, err = svc.CreateOrder(context.Background(), input)
	require.ErrorIs(t, err, ErrValidation)

	input = testCreateInput()
	input.Items = nil
	_, err = svc.CreateOrder(context.Background(), input)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateOrder_SideEffectFailuresDoNotFailCreate(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo,
		WithEventPublisher(&capturePublisher{err: errors.New("bus down")}),
		WithBroadcaster(&captureBroadcaster{err: errors.New("gateway down")}))

	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)

	stored, err := repo.Get(context.Background(), order.TenantID, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, stored.Status)
}

func TestTransition_HappyPath(t *testing.T) {
	repo := newFakeOrderRepo()
	pub := &capturePublisher{}
	svc := newTestService(repo, WithEventPublisher(pub))

	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)

	updated, err := svc.Transition(context.Background(), ports.TransitionInput{
		TenantID: order.TenantID,
		OrderID:  order.ID,
		Target:   domain.StatusReceived,
		StaffID:  "staff-1",
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusReceived, updated.Status)
	require.Len(t, updated.StatusHistory, 2)

	last := pub.events[len(pub.events)-1]
	require.Equal(t, domain.EventOrderStatusChanged, last.Type)
	require.Equal(t, "PENDING", last.Payload["oldStatus"])
	require.Equal(t, "RECEIVED", last.Payload["newStatus"])
}

func TestTransition_RejectsUnknownStatusAndMissingOrder(t *testing.T) {
	svc := newTestService(newFakeOrderRepo())

	_, err := svc.Transition(context.Background(), ports.TransitionInput{
		TenantID: "tenant-1", OrderID: "o1", Target: domain.Status("BOGUS"),
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Transition(context.Background(), ports.TransitionInput{
		TenantID: "tenant-1", OrderID: "ghost", Target: domain.StatusReceived,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTransition_ExpectedCurrentGate(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo)
	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), ports.TransitionInput{
		TenantID:        order.TenantID,
		OrderID:         order.ID,
		Target:          domain.StatusCooking,
		ExpectedCurrent: domain.StatusReceived,
	})
	require.ErrorIs(t, err, ErrStateConflict)

	var conflict *StateConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, domain.StatusPending, conflict.Current)
}

func TestTransition_RejectsSkippedStates(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo)
	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), ports.TransitionInput{
		TenantID: order.TenantID, OrderID: order.ID, Target: domain.StatusCooking,
	})
	require.ErrorIs(t, err, ErrStateConflict)
	require.ErrorIs(t, err, domain.ErrNotAdjacent)
}

func TestTransition_TerminalOrderConflicts(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo)
	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)

	_, err = svc.CancelOrder(context.Background(), ports.CancelOrderInput{
		TenantID: order.TenantID, OrderID: order.ID, Reason: "test",
	})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), ports.TransitionInput{
		TenantID: order.TenantID, OrderID: order.ID, Target: domain.StatusReceived,
	})
	require.ErrorIs(t, err, ErrStateConflict)
}

func TestCancelOrder_RefundAndGuards(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo)
	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(context.Background(), ports.CancelOrderInput{
		TenantID:        order.TenantID,
		OrderID:         order.ID,
		Reason:          "customer changed mind",
		CancelledBy:     "cust-1",
		RefundRequested: true,
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.Equal(t, "PENDING", cancelled.RefundStatus)

	_, err = svc.CancelOrder(context.Background(), ports.CancelOrderInput{
		TenantID: order.TenantID, OrderID: order.ID,
	})
	require.ErrorIs(t, err, ErrStateConflict)
}

func TestCancelOrder_DisallowedFromPacking(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo)
	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)

	input := ports.StepInput{TenantID: order.TenantID, OrderID: order.ID}
	for _, step := range []func(context.Context, ports.StepInput) (*ports.StepResult, error){
		svc.ReceiveOrder, svc.CookOrder, svc.PackOrder,
	} {
		_, err := step(context.Background(), input)
		require.NoError(t, err)
	}

	_, err = svc.CancelOrder(context.Background(), ports.CancelOrderInput{
		TenantID: order.TenantID, OrderID: order.ID, Reason: "too late",
	})
	require.ErrorIs(t, err, ErrStateConflict)
	var conflict *StateConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, domain.StatusPacking, conflict.Current)
}

func TestWorkflowSteps_FullRun(t *testing.T) {
	repo := newFakeOrderRepo()
	pub := &capturePublisher{}
	svc := newTestService(repo, WithEventPublisher(pub))
	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)

	_, err = svc.AssignStaff(context.Background(), ports.AssignStaffInput{
		TenantID: order.TenantID, OrderID: order.ID,
		Role: "cook", StaffID: "staff-7", StaffName: "Jose",
	})
	require.NoError(t, err)

	input := ports.StepInput{TenantID: order.TenantID, OrderID: order.ID}
	steps := []func(context.Context, ports.StepInput) (*ports.StepResult, error){
		svc.ValidateOrder, svc.ReceiveOrder, svc.CookOrder,
		svc.PackOrder, svc.DeliverOrder, svc.CompleteOrder,
	}
	var result *ports.StepResult
	for _, step := range steps {
		result, err = step(context.Background(), input)
		require.NoError(t, err)
	}
	require.Equal(t, domain.StatusCompleted, result.Status)

	final, err := svc.GetOrder(context.Background(), order.TenantID, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, final.Status)
	require.Equal(t, "COMPLETED", final.PaymentStatus)
	require.NotNil(t, final.Workflow.CompletedAt)
	require.Len(t, final.StatusHistory, 6)

	cookStep := final.Workflow.Steps[1]
	require.Equal(t, domain.StatusCooking, cookStep.Step)
	require.Equal(t, "staff-7", cookStep.StaffID)
}

func TestWorkflowSteps_IdempotentRedelivery(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo)
	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)

	input := ports.StepInput{TenantID: order.TenantID, OrderID: order.ID}
	_, err = svc.ReceiveOrder(context.Background(), input)
	require.NoError(t, err)

	// Redelivered step: same target, no extra history entry.
	result, err := svc.ReceiveOrder(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, domain.StatusReceived, result.Status)

	stored, err := svc.GetOrder(context.Background(), order.TenantID, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.StatusHistory, 2)
}

func TestWorkflowSteps_OutOfOrderConflicts(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo)
	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)

	input := ports.StepInput{TenantID: order.TenantID, OrderID: order.ID}
	_, err = svc.CookOrder(context.Background(), input)
	require.ErrorIs(t, err, ErrStateConflict)

	// The rejected step leaves the record untouched.
	stored, err := svc.GetOrder(context.Background(), order.TenantID, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, stored.Status)
	require.Len(t, stored.StatusHistory, 1)
}

func TestValidateOrder_WarningsNeverFail(t *testing.T) {
	repo := newFakeOrderRepo()
	menu := &fakeMenu{items: map[string]*ports.MenuItemView{
		"item-1": {ItemID: "item-1", Name: "Combo", Price: 30, Available: false},
	}}
	svc := newTestService(repo, WithMenuChecker(menu))
	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)

	result, err := svc.ValidateOrder(context.Background(), ports.StepInput{
		TenantID: order.TenantID, OrderID: order.ID,
	})
	require.NoError(t, err)
	// Ordered at 20, menu says 30 and unavailable: two warnings.
	require.Len(t, result.Warnings, 2)
	require.Equal(t, domain.StatusPending, result.Status)
}

func TestAssignStaff_ValidatesRole(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo)
	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)

	_, err = svc.AssignStaff(context.Background(), ports.AssignStaffInput{
		TenantID: order.TenantID, OrderID: order.ID, Role: "janitor", StaffID: "s1",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestActiveOrders_ExcludesTerminal(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, WithIDGenerator(newSequentialIDs()))

	first, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)
	_, err = svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)

	_, err = svc.CancelOrder(context.Background(), ports.CancelOrderInput{
		TenantID: first.TenantID, OrderID: first.ID, Reason: "test",
	})
	require.NoError(t, err)

	active, err := svc.ActiveOrders(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Len(t, active, 1)
}

func newSequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return string(rune('a' + n - 1))
	}
}

type fakeOrchestrator struct {
	executions []string
	err        error
}

func (f *fakeOrchestrator) StartFulfillment(_ context.Context, tenantID, orderID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	id := "exec-" + tenantID + "-" + orderID
	f.executions = append(f.executions, id)
	return id, nil
}

func TestCreateOrder_RecordsWorkflowExecution(t *testing.T) {
	repo := newFakeOrderRepo()
	orch := &fakeOrchestrator{}
	svc := newTestService(repo, WithOrchestrator(orch))

	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)
	require.Len(t, orch.executions, 1)

	stored, err := repo.Get(context.Background(), order.TenantID, order.ID)
	require.NoError(t, err)
	require.Equal(t, orch.executions[0], stored.Workflow.ExecutionID)
	require.NotNil(t, stored.Workflow.StartedAt)
}

// eagerOrchestrator runs the first fulfillment steps synchronously
// inside StartFulfillment, the tightest race the inline orchestrator
// can produce.
type eagerOrchestrator struct {
	svc *Service
}

func (o *eagerOrchestrator) StartFulfillment(ctx context.Context, tenantID, orderID string) (string, error) {
	input := ports.StepInput{TenantID: tenantID, OrderID: orderID}
	if _, err := o.svc.ValidateOrder(ctx, input); err != nil {
		return "", err
	}
	if _, err := o.svc.ReceiveOrder(ctx, input); err != nil {
		return "", err
	}
	return "exec-eager", nil
}

func TestCreateOrder_ExecutionIDWriteNeverStompsStepAdvance(t *testing.T) {
	repo := newFakeOrderRepo()
	orch := &eagerOrchestrator{}
	svc := newTestService(repo, WithOrchestrator(orch))
	orch.svc = svc

	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)

	// The step write is authoritative; the execution id bookkeeping
	// yields when it lost the race.
	stored, err := repo.Get(context.Background(), order.TenantID, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusReceived, stored.Status)
	require.Len(t, stored.StatusHistory, 2)

	// The fulfillment chain keeps working from the advanced record.
	result, err := svc.CookOrder(context.Background(), ports.StepInput{TenantID: order.TenantID, OrderID: order.ID})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCooking, result.Status)
}

func TestCreateOrder_OrchestratorFailureIsNotFatal(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, WithOrchestrator(&fakeOrchestrator{err: errors.New("cluster down")}))

	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, order.Status)
}

func TestOptimisticLocking_ConflictSurfacesAsStateConflict(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo)
	order, err := svc.CreateOrder(context.Background(), testCreateInput())
	require.NoError(t, err)

	// A concurrent writer bumps the version between our read and write.
	concurrent, err := repo.Get(context.Background(), order.TenantID, order.ID)
	require.NoError(t, err)
	require.NoError(t, concurrent.ApplyTransition(domain.StatusReceived, "", "", "", time.Now().UTC()))
	_, err = repo.Update(context.Background(), concurrent, concurrent.Version)
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), ports.TransitionInput{
		TenantID:        order.TenantID,
		OrderID:         order.ID,
		Target:          domain.StatusReceived,
		ExpectedCurrent: domain.StatusPending,
	})
	// The gate re-reads, so the stale expectation is caught up front.
	require.ErrorIs(t, err, ErrStateConflict)
}
