package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/broasteria/broasteria/internal/domains/orders/domain"
	"github.com/broasteria/broasteria/internal/domains/orders/ports"
)

// PriceDriftTolerance is the relative band within which a stale item
// price on an incoming order is accepted without a warning.
const PriceDriftTolerance = 0.10

// Service orchestrates order use cases. It is the only code path that
// mutates an order's status.
type Service struct {
	repo         ports.Repository
	events       ports.EventPublisher
	broadcaster  ports.Broadcaster
	menu         ports.MenuChecker
	orchestrator ports.FulfillmentOrchestrator
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
	// locking toggles compare-and-swap writes on status transitions.
	// Disabled it reproduces the original last-write-wins behavior.
	locking bool
}

type Option func(*Service)

func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

func WithBroadcaster(b ports.Broadcaster) Option {
	return func(s *Service) { s.broadcaster = b }
}

func WithMenuChecker(m ports.MenuChecker) Option {
	return func(s *Service) { s.menu = m }
}

func WithOrchestrator(o ports.FulfillmentOrchestrator) Option {
	return func(s *Service) { s.orchestrator = o }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

func WithOptimisticLocking(enabled bool) Option {
	return func(s *Service) { s.locking = enabled }
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		events:      ports.NoopPublisher{},
		broadcaster: ports.NoopBroadcaster{},
		logger:      slog.Default(),
		now:         time.Now,
		newID:       func() string { return ulid.Make().String() },
		locking:     true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if input.TenantID == "" || input.CustomerID == "" {
		return nil, fmt.Errorf("%w: tenantId and customerId are required", ErrValidation)
	}
	if input.DeliveryAddress == "" {
		return nil, fmt.Errorf("%w: deliveryAddress is required", ErrValidation)
	}
	now := s.now().UTC()
	fee := input.DeliveryFee
	if fee == 0 {
		fee = 5.0
	}
	order, err := domain.NewOrder(s.newID(), input.TenantID, input.CustomerID, input.Items, fee, input.Tip, input.DeliveryAddress, now)
	if err != nil {
		return nil, mapError(err)
	}
	order.CustomerName = input.CustomerName
	order.CustomerPhone = input.CustomerPhone
	order.CustomerEmail = input.CustomerEmail
	order.DeliveryNotes = input.DeliveryNotes
	if input.PaymentMethod != "" {
		order.PaymentMethod = input.PaymentMethod
	}
	if input.Discount > 0 {
		order.Discount = input.Discount
		order.RecomputeTotal()
	}

	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, mapError(err)
	}

	s.broadcast(ctx, saved.TenantID, map[string]any{
		"type": "NEW_ORDER",
		"payload": map[string]any{
			"order":     saved,
			"timestamp": saved.CreatedAt,
		},
	})
	s.publish(ctx, domain.CreatedEvent(saved, now))
	s.startFulfillment(ctx, saved)
	return saved, nil
}

// startFulfillment kicks off the durable workflow, best-effort. The
// order remains valid in PENDING if the orchestrator is unreachable; a
// later call to StartWorkflow can retry.
func (s *Service) startFulfillment(ctx context.Context, order *domain.Order) {
	if s.orchestrator == nil {
		return
	}
	executionID, err := s.orchestrator.StartFulfillment(ctx, order.TenantID, order.ID)
	if err != nil {
		s.logger.Warn("fulfillment workflow start failed",
			slog.String("tenantId", order.TenantID),
			slog.String("orderId", order.ID),
			slog.String("error", err.Error()))
		return
	}
	now := s.now().UTC()
	order.Workflow.ExecutionID = executionID
	order.Workflow.StartedAt = &now
	// The execution id is bookkeeping; a step that already advanced
	// the order owns the record and this write must not stomp it.
	if _, err := s.repo.Update(ctx, order, order.Version); err != nil {
		if errors.Is(err, ports.ErrVersionConflict) {
			s.logger.Info("order advanced before workflow execution id was recorded",
				slog.String("orderId", order.ID))
			return
		}
		s.logger.Warn("failed to record workflow execution id",
			slog.String("orderId", order.ID),
			slog.String("error", err.Error()))
	}
}

// StartWorkflow launches (or re-launches) the fulfillment workflow for
// an existing order and records the execution id.
func (s *Service) StartWorkflow(ctx context.Context, tenantID, orderID string) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, tenantID, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	if s.orchestrator == nil {
		return nil, fmt.Errorf("fulfillment orchestrator not configured")
	}
	executionID, err := s.orchestrator.StartFulfillment(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	order.Workflow.ExecutionID = executionID
	order.Workflow.StartedAt = &now
	updated, err := s.repo.Update(ctx, order, s.expectedVersion(order))
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

func (s *Service) GetOrder(ctx context.Context, tenantID, orderID string) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, tenantID, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, tenantID string, limit int) ([]*domain.Order, error) {
	orders, err := s.repo.ListByTenant(ctx, tenantID, limit)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

func (s *Service) ListOrdersByStatus(ctx context.Context, tenantID string, status domain.Status) ([]*domain.Order, error) {
	if !domain.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: %w: %q", ErrValidation, domain.ErrUnknownStatus, status)
	}
	orders, err := s.repo.ListByStatus(ctx, tenantID, status)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

func (s *Service) ListCustomerOrders(ctx context.Context, tenantID, customerID string) ([]*domain.Order, error) {
	orders, err := s.repo.ListByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

func (s *Service) ActiveOrders(ctx context.Context, tenantID string) ([]*domain.Order, error) {
	orders, err := s.repo.ListByTenant(ctx, tenantID, 0)
	if err != nil {
		return nil, mapError(err)
	}
	active := make([]*domain.Order, 0, len(orders))
	for _, order := range orders {
		if order.Active() {
			active = append(active, order)
		}
	}
	return active, nil
}

// Transition is the single authorized path for mutating an order's
// status. The record write is authoritative; broadcast and event
// publication are best-effort side effects that never roll it back.
func (s *Service) Transition(ctx context.Context, input ports.TransitionInput) (*domain.Order, error) {
	if !domain.IsValidStatus(input.Target) {
		return nil, fmt.Errorf("%w: %w: %q", ErrValidation, domain.ErrUnknownStatus, input.Target)
	}
	order, err := s.repo.Get(ctx, input.TenantID, input.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	if input.ExpectedCurrent != "" && order.Status != input.ExpectedCurrent {
		return nil, &StateConflictError{
			Current: order.Status,
			Reason:  fmt.Sprintf("expected status %s", input.ExpectedCurrent),
		}
	}
	if !domain.CanTransitionTo(order.Status, input.Target) {
		return nil, mapError(fmt.Errorf("%w: %s -> %s", domain.ErrNotAdjacent, order.Status, input.Target))
	}
	oldStatus := order.Status
	now := s.now().UTC()
	if err := order.ApplyTransition(input.Target, input.StaffID, input.StaffName, input.Message, now); err != nil {
		return nil, mapError(err)
	}
	updated, err := s.repo.Update(ctx, order, s.expectedVersion(order))
	if err != nil {
		return nil, mapError(err)
	}

	s.broadcast(ctx, updated.TenantID, map[string]any{
		"type": "ORDER_UPDATE",
		"payload": map[string]any{
			"orderId":   updated.ID,
			"status":    updated.Status,
			"order":     updated,
			"timestamp": updated.UpdatedAt,
		},
	})
	s.publish(ctx, domain.StatusChangedEvent(updated, oldStatus, now))
	return updated, nil
}

func (s *Service) CancelOrder(ctx context.Context, input ports.CancelOrderInput) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, input.TenantID, input.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	if !domain.CanCancelFrom(order.Status) {
		return nil, &StateConflictError{
			Current: order.Status,
			Reason:  "cancellation allowed only for PENDING, RECEIVED, COOKING",
		}
	}
	now := s.now().UTC()
	if err := order.Cancel(input.Reason, input.CancelledBy, input.RefundRequested, now); err != nil {
		return nil, mapError(err)
	}
	updated, err := s.repo.Update(ctx, order, s.expectedVersion(order))
	if err != nil {
		return nil, mapError(err)
	}

	s.broadcast(ctx, updated.TenantID, map[string]any{
		"type": "ORDER_UPDATE",
		"payload": map[string]any{
			"orderId":            updated.ID,
			"status":             updated.Status,
			"cancellationReason": updated.CancellationReason,
			"timestamp":          updated.UpdatedAt,
		},
	})
	s.publish(ctx, domain.CancelledEvent(updated, now))
	return updated, nil
}

func (s *Service) AssignStaff(ctx context.Context, input ports.AssignStaffInput) (*domain.Order, error) {
	if input.StaffID == "" || input.Role == "" {
		return nil, fmt.Errorf("%w: staffId and role are required", ErrValidation)
	}
	switch input.Role {
	case "cook", "packer", "delivery", "receiver":
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, input.Role)
	}
	order, err := s.repo.Get(ctx, input.TenantID, input.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	order.AssignStaff(input.Role, input.StaffID, input.StaffName, s.now().UTC())
	updated, err := s.repo.Update(ctx, order, s.expectedVersion(order))
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// ValidateOrder cross-checks each line item against the live menu.
// Mismatches (missing item, unavailable item, price drift beyond the
// tolerance band) are recorded as warnings and logged; they never fail
// or cancel the order.
func (s *Service) ValidateOrder(ctx context.Context, input ports.StepInput) (*ports.StepResult, error) {
	order, err := s.repo.Get(ctx, input.TenantID, input.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	var warnings []string
	if s.menu != nil {
		for _, item := range order.Items {
			view, err := s.menu.LookupItem(ctx, order.TenantID, item.ItemID)
			if err != nil || view == nil {
				warnings = append(warnings, fmt.Sprintf("item %s not found on menu", item.ItemID))
				continue
			}
			if !view.Available {
				warnings = append(warnings, fmt.Sprintf("item %s is currently unavailable", item.ItemID))
			}
			if view.Price > 0 {
				drift := math.Abs(item.Price-view.Price) / view.Price
				if drift > PriceDriftTolerance {
					warnings = append(warnings, fmt.Sprintf("item %s price drifted: ordered %.2f, menu %.2f", item.ItemID, item.Price, view.Price))
				}
			}
		}
	}
	for _, w := range warnings {
		s.logger.Warn("order validation warning",
			slog.String("tenantId", order.TenantID),
			slog.String("orderId", order.ID),
			slog.String("warning", w))
	}
	return &ports.StepResult{
		OrderID:  order.ID,
		TenantID: order.TenantID,
		Status:   order.Status,
		At:       s.now().UTC(),
		Warnings: warnings,
	}, nil
}

func (s *Service) ReceiveOrder(ctx context.Context, input ports.StepInput) (*ports.StepResult, error) {
	return s.advance(ctx, input, domain.StatusPending, domain.StatusReceived)
}

func (s *Service) CookOrder(ctx context.Context, input ports.StepInput) (*ports.StepResult, error) {
	return s.advance(ctx, input, domain.StatusReceived, domain.StatusCooking)
}

func (s *Service) PackOrder(ctx context.Context, input ports.StepInput) (*ports.StepResult, error) {
	return s.advance(ctx, input, domain.StatusCooking, domain.StatusPacking)
}

func (s *Service) DeliverOrder(ctx context.Context, input ports.StepInput) (*ports.StepResult, error) {
	return s.advance(ctx, input, domain.StatusPacking, domain.StatusDelivery)
}

func (s *Service) CompleteOrder(ctx context.Context, input ports.StepInput) (*ports.StepResult, error) {
	return s.advance(ctx, input, domain.StatusDelivery, domain.StatusCompleted)
}

// advance moves an order one step along the fulfillment chain. Calls
// are idempotent for orchestrator redelivery: an order already at the
// target status succeeds without a second history entry.
func (s *Service) advance(ctx context.Context, input ports.StepInput, expected, target domain.Status) (*ports.StepResult, error) {
	order, err := s.repo.Get(ctx, input.TenantID, input.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	now := s.now().UTC()
	if order.Status == target {
		return &ports.StepResult{OrderID: order.ID, TenantID: order.TenantID, Status: order.Status, At: now}, nil
	}
	if order.Status != expected {
		return nil, &StateConflictError{
			Current: order.Status,
			Reason:  fmt.Sprintf("step %s expects status %s", target, expected),
		}
	}
	oldStatus := order.Status
	staff := order.Workflow.AssignedStaff[roleForStep(target)]
	if err := order.ApplyTransition(target, staff.StaffID, staff.StaffName, "", now); err != nil {
		return nil, mapError(err)
	}
	order.OpenStep(target, staff.StaffID, staff.StaffName, now)
	if target == domain.StatusCompleted {
		order.FinishFulfillment(now)
	}
	updated, err := s.repo.Update(ctx, order, s.expectedVersion(order))
	if err != nil {
		return nil, mapError(err)
	}

	s.broadcast(ctx, updated.TenantID, map[string]any{
		"type": "ORDER_UPDATE",
		"payload": map[string]any{
			"orderId":   updated.ID,
			"status":    updated.Status,
			"order":     updated,
			"timestamp": updated.UpdatedAt,
		},
	})
	s.publish(ctx, domain.StatusChangedEvent(updated, oldStatus, now))
	return &ports.StepResult{
		OrderID:  updated.ID,
		TenantID: updated.TenantID,
		Status:   updated.Status,
		At:       now,
	}, nil
}

func roleForStep(step domain.Status) string {
	switch step {
	case domain.StatusReceived:
		return "receiver"
	case domain.StatusCooking:
		return "cook"
	case domain.StatusPacking:
		return "packer"
	case domain.StatusDelivery, domain.StatusCompleted:
		return "delivery"
	}
	return ""
}

// expectedVersion returns the CAS guard for an order loaded in this
// request, or -1 when locking is disabled.
func (s *Service) expectedVersion(order *domain.Order) int64 {
	if !s.locking {
		return -1
	}
	return order.Version
}

func (s *Service) broadcast(ctx context.Context, tenantID string, message any) {
	if s.broadcaster == nil {
		return
	}
	if _, err := s.broadcaster.Broadcast(ctx, tenantID, message); err != nil {
		s.logger.Warn("broadcast failed",
			slog.String("tenantId", tenantID),
			slog.String("error", err.Error()))
	}
}

func (s *Service) publish(ctx context.Context, event domain.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			slog.String("tenantId", event.TenantID),
			slog.String("orderId", event.OrderID),
			slog.String("type", event.Type),
			slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
