package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	orderdomain "github.com/broasteria/broasteria/internal/domains/orders/domain"
	orderports "github.com/broasteria/broasteria/internal/domains/orders/ports"
)

const tracerName = "github.com/broasteria/broasteria/internal/domains/orders/adapters/observability/service"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, input orderports.CreateOrderInput) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder",
		trace.WithAttributes(
			attribute.String("order.tenant_id", input.TenantID),
			attribute.String("order.customer_id", input.CustomerID),
			attribute.Int("order.item_count", len(input.Items))))
	defer span.End()

	s.logInfo(ctx, "creating order",
		slog.String("tenant.id", input.TenantID),
		slog.String("customer.id", input.CustomerID))
	result, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("tenant.id", input.TenantID))
	}
	s.metrics.recordCreated(ctx, result.TenantID)
	s.logInfo(ctx, "order created",
		slog.String("order.id", result.ID),
		slog.String("order.number", result.OrderNumber),
		slog.Float64("order.total", result.Total))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, tenantID, orderID string) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder",
		trace.WithAttributes(attribute.String("order.id", orderID), attribute.String("order.tenant_id", tenantID)))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", orderID))
	}
	span.SetAttributes(attribute.String("order.status", string(result.Status)))
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context, tenantID string, limit int) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders",
		trace.WithAttributes(attribute.String("order.tenant_id", tenantID), attribute.Int("list.limit", limit)))
	defer span.End()

	result, err := s.inner.ListOrders(ctx, tenantID, limit)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.String("tenant.id", tenantID))
	}
	span.SetAttributes(attribute.Int("list.count", len(result)))
	return result, nil
}

func (s *Service) ListOrdersByStatus(ctx context.Context, tenantID string, status orderdomain.Status) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrdersByStatus",
		trace.WithAttributes(attribute.String("order.tenant_id", tenantID), attribute.String("order.status", string(status))))
	defer span.End()

	result, err := s.inner.ListOrdersByStatus(ctx, tenantID, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders by status", slog.String("order.status", string(status)))
	}
	span.SetAttributes(attribute.Int("list.count", len(result)))
	return result, nil
}

func (s *Service) ListCustomerOrders(ctx context.Context, tenantID, customerID string) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListCustomerOrders",
		trace.WithAttributes(attribute.String("order.tenant_id", tenantID), attribute.String("customer.id", customerID)))
	defer span.End()

	result, err := s.inner.ListCustomerOrders(ctx, tenantID, customerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list customer orders", slog.String("customer.id", customerID))
	}
	span.SetAttributes(attribute.Int("list.count", len(result)))
	return result, nil
}

func (s *Service) ActiveOrders(ctx context.Context, tenantID string) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ActiveOrders",
		trace.WithAttributes(attribute.String("order.tenant_id", tenantID)))
	defer span.End()

	result, err := s.inner.ActiveOrders(ctx, tenantID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list active orders", slog.String("tenant.id", tenantID))
	}
	span.SetAttributes(attribute.Int("list.count", len(result)))
	return result, nil
}

func (s *Service) Transition(ctx context.Context, input orderports.TransitionInput) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Transition",
		trace.WithAttributes(
			attribute.String("order.id", input.OrderID),
			attribute.String("order.target_status", string(input.Target))))
	defer span.End()

	s.logInfo(ctx, "transitioning order",
		slog.String("order.id", input.OrderID),
		slog.String("order.target_status", string(input.Target)))
	result, err := s.inner.Transition(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to transition order",
			slog.String("order.id", input.OrderID),
			slog.String("order.target_status", string(input.Target)))
	}
	s.metrics.recordTransition(ctx, result.Status)
	s.logInfo(ctx, "order transitioned",
		slog.String("order.id", result.ID),
		slog.String("order.status", string(result.Status)))
	return result, nil
}

func (s *Service) CancelOrder(ctx context.Context, input orderports.CancelOrderInput) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CancelOrder",
		trace.WithAttributes(attribute.String("order.id", input.OrderID)))
	defer span.End()

	s.logInfo(ctx, "cancelling order", slog.String("order.id", input.OrderID))
	result, err := s.inner.CancelOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel order", slog.String("order.id", input.OrderID))
	}
	s.metrics.recordCancelled(ctx)
	s.logInfo(ctx, "order cancelled",
		slog.String("order.id", result.ID),
		slog.String("order.refund_status", result.RefundStatus))
	return result, nil
}

func (s *Service) AssignStaff(ctx context.Context, input orderports.AssignStaffInput) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.AssignStaff",
		trace.WithAttributes(
			attribute.String("order.id", input.OrderID),
			attribute.String("staff.role", input.Role)))
	defer span.End()

	result, err := s.inner.AssignStaff(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to assign staff",
			slog.String("order.id", input.OrderID), slog.String("staff.role", input.Role))
	}
	s.logInfo(ctx, "staff assigned",
		slog.String("order.id", result.ID),
		slog.String("staff.role", input.Role),
		slog.String("staff.id", input.StaffID))
	return result, nil
}

func (s *Service) StartWorkflow(ctx context.Context, tenantID, orderID string) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.StartWorkflow",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("order.tenant_id", tenantID)))
	defer span.End()

	result, err := s.inner.StartWorkflow(ctx, tenantID, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to start fulfillment workflow", slog.String("order.id", orderID))
	}
	s.logInfo(ctx, "fulfillment workflow started",
		slog.String("order.id", result.ID),
		slog.String("workflow.execution_id", result.Workflow.ExecutionID))
	return result, nil
}

func (s *Service) ValidateOrder(ctx context.Context, input orderports.StepInput) (*orderports.StepResult, error) {
	return s.step(ctx, "OrderService.ValidateOrder", input, s.inner.ValidateOrder)
}

func (s *Service) ReceiveOrder(ctx context.Context, input orderports.StepInput) (*orderports.StepResult, error) {
	return s.step(ctx, "OrderService.ReceiveOrder", input, s.inner.ReceiveOrder)
}

func (s *Service) CookOrder(ctx context.Context, input orderports.StepInput) (*orderports.StepResult, error) {
	return s.step(ctx, "OrderService.CookOrder", input, s.inner.CookOrder)
}

func (s *Service) PackOrder(ctx context.Context, input orderports.StepInput) (*orderports.StepResult, error) {
	return s.step(ctx, "OrderService.PackOrder", input, s.inner.PackOrder)
}

func (s *Service) DeliverOrder(ctx context.Context, input orderports.StepInput) (*orderports.StepResult, error) {
	return s.step(ctx, "OrderService.DeliverOrder", input, s.inner.DeliverOrder)
}

func (s *Service) CompleteOrder(ctx context.Context, input orderports.StepInput) (*orderports.StepResult, error) {
	return s.step(ctx, "OrderService.CompleteOrder", input, s.inner.CompleteOrder)
}

func (s *Service) step(
	ctx context.Context,
	name string,
	input orderports.StepInput,
	fn func(context.Context, orderports.StepInput) (*orderports.StepResult, error),
) (*orderports.StepResult, error) {
	ctx, span := s.tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String("order.id", input.OrderID),
			attribute.String("order.tenant_id", input.TenantID)))
	defer span.End()

	result, err := fn(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "workflow step failed",
			slog.String("step", name), slog.String("order.id", input.OrderID))
	}
	s.metrics.recordStep(ctx, result.Status)
	span.SetAttributes(
		attribute.String("order.status", string(result.Status)),
		attribute.Int("step.warning_count", len(result.Warnings)))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	ordersCreated   metric.Int64Counter
	ordersCancelled metric.Int64Counter
	transitions     metric.Int64Counter
	stepsCompleted  metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders created"))
	cancelled, _ := m.Int64Counter("orders.service.cancelled", metric.WithDescription("Number of orders cancelled"))
	transitions, _ := m.Int64Counter("orders.service.transitions", metric.WithDescription("Number of status transitions"))
	steps, _ := m.Int64Counter("orders.service.workflow_steps", metric.WithDescription("Number of workflow steps completed"))
	return serviceMetrics{
		ordersCreated:   created,
		ordersCancelled: cancelled,
		transitions:     transitions,
		stepsCompleted:  steps,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, tenantID string) {
	if m.ordersCreated != nil {
		m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("tenant.id", tenantID)))
	}
}

func (m serviceMetrics) recordCancelled(ctx context.Context) {
	if m.ordersCancelled != nil {
		m.ordersCancelled.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, status orderdomain.Status) {
	if m.transitions != nil {
		m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordStep(ctx context.Context, status orderdomain.Status) {
	if m.stepsCompleted != nil {
		m.stepsCompleted.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

var _ orderports.Service = (*Service)(nil)
