package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	orderports "github.com/broasteria/broasteria/internal/domains/orders/ports"
)

const (
	ValidateOrderActivityName = "orders.activities.ValidateOrder"
	ReceiveOrderActivityName  = "orders.activities.ReceiveOrder"
	CookOrderActivityName     = "orders.activities.CookOrder"
	PackOrderActivityName     = "orders.activities.PackOrder"
	DeliverOrderActivityName  = "orders.activities.DeliverOrder"
	CompleteOrderActivityName = "orders.activities.CompleteOrder"
)

// Activities groups the workflow step activities for the orders context.
type Activities struct {
	service orderports.Service
}

// NewActivities wires the order service into the Temporal activities bundle.
func NewActivities(service orderports.Service) *Activities {
	return &Activities{service: service}
}

// ValidateOrder checks the order's line items against the live menu.
func (a *Activities) ValidateOrder(ctx context.Context, input orderports.StepInput) (*orderports.StepResult, error) {
	return a.run(ctx, "ValidateOrder", input, func(s orderports.Service) stepFn { return s.ValidateOrder })
}

// ReceiveOrder marks the order as acknowledged by the kitchen.
func (a *Activities) ReceiveOrder(ctx context.Context, input orderports.StepInput) (*orderports.StepResult, error) {
	return a.run(ctx, "ReceiveOrder", input, func(s orderports.Service) stepFn { return s.ReceiveOrder })
}

// CookOrder moves the order into preparation.
func (a *Activities) CookOrder(ctx context.Context, input orderports.StepInput) (*orderports.StepResult, error) {
	return a.run(ctx, "CookOrder", input, func(s orderports.Service) stepFn { return s.CookOrder })
}

// PackOrder moves the order into packaging.
func (a *Activities) PackOrder(ctx context.Context, input orderports.StepInput) (*orderports.StepResult, error) {
	return a.run(ctx, "PackOrder", input, func(s orderports.Service) stepFn { return s.PackOrder })
}

// DeliverOrder hands the order to delivery.
func (a *Activities) DeliverOrder(ctx context.Context, input orderports.StepInput) (*orderports.StepResult, error) {
	return a.run(ctx, "DeliverOrder", input, func(s orderports.Service) stepFn { return s.DeliverOrder })
}

// CompleteOrder closes out the order.
func (a *Activities) CompleteOrder(ctx context.Context, input orderports.StepInput) (*orderports.StepResult, error) {
	return a.run(ctx, "CompleteOrder", input, func(s orderports.Service) stepFn { return s.CompleteOrder })
}

type stepFn func(context.Context, orderports.StepInput) (*orderports.StepResult, error)

func (a *Activities) run(ctx context.Context, name string, input orderports.StepInput, pick func(orderports.Service) stepFn) (*orderports.StepResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order step activity not initialized", "orderId", input.OrderID, "step", name)
		return nil, errors.New("order step activity not initialized")
	}
	logger.Info(name+" activity started", "orderId", input.OrderID, "tenantId", input.TenantID)
	result, err := pick(a.service)(ctx, input)
	if err != nil {
		logger.Error(name+" activity failed", "orderId", input.OrderID, "error", err)
		return nil, err
	}
	logger.Info(name+" activity completed", "orderId", result.OrderID, "status", string(result.Status))
	return result, nil
}
