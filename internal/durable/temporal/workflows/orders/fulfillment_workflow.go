package orders

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	orderports "github.com/broasteria/broasteria/internal/domains/orders/ports"
	orderactivities "github.com/broasteria/broasteria/internal/durable/temporal/activities/orders"
)

const (
	// FulfillmentWorkflowName is the public identifier for registering the workflow.
	FulfillmentWorkflowName = "orders.workflows.Fulfillment"
	// FulfillmentTaskQueue is the queue consumed by the worker processing order workflows.
	FulfillmentTaskQueue = "ORDER_FULFILLMENT"
)

// Stage pauses model kitchen hand-off time between workflow steps.
const (
	receiveDelay  = 5 * time.Second
	cookDelay     = 10 * time.Second
	packDelay     = 8 * time.Second
	deliveryDelay = 15 * time.Second
	completeDelay = 20 * time.Second
)

// FulfillmentWorkflowInput captures the payload required to fulfil an order.
type FulfillmentWorkflowInput struct {
	Step orderports.StepInput
}

// FulfillmentWorkflow drives an order through its lifecycle: validate,
// receive, cook, pack, deliver, complete. Each step is an activity that
// calls back into the order service; steps are idempotent, so activity
// retries cannot double-advance the state machine. A step failing after
// all retries stops the workflow and leaves the order where it stands.
func FulfillmentWorkflow(ctx workflow.Context, input FulfillmentWorkflowInput) (*orderports.StepResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("FulfillmentWorkflow started", "orderId", input.Step.OrderID, "tenantId", input.Step.TenantID)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	stages := []struct {
		activity string
		delay    time.Duration
	}{
		{orderactivities.ValidateOrderActivityName, 0},
		{orderactivities.ReceiveOrderActivityName, receiveDelay},
		{orderactivities.CookOrderActivityName, cookDelay},
		{orderactivities.PackOrderActivityName, packDelay},
		{orderactivities.DeliverOrderActivityName, deliveryDelay},
		{orderactivities.CompleteOrderActivityName, completeDelay},
	}

	var result orderports.StepResult
	for _, stage := range stages {
		if stage.delay > 0 {
			if err := workflow.Sleep(ctx, stage.delay); err != nil {
				return nil, err
			}
		}
		if err := workflow.ExecuteActivity(ctx, stage.activity, input.Step).Get(ctx, &result); err != nil {
			logger.Error("FulfillmentWorkflow step failed",
				"orderId", input.Step.OrderID, "activity", stage.activity, "error", err)
			return nil, err
		}
		logger.Info("FulfillmentWorkflow step completed",
			"orderId", input.Step.OrderID, "activity", stage.activity, "status", string(result.Status))
	}

	logger.Info("FulfillmentWorkflow completed", "orderId", input.Step.OrderID, "status", string(result.Status))
	return &result, nil
}
