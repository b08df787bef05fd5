package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/broasteria/broasteria/internal/domains/orders/ports"
	orderworkflows "github.com/broasteria/broasteria/internal/durable/temporal/workflows/orders"
)

var (
	_ ports.FulfillmentOrchestrator = (*TemporalFulfillment)(nil)
	_ ports.FulfillmentOrchestrator = (*InlineFulfillment)(nil)
)

// TemporalFulfillment starts order fulfillment workflows on a Temporal
// cluster. The workflow ID is derived from the tenant and order so a
// retried create cannot spawn a second fulfillment run.
type TemporalFulfillment struct {
	client    client.Client
	taskQueue string
}

// NewTemporalFulfillment wires a Temporal client into the orchestrator.
func NewTemporalFulfillment(c client.Client) *TemporalFulfillment {
	return &TemporalFulfillment{client: c, taskQueue: orderworkflows.FulfillmentTaskQueue}
}

// StartFulfillment kicks off the workflow and returns without waiting
// for it to finish; the workflow drives the order through its steps.
func (o *TemporalFulfillment) StartFulfillment(ctx context.Context, tenantID, orderID string) (string, error) {
	if o == nil || o.client == nil {
		return "", errors.New("temporal fulfillment not configured")
	}
	workflowID := buildFulfillmentWorkflowID(tenantID, orderID)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.FulfillmentWorkflow,
		orderworkflows.FulfillmentWorkflowInput{
			Step: ports.StepInput{TenantID: tenantID, OrderID: orderID},
		},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			// A prior attempt already started this fulfillment; hand
			// back its run so the caller records a stable execution ID.
			return fmt.Sprintf("%s/%s", workflowID, alreadyStarted.RunId), nil
		}
		return "", err
	}
	return fmt.Sprintf("%s/%s", run.GetID(), run.GetRunID()), nil
}

// InlineFulfillment executes the workflow steps directly against the
// service without Temporal, useful for tests or dev fallbacks.
type InlineFulfillment struct {
	service ports.Service
}

// NewInlineFulfillment wraps the order service for synchronous execution.
func NewInlineFulfillment(service ports.Service) *InlineFulfillment {
	return &InlineFulfillment{service: service}
}

// Bind sets the target service after construction. The service holds
// the orchestrator and the inline orchestrator holds the service, so
// one of the two is bound late during wiring.
func (o *InlineFulfillment) Bind(service ports.Service) {
	o.service = service
}

// StartFulfillment runs validate through complete in-process. Steps run
// in the background so order creation returns before fulfillment
// advances, matching the durable orchestrator's shape.
func (o *InlineFulfillment) StartFulfillment(_ context.Context, tenantID, orderID string) (string, error) {
	if o == nil || o.service == nil {
		return "", errors.New("inline fulfillment not configured")
	}
	input := ports.StepInput{TenantID: tenantID, OrderID: orderID}
	steps := []func(context.Context, ports.StepInput) (*ports.StepResult, error){
		o.service.ValidateOrder,
		o.service.ReceiveOrder,
		o.service.CookOrder,
		o.service.PackOrder,
		o.service.DeliverOrder,
		o.service.CompleteOrder,
	}
	go func() {
		ctx := context.Background()
		for _, step := range steps {
			if _, err := step(ctx, input); err != nil {
				return
			}
		}
	}()
	return fmt.Sprintf("inline-%s", buildFulfillmentWorkflowID(tenantID, orderID)), nil
}

func buildFulfillmentWorkflowID(tenantID, orderID string) string {
	return fmt.Sprintf("order-fulfillment-%s-%s", tenantID, orderID)
}
