package ports

import "context"

// FulfillmentOrchestrator starts the durable fulfillment workflow for a
// newly placed order. The orchestrator owns sequencing and retries; the
// service must treat step invocations as at-least-once.
type FulfillmentOrchestrator interface {
	StartFulfillment(ctx context.Context, tenantID, orderID string) (executionID string, err error)
}
