package ports

import (
	"context"

	"github.com/broasteria/broasteria/internal/domains/orders/domain"
)

// EventPublisher pushes domain events onto the tenant event bus.
// Publishing is fire-and-forget from the service's point of view:
// errors are logged by the caller and never surfaced.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// BroadcastResult summarizes one fan-out attempt.
type BroadcastResult struct {
	SuccessCount     int `json:"successCount"`
	FailureCount     int `json:"failureCount"`
	TotalConnections int `json:"totalConnections"`
}

// Broadcaster delivers a payload to every live connection of a tenant.
type Broadcaster interface {
	Broadcast(ctx context.Context, tenantID string, message any) (BroadcastResult, error)
}

// NoopPublisher satisfies EventPublisher when no bus is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }

// NoopBroadcaster satisfies Broadcaster when no gateway is configured.
type NoopBroadcaster struct{}

func (NoopBroadcaster) Broadcast(context.Context, string, any) (BroadcastResult, error) {
	return BroadcastResult{}, nil
}
