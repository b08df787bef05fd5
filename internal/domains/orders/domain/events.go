package domain

import "time"

// Event types published on the order event bus.
const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderCancelled     = "OrderCancelled"
)

// Event is the envelope published for every order lifecycle change.
type Event struct {
	Type      string         `json:"type"`
	TenantID  string         `json:"tenantId"`
	OrderID   string         `json:"orderId"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// StatusChangedEvent builds the event emitted after a successful transition.
func StatusChangedEvent(o *Order, oldStatus Status, now time.Time) Event {
	return Event{
		Type:      EventOrderStatusChanged,
		TenantID:  o.TenantID,
		OrderID:   o.ID,
		Timestamp: now,
		Payload: map[string]any{
			"oldStatus": string(oldStatus),
			"newStatus": string(o.Status),
		},
	}
}

// CreatedEvent builds the event emitted after an order is persisted.
func CreatedEvent(o *Order, now time.Time) Event {
	return Event{
		Type:      EventOrderCreated,
		TenantID:  o.TenantID,
		OrderID:   o.ID,
		Timestamp: now,
		Payload: map[string]any{
			"orderNumber": o.OrderNumber,
			"total":       o.Total,
			"itemCount":   len(o.Items),
		},
	}
}

// CancelledEvent builds the event emitted after a cancellation.
func CancelledEvent(o *Order, now time.Time) Event {
	return Event{
		Type:      EventOrderCancelled,
		TenantID:  o.TenantID,
		OrderID:   o.ID,
		Timestamp: now,
		Payload: map[string]any{
			"reason":          o.CancellationReason,
			"cancelledBy":     o.CancelledBy,
			"refundRequested": o.RefundRequested,
		},
	}
}
