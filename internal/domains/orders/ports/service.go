package ports

import (
	"context"
	"time"

	"github.com/broasteria/broasteria/internal/domains/orders/domain"
)

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	TenantID        string
	CustomerID      string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	Items           []domain.LineItem
	DeliveryAddress string
	DeliveryNotes   string
	PaymentMethod   string
	DeliveryFee     float64
	Tip             float64
	Discount        float64
}

// TransitionInput drives the single authorized status mutation path.
// ExpectedCurrent, when set, gates the transition on the order's
// current status and fails with a state conflict otherwise.
type TransitionInput struct {
	TenantID        string
	OrderID         string
	Target          domain.Status
	ExpectedCurrent domain.Status
	StaffID         string
	StaffName       string
	Message         string
}

// CancelOrderInput carries cancellation metadata.
type CancelOrderInput struct {
	TenantID        string
	OrderID         string
	Reason          string
	CancelledBy     string
	RefundRequested bool
}

// AssignStaffInput binds a staff member to a workflow role on an order.
type AssignStaffInput struct {
	TenantID  string
	OrderID   string
	Role      string
	StaffID   string
	StaffName string
}

// StepInput is the payload the workflow orchestrator hands each step.
type StepInput struct {
	TenantID string `json:"tenantId"`
	OrderID  string `json:"orderId"`
}

// StepResult is carried forward by the orchestrator between steps.
type StepResult struct {
	OrderID  string        `json:"orderId"`
	TenantID string        `json:"tenantId"`
	Status   domain.Status `json:"status"`
	At       time.Time     `json:"at"`
	Warnings []string      `json:"warnings,omitempty"`
}

// MenuItemView is the slice of a menu record the validation step needs.
type MenuItemView struct {
	ItemID    string
	Name      string
	Price     float64
	Available bool
}

// MenuChecker resolves menu items for order validation. Implemented by
// the menu bounded context.
type MenuChecker interface {
	LookupItem(ctx context.Context, tenantID, itemID string) (*MenuItemView, error)
}

// Service exposes order use cases to transport, activities, and reports.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, tenantID, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, tenantID string, limit int) ([]*domain.Order, error)
	ListOrdersByStatus(ctx context.Context, tenantID string, status domain.Status) ([]*domain.Order, error)
	ListCustomerOrders(ctx context.Context, tenantID, customerID string) ([]*domain.Order, error)
	ActiveOrders(ctx context.Context, tenantID string) ([]*domain.Order, error)

	Transition(ctx context.Context, input TransitionInput) (*domain.Order, error)
	CancelOrder(ctx context.Context, input CancelOrderInput) (*domain.Order, error)
	AssignStaff(ctx context.Context, input AssignStaffInput) (*domain.Order, error)
	// StartWorkflow launches (or retries) the fulfillment workflow for
	// an existing order.
	StartWorkflow(ctx context.Context, tenantID, orderID string) (*domain.Order, error)

	// Workflow step surface, invoked by the orchestrator.
	ValidateOrder(ctx context.Context, input StepInput) (*StepResult, error)
	ReceiveOrder(ctx context.Context, input StepInput) (*StepResult, error)
	CookOrder(ctx context.Context, input StepInput) (*StepResult, error)
	PackOrder(ctx context.Context, input StepInput) (*StepResult, error)
	DeliverOrder(ctx context.Context, input StepInput) (*StepResult, error)
	CompleteOrder(ctx context.Context, input StepInput) (*StepResult, error)
}
