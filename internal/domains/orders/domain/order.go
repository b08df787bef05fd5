package domain

import (
	"errors"
	"fmt"
	"time"
)

// Status enumerates order lifecycle states. No other value may ever be
// stored on an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusReceived  Status = "RECEIVED"
	StatusCooking   Status = "COOKING"
	StatusPacking   Status = "PACKING"
	StatusDelivery  Status = "DELIVERY"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// TaxRate is the IGV applied to every order subtotal.
const TaxRate = 0.18

var (
	ErrUnknownStatus  = errors.New("order status is not a known value")
	ErrTerminalStatus = errors.New("order is in a terminal status")
	ErrNotAdjacent    = errors.New("status transition is not allowed from the current status")
	ErrNotCancellable = errors.New("order can no longer be cancelled")
	ErrNoItems        = errors.New("order must contain at least one item")
	ErrInvalidItem    = errors.New("order item is invalid")
)

// transitions is the single authoritative adjacency table. Every caller
// that needs to gate a transition consults it through NextAllowed or
// CanTransitionTo; there are no other status comparisons scattered
// around the codebase.
var transitions = map[Status][]Status{
	StatusPending:   {StatusReceived, StatusCancelled},
	StatusReceived:  {StatusCooking, StatusCancelled},
	StatusCooking:   {StatusPacking, StatusCancelled},
	StatusPacking:   {StatusDelivery},
	StatusDelivery:  {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// AllStatuses lists the closed enumeration in workflow order.
func AllStatuses() []Status {
	return []Status{
		StatusPending, StatusReceived, StatusCooking,
		StatusPacking, StatusDelivery, StatusCompleted, StatusCancelled,
	}
}

// IsValidStatus reports whether s is a member of the closed set.
func IsValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transition is permitted from s.
func IsTerminal(s Status) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo consults the adjacency table.
func CanTransitionTo(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// cancellableFrom mirrors the business rule that food and packaging are
// committed once packing starts.
var cancellableFrom = map[Status]bool{
	StatusPending:  true,
	StatusReceived: true,
	StatusCooking:  true,
}

// CanCancelFrom reports whether an order in status s may still be cancelled.
func CanCancelFrom(s Status) bool {
	return cancellableFrom[s]
}

// LineItem is one entry of an order's item list.
type LineItem struct {
	ItemID   string  `json:"itemId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// StatusEntry is one append-only audit record of a status change.
type StatusEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	StaffID   string    `json:"staffId,omitempty"`
	StaffName string    `json:"staffName,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// WorkflowStep logs one fulfillment stage with its handling staff.
type WorkflowStep struct {
	Step      Status     `json:"step"`
	StaffID   string     `json:"staffId,omitempty"`
	StaffName string     `json:"staffName,omitempty"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

// StaffAssignment records which staff member holds a workflow role.
type StaffAssignment struct {
	StaffID    string    `json:"staffId"`
	StaffName  string    `json:"staffName"`
	AssignedAt time.Time `json:"assignedAt"`
}

// WorkflowLog is the embedded fulfillment sub-record of an order.
type WorkflowLog struct {
	CurrentStep      Status                     `json:"currentStep"`
	Steps            []WorkflowStep             `json:"steps"`
	AssignedStaff    map[string]StaffAssignment `json:"assignedStaff"`
	ExecutionID      string                     `json:"executionId,omitempty"`
	StartedAt        *time.Time                 `json:"startedAt,omitempty"`
	CompletedAt      *time.Time                 `json:"completedAt,omitempty"`
	TotalTimeMinutes float64                    `json:"totalTimeMinutes,omitempty"`
}

// Order is the aggregate whose lifecycle this system tracks.
type Order struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenantId"`
	OrderNumber string `json:"orderNumber"`

	CustomerID    string `json:"customerId"`
	CustomerName  string `json:"customerName,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`

	Items       []LineItem `json:"items"`
	Subtotal    float64    `json:"subtotal"`
	Tax         float64    `json:"tax"`
	DeliveryFee float64    `json:"deliveryFee"`
	Discount    float64    `json:"discount"`
	Tip         float64    `json:"tip"`
	Total       float64    `json:"total"`

	DeliveryAddress string `json:"deliveryAddress"`
	DeliveryNotes   string `json:"deliveryNotes,omitempty"`
	PaymentMethod   string `json:"paymentMethod"`
	PaymentStatus   string `json:"paymentStatus"`

	Status        Status        `json:"status"`
	StatusHistory []StatusEntry `json:"statusHistory"`
	Workflow      WorkflowLog   `json:"workflow"`

	EstimatedMinutes   int        `json:"estimatedMinutes"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CancellationReason string     `json:"cancellationReason,omitempty"`
	CancelledBy        string     `json:"cancelledBy,omitempty"`
	RefundRequested    bool       `json:"refundRequested,omitempty"`
	RefundStatus       string     `json:"refundStatus,omitempty"`

	// Version guards read-modify-write cycles when optimistic locking
	// is enabled; repositories bump it on every successful update.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewOrder validates the inputs, computes totals, and returns an order
// in PENDING with its first history entry.
func NewOrder(id, tenantID, customerID string, items []LineItem, deliveryFee, tip float64, address string, now time.Time) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	for _, item := range items {
		if item.Quantity <= 0 || item.Price < 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidItem, item.ItemID)
		}
	}
	o := &Order{
		ID:              id,
		TenantID:        tenantID,
		OrderNumber:     orderNumber(id, now),
		CustomerID:      customerID,
		Items:           items,
		DeliveryFee:     deliveryFee,
		Tip:             tip,
		DeliveryAddress: address,
		PaymentMethod:   "CASH",
		PaymentStatus:   "PENDING",
		Status:          StatusPending,
		Workflow: WorkflowLog{
			CurrentStep:   StatusPending,
			Steps:         []WorkflowStep{},
			AssignedStaff: map[string]StaffAssignment{},
		},
		EstimatedMinutes: 45,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	o.RecomputeTotal()
	o.StatusHistory = []StatusEntry{{
		Status:    StatusPending,
		Timestamp: now,
		Message:   "Order placed by customer",
	}}
	return o, nil
}

// RecomputeTotal derives subtotal, tax, and total from the line items
// and the fee/discount/tip fields. Total is never mutated directly.
func (o *Order) RecomputeTotal() {
	subtotal := 0.0
	for _, item := range o.Items {
		subtotal += item.Price * float64(item.Quantity)
	}
	o.Subtotal = subtotal
	o.Tax = subtotal * TaxRate
	o.Total = o.Subtotal + o.Tax + o.DeliveryFee - o.Discount + o.Tip
}

// ApplyTransition mutates status through the only authorized path:
// validates the target, rejects moves out of terminal states, appends a
// history entry, and bumps UpdatedAt. It performs no adjacency check;
// sequencing is the caller's responsibility (see CanTransitionTo).
func (o *Order) ApplyTransition(target Status, staffID, staffName, message string, now time.Time) error {
	if !IsValidStatus(target) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, target)
	}
	if IsTerminal(o.Status) {
		return fmt.Errorf("%w: %s", ErrTerminalStatus, o.Status)
	}
	if message == "" {
		message = fmt.Sprintf("Status changed to %s", target)
	}
	o.StatusHistory = append(o.StatusHistory, StatusEntry{
		Status:    target,
		Timestamp: now,
		StaffID:   staffID,
		StaffName: staffName,
		Message:   message,
	})
	o.Status = target
	o.Workflow.CurrentStep = target
	o.UpdatedAt = now
	return nil
}

// Cancel marks the order CANCELLED if it is still cancellable.
func (o *Order) Cancel(reason, cancelledBy string, refundRequested bool, now time.Time) error {
	if !CanCancelFrom(o.Status) {
		return fmt.Errorf("%w: current status %s", ErrNotCancellable, o.Status)
	}
	if reason == "" {
		reason = "No reason provided"
	}
	if err := o.ApplyTransition(StatusCancelled, "", cancelledBy, "Order cancelled: "+reason, now); err != nil {
		return err
	}
	o.CancelledAt = &now
	o.CancellationReason = reason
	o.CancelledBy = cancelledBy
	o.RefundRequested = refundRequested
	if refundRequested {
		o.RefundStatus = "PENDING"
	} else {
		o.RefundStatus = "NOT_APPLICABLE"
	}
	return nil
}

// OpenStep closes any still-open workflow step and opens a new entry
// for the given stage.
func (o *Order) OpenStep(step Status, staffID, staffName string, now time.Time) {
	o.CloseOpenStep(now)
	o.Workflow.Steps = append(o.Workflow.Steps, WorkflowStep{
		Step:      step,
		StaffID:   staffID,
		StaffName: staffName,
		StartTime: now,
	})
}

// CloseOpenStep sets EndTime on the most recent step that has none.
func (o *Order) CloseOpenStep(now time.Time) {
	for i := len(o.Workflow.Steps) - 1; i >= 0; i-- {
		if o.Workflow.Steps[i].EndTime == nil {
			end := now
			o.Workflow.Steps[i].EndTime = &end
			return
		}
	}
}

// AssignStaff records a staff member against a workflow role.
func (o *Order) AssignStaff(role, staffID, staffName string, now time.Time) {
	if o.Workflow.AssignedStaff == nil {
		o.Workflow.AssignedStaff = map[string]StaffAssignment{}
	}
	o.Workflow.AssignedStaff[role] = StaffAssignment{
		StaffID:    staffID,
		StaffName:  staffName,
		AssignedAt: now,
	}
	o.UpdatedAt = now
}

// FinishFulfillment stamps completion bookkeeping once the order reaches
// COMPLETED: closes the last step, records total workflow minutes, and
// settles payment.
func (o *Order) FinishFulfillment(now time.Time) {
	o.CloseOpenStep(now)
	o.Workflow.CompletedAt = &now
	o.Workflow.TotalTimeMinutes = now.Sub(o.CreatedAt).Minutes()
	o.PaymentStatus = "COMPLETED"
	o.UpdatedAt = now
}

// Active reports whether the order still needs fulfillment attention.
func (o *Order) Active() bool {
	return !IsTerminal(o.Status)
}

func orderNumber(id string, now time.Time) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("BR-%s-%s", now.UTC().Format("20060102"), short)
}
