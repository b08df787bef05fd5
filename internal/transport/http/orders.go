package transport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	orderdomain "github.com/broasteria/broasteria/internal/domains/orders/domain"
	orderports "github.com/broasteria/broasteria/internal/domains/orders/ports"
)

// OrdersHandler serves the order lifecycle endpoints.
type OrdersHandler struct {
	service orderports.Service
	logger  *slog.Logger
}

func NewOrdersHandler(service orderports.Service, logger *slog.Logger) *OrdersHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrdersHandler{service: service, logger: logger}
}

type createOrderRequest struct {
	CustomerID      string                 `json:"customerId" binding:"required"`
	CustomerName    string                 `json:"customerName"`
	CustomerPhone   string                 `json:"customerPhone"`
	CustomerEmail   string                 `json:"customerEmail"`
	Items           []orderdomain.LineItem `json:"items" binding:"required"`
	DeliveryAddress string                 `json:"deliveryAddress" binding:"required"`
	DeliveryNotes   string                 `json:"deliveryNotes"`
	PaymentMethod   string                 `json:"paymentMethod"`
	DeliveryFee     float64                `json:"deliveryFee"`
	Tip             float64                `json:"tip"`
	Discount        float64                `json:"discount"`
}

func (h *OrdersHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	order, err := h.service.CreateOrder(c.Request.Context(), orderports.CreateOrderInput{
		TenantID:        c.Param("tenantId"),
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		Items:           req.Items,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryNotes:   req.DeliveryNotes,
		PaymentMethod:   req.PaymentMethod,
		DeliveryFee:     req.DeliveryFee,
		Tip:             req.Tip,
		Discount:        req.Discount,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, order)
}

func (h *OrdersHandler) Get(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("tenantId"), c.Param("orderId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// List supports ?status= and ?limit= filters.
func (h *OrdersHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID := c.Param("tenantId")

	if status := c.Query("status"); status != "" {
		orders, err := h.service.ListOrdersByStatus(ctx, tenantID, orderdomain.Status(status))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		respondData(c, http.StatusOK, orders)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondFail(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	orders, err := h.service.ListOrders(ctx, tenantID, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, orders)
}

func (h *OrdersHandler) Active(c *gin.Context) {
	orders, err := h.service.ActiveOrders(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, orders)
}

func (h *OrdersHandler) ListByCustomer(c *gin.Context) {
	orders, err := h.service.ListCustomerOrders(c.Request.Context(), c.Param("tenantId"), c.Param("customerId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, orders)
}

type transitionRequest struct {
	Target          string `json:"target" binding:"required"`
	ExpectedCurrent string `json:"expectedCurrent"`
	StaffID         string `json:"staffId"`
	StaffName       string `json:"staffName"`
	Message         string `json:"message"`
}

func (h *OrdersHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	order, err := h.service.Transition(c.Request.Context(), orderports.TransitionInput{
		TenantID:        c.Param("tenantId"),
		OrderID:         c.Param("orderId"),
		Target:          orderdomain.Status(req.Target),
		ExpectedCurrent: orderdomain.Status(req.ExpectedCurrent),
		StaffID:         req.StaffID,
		StaffName:       req.StaffName,
		Message:         req.Message,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

type cancelRequest struct {
	Reason          string `json:"reason"`
	CancelledBy     string `json:"cancelledBy"`
	RefundRequested bool   `json:"refundRequested"`
}

func (h *OrdersHandler) Cancel(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	claims := claimsFrom(c)
	if req.CancelledBy == "" && claims != nil {
		req.CancelledBy = claims.UserID
	}
	order, err := h.service.CancelOrder(c.Request.Context(), orderports.CancelOrderInput{
		TenantID:        c.Param("tenantId"),
		OrderID:         c.Param("orderId"),
		Reason:          req.Reason,
		CancelledBy:     req.CancelledBy,
		RefundRequested: req.RefundRequested,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "order cancelled", order)
}

type assignStaffRequest struct {
	Role      string `json:"role" binding:"required"`
	StaffID   string `json:"staffId" binding:"required"`
	StaffName string `json:"staffName"`
}

func (h *OrdersHandler) AssignStaff(c *gin.Context) {
	var req assignStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	order, err := h.service.AssignStaff(c.Request.Context(), orderports.AssignStaffInput{
		TenantID:  c.Param("tenantId"),
		OrderID:   c.Param("orderId"),
		Role:      req.Role,
		StaffID:   req.StaffID,
		StaffName: req.StaffName,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

func (h *OrdersHandler) StartWorkflow(c *gin.Context) {
	order, err := h.service.StartWorkflow(c.Request.Context(), c.Param("tenantId"), c.Param("orderId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusAccepted, "fulfillment workflow started", order)
}

// Step runs one fulfillment step directly, the manual path staff use
// when the durable workflow is unavailable or a stage needs a nudge.
func (h *OrdersHandler) Step(c *gin.Context) {
	input := orderports.StepInput{
		TenantID: c.Param("tenantId"),
		OrderID:  c.Param("orderId"),
	}
	var step func(c *gin.Context, input orderports.StepInput) (*orderports.StepResult, error)
	switch c.Param("step") {
	case "validate":
		step = func(c *gin.Context, input orderports.StepInput) (*orderports.StepResult, error) {
			return h.service.ValidateOrder(c.Request.Context(), input)
		}
	case "receive":
		step = func(c *gin.Context, input orderports.StepInput) (*orderports.StepResult, error) {
			return h.service.ReceiveOrder(c.Request.Context(), input)
		}
	case "cook":
		step = func(c *gin.Context, input orderports.StepInput) (*orderports.StepResult, error) {
			return h.service.CookOrder(c.Request.Context(), input)
		}
	case "pack":
		step = func(c *gin.Context, input orderports.StepInput) (*orderports.StepResult, error) {
			return h.service.PackOrder(c.Request.Context(), input)
		}
	case "deliver":
		step = func(c *gin.Context, input orderports.StepInput) (*orderports.StepResult, error) {
			return h.service.DeliverOrder(c.Request.Context(), input)
		}
	case "complete":
		step = func(c *gin.Context, input orderports.StepInput) (*orderports.StepResult, error) {
			return h.service.CompleteOrder(c.Request.Context(), input)
		}
	default:
		respondFail(c, http.StatusBadRequest, "unknown step: "+c.Param("step"))
		return
	}
	result, err := step(c, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, result)
}
