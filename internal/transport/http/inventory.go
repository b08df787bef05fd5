package transport

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	inventoryports "github.com/broasteria/broasteria/internal/domains/inventory/ports"
)

// InventoryHandler serves kitchen stock tracking.
type InventoryHandler struct {
	service inventoryports.Service
	logger  *slog.Logger
}

func NewInventoryHandler(service inventoryports.Service, logger *slog.Logger) *InventoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryHandler{service: service, logger: logger}
}

type createStockRequest struct {
	Name              string  `json:"name" binding:"required"`
	Unit              string  `json:"unit"`
	Quantity          float64 `json:"quantity"`
	LowStockThreshold float64 `json:"lowStockThreshold"`
}

func (h *InventoryHandler) Create(c *gin.Context) {
	var req createStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	stock, err := h.service.CreateStock(c.Request.Context(), inventoryports.CreateStockInput{
		TenantID:          c.Param("tenantId"),
		Name:              req.Name,
		Unit:              req.Unit,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, toStockView(stock))
}

func (h *InventoryHandler) List(c *gin.Context) {
	stocks, err := h.service.ListStock(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toStockViews(stocks))
}

func (h *InventoryHandler) Get(c *gin.Context) {
	stock, err := h.service.GetStock(c.Request.Context(), c.Param("tenantId"), c.Param("stockId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toStockView(stock))
}

type adjustStockRequest struct {
	Delta  *float64 `json:"delta" binding:"required"`
	Reason string   `json:"reason"`
}

func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	stock, err := h.service.AdjustStock(c.Request.Context(), inventoryports.AdjustStockInput{
		TenantID: c.Param("tenantId"),
		StockID:  c.Param("stockId"),
		Delta:    *req.Delta,
		Reason:   req.Reason,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toStockView(stock))
}

func (h *InventoryHandler) Low(c *gin.Context) {
	stocks, err := h.service.LowStock(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toStockViews(stocks))
}

func (h *InventoryHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteStock(c.Request.Context(), c.Param("tenantId"), c.Param("stockId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "stock item deleted", nil)
}
