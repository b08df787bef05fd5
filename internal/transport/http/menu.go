package transport

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	menuports "github.com/broasteria/broasteria/internal/domains/menu/ports"
)

// MenuHandler serves menu browsing and management endpoints.
type MenuHandler struct {
	service menuports.Service
	logger  *slog.Logger
}

func NewMenuHandler(service menuports.Service, logger *slog.Logger) *MenuHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MenuHandler{service: service, logger: logger}
}

type createItemRequest struct {
	Name               string   `json:"name" binding:"required"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Price              float64  `json:"price"`
	ImageURL           string   `json:"imageUrl"`
	PreparationMinutes int      `json:"preparationMinutes"`
	Tags               []string `json:"tags"`
}

func (h *MenuHandler) Create(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.service.CreateItem(c.Request.Context(), menuports.CreateItemInput{
		TenantID:           c.Param("tenantId"),
		Name:               req.Name,
		Description:        req.Description,
		Category:           req.Category,
		Price:              req.Price,
		ImageURL:           req.ImageURL,
		PreparationMinutes: req.PreparationMinutes,
		Tags:               req.Tags,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, toMenuItemView(item))
}

// List supports an optional ?category= filter.
func (h *MenuHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID := c.Param("tenantId")

	if category := c.Query("category"); category != "" {
		items, err := h.service.ListByCategory(ctx, tenantID, category)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		respondData(c, http.StatusOK, toMenuItemViews(items))
		return
	}
	items, err := h.service.ListItems(ctx, tenantID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toMenuItemViews(items))
}

func (h *MenuHandler) Get(c *gin.Context) {
	item, err := h.service.GetItem(c.Request.Context(), c.Param("tenantId"), c.Param("itemId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toMenuItemView(item))
}

type updateItemRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	ImageURL    *string  `json:"imageUrl"`
	Tags        []string `json:"tags"`
}

func (h *MenuHandler) Update(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.service.UpdateItem(c.Request.Context(), menuports.UpdateItemInput{
		TenantID:    c.Param("tenantId"),
		ItemID:      c.Param("itemId"),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toMenuItemView(item))
}

type availabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

func (h *MenuHandler) SetAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.service.SetAvailability(c.Request.Context(), c.Param("tenantId"), c.Param("itemId"), *req.Available)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toMenuItemView(item))
}

func (h *MenuHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteItem(c.Request.Context(), c.Param("tenantId"), c.Param("itemId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "menu item deleted", nil)
}
