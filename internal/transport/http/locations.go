package transport

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	locationsports "github.com/broasteria/broasteria/internal/domains/locations/ports"
)

// LocationsHandler serves branch management and delivery checks.
type LocationsHandler struct {
	service locationsports.Service
	logger  *slog.Logger
}

func NewLocationsHandler(service locationsports.Service, logger *slog.Logger) *LocationsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocationsHandler{service: service, logger: logger}
}

type createLocationRequest struct {
	Name                  string  `json:"name" binding:"required"`
	Address               string  `json:"address"`
	Phone                 string  `json:"phone"`
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	DeliveryRadiusKm      float64 `json:"deliveryRadiusKm"`
	MinimumOrder          float64 `json:"minimumOrder"`
	DeliveryFee           float64 `json:"deliveryFee"`
	FreeDeliveryThreshold float64 `json:"freeDeliveryThreshold"`
}

func (h *LocationsHandler) Create(c *gin.Context) {
	var req createLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	loc, err := h.service.CreateLocation(c.Request.Context(), locationsports.CreateLocationInput{
		TenantID:              c.Param("tenantId"),
		Name:                  req.Name,
		Address:               req.Address,
		Phone:                 req.Phone,
		Latitude:              req.Latitude,
		Longitude:             req.Longitude,
		DeliveryRadiusKm:      req.DeliveryRadiusKm,
		MinimumOrder:          req.MinimumOrder,
		DeliveryFee:           req.DeliveryFee,
		FreeDeliveryThreshold: req.FreeDeliveryThreshold,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, toLocationView(loc))
}

func (h *LocationsHandler) List(c *gin.Context) {
	locs, err := h.service.ListLocations(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toLocationViews(locs))
}

func (h *LocationsHandler) Get(c *gin.Context) {
	loc, err := h.service.GetLocation(c.Request.Context(), c.Param("tenantId"), c.Param("locationId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toLocationView(loc))
}

func (h *LocationsHandler) SetActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	loc, err := h.service.SetActive(c.Request.Context(), c.Param("tenantId"), c.Param("locationId"), *req.Active)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toLocationView(loc))
}

func (h *LocationsHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteLocation(c.Request.Context(), c.Param("tenantId"), c.Param("locationId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "location deleted", nil)
}

type checkAvailabilityRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Subtotal  float64  `json:"subtotal"`
}

// CheckAvailability answers whether any branch delivers to a point.
func (h *LocationsHandler) CheckAvailability(c *gin.Context) {
	var req checkAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	availability, err := h.service.CheckAvailability(c.Request.Context(), c.Param("tenantId"), *req.Latitude, *req.Longitude, req.Subtotal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toAvailabilityView(availability))
}
