package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	promosports "github.com/broasteria/broasteria/internal/domains/promotions/ports"
)

// PromotionsHandler serves promotion management and code redemption.
type PromotionsHandler struct {
	service promosports.Service
	logger  *slog.Logger
}

func NewPromotionsHandler(service promosports.Service, logger *slog.Logger) *PromotionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PromotionsHandler{service: service, logger: logger}
}

type createPromotionRequest struct {
	Code         string    `json:"code" binding:"required"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Type         string    `json:"type" binding:"required"`
	Value        float64   `json:"value" binding:"required"`
	MinimumOrder float64   `json:"minimumOrder"`
	MaxDiscount  float64   `json:"maxDiscount"`
	ValidFrom    time.Time `json:"validFrom"`
	ValidUntil   time.Time `json:"validUntil"`
	UsageLimit   int       `json:"usageLimit"`
}

func (h *PromotionsHandler) Create(c *gin.Context) {
	var req createPromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	promo, err := h.service.CreatePromotion(c.Request.Context(), promosports.CreatePromotionInput{
		TenantID:     c.Param("tenantId"),
		Code:         req.Code,
		Name:         req.Name,
		Description:  req.Description,
		Type:         req.Type,
		Value:        req.Value,
		MinimumOrder: req.MinimumOrder,
		MaxDiscount:  req.MaxDiscount,
		ValidFrom:    req.ValidFrom,
		ValidUntil:   req.ValidUntil,
		UsageLimit:   req.UsageLimit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, toPromotionView(promo))
}

func (h *PromotionsHandler) List(c *gin.Context) {
	promos, err := h.service.ListPromotions(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toPromotionViews(promos))
}

func (h *PromotionsHandler) Get(c *gin.Context) {
	promo, err := h.service.GetPromotion(c.Request.Context(), c.Param("tenantId"), c.Param("promoId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toPromotionView(promo))
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *PromotionsHandler) SetActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	promo, err := h.service.SetActive(c.Request.Context(), c.Param("tenantId"), c.Param("promoId"), *req.Active)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toPromotionView(promo))
}

func (h *PromotionsHandler) Delete(c *gin.Context) {
	if err := h.service.DeletePromotion(c.Request.Context(), c.Param("tenantId"), c.Param("promoId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "promotion deleted", nil)
}

type redeemRequest struct {
	Code     string  `json:"code" binding:"required"`
	Subtotal float64 `json:"subtotal" binding:"required"`
}

// Validate prices a code against a subtotal without consuming a use.
func (h *PromotionsHandler) Validate(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	redemption, err := h.service.ValidateCode(c.Request.Context(), c.Param("tenantId"), req.Code, req.Subtotal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toRedemptionView(redemption))
}

// Redeem consumes one use of the code.
func (h *PromotionsHandler) Redeem(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	redemption, err := h.service.RedeemCode(c.Request.Context(), c.Param("tenantId"), req.Code, req.Subtotal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toRedemptionView(redemption))
}
