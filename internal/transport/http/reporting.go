package transport

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	reportingapp "github.com/broasteria/broasteria/internal/domains/reporting/application"
)

// ReportsHandler serves the read-side dashboards.
type ReportsHandler struct {
	service *reportingapp.Service
	logger  *slog.Logger
}

func NewReportsHandler(service *reportingapp.Service, logger *slog.Logger) *ReportsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportsHandler{service: service, logger: logger}
}

func (h *ReportsHandler) Dashboard(c *gin.Context) {
	dash, err := h.service.BuildDashboard(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, dash)
}

func (h *ReportsHandler) Today(c *gin.Context) {
	stats, err := h.service.TodayStats(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

func (h *ReportsHandler) WorkflowStats(c *gin.Context) {
	stats, err := h.service.WorkflowStats(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}
