package handlers

import (
	"errors"
	"net/http"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

const noDataMessage = "No data available"

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	stats, err := h.service.GetDashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to compute dashboard")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AnalyticsHandler) GetRevenueForecast(c *gin.Context) {
	forecast, err := h.service.GetRevenueForecast(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to compute revenue forecast")
		return
	}
	c.JSON(http.StatusOK, forecast)
}

func (h *AnalyticsHandler) GetStockAlerts(c *gin.Context) {
	alerts, err := h.service.GetStockAlerts(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to compute stock alerts")
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *AnalyticsHandler) GetCategoryPerformance(c *gin.Context) {
	stats, err := h.service.GetCategoryPerformance(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to compute category performance")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// fail answers an empty store with 200 and {"error":"No data available"}.
func (h *AnalyticsHandler) fail(c *gin.Context, err error, message string) {
	if errors.Is(err, domain.ErrNoData) {
		c.JSON(http.StatusOK, gin.H{"error": noDataMessage})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()})
}
