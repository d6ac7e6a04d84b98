package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	service *service.PredictionService
}

func NewAIHandler(service *service.PredictionService) *AIHandler {
	return &AIHandler{service: service}
}

// GetPredictions returns one prediction per stored record.
func (h *AIHandler) GetPredictions(c *gin.Context) {
	preds, err := h.service.Predict(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{"error": noDataMessage})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to predict inventory status", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, preds)
}

// Optimize accepts an optional {"target","constraints"} body.
func (h *AIHandler) Optimize(c *gin.Context) {
	var req service.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result := h.service.Optimize(c.Request.Context(), req)
	if _, failed := result["error"]; failed {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AIHandler) Health(c *gin.Context) {
	result := h.service.Health(c.Request.Context())
	status := http.StatusOK
	if result["status"] != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}
