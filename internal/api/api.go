package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/api/handlers"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/api/middleware"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	InventoryService  *service.InventoryService
	AnalyticsService  *service.AnalyticsService
	PredictionService *service.PredictionService
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}

	if services.Metrics != nil {
		router.GET("/metrics", gin.WrapH(services.Metrics))
	}

	apiGroup := router.Group("/api/v1")

	if services.InventoryService != nil {
		inventoryHandler := handlers.NewInventoryHandler(services.InventoryService)
		inventoryGroup := apiGroup.Group("/inventory")
		{
			inventoryGroup.POST("/upload", inventoryHandler.Upload)
			inventoryGroup.GET("/all", inventoryHandler.GetAll)
			inventoryGroup.GET("/events", inventoryHandler.GetAll)
			inventoryGroup.GET("/runs", inventoryHandler.GetRuns)
		}
	}

	if services.AnalyticsService != nil {
		analyticsHandler := handlers.NewAnalyticsHandler(services.AnalyticsService)
		analyticsGroup := apiGroup.Group("/analytics")
		{
			analyticsGroup.GET("/dashboard", analyticsHandler.GetDashboard)
			analyticsGroup.GET("/revenue-forecast", analyticsHandler.GetRevenueForecast)
			analyticsGroup.GET("/stock-alerts", analyticsHandler.GetStockAlerts)
			analyticsGroup.GET("/category-performance", analyticsHandler.GetCategoryPerformance)
		}
	}

	if services.PredictionService != nil {
		aiHandler := handlers.NewAIHandler(services.PredictionService)
		apiGroup.GET("/inventory/predictions", aiHandler.GetPredictions)
		apiGroup.GET("/predict-inventory-status", aiHandler.GetPredictions)

		aiGroup := apiGroup.Group("/ai")
		{
			aiGroup.POST("/optimize", aiHandler.Optimize)
			aiGroup.GET("/health", aiHandler.Health)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
