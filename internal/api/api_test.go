package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/ai"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/api"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/api/middleware"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/config"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/metrics"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/repository/memory"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "date,storeId,productId,category,region,inventoryLevel,unitsSold,unitsOrdered,demandForecast,price,discount,weatherCondition,holidayOrPromotion,competitorPricing,seasonality\n" +
	"2024-01-01,S1,P1,Electronics,East,5,2,3,20,100.0,0.0,Sunny,None,90.0,Winter\n" +
	"2024-01-02,S2,P2,Toys,West,150,1,0,10,2.0,0.0,Rainy,None,2.5,Summer\n"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, aiHandler http.HandlerFunc) *gin.Engine {
	t.Helper()
	aiServer := httptest.NewServer(aiHandler)
	t.Cleanup(aiServer.Close)

	repo := memory.NewInventoryRepository()
	client := ai.NewClient(config.AIConfig{ServiceURL: aiServer.URL, TimeoutMs: 500})
	predictor := ai.NewFallbackPredictor(ai.NewRemotePredictor(client), ai.NewHeuristicPredictor())
	ingest := config.IngestConfig{MaxRows: 1000, TimeoutMs: 10000, BatchSize: 1000, DefaultDate: "2024-01-01"}

	return api.NewRouter(&api.Services{
		InventoryService:  service.NewInventoryService(repo, nil, nil, nil, ingest, 4096),
		AnalyticsService:  service.NewAnalyticsService(repo, nil),
		PredictionService: service.NewPredictionService(repo, predictor, client),
		Metrics:           metrics.Handler(),
	}, []string{"*"})
}

func unavailable(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusServiceUnavailable)
}

func upload(t *testing.T, router http.Handler, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

func TestUploadThenRead(t *testing.T) {
	router := newRouter(t, unavailable)

	w := upload(t, router, "inventory.csv", sampleCSV)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res map[string]interface{}
	decode(t, w, &res)
	assert.Equal(t, float64(2), res["processed"])
	assert.Equal(t, float64(0), res["skipped"])
	assert.NotEmpty(t, res["runId"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	for _, path := range []string{"/api/v1/inventory/all", "/api/v1/inventory/events"} {
		w = get(router, path)
		require.Equal(t, http.StatusOK, w.Code)
		var records []domain.InventoryRecord
		decode(t, w, &records)
		require.Len(t, records, 2)
		assert.Equal(t, "P1", records[0].ProductID)
		assert.Equal(t, "2024-01-01", records[0].Date)
	}

	w = get(router, "/api/v1/inventory/runs?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	var runs []map[string]interface{}
	decode(t, w, &runs)
	require.Len(t, runs, 1)
	assert.Equal(t, "completed", runs[0]["status"])
	assert.Equal(t, "inventory.csv", runs[0]["source"])
}

func TestUploadRejectsBadFiles(t *testing.T) {
	router := newRouter(t, unavailable)

	w := upload(t, router, "inventory.txt", sampleCSV)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), domain.ErrInvalidFileType.Error())

	w = upload(t, router, "big.csv", strings.Repeat("a,b\n", 2000))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), domain.ErrFileTooLarge.Error())

	w = upload(t, router, "empty.csv", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/upload", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(router, "/api/v1/inventory/all")
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestAnalyticsEndpoints(t *testing.T) {
	router := newRouter(t, unavailable)

	w := get(router, "/api/v1/analytics/dashboard")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"error":"No data available"}`, w.Body.String())

	w = get(router, "/api/v1/analytics/revenue-forecast")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"error":"No data available"}`, w.Body.String())

	require.Equal(t, http.StatusOK, upload(t, router, "inventory.csv", sampleCSV).Code)

	w = get(router, "/api/v1/analytics/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	var stats domain.DashboardStats
	decode(t, w, &stats)
	assert.Equal(t, domain.DashboardStats{
		TotalProducts:         2,
		TotalStores:           2,
		AverageInventoryLevel: 78,
		LowStockItems:         1,
		OverstockedItems:      1,
		TotalValue:            800,
		RevenueForecast:       2020,
		AIInsights:            2,
	}, stats)

	w = get(router, "/api/v1/analytics/revenue-forecast")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"currentRevenue":800,"forecastedRevenue":2020,"growthRate":152.5,"currency":"USD"}`, w.Body.String())

	w = get(router, "/api/v1/analytics/stock-alerts")
	require.Equal(t, http.StatusOK, w.Code)
	var alerts []domain.StockAlert
	decode(t, w, &alerts)
	require.Len(t, alerts, 2)
	assert.Equal(t, "Urgent: Reorder Unnamed Product immediately. Current stock: 5", alerts[0].Recommendation)

	w = get(router, "/api/v1/analytics/category-performance")
	require.Equal(t, http.StatusOK, w.Code)
	var categories map[string]domain.CategoryStats
	decode(t, w, &categories)
	assert.Equal(t, domain.CategoryStats{TotalValue: 500, AverageInventory: 5, LowStockItems: 1, ItemCount: 1}, categories["Electronics"])
}

func TestPredictionsFallBackToHeuristic(t *testing.T) {
	router := newRouter(t, unavailable)

	w := get(router, "/api/v1/predict-inventory-status")
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusOK, upload(t, router, "inventory.csv", sampleCSV).Code)

	for _, path := range []string{"/api/v1/predict-inventory-status", "/api/v1/inventory/predictions"} {
		w = get(router, path)
		require.Equal(t, http.StatusOK, w.Code)
		var preds []domain.InventoryPrediction
		decode(t, w, &preds)
		require.Len(t, preds, 2)
		assert.Equal(t, domain.StockUnderstocked, preds[0].StockStatus)
		assert.Equal(t, "Increase inventory levels immediately", preds[0].Recommendation)
		assert.Equal(t, domain.PredictionSourceHeuristic, preds[0].Source)
	}
}

func TestPredictionsUseRemoteService(t *testing.T) {
	router := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			InventoryData []map[string]interface{} `json:"inventory_data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		preds := make([]map[string]interface{}, len(body.InventoryData))
		for i := range preds {
			preds[i] = map[string]interface{}{"stockStatus": "NORMAL", "expectedDemandIncrease": false, "recommendation": "remote says hold"}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"predictions": preds, "status": "success"})
	})
	require.Equal(t, http.StatusOK, upload(t, router, "inventory.csv", sampleCSV).Code)

	w := get(router, "/api/v1/inventory/predictions")
	require.Equal(t, http.StatusOK, w.Code)
	var preds []domain.InventoryPrediction
	decode(t, w, &preds)
	require.Len(t, preds, 2)
	assert.Equal(t, domain.StockNormal, preds[0].StockStatus)
	assert.Equal(t, "remote says hold", preds[0].Recommendation)
	assert.Equal(t, domain.PredictionSourceRemote, preds[0].Source)
	assert.Equal(t, "P1", preds[0].ProductID)
}

func TestAIOptimizeAndHealth(t *testing.T) {
	router := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/optimize":
			var body map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"target": body["optimization_target"]})
		case "/health":
			_, _ = w.Write([]byte(`{"status":"up"}`))
		}
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/optimize", strings.NewReader(`{"target":"waste"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"target":"waste"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/ai/optimize", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"target":"cost"}`, w.Body.String())

	w = get(router, "/api/v1/ai/health")
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]interface{}
	decode(t, w, &health)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, map[string]interface{}{"status": "up"}, health["response"])
}

func TestAIHealthUnhealthy(t *testing.T) {
	router := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	})

	w := get(router, "/api/v1/ai/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var health map[string]interface{}
	decode(t, w, &health)
	assert.Equal(t, "unhealthy", health["status"])
	assert.NotEmpty(t, health["error"])
}

func TestHealthAndMetrics(t *testing.T) {
	router := newRouter(t, unavailable)

	w := get(router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = get(router, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}
