package domain

// DashboardStats is the summary card data computed over every stored record.
type DashboardStats struct {
	TotalProducts         int   `json:"totalProducts"`
	TotalStores           int   `json:"totalStores"`
	AverageInventoryLevel int64 `json:"averageInventoryLevel"`
	LowStockItems         int   `json:"lowStockItems"`
	OverstockedItems      int   `json:"overstockedItems"`
	TotalValue            int64 `json:"totalValue"`
	RevenueForecast       int64 `json:"revenueForecast"`
	AIInsights            int   `json:"aiInsights"` // number of records analysed
}

// RevenueForecast compares on-hand value against forecast demand value.
type RevenueForecast struct {
	CurrentRevenue    int64   `json:"currentRevenue"`
	ForecastedRevenue int64   `json:"forecastedRevenue"`
	GrowthRate        float64 `json:"growthRate"`
	Currency          string  `json:"currency"`
}

// StockAlert flags a record whose level is below the low-stock or above the
// overstock threshold.
type StockAlert struct {
	ProductID      string    `json:"productId"`
	ProductName    string    `json:"productName"`
	StoreID        string    `json:"storeId"`
	CurrentLevel   int       `json:"currentLevel"`
	AlertType      AlertType `json:"alertType"`
	Severity       Severity  `json:"severity"`
	Recommendation string    `json:"recommendation"`
}

// CategoryStats aggregates the records of one category.
type CategoryStats struct {
	TotalValue       int64 `json:"totalValue"`
	AverageInventory int64 `json:"averageInventory"`
	LowStockItems    int   `json:"lowStockItems"`
	ItemCount        int   `json:"itemCount"`
}

// InventoryPrediction is the per-record stock prediction returned to clients.
type InventoryPrediction struct {
	ProductID              string      `json:"productId"`
	ProductName            string      `json:"productName"`
	StoreID                string      `json:"storeId"`
	Category               string      `json:"category"`
	CurrentInventory       int         `json:"currentInventory"`
	StockStatus            StockStatus `json:"stockStatus"`
	ExpectedDemandIncrease bool        `json:"expectedDemandIncrease"`
	DemandForecast         float64     `json:"demandForecast"`
	Recommendation         string      `json:"recommendation"`
	Source                 string      `json:"source"`
}

const (
	PredictionSourceRemote    = "remote"
	PredictionSourceHeuristic = "heuristic"
)
