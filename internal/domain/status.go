package domain

import "strings"

// StockStatus is the derived classification of a record's on-hand level.
type StockStatus string

const (
	StockUnderstocked StockStatus = "UNDERSTOCKED"
	StockOverstocked  StockStatus = "OVERSTOCKED"
	StockNormal       StockStatus = "NORMAL"
)

type AlertType string

const (
	AlertLowStock    AlertType = "LOW_STOCK"
	AlertOverstocked AlertType = "OVERSTOCKED"
)

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
)

// Inventory level thresholds shared by alerts, dashboard counts and the
// stock classifier.
const (
	LowStockThreshold      = 10
	OverstockThreshold     = 100
	CriticalStockThreshold = 5
	UnderstockDemandRatio  = 0.5
)

var stockStatusCodes = map[string]StockStatus{
	"understocked": StockUnderstocked,
	"overstocked":  StockOverstocked,
	"normal":       StockNormal,
}

// ParseStockStatus returns the status for a given label (case-insensitive).
func ParseStockStatus(label string) (StockStatus, bool) {
	status, ok := stockStatusCodes[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}
