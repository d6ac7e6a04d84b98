package inventory_csv

import (
	"math"
	"strconv"
	"strings"
)

// CoerceInt returns the first candidate that parses as an integer, either
// directly or as a float truncated toward zero. Absent, empty and
// unparsable candidates fall through to the next key, then to fallback.
func CoerceInt(m ColumnMap, fallback int, keys ...string) int {
	for _, k := range keys {
		v, ok := m[NormalizeKey(k)]
		if !ok || v == "" {
			continue
		}
		if n, ok := parseInt(v); ok {
			return n
		}
	}
	return fallback
}

// CoerceFloat is the floating-point counterpart of CoerceInt.
func CoerceFloat(m ColumnMap, fallback float64, keys ...string) float64 {
	for _, k := range keys {
		v, ok := m[NormalizeKey(k)]
		if !ok || v == "" {
			continue
		}
		if f, ok := parseFloat(v); ok {
			return f
		}
	}
	return fallback
}

func parseInt(raw string) (int, bool) {
	v := cleanNumber(raw)
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	f, ok := parseFloat(v)
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func parseFloat(raw string) (float64, bool) {
	v := cleanNumber(raw)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// cleanNumber strips thousands separators and a leading currency sign.
func cleanNumber(raw string) string {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, "$")
	return strings.ReplaceAll(v, ",", "")
}
