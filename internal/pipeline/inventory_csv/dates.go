package inventory_csv

import (
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// day-first layouts tried after ISO; "2" and "1" also accept two digits
var dayFirstLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
}

// NormalizeDate returns raw as an ISO-8601 calendar date. ISO input (with an
// optional time part) is returned as its date, day-first input is
// reinterpreted. The bool is false when neither form parses.
func NormalizeDate(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", false
	}

	if _, err := time.Parse(isoDate, v); err == nil {
		return v, true
	}
	if len(v) > len(isoDate) && (v[len(isoDate)] == 'T' || v[len(isoDate)] == ' ') {
		if _, err := time.Parse(isoDate, v[:len(isoDate)]); err == nil {
			return v[:len(isoDate)], true
		}
	}

	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(isoDate), true
		}
	}
	return "", false
}

// startOfDay parses an already-normalized date at midnight UTC.
func startOfDay(date string) time.Time {
	t, err := time.Parse(isoDate, date)
	if err != nil {
		return time.Time{}
	}
	return t
}
