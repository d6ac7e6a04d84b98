package inventory_csv

import "time"

// SetClock replaces the parser's time source.
func SetClock(p *Parser, now func() time.Time) { p.now = now }
