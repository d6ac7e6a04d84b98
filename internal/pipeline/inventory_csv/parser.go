package inventory_csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxRows     = 50000
	DefaultTimeout     = 300000 * time.Millisecond
	DefaultDate        = "2024-01-01"
	minCellsPerRow     = 2
	defaultCategory    = "General"
	defaultLocation    = "Warehouse"
	defaultProductName = "Unnamed Product"
	defaultWeather     = "Normal"
	defaultHoliday     = "None"
	defaultSeasonality = "All"
	defaultQuantity    = 1
	statusInbound      = "IN"
	statusNew          = "NEW"
)

// Header synonyms, highest priority first.
var (
	dateKeys           = synonyms("date", "event_date", "timestamp", "snapshot_date")
	storeIDKeys        = synonyms("storeId", "store_id", "store", "store_code", "outlet")
	productIDKeys      = synonyms("productId", "product_id", "sku", "item_id", "item_code")
	productNameKeys    = synonyms("productName", "product_name", "name", "item_name", "product", "description")
	categoryKeys       = synonyms("category", "product_category", "department")
	supplierKeys       = synonyms("supplier", "supplier_name", "vendor")
	locationKeys       = synonyms("region", "location", "warehouse", "store_location")
	statusKeys         = synonyms("status", "eventType", "event_type")
	quantityKeys       = synonyms("quantity", "qty", "units")
	inventoryLevelKeys = synonyms("inventoryLevel", "inventory_level", "stock", "stock_level", "on_hand")
	unitsSoldKeys      = synonyms("unitsSold", "units_sold", "sales", "sold")
	unitsOrderedKeys   = synonyms("unitsOrdered", "units_ordered", "ordered", "orders")
	demandForecastKeys = synonyms("demandForecast", "demand_forecast", "forecast", "demand")
	priceKeys          = synonyms("price", "unit_price", "selling_price")
	discountKeys       = synonyms("discount", "discount_pct")
	competitorKeys     = synonyms("competitorPricing", "competitor_pricing", "competitor_price")
	weatherKeys        = synonyms("weatherCondition", "weather_condition", "weather")
	holidayKeys        = synonyms("holidayOrPromotion", "holiday_promotion", "holiday/promotion", "promotion", "holiday")
	seasonalityKeys    = synonyms("seasonality", "season")
)

// SkipReason tags why a data row produced no record.
type SkipReason string

const (
	SkipTooFewCells SkipReason = "too_few_cells"
	SkipMalformed   SkipReason = "malformed_row"
	SkipRowError    SkipReason = "row_error"
)

// RowResult is the outcome of one data row: exactly one of Record or Skip
// is set.
type RowResult struct {
	Row    int
	Record *domain.InventoryRecord
	Skip   *Skip
}

type Skip struct {
	Reason SkipReason
	Detail string
}

func (r RowResult) OK() bool { return r.Record != nil }

// Options bounds and tunes a parse.
type Options struct {
	MaxRows     int
	Timeout     time.Duration
	DefaultDate string
	Comma       rune
	// LazyQuotes accepts stray quotes inside fields. When false such rows
	// are skipped as malformed.
	LazyQuotes bool
}

func DefaultOptions() Options {
	return Options{
		MaxRows:     DefaultMaxRows,
		Timeout:     DefaultTimeout,
		DefaultDate: DefaultDate,
		Comma:       ',',
	}
}

// ParseResult holds the accepted records and the skipped rows of a parse.
type ParseResult struct {
	Records   []domain.InventoryRecord
	Skipped   []RowResult
	RowsRead  int
	Truncated bool
	// StopReason is "max_rows" or "timeout" when Truncated is set.
	StopReason string
}

// SkipCounts groups skipped rows by reason.
func (r *ParseResult) SkipCounts() map[string]int {
	if len(r.Skipped) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, s := range r.Skipped {
		counts[string(s.Skip.Reason)]++
	}
	return counts
}

// Parser turns delimited inventory exports into InventoryRecords. It never
// fails on a single row; only an unreadable stream is fatal.
type Parser struct {
	opts Options
	now  func() time.Time
}

func NewParser(opts Options) *Parser {
	def := DefaultOptions()
	if opts.MaxRows <= 0 {
		opts.MaxRows = def.MaxRows
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if _, ok := NormalizeDate(opts.DefaultDate); !ok {
		opts.DefaultDate = def.DefaultDate
	}
	if opts.Comma == 0 {
		opts.Comma = def.Comma
	}
	return &Parser{opts: opts, now: time.Now}
}

// Parse reads r to the end, or until the row or time budget is spent.
// A missing header yields an empty result, not an error.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.opts.Comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = p.opts.LazyQuotes
	reader.TrimLeadingSpace = true

	result := &ParseResult{Records: make([]domain.InventoryRecord, 0)}

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = stripBOM(header[0])
	}

	start := p.now()
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("csv ingestion cancelled after %d rows: %w", result.RowsRead, err)
		}
		if result.RowsRead >= p.opts.MaxRows {
			result.Truncated, result.StopReason = true, "max_rows"
			break
		}
		if p.now().Sub(start) > p.opts.Timeout {
			result.Truncated, result.StopReason = true, "timeout"
			break
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		result.RowsRead++
		rowIndex := result.RowsRead

		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, fmt.Errorf("failed to read CSV row %d: %w", rowIndex, err)
			}
			p.skip(result, RowResult{Row: rowIndex, Skip: &Skip{Reason: SkipMalformed, Detail: perr.Error()}})
			continue
		}

		res := p.parseRow(header, record, rowIndex)
		if !res.OK() {
			p.skip(result, res)
			continue
		}
		result.Records = append(result.Records, *res.Record)
	}

	if result.Truncated {
		log.Warn().
			Str("reason", result.StopReason).
			Int("rows_read", result.RowsRead).
			Int("accepted", len(result.Records)).
			Msg("csv ingestion stopped early")
	}

	return result, nil
}

func (p *Parser) skip(result *ParseResult, res RowResult) {
	log.Warn().
		Int("row", res.Row).
		Str("reason", string(res.Skip.Reason)).
		Str("detail", res.Skip.Detail).
		Msg("skipping csv row")
	result.Skipped = append(result.Skipped, res)
}

// parseRow builds one record. A panic while mapping the row is turned into a
// skip so the rest of the file still loads.
func (p *Parser) parseRow(header, row []string, rowIndex int) (res RowResult) {
	res.Row = rowIndex
	if len(row) < minCellsPerRow {
		res.Skip = &Skip{Reason: SkipTooFewCells, Detail: fmt.Sprintf("%d cell(s)", len(row))}
		return res
	}

	defer func() {
		if rec := recover(); rec != nil {
			res.Record = nil
			res.Skip = &Skip{Reason: SkipRowError, Detail: fmt.Sprint(rec)}
		}
	}()

	record := p.buildRecord(BuildColumnMap(header, row), rowIndex)
	res.Record = &record
	return res
}

func (p *Parser) buildRecord(m ColumnMap, rowIndex int) domain.InventoryRecord {
	date := p.opts.DefaultDate
	if raw, ok := m.First(dateKeys...); ok {
		if normalized, ok := NormalizeDate(raw); ok {
			date = normalized
		} else {
			log.Warn().Int("row", rowIndex).Str("date", raw).Str("default", date).Msg("unparseable date, using default")
		}
	}

	quantity := CoerceInt(m, defaultQuantity, quantityKeys...)
	status := statusNew
	if _, ok := m.First(quantityKeys...); ok {
		status = statusInbound
	}

	return domain.InventoryRecord{
		Date:               date,
		StoreID:            m.StringOr("STORE_"+strconv.Itoa(rowIndex%5+1), storeIDKeys...),
		ProductID:          m.StringOr("PROD_"+strconv.Itoa(rowIndex), productIDKeys...),
		ProductName:        m.StringOr(defaultProductName, productNameKeys...),
		Category:           m.StringOr(defaultCategory, categoryKeys...),
		Supplier:           m.StringOr("Supplier_"+strconv.Itoa(rowIndex%3+1), supplierKeys...),
		Quantity:           quantity,
		Status:             m.StringOr(status, statusKeys...),
		Location:           m.StringOr(defaultLocation, locationKeys...),
		Timestamp:          startOfDay(date),
		InventoryLevel:     CoerceInt(m, quantity, inventoryLevelKeys...),
		UnitsSold:          CoerceInt(m, 0, unitsSoldKeys...),
		UnitsOrdered:       CoerceInt(m, 0, unitsOrderedKeys...),
		DemandForecast:     CoerceFloat(m, 0, demandForecastKeys...),
		Price:              CoerceFloat(m, 0, priceKeys...),
		Discount:           CoerceFloat(m, 0, discountKeys...),
		CompetitorPricing:  CoerceFloat(m, 0, competitorKeys...),
		WeatherCondition:   m.StringOr(defaultWeather, weatherKeys...),
		HolidayOrPromotion: m.StringOr(defaultHoliday, holidayKeys...),
		Seasonality:        m.StringOr(defaultSeasonality, seasonalityKeys...),
	}
}
