package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"phone-sales-dashboard/models"
	"phone-sales-dashboard/utils"
)

var (
	// priceRegexp captures the first numeric value once separators are gone
	priceRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Cleaner transforms uploaded RawSaleRows into typed SaleRecords.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean converts raw rows and returns the records worth ingesting. Rows
// without a brand or model are dropped; every other malformed field falls
// back to its zero value.
func (c *Cleaner) Clean(raw []*models.RawSaleRow) []*models.SaleRecord {
	result := make([]*models.SaleRecord, 0, len(raw))

	for i, r := range raw {
		brand := normaliseText(r.Brand)
		model := normaliseText(r.Model)
		if brand == "" || model == "" {
			c.logger.Warn("[cleaner] Dropping row %d with empty brand or model", i+1)
			continue
		}

		price := ParsePrice(r.Price)
		units := parseCount(r.UnitsSold)
		year := parseCount(r.Year)

		rec := &models.SaleRecord{
			Brand: brand,
			Model: models.PhoneModel{
				Name:        model,
				RAM:         normaliseText(r.RAM),
				Storage:     normaliseText(r.Storage),
				Camera:      normaliseText(r.Camera),
				Battery:     normaliseText(r.Battery),
				Processor:   normaliseText(r.Processor),
				OS:          normaliseText(r.OS),
				DisplaySize: normaliseText(r.DisplaySize),
				LaunchYear:  year,
			},
			UnitsSold:    units,
			AveragePrice: price,
			TotalRevenue: price * float64(units),
			Region:       normaliseText(r.Region),
			Channel:      normaliseText(r.Channel),
			Year:         year,
		}
		result = append(result, rec)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d rows (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// ParsePrice extracts a price from strings such as "₹1,299", "$ 450.50" or
// "12999". Anything without a number yields 0.
func ParsePrice(raw string) float64 {
	cleaned := strings.NewReplacer(",", "", " ", "").Replace(raw)
	match := priceRegexp.FindString(cleaned)
	if match == "" {
		return 0
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseSpecNumber strips every occurrence of unit (case-sensitive) and all
// spaces from raw and parses what is left as an integer. The bool reports
// whether parsing succeeded; on failure the value is always 0.
//
//	ParseSpecNumber("8GB", "GB")   → 8, true
//	ParseSpecNumber("8 GB", "GB")  → 8, true
//	ParseSpecNumber("N/A", "GB")   → 0, false
func ParseSpecNumber(raw, unit string) (int, bool) {
	s := strings.ReplaceAll(raw, unit, "")
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", ""))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SpecGB parses a RAM or storage string in gigabytes, 0 when unparseable.
func SpecGB(raw string) int {
	n, _ := ParseSpecNumber(raw, "GB")
	return n
}

// ParseBattery parses a capacity such as "5000mAh".
func ParseBattery(raw string) (int, bool) {
	return ParseSpecNumber(raw, "mAh")
}

// parseCount reads a non-negative whole number, tolerating thousands
// separators and decimal notation ("1,200", "35.0").
func parseCount(raw string) int {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}
