package models

import (
	"net/url"
	"strconv"
	"strings"
)

// Filter narrows the fact set. Zero values mean "not applied".
type Filter struct {
	Brand    string
	Model    string
	Channel  string
	Region   string
	Year     *int
	MinPrice *float64
	MaxPrice *float64
}

// ParseFilter reads brand, model, channel, region, year and price ("min-max")
// from query values. A year or price that does not parse is dropped rather
// than reported.
func ParseFilter(q url.Values) Filter {
	f := Filter{
		Brand:   q.Get("brand"),
		Model:   q.Get("model"),
		Channel: q.Get("channel"),
		Region:  q.Get("region"),
	}

	if raw := q.Get("year"); raw != "" {
		if y, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			f.Year = &y
		}
	}

	if min, max, ok := parsePriceRange(q.Get("price")); ok {
		f.MinPrice = &min
		f.MaxPrice = &max
	}
	return f
}

func parsePriceRange(raw string) (float64, float64, bool) {
	if raw == "" {
		return 0, 0, false
	}
	parts := strings.Split(raw, "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return min, max, true
}

// Key returns a stable string identifying the applied filters, used for
// cache keys.
func (f Filter) Key() string {
	q := url.Values{}
	if f.Brand != "" {
		q.Set("brand", f.Brand)
	}
	if f.Model != "" {
		q.Set("model", f.Model)
	}
	if f.Channel != "" {
		q.Set("channel", f.Channel)
	}
	if f.Region != "" {
		q.Set("region", f.Region)
	}
	if f.Year != nil {
		q.Set("year", strconv.Itoa(*f.Year))
	}
	if f.MinPrice != nil && f.MaxPrice != nil {
		q.Set("price", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64)+"-"+
			strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if len(q) == 0 {
		return "all"
	}
	// Encode sorts by key.
	return q.Encode()
}
