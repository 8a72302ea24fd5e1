package models

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterAppliesValidValues(t *testing.T) {
	q := url.Values{
		"brand":   {"Samsung"},
		"channel": {"Online"},
		"year":    {"2024"},
		"price":   {"10000-25000.5"},
	}
	f := ParseFilter(q)

	assert.Equal(t, "Samsung", f.Brand)
	assert.Equal(t, "Online", f.Channel)
	require.NotNil(t, f.Year)
	assert.Equal(t, 2024, *f.Year)
	require.NotNil(t, f.MinPrice)
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, 10000.0, *f.MinPrice)
	assert.Equal(t, 25000.5, *f.MaxPrice)
}

func TestParseFilterIgnoresInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		year  string
		price string
	}{
		{"non numeric year", "twenty", ""},
		{"price without dash", "", "5000"},
		{"price with three parts", "", "1-2-3"},
		{"price with bad bound", "", "abc-200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseFilter(url.Values{"year": {tt.year}, "price": {tt.price}})
			assert.Nil(t, f.Year)
			assert.Nil(t, f.MinPrice)
			assert.Nil(t, f.MaxPrice)
		})
	}
}

func TestFilterKeyIsStable(t *testing.T) {
	assert.Equal(t, "all", Filter{}.Key())

	a := ParseFilter(url.Values{"region": {"Delhi"}, "brand": {"Apple"}})
	b := ParseFilter(url.Values{"brand": {"Apple"}, "region": {"Delhi"}})
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "brand=Apple&region=Delhi", a.Key())
}
