package services

import (
	"testing"

	"phone-sales-dashboard/models"
	"phone-sales-dashboard/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"12999", 12999},
		{"₹1,299", 1299},
		{"$ 450.50", 450.50},
		{"₹79,999.00", 79999},
		{"", 0},
		{"free", 0},
	}

	for _, tt := range tests {
		got := ParsePrice(tt.raw)
		if got != tt.want {
			t.Errorf("ParsePrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestSpecGB(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"8GB", 8},
		{"8 GB", 8},
		{"128GB", 128},
		{"", 0},
		{"N/A", 0},
		{"8gb", 0},
	}

	for _, tt := range tests {
		got := SpecGB(tt.raw)
		if got != tt.want {
			t.Errorf("SpecGB(%q) = %d; want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParseBattery(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"5000mAh", 5000, true},
		{"4500 mAh", 4500, true},
		{"big", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseBattery(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseBattery(%q) = %d, %v; want %d, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"1200", 1200},
		{"1,200", 1200},
		{"35.0", 35},
		{"-4", 0},
		{"", 0},
		{"many", 0},
	}

	for _, tt := range tests {
		got := parseCount(tt.raw)
		if got != tt.want {
			t.Errorf("parseCount(%q) = %d; want %d", tt.raw, got, tt.want)
		}
	}
}

func TestCleanerComputesRevenueOnce(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawSaleRow{{
		Brand: " Samsung ", Model: "SAM-101", RAM: "8GB", Storage: "128GB",
		Battery: "5000mAh", Price: "₹20,000", UnitsSold: "150",
		Region: "Delhi", Channel: "Online", Year: "2024",
	}}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 record, got %d", len(cleaned))
	}
	rec := cleaned[0]
	if rec.Brand != "Samsung" {
		t.Errorf("Brand: got %q, want %q", rec.Brand, "Samsung")
	}
	if rec.AveragePrice != 20000 {
		t.Errorf("AveragePrice: got %.2f, want 20000", rec.AveragePrice)
	}
	if rec.TotalRevenue != 3_000_000 {
		t.Errorf("TotalRevenue: got %.2f, want 3000000", rec.TotalRevenue)
	}
	if rec.Model.LaunchYear != 2024 || rec.Year != 2024 {
		t.Errorf("years: got launch %d sale %d, want 2024", rec.Model.LaunchYear, rec.Year)
	}
}

func TestCleanerDropsRowsWithoutKeys(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawSaleRow{
		{Brand: "", Model: "X-1", UnitsSold: "10"},
		{Brand: "Apple", Model: "  ", UnitsSold: "10"},
		{Brand: "Apple", Model: "APP-101", UnitsSold: "bad", Price: "n/a"},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 record after dropping keyless rows, got %d", len(cleaned))
	}
	if cleaned[0].UnitsSold != 0 || cleaned[0].TotalRevenue != 0 {
		t.Errorf("malformed numbers should default to 0, got units %d revenue %.2f",
			cleaned[0].UnitsSold, cleaned[0].TotalRevenue)
	}
}
