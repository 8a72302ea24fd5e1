package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phone-sales-dashboard/models"
)

func newGenerator() *InsightGenerator { return NewInsightGenerator(newTestLogger()) }

func ofType(insights []models.Insight, typ models.InsightType) []models.Insight {
	var out []models.Insight
	for _, in := range insights {
		if in.Type == typ {
			out = append(out, in)
		}
	}
	return out
}

func withBattery(f models.FactRow, battery string) models.FactRow {
	f.Battery = battery
	return f
}

func TestInsightsEmptyInput(t *testing.T) {
	insights := newGenerator().Generate(nil)
	require.NotNil(t, insights)
	assert.Empty(t, insights)
}

func TestInsightTrendDrop(t *testing.T) {
	facts := []models.FactRow{
		fact("Acme", "ACM-1", "Delhi", "Online", 2023, 100, 10),
		fact("Acme", "ACM-1", "Delhi", "Online", 2024, 80, 10),
	}

	trends := ofType(newGenerator().Generate(facts), models.InsightTrend)

	require.Len(t, trends, 1)
	assert.Equal(t, models.SeverityWarning, trends[0].Severity)
	assert.Equal(t, "Acme sales dropped 20.0% in 2024.", trends[0].Title)
	assert.Equal(t, "From 100 units in 2023 to 80 units in 2024", trends[0].Description)
	assert.Equal(t, "trending-down", trends[0].Icon)
}

func TestInsightTrendBelowThreshold(t *testing.T) {
	facts := []models.FactRow{
		fact("Acme", "ACM-1", "Delhi", "Online", 2023, 100, 10),
		fact("Acme", "ACM-1", "Delhi", "Online", 2024, 102, 10),
	}

	assert.Empty(t, ofType(newGenerator().Generate(facts), models.InsightTrend))
}

func TestInsightTrendUsesTwoMostRecentYears(t *testing.T) {
	facts := []models.FactRow{
		fact("Zeta", "Z-1", "Delhi", "Online", 2022, 10, 10),
		fact("Zeta", "Z-1", "Delhi", "Online", 2024, 1500, 10),
		fact("Zeta", "Z-1", "Delhi", "Online", 2023, 1000, 10),
		fact("Solo", "S-1", "Delhi", "Online", 2024, 500, 10),
		fact("Alpha", "A-1", "Delhi", "Online", 2023, 0, 10),
		fact("Alpha", "A-1", "Delhi", "Online", 2024, 50, 10),
		fact("Beta", "B-1", "Delhi", "Online", 2023, 200, 10),
		fact("Beta", "B-1", "Delhi", "Online", 2024, 100, 10),
	}

	trends := ofType(newGenerator().Generate(facts), models.InsightTrend)

	require.Len(t, trends, 2)
	assert.Equal(t, "Beta sales dropped 50.0% in 2024.", trends[0].Title)
	assert.Equal(t, "Zeta sales increased 50.0% in 2024.", trends[1].Title)
	assert.Equal(t, models.SeveritySuccess, trends[1].Severity)
	assert.Equal(t, "From 1,000 units in 2023 to 1,500 units in 2024", trends[1].Description)
}

func TestInsightBatteryHighCapacity(t *testing.T) {
	facts := []models.FactRow{
		withBattery(fact("A", "A-1", "Delhi", "Online", 2024, 300, 10), "5000mAh"),
		withBattery(fact("B", "B-1", "Delhi", "Online", 2024, 100, 10), "4000mAh"),
	}

	corr := ofType(newGenerator().Generate(facts), models.InsightCorrelation)

	require.NotEmpty(t, corr)
	assert.Equal(t, "Battery capacity strongly influences sales.", corr[0].Title)
	assert.Equal(t, "Models with 5000mAh battery show highest sales performance", corr[0].Description)
}

func TestInsightBatteryNoSignal(t *testing.T) {
	tests := []struct {
		name  string
		facts []models.FactRow
	}{
		{"low capacity on top", []models.FactRow{
			withBattery(fact("A", "A-1", "Delhi", "Online", 2024, 300, 10), "3000mAh"),
			withBattery(fact("B", "B-1", "Delhi", "Online", 2024, 100, 10), "5000mAh"),
		}},
		{"single group", []models.FactRow{
			withBattery(fact("A", "A-1", "Delhi", "Online", 2024, 300, 10), "6000mAh"),
		}},
		{"unparseable", []models.FactRow{
			withBattery(fact("A", "A-1", "Delhi", "Online", 2024, 300, 10), "huge"),
			withBattery(fact("B", "B-1", "Delhi", "Online", 2024, 100, 10), "5000mAh"),
		}},
		{"empty strings ignored", []models.FactRow{
			withBattery(fact("A", "A-1", "Delhi", "Online", 2024, 300, 10), ""),
			withBattery(fact("B", "B-1", "Delhi", "Online", 2024, 100, 10), "5000mAh"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, in := range newGenerator().Generate(tt.facts) {
				assert.NotEqual(t, "battery-full", in.Icon)
			}
		})
	}
}

func TestInsightSpecLeaders(t *testing.T) {
	a := fact("A", "A-1", "Delhi", "Online", 2024, 1200, 10)
	a.RAM, a.Storage = "12GB", "256GB"
	b := fact("B", "B-1", "Delhi", "Online", 2024, 700, 10)
	b.RAM, b.Storage = "8GB", "512GB"
	c := fact("C", "C-1", "Delhi", "Online", 2024, 600, 10)
	c.RAM, c.Storage = "8GB", ""

	corr := ofType(newGenerator().Generate([]models.FactRow{a, b, c}), models.InsightCorrelation)

	// every fact shares one battery capacity, so only RAM and storage fire
	require.Len(t, corr, 2)
	assert.Equal(t, "Models with 8GB RAM show highest sales.", corr[0].Title)
	assert.Equal(t, "Total units sold: 1,300", corr[0].Description)
	assert.Equal(t, "memory", corr[0].Icon)
	assert.Equal(t, "Models with 256GB storage are most popular.", corr[1].Title)
	assert.Equal(t, "Total units sold: 1,200", corr[1].Description)
	assert.Equal(t, "hard-drive", corr[1].Icon)
}

func TestInsightSpecSkippedWithoutUnits(t *testing.T) {
	a := fact("A", "A-1", "Delhi", "Online", 2024, 0, 10)
	a.Battery = ""

	insights := newGenerator().Generate([]models.FactRow{a})

	assert.Empty(t, ofType(insights, models.InsightCorrelation))
}

func TestInsightTopBrandPerRegionYear(t *testing.T) {
	facts := []models.FactRow{
		fact("Apple", "A-1", "Delhi", "Online", 2024, 400, 10),
		fact("Samsung", "S-1", "Delhi", "Online", 2024, 900, 10),
		fact("Apple", "A-1", "Bihar", "Online", 2024, 1500, 10),
		fact("Vivo", "V-1", "Gujarat", "Online", 2023, 5000, 10),
		fact("Oppo", "O-1", "Karnataka", "Online", 2024, 100, 10),
		fact("Oppo", "O-1", "Maharashtra", "Online", 2024, 100, 10),
		fact("Realme", "R-1", "Telangana", "Online", 2024, 50, 10),
	}

	perf := ofType(newGenerator().Generate(facts), models.InsightPerformance)

	// five region-year leaders followed by the channel insight
	require.Len(t, perf, 6)
	assert.Equal(t, "Apple models sold highest in Bihar in 2024.", perf[0].Title)
	assert.Equal(t, "Total units sold: 1,500", perf[0].Description)
	assert.Equal(t, "Samsung models sold highest in Delhi in 2024.", perf[1].Title)
	assert.Equal(t, "Oppo models sold highest in Karnataka in 2024.", perf[2].Title)
	assert.Equal(t, "Oppo models sold highest in Maharashtra in 2024.", perf[3].Title)
	assert.Equal(t, "Realme models sold highest in Telangana in 2024.", perf[4].Title)
	assert.Equal(t, models.SeverityInfo, perf[0].Severity)
	assert.Equal(t, models.SeveritySuccess, perf[5].Severity)
}

func TestInsightChannel(t *testing.T) {
	facts := []models.FactRow{
		fact("A", "A-1", "Delhi", "Online", 2024, 1000, 1234.5674),
		fact("A", "A-1", "Delhi", "Online", 2024, 500, 0),
		fact("A", "A-1", "Delhi", "Retail", 2024, 900, 10),
	}

	insights := newGenerator().Generate(facts)
	last := insights[len(insights)-1]

	assert.Equal(t, models.InsightPerformance, last.Type)
	assert.Equal(t, "Online channel drives highest sales.", last.Title)
	assert.Equal(t, "1,500 units sold, ₹1,234,567 revenue", last.Description)
	assert.Equal(t, "shopping-cart", last.Icon)
}

func TestInsightRuleOrder(t *testing.T) {
	facts := []models.FactRow{
		withBattery(fact("Acme", "A-1", "Delhi", "Online", 2023, 100, 10), "5000mAh"),
		withBattery(fact("Acme", "A-1", "Delhi", "Online", 2024, 50, 10), "4500mAh"),
	}

	insights := newGenerator().Generate(facts)

	var icons []string
	for _, in := range insights {
		icons = append(icons, in.Icon)
	}
	assert.Equal(t, []string{
		"trending-up", "trending-up", // Delhi 2024, Delhi 2023
		"trending-down",
		"battery-full",
		"memory",
		"hard-drive",
		"shopping-cart",
	}, icons)
}
