package services

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"phone-sales-dashboard/models"
	"phone-sales-dashboard/utils"
)

const (
	maxRegionInsights    = 5
	minTrendChangePct    = 5.0
	highBatteryThreshold = 4000
	currencySymbol       = "₹"
)

// InsightGenerator derives rule-based textual insights from fact rows.
type InsightGenerator struct {
	logger *utils.Logger
}

func NewInsightGenerator(logger *utils.Logger) *InsightGenerator {
	return &InsightGenerator{logger: logger}
}

// Generate applies every rule in a fixed order and returns the insights in
// that order. It never fails: rules without enough signal emit nothing.
func (g *InsightGenerator) Generate(facts []models.FactRow) []models.Insight {
	p := message.NewPrinter(language.English)
	insights := make([]models.Insight, 0)

	insights = append(insights, topBrandByRegionYear(p, facts)...)
	insights = append(insights, brandTrends(p, facts)...)
	if in, ok := batteryInsight(facts); ok {
		insights = append(insights, in)
	}
	if in, ok := specInsight(p, facts, func(f models.FactRow) string { return f.RAM },
		"Models with %s RAM show highest sales.", "memory"); ok {
		insights = append(insights, in)
	}
	if in, ok := specInsight(p, facts, func(f models.FactRow) string { return f.Storage },
		"Models with %s storage are most popular.", "hard-drive"); ok {
		insights = append(insights, in)
	}
	if in, ok := channelInsight(p, facts); ok {
		insights = append(insights, in)
	}

	g.logger.Debug("[insights] %d facts → %d insights", len(facts), len(insights))
	return insights
}

type brandRegionYear struct {
	brand  string
	region string
	year   int
	units  int
}

// topBrandByRegionYear ranks (brand, region, year) unit sums by year desc,
// units desc, region asc, brand asc. The first entry seen for a
// (region, year) is that cell's leading brand.
func topBrandByRegionYear(p *message.Printer, facts []models.FactRow) []models.Insight {
	type key struct {
		brand  string
		region string
		year   int
	}
	sums := make(map[key]int)
	for _, f := range facts {
		sums[key{f.Brand, f.Region, f.Year}] += f.UnitsSold
	}

	rows := make([]brandRegionYear, 0, len(sums))
	for k, units := range sums {
		rows = append(rows, brandRegionYear{brand: k.brand, region: k.region, year: k.year, units: units})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.year != b.year {
			return a.year > b.year
		}
		if a.units != b.units {
			return a.units > b.units
		}
		if a.region != b.region {
			return a.region < b.region
		}
		return a.brand < b.brand
	})

	type cell struct {
		region string
		year   int
	}
	seen := make(map[cell]struct{})
	var out []models.Insight
	for _, r := range rows {
		c := cell{r.region, r.year}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, models.Insight{
			Type:        models.InsightPerformance,
			Severity:    models.SeverityInfo,
			Title:       fmt.Sprintf("%s models sold highest in %s in %d.", r.brand, r.region, r.year),
			Description: "Total units sold: " + p.Sprintf("%d", r.units),
			Icon:        "trending-up",
		})
		if len(out) == maxRegionInsights {
			break
		}
	}
	return out
}

// brandTrends compares each brand's two most recent years. Brands are
// visited in name order; changes under minTrendChangePct are ignored.
func brandTrends(p *message.Printer, facts []models.FactRow) []models.Insight {
	byBrand := make(map[string]map[int]int)
	for _, f := range facts {
		years, ok := byBrand[f.Brand]
		if !ok {
			years = make(map[int]int)
			byBrand[f.Brand] = years
		}
		years[f.Year] += f.UnitsSold
	}

	brands := make([]string, 0, len(byBrand))
	for b := range byBrand {
		brands = append(brands, b)
	}
	sort.Strings(brands)

	var out []models.Insight
	for _, brand := range brands {
		yearData := byBrand[brand]
		if len(yearData) < 2 {
			continue
		}
		years := make([]int, 0, len(yearData))
		for y := range yearData {
			years = append(years, y)
		}
		sort.Ints(years)

		prevYear, currYear := years[len(years)-2], years[len(years)-1]
		prev, curr := yearData[prevYear], yearData[currYear]
		if prev <= 0 {
			continue
		}

		change := float64(curr-prev) / float64(prev) * 100
		if math.Abs(change) < minTrendChangePct {
			continue
		}

		in := models.Insight{
			Type:     models.InsightTrend,
			Severity: models.SeveritySuccess,
			Icon:     "trending-up",
		}
		verb := "increased"
		if change < 0 {
			in.Severity = models.SeverityWarning
			in.Icon = "trending-down"
			verb = "dropped"
		}
		in.Title = fmt.Sprintf("%s sales %s %.1f%% in %d.", brand, verb, math.Abs(change), currYear)
		in.Description = fmt.Sprintf("From %s units in %d to %s units in %d",
			p.Sprintf("%d", prev), prevYear, p.Sprintf("%d", curr), currYear)
		out = append(out, in)
	}
	return out
}

type unitGroup struct {
	key     string
	units   int
	revenue float64
}

// rankGroups sums units and revenue per key and orders the groups by units
// desc, key asc. Facts whose key is empty are skipped unless keepEmpty.
func rankGroups(facts []models.FactRow, keyOf func(models.FactRow) string, keepEmpty bool) []unitGroup {
	idx := make(map[string]int)
	var groups []unitGroup
	for _, f := range facts {
		k := keyOf(f)
		if k == "" && !keepEmpty {
			continue
		}
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, unitGroup{key: k})
		}
		groups[i].units += f.UnitsSold
		groups[i].revenue += f.TotalRevenue
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].units != groups[j].units {
			return groups[i].units > groups[j].units
		}
		return groups[i].key < groups[j].key
	})
	return groups
}

// batteryInsight fires when the best-selling battery capacity is above
// highBatteryThreshold and at least two capacities are present.
func batteryInsight(facts []models.FactRow) (models.Insight, bool) {
	groups := rankGroups(facts, func(f models.FactRow) string { return f.Battery }, false)
	if len(groups) < 2 {
		return models.Insight{}, false
	}
	top := groups[0]
	if top.units <= 0 {
		return models.Insight{}, false
	}
	capacity, ok := ParseBattery(top.key)
	if !ok || capacity <= highBatteryThreshold {
		return models.Insight{}, false
	}
	return models.Insight{
		Type:        models.InsightCorrelation,
		Severity:    models.SeverityInfo,
		Title:       "Battery capacity strongly influences sales.",
		Description: fmt.Sprintf("Models with %s battery show highest sales performance", top.key),
		Icon:        "battery-full",
	}, true
}

// specInsight names the best-selling value of a spec attribute.
func specInsight(p *message.Printer, facts []models.FactRow, keyOf func(models.FactRow) string,
	titleFormat, icon string) (models.Insight, bool) {
	groups := rankGroups(facts, keyOf, false)
	if len(groups) == 0 || groups[0].units <= 0 {
		return models.Insight{}, false
	}
	top := groups[0]
	return models.Insight{
		Type:        models.InsightCorrelation,
		Severity:    models.SeverityInfo,
		Title:       fmt.Sprintf(titleFormat, top.key),
		Description: "Total units sold: " + p.Sprintf("%d", top.units),
		Icon:        icon,
	}, true
}

// channelInsight always reports the top channel when any fact exists.
func channelInsight(p *message.Printer, facts []models.FactRow) (models.Insight, bool) {
	groups := rankGroups(facts, func(f models.FactRow) string { return f.Channel }, true)
	if len(groups) == 0 {
		return models.Insight{}, false
	}
	top := groups[0]
	return models.Insight{
		Type:     models.InsightPerformance,
		Severity: models.SeveritySuccess,
		Title:    fmt.Sprintf("%s channel drives highest sales.", top.key),
		Description: fmt.Sprintf("%s units sold, %s%s revenue",
			p.Sprintf("%d", top.units), currencySymbol, p.Sprintf("%.0f", top.revenue)),
		Icon: "shopping-cart",
	}, true
}
