package services

import (
	"sort"
	"strconv"

	"phone-sales-dashboard/models"
	"phone-sales-dashboard/utils"
)

// MaxModelOptions bounds the model dropdown in FilterOptions.
const MaxModelOptions = 100

// Aggregator computes dashboard reports over materialised fact rows.
// It holds no per-call state, so one Aggregator may serve concurrent requests.
type Aggregator struct {
	logger *utils.Logger
}

func NewAggregator(logger *utils.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

type modelKey struct {
	brand string
	model string
}

// modelAccumulator tracks the distinct regions and channels of one model
// while its ModelPerformance entry is being summed.
type modelAccumulator struct {
	perf     *models.ModelPerformance
	regions  map[string]struct{}
	channels map[string]struct{}
}

// ComputeReport aggregates facts in a single pass. The catalog supplies the
// global brand and model lists for FilterOptions. facts is never modified.
func (a *Aggregator) ComputeReport(facts []models.FactRow, catalog models.Catalog) *models.Report {
	report := &models.Report{
		BrandSales:   make(map[string]int),
		BrandRevenue: make(map[string]float64),
		ChannelSales: make(map[string]int),
		RegionSales:  make(map[string]int),
		YearlyTrends: make(map[int]*models.YearTotals),
		Heatmap:      make(map[string]*models.HeatCell),
		Treemap:      make(map[string]*models.BrandNode),
		TopModels:    make([]*models.ModelPerformance, 0),
		Scatter:      make([]models.ScatterPoint, 0, len(facts)),
		Correlation:  make([]models.SpecCorrelationPoint, 0, len(facts)),
	}

	regions := make(map[string]struct{})
	perModel := make(map[modelKey]*modelAccumulator)

	for _, f := range facts {
		report.KPIs.TotalUnits += f.UnitsSold
		report.KPIs.TotalRevenue += f.TotalRevenue
		regions[f.Region] = struct{}{}

		report.BrandSales[f.Brand] += f.UnitsSold
		report.BrandRevenue[f.Brand] += f.TotalRevenue
		report.ChannelSales[f.Channel] += f.UnitsSold
		report.RegionSales[f.Region] += f.UnitsSold

		yt, ok := report.YearlyTrends[f.Year]
		if !ok {
			yt = &models.YearTotals{}
			report.YearlyTrends[f.Year] = yt
		}
		yt.Units += f.UnitsSold
		yt.Revenue += f.TotalRevenue

		hk := f.Region + "_" + strconv.Itoa(f.Year)
		cell, ok := report.Heatmap[hk]
		if !ok {
			cell = &models.HeatCell{Region: f.Region, Year: f.Year}
			report.Heatmap[hk] = cell
		}
		cell.Sales += f.UnitsSold

		addToTreemap(report.Treemap, f)

		mk := modelKey{brand: f.Brand, model: f.Model}
		acc, ok := perModel[mk]
		if !ok {
			acc = &modelAccumulator{
				perf:     &models.ModelPerformance{Brand: f.Brand, Model: f.Model},
				regions:  make(map[string]struct{}),
				channels: make(map[string]struct{}),
			}
			perModel[mk] = acc
			report.TopModels = append(report.TopModels, acc.perf)
		}
		acc.perf.UnitsSold += f.UnitsSold
		acc.perf.TotalRevenue += f.TotalRevenue
		acc.regions[f.Region] = struct{}{}
		acc.channels[f.Channel] = struct{}{}

		report.Scatter = append(report.Scatter, models.ScatterPoint{
			X:     f.AveragePrice,
			Y:     f.UnitsSold,
			Brand: f.Brand,
			Model: f.Model,
		})
		report.Correlation = append(report.Correlation, models.SpecCorrelationPoint{
			RAM:       SpecGB(f.RAM),
			Storage:   SpecGB(f.Storage),
			UnitsSold: f.UnitsSold,
			Price:     f.AveragePrice,
			Revenue:   f.TotalRevenue,
		})
	}

	for _, acc := range perModel {
		if acc.perf.UnitsSold > 0 {
			acc.perf.AvgPrice = acc.perf.TotalRevenue / float64(acc.perf.UnitsSold)
		}
		acc.perf.RegionCount = len(acc.regions)
		acc.perf.ChannelCount = len(acc.channels)
	}

	report.KPIs.TotalModels = len(perModel)
	report.KPIs.TotalCustomers = len(regions)
	report.Filters = buildFilterOptions(facts, catalog)

	a.logger.Debug("[aggregator] %d facts → %d units across %d models",
		len(facts), report.KPIs.TotalUnits, report.KPIs.TotalModels)
	return report
}

func addToTreemap(tree map[string]*models.BrandNode, f models.FactRow) {
	bn, ok := tree[f.Brand]
	if !ok {
		bn = &models.BrandNode{Name: f.Brand, Children: make(map[string]*models.ModelNode)}
		tree[f.Brand] = bn
	}
	mn, ok := bn.Children[f.Model]
	if !ok {
		mn = &models.ModelNode{Name: f.Model}
		bn.Children[f.Model] = mn
	}
	bn.Value += f.UnitsSold
	mn.Value += f.UnitsSold
}

func buildFilterOptions(facts []models.FactRow, catalog models.Catalog) models.FilterOptions {
	channels := make(map[string]struct{})
	regions := make(map[string]struct{})
	years := make(map[int]struct{})
	for _, f := range facts {
		if f.Channel != "" {
			channels[f.Channel] = struct{}{}
		}
		if f.Region != "" {
			regions[f.Region] = struct{}{}
		}
		if f.Year != 0 {
			years[f.Year] = struct{}{}
		}
	}

	modelNames := sortedDistinct(catalog.Models)
	if len(modelNames) > MaxModelOptions {
		modelNames = modelNames[:MaxModelOptions]
	}

	yearList := make([]int, 0, len(years))
	for y := range years {
		yearList = append(yearList, y)
	}
	sort.Ints(yearList)

	return models.FilterOptions{
		Brands:   sortedDistinct(catalog.Brands),
		Models:   modelNames,
		Channels: sortedKeys(channels),
		Regions:  sortedKeys(regions),
		Years:    yearList,
	}
}

func sortedDistinct(values []string) []string {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
