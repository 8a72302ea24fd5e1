package services

import (
	"context"
	"fmt"
	"time"

	"phone-sales-dashboard/metrics"
	"phone-sales-dashboard/models"
	"phone-sales-dashboard/utils"
)

// FactSource is the read-only data-access handle the dashboard works from.
type FactSource interface {
	FetchFacts(ctx context.Context, filter models.Filter) ([]models.FactRow, error)
	FetchCatalog(ctx context.Context) (models.Catalog, error)
}

// ReportCache stores computed payloads between requests. Get resolves key to
// a slot of the current cache generation and reports a miss as (slot, false,
// nil). Set writes to a slot from an earlier Get, so a payload lands in the
// generation that was current before its facts were read.
type ReportCache interface {
	Get(ctx context.Context, key string, dst any) (slot string, hit bool, err error)
	Set(ctx context.Context, slot string, value any) error
}

// Dashboard wires a FactSource to the Aggregator and InsightGenerator.
type Dashboard struct {
	source     FactSource
	cache      ReportCache
	aggregator *Aggregator
	insights   *InsightGenerator
	logger     *utils.Logger
}

// NewDashboard creates a Dashboard. cache may be nil.
func NewDashboard(source FactSource, cache ReportCache, logger *utils.Logger) *Dashboard {
	return &Dashboard{
		source:     source,
		cache:      cache,
		aggregator: NewAggregator(logger),
		insights:   NewInsightGenerator(logger),
		logger:     logger,
	}
}

// Report returns the aggregates for the facts matching filter.
func (d *Dashboard) Report(ctx context.Context, filter models.Filter) (*models.Report, error) {
	key := "report:" + filter.Key()
	report := &models.Report{}
	slot, hit := d.fromCache(ctx, key, report)
	if hit {
		return report, nil
	}

	facts, err := d.source.FetchFacts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("dashboard: fetch facts: %w", err)
	}
	catalog, err := d.source.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: fetch catalog: %w", err)
	}

	start := time.Now()
	report = d.aggregator.ComputeReport(facts, catalog)
	metrics.ComputeDuration.WithLabelValues("report").Observe(time.Since(start).Seconds())

	d.toCache(ctx, slot, report)
	return report, nil
}

// Insights returns the generated insights over the full, unfiltered fact set.
func (d *Dashboard) Insights(ctx context.Context) ([]models.Insight, error) {
	const key = "insights"
	var insights []models.Insight
	slot, hit := d.fromCache(ctx, key, &insights)
	if hit {
		return insights, nil
	}

	facts, err := d.source.FetchFacts(ctx, models.Filter{})
	if err != nil {
		return nil, fmt.Errorf("dashboard: fetch facts: %w", err)
	}

	start := time.Now()
	insights = d.insights.Generate(facts)
	metrics.ComputeDuration.WithLabelValues("insights").Observe(time.Since(start).Seconds())

	d.toCache(ctx, slot, insights)
	return insights, nil
}

// fromCache must run before the facts are fetched. The returned slot is ""
// when there is no cache or its generation cannot be read, which disables
// the write-back.
func (d *Dashboard) fromCache(ctx context.Context, key string, dst any) (string, bool) {
	if d.cache == nil {
		return "", false
	}
	slot, hit, err := d.cache.Get(ctx, key, dst)
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		d.logger.Warn("[dashboard] Cache read %s failed: %v", key, err)
		return slot, false
	}
	if hit {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return slot, true
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()
	return slot, false
}

func (d *Dashboard) toCache(ctx context.Context, slot string, value any) {
	if d.cache == nil || slot == "" {
		return
	}
	if err := d.cache.Set(ctx, slot, value); err != nil {
		d.logger.Warn("[dashboard] Cache write %s failed: %v", slot, err)
	}
}
