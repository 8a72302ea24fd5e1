package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phone-sales-dashboard/models"
)

type fakeSource struct {
	facts      []models.FactRow
	catalog    models.Catalog
	err        error
	lastFilter models.Filter
	factCalls  int
}

func (s *fakeSource) FetchFacts(_ context.Context, f models.Filter) ([]models.FactRow, error) {
	s.factCalls++
	s.lastFilter = f
	return s.facts, s.err
}

func (s *fakeSource) FetchCatalog(context.Context) (models.Catalog, error) {
	return s.catalog, s.err
}

// memoryCache mirrors the generation scheme of storage.ReportCache.
type memoryCache struct {
	gen     int
	entries map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{entries: make(map[string][]byte)} }

func (c *memoryCache) Get(_ context.Context, key string, dst any) (string, bool, error) {
	slot := fmt.Sprintf("v%d:%s", c.gen, key)
	body, ok := c.entries[slot]
	if !ok {
		return slot, false, nil
	}
	return slot, true, json.Unmarshal(body, dst)
}

func (c *memoryCache) Set(_ context.Context, slot string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[slot] = body
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.gen++
	return nil
}

// ingestingSource serves a snapshot of facts and, on the first fetch,
// simulates an upload landing while that snapshot is being aggregated.
type ingestingSource struct {
	cache  *memoryCache
	facts  []models.FactRow
	after  []models.FactRow
	called bool
}

func (s *ingestingSource) FetchFacts(ctx context.Context, _ models.Filter) ([]models.FactRow, error) {
	snapshot := s.facts
	if !s.called {
		s.called = true
		s.facts = s.after
		_ = s.cache.Invalidate(ctx)
	}
	return snapshot, nil
}

func (s *ingestingSource) FetchCatalog(context.Context) (models.Catalog, error) {
	return models.Catalog{}, nil
}

func TestDashboardReportPassesFilter(t *testing.T) {
	src := &fakeSource{facts: sampleFacts(), catalog: sampleCatalog()}
	d := NewDashboard(src, nil, newTestLogger())
	year := 2024

	r, err := d.Report(context.Background(), models.Filter{Brand: "Samsung", Year: &year})

	require.NoError(t, err)
	assert.Equal(t, "Samsung", src.lastFilter.Brand)
	assert.Equal(t, 200, r.KPIs.TotalUnits)
}

func TestDashboardReportUsesCache(t *testing.T) {
	src := &fakeSource{facts: sampleFacts(), catalog: sampleCatalog()}
	cache := newMemoryCache()
	d := NewDashboard(src, cache, newTestLogger())

	first, err := d.Report(context.Background(), models.Filter{})
	require.NoError(t, err)
	second, err := d.Report(context.Background(), models.Filter{})
	require.NoError(t, err)

	assert.Equal(t, 1, src.factCalls)
	assert.Contains(t, cache.entries, "v0:report:all")
	assert.Equal(t, first.KPIs, second.KPIs)
	assert.Equal(t, first.YearlyTrends[2024], second.YearlyTrends[2024])
}

func TestDashboardInsightsUnfiltered(t *testing.T) {
	src := &fakeSource{facts: sampleFacts()}
	d := NewDashboard(src, newMemoryCache(), newTestLogger())

	insights, err := d.Insights(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, insights)
	assert.Equal(t, models.Filter{}, src.lastFilter)

	cached, err := d.Insights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, insights, cached)
	assert.Equal(t, 1, src.factCalls)
}

func TestDashboardSourceError(t *testing.T) {
	boom := errors.New("db down")
	d := NewDashboard(&fakeSource{err: boom}, nil, newTestLogger())

	_, err := d.Report(context.Background(), models.Filter{})
	assert.ErrorIs(t, err, boom)

	_, err = d.Insights(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestDashboardUploadDuringComputeIsNotCachedAsFresh(t *testing.T) {
	before := []models.FactRow{{Brand: "Acme", Model: "X1", UnitsSold: 10, Region: "Delhi", Channel: "Online", Year: 2024}}
	after := []models.FactRow{{Brand: "Acme", Model: "X1", UnitsSold: 999, Region: "Delhi", Channel: "Online", Year: 2024}}
	cache := newMemoryCache()
	src := &ingestingSource{cache: cache, facts: before, after: after}
	d := NewDashboard(src, cache, newTestLogger())

	first, err := d.Report(context.Background(), models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 10, first.KPIs.TotalUnits)

	second, err := d.Report(context.Background(), models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 999, second.KPIs.TotalUnits)
}

func TestDashboardInsightsUploadDuringComputeIsNotCachedAsFresh(t *testing.T) {
	before := []models.FactRow{
		{Brand: "Acme", UnitsSold: 10, Channel: "Online", Year: 2024},
	}
	after := []models.FactRow{
		{Brand: "Acme", UnitsSold: 10, Channel: "Online", Year: 2024},
		{Brand: "Acme", UnitsSold: 500, Channel: "Retail", Year: 2024},
	}
	cache := newMemoryCache()
	d := NewDashboard(&ingestingSource{cache: cache, facts: before, after: after}, cache, newTestLogger())

	first, err := d.Insights(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, first)
	assert.Equal(t, "Online channel drives highest sales.", first[len(first)-1].Title)

	second, err := d.Insights(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, second)
	assert.Equal(t, "Retail channel drives highest sales.", second[len(second)-1].Title)
}
