package models

// Report holds the dashboard aggregates computed over one filtered fact set.
// JSON names match the payload the dashboard front end already consumes.
type Report struct {
	KPIs         KPIs                   `json:"kpis"`
	BrandSales   map[string]int         `json:"brand_sales"`
	BrandRevenue map[string]float64     `json:"brand_revenue"`
	ChannelSales map[string]int         `json:"channel_sales"`
	RegionSales  map[string]int         `json:"region_sales"`
	YearlyTrends map[int]*YearTotals    `json:"yearly_trends"`
	Heatmap      map[string]*HeatCell   `json:"heatmap_data"`
	Treemap      map[string]*BrandNode  `json:"treemap_data"`
	TopModels    []*ModelPerformance    `json:"top_models_data"`
	Scatter      []ScatterPoint         `json:"scatter_data"`
	Correlation  []SpecCorrelationPoint `json:"correlation_data"`
	Filters      FilterOptions          `json:"filters"`
}

// KPIs are the headline totals. TotalCustomers counts distinct regions;
// there is no customer entity, so it is only a rough proxy.
type KPIs struct {
	TotalUnits     int     `json:"total_units"`
	TotalRevenue   float64 `json:"total_revenue"`
	TotalModels    int     `json:"total_models"`
	TotalCustomers int     `json:"total_customers"`
}

type YearTotals struct {
	Units   int     `json:"units"`
	Revenue float64 `json:"revenue"`
}

// HeatCell is one region×year cell of the heatmap.
type HeatCell struct {
	Region string `json:"region"`
	Year   int    `json:"year"`
	Sales  int    `json:"sales"`
}

// BrandNode is the outer level of the brand→model hierarchy.
type BrandNode struct {
	Name     string                `json:"name"`
	Value    int                   `json:"value"`
	Children map[string]*ModelNode `json:"children"`
}

type ModelNode struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ModelPerformance aggregates every fact of one (brand, model) pair.
type ModelPerformance struct {
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	UnitsSold    int     `json:"units_sold"`
	TotalRevenue float64 `json:"total_revenue"`
	AvgPrice     float64 `json:"avg_price"`
	RegionCount  int     `json:"region_count"`
	ChannelCount int     `json:"channel_count"`
}

// ScatterPoint plots price (X) against units sold (Y) for a single fact.
type ScatterPoint struct {
	X     float64 `json:"x"`
	Y     int     `json:"y"`
	Brand string  `json:"brand"`
	Model string  `json:"model"`
}

type SpecCorrelationPoint struct {
	RAM       int     `json:"ram"`
	Storage   int     `json:"storage"`
	UnitsSold int     `json:"units_sold"`
	Price     float64 `json:"price"`
	Revenue   float64 `json:"revenue"`
}

// FilterOptions feeds the dashboard dropdowns. Brands and Models come from
// the whole catalog; Channels, Regions and Years only from the filtered facts.
type FilterOptions struct {
	Brands   []string `json:"brands"`
	Models   []string `json:"models"`
	Channels []string `json:"channels"`
	Regions  []string `json:"regions"`
	Years    []int    `json:"years"`
}
