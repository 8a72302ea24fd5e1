package models

import "time"

// RawSaleRow holds one unprocessed CSV row exactly as uploaded.
// Cleaning and type conversion happen in services.Cleaner.
type RawSaleRow struct {
	Brand       string
	Model       string
	RAM         string
	Storage     string
	Camera      string
	Battery     string
	Processor   string
	OS          string
	DisplaySize string
	Price       string
	UnitsSold   string
	Region      string
	Channel     string
	Year        string
}

// SaleRecord is a cleaned row ready for ingestion. It carries the natural
// keys of its brand and model so the store can deduplicate dimensions.
type SaleRecord struct {
	Brand        string
	Model        PhoneModel
	UnitsSold    int
	AveragePrice float64
	TotalRevenue float64
	Region       string
	Channel      string
	Year         int
}

type Brand struct {
	ID   int64
	Name string
}

// PhoneModel belongs to exactly one Brand. Spec attributes are free text.
type PhoneModel struct {
	ID          int64
	BrandID     int64
	Name        string
	RAM         string
	Storage     string
	Camera      string
	Battery     string
	Processor   string
	OS          string
	DisplaySize string
	LaunchYear  int
}

// Sale is an append-only fact row.
type Sale struct {
	ID           int64
	ModelID      int64
	BatchID      string
	UnitsSold    int
	TotalRevenue float64
	AveragePrice float64
	Region       string
	Channel      string
	Year         int
	CreatedAt    time.Time
}

// FactRow is a Sale joined with its PhoneModel and Brand attributes.
type FactRow struct {
	Brand        string
	Model        string
	RAM          string
	Storage      string
	Battery      string
	UnitsSold    int
	TotalRevenue float64
	AveragePrice float64
	Region       string
	Channel      string
	Year         int
}

// Catalog lists every known brand and model name regardless of filters.
type Catalog struct {
	Brands []string
	Models []string
}

// ExportRow is the flat shape written to CSV, XLSX and PDF exports.
type ExportRow struct {
	Brand     string
	Model     string
	RAM       string
	Storage   string
	Camera    string
	Battery   string
	Processor string
	Price     float64
	UnitsSold int
	Region    string
	Channel   string
	Year      int
}

// IngestResult summarises one upload.
type IngestResult struct {
	BatchID   string `json:"batch_id"`
	Rows      int    `json:"rows"`
	NewBrands int    `json:"new_brands"`
	NewModels int    `json:"new_models"`
}
