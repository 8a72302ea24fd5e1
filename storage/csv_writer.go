package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"phone-sales-dashboard/models"
)

var (
	// ExportHeader is the column set of CSV, XLSX and PDF exports.
	ExportHeader = []string{
		"Brand", "Model", "RAM", "Storage", "Camera", "Battery", "Processor",
		"Price", "Units Sold", "Region", "Channel", "Year",
	}

	// UploadHeader is the full column set accepted by uploads.
	UploadHeader = []string{
		"Brand", "Model", "RAM", "Storage", "Camera", "Battery", "Processor",
		"OS", "Display Size", "Price", "Units Sold", "Region", "Channel", "Year",
	}
)

// CSVWriter writes sales rows as CSV. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	closer io.Closer
	writer *csv.Writer
}

// NewCSVWriter wraps w and writes the header row immediately.
func NewCSVWriter(w io.Writer, header []string) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	cw.Flush()
	return &CSVWriter{writer: cw}, cw.Error()
}

// CreateCSVFile creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func CreateCSVFile(path string, header []string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w, err := NewCSVWriter(f, header)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// WriteExport writes rows in ExportHeader column order.
func (c *CSVWriter) WriteExport(rows []models.ExportRow) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range rows {
		record := []string{
			r.Brand,
			r.Model,
			r.RAM,
			r.Storage,
			r.Camera,
			r.Battery,
			r.Processor,
			strconv.FormatFloat(r.Price, 'f', -1, 64),
			strconv.Itoa(r.UnitsSold),
			r.Region,
			r.Channel,
			strconv.Itoa(r.Year),
		}
		if err := c.writer.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// WriteRaw writes rows in UploadHeader column order.
func (c *CSVWriter) WriteRaw(rows []*models.RawSaleRow) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range rows {
		record := []string{
			r.Brand, r.Model, r.RAM, r.Storage, r.Camera, r.Battery, r.Processor,
			r.OS, r.DisplaySize, r.Price, r.UnitsSold, r.Region, r.Channel, r.Year,
		}
		if err := c.writer.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and, for files opened by CreateCSVFile, closes the file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	if c.closer != nil {
		return c.closer.Close()
	}
	return c.writer.Error()
}
