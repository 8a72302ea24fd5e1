package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"phone-sales-dashboard/models"
)

// ErrMissingColumns is returned when an upload lacks a required column.
var ErrMissingColumns = errors.New("csv missing required columns")

// RequiredColumns must all be present in an upload header.
var RequiredColumns = []string{
	"Brand", "Model", "RAM", "Storage", "Camera", "Battery", "Processor",
	"Price", "Units Sold", "Region", "Channel", "Year",
}

// ReadSales parses an uploaded CSV. Columns are matched by header name, so
// their order is free and extra columns are ignored. OS and Display Size
// are optional.
func ReadSales(r io.Reader) ([]*models.RawSaleRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		idx[h] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var rows []*models.RawSaleRow
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read line %d: %w", line, err)
		}

		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}
		rows = append(rows, &models.RawSaleRow{
			Brand:       get("Brand"),
			Model:       get("Model"),
			RAM:         get("RAM"),
			Storage:     get("Storage"),
			Camera:      get("Camera"),
			Battery:     get("Battery"),
			Processor:   get("Processor"),
			OS:          get("OS"),
			DisplaySize: get("Display Size"),
			Price:       get("Price"),
			UnitsSold:   get("Units Sold"),
			Region:      get("Region"),
			Channel:     get("Channel"),
			Year:        get("Year"),
		})
	}
	return rows, nil
}
