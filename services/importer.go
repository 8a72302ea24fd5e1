package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"phone-sales-dashboard/metrics"
	"phone-sales-dashboard/models"
	"phone-sales-dashboard/utils"
)

// ErrNoRows is returned when an upload has nothing left after cleaning.
var ErrNoRows = errors.New("no valid rows to import")

// SaleWriter persists cleaned records, creating missing brands and models.
type SaleWriter interface {
	Ingest(ctx context.Context, batchID string, records []*models.SaleRecord) (models.IngestResult, error)
}

// CacheInvalidator drops cached payloads after new data lands.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Importer cleans uploaded rows and hands them to a SaleWriter.
type Importer struct {
	cleaner *Cleaner
	writer  SaleWriter
	cache   CacheInvalidator
	logger  *utils.Logger
}

// NewImporter creates an Importer. cache may be nil.
func NewImporter(writer SaleWriter, cache CacheInvalidator, logger *utils.Logger) *Importer {
	return &Importer{
		cleaner: NewCleaner(logger),
		writer:  writer,
		cache:   cache,
		logger:  logger,
	}
}

// Import cleans raw and stores the result as one batch.
func (im *Importer) Import(ctx context.Context, raw []*models.RawSaleRow) (models.IngestResult, error) {
	records := im.cleaner.Clean(raw)
	if len(records) == 0 {
		return models.IngestResult{}, ErrNoRows
	}

	batchID := uuid.NewString()
	res, err := im.writer.Ingest(ctx, batchID, records)
	if err != nil {
		return models.IngestResult{}, fmt.Errorf("import batch %s: %w", batchID, err)
	}
	metrics.RowsIngested.Add(float64(res.Rows))

	if im.cache != nil {
		if err := im.cache.Invalidate(ctx); err != nil {
			im.logger.Warn("[importer] Cache invalidation failed: %v", err)
		}
	}

	im.logger.Info("[importer] Batch %s stored %d rows (%d new brands, %d new models)",
		res.BatchID, res.Rows, res.NewBrands, res.NewModels)
	return res, nil
}
