package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phone-sales-dashboard/models"
)

type fakeWriter struct {
	batchID string
	records []*models.SaleRecord
	err     error
}

func (w *fakeWriter) Ingest(_ context.Context, batchID string, records []*models.SaleRecord) (models.IngestResult, error) {
	if w.err != nil {
		return models.IngestResult{}, w.err
	}
	w.batchID = batchID
	w.records = records
	return models.IngestResult{BatchID: batchID, Rows: len(records)}, nil
}

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return c.err
}

func TestImporterStoresCleanRows(t *testing.T) {
	w := &fakeWriter{}
	inv := &countingInvalidator{err: errors.New("redis gone")}
	im := NewImporter(w, inv, newTestLogger())

	res, err := im.Import(context.Background(), []*models.RawSaleRow{
		{Brand: "Apple", Model: "APP-101", Price: "₹80,000", UnitsSold: "3", Year: "2024"},
		{Brand: "", Model: "ghost"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	_, parseErr := uuid.Parse(w.batchID)
	assert.NoError(t, parseErr)
	require.Len(t, w.records, 1)
	assert.Equal(t, 240000.0, w.records[0].TotalRevenue)
	assert.Equal(t, 1, inv.calls, "invalidation failures are logged, not returned")
}

func TestImporterRejectsEmptyUpload(t *testing.T) {
	im := NewImporter(&fakeWriter{}, nil, newTestLogger())

	_, err := im.Import(context.Background(), []*models.RawSaleRow{{Model: "no brand"}})

	assert.ErrorIs(t, err, ErrNoRows)
}

func TestImporterWrapsWriterError(t *testing.T) {
	boom := errors.New("tx aborted")
	im := NewImporter(&fakeWriter{err: boom}, nil, newTestLogger())

	_, err := im.Import(context.Background(), []*models.RawSaleRow{{Brand: "A", Model: "B"}})

	assert.ErrorIs(t, err, boom)
}
