package infrastructure

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/amirpoori99/food-ordering-project-sub008/internal/etl/domain"
	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
)

func TestPipelineMetricsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPipelineMetrics(registry)

	m.RecordsProcessed(sourcedomain.EntityOrders, "extracted", 10)
	m.RecordsProcessed(sourcedomain.EntityOrders, "extracted", 5)
	m.RecordsProcessed(sourcedomain.EntityOrders, "skipped", 0)
	m.ChunkRetried(sourcedomain.EntityUsers)
	m.ChunkRetried(sourcedomain.EntityUsers)
	m.RunFinished(sourcedomain.EntityPayments, domain.StateFailed, 250*time.Millisecond)

	assert.Equal(t, 15.0, testutil.ToFloat64(m.RecordsCounter(sourcedomain.EntityOrders, "extracted")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.records.WithLabelValues("orders", "skipped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RetriesCounter(sourcedomain.EntityUsers)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("payments", "FAILED")))
}

func TestPipelineMetricsWatermarkGauge(t *testing.T) {
	m := NewPipelineMetrics(prometheus.NewRegistry())
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	m.WatermarkAdvanced(sourcedomain.EntityRestaurants, ts)

	assert.Equal(t, float64(ts.Unix()), testutil.ToFloat64(m.watermark.WithLabelValues("restaurants")))
}
