package infrastructure

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/amirpoori99/food-ordering-project-sub008/internal/etl/domain"
	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
)

// PipelineMetrics collecteur Prometheus du pipeline ETL
type PipelineMetrics struct {
	records      *prometheus.CounterVec
	chunkRetries *prometheus.CounterVec
	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	watermark    *prometheus.GaugeVec
}

// NewPipelineMetrics crée et enregistre les collecteurs auprès du registerer
func NewPipelineMetrics(registerer prometheus.Registerer) *PipelineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &PipelineMetrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "etl_records_total",
			Help: "Records processed by entity type and pipeline stage.",
		}, []string{"entity_type", "stage"}),
		chunkRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "etl_chunk_retries_total",
			Help: "Chunk write retries after a failed transaction.",
		}, []string{"entity_type"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "etl_entity_runs_total",
			Help: "Entity jobs by terminal state.",
		}, []string{"entity_type", "state"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "etl_entity_run_duration_seconds",
			Help:    "Entity job duration.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"entity_type"}),
		watermark: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "etl_watermark_timestamp_seconds",
			Help: "Last extracted creation timestamp per entity type.",
		}, []string{"entity_type"}),
	}

	registerer.MustRegister(m.records, m.chunkRetries, m.runs, m.runDuration, m.watermark)
	return m
}

func (m *PipelineMetrics) RecordsProcessed(entityType sourcedomain.EntityType, stage string, n int) {
	if n <= 0 {
		return
	}
	m.records.WithLabelValues(string(entityType), stage).Add(float64(n))
}

func (m *PipelineMetrics) ChunkRetried(entityType sourcedomain.EntityType) {
	m.chunkRetries.WithLabelValues(string(entityType)).Inc()
}

func (m *PipelineMetrics) RunFinished(entityType sourcedomain.EntityType, state domain.State, d time.Duration) {
	m.runs.WithLabelValues(string(entityType), string(state)).Inc()
	m.runDuration.WithLabelValues(string(entityType)).Observe(d.Seconds())
}

func (m *PipelineMetrics) WatermarkAdvanced(entityType sourcedomain.EntityType, ts time.Time) {
	m.watermark.WithLabelValues(string(entityType)).Set(float64(ts.Unix()))
}

// RecordsCounter compteur d'enregistrements pour un type d'entité et une étape
func (m *PipelineMetrics) RecordsCounter(entityType sourcedomain.EntityType, stage string) prometheus.Counter {
	return m.records.WithLabelValues(string(entityType), stage)
}

// RetriesCounter compteur de retries de chunks pour un type d'entité
func (m *PipelineMetrics) RetriesCounter(entityType sourcedomain.EntityType) prometheus.Counter {
	return m.chunkRetries.WithLabelValues(string(entityType))
}
