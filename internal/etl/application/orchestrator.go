package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	analyticsdomain "github.com/amirpoori99/food-ordering-project-sub008/internal/analytics/domain"
	"github.com/amirpoori99/food-ordering-project-sub008/internal/etl/domain"
	shareddomain "github.com/amirpoori99/food-ordering-project-sub008/internal/shared/domain"
	sharedinfra "github.com/amirpoori99/food-ordering-project-sub008/internal/shared/infrastructure"
	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
)

// Orchestrator enchaîne extraction, transformation, chargement et avancée
// du watermark pour chaque type d'entité demandé
type Orchestrator struct {
	cfg        domain.PipelineConfig
	extractor  *Extractor
	aggregates AggregateLookup
	loader     *Loader
	watermarks WatermarkStore
	clock      sharedinfra.Clock
	metrics    Metrics
	logger     *zap.Logger
}

// Option configure l'orchestrateur
type Option func(*Orchestrator)

// WithClock remplace l'horloge système
func WithClock(c sharedinfra.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithMetrics branche un collecteur de métriques
func WithMetrics(m Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger branche un logger
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator crée un orchestrateur; la configuration est validée avant toute I/O
func NewOrchestrator(
	cfg domain.PipelineConfig,
	source SourceReader,
	aggregates AggregateLookup,
	writer FactWriter,
	watermarks WatermarkStore,
	opts ...Option,
) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:        cfg,
		aggregates: aggregates,
		watermarks: watermarks,
		clock:      sharedinfra.SystemClock{},
		metrics:    NopMetrics{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.extractor = NewExtractor(source, cfg.BatchSize, o.logger)
	o.loader = NewLoader(writer, cfg, o.metrics, o.logger)

	return o, nil
}

// RunPipeline exécute un run. Les types d'entité sont traités en parallèle
// et isolés: l'échec de l'un n'affecte ni les autres ni leurs watermarks.
func (o *Orchestrator) RunPipeline(ctx context.Context, req domain.RunRequest) domain.RunReport {
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	entityTypes := dedupe(req.EntityTypes)
	if len(entityTypes) == 0 {
		entityTypes = sourcedomain.AllEntityTypes()
	}

	now := o.clock.Now()
	asOf := now
	var until *time.Time
	if req.AsOf != nil {
		a := req.AsOf.UTC()
		asOf = a
		until = &a
	}

	report := domain.RunReport{
		StartedAt: now,
		DryRun:    req.DryRun,
		Entities:  make(map[sourcedomain.EntityType]*domain.EntityReport, len(entityTypes)),
	}

	o.logger.Info("pipeline run started",
		zap.Int("entity_types", len(entityTypes)),
		zap.Time("as_of", asOf),
		zap.Bool("dry_run", req.DryRun),
	)

	// agrégats relus à chaque run, partagés par les jobs du run
	aggregates := newRunAggregates(o.aggregates)
	defer aggregates.Close()

	var mu sync.Mutex
	record := func(r *domain.EntityReport) {
		mu.Lock()
		report.Entities[r.EntityType] = r
		mu.Unlock()
	}

	pool := sharedinfra.NewWorkerPool(ctx, min(o.cfg.Workers, len(entityTypes)))
	pool.Start()
	for _, et := range entityTypes {
		err := pool.Submit(func(ctx context.Context) {
			record(o.runEntity(ctx, et, aggregates, asOf, until, req.DryRun))
		})
		if err != nil {
			break
		}
	}
	pool.Wait()

	// jobs jamais exécutés (run annulé avant leur démarrage)
	for _, et := range entityTypes {
		if _, ok := report.Entities[et]; ok {
			continue
		}
		r := domain.NewEntityReport(et)
		cause := ctx.Err()
		if cause == nil {
			cause = sharedinfra.ErrPoolStopped
		}
		r.Fail(fmt.Errorf("entity job not started: %w", cause))
		o.metrics.RunFinished(et, r.State, 0)
		report.Entities[et] = r
	}

	report.FinishedAt = o.clock.Now()
	o.logger.Info("pipeline run finished",
		zap.Bool("failures", report.HasFailures()),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)

	return report
}

func (o *Orchestrator) runEntity(ctx context.Context, et sourcedomain.EntityType, aggregates *runAggregates, asOf time.Time, until *time.Time, dryRun bool) (report *domain.EntityReport) {
	start := time.Now()
	report = domain.NewEntityReport(et)
	log := o.logger.With(zap.String("entity_type", string(et)))

	defer func() {
		if p := recover(); p != nil {
			log.Error("entity job panicked", zap.Any("panic", p), zap.String("state", string(report.State)))
			report.Fail(fmt.Errorf("entity job panicked in %s: %v", report.State, p))
		}
		report.Duration = time.Since(start)
		o.metrics.RunFinished(et, report.State, report.Duration)
	}()

	since, err := o.watermarks.Get(ctx, et, asOf.Add(-o.cfg.DefaultLookback))
	if err != nil {
		report.Fail(&domain.ExtractionError{EntityType: et, Err: fmt.Errorf("read watermark: %w", err)})
		log.Error("watermark read failed", zap.Error(err))
		return report
	}
	report.PreviousWatermark = &since

	// extraction
	report.State = domain.StateExtracting
	window, err := shareddomain.NewWindow(since, until)
	if err != nil {
		report.Fail(&domain.ExtractionError{EntityType: et, Err: err})
		return report
	}
	records, maxSeen, err := o.extractor.ExtractAll(ctx, et, window)
	if err != nil {
		report.Fail(err)
		log.Error("extraction failed", zap.Error(err))
		return report
	}
	report.Extracted = len(records)
	o.metrics.RecordsProcessed(et, StageExtracted, len(records))

	// transformation
	report.State = domain.StateTransforming
	facts, skips, err := o.transformPages(ctx, et, records, aggregates, log)
	report.Transformed = len(facts)
	report.Skipped = len(skips)
	report.Skips = skips
	o.metrics.RecordsProcessed(et, StageTransformed, len(facts))
	o.metrics.RecordsProcessed(et, StageSkipped, len(skips))
	if err != nil {
		report.Fail(fmt.Errorf("transform %s: %w", et, err))
		log.Error("transformation interrupted", zap.Error(err))
		return report
	}

	if dryRun {
		report.State = domain.StateDryRun
		log.Info("dry run completed",
			zap.Int("extracted", report.Extracted),
			zap.Int("transformed", report.Transformed),
			zap.Int("skipped", report.Skipped),
		)
		return report
	}

	// chargement
	report.State = domain.StateLoading
	res := o.loader.Load(ctx, et, facts)
	report.Loaded = res.Persisted
	report.Failed = res.Failed
	o.metrics.RecordsProcessed(et, StageLoaded, res.Persisted)
	o.metrics.RecordsProcessed(et, StageFailed, res.Failed)
	if res.Err != nil {
		report.Fail(res.Err)
		return report
	}

	// watermark: plus grand created_at extrait, ou la borne utilisée si rien n'a été lu
	target := maxSeen
	if target.Before(since) {
		target = since
	}
	advanced, err := o.watermarks.Advance(ctx, et, target)
	if err != nil {
		report.Fail(fmt.Errorf("advance watermark %s: %w", et, err))
		log.Error("watermark advance failed", zap.Error(err))
		return report
	}
	report.NewWatermark = &advanced
	report.State = domain.StateWatermarkAdvanced
	o.metrics.WatermarkAdvanced(et, advanced)

	log.Info("entity job completed",
		zap.Int("extracted", report.Extracted),
		zap.Int("loaded", report.Loaded),
		zap.Int("skipped", report.Skipped),
		zap.Time("watermark", advanced),
	)
	return report
}

// transformPages transforme par pages de batchSize, en préchargeant les agrégats
// de chaque page. Un échec de préchargement n'est pas fatal: la lecture unitaire
// reprend et ses erreurs deviennent des skips.
func (o *Orchestrator) transformPages(ctx context.Context, et sourcedomain.EntityType, records []sourcedomain.Record, aggregates *runAggregates, log *zap.Logger) ([]analyticsdomain.Fact, []domain.SkipEntry, error) {
	transformer := NewTransformer(aggregates, o.cfg, log)
	facts := make([]analyticsdomain.Fact, 0, len(records))
	var skips []domain.SkipEntry

	for start := 0; start < len(records); start += o.cfg.BatchSize {
		page := records[start:min(start+o.cfg.BatchSize, len(records))]
		if err := aggregates.prefetch(ctx, page); err != nil {
			log.Warn("aggregate prefetch failed", zap.Error(err))
		}

		pageFacts, pageSkips, err := transformer.TransformAll(ctx, et, page)
		facts = append(facts, pageFacts...)
		skips = append(skips, pageSkips...)
		if err != nil {
			return facts, skips, err
		}
	}
	return facts, skips, nil
}

func dedupe(types []sourcedomain.EntityType) []sourcedomain.EntityType {
	seen := make(map[sourcedomain.EntityType]struct{}, len(types))
	out := make([]sourcedomain.EntityType, 0, len(types))
	for _, et := range types {
		if _, ok := seen[et]; ok {
			continue
		}
		seen[et] = struct{}{}
		out = append(out, et)
	}
	return out
}
