package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/amirpoori99/food-ordering-project-sub008/database"
	analyticsinfra "github.com/amirpoori99/food-ordering-project-sub008/internal/analytics/infrastructure"
	"github.com/amirpoori99/food-ordering-project-sub008/internal/config"
	"github.com/amirpoori99/food-ordering-project-sub008/internal/etl/application"
	"github.com/amirpoori99/food-ordering-project-sub008/internal/etl/domain"
	etlinfra "github.com/amirpoori99/food-ordering-project-sub008/internal/etl/infrastructure"
	sharedinfra "github.com/amirpoori99/food-ordering-project-sub008/internal/shared/infrastructure"
	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
	sourceinfra "github.com/amirpoori99/food-ordering-project-sub008/internal/source/infrastructure"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		entities   = flag.String("entities", "all", "comma-separated entity types (orders,users,restaurants,payments) or all")
		asOf       = flag.String("as-of", "", "reference time (RFC3339); also the inclusive upper bound of extraction")
		dryRun     = flag.Bool("dry-run", false, "extract and transform without loading or advancing watermarks")
		interval   = flag.Duration("interval", 0, "run periodically with this interval (0 = single run)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("load config: %v", err)
		return 2
	}

	logger, err := sharedinfra.NewLogger(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		log.Printf("build logger: %v", err)
		return 2
	}
	defer logger.Sync()

	pipelineCfg, err := cfg.PipelineConfig()
	if err != nil {
		logger.Error("invalid pipeline configuration", zap.Error(err))
		return 2
	}

	runInterval := *interval
	if runInterval == 0 {
		if runInterval, err = cfg.RunInterval(); err != nil {
			logger.Error("invalid run interval", zap.Error(err))
			return 2
		}
	}

	req, err := buildRequest(*entities, *asOf, *dryRun)
	if err != nil {
		logger.Error("invalid arguments", zap.Error(err))
		return 2
	}
	if req.AsOf != nil && runInterval > 0 {
		logger.Error("-as-of cannot be combined with periodic mode")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Source (lecture seule)
	if err := database.Init(cfg.Source.ConnectionString()); err != nil {
		logger.Error("connect source database", zap.Error(err))
		return 1
	}
	defer database.Close()

	// Entrepôt analytique
	warehouse, err := database.OpenWarehouse(cfg.Warehouse.Driver, cfg.Warehouse.ConnectionString(), logger)
	if err != nil {
		logger.Error("connect warehouse", zap.Error(err))
		return 1
	}
	facts := analyticsinfra.NewFactRepository(warehouse)
	if err := facts.Migrate(ctx); err != nil {
		logger.Error("migrate warehouse", zap.Error(err))
		return 1
	}
	watermarks := analyticsinfra.NewWatermarkRepository(warehouse)

	source := sourceinfra.NewSourceQueryRepository(database.DB)

	metrics := etlinfra.NewPipelineMetrics(prometheus.DefaultRegisterer)

	orchestrator, err := application.NewOrchestrator(pipelineCfg, source, source, facts, watermarks,
		application.WithLogger(logger),
		application.WithMetrics(metrics),
	)
	if err != nil {
		logger.Error("build orchestrator", zap.Error(err))
		return 2
	}

	if runInterval == 0 {
		report := orchestrator.RunPipeline(ctx, req)
		if err := json.NewEncoder(os.Stdout).Encode(report); err != nil {
			logger.Error("encode report", zap.Error(err))
		}
		if report.HasFailures() {
			return 1
		}
		return 0
	}

	server := newOpsServer(cfg.HTTP.Addr, watermarks)
	go func() {
		logger.Info("ops server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server stopped", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	runPeriodically(ctx, logger, orchestrator, req, runInterval)
	return 0
}

func buildRequest(entities, asOf string, dryRun bool) (domain.RunRequest, error) {
	types, err := sourcedomain.ParseEntityTypes(entities)
	if err != nil {
		return domain.RunRequest{}, err
	}

	req := domain.RunRequest{EntityTypes: types, DryRun: dryRun}
	if asOf != "" {
		t, err := time.Parse(time.RFC3339, asOf)
		if err != nil {
			return domain.RunRequest{}, fmt.Errorf("parse -as-of: %w", err)
		}
		req.AsOf = &t
	}
	return req, nil
}

// runPeriodically enchaîne les runs jusqu'à l'arrêt du contexte
func runPeriodically(ctx context.Context, logger *zap.Logger, orchestrator *application.Orchestrator, req domain.RunRequest, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		report := orchestrator.RunPipeline(ctx, req)
		for _, et := range report.EntityTypes() {
			r := report.Entities[et]
			logger.Info("entity run summary",
				zap.String("entity_type", string(et)),
				zap.String("state", string(r.State)),
				zap.Int("extracted", r.Extracted),
				zap.Int("loaded", r.Loaded),
				zap.Int("skipped", r.Skipped),
				zap.String("error", r.Error),
			)
		}

		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case <-ticker.C:
		}
	}
}

// newOpsServer expose /health (watermarks courants) et /metrics
func newOpsServer(addr string, watermarks *analyticsinfra.WatermarkRepository) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		current, err := watermarks.List(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "degraded", "error": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     "ok",
			"watermarks": current,
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
