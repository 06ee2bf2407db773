package application

import (
	"context"
	"time"

	analyticsdomain "github.com/amirpoori99/food-ordering-project-sub008/internal/analytics/domain"
	"github.com/amirpoori99/food-ordering-project-sub008/internal/etl/domain"
	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
)

// AggregateLookup requêtes d'agrégats auxiliaires sur la source, par lot d'identifiants.
// Chaque identifiant demandé est présent dans le résultat (agrégats nuls si aucune commande).
type AggregateLookup interface {
	OrderStatsByUsers(ctx context.Context, userIDs []int64) (map[int64]sourcedomain.UserOrderStats, error)
	OrderCountsByRestaurants(ctx context.Context, restaurantIDs []int64) (map[int64]int64, error)
}

// FactWriter écrit un chunk de faits dans une transaction (upsert par clé naturelle)
type FactWriter interface {
	WriteChunk(ctx context.Context, entityType sourcedomain.EntityType, facts []analyticsdomain.Fact) error
}

// WatermarkStore stockage des watermarks par type d'entité
type WatermarkStore interface {
	Get(ctx context.Context, entityType sourcedomain.EntityType, fallback time.Time) (time.Time, error)
	Advance(ctx context.Context, entityType sourcedomain.EntityType, ts time.Time) (time.Time, error)
}

// Étapes comptées par les métriques
const (
	StageExtracted   = "extracted"
	StageTransformed = "transformed"
	StageSkipped     = "skipped"
	StageLoaded      = "loaded"
	StageFailed      = "failed"
)

// Metrics observateur du pipeline
type Metrics interface {
	RecordsProcessed(entityType sourcedomain.EntityType, stage string, n int)
	ChunkRetried(entityType sourcedomain.EntityType)
	RunFinished(entityType sourcedomain.EntityType, state domain.State, d time.Duration)
	WatermarkAdvanced(entityType sourcedomain.EntityType, ts time.Time)
}

// NopMetrics n'enregistre rien
type NopMetrics struct{}

func (NopMetrics) RecordsProcessed(sourcedomain.EntityType, string, int)            {}
func (NopMetrics) ChunkRetried(sourcedomain.EntityType)                             {}
func (NopMetrics) RunFinished(sourcedomain.EntityType, domain.State, time.Duration) {}
func (NopMetrics) WatermarkAdvanced(sourcedomain.EntityType, time.Time)             {}
