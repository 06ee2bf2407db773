package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	analyticsdomain "github.com/amirpoori99/food-ordering-project-sub008/internal/analytics/domain"
	"github.com/amirpoori99/food-ordering-project-sub008/internal/etl/domain"
	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
)

// LoadResult bilan du chargement d'un type d'entité
type LoadResult struct {
	Persisted int
	Failed    int
	Chunks    int
	Attempts  int
	Err       error
}

// Loader écrit les faits par chunks transactionnels, avec retry à délai fixe
type Loader struct {
	writer      FactWriter
	commitSize  int
	maxAttempts int
	retryDelay  time.Duration
	metrics     Metrics
	logger      *zap.Logger
}

// NewLoader crée un nouveau loader
func NewLoader(writer FactWriter, cfg domain.PipelineConfig, metrics Metrics, logger *zap.Logger) *Loader {
	return &Loader{
		writer:      writer,
		commitSize:  cfg.CommitSize,
		maxAttempts: cfg.MaxRetryAttempts,
		retryDelay:  cfg.RetryDelay,
		metrics:     metrics,
		logger:      logger,
	}
}

// Load découpe les faits en chunks de commitSize et les écrit dans l'ordre.
// Au premier chunk définitivement en échec, le chargement s'arrête:
// ce chunk et les suivants sont comptés en échec.
func (l *Loader) Load(ctx context.Context, entityType sourcedomain.EntityType, facts []analyticsdomain.Fact) LoadResult {
	var res LoadResult

	for start, chunk := 0, 1; start < len(facts); start, chunk = start+l.commitSize, chunk+1 {
		end := min(start+l.commitSize, len(facts))
		batch := facts[start:end]

		attempts, err := l.commitChunk(ctx, entityType, chunk, batch)
		res.Attempts += attempts
		if err != nil {
			res.Failed = len(facts) - res.Persisted
			res.Err = &domain.LoadChunkError{
				EntityType: entityType,
				Chunk:      chunk,
				Size:       len(batch),
				Attempts:   attempts,
				Err:        err,
			}
			l.logger.Error("chunk load failed",
				zap.String("entity_type", string(entityType)),
				zap.Int("chunk", chunk),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
			return res
		}

		res.Persisted += len(batch)
		res.Chunks++
	}

	return res
}

// commitChunk retourne le nombre de tentatives effectuées
func (l *Loader) commitChunk(ctx context.Context, entityType sourcedomain.EntityType, chunk int, batch []analyticsdomain.Fact) (int, error) {
	var lastErr error

	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		err := l.writer.WriteChunk(ctx, entityType, batch)
		if err == nil {
			return attempt, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == l.maxAttempts {
			return attempt, lastErr
		}

		l.logger.Warn("chunk write failed, retrying",
			zap.String("entity_type", string(entityType)),
			zap.Int("chunk", chunk),
			zap.Int("attempt", attempt),
			zap.Duration("delay", l.retryDelay),
			zap.Error(err),
		)
		l.metrics.ChunkRetried(entityType)

		if err := sleep(ctx, l.retryDelay); err != nil {
			return attempt, err
		}
	}

	return l.maxAttempts, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
