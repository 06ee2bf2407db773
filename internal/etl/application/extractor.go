package application

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/amirpoori99/food-ordering-project-sub008/internal/etl/domain"
	shareddomain "github.com/amirpoori99/food-ordering-project-sub008/internal/shared/domain"
	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
)

var errSequenceConsumed = errors.New("extraction sequence already consumed")

// SourceReader requêtes paginées sur le système opérationnel (lecture seule)
type SourceReader interface {
	QueryOrders(ctx context.Context, window shareddomain.Window, after *sourcedomain.Cursor, limit int) ([]*sourcedomain.OrderRecord, error)
	QueryUsers(ctx context.Context, window shareddomain.Window, after *sourcedomain.Cursor, limit int) ([]*sourcedomain.UserRecord, error)
	QueryRestaurants(ctx context.Context, window shareddomain.Window, after *sourcedomain.Cursor, limit int) ([]*sourcedomain.RestaurantRecord, error)
	QueryPayments(ctx context.Context, window shareddomain.Window, after *sourcedomain.Cursor, limit int) ([]*sourcedomain.PaymentRecord, error)
}

// Extractor lit les enregistrements créés depuis un watermark, page par page
type Extractor struct {
	source    SourceReader
	batchSize int
	logger    *zap.Logger
}

// NewExtractor crée un nouvel extracteur
func NewExtractor(source SourceReader, batchSize int, logger *zap.Logger) *Extractor {
	return &Extractor{
		source:    source,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Extract retourne une séquence paresseuse, finie et non rejouable des enregistrements
// de la fenêtre, triés par (created_at, id). Une erreur termine la séquence.
func (e *Extractor) Extract(ctx context.Context, entityType sourcedomain.EntityType, window shareddomain.Window) iter.Seq2[sourcedomain.Record, error] {
	var consumed atomic.Bool

	return func(yield func(sourcedomain.Record, error) bool) {
		if !consumed.CompareAndSwap(false, true) {
			yield(nil, &domain.ExtractionError{EntityType: entityType, Err: errSequenceConsumed})
			return
		}

		var after *sourcedomain.Cursor
		for page := 1; ; page++ {
			if err := ctx.Err(); err != nil {
				yield(nil, &domain.ExtractionError{EntityType: entityType, Err: err})
				return
			}

			records, err := e.fetchPage(ctx, entityType, window, after)
			if err != nil {
				yield(nil, &domain.ExtractionError{EntityType: entityType, Err: err})
				return
			}

			e.logger.Debug("extracted page",
				zap.String("entity_type", string(entityType)),
				zap.Int("page", page),
				zap.Int("rows", len(records)),
			)

			for _, rec := range records {
				if !yield(rec, nil) {
					return
				}
			}

			if len(records) < e.batchSize {
				return
			}
			cursor := sourcedomain.CursorOf(records[len(records)-1])
			after = &cursor
		}
	}
}

// ExtractAll consomme la séquence et retourne les enregistrements
// ainsi que le plus grand horodatage de création observé
func (e *Extractor) ExtractAll(ctx context.Context, entityType sourcedomain.EntityType, window shareddomain.Window) ([]sourcedomain.Record, time.Time, error) {
	var (
		records []sourcedomain.Record
		maxSeen time.Time
	)
	for rec, err := range e.Extract(ctx, entityType, window) {
		if err != nil {
			return nil, time.Time{}, err
		}
		records = append(records, rec)
		if ts := rec.Timestamp(); ts.After(maxSeen) {
			maxSeen = ts
		}
	}
	return records, maxSeen, nil
}

func (e *Extractor) fetchPage(ctx context.Context, entityType sourcedomain.EntityType, window shareddomain.Window, after *sourcedomain.Cursor) ([]sourcedomain.Record, error) {
	switch entityType {
	case sourcedomain.EntityOrders:
		rows, err := e.source.QueryOrders(ctx, window, after, e.batchSize)
		return asRecords(rows), err
	case sourcedomain.EntityUsers:
		rows, err := e.source.QueryUsers(ctx, window, after, e.batchSize)
		return asRecords(rows), err
	case sourcedomain.EntityRestaurants:
		rows, err := e.source.QueryRestaurants(ctx, window, after, e.batchSize)
		return asRecords(rows), err
	case sourcedomain.EntityPayments:
		rows, err := e.source.QueryPayments(ctx, window, after, e.batchSize)
		return asRecords(rows), err
	default:
		return nil, fmt.Errorf("unsupported entity type %q", entityType)
	}
}

func asRecords[T sourcedomain.Record](rows []T) []sourcedomain.Record {
	out := make([]sourcedomain.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r)
	}
	return out
}
