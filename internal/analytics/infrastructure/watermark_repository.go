package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
)

// WatermarkRepository stocke, par type d'entité, le dernier horodatage extrait
type WatermarkRepository struct {
	db *gorm.DB
}

// NewWatermarkRepository crée un nouveau repository de watermarks
func NewWatermarkRepository(db *gorm.DB) *WatermarkRepository {
	return &WatermarkRepository{db: db}
}

// Get retourne le watermark stocké, ou fallback s'il n'existe pas encore
func (r *WatermarkRepository) Get(ctx context.Context, entityType sourcedomain.EntityType, fallback time.Time) (time.Time, error) {
	var row WatermarkRow
	err := r.db.WithContext(ctx).First(&row, "entity_type = ?", string(entityType)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallback.UTC(), nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load watermark %s: %w", entityType, err)
	}
	return row.LastExtractedAt.UTC(), nil
}

// Advance stocke max(courant, ts) et retourne la valeur stockée.
// Le watermark ne recule jamais.
func (r *WatermarkRepository) Advance(ctx context.Context, entityType sourcedomain.EntityType, ts time.Time) (time.Time, error) {
	stored := ts.UTC()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if strings.EqualFold(tx.Dialector.Name(), "postgres") {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var current WatermarkRow
		err := query.First(&current, "entity_type = ?", string(entityType)).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		case current.LastExtractedAt.After(stored):
			stored = current.LastExtractedAt.UTC()
			return nil
		}

		row := WatermarkRow{
			EntityType:      string(entityType),
			LastExtractedAt: stored,
			UpdatedAt:       time.Now().UTC(),
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_extracted_at", "updated_at"}),
		}).Create(&row).Error
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("advance watermark %s: %w", entityType, err)
	}

	return stored, nil
}

// List retourne tous les watermarks connus
func (r *WatermarkRepository) List(ctx context.Context) (map[sourcedomain.EntityType]time.Time, error) {
	var rows []WatermarkRow
	if err := r.db.WithContext(ctx).Order("entity_type").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list watermarks: %w", err)
	}

	out := make(map[sourcedomain.EntityType]time.Time, len(rows))
	for _, row := range rows {
		out[sourcedomain.EntityType(row.EntityType)] = row.LastExtractedAt.UTC()
	}
	return out, nil
}
