package infrastructure

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirpoori99/food-ordering-project-sub008/internal/analytics/domain"
	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
)

// FactRepository écrit les faits analytiques dans l'entrepôt.
// Chaque écriture est un upsert sur la clé naturelle: rejouer un chunk ne duplique rien.
type FactRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewFactRepository crée un nouveau repository d'écriture des faits
func NewFactRepository(db *gorm.DB) *FactRepository {
	return &FactRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Migrate crée ou met à jour les tables de faits et de watermarks
func (r *FactRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&OrderFactRow{},
		&UserFactRow{},
		&RestaurantFactRow{},
		&PaymentFactRow{},
		&WatermarkRow{},
	)
}

// WriteChunk persiste un chunk homogène de faits dans une seule transaction
func (r *FactRepository) WriteChunk(ctx context.Context, entityType sourcedomain.EntityType, facts []domain.Fact) error {
	if len(facts) == 0 {
		return nil
	}
	loadedAt := r.now()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch entityType {
		case sourcedomain.EntityOrders:
			rows, err := toRows(facts, newOrderFactRow, loadedAt)
			if err != nil {
				return err
			}
			return upsert(tx, "order_id", &rows)
		case sourcedomain.EntityUsers:
			rows, err := toRows(facts, newUserFactRow, loadedAt)
			if err != nil {
				return err
			}
			return upsert(tx, "user_id", &rows)
		case sourcedomain.EntityRestaurants:
			rows, err := toRows(facts, newRestaurantFactRow, loadedAt)
			if err != nil {
				return err
			}
			return upsert(tx, "restaurant_id", &rows)
		case sourcedomain.EntityPayments:
			rows, err := toRows(facts, newPaymentFactRow, loadedAt)
			if err != nil {
				return err
			}
			return upsert(tx, "transaction_id", &rows)
		default:
			return fmt.Errorf("no fact table for entity type %q", entityType)
		}
	})
}

// toRows convertit un chunk en lignes; un fait d'un autre type invalide tout le chunk
func toRows[F domain.Fact, R any](facts []domain.Fact, convert func(F, time.Time) R, loadedAt time.Time) ([]R, error) {
	rows := make([]R, 0, len(facts))
	for _, f := range facts {
		typed, ok := f.(F)
		if !ok {
			return nil, fmt.Errorf("unexpected fact %T in chunk", f)
		}
		rows = append(rows, convert(typed, loadedAt))
	}
	return rows, nil
}

func upsert(tx *gorm.DB, key string, rows interface{}) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: key}},
		UpdateAll: true,
	}).Create(rows).Error
}

// Count nombre de faits stockés pour un type d'entité
func (r *FactRepository) Count(ctx context.Context, entityType sourcedomain.EntityType) (int64, error) {
	var model interface{}
	switch entityType {
	case sourcedomain.EntityOrders:
		model = &OrderFactRow{}
	case sourcedomain.EntityUsers:
		model = &UserFactRow{}
	case sourcedomain.EntityRestaurants:
		model = &RestaurantFactRow{}
	case sourcedomain.EntityPayments:
		model = &PaymentFactRow{}
	default:
		return 0, fmt.Errorf("no fact table for entity type %q", entityType)
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindOrderFact relit un fait de commande par son identifiant
func (r *FactRepository) FindOrderFact(ctx context.Context, orderID int64) (domain.OrderFact, error) {
	var row OrderFactRow
	if err := r.db.WithContext(ctx).First(&row, "order_id = ?", orderID).Error; err != nil {
		return domain.OrderFact{}, err
	}
	return row.toFact(), nil
}
