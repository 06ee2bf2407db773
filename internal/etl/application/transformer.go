package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	analyticsdomain "github.com/amirpoori99/food-ordering-project-sub008/internal/analytics/domain"
	"github.com/amirpoori99/food-ordering-project-sub008/internal/etl/domain"
	shareddomain "github.com/amirpoori99/food-ordering-project-sub008/internal/shared/domain"
	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
)

// Transformer convertit un enregistrement source en fait analytique.
// Même entrée et mêmes agrégats => même fait.
type Transformer struct {
	aggregates  AggregateLookup
	taxRate     decimal.Decimal
	deliveryFee decimal.Decimal
	loc         *time.Location
	logger      *zap.Logger
}

// NewTransformer crée un nouveau transformer
func NewTransformer(aggregates AggregateLookup, cfg domain.PipelineConfig, logger *zap.Logger) *Transformer {
	return &Transformer{
		aggregates:  aggregates,
		taxRate:     cfg.TaxRate,
		deliveryFee: cfg.DeliveryFee,
		loc:         cfg.Loc(),
		logger:      logger,
	}
}

// TransformAll transforme les enregistrements dans l'ordre d'extraction.
// Les échecs unitaires sont journalisés et écartés; seule l'annulation du contexte interrompt.
func (t *Transformer) TransformAll(ctx context.Context, entityType sourcedomain.EntityType, records []sourcedomain.Record) ([]analyticsdomain.Fact, []domain.SkipEntry, error) {
	facts := make([]analyticsdomain.Fact, 0, len(records))
	var skips []domain.SkipEntry

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return facts, skips, err
		}

		out := t.Transform(ctx, rec)
		switch out.Kind {
		case domain.OutcomeFact:
			facts = append(facts, out.Fact)
		case domain.OutcomeSkipped:
			t.logger.Warn("record skipped",
				zap.String("entity_type", string(entityType)),
				zap.String("record_key", out.Skip.RecordKey),
				zap.String("reason", out.Skip.Reason),
				zap.Error(out.Skip.Err),
			)
			skips = append(skips, domain.SkipEntry{RecordKey: out.Skip.RecordKey, Reason: out.Skip.Reason})
		}
	}

	return facts, skips, nil
}

// Transform aiguille selon le type d'enregistrement
func (t *Transformer) Transform(ctx context.Context, rec sourcedomain.Record) (out domain.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			out = skip(rec, "transform panicked", fmt.Errorf("%v", p))
		}
	}()

	switch r := rec.(type) {
	case nil:
		return domain.EmptyOutcome()
	case *sourcedomain.OrderRecord:
		return t.TransformOrder(r)
	case *sourcedomain.UserRecord:
		return t.TransformUser(ctx, r)
	case *sourcedomain.RestaurantRecord:
		return t.TransformRestaurant(ctx, r)
	case *sourcedomain.PaymentRecord:
		return t.TransformPayment(r)
	default:
		return skip(rec, fmt.Sprintf("unsupported record type %T", rec), nil)
	}
}

// TransformOrder calcule taxe, frais, remise, dimensions temporelles et tranche de valeur
func (t *Transformer) TransformOrder(o *sourcedomain.OrderRecord) domain.Outcome {
	if o == nil {
		return domain.EmptyOutcome()
	}
	if o.UserID == nil {
		return skip(o, "missing user reference", nil)
	}
	if o.RestaurantID == nil {
		return skip(o, "missing restaurant reference", nil)
	}
	if o.CreatedAt.IsZero() {
		return skip(o, "missing order timestamp", nil)
	}
	if o.ItemCount < 0 {
		return skip(o, "negative item count", nil)
	}

	local := o.CreatedAt.In(t.loc)
	fact := analyticsdomain.OrderFact{
		OrderID:        o.ID,
		UserID:         *o.UserID,
		RestaurantID:   *o.RestaurantID,
		OrderedAt:      o.CreatedAt.UTC(),
		Status:         string(o.Status),
		TotalAmount:    o.TotalAmount,
		DeliveryFee:    t.deliveryFee,
		DiscountAmount: decimal.Zero,
		HourOfDay:      local.Hour(),
		DayOfWeek:      analyticsdomain.IsoWeekday(local),
		Month:          int(local.Month()),
		Year:           local.Year(),
		ItemCount:      o.ItemCount,
		ValueCategory:  analyticsdomain.ClassifyOrderValue(o.TotalAmount),
	}

	if o.TotalAmount.Valid {
		total, err := shareddomain.NewMoney(o.TotalAmount.Decimal)
		if err != nil {
			return skip(o, "invalid total amount", err)
		}
		tax, err := total.Multiply(t.taxRate)
		if err != nil {
			return skip(o, "invalid tax rate", err)
		}
		fact.TaxAmount = decimal.NullDecimal{Decimal: tax.Amount(), Valid: true}
		// net = total: la remise n'est pas déduite (règle métier actuelle)
		fact.NetAmount = o.TotalAmount

		if o.Coupon != nil {
			discount, err := total.Percent(o.Coupon.DiscountPercent)
			if err != nil {
				return skip(o, "invalid coupon discount", err)
			}
			fact.DiscountAmount = discount.Amount()
		}
	}

	if o.DeliveredAt != nil && !o.DeliveredAt.Before(o.CreatedAt) {
		minutes := int64(o.DeliveredAt.Sub(o.CreatedAt) / time.Minute)
		fact.DeliveryDurationMinutes = &minutes
	}

	return domain.FactOutcome(fact)
}

// TransformUser agrège les commandes de l'utilisateur et calcule son segment
func (t *Transformer) TransformUser(ctx context.Context, u *sourcedomain.UserRecord) domain.Outcome {
	if u == nil {
		return domain.EmptyOutcome()
	}
	if u.Role == "" {
		return skip(u, "missing role", nil)
	}
	if u.CreatedAt.IsZero() {
		return skip(u, "missing registration date", nil)
	}

	byUser, err := t.aggregates.OrderStatsByUsers(ctx, []int64{u.ID})
	if err != nil {
		return skip(u, "order aggregate lookup failed", err)
	}
	stats := byUser[u.ID]
	if stats.TotalOrders < 0 {
		return skip(u, "negative order count", nil)
	}

	spent, err := shareddomain.NewMoney(stats.TotalSpent)
	if err != nil {
		return skip(u, "invalid total spent", err)
	}

	fact := analyticsdomain.UserFact{
		UserID:       u.ID,
		Role:         u.Role,
		RegisteredAt: u.CreatedAt.UTC(),
		Active:       u.Active,
		TotalOrders:  stats.TotalOrders,
		TotalSpent:   spent.Amount(),
		Segment:      analyticsdomain.ClassifyCustomerSegment(stats.TotalOrders),
	}
	if stats.TotalOrders > 0 {
		avg, err := spent.Divide(stats.TotalOrders)
		if err != nil {
			return skip(u, "average order value", err)
		}
		fact.AverageOrderValue = decimal.NullDecimal{Decimal: avg.Amount(), Valid: true}
	}
	if stats.LastOrderAt != nil {
		last := stats.LastOrderAt.UTC()
		fact.LastOrderAt = &last
	}

	return domain.FactOutcome(fact)
}

// TransformRestaurant ajoute le nombre total de commandes du restaurant
func (t *Transformer) TransformRestaurant(ctx context.Context, r *sourcedomain.RestaurantRecord) domain.Outcome {
	if r == nil {
		return domain.EmptyOutcome()
	}
	if r.Name == "" {
		return skip(r, "missing restaurant name", nil)
	}

	counts, err := t.aggregates.OrderCountsByRestaurants(ctx, []int64{r.ID})
	if err != nil {
		return skip(r, "order count lookup failed", err)
	}
	count := counts[r.ID]

	return domain.FactOutcome(analyticsdomain.RestaurantFact{
		RestaurantID: r.ID,
		Name:         r.Name,
		Category:     r.Category,
		City:         r.City,
		RegisteredAt: r.CreatedAt.UTC(),
		TotalOrders:  count,
	})
}

// TransformPayment recopie les champs de la transaction
func (t *Transformer) TransformPayment(p *sourcedomain.PaymentRecord) domain.Outcome {
	if p == nil {
		return domain.EmptyOutcome()
	}
	if !p.Amount.Valid {
		return skip(p, "missing amount", nil)
	}
	if p.CreatedAt.IsZero() {
		return skip(p, "missing transaction date", nil)
	}

	return domain.FactOutcome(analyticsdomain.PaymentFact{
		TransactionID: p.ID,
		Amount:        p.Amount.Decimal,
		PaymentMethod: p.Method,
		Status:        p.Status,
		TransactedAt:  p.CreatedAt.UTC(),
	})
}

func skip(rec sourcedomain.Record, reason string, err error) domain.Outcome {
	return domain.SkippedOutcome(&domain.TransformSkip{
		EntityType: rec.Entity(),
		RecordKey:  sourcedomain.RecordKey(rec),
		Reason:     reason,
		Err:        err,
	})
}
