package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	shareddomain "github.com/amirpoori99/food-ordering-project-sub008/internal/shared/domain"
	"github.com/amirpoori99/food-ordering-project-sub008/internal/shared/infrastructure"
	"github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
)

// SourceQueryRepository repository de lecture sur la base opérationnelle.
// Toutes les requêtes paginent par clé (created_at, id) croissante.
type SourceQueryRepository struct {
	infrastructure.BaseRepository
}

// NewSourceQueryRepository crée un nouveau repository de lecture source
func NewSourceQueryRepository(db *sql.DB) *SourceQueryRepository {
	return &SourceQueryRepository{
		BaseRepository: infrastructure.NewBaseRepository(db),
	}
}

// pageArgs construit les paramètres communs ($1..$5) d'une requête paginée
func pageArgs(window shareddomain.Window, after *domain.Cursor, limit int) []interface{} {
	var until sql.NullTime
	if u, ok := window.Until(); ok {
		until = sql.NullTime{Time: u, Valid: true}
	}
	var afterAt sql.NullTime
	var afterID int64
	if after != nil {
		afterAt = sql.NullTime{Time: after.CreatedAt, Valid: true}
		afterID = after.ID
	}
	return []interface{}{window.Since(), until, afterAt, afterID, limit}
}

// pageFilter filtre de fenêtre et de curseur pour l'alias de table donné
func pageFilter(alias string) string {
	return fmt.Sprintf(`%[1]s.created_at >= $1
		  AND ($2::timestamptz IS NULL OR %[1]s.created_at <= $2)
		  AND ($3::timestamptz IS NULL OR (%[1]s.created_at, %[1]s.id) > ($3::timestamptz, $4::bigint))
		ORDER BY %[1]s.created_at ASC, %[1]s.id ASC
		LIMIT $5`, alias)
}

// QueryOrders retourne les commandes créées dans la fenêtre, après le curseur
func (r *SourceQueryRepository) QueryOrders(ctx context.Context, window shareddomain.Window, after *domain.Cursor, limit int) ([]*domain.OrderRecord, error) {
	query := `
		SELECT o.id, o.customer_id, o.restaurant_id, o.status, o.total_amount,
		       (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count,
		       o.created_at, o.delivered_at, c.code, c.discount_percent
		FROM orders o
		LEFT JOIN coupons c ON c.id = o.coupon_id
		WHERE ` + pageFilter("o")

	rows, err := r.Query(ctx, query, pageArgs(window, after, limit)...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.OrderRecord, 0, limit)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

// scanOrder scanne une ligne de résultat en OrderRecord
func scanOrder(rows *sql.Rows) (*domain.OrderRecord, error) {
	var (
		id           int64
		userID       sql.NullInt64
		restaurantID sql.NullInt64
		status       string
		totalAmount  decimal.NullDecimal
		itemCount    int
		createdAt    time.Time
		deliveredAt  sql.NullTime
		couponCode   sql.NullString
		couponPct    decimal.NullDecimal
	)

	if err := rows.Scan(&id, &userID, &restaurantID, &status, &totalAmount,
		&itemCount, &createdAt, &deliveredAt, &couponCode, &couponPct); err != nil {
		return nil, err
	}

	order := &domain.OrderRecord{
		ID:          id,
		Status:      domain.OrderStatus(status),
		TotalAmount: totalAmount,
		ItemCount:   itemCount,
		CreatedAt:   createdAt.UTC(),
	}
	if userID.Valid {
		uid := userID.Int64
		order.UserID = &uid
	}
	if restaurantID.Valid {
		rid := restaurantID.Int64
		order.RestaurantID = &rid
	}
	if deliveredAt.Valid {
		d := deliveredAt.Time.UTC()
		order.DeliveredAt = &d
	}
	if couponCode.Valid && couponPct.Valid {
		order.Coupon = &domain.CouponContext{
			Code:            couponCode.String,
			DiscountPercent: couponPct.Decimal,
		}
	}

	return order, nil
}

// QueryUsers retourne les utilisateurs créés dans la fenêtre, après le curseur
func (r *SourceQueryRepository) QueryUsers(ctx context.Context, window shareddomain.Window, after *domain.Cursor, limit int) ([]*domain.UserRecord, error) {
	query := `
		SELECT u.id, u.username, u.role, u.active, u.created_at
		FROM users u
		WHERE ` + pageFilter("u")

	rows, err := r.Query(ctx, query, pageArgs(window, after, limit)...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.UserRecord, 0, limit)
	for rows.Next() {
		var (
			u    domain.UserRecord
			role sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Username, &role, &u.Active, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Role = role.String
		u.CreatedAt = u.CreatedAt.UTC()
		users = append(users, &u)
	}

	return users, rows.Err()
}

// QueryRestaurants retourne les restaurants créés dans la fenêtre, après le curseur
func (r *SourceQueryRepository) QueryRestaurants(ctx context.Context, window shareddomain.Window, after *domain.Cursor, limit int) ([]*domain.RestaurantRecord, error) {
	query := `
		SELECT r.id, r.name, r.category, r.city, r.created_at
		FROM restaurants r
		WHERE ` + pageFilter("r")

	rows, err := r.Query(ctx, query, pageArgs(window, after, limit)...)
	if err != nil {
		return nil, fmt.Errorf("query restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := make([]*domain.RestaurantRecord, 0, limit)
	for rows.Next() {
		var (
			rest     domain.RestaurantRecord
			name     sql.NullString
			category sql.NullString
			city     sql.NullString
		)
		if err := rows.Scan(&rest.ID, &name, &category, &city, &rest.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		rest.Name = name.String
		rest.Category = category.String
		rest.City = city.String
		rest.CreatedAt = rest.CreatedAt.UTC()
		restaurants = append(restaurants, &rest)
	}

	return restaurants, rows.Err()
}

// QueryPayments retourne les transactions créées dans la fenêtre, après le curseur
func (r *SourceQueryRepository) QueryPayments(ctx context.Context, window shareddomain.Window, after *domain.Cursor, limit int) ([]*domain.PaymentRecord, error) {
	query := `
		SELECT p.id, p.order_id, p.amount, p.payment_method, p.status, p.created_at
		FROM payment_transactions p
		WHERE ` + pageFilter("p")

	rows, err := r.Query(ctx, query, pageArgs(window, after, limit)...)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	payments := make([]*domain.PaymentRecord, 0, limit)
	for rows.Next() {
		var (
			p       domain.PaymentRecord
			orderID sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &orderID, &p.Amount, &p.Method, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		if orderID.Valid {
			oid := orderID.Int64
			p.OrderID = &oid
		}
		p.CreatedAt = p.CreatedAt.UTC()
		payments = append(payments, &p)
	}

	return payments, rows.Err()
}

// OrderStatsByUsers agrégats de commandes d'un lot d'utilisateurs en une seule requête.
// Un utilisateur sans commande reçoit des agrégats nuls.
func (r *SourceQueryRepository) OrderStatsByUsers(ctx context.Context, userIDs []int64) (map[int64]domain.UserOrderStats, error) {
	stats := make(map[int64]domain.UserOrderStats, len(userIDs))
	if len(userIDs) == 0 {
		return stats, nil
	}
	for _, id := range userIDs {
		stats[id] = domain.UserOrderStats{TotalSpent: decimal.Zero}
	}

	query := `
		SELECT customer_id,
		       COUNT(*) AS total_orders,
		       COALESCE(SUM(total_amount) FILTER (WHERE status = $2), 0) AS total_spent,
		       MAX(created_at) AS last_order_at
		FROM orders
		WHERE customer_id = ANY($1)
		GROUP BY customer_id
	`

	rows, err := r.Query(ctx, query, pq.Array(userIDs), string(domain.OrderStatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("order stats for %d users: %w", len(userIDs), err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID    int64
			s         domain.UserOrderStats
			lastOrder sql.NullTime
		)
		if err := rows.Scan(&userID, &s.TotalOrders, &s.TotalSpent, &lastOrder); err != nil {
			return nil, fmt.Errorf("scan user order stats: %w", err)
		}
		if lastOrder.Valid {
			t := lastOrder.Time.UTC()
			s.LastOrderAt = &t
		}
		stats[userID] = s
	}

	return stats, rows.Err()
}

// OrderCountsByRestaurants nombre de commandes d'un lot de restaurants
func (r *SourceQueryRepository) OrderCountsByRestaurants(ctx context.Context, restaurantIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(restaurantIDs))
	if len(restaurantIDs) == 0 {
		return counts, nil
	}
	for _, id := range restaurantIDs {
		counts[id] = 0
	}

	query := `
		SELECT restaurant_id, COUNT(*)
		FROM orders
		WHERE restaurant_id = ANY($1)
		GROUP BY restaurant_id
	`

	rows, err := r.Query(ctx, query, pq.Array(restaurantIDs))
	if err != nil {
		return nil, fmt.Errorf("order counts for %d restaurants: %w", len(restaurantIDs), err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scan restaurant order count: %w", err)
		}
		counts[id] = count
	}

	return counts, rows.Err()
}
