package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntityType représente un type d'entité source suivi par le pipeline
type EntityType string

const (
	EntityOrders      EntityType = "orders"
	EntityUsers       EntityType = "users"
	EntityRestaurants EntityType = "restaurants"
	EntityPayments    EntityType = "payments"
)

// AllEntityTypes retourne les types d'entité dans l'ordre de traitement par défaut
func AllEntityTypes() []EntityType {
	return []EntityType{EntityOrders, EntityUsers, EntityRestaurants, EntityPayments}
}

// ParseEntityType convertit un nom (insensible à la casse) en EntityType
func ParseEntityType(name string) (EntityType, error) {
	candidate := EntityType(strings.ToLower(strings.TrimSpace(name)))
	for _, et := range AllEntityTypes() {
		if et == candidate {
			return et, nil
		}
	}
	return "", fmt.Errorf("unknown entity type %q", name)
}

// ParseEntityTypes convertit une liste séparée par des virgules, sans doublons
func ParseEntityTypes(list string) ([]EntityType, error) {
	if strings.TrimSpace(list) == "" || strings.EqualFold(strings.TrimSpace(list), "all") {
		return AllEntityTypes(), nil
	}
	seen := make(map[EntityType]bool)
	var out []EntityType
	for _, part := range strings.Split(list, ",") {
		et, err := ParseEntityType(part)
		if err != nil {
			return nil, err
		}
		if !seen[et] {
			seen[et] = true
			out = append(out, et)
		}
	}
	return out, nil
}

// Record enregistrement source en lecture seule
type Record interface {
	Entity() EntityType
	Identity() int64
	Timestamp() time.Time
}

// RecordKey identité lisible d'un enregistrement, utilisée dans les logs
func RecordKey(r Record) string {
	return fmt.Sprintf("%s:%d", r.Entity(), r.Identity())
}

// Cursor position de pagination (created_at, id)
type Cursor struct {
	CreatedAt time.Time
	ID        int64
}

// CursorOf retourne la position d'un enregistrement
func CursorOf(r Record) Cursor {
	return Cursor{CreatedAt: r.Timestamp(), ID: r.Identity()}
}

// OrderStatus représente le statut d'une commande
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// CouponContext remise appliquée à une commande
type CouponContext struct {
	Code            string
	DiscountPercent decimal.Decimal
}

// OrderRecord commande source. Les relations ne sont portées que par leurs IDs.
type OrderRecord struct {
	ID           int64
	UserID       *int64
	RestaurantID *int64
	Status       OrderStatus
	TotalAmount  decimal.NullDecimal
	ItemCount    int
	CreatedAt    time.Time
	DeliveredAt  *time.Time
	Coupon       *CouponContext
}

func (o *OrderRecord) Entity() EntityType { return EntityOrders }

func (o *OrderRecord) Identity() int64 {
	if o == nil {
		return 0
	}
	return o.ID
}

func (o *OrderRecord) Timestamp() time.Time {
	if o == nil {
		return time.Time{}
	}
	return o.CreatedAt
}

// UserRecord utilisateur source
type UserRecord struct {
	ID        int64
	Username  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

func (u *UserRecord) Entity() EntityType { return EntityUsers }

func (u *UserRecord) Identity() int64 {
	if u == nil {
		return 0
	}
	return u.ID
}

func (u *UserRecord) Timestamp() time.Time {
	if u == nil {
		return time.Time{}
	}
	return u.CreatedAt
}

// RestaurantRecord restaurant source
type RestaurantRecord struct {
	ID        int64
	Name      string
	Category  string
	City      string
	CreatedAt time.Time
}

func (r *RestaurantRecord) Entity() EntityType { return EntityRestaurants }

func (r *RestaurantRecord) Identity() int64 {
	if r == nil {
		return 0
	}
	return r.ID
}

func (r *RestaurantRecord) Timestamp() time.Time {
	if r == nil {
		return time.Time{}
	}
	return r.CreatedAt
}

// PaymentRecord transaction de paiement source
type PaymentRecord struct {
	ID        int64
	OrderID   *int64
	Amount    decimal.NullDecimal
	Method    string
	Status    string
	CreatedAt time.Time
}

func (p *PaymentRecord) Entity() EntityType { return EntityPayments }

func (p *PaymentRecord) Identity() int64 {
	if p == nil {
		return 0
	}
	return p.ID
}

func (p *PaymentRecord) Timestamp() time.Time {
	if p == nil {
		return time.Time{}
	}
	return p.CreatedAt
}

// UserOrderStats agrégats de commandes d'un utilisateur
type UserOrderStats struct {
	TotalOrders int64
	TotalSpent  decimal.Decimal
	LastOrderAt *time.Time
}
