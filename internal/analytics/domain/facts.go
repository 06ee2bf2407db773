package domain

import (
	"time"

	"github.com/shopspring/decimal"

	sourcedomain "github.com/amirpoori99/food-ordering-project-sub008/internal/source/domain"
)

// Fact enregistrement analytique dénormalisé, immuable une fois produit
type Fact interface {
	EntityType() sourcedomain.EntityType
	// NaturalKey identité naturelle utilisée pour l'upsert
	NaturalKey() int64
}

// OrderFact fait analytique d'une commande
type OrderFact struct {
	OrderID                 int64
	UserID                  int64
	RestaurantID            int64
	OrderedAt               time.Time
	Status                  string
	TotalAmount             decimal.NullDecimal
	TaxAmount               decimal.NullDecimal
	DeliveryFee             decimal.Decimal
	DiscountAmount          decimal.Decimal
	NetAmount               decimal.NullDecimal
	HourOfDay               int
	DayOfWeek               int
	Month                   int
	Year                    int
	DeliveryDurationMinutes *int64
	ItemCount               int
	ValueCategory           ValueCategory
}

func (f OrderFact) EntityType() sourcedomain.EntityType { return sourcedomain.EntityOrders }
func (f OrderFact) NaturalKey() int64                   { return f.OrderID }

// UserFact fait analytique d'un utilisateur
type UserFact struct {
	UserID            int64
	Role              string
	RegisteredAt      time.Time
	Active            bool
	TotalOrders       int64
	TotalSpent        decimal.Decimal
	AverageOrderValue decimal.NullDecimal
	LastOrderAt       *time.Time
	Segment           CustomerSegment
}

func (f UserFact) EntityType() sourcedomain.EntityType { return sourcedomain.EntityUsers }
func (f UserFact) NaturalKey() int64                   { return f.UserID }

// RestaurantFact fait analytique d'un restaurant
type RestaurantFact struct {
	RestaurantID int64
	Name         string
	Category     string
	City         string
	RegisteredAt time.Time
	TotalOrders  int64
}

func (f RestaurantFact) EntityType() sourcedomain.EntityType { return sourcedomain.EntityRestaurants }
func (f RestaurantFact) NaturalKey() int64                   { return f.RestaurantID }

// PaymentFact fait analytique d'une transaction de paiement
type PaymentFact struct {
	TransactionID int64
	Amount        decimal.Decimal
	PaymentMethod string
	Status        string
	TransactedAt  time.Time
}

func (f PaymentFact) EntityType() sourcedomain.EntityType { return sourcedomain.EntityPayments }
func (f PaymentFact) NaturalKey() int64                   { return f.TransactionID }

// IsoWeekday jour de la semaine ISO-8601 (lundi = 1, dimanche = 7)
func IsoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
