package infrastructure

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirpoori99/food-ordering-project-sub008/internal/analytics/domain"
)

// OrderFactRow ligne de la table fact_orders
type OrderFactRow struct {
	OrderID                 int64               `gorm:"column:order_id;primaryKey;autoIncrement:false"`
	UserID                  int64               `gorm:"column:user_id;index"`
	RestaurantID            int64               `gorm:"column:restaurant_id;index"`
	OrderedAt               time.Time           `gorm:"column:ordered_at;index"`
	Status                  string              `gorm:"column:status;size:32"`
	TotalAmount             decimal.NullDecimal `gorm:"column:total_amount;type:decimal(20,4)"`
	TaxAmount               decimal.NullDecimal `gorm:"column:tax_amount;type:decimal(20,4)"`
	DeliveryFee             decimal.Decimal     `gorm:"column:delivery_fee;type:decimal(20,4);not null"`
	DiscountAmount          decimal.Decimal     `gorm:"column:discount_amount;type:decimal(20,4);not null"`
	NetAmount               decimal.NullDecimal `gorm:"column:net_amount;type:decimal(20,4)"`
	HourOfDay               int                 `gorm:"column:hour_of_day"`
	DayOfWeek               int                 `gorm:"column:day_of_week"`
	Month                   int                 `gorm:"column:month"`
	Year                    int                 `gorm:"column:year"`
	DeliveryDurationMinutes *int64              `gorm:"column:delivery_duration_minutes"`
	ItemCount               int                 `gorm:"column:item_count"`
	ValueCategory           string              `gorm:"column:value_category;size:16"`
	LoadedAt                time.Time           `gorm:"column:loaded_at"`
}

func (OrderFactRow) TableName() string { return "fact_orders" }

// UserFactRow ligne de la table fact_users
type UserFactRow struct {
	UserID            int64               `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	Role              string              `gorm:"column:role;size:32"`
	RegisteredAt      time.Time           `gorm:"column:registered_at"`
	Active            bool                `gorm:"column:active"`
	TotalOrders       int64               `gorm:"column:total_orders"`
	TotalSpent        decimal.Decimal     `gorm:"column:total_spent;type:decimal(20,4);not null"`
	AverageOrderValue decimal.NullDecimal `gorm:"column:average_order_value;type:decimal(20,4)"`
	LastOrderAt       *time.Time          `gorm:"column:last_order_at"`
	Segment           string              `gorm:"column:segment;size:16"`
	LoadedAt          time.Time           `gorm:"column:loaded_at"`
}

func (UserFactRow) TableName() string { return "fact_users" }

// RestaurantFactRow ligne de la table fact_restaurants
type RestaurantFactRow struct {
	RestaurantID int64     `gorm:"column:restaurant_id;primaryKey;autoIncrement:false"`
	Name         string    `gorm:"column:name"`
	Category     string    `gorm:"column:category"`
	City         string    `gorm:"column:city"`
	RegisteredAt time.Time `gorm:"column:registered_at"`
	TotalOrders  int64     `gorm:"column:total_orders"`
	LoadedAt     time.Time `gorm:"column:loaded_at"`
}

func (RestaurantFactRow) TableName() string { return "fact_restaurants" }

// PaymentFactRow ligne de la table fact_payments
type PaymentFactRow struct {
	TransactionID int64           `gorm:"column:transaction_id;primaryKey;autoIncrement:false"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(20,4);not null"`
	PaymentMethod string          `gorm:"column:payment_method;size:32"`
	Status        string          `gorm:"column:status;size:32"`
	TransactedAt  time.Time       `gorm:"column:transacted_at;index"`
	LoadedAt      time.Time       `gorm:"column:loaded_at"`
}

func (PaymentFactRow) TableName() string { return "fact_payments" }

// WatermarkRow ligne de la table etl_watermarks
type WatermarkRow struct {
	EntityType      string    `gorm:"column:entity_type;primaryKey;size:32"`
	LastExtractedAt time.Time `gorm:"column:last_extracted_at;not null"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (WatermarkRow) TableName() string { return "etl_watermarks" }

func newOrderFactRow(f domain.OrderFact, loadedAt time.Time) OrderFactRow {
	return OrderFactRow{
		OrderID:                 f.OrderID,
		UserID:                  f.UserID,
		RestaurantID:            f.RestaurantID,
		OrderedAt:               f.OrderedAt.UTC(),
		Status:                  f.Status,
		TotalAmount:             f.TotalAmount,
		TaxAmount:               f.TaxAmount,
		DeliveryFee:             f.DeliveryFee,
		DiscountAmount:          f.DiscountAmount,
		NetAmount:               f.NetAmount,
		HourOfDay:               f.HourOfDay,
		DayOfWeek:               f.DayOfWeek,
		Month:                   f.Month,
		Year:                    f.Year,
		DeliveryDurationMinutes: f.DeliveryDurationMinutes,
		ItemCount:               f.ItemCount,
		ValueCategory:           string(f.ValueCategory),
		LoadedAt:                loadedAt,
	}
}

func (r OrderFactRow) toFact() domain.OrderFact {
	return domain.OrderFact{
		OrderID:                 r.OrderID,
		UserID:                  r.UserID,
		RestaurantID:            r.RestaurantID,
		OrderedAt:               r.OrderedAt.UTC(),
		Status:                  r.Status,
		TotalAmount:             r.TotalAmount,
		TaxAmount:               r.TaxAmount,
		DeliveryFee:             r.DeliveryFee,
		DiscountAmount:          r.DiscountAmount,
		NetAmount:               r.NetAmount,
		HourOfDay:               r.HourOfDay,
		DayOfWeek:               r.DayOfWeek,
		Month:                   r.Month,
		Year:                    r.Year,
		DeliveryDurationMinutes: r.DeliveryDurationMinutes,
		ItemCount:               r.ItemCount,
		ValueCategory:           domain.ValueCategory(r.ValueCategory),
	}
}

func newUserFactRow(f domain.UserFact, loadedAt time.Time) UserFactRow {
	var last *time.Time
	if f.LastOrderAt != nil {
		t := f.LastOrderAt.UTC()
		last = &t
	}
	return UserFactRow{
		UserID:            f.UserID,
		Role:              f.Role,
		RegisteredAt:      f.RegisteredAt.UTC(),
		Active:            f.Active,
		TotalOrders:       f.TotalOrders,
		TotalSpent:        f.TotalSpent,
		AverageOrderValue: f.AverageOrderValue,
		LastOrderAt:       last,
		Segment:           string(f.Segment),
		LoadedAt:          loadedAt,
	}
}

func newRestaurantFactRow(f domain.RestaurantFact, loadedAt time.Time) RestaurantFactRow {
	return RestaurantFactRow{
		RestaurantID: f.RestaurantID,
		Name:         f.Name,
		Category:     f.Category,
		City:         f.City,
		RegisteredAt: f.RegisteredAt.UTC(),
		TotalOrders:  f.TotalOrders,
		LoadedAt:     loadedAt,
	}
}

func newPaymentFactRow(f domain.PaymentFact, loadedAt time.Time) PaymentFactRow {
	return PaymentFactRow{
		TransactionID: f.TransactionID,
		Amount:        f.Amount,
		PaymentMethod: f.PaymentMethod,
		Status:        f.Status,
		TransactedAt:  f.TransactedAt.UTC(),
		LoadedAt:      loadedAt,
	}
}
