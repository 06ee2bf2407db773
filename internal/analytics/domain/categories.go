package domain

import "github.com/shopspring/decimal"

// ValueCategory tranche de valeur d'une commande
type ValueCategory string

const (
	ValueLow     ValueCategory = "LOW"
	ValueMedium  ValueCategory = "MEDIUM"
	ValueHigh    ValueCategory = "HIGH"
	ValuePremium ValueCategory = "PREMIUM"
	ValueUnknown ValueCategory = "UNKNOWN"
)

var (
	mediumValueThreshold  = decimal.NewFromInt(50_000)
	highValueThreshold    = decimal.NewFromInt(150_000)
	premiumValueThreshold = decimal.NewFromInt(300_000)
)

// ClassifyOrderValue classe un montant; bornes basses incluses dans la tranche supérieure
func ClassifyOrderValue(amount decimal.NullDecimal) ValueCategory {
	if !amount.Valid {
		return ValueUnknown
	}
	switch {
	case amount.Decimal.LessThan(mediumValueThreshold):
		return ValueLow
	case amount.Decimal.LessThan(highValueThreshold):
		return ValueMedium
	case amount.Decimal.LessThan(premiumValueThreshold):
		return ValueHigh
	default:
		return ValuePremium
	}
}

// CustomerSegment segment client selon le nombre de commandes
type CustomerSegment string

const (
	SegmentNew        CustomerSegment = "NEW"
	SegmentOccasional CustomerSegment = "OCCASIONAL"
	SegmentRegular    CustomerSegment = "REGULAR"
	SegmentFrequent   CustomerSegment = "FREQUENT"
	SegmentVIP        CustomerSegment = "VIP"
)

// ClassifyCustomerSegment classe un client selon son nombre total de commandes
func ClassifyCustomerSegment(totalOrders int64) CustomerSegment {
	switch {
	case totalOrders <= 0:
		return SegmentNew
	case totalOrders < 5:
		return SegmentOccasional
	case totalOrders < 20:
		return SegmentRegular
	case totalOrders < 50:
		return SegmentFrequent
	default:
		return SegmentVIP
	}
}
