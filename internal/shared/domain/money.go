package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Money représente une valeur monétaire (rials) avec garanties d'invariants
type Money struct {
	amount decimal.Decimal
}

// NewMoney crée une nouvelle instance de Money avec validation
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errors.New("amount cannot be negative")
	}
	return Money{amount: amount}, nil
}

// Amount retourne le montant
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Multiply multiplie le montant par un facteur, arrondi au centime
func (m Money) Multiply(factor decimal.Decimal) (Money, error) {
	if factor.IsNegative() {
		return Money{}, errors.New("multiplication factor cannot be negative")
	}
	return Money{amount: m.amount.Mul(factor).Round(2)}, nil
}

// Percent retourne pct% du montant
func (m Money) Percent(pct decimal.Decimal) (Money, error) {
	return m.Multiply(pct.Div(decimal.NewFromInt(100)))
}

// Divide divise le montant en n parts égales (moyenne)
func (m Money) Divide(n int64) (Money, error) {
	if n <= 0 {
		return Money{}, errors.New("divisor must be positive")
	}
	return Money{amount: m.amount.Div(decimal.NewFromInt(n)).Round(2)}, nil
}
