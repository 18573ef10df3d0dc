package valueobject

import (
	"github.com/shopspring/decimal"
)

// CentsPlaces is the number of decimal places stored for every amount
const CentsPlaces int32 = 2

var hundred = decimal.NewFromInt(100)

// RoundCents rounds half-up (away from zero) to cents. Every amount is passed
// through it before it is stored.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentsPlaces)
}

// Money is an immutable amount of pesos. The ledger keeps a single currency
// (MXN), so amounts carry no currency code.
type Money struct {
	amount decimal.Decimal
}

// NewMoneyMXN wraps an amount of pesos
func NewMoneyMXN(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// ZeroMXN returns zero pesos
func ZeroMXN() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Add returns the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub returns the difference, which may be negative
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// Times returns the amount multiplied by n, rounded to cents
func (m Money) Times(n int) Money {
	return Money{amount: RoundCents(m.amount.Mul(decimal.NewFromInt(int64(n))))}
}

// IncreaseByPercent returns the amount scaled by (1 + pct/100), rounded to cents
func (m Money) IncreaseByPercent(pct decimal.Decimal) Money {
	increment := m.amount.Mul(pct).Div(hundred)
	return Money{amount: RoundCents(m.amount.Add(increment))}
}

// Min returns the smaller of both amounts
func (m Money) Min(other Money) Money {
	if other.amount.LessThan(m.amount) {
		return other
	}
	return m
}

// NonNegative returns the amount, or zero when it is negative
func (m Money) NonNegative() Money {
	if m.amount.IsNegative() {
		return ZeroMXN()
	}
	return m
}

// PercentOf returns m x 100 / whole rounded half-up to two decimals, or zero
// when whole is not positive
func (m Money) PercentOf(whole Money) decimal.Decimal {
	if !whole.amount.IsPositive() {
		return decimal.Zero
	}
	return m.amount.Mul(hundred).Div(whole.amount).Round(2)
}

// String returns the amount with two decimals
func (m Money) String() string {
	return m.amount.StringFixed(CentsPlaces)
}
