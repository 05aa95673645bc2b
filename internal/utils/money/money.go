package money

import "github.com/shopspring/decimal"

// Epsilon is the tolerance below which two monetary amounts are treated as
// equal. It absorbs the rounding drift that two-decimal currency arithmetic
// accumulates across repeated allocations.
var Epsilon = decimal.NewFromFloat(0.01)

// Round normalizes an amount to two decimal places, half-up.
// Every amount that crosses a persistence or comparison boundary goes
// through this first.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// WithinEpsilon reports whether two amounts are equal within Epsilon.
func WithinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}

// IsNegligible reports whether an amount is zero for allocation purposes,
// i.e. at or below Epsilon.
func IsNegligible(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(Epsilon)
}
