package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Round2 rounds to the two-decimal currency unit, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Split divides a line amount between the platform and the vendor. The
// commission is the rounded share; the vendor earning is the remainder, so
// commission + earning always equals the amount exactly.
func Split(amount, rate decimal.Decimal) (commission, earning decimal.Decimal, err error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("commission rate %s outside [0,1]", rate)
	}
	commission = Round2(amount.Mul(rate))
	earning = amount.Sub(commission)
	return commission, earning, nil
}

// TaxOn applies a global percentage to a base amount, rounded to two decimals.
func TaxOn(base, percent decimal.Decimal) decimal.Decimal {
	return Round2(base.Mul(percent).Div(decimal.NewFromInt(100)))
}

// LineTotal multiplies a unit amount by a quantity.
func LineTotal(unit decimal.Decimal, qty int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}
