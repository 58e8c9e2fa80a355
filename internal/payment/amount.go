package payment

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ToMinorUnits converts a major-unit amount to the currency's smallest unit
// (INR 1300.00 -> 130000 paise). Amounts with more precision than the currency
// allows are rejected rather than rounded.
func ToMinorUnits(amount decimal.Decimal, cur currency.Unit) (int64, error) {
	scale, _ := currency.Standard.Rounding(cur)
	minor := amount.Shift(int32(scale))
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimals for %s", amount, scale, cur)
	}
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, fmt.Errorf("amount %s %s does not fit in minor units", amount, cur)
	}
	return minor.IntPart(), nil
}

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64, cur currency.Unit) decimal.Decimal {
	scale, _ := currency.Standard.Rounding(cur)
	return decimal.New(minor, -int32(scale))
}
