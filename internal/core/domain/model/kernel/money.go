package kernel

import (
	"rental/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places monetary outputs are rounded to.
const MoneyPlaces = 2

// RoundMoney rounds to MoneyPlaces using round-half-away-from-zero
// (decimal.Round semantics). Apply it to outputs only, never to intermediate values.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// ValidateNonNegativeAmount returns an InvalidAmountError naming paramName when d < 0.
func ValidateNonNegativeAmount(paramName string, d decimal.Decimal) error {
	if d.IsNegative() {
		return errs.NewInvalidAmountError(paramName, d.String())
	}
	return nil
}

// ValidatePercentage checks that pct lies in [0, maxPct].
// Negative values are amount errors; values above maxPct are range errors.
func ValidatePercentage(paramName string, pct decimal.Decimal, maxPct decimal.Decimal) error {
	if err := ValidateNonNegativeAmount(paramName, pct); err != nil {
		return err
	}
	if pct.GreaterThan(maxPct) {
		return errs.NewValueIsOutOfRangeError(paramName, pct.String(), "0", maxPct.String())
	}
	return nil
}
