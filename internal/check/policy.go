package check

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Percent returns the percentage move from a to b: positive for a gain,
// negative for a loss.
func Percent(a, b decimal.Decimal) decimal.Decimal {
	return b.Div(a).Sub(one).Mul(hundred)
}

// CanClose decides whether closing at candidate is acceptable against the
// reference price under the configured thresholds (in percent, 0 = disabled).
//
// On a favorable or neutral move any profit is acceptable unless takeProfit
// demands a minimum gain. On an unfavorable move the position is only force
// closed when stopLoss is set and the loss magnitude is still within it;
// without a stop loss, losing positions are never force-closed.
//
// Prices must be positive; anything else is economically undefined and
// returns an error.
func CanClose(reference, candidate decimal.Decimal, takeProfit, stopLoss float64) (bool, error) {
	if reference.Sign() <= 0 || candidate.Sign() <= 0 {
		return false, fmt.Errorf("canClose: non-positive price (reference=%s candidate=%s)", reference, candidate)
	}
	if candidate.GreaterThanOrEqual(reference) {
		if takeProfit <= 0 {
			return true, nil
		}
		return Percent(reference, candidate).GreaterThanOrEqual(decimal.NewFromFloat(takeProfit)), nil
	}
	if stopLoss <= 0 {
		return false, nil
	}
	return Percent(candidate, reference).LessThanOrEqual(decimal.NewFromFloat(stopLoss)), nil
}
