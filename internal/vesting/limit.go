package vesting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/uoscommunity/scorebot/internal/domain"
)

// Deposit is a vesting contract balance. Emission is only set for the
// activity-locked contract and nil when the emission row is unknown.
type Deposit struct {
	Total     domain.Token
	Withdrawn domain.Token
	Emission  *domain.Token
}

// TimeLockedAvailable returns how much of d can be withdrawn at now under linear vesting:
//
//	total * (now - start) / (end - start) - withdrawn
//
// clamped to [0, total - withdrawn].
func TimeLockedAvailable(d Deposit, w Window, now time.Time) domain.Token {
	return available(d, timeLimit(d.Total, w, now))
}

// ActivityLockedAvailable is TimeLockedAvailable with the accrued amount additionally
// capped by emission * multiplier. Without an emission row nothing is withdrawable.
func ActivityLockedAvailable(d Deposit, w Window, now time.Time) domain.Token {
	byTime := timeLimit(d.Total, w, now)

	byEmission := decimal.Zero
	if d.Emission != nil {
		byEmission = d.Emission.Decimal().Mul(w.EmissionMultiplier)
	}

	return available(d, decimal.Min(byTime, byEmission))
}

// timeLimit is total * elapsed / span, multiplied first so whole fractions stay exact.
func timeLimit(total domain.Token, w Window, now time.Time) decimal.Decimal {
	span := w.Span()
	if span <= 0 {
		return decimal.Zero
	}
	elapsed := decimal.NewFromInt(int64(now.Sub(w.Start)))
	return total.Decimal().Mul(elapsed).Div(decimal.NewFromInt(int64(span)))
}

func available(d Deposit, accrued decimal.Decimal) domain.Token {
	decimals := d.Withdrawn.Decimals()
	symbol := d.Withdrawn.Symbol()

	remaining := d.Total.Decimal().Sub(d.Withdrawn.Decimal())
	avail := decimal.Min(accrued.Sub(d.Withdrawn.Decimal()), remaining).Round(decimals)
	if !avail.IsPositive() {
		return domain.NewZeroToken(decimals, symbol)
	}
	return domain.TokenFromDecimal(avail, decimals, symbol)
}
