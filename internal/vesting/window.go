package vesting

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidConfiguration indicates a vesting window that can never produce a valid schedule.
var ErrInvalidConfiguration = errors.New("invalid vesting configuration")

// Window is the linear unlock period shared by the time-locked and activity-locked contracts.
// It is built once at startup and only read afterwards.
type Window struct {
	Start              time.Time
	End                time.Time
	EmissionMultiplier decimal.Decimal
}

// NewWindow validates and returns a Window.
func NewWindow(start, end time.Time, emissionMultiplier decimal.Decimal) (Window, error) {
	if start.IsZero() || end.IsZero() {
		return Window{}, fmt.Errorf("%w: start and end are required", ErrInvalidConfiguration)
	}
	if !end.After(start) {
		return Window{}, fmt.Errorf("%w: end %s is not after start %s",
			ErrInvalidConfiguration, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	if emissionMultiplier.IsNegative() {
		return Window{}, fmt.Errorf("%w: negative emission multiplier %s", ErrInvalidConfiguration, emissionMultiplier)
	}
	return Window{Start: start, End: end, EmissionMultiplier: emissionMultiplier}, nil
}

// Span returns the length of the window.
func (w Window) Span() time.Duration {
	return w.End.Sub(w.Start)
}

// ElapsedFraction returns (now - start) / (end - start). It is negative before
// the start and greater than one after the end.
func (w Window) ElapsedFraction(now time.Time) decimal.Decimal {
	span := w.Span()
	if span <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(now.Sub(w.Start))).Div(decimal.NewFromInt(int64(span)))
}
