package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultDecimals is the precision of the UOS core token.
	DefaultDecimals int32 = 4
	// DefaultSymbol is the UOS core token symbol.
	DefaultSymbol = "UOS"
)

// ErrInvalidAmount indicates that a numeric field is not a finite number.
var ErrInvalidAmount = errors.New("invalid amount")

// Token is an immutable fixed-point token amount.
type Token struct {
	amount   decimal.Decimal
	decimals int32
	symbol   string
}

// NewToken builds a Token from a raw chain value.
//
// A value containing a decimal point is read as whole units ("12.5" is 12.5 UOS).
// An integer-looking value without a decimal point is read as an amount already
// scaled by 10^decimals ("125000" is 12.5 UOS). Chain tables deliver balances as
// scaled integers while get_account and score data deliver decimals, and both go
// through here, so do not collapse the two cases.
//
// EOSIO asset strings such as "12.5000 UOS" are accepted; only the numeric field is read.
func NewToken(raw string, decimals int32, symbol string) (Token, error) {
	if decimals < 0 {
		return Token{}, fmt.Errorf("%w: negative precision %d", ErrInvalidAmount, decimals)
	}

	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Token{}, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	num := fields[0]

	d, err := decimal.NewFromString(num)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	if !strings.Contains(num, ".") && d.IsInteger() {
		d = d.Shift(-decimals)
	}

	return Token{amount: d, decimals: decimals, symbol: symbol}, nil
}

// ParseToken is NewToken with the UOS defaults.
func ParseToken(raw string) (Token, error) {
	return NewToken(raw, DefaultDecimals, DefaultSymbol)
}

// NewZeroToken returns a zero amount with the given precision and symbol.
func NewZeroToken(decimals int32, symbol string) Token {
	return Token{amount: decimal.Zero, decimals: decimals, symbol: symbol}
}

// ZeroToken returns a zero UOS amount.
func ZeroToken() Token {
	return NewZeroToken(DefaultDecimals, DefaultSymbol)
}

// TokenFromDecimal wraps a decimal amount expressed in whole units.
func TokenFromDecimal(d decimal.Decimal, decimals int32, symbol string) Token {
	return Token{amount: d, decimals: decimals, symbol: symbol}
}

// Decimal returns the amount in whole units.
func (t Token) Decimal() decimal.Decimal { return t.amount }

// Decimals returns the number of fractional digits used for display.
func (t Token) Decimals() int32 { return t.decimals }

// Symbol returns the unit symbol.
func (t Token) Symbol() string { return t.symbol }

// IsPositive reports whether the amount is strictly greater than zero.
func (t Token) IsPositive() bool { return t.amount.IsPositive() }

// IsZero reports whether the amount is zero.
func (t Token) IsZero() bool { return t.amount.IsZero() }

// Equal compares amounts only.
func (t Token) Equal(other Token) bool { return t.amount.Equal(other.amount) }

// Sub subtracts other, keeping the receiver's precision and symbol. The result may be negative.
func (t Token) Sub(other Token) Token {
	return Token{amount: t.amount.Sub(other.amount), decimals: t.decimals, symbol: t.symbol}
}

// String renders the amount with exactly Decimals fractional digits followed by the symbol.
func (t Token) String() string {
	s := t.amount.StringFixed(t.decimals)
	if t.symbol == "" {
		return s
	}
	return s + " " + t.symbol
}

// MarshalJSON encodes the display string.
func (t Token) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}
