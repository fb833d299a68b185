package vesting

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/uoscommunity/scorebot/internal/domain"
)

const day = 24 * time.Hour

var t0 = time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)

func mustToken(t *testing.T, s string) domain.Token {
	t.Helper()
	tok, err := domain.ParseToken(s)
	if err != nil {
		t.Fatalf("ParseToken(%q): %v", s, err)
	}
	return tok
}

func testWindow(t *testing.T, multiplier string) Window {
	t.Helper()
	w, err := NewWindow(t0, t0.Add(100*day), decimal.RequireFromString(multiplier))
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	return w
}

func TestNewWindowRejectsEmptyOrInvertedRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		multiplier string
	}{
		{"end equals start", t0, t0, "1"},
		{"end before start", t0, t0.Add(-day), "1"},
		{"missing start", time.Time{}, t0, "1"},
		{"missing end", t0, time.Time{}, "1"},
		{"negative multiplier", t0, t0.Add(day), "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWindow(tt.start, tt.end, decimal.RequireFromString(tt.multiplier))
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("NewWindow() error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestElapsedFraction(t *testing.T) {
	w := testWindow(t, "1")
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"before start", t0.Add(-10 * day), "-0.1"},
		{"at start", t0, "0"},
		{"halfway", t0.Add(50 * day), "0.5"},
		{"at end", t0.Add(100 * day), "1"},
		{"past end", t0.Add(200 * day), "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.ElapsedFraction(tt.now)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ElapsedFraction() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTimeLockedAvailable(t *testing.T) {
	w := testWindow(t, "1")
	deposit := Deposit{Total: mustToken(t, "100.0000"), Withdrawn: mustToken(t, "0")}

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"scenario A: halfway", t0.Add(50 * day), "50.0000 UOS"},
		{"scenario B: before start", t0.Add(-day), "0.0000 UOS"},
		{"scenario C: past end", t0.Add(200 * day), "100.0000 UOS"},
		{"at start", t0, "0.0000 UOS"},
		{"at end", t0.Add(100 * day), "100.0000 UOS"},
		{"one third rounds", t0.Add(100 * day / 3), "33.3333 UOS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimeLockedAvailable(deposit, w, tt.now)
			if got.String() != tt.want {
				t.Errorf("TimeLockedAvailable() = %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestTimeLockedAvailableSubtractsWithdrawn(t *testing.T) {
	w := testWindow(t, "1")
	deposit := Deposit{Total: mustToken(t, "100.0000"), Withdrawn: mustToken(t, "30.0000")}

	if got := TimeLockedAvailable(deposit, w, t0.Add(50*day)); got.String() != "20.0000 UOS" {
		t.Errorf("halfway = %q, want 20.0000 UOS", got.String())
	}
	if got := TimeLockedAvailable(deposit, w, t0.Add(20*day)); !got.IsZero() {
		t.Errorf("accrued below withdrawn = %q, want zero", got.String())
	}
	if got := TimeLockedAvailable(deposit, w, t0.Add(300*day)); got.String() != "70.0000 UOS" {
		t.Errorf("past end = %q, want 70.0000 UOS", got.String())
	}
}

func TestTimeLockedAvailableScaledIntegers(t *testing.T) {
	w := testWindow(t, "1")
	// chain rows carry scaled integers
	deposit := Deposit{Total: mustToken(t, "1000000"), Withdrawn: mustToken(t, "100000")}

	got := TimeLockedAvailable(deposit, w, t0.Add(50*day))
	if got.String() != "40.0000 UOS" {
		t.Errorf("TimeLockedAvailable() = %q, want 40.0000 UOS", got.String())
	}
}

func TestTimeLockedAvailableOverWithdrawnClampsToZero(t *testing.T) {
	w := testWindow(t, "1")
	deposit := Deposit{Total: mustToken(t, "10.0000"), Withdrawn: mustToken(t, "15.0000")}

	for _, now := range []time.Time{t0.Add(-day), t0.Add(50 * day), t0.Add(500 * day)} {
		if got := TimeLockedAvailable(deposit, w, now); !got.IsZero() {
			t.Errorf("at %s = %q, want zero", now, got.String())
		}
	}
}

func TestTimeLockedAvailableBoundsAndMonotonic(t *testing.T) {
	w := testWindow(t, "1")
	deposit := Deposit{Total: mustToken(t, "987.6543"), Withdrawn: mustToken(t, "123.4567")}
	remaining := deposit.Total.Decimal().Sub(deposit.Withdrawn.Decimal())

	prev := decimal.Zero
	for h := -48; h <= 110*24; h += 7 {
		now := t0.Add(time.Duration(h) * time.Hour)
		got := TimeLockedAvailable(deposit, w, now).Decimal()

		if got.IsNegative() {
			t.Fatalf("at %s available is negative: %s", now, got)
		}
		if got.GreaterThan(remaining) {
			t.Fatalf("at %s available %s exceeds remaining %s", now, got, remaining)
		}
		if got.LessThan(prev) {
			t.Fatalf("at %s available decreased: %s < %s", now, got, prev)
		}
		prev = got
	}
}

func TestActivityLockedAvailable(t *testing.T) {
	w := testWindow(t, "5")
	total := mustToken(t, "100.0000")
	zero := mustToken(t, "0")

	emission := func(s string) *domain.Token {
		tok := mustToken(t, s)
		return &tok
	}

	tests := []struct {
		name    string
		deposit Deposit
		now     time.Time
		want    string
	}{
		{
			name:    "scenario D: tie between time and emission",
			deposit: Deposit{Total: total, Withdrawn: zero, Emission: emission("10.0000")},
			now:     t0.Add(50 * day),
			want:    "50.0000 UOS",
		},
		{
			name:    "scenario E: no emission row",
			deposit: Deposit{Total: total, Withdrawn: zero},
			now:     t0.Add(50 * day),
			want:    "0.0000 UOS",
		},
		{
			name:    "no emission row past end",
			deposit: Deposit{Total: total, Withdrawn: zero},
			now:     t0.Add(500 * day),
			want:    "0.0000 UOS",
		},
		{
			name:    "emission caps time",
			deposit: Deposit{Total: total, Withdrawn: zero, Emission: emission("4.0000")},
			now:     t0.Add(90 * day),
			want:    "20.0000 UOS",
		},
		{
			name:    "time caps emission",
			deposit: Deposit{Total: total, Withdrawn: zero, Emission: emission("100.0000")},
			now:     t0.Add(25 * day),
			want:    "25.0000 UOS",
		},
		{
			name:    "withdrawn subtracted after cap",
			deposit: Deposit{Total: total, Withdrawn: mustToken(t, "15.0000"), Emission: emission("4.0000")},
			now:     t0.Add(90 * day),
			want:    "5.0000 UOS",
		},
		{
			name:    "before start",
			deposit: Deposit{Total: total, Withdrawn: zero, Emission: emission("100.0000")},
			now:     t0.Add(-day),
			want:    "0.0000 UOS",
		},
		{
			name:    "large emission past end limited to remaining",
			deposit: Deposit{Total: total, Withdrawn: mustToken(t, "10.0000"), Emission: emission("1000.0000")},
			now:     t0.Add(500 * day),
			want:    "90.0000 UOS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActivityLockedAvailable(tt.deposit, w, tt.now)
			if got.String() != tt.want {
				t.Errorf("ActivityLockedAvailable() = %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestActivityLockedNeverExceedsEmissionCap(t *testing.T) {
	w := testWindow(t, "3")
	em := mustToken(t, "7.5000")
	deposit := Deposit{Total: mustToken(t, "500.0000"), Withdrawn: mustToken(t, "2.0000"), Emission: &em}
	limit := em.Decimal().Mul(w.EmissionMultiplier).Sub(deposit.Withdrawn.Decimal())

	for d := -5; d <= 150; d += 5 {
		now := t0.Add(time.Duration(d) * day)
		got := ActivityLockedAvailable(deposit, w, now).Decimal()
		if got.GreaterThan(limit) {
			t.Fatalf("day %d: available %s exceeds emission cap %s", d, got, limit)
		}
		if got.IsNegative() {
			t.Fatalf("day %d: available %s is negative", d, got)
		}
	}
}

func TestAvailableUsesWithdrawnPrecision(t *testing.T) {
	w := testWindow(t, "1")
	total, _ := domain.NewToken("100.00", 2, "EOS")
	withdrawn, _ := domain.NewToken("0", 2, "EOS")

	got := TimeLockedAvailable(Deposit{Total: total, Withdrawn: withdrawn}, w, t0.Add(100*day/3))
	if got.String() != "33.33 EOS" {
		t.Errorf("TimeLockedAvailable() = %q, want 33.33 EOS", got.String())
	}
}
