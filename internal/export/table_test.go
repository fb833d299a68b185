package export

import (
	"testing"
	"time"

	"github.com/uoscommunity/scorebot/internal/domain"
)

func testRows(t *testing.T) []Row {
	t.Helper()
	mk := func(account, tg, liquid, locked string) Row {
		r := domain.NewBalanceReport(account)
		var err error
		if r.Liquid, err = domain.ParseToken(liquid); err != nil {
			t.Fatal(err)
		}
		if r.TimeLocked, err = domain.ParseToken(locked); err != nil {
			t.Fatal(err)
		}
		return Row{TelegramName: tg, Report: r}
	}
	return []Row{
		mk("aaaaccount12", "alice", "12.5 UOS", "1000000"),
		mk("bbbaccount12", "bob", "0.25", "0"),
	}
}

func TestBuildBalances(t *testing.T) {
	at := time.Date(2026, 2, 24, 12, 30, 0, 0, time.UTC)
	data := buildBalances(testRows(t), at)

	if len(data) != 3 {
		t.Fatalf("rows = %d, want 3", len(data))
	}
	header := data[0]
	if len(header) != 10 || header[0] != "Account" || header[2] != "Liquid" || header[9] != "Generated At" {
		t.Errorf("header = %v", header)
	}

	first := data[1]
	if first[0] != "aaaaccount12" || first[1] != "alice" {
		t.Errorf("first row identity = %v", first[:2])
	}
	if v, ok := first[2].(float64); !ok || v != 12.5 {
		t.Errorf("liquid = %v", first[2])
	}
	if v, ok := first[5].(float64); !ok || v != 100 {
		t.Errorf("time locked = %v", first[5])
	}
	if first[9] != "2026-02-24 12:30:00" {
		t.Errorf("generated at = %v", first[9])
	}
}

func TestBuildTotals(t *testing.T) {
	at := time.Date(2026, 2, 24, 12, 0, 0, 0, time.UTC)
	header, data := buildTotals(testRows(t), at)

	if len(header) != 9 || len(data) != 9 {
		t.Fatalf("len(header) = %d, len(data) = %d, want 9", len(header), len(data))
	}
	if data[0] != "24.02.2026" {
		t.Errorf("date = %v", data[0])
	}
	if v, ok := data[1].(float64); !ok || v != 2 {
		t.Errorf("accounts = %v", data[1])
	}
	if v, ok := data[2].(float64); !ok || v != 12.75 {
		t.Errorf("liquid total = %v", data[2])
	}
	if v, ok := data[5].(float64); !ok || v != 100 {
		t.Errorf("time locked total = %v", data[5])
	}
}

func TestBuildTotalsEmpty(t *testing.T) {
	_, data := buildTotals(nil, time.Now())
	for i, v := range data[1:] {
		if f, ok := v.(float64); !ok || f != 0 {
			t.Errorf("column %d = %v, want 0", i+1, v)
		}
	}
}
