package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestXLSXWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "balances.xlsx")
	w := NewXLSXWriter(path)

	at := time.Date(2026, 2, 24, 12, 0, 0, 0, time.UTC)
	if err := w.Write(context.Background(), testRows(t), at); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(balancesSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("balance rows = %d, want 3", len(rows))
	}
	if rows[1][0] != "aaaaccount12" || rows[2][1] != "bob" {
		t.Errorf("rows = %v", rows)
	}

	totals, err := f.GetRows(totalsSheet)
	if err != nil {
		t.Fatalf("GetRows totals: %v", err)
	}
	if len(totals) != 2 || totals[0][0] != "Date" || totals[1][0] != "24.02.2026" {
		t.Errorf("totals = %v", totals)
	}
}

func TestXLSXWriterReplacesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balances.xlsx")
	w := NewXLSXWriter(path)

	if err := w.Write(context.Background(), testRows(t), time.Now()); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if err := w.Write(context.Background(), nil, time.Now()); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(balancesSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows after empty export = %d, want header only", len(rows))
	}
}
