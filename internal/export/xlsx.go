package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter implements SheetWriter by writing an Excel workbook to a file.
// The file is replaced on every run.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates an XLSXWriter for path.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// Write builds the BALANCES and TOTALS sheets and saves the workbook.
func (w *XLSXWriter) Write(_ context.Context, rows []Row, at time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", balancesSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(totalsSheet); err != nil {
		return fmt.Errorf("creating %s sheet: %w", totalsSheet, err)
	}

	if err := writeSheet(f, balancesSheet, buildBalances(rows, at)); err != nil {
		return err
	}
	header, data := buildTotals(rows, at)
	if err := writeSheet(f, totalsSheet, [][]any{header, data}); err != nil {
		return err
	}

	if err := w.applyStyles(f, len(rows)); err != nil {
		return fmt.Errorf("styling workbook: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	// SaveAs infers the format from the extension, so the temporary name keeps it.
	tmp := filepath.Join(dir, ".tmp-"+filepath.Base(w.path))
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return fmt.Errorf("replacing %s: %w", w.path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, values [][]any) error {
	for i, row := range values {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func (w *XLSXWriter) applyStyles(f *excelize.File, dataRows int) error {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	amountFormat := "#,##0.0000"
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFormat})
	if err != nil {
		return err
	}

	firstAmount, _ := excelize.ColumnNumberToName(3)
	lastAmount, _ := excelize.ColumnNumberToName(2 + len(amountColumns))
	lastCol, _ := excelize.ColumnNumberToName(3 + len(amountColumns))

	for _, sheet := range []struct {
		name    string
		rows    int
		lastCol string
	}{
		{balancesSheet, dataRows, lastCol},
		{totalsSheet, 1, lastAmount},
	} {
		if err := f.SetCellStyle(sheet.name, "A1", sheet.lastCol+"1", headerStyle); err != nil {
			return err
		}
		if sheet.rows > 0 {
			end := fmt.Sprintf("%s%d", lastAmount, sheet.rows+1)
			if err := f.SetCellStyle(sheet.name, firstAmount+"2", end, amountStyle); err != nil {
				return err
			}
		}
		if err := f.SetPanes(sheet.name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.name, "A", sheet.lastCol, 16); err != nil {
			return err
		}
	}
	return nil
}
