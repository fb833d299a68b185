package export

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// SheetsWriter implements SheetWriter using the Google Sheets API.
type SheetsWriter struct {
	spreadsheetID string
	svc           *sheets.Service
}

// NewSheetsWriter creates a SheetsWriter authenticated with a service account JSON.
func NewSheetsWriter(ctx context.Context, spreadsheetID, credentialsJSON string) (*SheetsWriter, error) {
	creds, err := google.CredentialsFromJSON(
		ctx,
		[]byte(credentialsJSON),
		sheets.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &SheetsWriter{spreadsheetID: spreadsheetID, svc: svc}, nil
}

// Write rewrites the BALANCES sheet and appends one row to TOTALS.
func (w *SheetsWriter) Write(ctx context.Context, rows []Row, at time.Time) error {
	ids, err := w.ensureSheets(ctx, balancesSheet, totalsSheet)
	if err != nil {
		return err
	}

	_, err = w.svc.Spreadsheets.Values.Clear(
		w.spreadsheetID,
		balancesSheet+"!A:J",
		&sheets.ClearValuesRequest{},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clearing %s: %w", balancesSheet, err)
	}

	_, err = w.svc.Spreadsheets.Values.Update(
		w.spreadsheetID,
		balancesSheet+"!A1",
		&sheets.ValueRange{Values: buildBalances(rows, at)},
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing %s: %w", balancesSheet, err)
	}

	if err := w.appendTotals(ctx, rows, at); err != nil {
		return err
	}

	if err := w.applyFormatting(ctx, ids[balancesSheet], ids[totalsSheet]); err != nil {
		return fmt.Errorf("formatting sheets: %w", err)
	}
	return nil
}

// appendTotals writes the TOTALS header if the sheet is empty, then appends one data row.
func (w *SheetsWriter) appendTotals(ctx context.Context, rows []Row, at time.Time) error {
	header, data := buildTotals(rows, at)

	existing, err := w.svc.Spreadsheets.Values.Get(
		w.spreadsheetID, totalsSheet+"!A1",
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading %s header: %w", totalsSheet, err)
	}

	if len(existing.Values) == 0 {
		_, err = w.svc.Spreadsheets.Values.Update(
			w.spreadsheetID,
			totalsSheet+"!A1",
			&sheets.ValueRange{Values: [][]any{header}},
		).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("writing %s header: %w", totalsSheet, err)
		}
	}

	_, err = w.svc.Spreadsheets.Values.Append(
		w.spreadsheetID,
		totalsSheet+"!A:I",
		&sheets.ValueRange{Values: [][]any{data}},
	).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending %s row: %w", totalsSheet, err)
	}
	return nil
}

// applyFormatting freezes header rows and formats amount columns with four decimals.
func (w *SheetsWriter) applyFormatting(ctx context.Context, balancesID, totalsID int64) error {
	amountFormat := &sheets.CellFormat{NumberFormat: &sheets.NumberFormat{Type: "NUMBER", Pattern: "#,##0.0000"}}
	headerFormat := &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}}

	var reqs []*sheets.Request
	for _, sheet := range []struct {
		id         int64
		firstValue int64
	}{
		{balancesID, 2},
		{totalsID, 2},
	} {
		reqs = append(reqs,
			freezeReq(sheet.id, 1),
			cellFormatReq(sheet.id, 0, 1, 0, sheet.firstValue+int64(len(amountColumns))+1, headerFormat, "userEnteredFormat.textFormat.bold"),
			cellFormatReq(sheet.id, 1, 100000, sheet.firstValue, sheet.firstValue+int64(len(amountColumns)), amountFormat, "userEnteredFormat.numberFormat"),
		)
	}

	_, err := w.svc.Spreadsheets.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: reqs},
	).Context(ctx).Do()
	return err
}

// ensureSheets creates any of the named sheets that do not already exist and returns all sheet IDs by title.
func (w *SheetsWriter) ensureSheets(ctx context.Context, names ...string) (map[string]int64, error) {
	spreadsheet, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("getting spreadsheet metadata: %w", err)
	}

	ids := make(map[string]int64, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		ids[s.Properties.Title] = s.Properties.SheetId
	}

	var requests []*sheets.Request
	for _, name := range names {
		if _, ok := ids[name]; !ok {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: name},
				},
			})
		}
	}

	if len(requests) == 0 {
		return ids, nil
	}

	resp, err := w.svc.Spreadsheets.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests},
	).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("creating sheets: %w", err)
	}
	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			ids[reply.AddSheet.Properties.Title] = reply.AddSheet.Properties.SheetId
		}
	}

	return ids, nil
}

func freezeReq(sheetID, rows int64) *sheets.Request {
	return &sheets.Request{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId:        sheetID,
				GridProperties: &sheets.GridProperties{FrozenRowCount: rows},
			},
			Fields: "gridProperties.frozenRowCount",
		},
	}
}

func cellFormatReq(sheetID, startRow, endRow, startCol, endCol int64, format *sheets.CellFormat, fields string) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    startRow,
				EndRowIndex:      endRow,
				StartColumnIndex: startCol,
				EndColumnIndex:   endCol,
			},
			Cell:   &sheets.CellData{UserEnteredFormat: format},
			Fields: fields,
		},
	}
}
