package export

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/uoscommunity/scorebot/internal/domain"
)

const (
	balancesSheet = "BALANCES"
	totalsSheet   = "TOTALS"
	timestampFmt  = "2006-01-02 15:04:05"
)

// amountColumn is one token column shared by the balances and totals sheets.
type amountColumn struct {
	header string
	value  func(domain.BalanceReport) domain.Token
}

var amountColumns = []amountColumn{
	{"Liquid", func(r domain.BalanceReport) domain.Token { return r.Liquid }},
	{"Stake NET", func(r domain.BalanceReport) domain.Token { return r.StakeNet }},
	{"Stake CPU", func(r domain.BalanceReport) domain.Token { return r.StakeCPU }},
	{"Time Locked", func(r domain.BalanceReport) domain.Token { return r.TimeLocked }},
	{"Time Available", func(r domain.BalanceReport) domain.Token { return r.TimeAvailable }},
	{"Actv Locked", func(r domain.BalanceReport) domain.Token { return r.ActivityLocked }},
	{"Actv Available", func(r domain.BalanceReport) domain.Token { return r.ActivityAvailable }},
}

// buildBalances builds the BALANCES sheet.
// Columns: Account | Telegram | seven amounts | Generated At
func buildBalances(rows []Row, at time.Time) [][]any {
	header := []any{"Account", "Telegram"}
	for _, col := range amountColumns {
		header = append(header, col.header)
	}
	header = append(header, "Generated At")

	stamp := at.UTC().Format(timestampFmt)
	data := lo.Map(rows, func(row Row, _ int) []any {
		line := []any{row.Report.Account, row.TelegramName}
		for _, col := range amountColumns {
			line = append(line, toFloat(col.value(row.Report).Decimal()))
		}
		return append(line, stamp)
	})

	return append([][]any{header}, data...)
}

// buildTotals builds the TOTALS header row and one data row summing every amount column.
// Columns: Date | Accounts | seven amounts
func buildTotals(rows []Row, at time.Time) (header, data []any) {
	header = []any{"Date", "Accounts"}
	data = []any{at.UTC().Format("02.01.2006"), float64(len(rows))}
	for _, col := range amountColumns {
		header = append(header, col.header)
		sum := lo.Reduce(rows, func(acc decimal.Decimal, row Row, _ int) decimal.Decimal {
			return acc.Add(col.value(row.Report).Decimal())
		}, decimal.Zero)
		data = append(data, toFloat(sum))
	}
	return header, data
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
