package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/uoscommunity/scorebot/internal/domain"
)

const computeWorkers = 4

// Row is one linked account with its computed balances.
type Row struct {
	TelegramName string
	Report       domain.BalanceReport
}

// SheetWriter writes balance rows to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, rows []Row, at time.Time) error
}

// AccountLister reads the linked-account directory.
type AccountLister interface {
	List(ctx context.Context) ([]domain.LinkedAccount, error)
}

// BalanceComputer builds balance reports.
type BalanceComputer interface {
	Compute(ctx context.Context, accountName string) (domain.BalanceReport, error)
}

// Service computes balances of every linked account and delegates writing to a SheetWriter.
type Service struct {
	accounts AccountLister
	balances BalanceComputer
	writer   SheetWriter
	now      func() time.Time
}

// NewService creates a new export Service.
func NewService(accounts AccountLister, balances BalanceComputer, writer SheetWriter) *Service {
	if accounts == nil {
		panic("export.NewService: accounts is nil")
	}
	if balances == nil {
		panic("export.NewService: balances is nil")
	}
	if writer == nil {
		panic("export.NewService: writer is nil")
	}
	return &Service{
		accounts: accounts,
		balances: balances,
		writer:   writer,
		now:      time.Now,
	}
}

// Export writes one row per linked account and returns the number of rows written.
// Accounts whose balance cannot be computed are logged and skipped.
func (s *Service) Export(ctx context.Context) (int, error) {
	linked, err := s.accounts.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing linked accounts: %w", err)
	}

	var (
		mu   sync.Mutex
		rows = make([]Row, 0, len(linked))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(computeWorkers)
	for _, a := range linked {
		if !domain.ValidAccountName(a.UOSName) {
			slog.Warn("export: skipping invalid account name", "telegram", a.TelegramName, "uos", a.UOSName)
			continue
		}
		g.Go(func() error {
			report, err := s.balances.Compute(gctx, a.UOSName)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slog.Warn("export: balance unavailable", "account", a.UOSName, "error", err)
				return nil
			}
			mu.Lock()
			rows = append(rows, Row{TelegramName: a.TelegramName, Report: report})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("computing balances: %w", err)
	}

	slices.SortFunc(rows, func(a, b Row) int {
		return strings.Compare(a.Report.Account, b.Report.Account)
	})

	at := s.now().UTC()
	if err := s.writer.Write(ctx, rows, at); err != nil {
		return 0, fmt.Errorf("writing export: %w", err)
	}

	slog.Info("export: written", "rows", len(rows), "skipped", len(linked)-len(rows))
	return len(rows), nil
}

// MultiWriter writes to every writer in order, attempting all of them.
type MultiWriter []SheetWriter

// Write implements SheetWriter.
func (m MultiWriter) Write(ctx context.Context, rows []Row, at time.Time) error {
	var errs []error
	for _, w := range m {
		if err := w.Write(ctx, rows, at); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
