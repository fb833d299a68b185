package balance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/uoscommunity/scorebot/internal/domain"
	"github.com/uoscommunity/scorebot/internal/vesting"
)

// Source fetches the raw rows a balance report is built from.
// A nil row with a nil error means the chain has no data for the account.
type Source interface {
	FetchLiquidStake(ctx context.Context, accountName string) (*domain.RawLiquidStake, error)
	FetchTimeLock(ctx context.Context, accountName string) (*domain.RawDeposit, error)
	FetchActivityLock(ctx context.Context, accountName string) (*domain.RawDeposit, error)
	FetchEmission(ctx context.Context, accountName string) (*domain.RawEmission, error)
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used as the vesting evaluation instant.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service assembles balance reports including the withdrawable part of locked deposits.
type Service struct {
	source Source
	window vesting.Window
	now    func() time.Time
}

// NewService creates a new balance Service. source is required.
func NewService(source Source, window vesting.Window, opts ...Option) *Service {
	if source == nil {
		panic("balance.NewService: source is nil")
	}
	s := &Service{source: source, window: window, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compute builds the balance report of accountName.
//
// The four chain reads run concurrently. A failed read is logged and treated as
// missing data, so the affected category shows zero instead of failing the whole
// report. A malformed amount fails the report with domain.ErrInvalidAmount.
func (s *Service) Compute(ctx context.Context, accountName string) (domain.BalanceReport, error) {
	now := s.now()

	var (
		stake    *domain.RawLiquidStake
		timeLock *domain.RawDeposit
		actvLock *domain.RawDeposit
		emission *domain.RawEmission
	)

	var g errgroup.Group
	g.Go(func() error {
		stake = degrade(accountName, "liquid/stake", fetch(ctx, accountName, s.source.FetchLiquidStake))
		return nil
	})
	g.Go(func() error {
		timeLock = degrade(accountName, "time lock", fetch(ctx, accountName, s.source.FetchTimeLock))
		return nil
	})
	g.Go(func() error {
		actvLock = degrade(accountName, "activity lock", fetch(ctx, accountName, s.source.FetchActivityLock))
		return nil
	})
	g.Go(func() error {
		emission = degrade(accountName, "emission", fetch(ctx, accountName, s.source.FetchEmission))
		return nil
	})
	_ = g.Wait()

	report := domain.NewBalanceReport(accountName)

	if stake != nil {
		if err := s.applyStake(&report, stake); err != nil {
			return domain.BalanceReport{}, err
		}
	}

	if timeLock != nil {
		dep, err := toDeposit(timeLock, nil)
		if err != nil {
			return domain.BalanceReport{}, fmt.Errorf("time lock of %s: %w", accountName, err)
		}
		report.TimeLocked = dep.Total
		report.TimeAvailable = vesting.TimeLockedAvailable(dep, s.window, now)
	}

	if actvLock != nil {
		dep, err := toDeposit(actvLock, emission)
		if err != nil {
			return domain.BalanceReport{}, fmt.Errorf("activity lock of %s: %w", accountName, err)
		}
		report.ActivityLocked = dep.Total
		report.ActivityAvailable = vesting.ActivityLockedAvailable(dep, s.window, now)
	}

	return report, nil
}

func (s *Service) applyStake(report *domain.BalanceReport, stake *domain.RawLiquidStake) error {
	liquid, err := domain.ParseToken(stake.Liquid)
	if err != nil {
		return fmt.Errorf("liquid balance of %s: %w", report.Account, err)
	}
	net, err := domain.ParseToken(stake.NetWeight)
	if err != nil {
		return fmt.Errorf("net stake of %s: %w", report.Account, err)
	}
	cpu, err := domain.ParseToken(stake.CPUWeight)
	if err != nil {
		return fmt.Errorf("cpu stake of %s: %w", report.Account, err)
	}
	report.Liquid = liquid
	report.StakeNet = net
	report.StakeCPU = cpu
	return nil
}

func toDeposit(raw *domain.RawDeposit, emission *domain.RawEmission) (vesting.Deposit, error) {
	total, err := domain.ParseToken(raw.Total)
	if err != nil {
		return vesting.Deposit{}, fmt.Errorf("deposit: %w", err)
	}
	withdrawn, err := domain.ParseToken(raw.Withdrawn)
	if err != nil {
		return vesting.Deposit{}, fmt.Errorf("withdrawal: %w", err)
	}

	dep := vesting.Deposit{Total: total, Withdrawn: withdrawn}
	if emission != nil {
		em, err := domain.ParseToken(emission.Total)
		if err != nil {
			return vesting.Deposit{}, fmt.Errorf("emission: %w", err)
		}
		dep.Emission = &em
	}
	return dep, nil
}

type result[T any] struct {
	row *T
	err error
}

func fetch[T any](ctx context.Context, accountName string, fn func(context.Context, string) (*T, error)) result[T] {
	row, err := fn(ctx, accountName)
	return result[T]{row: row, err: err}
}

func degrade[T any](accountName, category string, r result[T]) *T {
	if r.err != nil {
		slog.Warn("balance fetch failed, reporting zero",
			"account", accountName,
			"category", category,
			"error", r.err,
		)
		return nil
	}
	return r.row
}
