package chain

import (
	"context"

	"github.com/uoscommunity/scorebot/internal/domain"
)

// Contracts names the contracts that hold locked balances.
type Contracts struct {
	TimeLock      string
	ActivityLock  string
	Emission      string
	EmissionTable string
}

// Source reads balance rows for the balance aggregator.
type Source struct {
	client    *Client
	contracts Contracts
}

// NewSource binds a client to a contract set.
func NewSource(client *Client, contracts Contracts) *Source {
	return &Source{client: client, contracts: contracts}
}

func (s *Source) FetchLiquidStake(ctx context.Context, accountName string) (*domain.RawLiquidStake, error) {
	return s.client.FetchAccount(ctx, accountName)
}

func (s *Source) FetchTimeLock(ctx context.Context, accountName string) (*domain.RawDeposit, error) {
	return s.client.FetchDeposit(ctx, s.contracts.TimeLock, accountName)
}

func (s *Source) FetchActivityLock(ctx context.Context, accountName string) (*domain.RawDeposit, error) {
	return s.client.FetchDeposit(ctx, s.contracts.ActivityLock, accountName)
}

func (s *Source) FetchEmission(ctx context.Context, accountName string) (*domain.RawEmission, error) {
	return s.client.FetchEmission(ctx, s.contracts.Emission, s.contracts.EmissionTable, accountName)
}
