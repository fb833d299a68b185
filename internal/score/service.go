package score

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/uoscommunity/scorebot/internal/chain"
	"github.com/uoscommunity/scorebot/internal/domain"
)

// ErrNotFound indicates that the account has no score.
var ErrNotFound = errors.New("score not found")

// Fetcher retrieves raw rates from the score service.
type Fetcher interface {
	FetchScore(ctx context.Context, path, accountName string) (chain.RawScore, error)
}

// Service resolves display scores: raw rates times the rate multiplier, rounded to integers.
type Service struct {
	fetcher    Fetcher
	path       string
	multiplier decimal.Decimal
	cache      *scoreCache
}

// NewService creates a new score Service.
func NewService(fetcher Fetcher, path string, multiplier decimal.Decimal) *Service {
	if fetcher == nil {
		panic("score.NewService: fetcher is nil")
	}
	return &Service{
		fetcher:    fetcher,
		path:       path,
		multiplier: multiplier,
		cache:      newScoreCache(),
	}
}

// GetScore returns the score of accountName, using a short-lived cache.
func (s *Service) GetScore(ctx context.Context, accountName string) (domain.Score, error) {
	if cached, ok := s.cache.get(accountName); ok {
		return cached, nil
	}

	raw, err := s.fetcher.FetchScore(ctx, s.path, accountName)
	if err != nil {
		if errors.Is(err, chain.ErrNotFound) {
			return domain.Score{}, fmt.Errorf("%s: %w", accountName, ErrNotFound)
		}
		return domain.Score{}, err
	}

	result := domain.Score{
		Account:    raw.Account,
		Importance: raw.ScaledImportance.Mul(s.multiplier).Round(0),
		Social:     raw.ScaledSocial.Mul(s.multiplier).Round(0),
	}
	s.cache.set(accountName, result)
	return result, nil
}
