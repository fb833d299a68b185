package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/uoscommunity/scorebot/internal/domain"
)

// FetchAccount retrieves the liquid balance and self-delegated stake of an account.
// Returns nil when the node does not know the account.
func (c *Client) FetchAccount(ctx context.Context, accountName string) (*domain.RawLiquidStake, error) {
	var account accountResponse
	err := c.postJSON(ctx, "/v1/chain/get_account", map[string]string{"account_name": accountName}, &account)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching account %s: %w", accountName, err)
	}
	if account.AccountName == "" {
		return nil, nil
	}

	stake := &domain.RawLiquidStake{
		Liquid:    account.CoreLiquidBalance.OrZero(),
		NetWeight: "0",
		CPUWeight: "0",
	}
	if bw := account.SelfDelegatedBandwidth; bw != nil {
		stake.NetWeight = bw.NetWeight.OrZero()
		stake.CPUWeight = bw.CPUWeight.OrZero()
	}
	return stake, nil
}
