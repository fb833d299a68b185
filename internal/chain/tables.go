package chain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uoscommunity/scorebot/internal/domain"
)

// TableQuery selects rows of a contract table.
type TableQuery struct {
	Contract   string
	Scope      string
	Table      string
	LowerBound string
	UpperBound string
	Limit      int
}

// FetchTableRows returns the raw JSON rows matching q.
func (c *Client) FetchTableRows(ctx context.Context, q TableQuery) ([]json.RawMessage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 1
	}

	var resp tableRowsResponse
	err := c.postJSON(ctx, "/v1/chain/get_table_rows", tableRowsRequest{
		JSON:       true,
		Code:       q.Contract,
		Scope:      q.Scope,
		Table:      q.Table,
		LowerBound: q.LowerBound,
		UpperBound: q.UpperBound,
		Limit:      limit,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetching %s/%s rows: %w", q.Contract, q.Table, err)
	}
	return resp.Rows, nil
}

// fetchAccountRow loads the single row keyed by accountName into dest.
// Both bounds are pinned to the account so a missing row is not replaced by the next key.
func (c *Client) fetchAccountRow(ctx context.Context, contract, table, accountName string, dest any) (bool, error) {
	rows, err := c.FetchTableRows(ctx, TableQuery{
		Contract:   contract,
		Scope:      contract,
		Table:      table,
		LowerBound: accountName,
		UpperBound: accountName,
		Limit:      1,
	})
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(rows[0], dest); err != nil {
		return false, fmt.Errorf("decoding %s/%s row for %s: %w", contract, table, accountName, err)
	}
	return true, nil
}

// FetchDeposit reads the vesting balance row of accountName from a lock contract.
// Returns nil when the account has no deposit.
func (c *Client) FetchDeposit(ctx context.Context, contract, accountName string) (*domain.RawDeposit, error) {
	var row depositRow
	found, err := c.fetchAccountRow(ctx, contract, "balance", accountName, &row)
	if err != nil || !found {
		return nil, err
	}
	return &domain.RawDeposit{
		Total:     row.Deposit.OrZero(),
		Withdrawn: row.Withdrawal.OrZero(),
	}, nil
}

// FetchEmission reads the cumulative emission of accountName. Returns nil when there is no row.
func (c *Client) FetchEmission(ctx context.Context, contract, table, accountName string) (*domain.RawEmission, error) {
	var row emissionRow
	found, err := c.fetchAccountRow(ctx, contract, table, accountName, &row)
	if err != nil || !found {
		return nil, err
	}
	return &domain.RawEmission{Total: row.Total.OrZero()}, nil
}

// FetchProfile reads the public profile an account stores in uaccountinfo.
// Returns ErrNotFound when the account has not published one.
func (c *Client) FetchProfile(ctx context.Context, accountName string) (domain.Profile, error) {
	rows, err := c.FetchTableRows(ctx, TableQuery{
		Contract: "uaccountinfo",
		Scope:    accountName,
		Table:    "accprofile",
		Limit:    1,
	})
	if err != nil {
		return domain.Profile{}, err
	}
	if len(rows) == 0 {
		return domain.Profile{}, fmt.Errorf("profile of %s: %w", accountName, ErrNotFound)
	}

	var row profileRow
	if err := json.Unmarshal(rows[0], &row); err != nil {
		return domain.Profile{}, fmt.Errorf("decoding profile row of %s: %w", accountName, err)
	}
	if row.ProfileJSON == "" {
		return domain.Profile{}, fmt.Errorf("profile of %s: %w", accountName, ErrNotFound)
	}

	var profile domain.Profile
	if err := json.Unmarshal([]byte(row.ProfileJSON), &profile); err != nil {
		return domain.Profile{}, fmt.Errorf("parsing profile of %s: %w", accountName, err)
	}
	return profile, nil
}
