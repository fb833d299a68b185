package chain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// RawScore is the unscaled reputation returned by the score service.
type RawScore struct {
	Account          string
	ScaledSocial     decimal.Decimal
	ScaledImportance decimal.Decimal
}

// FetchScore asks the score service at path for the rates of accountName.
// Returns ErrNotFound when the service answers with an empty object.
func (c *Client) FetchScore(ctx context.Context, path, accountName string) (RawScore, error) {
	body, err := c.post(ctx, path, map[string]string{"acc_name": accountName})
	if err != nil {
		return RawScore{}, fmt.Errorf("fetching score of %s: %w", accountName, err)
	}

	// The service answers with a JSON document encoded as a JSON string.
	var inner string
	if err := json.Unmarshal(body, &inner); err == nil {
		body = []byte(inner)
	}

	var resp scoreResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return RawScore{}, fmt.Errorf("parsing score of %s: %w", accountName, err)
	}
	if resp.Name == "" || resp.Values == nil {
		return RawScore{}, fmt.Errorf("score of %s: %w", accountName, ErrNotFound)
	}

	social, err := decimal.NewFromString(resp.Values.ScaledSocialRate.String())
	if err != nil {
		return RawScore{}, fmt.Errorf("parsing social rate of %s: %w", accountName, err)
	}
	importance, err := decimal.NewFromString(resp.Values.ScaledImportance.String())
	if err != nil {
		return RawScore{}, fmt.Errorf("parsing importance of %s: %w", accountName, err)
	}

	return RawScore{
		Account:          resp.Name,
		ScaledSocial:     social,
		ScaledImportance: importance,
	}, nil
}
