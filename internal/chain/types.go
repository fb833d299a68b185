package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Amount is a numeric chain field. Nodes encode the same field as a JSON number
// ("deposit": 1000000) or a string ("net_weight": "1.0000 UOS") depending on the
// contract ABI, so both are kept verbatim as text.
type Amount string

// UnmarshalJSON accepts a JSON number, string, or null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decoding amount %s: %w", data, err)
		}
		*a = Amount(n.String())
		return nil
	}
}

// OrZero returns the amount text, or "0" when the field was absent.
func (a Amount) OrZero() string {
	if a == "" {
		return "0"
	}
	return string(a)
}

// accountResponse is the subset of /v1/chain/get_account used by the bot.
type accountResponse struct {
	AccountName            string `json:"account_name"`
	CoreLiquidBalance      Amount `json:"core_liquid_balance"`
	SelfDelegatedBandwidth *struct {
		NetWeight Amount `json:"net_weight"`
		CPUWeight Amount `json:"cpu_weight"`
	} `json:"self_delegated_bandwidth"`
}

// tableRowsRequest is the body of /v1/chain/get_table_rows.
type tableRowsRequest struct {
	JSON       bool   `json:"json"`
	Code       string `json:"code"`
	Scope      string `json:"scope"`
	Table      string `json:"table"`
	LowerBound string `json:"lower_bound,omitempty"`
	UpperBound string `json:"upper_bound,omitempty"`
	Limit      int    `json:"limit"`
}

// tableRowsResponse wraps the rows of a table query.
type tableRowsResponse struct {
	Rows []json.RawMessage `json:"rows"`
	More bool              `json:"more"`
}

// depositRow is a row of a vesting contract "balance" table.
type depositRow struct {
	Deposit    Amount `json:"deposit"`
	Withdrawal Amount `json:"withdrawal"`
}

// emissionRow is a row of the emission table.
type emissionRow struct {
	Total Amount `json:"total"`
}

// profileRow is a row of uaccountinfo/accprofile.
type profileRow struct {
	ProfileJSON string `json:"profile_json"`
}

// scoreResponse is the decoded body of the score endpoint.
type scoreResponse struct {
	Name   string `json:"name"`
	Values *struct {
		ScaledSocialRate json.Number `json:"scaled_social_rate"`
		ScaledImportance json.Number `json:"scaled_importance"`
	} `json:"values"`
}
