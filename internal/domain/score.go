package domain

import "github.com/shopspring/decimal"

// Score is the reputation of an account, already scaled for display.
type Score struct {
	Account    string          `json:"account"`
	Importance decimal.Decimal `json:"importance"`
	Social     decimal.Decimal `json:"social"`
}
