package domain

// RawLiquidStake is the liquid and self-staked snapshot of an account as read from the chain.
// Fields are raw chain values; absent fields are "0".
type RawLiquidStake struct {
	Liquid    string `json:"liquid"`
	NetWeight string `json:"netWeight"`
	CPUWeight string `json:"cpuWeight"`
}

// RawDeposit is a vesting contract balance row.
type RawDeposit struct {
	Total     string `json:"total"`
	Withdrawn string `json:"withdrawn"`
}

// RawEmission is the cumulative emission row of an account.
type RawEmission struct {
	Total string `json:"total"`
}

// BalanceReport is the full balance picture of one account at one instant.
type BalanceReport struct {
	Account           string `json:"account"`
	Liquid            Token  `json:"liquid"`
	StakeNet          Token  `json:"stakeNet"`
	StakeCPU          Token  `json:"stakeCpu"`
	TimeLocked        Token  `json:"timeLocked"`
	TimeAvailable     Token  `json:"timeAvailable"`
	ActivityLocked    Token  `json:"activityLocked"`
	ActivityAvailable Token  `json:"activityAvailable"`
}

// NewBalanceReport returns a report for account with every amount set to zero.
func NewBalanceReport(account string) BalanceReport {
	zero := ZeroToken()
	return BalanceReport{
		Account:           account,
		Liquid:            zero,
		StakeNet:          zero,
		StakeCPU:          zero,
		TimeLocked:        zero,
		TimeAvailable:     zero,
		ActivityLocked:    zero,
		ActivityAvailable: zero,
	}
}
