package model

import "github.com/shopspring/decimal"

// DefaultStartingCash is the balance a session starts with when none is configured.
var DefaultStartingCash = decimal.NewFromInt(10000)

// Portfolio is the simulated single-ticker account.
type Portfolio struct {
	Cash         decimal.Decimal `json:"cash"`
	Shares       int64           `json:"shares"`
	CurrentValue decimal.Decimal `json:"current_value"`
}

// NewPortfolio returns a portfolio holding only cash.
func NewPortfolio(cash decimal.Decimal) Portfolio {
	return Portfolio{Cash: cash, CurrentValue: cash}
}

// ValueAt returns cash plus the shares marked at price.
func (p Portfolio) ValueAt(price decimal.Decimal) decimal.Decimal {
	return p.Cash.Add(price.Mul(decimal.NewFromInt(p.Shares)))
}

// TransactionRecord is one executed unit trade.
type TransactionRecord struct {
	Date   string          `json:"date"`
	Action Action          `json:"action"`
	Price  decimal.Decimal `json:"price"`
}

// Outcome records how a prediction was handled.
type Outcome struct {
	Date   string          `json:"date"`
	Action Action          `json:"action"`
	Status Status          `json:"status"`
	Price  decimal.Decimal `json:"price"` // zero when no price resolved
	Value  decimal.Decimal `json:"value"` // portfolio value after this step
}
