package engine

import (
	"github.com/shopspring/decimal"

	"TradeReplay/internal/calculator"
	"TradeReplay/internal/model"
)

// Summary aggregates a session's ledger and valuation.
type Summary struct {
	Trades         int             `json:"trades"`
	Buys           int             `json:"buys"`
	Sells          int             `json:"sells"`
	Skipped        int             `json:"skipped"`
	RealizedProfit decimal.Decimal `json:"realized_profit"`
	OpenCost       decimal.Decimal `json:"open_cost"`
	ProfitLoss     decimal.Decimal `json:"profit_loss"`
	ReturnPct      decimal.Decimal `json:"return_pct"`
	MaxDrawdownPct decimal.Decimal `json:"max_drawdown_pct"`
}

// Summarize computes the summary of a session that began with startingCash.
// ProfitLoss is the current value minus startingCash.
func Summarize(startingCash decimal.Decimal, pf model.Portfolio, ledger []model.TransactionRecord, outcomes []model.Outcome) Summary {
	s := Summary{
		Trades:         len(ledger),
		RealizedProfit: calculator.RealizedProfit(ledger),
		OpenCost:       calculator.OpenCost(ledger),
		ProfitLoss:     pf.CurrentValue.Sub(startingCash),
		ReturnPct:      calculator.ReturnPct(startingCash, pf.CurrentValue),
	}
	for _, tx := range ledger {
		switch tx.Action {
		case model.ActionBuy:
			s.Buys++
		case model.ActionSell:
			s.Sells++
		}
	}

	curve := make([]decimal.Decimal, 0, len(outcomes)+1)
	curve = append(curve, startingCash)
	for _, o := range outcomes {
		if o.Status.Skipped() {
			s.Skipped++
		}
		curve = append(curve, o.Value)
	}
	s.MaxDrawdownPct = calculator.MaxDrawdownPct(curve)
	return s
}
