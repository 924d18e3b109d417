package calculator

import (
	"github.com/shopspring/decimal"

	"TradeReplay/internal/model"
)

var hundred = decimal.NewFromInt(100)

// RealizedProfit matches unit SELLs against the oldest open BUYs and sums
// the differences. Unmatched SELLs are ignored.
func RealizedProfit(ledger []model.TransactionRecord) decimal.Decimal {
	var open []decimal.Decimal
	total := decimal.Zero
	for _, tx := range ledger {
		switch tx.Action {
		case model.ActionBuy:
			open = append(open, tx.Price)
		case model.ActionSell:
			if len(open) == 0 {
				continue
			}
			total = total.Add(tx.Price.Sub(open[0]))
			open = open[1:]
		}
	}
	return total
}

// OpenCost returns the total cost of BUYs not yet matched by a SELL.
func OpenCost(ledger []model.TransactionRecord) decimal.Decimal {
	var open []decimal.Decimal
	for _, tx := range ledger {
		switch tx.Action {
		case model.ActionBuy:
			open = append(open, tx.Price)
		case model.ActionSell:
			if len(open) > 0 {
				open = open[1:]
			}
		}
	}
	sum := decimal.Zero
	for _, p := range open {
		sum = sum.Add(p)
	}
	return sum
}

// ReturnPct returns the percentage change from start to end. Zero start gives zero.
func ReturnPct(start, end decimal.Decimal) decimal.Decimal {
	if start.IsZero() {
		return decimal.Zero
	}
	return end.Sub(start).Div(start).Mul(hundred)
}

// MaxDrawdownPct returns the largest peak-to-trough decline of values, in percent.
func MaxDrawdownPct(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	peak := values[0]
	maxDD := decimal.Zero
	for _, v := range values {
		if v.GreaterThan(peak) {
			peak = v
		}
		if !peak.IsPositive() {
			continue
		}
		dd := peak.Sub(v).Div(peak).Mul(hundred)
		if dd.GreaterThan(maxDD) {
			maxDD = dd
		}
	}
	return maxDD
}
