// Package engine replays predicted trading actions into portfolio state.
//
// Predictions are applied strictly in the order given. The engine does not
// sort them; feeding a non-chronological sequence yields whatever that order
// produces, and keeping the sequence chronological is the caller's job.
package engine

import (
	"github.com/shopspring/decimal"

	"TradeReplay/internal/model"
)

// Result is the output of one Replay call.
type Result struct {
	Portfolio    model.Portfolio
	Transactions []model.TransactionRecord // trades executed by this call only
	Processed    ProcessedDates
	Outcomes     []model.Outcome // one per input prediction, same order
}

// Executed returns how many predictions turned into trades.
func (r *Result) Executed() int { return len(r.Transactions) }

// Replay applies predictions to portfolio one at a time. Each trade moves
// exactly one share. A date already in processed is skipped; every other
// date is marked processed the first time it is seen, whether or not it
// traded. Trades need a known positive price, enough cash for a BUY, and at
// least one share for a SELL; anything else is a silent no-op reported only
// through the outcome tag.
//
// The arguments are never modified. Replay does not fail.
func Replay(prices PriceIndex, predictions []model.Prediction, portfolio model.Portfolio, processed ProcessedDates) Result {
	res := Result{
		Portfolio: portfolio,
		Processed: processed.Clone(),
		Outcomes:  make([]model.Outcome, 0, len(predictions)),
	}

	for _, p := range predictions {
		out := step(prices, p, &res)
		out.Value = res.Portfolio.CurrentValue
		res.Outcomes = append(res.Outcomes, out)
	}
	return res
}

func step(prices PriceIndex, p model.Prediction, res *Result) model.Outcome {
	out := model.Outcome{Date: p.Date, Action: p.Action}

	if res.Processed.Has(p.Date) {
		out.Status = model.StatusSkippedDuplicate
		return out
	}
	res.Processed[p.Date] = struct{}{}

	point, ok := prices[p.Date]
	if !ok || !point.Close.IsPositive() {
		out.Status = model.StatusSkippedNoPrice
		return out
	}
	price := point.Close
	out.Price = price

	pf := &res.Portfolio
	switch p.Action {
	case model.ActionBuy:
		if pf.Cash.GreaterThanOrEqual(price) {
			pf.Shares++
			pf.Cash = pf.Cash.Sub(price)
			res.Transactions = append(res.Transactions, record(p, price))
			out.Status = model.StatusExecuted
		} else {
			out.Status = model.StatusInsufficientCash
		}
	case model.ActionSell:
		if pf.Shares > 0 {
			pf.Shares--
			pf.Cash = pf.Cash.Add(price)
			res.Transactions = append(res.Transactions, record(p, price))
			out.Status = model.StatusExecuted
		} else {
			out.Status = model.StatusInsufficientShare
		}
	default:
		out.Status = model.StatusNoAction
	}

	pf.CurrentValue = pf.ValueAt(price)
	return out
}

func record(p model.Prediction, price decimal.Decimal) model.TransactionRecord {
	return model.TransactionRecord{Date: p.Date, Action: p.Action, Price: price}
}
