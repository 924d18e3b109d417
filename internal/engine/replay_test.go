package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"TradeReplay/internal/model"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func prices(pairs ...any) PriceIndex {
	var pts []model.PricePoint
	for i := 0; i+1 < len(pairs); i += 2 {
		pts = append(pts, model.PricePoint{Date: pairs[i].(string), Close: decimal.NewFromFloat(pairs[i+1].(float64))})
	}
	return NewPriceIndex(pts)
}

func TestReplay_SingleBuy(t *testing.T) {
	idx := prices("2023-01-03", 100.0)
	res := Replay(idx, []model.Prediction{{Date: "2023-01-03", Action: model.ActionBuy}}, model.NewPortfolio(d(10000)), nil)

	if !res.Portfolio.Cash.Equal(d(9900)) {
		t.Errorf("cash: expected 9900, got %s", res.Portfolio.Cash)
	}
	if res.Portfolio.Shares != 1 {
		t.Errorf("shares: expected 1, got %d", res.Portfolio.Shares)
	}
	if !res.Portfolio.CurrentValue.Equal(d(10000)) {
		t.Errorf("value: expected 10000, got %s", res.Portfolio.CurrentValue)
	}
	if len(res.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(res.Transactions))
	}
	tx := res.Transactions[0]
	if tx.Date != "2023-01-03" || tx.Action != model.ActionBuy || !tx.Price.Equal(d(100)) {
		t.Errorf("unexpected transaction %+v", tx)
	}
	if res.Outcomes[0].Status != model.StatusExecuted {
		t.Errorf("expected EXECUTED, got %s", res.Outcomes[0].Status)
	}
}

func TestReplay_DuplicateDateIsIdempotent(t *testing.T) {
	idx := prices("2023-01-03", 100.0)
	buy := []model.Prediction{{Date: "2023-01-03", Action: model.ActionBuy}}

	first := Replay(idx, buy, model.NewPortfolio(d(10000)), nil)
	second := Replay(idx, buy, first.Portfolio, first.Processed)

	if len(second.Transactions) != 0 {
		t.Fatalf("second replay should not trade, got %d transactions", len(second.Transactions))
	}
	if !second.Portfolio.Cash.Equal(first.Portfolio.Cash) || second.Portfolio.Shares != first.Portfolio.Shares {
		t.Errorf("state changed on duplicate: %+v -> %+v", first.Portfolio, second.Portfolio)
	}
	if second.Outcomes[0].Status != model.StatusSkippedDuplicate {
		t.Errorf("expected SKIPPED_DUPLICATE, got %s", second.Outcomes[0].Status)
	}

	// Same date twice inside one batch
	within := Replay(idx, append(buy, buy...), model.NewPortfolio(d(10000)), nil)
	if len(within.Transactions) != 1 {
		t.Errorf("expected 1 transaction for repeated date in one batch, got %d", len(within.Transactions))
	}
}

func TestReplay_SellWithoutShares(t *testing.T) {
	idx := prices("2023-01-03", 100.0)
	start := model.NewPortfolio(d(10000))
	res := Replay(idx, []model.Prediction{{Date: "2023-01-03", Action: model.ActionSell}}, start, nil)

	if len(res.Transactions) != 0 {
		t.Fatalf("expected no transactions, got %d", len(res.Transactions))
	}
	if !res.Portfolio.Cash.Equal(start.Cash) || res.Portfolio.Shares != 0 {
		t.Errorf("state changed: %+v", res.Portfolio)
	}
	if res.Outcomes[0].Status != model.StatusInsufficientShare {
		t.Errorf("expected SKIPPED_NO_SHARES, got %s", res.Outcomes[0].Status)
	}
	if !res.Processed.Has("2023-01-03") {
		t.Error("rejected date should still be marked processed")
	}
}

func TestReplay_BuyWithoutCash(t *testing.T) {
	idx := prices("2023-01-03", 100.0)
	res := Replay(idx, []model.Prediction{{Date: "2023-01-03", Action: model.ActionBuy}}, model.NewPortfolio(d(50)), nil)

	if len(res.Transactions) != 0 {
		t.Fatalf("expected no transactions, got %d", len(res.Transactions))
	}
	if !res.Portfolio.Cash.Equal(d(50)) || res.Portfolio.Shares != 0 {
		t.Errorf("state changed: %+v", res.Portfolio)
	}
	if res.Outcomes[0].Status != model.StatusInsufficientCash {
		t.Errorf("expected SKIPPED_INSUFFICIENT_CASH, got %s", res.Outcomes[0].Status)
	}
}

func TestReplay_BuyExactCash(t *testing.T) {
	idx := prices("2023-01-03", 100.0)
	res := Replay(idx, []model.Prediction{{Date: "2023-01-03", Action: model.ActionBuy}}, model.NewPortfolio(d(100)), nil)
	if res.Portfolio.Shares != 1 || !res.Portfolio.Cash.IsZero() {
		t.Errorf("expected buy with cash == price, got %+v", res.Portfolio)
	}
}

func TestReplay_RoundTripProfit(t *testing.T) {
	idx := prices("2023-01-03", 100.0, "2023-01-04", 110.0)
	preds := []model.Prediction{
		{Date: "2023-01-03", Action: model.ActionBuy},
		{Date: "2023-01-04", Action: model.ActionSell},
	}
	start := model.NewPortfolio(d(10000))
	res := Replay(idx, preds, start, nil)

	if !res.Portfolio.Cash.Equal(d(10010)) || res.Portfolio.Shares != 0 {
		t.Errorf("expected {10010, 0}, got %+v", res.Portfolio)
	}
	if len(res.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(res.Transactions))
	}
	sum := Summarize(start.Cash, res.Portfolio, res.Transactions, res.Outcomes)
	if !sum.RealizedProfit.Equal(d(10)) {
		t.Errorf("realized profit: expected 10, got %s", sum.RealizedProfit)
	}
	if !sum.ProfitLoss.Equal(d(10)) {
		t.Errorf("profit/loss: expected 10, got %s", sum.ProfitLoss)
	}
	if sum.Buys != 1 || sum.Sells != 1 {
		t.Errorf("expected 1 buy and 1 sell, got %d/%d", sum.Buys, sum.Sells)
	}
}

func TestReplay_MissingOrNonPositivePrice(t *testing.T) {
	idx := prices("2023-01-03", 100.0, "2023-01-05", 0.0)
	start := model.NewPortfolio(d(10000))
	start.CurrentValue = d(12345) // marker: must survive unresolved steps

	res := Replay(idx, []model.Prediction{
		{Date: "2023-01-04", Action: model.ActionBuy},
		{Date: "2023-01-05", Action: model.ActionBuy},
	}, start, nil)

	if len(res.Transactions) != 0 {
		t.Fatalf("expected no trades, got %d", len(res.Transactions))
	}
	if !res.Portfolio.CurrentValue.Equal(d(12345)) {
		t.Errorf("current value should be unchanged, got %s", res.Portfolio.CurrentValue)
	}
	for _, o := range res.Outcomes {
		if o.Status != model.StatusSkippedNoPrice {
			t.Errorf("%s: expected SKIPPED_NO_PRICE, got %s", o.Date, o.Status)
		}
		if !res.Processed.Has(o.Date) {
			t.Errorf("%s should be marked processed", o.Date)
		}
	}
}

func TestReplay_HoldAndUnknownActions(t *testing.T) {
	idx := prices("2023-01-03", 100.0, "2023-01-04", 120.0, "2023-01-05", 90.0)
	start := model.Portfolio{Cash: d(1000), Shares: 2, CurrentValue: d(1000)}
	res := Replay(idx, []model.Prediction{
		{Date: "2023-01-03", Action: model.ActionHold},
		{Date: "2023-01-04", Action: model.ActionNone},
		{Date: "2023-01-05", Action: model.Action("SHORT")},
	}, start, nil)

	if len(res.Transactions) != 0 {
		t.Fatalf("expected no trades, got %d", len(res.Transactions))
	}
	for _, o := range res.Outcomes {
		if o.Status != model.StatusNoAction {
			t.Errorf("%s: expected NO_ACTION, got %s", o.Date, o.Status)
		}
	}
	if res.Processed.Len() != 3 {
		t.Errorf("expected 3 processed dates, got %d", res.Processed.Len())
	}
	// revalued at the last resolved price: 1000 + 2*90
	if !res.Portfolio.CurrentValue.Equal(d(1180)) {
		t.Errorf("expected value 1180, got %s", res.Portfolio.CurrentValue)
	}
}

func TestReplay_DoesNotMutateInputs(t *testing.T) {
	idx := prices("2023-01-03", 100.0)
	processed := NewProcessedDates("2022-12-30")
	start := model.NewPortfolio(d(10000))

	_ = Replay(idx, []model.Prediction{{Date: "2023-01-03", Action: model.ActionBuy}}, start, processed)

	if processed.Len() != 1 || processed.Has("2023-01-03") {
		t.Errorf("caller's processed set was modified: %v", processed.Dates())
	}
	if !start.Cash.Equal(d(10000)) || start.Shares != 0 {
		t.Errorf("caller's portfolio was modified: %+v", start)
	}
}

func TestReplay_ConservationAndOrdering(t *testing.T) {
	idx := prices(
		"2023-01-02", 100.0,
		"2023-01-03", 101.5,
		"2023-01-04", 99.25,
		"2023-01-05", 103.0,
		"2023-01-06", 98.0,
		"2023-01-09", 97.5,
	)
	preds := []model.Prediction{
		{Date: "2023-01-02", Action: model.ActionBuy},
		{Date: "2023-01-03", Action: model.ActionBuy},
		{Date: "2023-01-03", Action: model.ActionSell},
		{Date: "2023-01-04", Action: model.ActionSell},
		{Date: "2023-01-05", Action: model.ActionHold},
		{Date: "2023-01-06", Action: model.ActionSell},
		{Date: "2023-01-09", Action: model.ActionSell},
	}

	pf := model.NewPortfolio(d(250))
	var processed ProcessedDates
	var ledger []model.TransactionRecord
	for _, p := range preds {
		before := pf
		res := Replay(idx, []model.Prediction{p}, pf, processed)
		if n := len(res.Transactions); n > 1 {
			t.Fatalf("%s: ledger grew by %d", p.Date, n)
		}
		if len(res.Transactions) == 1 {
			price := res.Transactions[0].Price
			switch p.Action {
			case model.ActionBuy:
				if !res.Portfolio.Cash.Equal(before.Cash.Sub(price)) || res.Portfolio.Shares != before.Shares+1 {
					t.Errorf("%s: buy not conserved: %+v -> %+v", p.Date, before, res.Portfolio)
				}
			case model.ActionSell:
				if !res.Portfolio.Cash.Equal(before.Cash.Add(price)) || res.Portfolio.Shares != before.Shares-1 {
					t.Errorf("%s: sell not conserved: %+v -> %+v", p.Date, before, res.Portfolio)
				}
			}
		}
		if o := res.Outcomes[0]; o.Status != model.StatusSkippedDuplicate && o.Status != model.StatusSkippedNoPrice {
			want := res.Portfolio.ValueAt(o.Price)
			if !res.Portfolio.CurrentValue.Equal(want) {
				t.Errorf("%s: value %s, expected %s", p.Date, res.Portfolio.CurrentValue, want)
			}
		}
		pf, processed = res.Portfolio, res.Processed
		ledger = append(ledger, res.Transactions...)
	}

	wantOrder := []struct {
		date   string
		action model.Action
	}{
		{"2023-01-02", model.ActionBuy},
		{"2023-01-03", model.ActionBuy},
		{"2023-01-04", model.ActionSell},
		{"2023-01-06", model.ActionSell},
	}
	if len(ledger) != len(wantOrder) {
		t.Fatalf("expected %d ledger entries, got %d: %+v", len(wantOrder), len(ledger), ledger)
	}
	for i, w := range wantOrder {
		if ledger[i].Date != w.date || ledger[i].Action != w.action {
			t.Errorf("ledger[%d]: expected %s %s, got %s %s", i, w.date, w.action, ledger[i].Date, ledger[i].Action)
		}
	}
	if pf.Shares != 0 {
		t.Errorf("expected flat position, got %d shares", pf.Shares)
	}
}

func TestReplay_BatchEqualsStepwise(t *testing.T) {
	idx := prices("2023-01-02", 10.0, "2023-01-03", 12.0, "2023-01-04", 11.0)
	preds := []model.Prediction{
		{Date: "2023-01-02", Action: model.ActionBuy},
		{Date: "2023-01-03", Action: model.ActionBuy},
		{Date: "2023-01-04", Action: model.ActionSell},
	}
	batch := Replay(idx, preds, model.NewPortfolio(d(100)), nil)

	pf := model.NewPortfolio(d(100))
	var processed ProcessedDates
	for _, p := range preds {
		r := Replay(idx, []model.Prediction{p}, pf, processed)
		pf, processed = r.Portfolio, r.Processed
	}
	if !batch.Portfolio.Cash.Equal(pf.Cash) || batch.Portfolio.Shares != pf.Shares || !batch.Portfolio.CurrentValue.Equal(pf.CurrentValue) {
		t.Errorf("batch %+v differs from stepwise %+v", batch.Portfolio, pf)
	}
}
