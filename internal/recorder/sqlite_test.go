package recorder

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"TradeReplay/internal/engine"
	"TradeReplay/internal/model"
)

func TestSQLiteRecorder_RecordReplay(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	defer r.Close()

	if err := r.RecordSession(&SessionEvent{
		SessionID: "s1", Symbol: "AAPL", StartDate: "2023-01-01", EndDate: "2024-01-01",
		PricePoints: 2, StartingCash: "10000",
	}); err != nil {
		t.Fatalf("record session: %v", err)
	}

	price := decimal.RequireFromString("100.25")
	evt := &ReplayEvent{
		SessionID: "s1",
		Outcomes: []model.Outcome{
			{Date: "2023-01-03", Action: model.ActionBuy, Status: model.StatusExecuted, Price: price},
			{Date: "2023-01-03", Action: model.ActionBuy, Status: model.StatusSkippedDuplicate},
		},
		Transactions: []model.TransactionRecord{{Date: "2023-01-03", Action: model.ActionBuy, Price: price}},
		Portfolio:    model.Portfolio{Cash: decimal.RequireFromString("9899.75"), Shares: 1, CurrentValue: decimal.NewFromInt(10000)},
		Summary:      engine.Summary{Trades: 1},
	}
	if err := r.RecordReplay(evt); err != nil {
		t.Fatalf("record replay: %v", err)
	}

	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM outcomes WHERE session_id = ?`, "s1").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 outcomes, got %d", n)
	}

	var gotPrice string
	if err := r.db.QueryRow(`SELECT price FROM transactions WHERE session_id = ?`, "s1").Scan(&gotPrice); err != nil {
		t.Fatal(err)
	}
	if gotPrice != "100.25" {
		t.Errorf("expected exact price 100.25, got %s", gotPrice)
	}

	var cash string
	var shares int64
	if err := r.db.QueryRow(`SELECT cash, shares FROM replays WHERE session_id = ?`, "s1").Scan(&cash, &shares); err != nil {
		t.Fatal(err)
	}
	if cash != "9899.75" || shares != 1 {
		t.Errorf("unexpected replay row: cash=%s shares=%d", cash, shares)
	}
}

func TestSQLiteRecorder_DuplicateSessionFails(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	evt := &SessionEvent{SessionID: "dup", Symbol: "AAPL"}
	if err := r.RecordSession(evt); err != nil {
		t.Fatal(err)
	}
	if err := r.RecordSession(evt); err == nil {
		t.Error("expected primary key violation on duplicate session id")
	}
}
