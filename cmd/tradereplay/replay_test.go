package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"TradeReplay/internal/config"
	"TradeReplay/internal/model"
	"TradeReplay/internal/session"
)

func TestReplayCmd_Override(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	c := &replayCmd{symbol: "msft", start: "2022-03-01", train: true}
	c.override(cfg)

	if cfg.DataSource.Symbol != "MSFT" || cfg.DataSource.StartDate != "2022-03-01" {
		t.Errorf("flags not applied: %+v", cfg.DataSource)
	}
	if cfg.DataSource.EndDate != "2024-01-01" {
		t.Errorf("expected config end date to survive, got %s", cfg.DataSource.EndDate)
	}
	if !c.train || !cfg.Model.TrainBeforePredict {
		t.Error("expected training enabled")
	}
}

func TestWriteStateJSON(t *testing.T) {
	sm := session.NewManager(decimal.NewFromInt(10000), nil)
	sm.Start(model.PriceSeries{
		Symbol: "AAPL", Start: "2023-01-01", End: "2023-01-31",
		Points: []model.PricePoint{{Date: "2023-01-03", Close: decimal.RequireFromString("125.07")}},
	})
	if _, err := sm.Apply([]model.Prediction{{Date: "2023-01-03", Action: model.ActionBuy}}); err != nil {
		t.Fatal(err)
	}
	st, err := sm.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := writeStateJSON(&buf, &st); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Symbol    string `json:"symbol"`
		Portfolio struct {
			Cash   string `json:"cash"`
			Shares int64  `json:"shares"`
		} `json:"portfolio"`
		Transactions []struct {
			Price string `json:"price"`
		} `json:"transactions"`
		Processed []string `json:"processed_dates"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if got.Symbol != "AAPL" || got.Portfolio.Cash != "9874.93" || got.Portfolio.Shares != 1 {
		t.Errorf("unexpected state %+v", got)
	}
	if len(got.Transactions) != 1 || got.Transactions[0].Price != "125.07" {
		t.Errorf("unexpected transactions %+v", got.Transactions)
	}
	if len(got.Processed) != 1 || got.Processed[0] != "2023-01-03" {
		t.Errorf("unexpected processed dates %v", got.Processed)
	}
}
