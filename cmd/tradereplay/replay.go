package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"TradeReplay/internal/config"
	"TradeReplay/internal/engine"
	"TradeReplay/internal/model"
	"TradeReplay/internal/notifier"
	"TradeReplay/internal/scheduler"
	"TradeReplay/internal/session"
)

type replayCmd struct {
	symbol string
	start  string
	end    string
	train  bool
	local  bool
	json   bool
	notify bool
}

func (*replayCmd) Name() string     { return "replay" }
func (*replayCmd) Synopsis() string { return "replay model predictions over a historical range once" }
func (*replayCmd) Usage() string {
	return `tradereplay replay [-symbol AAPL] [-start 2023-01-01] [-end 2024-01-01] [-train] [-local] [-json] [-notify]

  Fetches closes, asks the model for BUY/SELL/HOLD signals and replays them
  against a fresh portfolio. Flags override the config file.
`
}

func (c *replayCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "Ticker to replay (defaults to data_source.symbol)")
	f.StringVar(&c.start, "start", "", "First date, YYYY-MM-DD (defaults to data_source.start_date)")
	f.StringVar(&c.end, "end", "", "End date, YYYY-MM-DD (defaults to data_source.end_date)")
	f.BoolVar(&c.train, "train", false, "Train the model on the range before predicting")
	f.BoolVar(&c.local, "local", false, "Use the local SMA crossover predictor instead of the backend model")
	f.BoolVar(&c.json, "json", false, "Print the final session state as JSON")
	f.BoolVar(&c.notify, "notify", false, "Also send the report to Telegram when configured")
}

func (c *replayCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	c.override(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	job, err := newJob(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	rec := newRecorder(cfg)
	defer rec.Close()

	var n notifier.Notifier = writerNotifier{w: os.Stdout}
	switch {
	case c.notify:
		n = newNotifier(cfg)
	case c.json:
		n = writerNotifier{w: io.Discard}
	}

	sm := session.NewManager(cfg.StartingCash(), rec)
	sched := scheduler.NewScheduler(ctx, newCollector(cfg, c.local), sm,
		notifier.NewFormatter(cfg.Portfolio.Currency), n, job)

	if _, err := sched.RunNow(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		st, err := sm.Snapshot()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := writeStateJSON(os.Stdout, &st); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

func (c *replayCmd) override(cfg *config.Config) {
	if c.symbol != "" {
		cfg.DataSource.Symbol = strings.ToUpper(c.symbol)
	}
	if c.start != "" {
		cfg.DataSource.StartDate = c.start
	}
	if c.end != "" {
		cfg.DataSource.EndDate = c.end
	}
	if c.train {
		cfg.Model.TrainBeforePredict = true
	}
	c.train = cfg.Model.TrainBeforePredict
}

// writerNotifier prints reports to w.
type writerNotifier struct {
	w io.Writer
}

func (n writerNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	_, err := fmt.Fprintln(n.w, text)
	return err
}

type stateJSON struct {
	Session      string                    `json:"session"`
	Symbol       string                    `json:"symbol"`
	Start        string                    `json:"start"`
	End          string                    `json:"end"`
	StartingCash string                    `json:"starting_cash"`
	Portfolio    model.Portfolio           `json:"portfolio"`
	Transactions []model.TransactionRecord `json:"transactions"`
	Outcomes     []model.Outcome           `json:"outcomes"`
	Processed    []string                  `json:"processed_dates"`
	Summary      engine.Summary            `json:"summary"`
}

func writeStateJSON(w io.Writer, st *session.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stateJSON{
		Session:      st.ID,
		Symbol:       st.Symbol,
		Start:        st.Start,
		End:          st.End,
		StartingCash: st.StartingCash.String(),
		Portfolio:    st.Portfolio,
		Transactions: st.Ledger,
		Outcomes:     st.Outcomes,
		Processed:    st.Processed.Dates(),
		Summary:      st.Summary,
	})
}
