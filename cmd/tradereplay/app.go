package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"TradeReplay/internal/collector"
	"TradeReplay/internal/config"
	"TradeReplay/internal/notifier"
	"TradeReplay/internal/recorder"
	"TradeReplay/internal/scheduler"
)

var configPath = flag.String("config", defaultConfigPath(), "Path to the YAML config file")

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

// loadConfig loads the config file. Callers validate after applying flag overrides.
func loadConfig() (*config.Config, error) {
	return config.Load(*configPath)
}

// newCollector wires the configured price source, predictor and trainer.
// local forces the in-process SMA predictor.
func newCollector(cfg *config.Config, local bool) *collector.Collector {
	var backend *collector.BackendClient
	if cfg.DataSource.Provider == "backend" || (cfg.Model.Provider == "backend" && !local) {
		backend = collector.NewBackendClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, cfg.Proxy, cfg.Timeout())
	}

	var fetcher collector.PriceFetcher
	switch cfg.DataSource.Provider {
	case "yahoo":
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{Price: 100}
	default:
		fetcher = backend
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	var predictor collector.Predictor
	var trainer collector.Trainer
	if local || cfg.Model.Provider == "local" {
		p := collector.NewSMAPredictor(cfg.Model.LocalSMAPeriod)
		p.RSIPeriod = cfg.Model.LocalRSIPeriod
		predictor = p
	} else {
		predictor = backend
		trainer = backend
	}
	log.Printf("[INFO] predictor: %s", predictor.Name())

	return collector.NewCollector(fetcher, predictor, trainer)
}

// newRecorder opens the SQLite audit trail, falling back to noop.
func newRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

// newNotifier returns the Telegram notifier when configured, else the log notifier.
func newNotifier(cfg *config.Config) notifier.Notifier {
	if cfg.TelegramEnabled() {
		return notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}
	return notifier.LogNotifier{}
}

// newJob builds the replay job for the configured symbol and range.
func newJob(cfg *config.Config) (scheduler.Job, error) {
	start, end, err := cfg.DateRange()
	if err != nil {
		return scheduler.Job{}, fmt.Errorf("config date range: %w", err)
	}
	return scheduler.Job{
		Symbol: cfg.DataSource.Symbol,
		Start:  start,
		End:    end,
		Train:  cfg.Model.TrainBeforePredict,
	}, nil
}
