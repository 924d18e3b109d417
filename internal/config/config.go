package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"TradeReplay/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Backend struct {
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"backend"`
	DataSource struct {
		Provider  string `yaml:"provider"` // "backend", "yahoo" or "mock"
		Symbol    string `yaml:"symbol"`
		StartDate string `yaml:"start_date"`
		EndDate   string `yaml:"end_date"`
	} `yaml:"data_source"`
	Portfolio struct {
		StartingCash float64 `yaml:"starting_cash"`
		Currency     string  `yaml:"currency"`
	} `yaml:"portfolio"`
	Model struct {
		Provider           string `yaml:"provider"` // "backend" or "local"
		TrainBeforePredict bool   `yaml:"train_before_predict"`
		LocalSMAPeriod     int    `yaml:"local_sma_period"`
		LocalRSIPeriod     int    `yaml:"local_rsi_period"`
	} `yaml:"model"`
	Schedule struct {
		ReplayCron string `yaml:"replay_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("BACKEND_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("BACKEND_API_KEY"); v != "" {
		cfg.Backend.APIKey = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("START_DATE"); v != "" {
		cfg.DataSource.StartDate = v
	}
	if v := os.Getenv("END_DATE"); v != "" {
		cfg.DataSource.EndDate = v
	}
	if v := os.Getenv("STARTING_CASH"); v != "" {
		var cash float64
		if _, err := fmt.Sscanf(v, "%f", &cash); err == nil {
			cfg.Portfolio.StartingCash = cash
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_REPLAY"); v != "" {
		cfg.Schedule.ReplayCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:8000"
	}
	if cfg.Backend.TimeoutSeconds == 0 {
		cfg.Backend.TimeoutSeconds = 120
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "backend"
	}
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "AAPL"
	}
	if cfg.DataSource.StartDate == "" {
		cfg.DataSource.StartDate = "2023-01-01"
	}
	if cfg.DataSource.EndDate == "" {
		cfg.DataSource.EndDate = "2024-01-01"
	}
	if cfg.Portfolio.StartingCash == 0 {
		cfg.Portfolio.StartingCash = 10000
	}
	if cfg.Portfolio.Currency == "" {
		cfg.Portfolio.Currency = "USD"
	}
	if cfg.Model.Provider == "" {
		cfg.Model.Provider = "backend"
	}
	if cfg.Model.LocalSMAPeriod == 0 {
		cfg.Model.LocalSMAPeriod = 20
	}
	if cfg.Schedule.ReplayCron == "" {
		cfg.Schedule.ReplayCron = "0 30 22 * * 1-5"
	}

	return cfg, nil
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "backend", "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider must be backend, yahoo or mock, got %q", c.DataSource.Provider)
	}
	switch c.Model.Provider {
	case "backend", "local":
	default:
		return fmt.Errorf("model.provider must be backend or local, got %q", c.Model.Provider)
	}
	if (c.DataSource.Provider == "backend" || c.Model.Provider == "backend") && c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if strings.TrimSpace(c.DataSource.Symbol) == "" {
		return fmt.Errorf("data_source.symbol is required")
	}
	start, end, err := c.DateRange()
	if err != nil {
		return err
	}
	if !end.After(start) {
		return fmt.Errorf("data_source.end_date must be after start_date")
	}
	if c.Portfolio.StartingCash <= 0 {
		return fmt.Errorf("portfolio.starting_cash must be positive")
	}
	if c.Model.LocalSMAPeriod < 1 {
		return fmt.Errorf("model.local_sma_period must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.ReplayCron); err != nil {
		return fmt.Errorf("schedule.replay_cron: %w", err)
	}
	return nil
}

// DateRange parses the configured start and end dates.
func (c *Config) DateRange() (start, end time.Time, err error) {
	start, err = time.Parse(model.DateLayout, c.DataSource.StartDate)
	if err != nil {
		return start, end, fmt.Errorf("data_source.start_date: %w", err)
	}
	end, err = time.Parse(model.DateLayout, c.DataSource.EndDate)
	if err != nil {
		return start, end, fmt.Errorf("data_source.end_date: %w", err)
	}
	return start, end, nil
}

// StartingCash returns the configured balance as a decimal amount.
func (c *Config) StartingCash() decimal.Decimal {
	return decimal.NewFromFloat(c.Portfolio.StartingCash)
}

// Timeout returns the backend request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// TelegramEnabled reports whether chat delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
