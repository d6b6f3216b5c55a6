package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. It is loaded once at startup
// and passed explicitly into the engines; nothing reads it as process-wide
// mutable state.
type Config struct {
	Tickers      []string `yaml:"tickers"`
	LookbackDays int      `yaml:"lookback_days"`
	RSIPeriod    int      `yaml:"rsi_period"`
	Snapshot     struct {
		WindowDays int    `yaml:"window_days"`
		MetricsCSV string `yaml:"metrics_csv"`
		PricesCSV  string `yaml:"prices_csv"`
	} `yaml:"snapshot"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Feed struct {
		Source string `yaml:"source"` // "yahoo" or "mock"
		Proxy  string `yaml:"proxy"`
	} `yaml:"feed"`
	Schedule struct {
		Cron string `yaml:"cron"` // empty means one-shot
	} `yaml:"schedule"`
}

// envOverrides mirrors the environment surface of the original deployment.
type envOverrides struct {
	Tickers      string `envconfig:"TICKERS"`
	LookbackDays int    `envconfig:"LOOKBACK_DAYS"`
	RSIPeriod    int    `envconfig:"RSI_PERIOD"`
	SQLitePath   string `envconfig:"SQLITE_PATH"`
	MetricsCSV   string `envconfig:"EXPORT_CSV"`
	FeedSource   string `envconfig:"FEED_SOURCE"`
	Proxy        string `envconfig:"HTTPS_PROXY"`
	Cron         string `envconfig:"PIPELINE_CRON"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides, then defaults. Tickers are trimmed and upper-cased.
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

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("read env overrides: %w", err)
	}
	if env.Tickers != "" {
		cfg.Tickers = strings.Split(env.Tickers, ",")
	}
	if env.LookbackDays > 0 {
		cfg.LookbackDays = env.LookbackDays
	}
	if env.RSIPeriod > 0 {
		cfg.RSIPeriod = env.RSIPeriod
	}
	if env.SQLitePath != "" {
		cfg.Database.SQLitePath = env.SQLitePath
	}
	if env.MetricsCSV != "" {
		cfg.Snapshot.MetricsCSV = env.MetricsCSV
	}
	if env.FeedSource != "" {
		cfg.Feed.Source = env.FeedSource
	}
	if env.Proxy != "" {
		cfg.Feed.Proxy = env.Proxy
	}
	if env.Cron != "" {
		cfg.Schedule.Cron = env.Cron
	}

	// Defaults
	if len(cfg.Tickers) == 0 {
		cfg.Tickers = []string{"AAPL", "MSFT", "TSLA", "SPY", "QQQ"}
	}
	if cfg.LookbackDays == 0 {
		cfg.LookbackDays = 400
	}
	if cfg.RSIPeriod == 0 {
		cfg.RSIPeriod = 14
	}
	if cfg.Snapshot.WindowDays == 0 {
		cfg.Snapshot.WindowDays = 120
	}
	if cfg.Snapshot.MetricsCSV == "" {
		cfg.Snapshot.MetricsCSV = "data/daily_metrics.csv"
	}
	if cfg.Snapshot.PricesCSV == "" {
		cfg.Snapshot.PricesCSV = "data/raw_prices_export.csv"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/market.db"
	}
	if cfg.Feed.Source == "" {
		cfg.Feed.Source = "yahoo"
	}

	normalized := make([]string, 0, len(cfg.Tickers))
	for _, t := range cfg.Tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			normalized = append(normalized, t)
		}
	}
	cfg.Tickers = normalized

	return cfg, nil
}

// Validate checks the boundary contract before anything reaches the
// engines.
func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return fmt.Errorf("tickers must not be empty")
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("lookback_days must be positive")
	}
	if c.RSIPeriod <= 0 {
		return fmt.Errorf("rsi_period must be positive")
	}
	if c.Snapshot.WindowDays <= 0 {
		return fmt.Errorf("snapshot.window_days must be positive")
	}
	if c.Feed.Source != "yahoo" && c.Feed.Source != "mock" {
		return fmt.Errorf("feed.source must be yahoo or mock, got %q", c.Feed.Source)
	}
	return nil
}
