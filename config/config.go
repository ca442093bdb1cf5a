package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultDatasetURL is the public NYC listings snapshot the dashboard was built around.
const DefaultDatasetURL = "https://raw.githubusercontent.com/greenboi105/python_nyc/main/AB_NYC_2019.csv"

// Config holds dashboard configuration.
type Config struct {
	DatasetURL    string        `env:"DASHBOARD_DATASET_URL"`
	DatasetTable  string        `env:"DASHBOARD_DATASET_TABLE"`
	Addr          string        `env:"DASHBOARD_ADDR"`
	MetricsAddr   string        `env:"DASHBOARD_METRICS_ADDR"`
	Timeout       time.Duration `env:"DASHBOARD_FETCH_TIMEOUT"`
	UserAgent     string        `env:"DASHBOARD_USER_AGENT"`
	MapboxToken   string        `env:"DASHBOARD_MAPBOX_TOKEN"`
	StylesheetURL string        `env:"DASHBOARD_STYLESHEET_URL"`
	PlotlyURL     string        `env:"DASHBOARD_PLOTLY_URL"`
	Title         string        `env:"DASHBOARD_TITLE"`
	ExportDir     string        `env:"DASHBOARD_EXPORT_DIR"`
	ExportFormat  string        `env:"DASHBOARD_EXPORT_FORMAT"` // csv or json
	Verbose       bool          `env:"DASHBOARD_VERBOSE"`
}

// DefaultConfig returns defaults that serve the public dataset on :8050.
func DefaultConfig() *Config {
	return &Config{
		DatasetURL:    DefaultDatasetURL,
		DatasetTable:  "listings",
		Addr:          ":8050",
		MetricsAddr:   "",
		Timeout:       60 * time.Second,
		UserAgent:     "go-nyc-airbnb/1.0 (+https://github.com/aluiziolira/go-nyc-airbnb)",
		StylesheetURL: "https://cdn.jsdelivr.net/npm/bootswatch@4.5.2/dist/cyborg/bootstrap.min.css",
		PlotlyURL:     "https://cdn.plot.ly/plotly-2.35.2.min.js",
		Title:         "NYC Airbnb Analytics",
		ExportFormat:  "csv",
	}
}

// Load reads an optional .env file and overlays DASHBOARD_* variables on the defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := DefaultConfig()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.ExportFormat = strings.ToLower(cfg.ExportFormat)
	return cfg, nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatasetURL) == "" {
		return fmt.Errorf("dataset URL cannot be empty")
	}
	parsed, err := url.Parse(c.DatasetURL)
	if err != nil {
		return fmt.Errorf("invalid dataset URL: %w", err)
	}
	if (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host == "" {
		return fmt.Errorf("dataset URL must include a host")
	}

	if c.DatasetTable == "" {
		return fmt.Errorf("dataset table cannot be empty")
	}
	if c.Addr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.PlotlyURL == "" {
		return fmt.Errorf("plotly URL cannot be empty")
	}
	if c.ExportFormat != "csv" && c.ExportFormat != "json" {
		return fmt.Errorf("export format must be csv or json")
	}

	return nil
}

// EnvInt reads an integer environment variable. ok is false when the variable is unset.
func EnvInt(key string) (value int, ok bool, err error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err = strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// EnvString reads a non-empty environment variable.
func EnvString(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", false
	}
	return value, true
}
