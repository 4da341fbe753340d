package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"BollingerChart/internal/calculator"
	"BollingerChart/internal/chart"
	"BollingerChart/internal/model"
)

// DefaultNotes is printed under the chart when no notes are configured.
const DefaultNotes = "Data source: Yahoo Finance\nNote: Data was processed and plotted in Go"

// Config holds all application configuration.
type Config struct {
	Chart struct {
		Symbols    []string `yaml:"symbols"`
		StartYear  int      `yaml:"start_year"`
		Years      int      `yaml:"years"`
		Selection  string   `yaml:"selection"`
		Style      string   `yaml:"style"`
		Notes      string   `yaml:"notes"`
		Window     int      `yaml:"window"`
		Multiplier float64  `yaml:"multiplier"`
	} `yaml:"chart"`
	Output struct {
		Dir       string `yaml:"dir"`
		Format    string `yaml:"format"`
		ExportCSV bool   `yaml:"export_csv"`
	} `yaml:"output"`
	DataSource struct {
		Provider string `yaml:"provider"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"data_source"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy    string `yaml:"proxy"`
	LogLevel string `yaml:"log_level"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CHART_SYMBOLS"); v != "" {
		cfg.Chart.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("CHART_START_YEAR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Chart.StartYear = n
		}
	}
	if v := os.Getenv("CHART_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	// Defaults
	if len(cfg.Chart.Symbols) == 0 {
		cfg.Chart.Symbols = []string{"SPY"}
	}
	if cfg.Chart.StartYear == 0 {
		cfg.Chart.StartYear = 2010
	}
	if cfg.Chart.Years == 0 {
		cfg.Chart.Years = 5
	}
	if cfg.Chart.Selection == "" {
		cfg.Chart.Selection = string(model.SelectionLine)
	}
	if cfg.Chart.Style == "" {
		cfg.Chart.Style = string(model.StyleClean)
	}
	if cfg.Chart.Notes == "" {
		cfg.Chart.Notes = DefaultNotes
	}
	if cfg.Chart.Window == 0 {
		cfg.Chart.Window = calculator.DefaultWindow
	}
	if cfg.Chart.Multiplier == 0 {
		cfg.Chart.Multiplier = calculator.DefaultMultiplier
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "graphs"
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "pdf"
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
		if cfg.DataSource.APIKey != "" {
			cfg.DataSource.Provider = "alphavantage"
		}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and recognized.
func (c *Config) Validate() error {
	if len(c.Chart.Symbols) == 0 {
		return fmt.Errorf("%w: chart.symbols is required", model.ErrConfiguration)
	}
	for _, s := range c.Chart.Symbols {
		if err := checkSymbol(s); err != nil {
			return err
		}
	}
	if c.Chart.Years <= 0 {
		return fmt.Errorf("%w: chart.years must be positive", model.ErrConfiguration)
	}
	if c.Chart.StartYear < 1900 {
		return fmt.Errorf("%w: chart.start_year %d out of range", model.ErrConfiguration, c.Chart.StartYear)
	}
	if _, err := model.ParseSelection(c.Chart.Selection); err != nil {
		return err
	}
	if _, err := model.ParseStyle(c.Chart.Style); err != nil {
		return err
	}
	if c.Chart.Window < 2 {
		return fmt.Errorf("%w: chart.window must be at least 2", model.ErrConfiguration)
	}
	if c.Chart.Multiplier <= 0 {
		return fmt.Errorf("%w: chart.multiplier must be positive", model.ErrConfiguration)
	}
	if !slices.Contains(chart.SupportedFormats, strings.ToLower(c.Output.Format)) {
		return fmt.Errorf("%w: output.format %q not supported", model.ErrConfiguration, c.Output.Format)
	}
	switch c.DataSource.Provider {
	case "yahoo":
	case "alphavantage":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("%w: data_source.api_key is required for alphavantage", model.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown data_source.provider %q", model.ErrConfiguration, c.DataSource.Provider)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("%w: telegram.bot_token and telegram.chat_id must be set together", model.ErrConfiguration)
	}
	return nil
}

// ChartRequest converts the validated chart and output sections.
func (c *Config) ChartRequest() (model.ChartRequest, error) {
	sel, err := model.ParseSelection(c.Chart.Selection)
	if err != nil {
		return model.ChartRequest{}, err
	}
	style, err := model.ParseStyle(c.Chart.Style)
	if err != nil {
		return model.ChartRequest{}, err
	}
	symbols := make([]string, len(c.Chart.Symbols))
	for i, s := range c.Chart.Symbols {
		if err := checkSymbol(s); err != nil {
			return model.ChartRequest{}, err
		}
		symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return model.ChartRequest{
		Symbols:    symbols,
		StartYear:  c.Chart.StartYear,
		Years:      c.Chart.Years,
		Selection:  sel,
		Style:      style,
		Notes:      c.Chart.Notes,
		Window:     c.Chart.Window,
		Multiplier: c.Chart.Multiplier,
		OutputDir:  c.Output.Dir,
		Format:     strings.ToLower(c.Output.Format),
		ExportCSV:  c.Output.ExportCSV,
	}, nil
}

// checkSymbol rejects symbols that cannot be part of the output file name.
func checkSymbol(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: chart.symbols contains an empty symbol", model.ErrConfiguration)
	}
	if strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("%w: symbol %q contains a path separator", model.ErrConfiguration, s)
	}
	return nil
}

func splitSymbols(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
