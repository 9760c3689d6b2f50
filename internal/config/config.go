// Package config loads the dashboard YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/vitos/crypto_dashboard/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Market  MarketConfig  `yaml:"market"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"` // json or console
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type MarketConfig struct {
	Source          string             `yaml:"source"` // live or synthetic
	BaseCurrency    string             `yaml:"base_currency"`
	DisplayCurrency string             `yaml:"display_currency"`
	TimeRange       string             `yaml:"time_range"`
	RefreshInterval time.Duration      `yaml:"refresh_interval"`
	API             APIConfig          `yaml:"api"`
	Rates           map[string]float64 `yaml:"rates"`
	Assets          []domain.Asset     `yaml:"assets"`
	Indexes         []IndexConfig      `yaml:"indexes"`
	// Seed fixes the synthetic random walks. Zero seeds from the clock.
	Seed uint64 `yaml:"seed"`
}

type APIConfig struct {
	BaseURL       string        `yaml:"base_url"`
	APIKey        string        `yaml:"api_key"`
	Timeout       time.Duration `yaml:"timeout"`
	RatePerMinute int           `yaml:"rate_per_minute"`
}

// IndexConfig describes a chart series fed by the synthetic random walk.
type IndexConfig struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Baseline float64 `yaml:"baseline"`
	Delta    float64 `yaml:"delta"`
}

// Load reads, defaults and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// RateTable builds the immutable rate table described by the config.
func (m MarketConfig) RateTable() (*domain.RateTable, error) {
	rates := make(map[domain.CurrencyCode]float64, len(m.Rates))
	for code, r := range m.Rates {
		rates[domain.ParseCurrency(code)] = r
	}
	return domain.NewRateTable(domain.ParseCurrency(m.BaseCurrency), rates)
}

func (m MarketConfig) Range() domain.TimeRange {
	return domain.TimeRange(m.TimeRange)
}
