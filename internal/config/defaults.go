package config

import (
	"time"

	"github.com/vitos/crypto_dashboard/internal/domain"
)

// Default values for optional configuration fields.
const (
	DefaultLogLevel        = "info"
	DefaultLogEncoding     = "json"
	DefaultPort            = 8080
	DefaultShutdownTimeout = 5 * time.Second
	DefaultSource          = "live"
	DefaultBaseCurrency    = "USD"
	DefaultTimeRange       = string(domain.RangeShort)
	DefaultRefreshInterval = 10 * time.Second
	DefaultAPIBaseURL      = "https://api.coingecko.com/api/v3"
	DefaultAPITimeout      = 3 * time.Second
	DefaultRatePerMinute   = 30
)

// DefaultRates are the static conversion factors relative to USD.
func DefaultRates() map[string]float64 {
	return map[string]float64{
		"USD": 1.0,
		"INR": 85.42,
		"EUR": 0.95,
		"AED": 3.67,
		"GBP": 0.80,
	}
}

// DefaultAssets is the tracked asset list with its fallback market data.
func DefaultAssets() []domain.Asset {
	return []domain.Asset{
		{
			ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin",
			FallbackPrice: 187432.51, FallbackChange24h: 3.21,
			FallbackMarketCap: 3654789123451, FallbackVolume24h: 98765432123,
		},
		{
			ID: "ethereum", Symbol: "ETH", Name: "Ethereum",
			FallbackPrice: 12876.32, FallbackChange24h: 2.54,
			FallbackMarketCap: 1569854712345, FallbackVolume24h: 45678912345,
		},
		{
			ID: "binancecoin", Symbol: "BNB", Name: "Binance Coin",
			FallbackPrice: 2162.34, FallbackChange24h: -1.23,
			FallbackMarketCap: 385678912345, FallbackVolume24h: 12345678901,
		},
		{
			ID: "ripple", Symbol: "XRP", Name: "Ripple",
			FallbackPrice: 3.87, FallbackChange24h: -0.76,
			FallbackMarketCap: 189876543210, FallbackVolume24h: 7654321098,
		},
		{
			ID: "cardano", Symbol: "ADA", Name: "Cardano",
			FallbackPrice: 8.76, FallbackChange24h: 4.32,
			FallbackMarketCap: 316789012345, FallbackVolume24h: 9876543210,
		},
		{
			ID: "solana", Symbol: "SOL", Name: "Solana",
			FallbackPrice: 1342.87, FallbackChange24h: 5.67,
			FallbackMarketCap: 562345678901, FallbackVolume24h: 23456789012,
		},
		{
			ID: "polkadot", Symbol: "DOT", Name: "Polkadot",
			FallbackPrice: 76.43, FallbackChange24h: 2.87,
			FallbackMarketCap: 98765432109, FallbackVolume24h: 5432109876,
		},
		{
			ID: "dogecoin", Symbol: "DOGE", Name: "Dogecoin",
			FallbackPrice: 1.23, FallbackChange24h: 7.89,
			FallbackMarketCap: 166543210987, FallbackVolume24h: 12109876543,
		},
		{
			ID: "avalanche-2", Symbol: "AVAX", Name: "Avalanche",
			FallbackPrice: 142.18, FallbackChange24h: 3.45,
			FallbackMarketCap: 58123456789, FallbackVolume24h: 2345678901,
		},
		{
			ID: "shiba-inu", Symbol: "SHIB", Name: "Shiba Inu",
			FallbackPrice: 0.00089123, FallbackChange24h: 6.54,
			FallbackMarketCap: 110765432109, FallbackVolume24h: 8765432109,
		},
		{
			ID: "polygon", Symbol: "MATIC", Name: "Polygon",
			FallbackPrice: 2.41, FallbackChange24h: -2.18,
			FallbackMarketCap: 23876543210, FallbackVolume24h: 1234567890,
		},
		{
			ID: "cosmos", Symbol: "ATOM", Name: "Cosmos",
			FallbackPrice: 31.72, FallbackChange24h: 1.96,
			FallbackMarketCap: 12345678901, FallbackVolume24h: 987654321,
		},
		{
			ID: "chainlink", Symbol: "LINK", Name: "Chainlink",
			FallbackPrice: 58.94, FallbackChange24h: 4.11,
			FallbackMarketCap: 34567890123, FallbackVolume24h: 2109876543,
		},
		{
			ID: "algorand", Symbol: "ALGO", Name: "Algorand",
			FallbackPrice: 1.87, FallbackChange24h: -0.92,
			FallbackMarketCap: 15432109876, FallbackVolume24h: 654321098,
		},
		{
			ID: "vechain", Symbol: "VET", Name: "VeChain",
			FallbackPrice: 0.29, FallbackChange24h: 2.33,
			FallbackMarketCap: 21098765432, FallbackVolume24h: 876543210,
		},
		{
			ID: "tron", Symbol: "TRX", Name: "Tron",
			FallbackPrice: 0.64, FallbackChange24h: 0.58,
			FallbackMarketCap: 56789012345, FallbackVolume24h: 3456789012,
		},
	}
}

// DefaultIndexes are the synthetic chart series.
func DefaultIndexes() []IndexConfig {
	return []IndexConfig{
		{ID: "crypto-index", Name: "Crypto Index", Baseline: 1000, Delta: 15},
		{ID: "defi-index", Name: "DeFi Index", Baseline: 250, Delta: 5},
		{ID: "volume-index", Name: "Volume Index", Baseline: 500, Delta: 20},
	}
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = DefaultLogEncoding
	}

	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	m := &c.Market
	if m.Source == "" {
		m.Source = DefaultSource
	}
	if m.BaseCurrency == "" {
		m.BaseCurrency = DefaultBaseCurrency
	}
	if m.DisplayCurrency == "" {
		m.DisplayCurrency = m.BaseCurrency
	}
	if m.TimeRange == "" {
		m.TimeRange = DefaultTimeRange
	}
	if m.RefreshInterval == 0 {
		m.RefreshInterval = DefaultRefreshInterval
	}
	if m.API.BaseURL == "" {
		m.API.BaseURL = DefaultAPIBaseURL
	}
	if m.API.Timeout == 0 {
		m.API.Timeout = DefaultAPITimeout
	}
	if m.API.RatePerMinute == 0 {
		m.API.RatePerMinute = DefaultRatePerMinute
	}
	if len(m.Rates) == 0 {
		m.Rates = DefaultRates()
	}
	if len(m.Assets) == 0 {
		m.Assets = DefaultAssets()
	}
	if m.Indexes == nil {
		m.Indexes = DefaultIndexes()
	}
}
