package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_dashboard/internal/domain"
)

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`server: {port: 9000}`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultSource, cfg.Market.Source)
	assert.Equal(t, "USD", cfg.Market.BaseCurrency)
	assert.Equal(t, "USD", cfg.Market.DisplayCurrency)
	assert.Equal(t, domain.RangeShort, cfg.Market.Range())
	assert.Equal(t, DefaultRefreshInterval, cfg.Market.RefreshInterval)
	assert.Equal(t, DefaultAPITimeout, cfg.Market.API.Timeout)
	assert.Len(t, cfg.Market.Assets, 16)
	assert.Len(t, cfg.Market.Indexes, 3)
	assert.Equal(t, DefaultRates(), cfg.Market.Rates)
}

func TestParse_FullFile(t *testing.T) {
	data := []byte(`
logging:
  level: debug
  encoding: console
market:
  source: synthetic
  base_currency: usd
  display_currency: eur
  time_range: long
  refresh_interval: 2s
  api:
    timeout: 1500ms
  rates: {USD: 1.0, EUR: 0.9}
  assets:
    - {id: bitcoin, symbol: BTC, name: Bitcoin, fallback_price: 100}
  indexes: []
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "synthetic", cfg.Market.Source)
	assert.Equal(t, 2*time.Second, cfg.Market.RefreshInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.Market.API.Timeout)
	assert.Equal(t, domain.RangeLong, cfg.Market.Range())
	assert.Empty(t, cfg.Market.Indexes)
	require.Len(t, cfg.Market.Assets, 1)
	assert.Equal(t, domain.AssetID("bitcoin"), cfg.Market.Assets[0].ID)

	table, err := cfg.Market.RateTable()
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyCode("USD"), table.Base())
	rate, err := table.Rate("EUR")
	require.NoError(t, err)
	assert.Equal(t, 0.9, rate)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown source", `market: {source: random}`, "market.source"},
		{"display currency not in table", `market: {display_currency: JPY}`, "display_currency"},
		{"base missing from rates", `market: {base_currency: CHF}`, "base currency CHF missing"},
		{"bad time range", `market: {time_range: forever}`, "time_range"},
		{"negative rate", `market: {rates: {USD: 1, EUR: -1}}`, "must be positive"},
		{"duplicate asset", `market: {assets: [{id: a}, {id: a}]}`, "duplicate id"},
		{"negative fallback", `market: {assets: [{id: a, fallback_price: -1}]}`, "fallback_price"},
		{"nan fallback", `market: {assets: [{id: a, fallback_price: .nan}]}`, "fallback_price must be finite"},
		{"infinite fallback", `market: {assets: [{id: a, fallback_price: .inf}]}`, "fallback_price must be finite"},
		{"nan fallback change", `market: {assets: [{id: a, fallback_change_24h: .nan}]}`, "fallback_change_24h"},
		{"infinite fallback market cap", `market: {assets: [{id: a, fallback_market_cap: .inf}]}`, "fallback_market_cap"},
		{"negative fallback volume", `market: {assets: [{id: a, fallback_volume_24h: -5}]}`, "fallback_volume_24h"},
		{"nan rate", `market: {rates: {USD: 1, EUR: .nan}}`, "must be positive"},
		{"infinite rate", `market: {rates: {USD: 1, EUR: .inf}}`, "must be positive and finite"},
		{"infinite baseline", `market: {indexes: [{id: ix, baseline: .inf, delta: 1}]}`, "baseline must be finite"},
		{"nan delta", `market: {indexes: [{id: ix, baseline: 1, delta: .nan}]}`, "delta must be positive"},
		{"index without delta", `market: {indexes: [{id: ix, baseline: 1}]}`, "delta must be positive"},
		{"index clashes with asset", `market: {assets: [{id: x}], indexes: [{id: x, delta: 1}]}`, "duplicate series id"},
		{"port", `server: {port: 70000}`, "server.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("market: {time_range: medium}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, domain.RangeMedium, cfg.Market.Range())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}
