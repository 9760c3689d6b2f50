// Package app assembles the dashboard components from configuration.
package app

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/vitos/crypto_dashboard/internal/config"
	"github.com/vitos/crypto_dashboard/internal/domain"
	"github.com/vitos/crypto_dashboard/internal/infrastructure/exchange"
	"github.com/vitos/crypto_dashboard/internal/metrics"
	"github.com/vitos/crypto_dashboard/internal/usecase"
	"go.uber.org/zap"
)

// NewSource builds the price source selected by m.Source. Live and synthetic
// data are never mixed: exactly one of them feeds the dashboard.
func NewSource(m config.MarketConfig, walk *usecase.RandomWalk, clk clockwork.Clock) (domain.PriceSource, domain.Source) {
	if domain.Source(m.Source) == domain.SourceSynthetic {
		return usecase.NewSyntheticSource(usecase.NewFallbackDataset(m.Assets), walk, usecase.DefaultVolatility, clk.Now), domain.SourceSynthetic
	}

	opts := []exchange.Option{
		exchange.WithTimeout(m.API.Timeout),
		exchange.WithRateLimit(m.API.RatePerMinute),
		exchange.WithClock(clk.Now),
	}
	if m.API.APIKey != "" {
		opts = append(opts, exchange.WithAPIKey(m.API.APIKey))
	}
	return exchange.NewCoinGeckoAdapter(m.API.BaseURL, domain.ParseCurrency(m.BaseCurrency), opts...), domain.SourceLive
}

// NewMarketService wires a market service for cfg.
func NewMarketService(cfg *config.Config, clk clockwork.Clock, m *metrics.Metrics, logger *zap.Logger) (*usecase.MarketService, error) {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	rates, err := cfg.Market.RateTable()
	if err != nil {
		return nil, fmt.Errorf("rate table: %w", err)
	}

	walk := usecase.NewRandomWalk(cfg.Market.Seed)
	source, kind := NewSource(cfg.Market, walk, clk)

	indexes := make([]usecase.IndexChart, len(cfg.Market.Indexes))
	for i, ix := range cfg.Market.Indexes {
		indexes[i] = usecase.IndexChart{ID: ix.ID, Name: ix.Name, Baseline: ix.Baseline, Delta: ix.Delta}
	}

	return usecase.NewMarketService(usecase.MarketServiceConfig{
		Assets:          cfg.Market.Assets,
		Indexes:         indexes,
		Rates:           rates,
		DisplayCurrency: domain.ParseCurrency(cfg.Market.DisplayCurrency),
		TimeRange:       cfg.Market.Range(),
		RefreshInterval: cfg.Market.RefreshInterval,
		Source:          source,
		SourceKind:      kind,
		Walk:            walk,
	}, clk, m, logger)
}
