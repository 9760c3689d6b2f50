package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/vitos/crypto_dashboard/internal/domain"
)

// Validate checks the configuration after defaults were applied.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	m := c.Market
	if m.Source != string(domain.SourceLive) && m.Source != string(domain.SourceSynthetic) {
		errs = append(errs, fmt.Errorf("market.source must be live or synthetic, got %q", m.Source))
	}

	table, err := m.RateTable()
	if err != nil {
		errs = append(errs, fmt.Errorf("market.rates: %w", err))
	} else if !table.Has(domain.ParseCurrency(m.DisplayCurrency)) {
		errs = append(errs, fmt.Errorf("market.display_currency: %w: %s", domain.ErrUnknownCurrency, m.DisplayCurrency))
	}

	if _, err := domain.ParseTimeRange(m.TimeRange); err != nil {
		errs = append(errs, fmt.Errorf("market.time_range: %w", err))
	}
	if m.RefreshInterval <= 0 {
		errs = append(errs, errors.New("market.refresh_interval must be positive"))
	}
	if m.API.Timeout <= 0 {
		errs = append(errs, errors.New("market.api.timeout must be positive"))
	}
	if m.API.RatePerMinute < 0 {
		errs = append(errs, errors.New("market.api.rate_per_minute must not be negative"))
	}

	seen := make(map[domain.AssetID]bool, len(m.Assets))
	for i, a := range m.Assets {
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("market.assets[%d]: id is required", i))
			continue
		}
		if seen[a.ID] {
			errs = append(errs, fmt.Errorf("market.assets[%d]: duplicate id %q", i, a.ID))
		}
		seen[a.ID] = true
		if !finite(a.FallbackPrice) || a.FallbackPrice < 0 {
			errs = append(errs, fmt.Errorf("market.assets[%d]: fallback_price must be finite and not negative", i))
		}
		if !finite(a.FallbackChange24h) {
			errs = append(errs, fmt.Errorf("market.assets[%d]: fallback_change_24h must be finite", i))
		}
		if !finite(a.FallbackMarketCap) || a.FallbackMarketCap < 0 {
			errs = append(errs, fmt.Errorf("market.assets[%d]: fallback_market_cap must be finite and not negative", i))
		}
		if !finite(a.FallbackVolume24h) || a.FallbackVolume24h < 0 {
			errs = append(errs, fmt.Errorf("market.assets[%d]: fallback_volume_24h must be finite and not negative", i))
		}
	}

	indexes := make(map[string]bool, len(m.Indexes))
	for i, ix := range m.Indexes {
		if ix.ID == "" {
			errs = append(errs, fmt.Errorf("market.indexes[%d]: id is required", i))
			continue
		}
		if indexes[ix.ID] || seen[domain.AssetID(ix.ID)] {
			errs = append(errs, fmt.Errorf("market.indexes[%d]: duplicate series id %q", i, ix.ID))
		}
		indexes[ix.ID] = true
		if !finite(ix.Baseline) || ix.Baseline < 0 {
			errs = append(errs, fmt.Errorf("market.indexes[%d]: baseline must be finite and not negative", i))
		}
		if !finite(ix.Delta) || ix.Delta <= 0 {
			errs = append(errs, fmt.Errorf("market.indexes[%d]: delta must be positive", i))
		}
	}

	return errors.Join(errs...)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
