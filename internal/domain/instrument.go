package domain

import "time"

// AssetID is the provider slug of a tradable asset, e.g. "bitcoin".
type AssetID string

// Asset describes one tracked instrument. The Fallback fields are the
// hand-authored base currency figures served when the live source is
// unavailable.
type Asset struct {
	ID                AssetID `json:"id" yaml:"id"`
	Symbol            string  `json:"symbol" yaml:"symbol"`
	Name              string  `json:"name" yaml:"name"`
	FallbackPrice     float64 `json:"fallback_price" yaml:"fallback_price"`
	FallbackChange24h float64 `json:"fallback_change_24h" yaml:"fallback_change_24h"`
	FallbackMarketCap float64 `json:"fallback_market_cap" yaml:"fallback_market_cap"`
	FallbackVolume24h float64 `json:"fallback_volume_24h" yaml:"fallback_volume_24h"`
}

// PriceEntry is one observed price in the base currency. Entries are never
// mutated; the next cycle supersedes them.
type PriceEntry struct {
	AssetID    AssetID   `json:"asset_id"`
	BasePrice  float64   `json:"base_price"`
	Change24h  float64   `json:"change_24h"`
	MarketCap  float64   `json:"market_cap"`
	Volume24h  float64   `json:"volume_24h"`
	ObservedAt time.Time `json:"observed_at"`
}

// PriceSnapshot is the set of entries accepted in a single refresh cycle.
type PriceSnapshot struct {
	Entries   map[AssetID]PriceEntry `json:"entries"`
	UpdatedAt time.Time              `json:"updated_at"`
	State     RefreshState           `json:"state"`
	Source    Source                 `json:"source"`
}

// IsLoading reports whether no cycle has completed yet. Renderers must show a
// loading state rather than zero prices.
func (s PriceSnapshot) IsLoading() bool {
	return s.UpdatedAt.IsZero()
}

// Entry returns the entry for id, if the snapshot holds one.
func (s PriceSnapshot) Entry(id AssetID) (PriceEntry, bool) {
	e, ok := s.Entries[id]
	return e, ok
}
