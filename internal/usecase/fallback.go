package usecase

import (
	"time"

	"github.com/vitos/crypto_dashboard/internal/domain"
)

// FallbackDataset serves the hand-authored market data of the configured
// assets whenever the live source fails.
type FallbackDataset struct {
	assets map[domain.AssetID]domain.Asset
}

func NewFallbackDataset(assets []domain.Asset) *FallbackDataset {
	m := make(map[domain.AssetID]domain.Asset, len(assets))
	for _, a := range assets {
		m[a.ID] = a
	}
	return &FallbackDataset{assets: m}
}

func (f *FallbackDataset) Price(id domain.AssetID) (float64, bool) {
	a, ok := f.assets[id]
	return a.FallbackPrice, ok
}

// Entries returns fallback entries for ids, stamped with now.
func (f *FallbackDataset) Entries(ids []domain.AssetID, now time.Time) map[domain.AssetID]domain.PriceEntry {
	out := make(map[domain.AssetID]domain.PriceEntry, len(ids))
	for _, id := range ids {
		a, ok := f.assets[id]
		if !ok {
			continue
		}
		out[id] = domain.PriceEntry{
			AssetID:    id,
			BasePrice:  a.FallbackPrice,
			Change24h:  a.FallbackChange24h,
			MarketCap:  a.FallbackMarketCap,
			Volume24h:  a.FallbackVolume24h,
			ObservedAt: now,
		}
	}
	return out
}
