package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_dashboard/internal/domain"
)

var testStart = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// stubSource returns fixed prices or a fixed error. When gate is set each
// fetch blocks until a value is sent on it.
type stubSource struct {
	mu     sync.Mutex
	prices map[domain.AssetID]float64
	err    error
	gate   chan struct{}
	calls  atomic.Int32
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) FetchPrices(ctx context.Context, ids []domain.AssetID) (map[domain.AssetID]domain.PriceEntry, error) {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[domain.AssetID]domain.PriceEntry, len(ids))
	for _, id := range ids {
		p, ok := s.prices[id]
		if !ok {
			return nil, &domain.FetchError{Kind: domain.ErrMalformedResponse}
		}
		out[id] = domain.PriceEntry{AssetID: id, BasePrice: p}
	}
	return out, nil
}

func (s *stubSource) set(prices map[domain.AssetID]float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices = prices
	s.err = err
}

func testAssets() []domain.Asset {
	return []domain.Asset{
		{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin", FallbackPrice: 50000},
		{
			ID: "ethereum", Symbol: "ETH", Name: "Ethereum",
			FallbackPrice: 3000, FallbackChange24h: -1.5,
			FallbackMarketCap: 3.6e11, FallbackVolume24h: 1.8e10,
		},
	}
}

func testRates(t *testing.T) *domain.RateTable {
	t.Helper()
	table, err := domain.NewRateTable("USD", map[domain.CurrencyCode]float64{"USD": 1, "EUR": 0.9, "INR": 85.42})
	require.NoError(t, err)
	return table
}
