package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vitos/crypto_dashboard/internal/domain"
)

// DefaultVolatility is the largest synthetic step as a fraction of price.
const DefaultVolatility = 0.005

// SyntheticSource is the simulated price source. Each asset random-walks from
// its fallback price; it is selected by configuration and never mixed with
// live data.
type SyntheticSource struct {
	mu         sync.Mutex
	fallback   *FallbackDataset
	walk       *RandomWalk
	volatility float64
	last       map[domain.AssetID]float64
	timeNow    func() time.Time
}

func NewSyntheticSource(fallback *FallbackDataset, walk *RandomWalk, volatility float64, now func() time.Time) *SyntheticSource {
	if volatility <= 0 {
		volatility = DefaultVolatility
	}
	if now == nil {
		now = time.Now
	}
	return &SyntheticSource{
		fallback:   fallback,
		walk:       walk,
		volatility: volatility,
		last:       make(map[domain.AssetID]float64),
		timeNow:    now,
	}
}

func (s *SyntheticSource) Name() string { return "synthetic" }

func (s *SyntheticSource) FetchPrices(ctx context.Context, ids []domain.AssetID) (map[domain.AssetID]domain.PriceEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.FetchError{Kind: domain.ErrNetworkFailure, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timeNow()
	out := make(map[domain.AssetID]domain.PriceEntry, len(ids))
	for _, id := range ids {
		base, ok := s.fallback.Price(id)
		if !ok {
			return nil, &domain.FetchError{Kind: domain.ErrMalformedResponse, Err: fmt.Errorf("no synthetic baseline for %s", id)}
		}
		prev, ok := s.last[id]
		if !ok {
			prev = base
		}
		next := s.walk.Next(prev, max(prev, base)*s.volatility)
		s.last[id] = next

		var change float64
		if base > 0 {
			change = (next - base) / base * 100
		}
		out[id] = domain.PriceEntry{
			AssetID:    id,
			BasePrice:  next,
			Change24h:  change,
			ObservedAt: now,
		}
	}
	return out, nil
}
