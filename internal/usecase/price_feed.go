package usecase

import (
	"context"
	"time"

	"github.com/vitos/crypto_dashboard/internal/domain"
	"github.com/vitos/crypto_dashboard/internal/metrics"
	"go.uber.org/zap"
)

// PriceRefresher fetches the asset batch and, on any fetch error, substitutes
// the fallback dataset. Its commit replaces the cache snapshot and appends
// each fresh price to the asset's series.
type PriceRefresher struct {
	name     string
	source   domain.PriceSource
	kind     domain.Source
	fallback *FallbackDataset
	cache    *PriceCache
	series   *SeriesSet
	ids      []domain.AssetID
	timeNow  func() time.Time
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewPriceRefresher(
	name string,
	source domain.PriceSource,
	kind domain.Source,
	fallback *FallbackDataset,
	cache *PriceCache,
	series *SeriesSet,
	ids []domain.AssetID,
	now func() time.Time,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PriceRefresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceRefresher{
		name:     name,
		source:   source,
		kind:     kind,
		fallback: fallback,
		cache:    cache,
		series:   series,
		ids:      append([]domain.AssetID(nil), ids...),
		timeNow:  now,
		metrics:  m,
		logger:   logger.With(zap.String("feed", name), zap.String("source", source.Name())),
	}
}

func (p *PriceRefresher) Refresh(ctx context.Context) Commit {
	start := time.Now()
	entries, err := p.source.FetchPrices(ctx, p.ids)
	took := time.Since(start)
	p.metrics.ObserveFetch(p.name, err, took)

	state, source := domain.StateReady, p.kind
	if err != nil {
		p.logger.Warn("price fetch failed, serving fallback data",
			zap.String("outcome", domain.FetchOutcome(err)),
			zap.Duration("took", took),
			zap.Error(err),
		)
		entries = p.fallback.Entries(p.ids, p.timeNow())
		state, source = domain.StateDegraded, domain.SourceFallback
	} else {
		p.logger.Debug("prices fetched", zap.Int("assets", len(entries)), zap.Duration("took", took))
	}
	at := p.timeNow()

	return func() domain.RefreshState {
		p.cache.Update(entries, state, source, at)
		for _, id := range p.ids {
			e, ok := entries[id]
			if !ok {
				continue
			}
			if err := p.series.Append(string(id), e.BasePrice); err != nil {
				p.logger.Error("append price sample", zap.String("asset", string(id)), zap.Error(err))
			}
		}
		return state
	}
}
