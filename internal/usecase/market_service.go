package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/vitos/crypto_dashboard/internal/domain"
	"github.com/vitos/crypto_dashboard/internal/metrics"
	"go.uber.org/zap"
)

const PriceFeedName = "prices"

// IndexChart configures one synthetic index chart.
type IndexChart struct {
	ID       string
	Name     string
	Baseline float64
	Delta    float64
}

type MarketServiceConfig struct {
	Assets          []domain.Asset
	Indexes         []IndexChart
	Rates           *domain.RateTable
	DisplayCurrency domain.CurrencyCode
	TimeRange       domain.TimeRange
	RefreshInterval time.Duration
	Source          domain.PriceSource
	SourceKind      domain.Source // live or synthetic
	Walk            *RandomWalk
}

// MarketService owns the price feed and one feed per index chart, and
// materializes read-only views for the rendering layer.
type MarketService struct {
	assets     []domain.Asset
	normalizer *Normalizer
	cache      *PriceCache
	prices     *SeriesSet
	priceFeed  *Feed
	indexes    []*indexFeed
	clock      clockwork.Clock
	logger     *zap.Logger

	mu              sync.RWMutex
	displayCurrency domain.CurrencyCode
	timeRange       domain.TimeRange
}

type indexFeed struct {
	chart  IndexChart
	series *Series
	feed   *Feed
}

func NewMarketService(cfg MarketServiceConfig, clk clockwork.Clock, m *metrics.Metrics, logger *zap.Logger) (*MarketService, error) {
	if cfg.Rates == nil {
		return nil, fmt.Errorf("market service: %w: nil rate table", domain.ErrInvalidRateTable)
	}
	if cfg.Source == nil {
		return nil, errors.New("market service: price source is required")
	}
	if !cfg.Rates.Has(cfg.DisplayCurrency) {
		return nil, fmt.Errorf("market service: display currency: %w: %s", domain.ErrUnknownCurrency, cfg.DisplayCurrency)
	}
	if _, err := domain.ParseTimeRange(string(cfg.TimeRange)); err != nil {
		return nil, fmt.Errorf("market service: %w", err)
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Walk == nil {
		cfg.Walk = NewRandomWalk(0)
	}
	if cfg.SourceKind == "" {
		cfg.SourceKind = domain.SourceLive
	}

	window := cfg.TimeRange.Window()
	s := &MarketService{
		assets:          append([]domain.Asset(nil), cfg.Assets...),
		normalizer:      NewNormalizer(cfg.Rates),
		cache:           NewPriceCache(),
		prices:          NewSeriesSet(),
		clock:           clk,
		logger:          logger,
		displayCurrency: cfg.DisplayCurrency,
		timeRange:       cfg.TimeRange,
	}

	ids := make([]domain.AssetID, len(cfg.Assets))
	for i, a := range cfg.Assets {
		ids[i] = a.ID
		if _, err := s.prices.Add(string(a.ID), window.Capacity); err != nil {
			return nil, fmt.Errorf("market service: %w", err)
		}
	}

	refresher := NewPriceRefresher(PriceFeedName, cfg.Source, cfg.SourceKind, NewFallbackDataset(cfg.Assets),
		s.cache, s.prices, ids, clk.Now, m, logger)
	feed, err := NewFeed(PriceFeedName, cfg.RefreshInterval, refresher, clk, m, logger)
	if err != nil {
		return nil, fmt.Errorf("market service: %w", err)
	}
	s.priceFeed = feed

	for _, chart := range cfg.Indexes {
		series, err := NewSeries(chart.ID, window.Capacity)
		if err != nil {
			return nil, fmt.Errorf("market service: %w", err)
		}
		if err := series.Reset(window.Capacity, chart.Baseline); err != nil {
			return nil, fmt.Errorf("market service: %w", err)
		}
		feed, err := NewFeed("index:"+chart.ID, window.Interval,
			NewIndexRefresher(series, cfg.Walk, chart.Baseline, chart.Delta), clk, m, logger)
		if err != nil {
			return nil, fmt.Errorf("market service: %w", err)
		}
		s.indexes = append(s.indexes, &indexFeed{chart: chart, series: series, feed: feed})
	}

	return s, nil
}

// Start launches every feed.
func (s *MarketService) Start(ctx context.Context) error {
	if err := s.priceFeed.Start(ctx); err != nil {
		return err
	}
	for _, ix := range s.indexes {
		if err := ix.feed.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops every feed. Safe to call more than once.
func (s *MarketService) Stop(ctx context.Context) error {
	errs := []error{s.priceFeed.Stop(ctx)}
	for _, ix := range s.indexes {
		errs = append(errs, ix.feed.Stop(ctx))
	}
	return errors.Join(errs...)
}

// Subscribe registers cb to run after any feed commits new data.
func (s *MarketService) Subscribe(cb func()) {
	s.priceFeed.OnCommit(cb)
	for _, ix := range s.indexes {
		ix.feed.OnCommit(cb)
	}
}

// RefreshNow triggers an immediate cycle on every feed that is not already
// refreshing. It reports whether the price feed started a cycle.
func (s *MarketService) RefreshNow() bool {
	started := s.priceFeed.Tick()
	for _, ix := range s.indexes {
		ix.feed.Tick()
	}
	return started
}

func (s *MarketService) DisplayCurrency() domain.CurrencyCode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayCurrency
}

func (s *MarketService) TimeRange() domain.TimeRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeRange
}

// SetDisplayCurrency changes the currency of View().Assets[].Display.
func (s *MarketService) SetDisplayCurrency(code domain.CurrencyCode) error {
	if !s.normalizer.Rates().Has(code) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownCurrency, code)
	}
	s.mu.Lock()
	s.displayCurrency = code
	s.mu.Unlock()
	return nil
}

// SetTimeRange re-initializes every series at the new window capacity, flat
// at its newest value, and retimes the index feeds.
func (s *MarketService) SetTimeRange(tr domain.TimeRange) error {
	if _, err := domain.ParseTimeRange(string(tr)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tr == s.timeRange {
		return nil
	}

	window := tr.Window()
	var errs []error
	s.priceFeed.Exec(func() {
		errs = append(errs, s.prices.Resize(window.Capacity))
	})
	for _, ix := range s.indexes {
		ix.feed.Exec(func() {
			baseline, ok := ix.series.Last()
			if !ok {
				baseline = ix.chart.Baseline
			}
			errs = append(errs, ix.series.Reset(window.Capacity, baseline))
		})
		errs = append(errs, ix.feed.SetInterval(window.Interval))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.timeRange = tr
	s.logger.Info("time range changed",
		zap.String("time_range", string(tr)),
		zap.Int("capacity", window.Capacity),
		zap.Duration("interval", window.Interval),
	)
	return nil
}

// ApplySettings changes the time range and then the display currency. Empty
// values leave a setting unchanged. Both are validated before either is
// applied, and the currency stays put if the time range change fails.
func (s *MarketService) ApplySettings(code domain.CurrencyCode, tr domain.TimeRange) error {
	if code != "" && !s.normalizer.Rates().Has(code) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownCurrency, code)
	}
	if tr != "" {
		if _, err := domain.ParseTimeRange(string(tr)); err != nil {
			return err
		}
		if err := s.SetTimeRange(tr); err != nil {
			return err
		}
	}
	if code != "" {
		return s.SetDisplayCurrency(code)
	}
	return nil
}

// Snapshot returns the current price snapshot (a copy).
func (s *MarketService) Snapshot() domain.PriceSnapshot {
	return s.cache.Read()
}

// SeriesSnapshot returns the points of an index or asset series.
func (s *MarketService) SeriesSnapshot(id string) ([]domain.SeriesPoint, error) {
	for _, ix := range s.indexes {
		if ix.chart.ID == id {
			return ix.series.Snapshot(), nil
		}
	}
	return s.prices.Snapshot(id)
}

// PricesIn normalizes every asset into currency. Unknown currencies and
// assets without data yield the N/A sentinel.
func (s *MarketService) PricesIn(currency domain.CurrencyCode) []domain.NormalizedPrice {
	snap := s.cache.Read()
	out := make([]domain.NormalizedPrice, len(s.assets))
	for i, a := range s.assets {
		e, ok := snap.Entry(a.ID)
		if !ok {
			out[i] = domain.Unavailable(a.ID, currency)
			continue
		}
		out[i] = s.normalizer.Normalize(e, currency)
	}
	return out
}

func (s *MarketService) Currencies() []domain.CurrencyInfo {
	codes := s.normalizer.Rates().Codes()
	out := make([]domain.CurrencyInfo, len(codes))
	for i, c := range codes {
		out[i] = domain.LookupCurrency(c)
	}
	return out
}

func (s *MarketService) Rates() *domain.RateTable { return s.normalizer.Rates() }

// Health summarizes feed states.
func (s *MarketService) Health() HealthView {
	h := HealthView{
		State:       s.priceFeed.State(),
		LastUpdated: s.cache.Read().UpdatedAt,
		Feeds:       map[string]domain.RefreshState{PriceFeedName: s.priceFeed.State()},
	}
	for _, ix := range s.indexes {
		h.Feeds[ix.feed.Name()] = ix.feed.State()
	}
	return h
}
