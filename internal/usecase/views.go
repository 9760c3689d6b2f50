package usecase

import (
	"time"

	"github.com/vitos/crypto_dashboard/internal/domain"
)

// AssetView is one asset row. Entry is nil while the first cycle is pending.
type AssetView struct {
	Asset   domain.Asset             `json:"asset"`
	Entry   *domain.PriceEntry       `json:"entry,omitempty"`
	Display domain.NormalizedPrice   `json:"display"`
	Amounts []domain.NormalizedPrice `json:"amounts"`
	Series  []domain.SeriesPoint     `json:"series"`
}

type SeriesView struct {
	ID     string               `json:"id"`
	Name   string               `json:"name"`
	State  domain.RefreshState  `json:"state"`
	Points []domain.SeriesPoint `json:"points"`
}

// DashboardView is everything a render pass needs. It shares no memory with
// the feeds.
type DashboardView struct {
	Loading         bool                `json:"loading"`
	State           domain.RefreshState `json:"state"`
	DataState       domain.RefreshState `json:"data_state"`
	Source          domain.Source       `json:"source,omitempty"`
	LastUpdated     time.Time           `json:"last_updated"`
	DisplayCurrency domain.CurrencyInfo `json:"display_currency"`
	TimeRange       domain.TimeRange    `json:"time_range"`
	Assets          []AssetView         `json:"assets"`
	Indexes         []SeriesView        `json:"indexes"`
}

type HealthView struct {
	State       domain.RefreshState            `json:"state"`
	LastUpdated time.Time                      `json:"last_updated"`
	Feeds       map[string]domain.RefreshState `json:"feeds"`
}

// View materializes the current dashboard.
func (s *MarketService) View() DashboardView {
	s.mu.RLock()
	display := s.displayCurrency
	tr := s.timeRange
	s.mu.RUnlock()

	snap := s.cache.Read()
	v := DashboardView{
		Loading:         snap.IsLoading(),
		State:           s.priceFeed.State(),
		DataState:       snap.State,
		Source:          snap.Source,
		LastUpdated:     snap.UpdatedAt,
		DisplayCurrency: domain.LookupCurrency(display),
		TimeRange:       tr,
		Assets:          make([]AssetView, 0, len(s.assets)),
		Indexes:         make([]SeriesView, 0, len(s.indexes)),
	}

	for _, a := range s.assets {
		row := AssetView{Asset: a}
		if e, ok := snap.Entry(a.ID); ok {
			row.Entry = &e
			row.Display = s.normalizer.Normalize(e, display)
			row.Amounts = s.normalizer.NormalizeAll(e)
		} else {
			row.Display = domain.Unavailable(a.ID, display)
		}
		row.Series, _ = s.prices.Snapshot(string(a.ID))
		v.Assets = append(v.Assets, row)
	}

	for _, ix := range s.indexes {
		v.Indexes = append(v.Indexes, SeriesView{
			ID:     ix.chart.ID,
			Name:   ix.chart.Name,
			State:  ix.feed.State(),
			Points: ix.series.Snapshot(),
		})
	}
	return v
}
