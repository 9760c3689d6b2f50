package usecase

import (
	"maps"
	"sync"
	"time"

	"github.com/vitos/crypto_dashboard/internal/domain"
)

// PriceCache holds the latest accepted snapshot. Updates replace the whole
// snapshot, so a reader never sees entries from two different cycles.
type PriceCache struct {
	mu   sync.RWMutex
	snap domain.PriceSnapshot
}

func NewPriceCache() *PriceCache {
	return &PriceCache{snap: domain.PriceSnapshot{State: domain.StateIdle}}
}

// Update installs entries as the current snapshot. state is Ready for a live
// or synthetic result and Degraded when entries came from the fallback set.
func (c *PriceCache) Update(entries map[domain.AssetID]domain.PriceEntry, state domain.RefreshState, source domain.Source, at time.Time) {
	snap := domain.PriceSnapshot{
		Entries:   maps.Clone(entries),
		UpdatedAt: at,
		State:     state,
		Source:    source,
	}
	if snap.Entries == nil {
		snap.Entries = map[domain.AssetID]domain.PriceEntry{}
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}

// Read returns a copy of the current snapshot. Before the first update it
// returns the loading sentinel: no entries and a zero UpdatedAt.
func (c *PriceCache) Read() domain.PriceSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := c.snap
	snap.Entries = maps.Clone(c.snap.Entries)
	if snap.Entries == nil {
		snap.Entries = map[domain.AssetID]domain.PriceEntry{}
	}
	return snap
}

func (c *PriceCache) State() domain.RefreshState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.State
}
