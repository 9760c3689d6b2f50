package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vitos/crypto_dashboard/internal/domain"
)

func TestPriceCache_LoadingSentinel(t *testing.T) {
	c := NewPriceCache()
	snap := c.Read()

	assert.True(t, snap.IsLoading())
	assert.NotNil(t, snap.Entries)
	assert.Empty(t, snap.Entries)
	assert.Equal(t, domain.StateIdle, c.State())
}

func TestPriceCache_UpdateAndRead(t *testing.T) {
	c := NewPriceCache()
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := map[domain.AssetID]domain.PriceEntry{
		"bitcoin": {AssetID: "bitcoin", BasePrice: 100, ObservedAt: at},
	}

	c.Update(entries, domain.StateReady, domain.SourceLive, at)
	entries["bitcoin"] = domain.PriceEntry{AssetID: "bitcoin", BasePrice: -1}

	first := c.Read()
	second := c.Read()
	assert.Equal(t, first, second)
	assert.False(t, first.IsLoading())
	assert.Equal(t, 100.0, first.Entries["bitcoin"].BasePrice)
	assert.Equal(t, domain.StateReady, c.State())

	// Readers cannot reach the cache's map.
	delete(first.Entries, "bitcoin")
	_, ok := c.Read().Entry("bitcoin")
	assert.True(t, ok)
}

func TestPriceCache_UpdateReplacesWholeSnapshot(t *testing.T) {
	c := NewPriceCache()
	now := time.Now()
	c.Update(map[domain.AssetID]domain.PriceEntry{
		"a": {AssetID: "a", BasePrice: 1},
		"b": {AssetID: "b", BasePrice: 2},
	}, domain.StateReady, domain.SourceLive, now)

	c.Update(map[domain.AssetID]domain.PriceEntry{
		"a": {AssetID: "a", BasePrice: 10},
	}, domain.StateDegraded, domain.SourceFallback, now.Add(time.Second))

	snap := c.Read()
	assert.Len(t, snap.Entries, 1)
	assert.Equal(t, 10.0, snap.Entries["a"].BasePrice)
	assert.Equal(t, domain.StateDegraded, snap.State)
	assert.Equal(t, domain.SourceFallback, snap.Source)
}
