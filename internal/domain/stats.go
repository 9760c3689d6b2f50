package domain

import (
	"fmt"
	"time"
)

// RefreshState is the lifecycle state of a refresh feed.
type RefreshState string

const (
	StateIdle     RefreshState = "idle"
	StateFetching RefreshState = "fetching"
	StateReady    RefreshState = "ready"
	// StateDegraded means the last fetch failed and fallback or cached data is
	// being served. The next tick always retries.
	StateDegraded RefreshState = "degraded"
)

// Source identifies where the data in a snapshot came from.
type Source string

const (
	SourceLive      Source = "live"
	SourceSynthetic Source = "synthetic"
	SourceFallback  Source = "fallback"
)

// TimeRange selects the chart window. It controls both series capacity and
// the tick rate of the chart feeds.
type TimeRange string

const (
	RangeShort  TimeRange = "short"
	RangeMedium TimeRange = "medium"
	RangeLong   TimeRange = "long"
)

// Window is the buffer capacity and tick period for a time range.
type Window struct {
	Capacity int
	Interval time.Duration
}

var windows = map[TimeRange]Window{
	RangeShort:  {Capacity: 30, Interval: time.Second},
	RangeMedium: {Capacity: 60, Interval: 5 * time.Second},
	RangeLong:   {Capacity: 120, Interval: 30 * time.Second},
}

// ParseTimeRange validates a time range name.
func ParseTimeRange(s string) (TimeRange, error) {
	tr := TimeRange(s)
	if _, ok := windows[tr]; !ok {
		return "", fmt.Errorf("unknown time range %q", s)
	}
	return tr, nil
}

// Window returns the capacity and tick interval for tr. Unknown ranges map to
// the short window.
func (tr TimeRange) Window() Window {
	if w, ok := windows[tr]; ok {
		return w
	}
	return windows[RangeShort]
}

// SeriesPoint is one chart sample. Its position in the series is its only
// ordering; points carry no timestamp.
type SeriesPoint float64
