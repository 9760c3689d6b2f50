package usecase

import (
	"context"

	"github.com/vitos/crypto_dashboard/internal/domain"
)

// IndexRefresher advances a synthetic index series by one random-walk step
// per tick. The step is computed inside the commit so it always builds on
// the newest point, including right after a resize.
type IndexRefresher struct {
	series   *Series
	walk     *RandomWalk
	baseline float64
	delta    float64
}

func NewIndexRefresher(series *Series, walk *RandomWalk, baseline, delta float64) *IndexRefresher {
	return &IndexRefresher{series: series, walk: walk, baseline: baseline, delta: delta}
}

func (r *IndexRefresher) Refresh(ctx context.Context) Commit {
	return func() domain.RefreshState {
		prev, ok := r.series.Last()
		if !ok {
			prev = r.baseline
		}
		r.series.Append(r.walk.Next(prev, r.delta))
		return domain.StateReady
	}
}
