package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_dashboard/internal/domain"
)

func points(vs ...float64) []domain.SeriesPoint {
	out := make([]domain.SeriesPoint, len(vs))
	for i, v := range vs {
		out[i] = domain.SeriesPoint(v)
	}
	return out
}

func TestSeries_FIFOWindow(t *testing.T) {
	s, err := NewSeries("btc", 5)
	require.NoError(t, err)
	assert.Empty(t, s.Snapshot())

	for _, v := range []float64{10, 11, 12, 13, 14, 15, 16} {
		s.Append(v)
	}

	assert.Equal(t, points(12, 13, 14, 15, 16), s.Snapshot())
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, int64(7), s.TotalAppends())
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 16.0, last)
}

func TestSeries_LengthNeverExceedsCapacity(t *testing.T) {
	for _, capacity := range []int{1, 2, 3, 7, 30} {
		s, err := NewSeries("x", capacity)
		require.NoError(t, err)

		for n := 1; n <= 3*capacity+2; n++ {
			s.Append(float64(n))
			snap := s.Snapshot()

			require.Len(t, snap, min(capacity, n), "capacity=%d appends=%d", capacity, n)
			// The window always holds the most recent values in append order.
			for i, p := range snap {
				assert.Equal(t, domain.SeriesPoint(n-len(snap)+1+i), p)
			}
		}
	}
}

func TestSeries_OneOverCapacityDropsExactlyOldest(t *testing.T) {
	s, err := NewSeries("x", 3)
	require.NoError(t, err)
	s.Append(1)
	s.Append(2)
	s.Append(3)
	require.Equal(t, points(1, 2, 3), s.Snapshot())

	s.Append(4)
	assert.Equal(t, points(2, 3, 4), s.Snapshot())
}

func TestSeries_RejectsEmptyCapacity(t *testing.T) {
	for _, c := range []int{0, -1} {
		_, err := NewSeries("x", c)
		assert.ErrorIs(t, err, domain.ErrEmptySeries)
	}

	s, err := NewSeries("x", 2)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Reset(0, 1), domain.ErrEmptySeries)
	assert.ErrorIs(t, s.Clear(-3), domain.ErrEmptySeries)
}

func TestSeries_ResetFillsFlatBaseline(t *testing.T) {
	s, err := NewSeries("x", 3)
	require.NoError(t, err)
	s.Append(5)
	s.Append(6)

	require.NoError(t, s.Reset(4, 6))
	assert.Equal(t, points(6, 6, 6, 6), s.Snapshot())
	assert.Equal(t, 4, s.Cap())

	s.Append(7)
	assert.Equal(t, points(6, 6, 6, 7), s.Snapshot())
}

func TestSeriesSet(t *testing.T) {
	ss := NewSeriesSet()
	_, err := ss.Add("btc", 2)
	require.NoError(t, err)
	_, err = ss.Add("eth", 2)
	require.NoError(t, err)
	_, err = ss.Add("btc", 2)
	assert.Error(t, err)
	_, err = ss.Add("zero", 0)
	assert.ErrorIs(t, err, domain.ErrEmptySeries)

	require.NoError(t, ss.Append("btc", 1))
	require.NoError(t, ss.Append("btc", 2))
	require.NoError(t, ss.Append("btc", 3))
	assert.ErrorIs(t, ss.Append("doge", 1), domain.ErrUnknownSeries)

	snap, err := ss.Snapshot("btc")
	require.NoError(t, err)
	assert.Equal(t, points(2, 3), snap)
	_, err = ss.Snapshot("doge")
	assert.ErrorIs(t, err, domain.ErrUnknownSeries)

	assert.Equal(t, []string{"btc", "eth"}, ss.IDs())

	require.NoError(t, ss.Resize(3))
	snap, _ = ss.Snapshot("btc")
	assert.Equal(t, points(3, 3, 3), snap)
	snap, _ = ss.Snapshot("eth")
	assert.Empty(t, snap)
	eth, _ := ss.Get("eth")
	assert.Equal(t, 3, eth.Cap())

	assert.ErrorIs(t, ss.Resize(0), domain.ErrEmptySeries)
}

func TestSeries_SnapshotIsCopy(t *testing.T) {
	s, err := NewSeries("x", 2)
	require.NoError(t, err)
	s.Append(1)

	snap := s.Snapshot()
	snap[0] = 99
	assert.Equal(t, points(1), s.Snapshot())
}
