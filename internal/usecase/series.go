package usecase

import (
	"fmt"
	"sync"

	"github.com/vitos/crypto_dashboard/internal/domain"
)

// Series is a fixed-capacity FIFO window of chart samples. Appending to a
// full series evicts exactly the oldest point.
type Series struct {
	mu    sync.RWMutex
	id    string
	buf   []float64
	head  int // oldest point
	count int
	total int64
}

// NewSeries creates an empty series. A non-positive capacity is a
// configuration error.
func NewSeries(id string, capacity int) (*Series, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("series %q: %w (got %d)", id, domain.ErrEmptySeries, capacity)
	}
	return &Series{id: id, buf: make([]float64, capacity)}, nil
}

func (s *Series) ID() string { return s.id }

// Append pushes v to the back of the window.
func (s *Series) Append(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(v)
}

func (s *Series) appendLocked(v float64) {
	capacity := len(s.buf)
	tail := (s.head + s.count) % capacity
	s.buf[tail] = v
	if s.count == capacity {
		s.head = (s.head + 1) % capacity
	} else {
		s.count++
	}
	s.total++
}

// Snapshot returns the points oldest first. The slice is a copy.
func (s *Series) Snapshot() []domain.SeriesPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SeriesPoint, s.count)
	for i := 0; i < s.count; i++ {
		out[i] = domain.SeriesPoint(s.buf[(s.head+i)%len(s.buf)])
	}
	return out
}

// Last returns the newest point.
func (s *Series) Last() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.count == 0 {
		return 0, false
	}
	return s.buf[(s.head+s.count-1)%len(s.buf)], true
}

func (s *Series) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

func (s *Series) Cap() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buf)
}

// TotalAppends counts every point ever appended, including baseline fill.
func (s *Series) TotalAppends() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Reset discards all points and refills the window with capacity copies of
// baseline. Old points are never resampled into the new window.
func (s *Series) Reset(capacity int, baseline float64) error {
	if capacity < 1 {
		return fmt.Errorf("series %q: %w (got %d)", s.id, domain.ErrEmptySeries, capacity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(capacity)
	for i := 0; i < capacity; i++ {
		s.appendLocked(baseline)
	}
	return nil
}

// Clear discards all points and sets a new capacity.
func (s *Series) Clear(capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("series %q: %w (got %d)", s.id, domain.ErrEmptySeries, capacity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(capacity)
	return nil
}

func (s *Series) clearLocked(capacity int) {
	s.buf = make([]float64, capacity)
	s.head = 0
	s.count = 0
	s.total = 0
}

// SeriesSet holds independent series keyed by id.
type SeriesSet struct {
	mu     sync.RWMutex
	series map[string]*Series
	order  []string
}

func NewSeriesSet() *SeriesSet {
	return &SeriesSet{series: make(map[string]*Series)}
}

// Add registers an empty series.
func (ss *SeriesSet) Add(id string, capacity int) (*Series, error) {
	s, err := NewSeries(id, capacity)
	if err != nil {
		return nil, err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if _, ok := ss.series[id]; ok {
		return nil, fmt.Errorf("series %q already exists", id)
	}
	ss.series[id] = s
	ss.order = append(ss.order, id)
	return s, nil
}

func (ss *SeriesSet) Get(id string) (*Series, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	s, ok := ss.series[id]
	return s, ok
}

func (ss *SeriesSet) Append(id string, v float64) error {
	s, ok := ss.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownSeries, id)
	}
	s.Append(v)
	return nil
}

func (ss *SeriesSet) Snapshot(id string) ([]domain.SeriesPoint, error) {
	s, ok := ss.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSeries, id)
	}
	return s.Snapshot(), nil
}

// IDs returns series ids in registration order.
func (ss *SeriesSet) IDs() []string {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return append([]string(nil), ss.order...)
}

// Resize re-initializes every series at capacity. A series with data restarts
// flat at its newest value; an empty one stays empty.
func (ss *SeriesSet) Resize(capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("resize: %w (got %d)", domain.ErrEmptySeries, capacity)
	}
	for _, id := range ss.IDs() {
		s, _ := ss.Get(id)
		var err error
		if last, ok := s.Last(); ok {
			err = s.Reset(capacity, last)
		} else {
			err = s.Clear(capacity)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
