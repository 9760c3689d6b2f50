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

var ErrFeedStopped = errors.New("feed stopped")

// Commit applies the result of one refresh and returns the resulting state.
// It runs under the feed lock and only if the feed is still running.
type Commit func() domain.RefreshState

// Refresher performs the blocking part of a refresh cycle (network I/O,
// generation) and returns the Commit that publishes its result.
type Refresher interface {
	Refresh(ctx context.Context) Commit
}

type RefresherFunc func(ctx context.Context) Commit

func (f RefresherFunc) Refresh(ctx context.Context) Commit { return f(ctx) }

// Feed drives one refresher on a recurring timer:
// Idle -> Fetching -> {Ready, Degraded} -> Fetching -> ... until stopped.
// At most one cycle is in flight; ticks that fire meanwhile are skipped.
type Feed struct {
	name      string
	refresher Refresher
	clock     clockwork.Clock
	logger    *zap.Logger
	metrics   *metrics.Metrics

	mu         sync.Mutex
	interval   time.Duration
	state      domain.RefreshState
	lastCommit time.Time
	inflight   bool
	started    bool
	stopped    bool
	ticker     clockwork.Ticker
	cancel     context.CancelFunc
	refreshCtx context.Context
	callbacks  []func()

	wg sync.WaitGroup
}

func NewFeed(name string, interval time.Duration, r Refresher, clk clockwork.Clock, m *metrics.Metrics, logger *zap.Logger) (*Feed, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("feed %s: interval must be positive, got %v", name, interval)
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		name:       name,
		refresher:  r,
		clock:      clk,
		logger:     logger.With(zap.String("feed", name)),
		metrics:    m,
		interval:   interval,
		state:      domain.StateIdle,
		refreshCtx: context.Background(),
	}, nil
}

func (f *Feed) Name() string { return f.name }

func (f *Feed) State() domain.RefreshState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Feed) Interval() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interval
}

func (f *Feed) Stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// LastCommit is the clock time of the last applied commit.
func (f *Feed) LastCommit() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCommit
}

// OnCommit registers cb to run after every applied commit.
func (f *Feed) OnCommit(cb func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, cb)
}

// Start runs the first cycle immediately and then one per interval.
func (f *Feed) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return fmt.Errorf("feed %s: %w", f.name, ErrFeedStopped)
	}
	if f.started {
		f.mu.Unlock()
		return nil
	}
	f.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	// In-flight cycles outlive Stop; their result is discarded instead.
	f.refreshCtx = context.WithoutCancel(ctx)
	f.ticker = f.clock.NewTicker(f.interval)
	ticker := f.ticker
	f.wg.Add(1)
	f.mu.Unlock()

	go f.run(loopCtx, ticker)

	f.logger.Info("feed started", zap.Duration("interval", f.Interval()))
	return nil
}

func (f *Feed) run(ctx context.Context, ticker clockwork.Ticker) {
	defer f.wg.Done()

	f.Tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			f.Tick()
		}
	}
}

// Tick starts a cycle unless one is already in flight or the feed is
// stopped. It reports whether a cycle was started.
func (f *Feed) Tick() bool {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return false
	}
	if f.inflight {
		f.mu.Unlock()
		f.metrics.TickSkipped(f.name)
		f.logger.Debug("tick skipped, previous cycle still in flight")
		return false
	}
	f.inflight = true
	f.setStateLocked(domain.StateFetching)
	ctx := f.refreshCtx
	f.wg.Add(1)
	f.mu.Unlock()

	go f.refresh(ctx)
	return true
}

func (f *Feed) refresh(ctx context.Context) {
	defer f.wg.Done()

	commit := f.refresher.Refresh(ctx)

	f.mu.Lock()
	f.inflight = false
	if f.stopped {
		f.setStateLocked(domain.StateIdle)
		f.mu.Unlock()
		f.metrics.Commit(f.name, false)
		f.logger.Debug("feed stopped during refresh, result discarded")
		return
	}

	state := domain.StateReady
	if commit != nil {
		state = commit()
	}
	f.setStateLocked(state)
	f.lastCommit = f.clock.Now()
	callbacks := make([]func(), len(f.callbacks))
	copy(callbacks, f.callbacks)
	f.mu.Unlock()

	f.metrics.Commit(f.name, true)
	for _, cb := range callbacks {
		cb()
	}
}

// Exec runs fn serialized with commits. Owners use it to mutate feed state
// (e.g. resizing series) without racing a cycle's commit.
func (f *Feed) Exec(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
}

// SetInterval changes the tick period; a running timer restarts with it.
func (f *Feed) SetInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("feed %s: interval must be positive, got %v", f.name, d)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interval = d
	if f.ticker != nil && !f.stopped {
		f.ticker.Reset(d)
	}
	return nil
}

// Stop cancels the timer and waits for an in-flight cycle, whose result is
// discarded. It is idempotent and safe to call before Start.
func (f *Feed) Stop(ctx context.Context) error {
	f.mu.Lock()
	if !f.stopped {
		f.stopped = true
		if f.ticker != nil {
			f.ticker.Stop()
		}
		if f.cancel != nil {
			f.cancel()
		}
		if !f.inflight {
			f.setStateLocked(domain.StateIdle)
		}
		f.logger.Info("feed stopping")
	}
	f.mu.Unlock()

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Feed) setStateLocked(s domain.RefreshState) {
	f.state = s
	f.metrics.SetState(f.name, s)
}
