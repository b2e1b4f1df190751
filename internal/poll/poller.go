// Package poll is the one shared polling loop behind every live view:
// live-manager data, notifications, and audit logs each instantiate a Poller
// with their own fetch function and cadence instead of running hand-rolled
// timers with separate teardown paths.
package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mymind1423/interflow-admin/internal/metrics"
)

// Poller periodically refreshes a payload of type T. The last successfully
// fetched payload stays visible through failed refreshes; a failed tick is
// logged, counted, and left to self-heal on the next one.
type Poller[T any] struct {
	name     string
	fetch    func(context.Context) (T, error)
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu            sync.Mutex
	data          T
	hasData       bool
	lastFetchedAt time.Time
	refreshing    bool

	stopOnce sync.Once
	stopped  chan struct{}
}

// Option configures a Poller.
type Option[T any] func(*Poller[T])

func WithTimeout[T any](timeout time.Duration) Option[T] {
	return func(p *Poller[T]) { p.timeout = timeout }
}

func WithMetrics[T any](m *metrics.Metrics) Option[T] {
	return func(p *Poller[T]) { p.metrics = m }
}

func New[T any](name string, interval time.Duration, fetch func(context.Context) (T, error), logger *slog.Logger, opts ...Option[T]) *Poller[T] {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Poller[T]{
		name:     name,
		fetch:    fetch,
		interval: interval,
		timeout:  10 * time.Second,
		logger:   logger,
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start fetches once immediately, then keeps fetching every interval until
// Stop is called or ctx is cancelled. The immediate fetch runs before Start
// returns so a freshly started poller already has data (or has reported why
// not).
func (p *Poller[T]) Start(ctx context.Context) {
	if p.metrics != nil {
		p.metrics.ActivePollers.Inc()
	}
	p.refresh(ctx)

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopped:
				return
			case <-ticker.C:
				p.refresh(ctx)
			}
		}
	}()
}

// RefreshNow triggers an out-of-band fetch without resetting the schedule.
// While a fetch is already in flight the call is a no-op and returns false.
func (p *Poller[T]) RefreshNow(ctx context.Context) bool {
	return p.refresh(ctx)
}

// Stop halts the recurring fetches. It is idempotent and must be called on
// teardown so the timer goroutine does not leak. An in-flight fetch is not
// aborted; its result is simply the last one recorded.
func (p *Poller[T]) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopped)
		if p.metrics != nil {
			p.metrics.ActivePollers.Dec()
		}
	})
}

// Snapshot returns the last successfully fetched payload, when it was
// fetched, and whether any fetch has succeeded yet.
func (p *Poller[T]) Snapshot() (T, time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data, p.lastFetchedAt, p.hasData
}

// IsRefreshing reports whether a fetch is currently in flight.
func (p *Poller[T]) IsRefreshing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshing
}

func (p *Poller[T]) refresh(ctx context.Context) bool {
	p.mu.Lock()
	if p.refreshing {
		p.mu.Unlock()
		return false
	}
	p.refreshing = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.refreshing = false
		p.mu.Unlock()
	}()

	if p.metrics != nil {
		p.metrics.PollTicks.WithLabelValues(p.name).Inc()
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	data, err := p.fetch(fetchCtx)
	if err != nil {
		if p.metrics != nil {
			p.metrics.PollFailures.WithLabelValues(p.name).Inc()
		}
		p.logger.Warn("poll fetch failed", "poller", p.name, "error", err)
		return true
	}

	p.mu.Lock()
	p.data = data
	p.hasData = true
	p.lastFetchedAt = time.Now().UTC()
	p.mu.Unlock()
	return true
}
