// Package search holds the global-search debouncer: keystroke-level query
// updates are coalesced so only the final query of a burst reaches the
// platform, and queries below the minimum length never do.
package search

import (
	"strings"
	"sync"
	"time"
)

// Debouncer coalesces query updates on a trailing edge. After the window
// elapses with no further update, dispatch is called once with the latest
// query. Updates shorter than minLength cancel any pending dispatch.
type Debouncer struct {
	window    time.Duration
	minLength int
	dispatch  func(query string)

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(window time.Duration, minLength int, dispatch func(string)) *Debouncer {
	if window <= 0 {
		window = 500 * time.Millisecond
	}
	if minLength < 1 {
		minLength = 1
	}
	return &Debouncer{window: window, minLength: minLength, dispatch: dispatch}
}

// Update records the latest query. Each call restarts the window; only the
// query in hand when the window finally elapses is dispatched.
func (d *Debouncer) Update(query string) {
	query = strings.TrimSpace(query)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if len([]rune(query)) < d.minLength {
		return
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		d.timer = nil
		d.mu.Unlock()
		d.dispatch(query)
	})
}

// Stop cancels any pending dispatch. Call on teardown.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
