package watch

import (
	"sync"
	"time"
)

// DefaultQuietWindow is how long the tree must stay quiet before a rebuild.
const DefaultQuietWindow = 300 * time.Millisecond

// debouncer coalesces bursts of triggers into one signal on C once no
// trigger arrived for the quiet window. At most one signal is pending.
type debouncer struct {
	quiet time.Duration
	C     chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

func newDebouncer(quiet time.Duration) *debouncer {
	return &debouncer{quiet: quiet, C: make(chan struct{}, 1)}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.fire)
}

// fire queues a signal unless one is already pending.
func (d *debouncer) fire() {
	select {
	case d.C <- struct{}{}:
	default:
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
