package app

import (
	"sync"
	"time"
)

// statusRing keeps the last N status messages in a ring buffer so the
// renderer can show what happened recently. The settings watcher reports
// from its own goroutine, hence the lock.
type statusRing struct {
	buffer    []string
	nextIndex int
	count     int
	now       func() time.Time
	mu        sync.RWMutex
}

func newStatusRing(size int) *statusRing {
	if size < 1 {
		size = 1
	}
	return &statusRing{
		buffer: make([]string, size),
		now:    time.Now,
	}
}

func (r *statusRing) push(msg string) {
	line := r.now().Format("15:04:05") + "  " + msg

	r.mu.Lock()
	r.buffer[r.nextIndex] = line
	r.nextIndex++
	if r.nextIndex >= len(r.buffer) {
		r.nextIndex = 0
	}
	if r.count < len(r.buffer) {
		r.count++
	}
	r.mu.Unlock()
}

// snapshot returns up to the last n messages, oldest first.
func (r *statusRing) snapshot(n int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > r.count {
		n = r.count
	}
	out := make([]string, 0, n)
	// Walk backwards from nextIndex - 1
	idx := r.nextIndex - 1
	for i := 0; i < n; i++ {
		if idx < 0 {
			idx = len(r.buffer) - 1
		}
		out = append(out, r.buffer[idx])
		idx--
	}
	// reverse to chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
