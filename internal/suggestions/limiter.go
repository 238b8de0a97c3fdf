package suggestions

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// callLimiter allows at most calls provider requests in any window-long
// interval. The token bucket spreads the budget; the call log enforces the
// hard cap the bucket alone would exceed after a refill.
type callLimiter struct {
	mu     sync.Mutex
	bucket *rate.Limiter
	window time.Duration
	calls  int
	log    []time.Time
}

func newCallLimiter(calls int, window time.Duration) *callLimiter {
	return &callLimiter{
		bucket: rate.NewLimiter(rate.Every(window/time.Duration(calls)), calls),
		window: window,
		calls:  calls,
		log:    make([]time.Time, 0, calls),
	}
}

// allow reports whether a call may start at now and records it if so.
func (l *callLimiter) allow(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	kept := l.log[:0]
	for _, t := range l.log {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.log = kept

	if len(l.log) >= l.calls || !l.bucket.AllowN(now, 1) {
		return false
	}
	l.log = append(l.log, now)
	return true
}
