package limiter

import (
	"sync"
	"time"
)

// Idle windows are collected opportunistically, every sweepEvery checks.
const sweepEvery = 1024

type nowFunc func() time.Time

type window struct {
	span   time.Duration
	stamps []time.Time
}

type memLimiter struct {
	mu      sync.Mutex
	checks  uint64
	now     nowFunc
	windows map[string]*window
}

// Mem returns an in-memory Limiter implementation which counts requests over
// a sliding window per key. Quotas are process-local, every instance of a
// horizontally scaled deployment enforces its own.
func Mem() Limiter {
	return newMem(time.Now)
}

func newMem(now nowFunc) *memLimiter {
	return &memLimiter{
		now:     now,
		windows: map[string]*window{},
	}
}

func (l *memLimiter) Check(key string, config Config) (Result, error) {
	span := config.Window
	if span <= 0 {
		span = time.Millisecond
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var (
		composite = compositeKey(key, config)
		now       = l.now()
	)

	l.checks++
	if l.checks%sweepEvery == 0 {
		l.sweep(now)
	}

	w, ok := l.windows[composite]
	if !ok {
		// Window creation counts as the first admitted request, even when
		// MaxRequests is zero. The threshold check only applies from the
		// second request on.
		l.windows[composite] = &window{
			span:   span,
			stamps: []time.Time{now},
		}

		return Result{
			Allowed:   true,
			Remaining: config.MaxRequests - 1,
			Reset:     span,
		}, nil
	}

	w.span = span
	w.stamps = prune(w.stamps, now.Add(-span))

	count := len(w.stamps)

	if count < config.MaxRequests {
		w.stamps = append(w.stamps, now)

		return Result{
			Allowed:   true,
			Remaining: config.MaxRequests - count - 1,
			Reset:     reset(w.stamps, span, now),
		}, nil
	}

	return Result{
		Allowed:   false,
		Remaining: config.MaxRequests - count,
		Reset:     reset(w.stamps, span, now),
	}, nil
}

// sweep drops windows whose newest stamp fell out of its span, callers gone
// idle would otherwise pin memory until restart.
func (l *memLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if len(w.stamps) == 0 {
			delete(l.windows, key)
			continue
		}

		if now.Sub(w.stamps[len(w.stamps)-1]) > w.span {
			delete(l.windows, key)
		}
	}
}

func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	kept := stamps[:0]

	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	return kept
}

func reset(stamps []time.Time, span time.Duration, now time.Time) time.Duration {
	if len(stamps) == 0 {
		return 0
	}

	d := stamps[0].Add(span).Sub(now)

	if d < 0 {
		return 0
	}

	if d > span {
		return span
	}

	return d
}
