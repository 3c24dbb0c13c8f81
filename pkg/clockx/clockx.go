package clockx

import (
	"sync"
	"time"
)

// Clock is a monotonic time source. Now reports elapsed time since an
// implementation-defined epoch; only differences between readings are
// meaningful. Clocks are safe for concurrent use.
type Clock interface {
	Now() time.Duration
}

type clockFunc func() time.Duration

func (f clockFunc) Now() time.Duration {
	return f()
}

// Wall returns a monotonic wall-clock anchored at the moment of the call.
func Wall() Clock {
	epoch := time.Now()
	return clockFunc(func() time.Duration {
		return time.Since(epoch)
	})
}

// Manual is a clock whose reading changes only when the caller moves it.
// Timer and throttle tests use it to make elapsed-time arithmetic exact.
type Manual struct {
	mu sync.Mutex
	d  time.Duration
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.d += d
}

// Set moves the clock to an absolute reading.
func (m *Manual) Set(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.d = d
}
