package timers

import (
	"errors"
	"golang.hedera.com/solo-lynx/pkg/clockx"
	"sync"
	"time"
)

// ErrNoContextDetector indicates a current-context operation was invoked on
// a contextual timer that has no detector configured.
var ErrNoContextDetector = errors.New("timers: no context detector configured")

// Context identifies an execution context tracked by a contextual timer: an
// OS thread or a cooperative fiber.
type Context int64

// DetectFunc returns the context currently executing.
type DetectFunc func() Context

// record tracks one context's share of a clock several contexts share.
// accumulated holds time folded in by pauses; while running, the span since
// resumedAt is still accruing on top of it.
type record struct {
	accumulated time.Duration
	resumedAt   time.Duration
	running     bool
}

// ContextualTimer disaggregates one CPU clock across execution contexts
// through explicit pause/resume bookkeeping. A context never resumed has
// zero elapsed time. Records belong to this timer instance alone; the map
// holding them is locked because Go maps are unsafe for concurrent access,
// even though each context only ever drives its own transitions.
type ContextualTimer struct {
	CPUTimer
	mu      sync.Mutex
	records map[Context]*record
	detect  DetectFunc
}

// NewContextualTimer builds a contextual timer over clock (the process CPU
// clock when nil). detect supplies the current context for the *Current
// operations and may be nil, in which case those fail with
// ErrNoContextDetector.
func NewContextualTimer(clock clockx.Clock, detect DetectFunc) *ContextualTimer {
	if clock == nil {
		clock = clockx.CPU()
	}
	return &ContextualTimer{
		CPUTimer: CPUTimer{clock: clock},
		records:  map[Context]*record{},
		detect:   detect,
	}
}

// Elapsed returns the CPU time attributed to ctx: the folded-in total while
// paused, plus the currently accruing span while running.
func (t *ContextualTimer) Elapsed(ctx Context) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked(ctx)
}

// Pause folds the running span into the context's total and marks it paused.
func (t *ContextualTimer) Pause(ctx Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.recordFor(ctx)
	r.accumulated = t.elapsedLocked(ctx)
	r.resumedAt = 0
	r.running = false
}

// Resume marks the context running from now. Its accumulated total is left
// untouched.
func (t *ContextualTimer) Resume(ctx Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.recordFor(ctx)
	r.resumedAt = t.Now()
	r.running = true
}

// Current returns the auto-detected current context.
func (t *ContextualTimer) Current() (Context, error) {
	if t.detect == nil {
		return 0, ErrNoContextDetector
	}
	return t.detect(), nil
}

// ElapsedCurrent returns the elapsed time of the auto-detected context.
func (t *ContextualTimer) ElapsedCurrent() (time.Duration, error) {
	ctx, err := t.Current()
	if err != nil {
		return 0, err
	}
	return t.Elapsed(ctx), nil
}

// PauseCurrent pauses the auto-detected context.
func (t *ContextualTimer) PauseCurrent() error {
	ctx, err := t.Current()
	if err != nil {
		return err
	}
	t.Pause(ctx)
	return nil
}

// ResumeCurrent resumes the auto-detected context.
func (t *ContextualTimer) ResumeCurrent() error {
	ctx, err := t.Current()
	if err != nil {
		return err
	}
	t.Resume(ctx)
	return nil
}

func (t *ContextualTimer) elapsedLocked(ctx Context) time.Duration {
	r, ok := t.records[ctx]
	if !ok {
		return 0
	}
	if !r.running {
		return r.accumulated
	}
	return r.accumulated + (t.Now() - r.resumedAt)
}

func (t *ContextualTimer) recordFor(ctx Context) *record {
	r, ok := t.records[ctx]
	if !ok {
		r = &record{}
		t.records[ctx] = r
	}
	return r
}
