package timers

import (
	"golang.hedera.com/solo-lynx/pkg/clockx"
	"golang.hedera.com/solo-lynx/pkg/runx"
	"time"
)

// Timer kinds selectable from configuration.
const (
	KindCPU    = "cpu"
	KindThread = "thread"
	KindFiber  = "fiber"
)

// Timer yields elapsed CPU time from an implementation-defined epoch. Timers
// are runnable: variants that occupy process-global slots hold them for the
// duration of their run scope, plain variants enter and exit with no
// resources.
type Timer interface {
	runx.Runnable
	Now() time.Duration
}

// CPUTimer measures process-wide CPU time. It is the base the other timers
// build on; its run scope holds nothing.
type CPUTimer struct {
	lifecycle runx.Lifecycle
	clock     clockx.Clock
}

func NewCPUTimer() *CPUTimer {
	return &CPUTimer{clock: clockx.CPU()}
}

// NewCPUTimerWithClock builds a timer on the given clock. Tests use it with
// a manual clock to make elapsed arithmetic exact.
func NewCPUTimerWithClock(clock clockx.Clock) *CPUTimer {
	return &CPUTimer{clock: clock}
}

func (t *CPUTimer) Now() time.Duration {
	return t.clock.Now()
}

func (t *CPUTimer) Start() error {
	return t.lifecycle.Start(func(*runx.Deferral) error { return nil })
}

func (t *CPUTimer) Stop() error {
	return t.lifecycle.Stop()
}

func (t *CPUTimer) Running() bool {
	return t.lifecycle.Running()
}

// ThreadTimer measures CPU time consumed by the calling OS thread only. The
// OS already isolates per-thread CPU time, so no contextual bookkeeping is
// needed. Goroutines migrate between threads unless pinned with
// runtime.LockOSThread; callers needing stable attribution must pin.
type ThreadTimer struct {
	CPUTimer
}

func NewThreadTimer() *ThreadTimer {
	return &ThreadTimer{CPUTimer{clock: clockx.ThreadCPU()}}
}
