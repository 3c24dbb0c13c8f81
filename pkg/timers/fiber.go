package timers

import (
	"golang.hedera.com/solo-lynx/pkg/clockx"
	"golang.hedera.com/solo-lynx/pkg/fibers"
	"golang.hedera.com/solo-lynx/pkg/logx"
	"golang.hedera.com/solo-lynx/pkg/runx"
)

// FiberTimer attributes CPU time to cooperative fibers. Fibers multiplexed
// onto one scheduler share that scheduler's OS-level clock, so pause/resume
// bookkeeping driven by switch events is the only way to tell them apart.
// While running, the timer occupies the process-wide fiber switch-trace
// slot: every switch pauses the origin fiber and resumes the target. The
// prior slot occupant is saved on start and restored on stop.
type FiberTimer struct {
	ContextualTimer
}

// NewFiberTimer builds a fiber timer over clock (the process CPU clock when
// nil). The current-context detector reads the fiber registry.
func NewFiberTimer(clock clockx.Clock) *FiberTimer {
	if clock == nil {
		clock = clockx.CPU()
	}

	t := &FiberTimer{}
	t.CPUTimer = CPUTimer{clock: clock}
	t.records = map[Context]*record{}
	t.detect = func() Context {
		return Context(fibers.Current())
	}
	return t
}

func (t *FiberTimer) Start() error {
	return t.lifecycle.Start(func(d *runx.Deferral) error {
		prev := fibers.SetSwitchTrace(t.onSwitch)
		d.Defer(func() {
			fibers.SetSwitchTrace(prev)
		})

		logx.As().Debug().Msg("Fiber timer installed switch trace")
		return nil
	})
}

func (t *FiberTimer) onSwitch(origin, target fibers.ID) {
	t.Pause(Context(origin))
	t.Resume(Context(target))
}
