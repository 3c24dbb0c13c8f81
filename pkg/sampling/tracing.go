package sampling

import (
	"github.com/pkg/errors"
	"golang.hedera.com/solo-lynx/pkg/clockx"
	"golang.hedera.com/solo-lynx/pkg/frames"
	"golang.hedera.com/solo-lynx/pkg/logx"
	"golang.hedera.com/solo-lynx/pkg/runx"
	"golang.hedera.com/solo-lynx/pkg/tracehook"
	"sync/atomic"
)

// patchSkip is the number of frames between the instrumented code and the
// capture call inside handle: EmitCall/EmitReturn, emit, the hook closure
// installed by Start, and handle itself. CaptureCurrent resolves logical
// frames, so inlining does not disturb the count.
const patchSkip = 4

// TracingSampler samples by occupying the process-wide trace-event slots.
// Every call, return, and spawn reported by instrumented code is a sampling
// opportunity, throttled so that at most one sample per interval is taken on
// the configured clock. It needs no timer signal and works on every
// platform, at the price of only seeing code that emits trace events.
type TracingSampler struct {
	sampler
	clock       clockx.Clock
	lastSampled atomic.Int64
}

func NewTracingSampler(cfg Config) *TracingSampler {
	cfg = cfg.withDefaults()
	return &TracingSampler{
		sampler: newSampler(KindTracing, cfg),
		clock:   cfg.Clock,
	}
}

// Start occupies both trace slots with the throttled handler. The previous
// occupants are restored on Stop, most recently installed first.
func (s *TracingSampler) Start(sink Sink) error {
	if sink == nil {
		return errors.New("sampling: tracing sampler requires a sink")
	}

	return s.lifecycle.Start(func(d *runx.Deferral) error {
		hook := func(tracehook.Event) {
			s.handle(sink)
		}

		prevCall := tracehook.SetHook(hook)
		d.Defer(func() { tracehook.SetHook(prevCall) })

		prevSpawn := tracehook.SetSpawnHook(hook)
		d.Defer(func() { tracehook.SetSpawnHook(prevSpawn) })

		logx.As().Debug().
			Str("sampler", s.id).
			Dur("interval", s.interval).
			Msg("Tracing sampler occupied trace slots")
		return nil
	})
}

// handle runs inline on the goroutine that emitted the trace event. The
// last-sample stamp is compare-and-swapped so concurrent emitters collapse
// to one sample per interval.
func (s *TracingSampler) handle(sink Sink) {
	now := int64(s.clock.Now())
	last := s.lastSampled.Load()
	if now-last < int64(s.interval) {
		return
	}
	if !s.lastSampled.CompareAndSwap(last, now) {
		return
	}

	snap := s.source.CurrentFrames()

	// The emitting goroutine's snapshot entry shows this handler, not the
	// instrumented code. Replace it with a capture taken past the hook
	// machinery.
	if ctx := frames.CurrentID(); ctx != 0 {
		if head := frames.CaptureCurrent(patchSkip); head != nil {
			snap[ctx] = head
		}
	}

	for _, head := range snap {
		sink.Sample(head)
	}
}
