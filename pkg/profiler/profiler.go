// Package profiler binds a sampler, an optional timer, and an aggregation
// root into one runnable measurement engine. The profiler performs no
// sampling itself; it configures when samples happen, turns each captured
// head into a bounded, filtered stack, and attributes elapsed CPU and wall
// time to the run.
package profiler

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.hedera.com/solo-lynx/pkg/clockx"
	"golang.hedera.com/solo-lynx/pkg/frames"
	"golang.hedera.com/solo-lynx/pkg/logx"
	"golang.hedera.com/solo-lynx/pkg/runx"
	"golang.hedera.com/solo-lynx/pkg/sampling"
	"golang.hedera.com/solo-lynx/pkg/sniff"
	"golang.hedera.com/solo-lynx/pkg/timers"
	"sync"
	"sync/atomic"
	"time"
)

// Config carries the construction parameters for a profiler.
type Config struct {
	// Sampler drives stack capture; required.
	Sampler sampling.Sampler
	// Timer attributes CPU time to execution contexts; optional.
	Timer timers.Timer
	// Aggregator receives sampled stacks; required.
	Aggregator Aggregator
	// Base bounds extracted stacks on the caller side; the walk stops
	// strictly before it.
	Base *frames.Frame
	// Ignored holds codes whose frames are skipped during extraction.
	Ignored *frames.CodeSet
	// Sniff enables self-observation for the run scope.
	Sniff *sniff.Config
	// CPUClock and WallClock override the elapsed-time clocks.
	CPUClock  clockx.Clock
	WallClock clockx.Clock
}

// Profiler orchestrates one measurement engine. It is the sink of its own
// sampler: captured heads flow back into Sample on whatever goroutine the
// sampler uses, so the profiler itself never blocks application code.
type Profiler struct {
	id        string
	lifecycle runx.Lifecycle
	sampler   sampling.Sampler
	timer     timers.Timer
	agg       Aggregator
	base      *frames.Frame
	ignored   *frames.CodeSet
	sniffer   *sniff.Sniffer
	cpuClock  clockx.Clock
	wallClock clockx.Clock

	samples atomic.Int64

	mu        sync.Mutex
	started   bool
	cpuStart  time.Duration
	wallStart time.Duration
}

func New(cfg Config) (*Profiler, error) {
	if cfg.Aggregator == nil {
		return nil, errors.New("profiler: an aggregation root is required")
	}
	if cfg.Sampler == nil {
		return nil, errors.New("profiler: a sampler is required")
	}

	if cfg.CPUClock == nil {
		cfg.CPUClock = clockx.CPU()
	}
	if cfg.WallClock == nil {
		cfg.WallClock = clockx.Wall()
	}

	p := &Profiler{
		id:        fmt.Sprintf("profiler-%s", uuid.New().String()[:8]),
		sampler:   cfg.Sampler,
		timer:     cfg.Timer,
		agg:       cfg.Aggregator,
		base:      cfg.Base,
		ignored:   cfg.Ignored,
		cpuClock:  cfg.CPUClock,
		wallClock: cfg.WallClock,
	}

	if cfg.Sniff != nil && cfg.Sniff.Enabled {
		p.sniffer = sniff.New(*cfg.Sniff, p)
	}

	return p, nil
}

// Start begins a run: accumulated statistics are cleared, the elapsed-time
// stamps are taken, then the timer, sampler, and sniffer enter their run
// scopes. A failure part way through unwinds whatever already started.
func (p *Profiler) Start() error {
	return p.lifecycle.Start(func(d *runx.Deferral) error {
		p.agg.Clear()
		p.samples.Store(0)

		p.mu.Lock()
		p.started = true
		p.cpuStart = p.cpuClock.Now()
		p.wallStart = p.wallClock.Now()
		p.mu.Unlock()

		if p.timer != nil {
			if err := p.timer.Start(); err != nil {
				return err
			}
			d.Defer(func() {
				if err := p.timer.Stop(); err != nil {
					logx.As().Error().Err(err).Msg("Failed to stop timer")
				}
			})
		}

		if err := p.sampler.Start(p); err != nil {
			return err
		}
		d.Defer(func() {
			if err := p.sampler.Stop(); err != nil {
				logx.As().Error().Err(err).Msg("Failed to stop sampler")
			}
		})

		if p.sniffer != nil {
			ctx, cancel := context.WithCancel(context.Background())
			if err := p.sniffer.Start(ctx); err != nil {
				cancel()
				return err
			}
			d.Defer(func() {
				p.sniffer.Stop()
				cancel()
			})
		}

		logx.As().Debug().
			Str("profiler", p.id).
			Str("sampler", p.sampler.Info()).
			Msg("Profiler started")
		return nil
	})
}

// Stop ends the run, unwinding in reverse start order. Statistics and the
// elapsed stamps survive so Result keeps reporting the finished run.
func (p *Profiler) Stop() error {
	if err := p.lifecycle.Stop(); err != nil {
		return err
	}

	logx.As().Debug().Str("profiler", p.id).Msg("Profiler stopped")
	return nil
}

func (p *Profiler) Running() bool {
	return p.lifecycle.Running()
}

func (p *Profiler) Info() string {
	return p.id
}

// Sample receives one captured head per context per sampling event and folds
// the extracted stack into the aggregation root. Heads reduced to nothing by
// the base bound and the ignore set are dropped.
func (p *Profiler) Sample(head *frames.Frame) {
	stack := frames.Extract(head, p.base, p.ignored)
	if len(stack) == 0 {
		return
	}

	p.agg.Record(stack)
	p.samples.Add(1)
}

// Result reports accumulated statistics with elapsed CPU and wall time. It
// never fails: before the first start both durations are zero, and clock
// anomalies clamp to zero.
func (p *Profiler) Result() Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	res := Result{Root: p.agg}
	if !p.started {
		return res
	}

	if cpu := p.cpuClock.Now() - p.cpuStart; cpu > 0 {
		res.CPUTime = cpu
	}
	if wall := p.wallClock.Now() - p.wallStart; wall > 0 {
		res.WallTime = wall
	}
	return res
}

// ExcludeCode drops one code's accumulated statistics. A code the root holds
// nothing for is a silent no-op.
func (p *Profiler) ExcludeCode(code frames.Code) {
	if err := p.agg.RemoveSubtree(code); err != nil && !errors.Is(err, ErrSubtreeNotFound) {
		logx.As().Warn().Err(err).Str("code", code.Name).Msg("Failed to remove code subtree")
	}
}

// ProfileStats implements sniff.Source.
func (p *Profiler) ProfileStats() sniff.ProfileStats {
	return sniff.ProfileStats{
		Profiler: p.id,
		Sampler:  p.sampler.Info(),
		Samples:  p.samples.Load(),
		Running:  p.Running(),
	}
}
