package sampling

import (
	"fmt"
	"github.com/google/uuid"
	"golang.hedera.com/solo-lynx/pkg/clockx"
	"golang.hedera.com/solo-lynx/pkg/frames"
	"golang.hedera.com/solo-lynx/pkg/logx"
	"golang.hedera.com/solo-lynx/pkg/runx"
	"sort"
	"time"
)

// DefaultInterval is the sampling interval used when none is configured.
const DefaultInterval = time.Millisecond

// Sink receives captured stacks, one innermost frame per context per
// sampling event. The profiler implements it. A sampler holds the sink only
// for its running scope and drops it on stop, so sampling never extends the
// profiler's lifetime.
type Sink interface {
	Sample(head *frames.Frame)
}

// Source produces a snapshot of every live context's innermost frame.
// Samplers read it once per sampling event; tests substitute canned sources.
type Source interface {
	CurrentFrames() frames.Snapshot
}

// RuntimeSource captures all goroutines through the runtime.
type RuntimeSource struct{}

func (RuntimeSource) CurrentFrames() frames.Snapshot {
	return frames.Capture()
}

// Sampler drives when stack captures happen and feeds every captured frame
// to the sink passed at start.
//
// Behavior:
//   - Start succeeds exactly once per cycle and installs whatever
//     process-global interception the variant needs; failures during that
//     setup unwind any partially installed state before the error returns.
//   - Stop restores the intercepted state in reverse order of installation
//     and must not be called from inside a sampling callback.
type Sampler interface {
	Start(sink Sink) error
	Stop() error
	Running() bool
	Interval() time.Duration
	Info() string
}

// Config carries the construction parameters shared by sampler kinds.
type Config struct {
	// Interval between accepted samples; DefaultInterval when zero.
	Interval time.Duration
	// Source supplies frame snapshots; the runtime-backed source when nil.
	Source Source
	// Clock paces the tracing sampler's throttle; the process CPU clock when
	// nil. The itimer sampler is paced by the kernel and ignores it.
	Clock clockx.Clock
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Source == nil {
		c.Source = RuntimeSource{}
	}
	if c.Clock == nil {
		c.Clock = clockx.CPU()
	}
	return c
}

// sampler is the base embedded by every variant.
type sampler struct {
	id        string
	lifecycle runx.Lifecycle
	interval  time.Duration
	source    Source
}

func newSampler(kind string, cfg Config) sampler {
	cfg = cfg.withDefaults()
	return sampler{
		id:       fmt.Sprintf("%s-sampler-%s", kind, uuid.New().String()[:8]),
		interval: cfg.Interval,
		source:   cfg.Source,
	}
}

func (s *sampler) Info() string {
	return s.id
}

func (s *sampler) Interval() time.Duration {
	return s.interval
}

func (s *sampler) Stop() error {
	if err := s.lifecycle.Stop(); err != nil {
		return err
	}

	logx.As().Debug().Str("sampler", s.id).Msg("Sampler stopped")
	return nil
}

func (s *sampler) Running() bool {
	return s.lifecycle.Running()
}

// Factory builds a sampler kind from a config.
type Factory func(cfg Config) (Sampler, error)

var factories map[string]Factory

// Register makes a sampler kind available to New. Kinds register themselves
// from this package's init.
func Register(kind string, f Factory) {
	if factories == nil {
		factories = map[string]Factory{}
	}

	factories[kind] = f
}

// New constructs a registered sampler kind.
func New(kind string, cfg Config) (Sampler, error) {
	if f, ok := factories[kind]; ok {
		return f(cfg)
	}
	return nil, fmt.Errorf("sampler kind %s not found", kind)
}

// Kinds returns the registered sampler kinds, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(factories))
	for kind := range factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
