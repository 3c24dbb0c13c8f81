package profiler

import (
	"github.com/pkg/errors"
	"golang.hedera.com/solo-lynx/internal/config"
	"golang.hedera.com/solo-lynx/internal/version"
	"golang.hedera.com/solo-lynx/pkg/frames"
	"golang.hedera.com/solo-lynx/pkg/logx"
	"golang.hedera.com/solo-lynx/pkg/sampling"
	"golang.hedera.com/solo-lynx/pkg/timers"
	"time"
)

// NewFromConfig builds a profiler from the configuration file at path. The
// file selects the sampler kind, the timer kind, the sampling interval, the
// ignored code patterns, and the self-observation settings; agg receives the
// sampled stacks.
//
// Parameters:
//   - path: path of the configuration file
//   - agg: aggregation root that accumulates sampled stacks
//
// Returns:
//   - *Profiler: the constructed profiler, not yet started
//   - error: if the configuration cannot be loaded or a component cannot be built
func NewFromConfig(path string, agg Aggregator) (*Profiler, error) {
	if err := config.Initialize(path); err != nil {
		return nil, errors.Wrap(err, "failed to initialize configuration")
	}

	cfg := config.Get()
	if err := logx.Initialize(cfg.Log); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logging")
	}

	logx.As().Info().
		Str("version", version.Number()).
		Str("commit", version.Commit()).
		Str("sampler", cfg.Profile.Sampler).
		Str("interval", cfg.Profile.Interval).
		Msg("Building profiler")

	if err := config.ValidateProfileConfig(*cfg.Profile); err != nil {
		return nil, err
	}
	if err := config.ValidateSniffConfig(*cfg.Sniff); err != nil {
		return nil, err
	}

	interval, err := time.ParseDuration(cfg.Profile.Interval)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse sampling interval")
	}

	ignored, err := frames.NewCodeSet(cfg.Profile.IgnoredCodes...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile ignored code patterns")
	}

	sampler, err := sampling.New(cfg.Profile.Sampler, sampling.Config{Interval: interval})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sampler")
	}

	timer, err := newTimer(cfg.Profile.Timer)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create timer")
	}

	return New(Config{
		Sampler:    sampler,
		Timer:      timer,
		Aggregator: agg,
		Ignored:    ignored,
		Sniff:      cfg.Sniff,
	})
}

// newTimer maps a configured timer kind to a timer instance. An empty kind
// disables per-context timing.
func newTimer(kind string) (timers.Timer, error) {
	switch kind {
	case "":
		return nil, nil
	case timers.KindCPU:
		return timers.NewCPUTimer(), nil
	case timers.KindThread:
		return timers.NewThreadTimer(), nil
	case timers.KindFiber:
		return timers.NewFiberTimer(nil), nil
	default:
		return nil, errors.Errorf("timer kind %s not found", kind)
	}
}
