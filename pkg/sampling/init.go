package sampling

import "sync"

// Registered sampler kinds.
const (
	KindItimer  = "itimer"
	KindTracing = "tracing"
)

var registerOnce sync.Once

func init() {
	registerOnce.Do(func() {
		Register(KindItimer, func(cfg Config) (Sampler, error) {
			s, err := NewItimerSampler(cfg)
			if err != nil {
				return nil, err
			}
			return s, nil
		})
		Register(KindTracing, func(cfg Config) (Sampler, error) {
			return NewTracingSampler(cfg), nil
		})
	})
}
