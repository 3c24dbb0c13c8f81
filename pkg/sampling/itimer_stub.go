//go:build !linux

package sampling

import "github.com/pkg/errors"

var errItimerUnsupported = errors.New(
	"sampling: itimer sampling requires the Linux profiling interval timer; use the tracing sampler")

// ItimerSampler is unavailable off Linux; the constructor reports why so
// callers can fall back to the tracing sampler.
type ItimerSampler struct {
	sampler
}

func NewItimerSampler(cfg Config) (*ItimerSampler, error) {
	return nil, errItimerUnsupported
}

func (s *ItimerSampler) Start(sink Sink) error {
	return errItimerUnsupported
}
