package profiler

import (
	"errors"
	"golang.hedera.com/solo-lynx/pkg/frames"
	"time"
)

// ErrSubtreeNotFound reports that an aggregation root holds no statistics
// for the requested code. Aggregator implementations return it (wrapped or
// not) from RemoveSubtree.
var ErrSubtreeNotFound = errors.New("profiler: code subtree not found")

// Aggregator accumulates sampled stacks into whatever statistics structure
// the host maintains. The profiler drives it but never inspects it.
//
// Record receives one stack per live context per sampling event, ordered
// oldest caller first. Clear resets accumulated statistics when a run
// starts. RemoveSubtree drops one code's statistics, returning
// ErrSubtreeNotFound when the code has none.
type Aggregator interface {
	Record(stack []*frames.Frame)
	Clear()
	RemoveSubtree(code frames.Code) error
}

// Result is a point-in-time view of a profiling run.
type Result struct {
	// Root is the aggregation root holding accumulated statistics.
	Root Aggregator
	// CPUTime is process CPU time consumed since the run started.
	CPUTime time.Duration
	// WallTime is wall time elapsed since the run started.
	WallTime time.Duration
}
