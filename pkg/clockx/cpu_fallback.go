//go:build !linux

package clockx

import (
	"github.com/shirou/gopsutil/v4/process"
	"os"
	"time"
)

// Platforms without a usable POSIX CPU-time clock fall back to process
// accounting. Thread-level attribution degrades to process level here.

// CPU returns a clock measuring CPU time consumed by the whole process.
func CPU() Clock {
	proc, err := process.NewProcess(int32(os.Getpid()))
	return clockFunc(func() time.Duration {
		if err != nil {
			return 0
		}
		times, terr := proc.Times()
		if terr != nil {
			return 0
		}
		return time.Duration((times.User + times.System) * float64(time.Second))
	})
}

// ThreadCPU returns the process CPU clock on platforms without per-thread
// clock support.
func ThreadCPU() Clock {
	return CPU()
}
