//go:build linux

package clockx

import (
	"golang.org/x/sys/unix"
	"time"
)

// CPU returns a clock measuring CPU time consumed by the whole process.
func CPU() Clock {
	return clockFunc(func() time.Duration {
		return gettime(unix.CLOCK_PROCESS_CPUTIME_ID)
	})
}

// ThreadCPU returns a clock measuring CPU time consumed by the calling OS
// thread only. Goroutines migrate between threads unless pinned with
// runtime.LockOSThread, so callers needing stable attribution must pin.
func ThreadCPU() Clock {
	return clockFunc(func() time.Duration {
		return gettime(unix.CLOCK_THREAD_CPUTIME_ID)
	})
}

func gettime(clockID int32) time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(clockID, &ts); err != nil {
		return 0
	}
	return time.Duration(ts.Nano())
}
