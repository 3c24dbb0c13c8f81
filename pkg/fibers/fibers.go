// Package fibers carries the process-wide state for cooperative fibers:
// which fiber a scheduler is currently running, and the single switch-trace
// slot observers occupy to be told about every transfer of control.
package fibers

import "sync"

// ID identifies a cooperative fiber. Hosts that multiplex fibers onto a
// scheduler assign the ids; 0 means no fiber is scheduled.
type ID int64

// SwitchFunc observes a transfer of control from origin to target.
type SwitchFunc func(origin, target ID)

var (
	mu      sync.Mutex
	trace   SwitchFunc
	current ID
)

// Switch records that the scheduler transferred control from origin to
// target and invokes the installed switch trace, if any. Cooperative
// schedulers call it on every transfer.
func Switch(origin, target ID) {
	mu.Lock()
	current = target
	fn := trace
	mu.Unlock()

	if fn != nil {
		fn(origin, target)
	}
}

// Current returns the fiber currently scheduled, or 0 if none.
func Current() ID {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// SetSwitchTrace installs fn into the switch-trace slot and returns the
// previous occupant. The slot has at most one owner at a time; an owner
// restores the returned value when its scope ends, so nesting with another
// tool observing switches is survivable.
func SetSwitchTrace(fn SwitchFunc) SwitchFunc {
	mu.Lock()
	defer mu.Unlock()
	prev := trace
	trace = fn
	return prev
}
