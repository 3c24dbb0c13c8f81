package runx

import (
	"errors"
	"sync"
)

var (
	// ErrAlreadyStarted indicates Start was called while the component is running.
	ErrAlreadyStarted = errors.New("runx: already started")
	// ErrNotStarted indicates Stop was called while the component is stopped.
	ErrNotStarted = errors.New("runx: not started")
)

// Runnable is the lifecycle contract shared by every long-lived component
// (samplers, timers, the profiler itself).
//
// Behavior:
//   - Start succeeds exactly once per cycle; starting a running component
//     fails with ErrAlreadyStarted.
//   - Stop succeeds exactly once per cycle; stopping a stopped component
//     fails with ErrNotStarted.
//   - A component may be reused by pairing every Start with a Stop before
//     the next Start.
type Runnable interface {
	Start() error
	Stop() error
	Running() bool
}

// Task is the enter half of a component's run scope: it acquires resources
// and registers their teardown on the deferral. The registered actions run
// in reverse order when the scope exits via Stop.
type Task func(d *Deferral) error

// Lifecycle is a two-phase state machine (stopped/running) guarding a run
// scope. Components embed it and delegate their Start/Stop to it. The zero
// value is ready to use.
type Lifecycle struct {
	mu     sync.Mutex
	defers *Deferral
}

// Start enters the run scope by invoking task. If task fails, any teardown
// it registered before failing is executed in reverse order, the error is
// returned, and the state remains stopped.
func (l *Lifecycle) Start(task Task) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.defers != nil {
		return ErrAlreadyStarted
	}

	d := NewDeferral()
	if err := task(d); err != nil {
		d.run()
		return err
	}

	l.defers = d
	return nil
}

// Stop exits the run scope, executing the registered teardown actions in
// reverse registration order.
func (l *Lifecycle) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.defers == nil {
		return ErrNotStarted
	}

	d := l.defers
	l.defers = nil
	d.run()
	return nil
}

// Running reports whether the component is between Start and Stop.
func (l *Lifecycle) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.defers != nil
}
