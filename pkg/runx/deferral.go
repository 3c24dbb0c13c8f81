package runx

// Deferral collects cleanup actions while a scope acquires resources and
// releases them in reverse order on exit. Samplers use it to guarantee that
// process-wide interception state (signal subscriptions, interval timers,
// trace callbacks) is restored even when a later setup step fails, since
// leaking any of those corrupts the host process for unrelated code.
type Deferral struct {
	actions []func()
}

func NewDeferral() *Deferral {
	return &Deferral{}
}

// Defer registers fn to run on scope exit. Actions run in reverse
// registration order, each exactly once.
func (d *Deferral) Defer(fn func()) {
	d.actions = append(d.actions, fn)
}

// Len returns the number of pending actions.
func (d *Deferral) Len() int {
	return len(d.actions)
}

// run pops and executes every pending action, last registered first.
func (d *Deferral) run() {
	for i := len(d.actions) - 1; i >= 0; i-- {
		d.actions[i]()
	}
	d.actions = nil
}

// WithDeferral runs fn inside a fresh deferral scope. Registered actions
// execute in reverse order when fn returns, whether it succeeds or fails;
// fn's error is returned after the unwind completes.
func WithDeferral(fn func(d *Deferral) error) error {
	d := NewDeferral()
	defer d.run()
	return fn(d)
}
