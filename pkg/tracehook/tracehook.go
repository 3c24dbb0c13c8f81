// Package tracehook carries the process-wide trace-event slots that the
// tracing sampler occupies: one for call/return events, one that observes
// context spawns. Instrumented code reports through the Emit functions;
// hooks run synchronously on the emitting goroutine, so a hook can derive
// the current context and frame directly.
package tracehook

import "sync/atomic"

// Kind classifies a trace event.
type Kind int

const (
	KindCall Kind = iota
	KindReturn
	KindSpawn
)

func (k Kind) String() string {
	switch k {
	case KindCall:
		return "call"
	case KindReturn:
		return "return"
	case KindSpawn:
		return "spawn"
	default:
		return "unknown"
	}
}

// Event is delivered inline on the goroutine that emitted it.
type Event struct {
	Kind Kind
}

// Hook observes trace events. Hooks run inline on the emitting goroutine and
// must return quickly; every traced call pays their cost.
type Hook func(Event)

var (
	callHook  atomic.Pointer[Hook]
	spawnHook atomic.Pointer[Hook]
)

// SetHook installs fn into the call/return slot and returns the previous
// occupant. The slot has at most one owner at a time; an owner restores the
// returned value when its scope ends.
func SetHook(fn Hook) Hook {
	return swap(&callHook, fn)
}

// SetSpawnHook installs fn into the spawn-observing slot and returns the
// previous occupant.
func SetSpawnHook(fn Hook) Hook {
	return swap(&spawnHook, fn)
}

func swap(slot *atomic.Pointer[Hook], fn Hook) Hook {
	var p *Hook
	if fn != nil {
		p = &fn
	}
	if old := slot.Swap(p); old != nil {
		return *old
	}
	return nil
}

// EmitCall reports entry into a traced function.
func EmitCall() {
	emit(&callHook, Event{Kind: KindCall})
}

// EmitReturn reports return from a traced function.
func EmitReturn() {
	emit(&callHook, Event{Kind: KindReturn})
}

// EmitSpawn reports creation of a new execution context (e.g. a worker
// goroutine an instrumented program just launched).
func EmitSpawn() {
	emit(&spawnHook, Event{Kind: KindSpawn})
}

func emit(slot *atomic.Pointer[Hook], ev Event) {
	if p := slot.Load(); p != nil {
		(*p)(ev)
	}
}
