package sampling

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.hedera.com/solo-lynx/pkg/clockx"
	"golang.hedera.com/solo-lynx/pkg/frames"
	"golang.hedera.com/solo-lynx/pkg/runx"
	"golang.hedera.com/solo-lynx/pkg/tracehook"
	"strings"
	"testing"
	"time"
)

// emitTracedCall gives the patch capture a named frame to find.
func emitTracedCall() {
	tracehook.EmitCall()
}

func TestTracingSampler_ThrottlesOnClock(t *testing.T) {
	clock := clockx.NewManual()
	frameA := frames.NewFrame(frames.Code{Name: "app.worker", File: "worker.go"}, 10, nil)
	src := fixedSource{heads: map[frames.ContextID]*frames.Frame{99: frameA}}

	s := NewTracingSampler(Config{Interval: 10 * time.Millisecond, Source: src, Clock: clock})
	sink := &mockSink{}
	require.NoError(t, s.Start(sink))
	t.Cleanup(func() { _ = s.Stop() })

	countA := func() int {
		n := 0
		for _, head := range sink.snapshot() {
			if head == frameA {
				n++
			}
		}
		return n
	}

	// Nothing is accepted until a full interval has elapsed.
	tracehook.EmitCall()
	tracehook.EmitCall()
	assert.Equal(t, 0, countA())

	clock.Advance(10 * time.Millisecond)
	tracehook.EmitCall()
	tracehook.EmitReturn()
	assert.Equal(t, 1, countA())

	clock.Advance(9 * time.Millisecond)
	tracehook.EmitCall()
	assert.Equal(t, 1, countA())

	clock.Advance(time.Millisecond)
	tracehook.EmitCall()
	assert.Equal(t, 2, countA())
}

func TestTracingSampler_PatchesEmittingContext(t *testing.T) {
	clock := clockx.NewManual()
	s := NewTracingSampler(Config{Interval: time.Millisecond, Source: fixedSource{}, Clock: clock})
	sink := &mockSink{}
	require.NoError(t, s.Start(sink))
	t.Cleanup(func() { _ = s.Stop() })

	clock.Advance(time.Millisecond)
	emitTracedCall()

	heads := sink.snapshot()
	require.Len(t, heads, 1)
	require.NotNil(t, heads[0])
	assert.Contains(t, heads[0].Code().Name, "emitTracedCall")

	// The chain walks past the hook machinery out to the test itself.
	found := false
	for f := heads[0]; f != nil; f = f.Caller() {
		if strings.Contains(f.Code().Name, "PatchesEmittingContext") {
			found = true
		}
	}
	assert.True(t, found, "chain should reach the emitting test")
}

func TestTracingSampler_SamplesSpawnEvents(t *testing.T) {
	clock := clockx.NewManual()
	frameA := frames.NewFrame(frames.Code{Name: "app.spawned", File: "spawn.go"}, 3, nil)
	src := fixedSource{heads: map[frames.ContextID]*frames.Frame{7: frameA}}

	s := NewTracingSampler(Config{Interval: time.Millisecond, Source: src, Clock: clock})
	sink := &mockSink{}
	require.NoError(t, s.Start(sink))
	t.Cleanup(func() { _ = s.Stop() })

	clock.Advance(time.Millisecond)
	tracehook.EmitSpawn()

	assert.Contains(t, sink.snapshot(), frameA)
}

func TestTracingSampler_RestoresPriorHooks(t *testing.T) {
	var callSeen, spawnSeen int
	prevCall := tracehook.SetHook(func(tracehook.Event) { callSeen++ })
	prevSpawn := tracehook.SetSpawnHook(func(tracehook.Event) { spawnSeen++ })
	t.Cleanup(func() {
		tracehook.SetHook(prevCall)
		tracehook.SetSpawnHook(prevSpawn)
	})

	clock := clockx.NewManual()
	s := NewTracingSampler(Config{Interval: time.Millisecond, Source: fixedSource{}, Clock: clock})
	sink := &mockSink{}
	require.NoError(t, s.Start(sink))

	// While running, the sampler owns both slots.
	clock.Advance(time.Millisecond)
	tracehook.EmitCall()
	assert.Equal(t, 0, callSeen)
	assert.Equal(t, 1, sink.count())

	require.NoError(t, s.Stop())

	tracehook.EmitCall()
	tracehook.EmitSpawn()
	assert.Equal(t, 1, callSeen)
	assert.Equal(t, 1, spawnSeen)
	assert.Equal(t, 1, sink.count())
}

func TestTracingSampler_Lifecycle(t *testing.T) {
	s := NewTracingSampler(Config{Source: fixedSource{}})
	sink := &mockSink{}

	require.ErrorIs(t, s.Stop(), runx.ErrNotStarted)
	require.NoError(t, s.Start(sink))
	assert.True(t, s.Running())
	require.ErrorIs(t, s.Start(sink), runx.ErrAlreadyStarted)
	require.NoError(t, s.Stop())
	assert.False(t, s.Running())
	require.ErrorIs(t, s.Stop(), runx.ErrNotStarted)
}

func TestTracingSampler_NilSink(t *testing.T) {
	s := NewTracingSampler(Config{Source: fixedSource{}})
	require.Error(t, s.Start(nil))
	assert.False(t, s.Running())
}
