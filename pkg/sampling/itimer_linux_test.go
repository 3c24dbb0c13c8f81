//go:build linux

package sampling

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.hedera.com/solo-lynx/pkg/runx"
	"golang.org/x/sys/unix"
	"testing"
	"time"
)

func spinFor(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}

func TestNew_ItimerKind(t *testing.T) {
	s, err := New(KindItimer, Config{})
	require.NoError(t, err)
	assert.Contains(t, s.Info(), KindItimer)
}

func TestItimerSampler_SamplesBusyProcess(t *testing.T) {
	s, err := NewItimerSampler(Config{Interval: 5 * time.Millisecond})
	require.NoError(t, err)

	sink := &mockSink{}
	require.NoError(t, s.Start(sink))

	spinFor(100 * time.Millisecond)

	require.NoError(t, s.Stop())
	assert.GreaterOrEqual(t, sink.count(), 1)
}

func TestItimerSampler_StopHaltsSampling(t *testing.T) {
	s, err := NewItimerSampler(Config{Interval: 5 * time.Millisecond})
	require.NoError(t, err)

	sink := &mockSink{}
	require.NoError(t, s.Start(sink))
	spinFor(50 * time.Millisecond)
	require.NoError(t, s.Stop())

	stopped := sink.count()
	spinFor(50 * time.Millisecond)
	assert.Equal(t, stopped, sink.count())
}

func TestItimerSampler_ArmFailureUnwinds(t *testing.T) {
	s, err := NewItimerSampler(Config{})
	require.NoError(t, err)
	s.arm = func(time.Duration) (func(), error) {
		return nil, errors.New("setitimer: operation not permitted")
	}

	require.Error(t, s.Start(&mockSink{}))
	assert.False(t, s.Running())
	require.ErrorIs(t, s.Stop(), runx.ErrNotStarted)
}

func TestItimerSampler_RestoresPreviousTimer(t *testing.T) {
	before, err := unix.Getitimer(unix.ItimerProf)
	require.NoError(t, err)

	s, err := NewItimerSampler(Config{Interval: 5 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, s.Start(&mockSink{}))

	armed, err := unix.Getitimer(unix.ItimerProf)
	require.NoError(t, err)
	assert.False(t, armed.Interval.Sec == 0 && armed.Interval.Usec == 0,
		"profiling timer should be armed while running")

	require.NoError(t, s.Stop())

	after, err := unix.Getitimer(unix.ItimerProf)
	require.NoError(t, err)
	assert.Equal(t, before.Interval, after.Interval)
}
