//go:build linux

package sampling

import (
	"github.com/pkg/errors"
	"golang.hedera.com/solo-lynx/pkg/frames"
	"golang.hedera.com/solo-lynx/pkg/logx"
	"golang.hedera.com/solo-lynx/pkg/runx"
	"golang.org/x/sys/unix"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ItimerSampler drives sampling from the kernel's profiling interval timer.
// ITIMER_PROF counts process CPU time, so an idle process generates no
// deliveries and no overhead. Each SIGPROF wakes the receiver, which parks
// on the signal channel between deliveries.
//
// Arming replaces the process-wide itimer and SIGPROF subscription; both
// prior values are saved on start and restored on stop.
type ItimerSampler struct {
	sampler

	// arm installs the profiling timer and returns its undo. Swappable so
	// tests can fail the arm step without touching the process timer.
	arm func(interval time.Duration) (restore func(), err error)
}

func NewItimerSampler(cfg Config) (*ItimerSampler, error) {
	s := &ItimerSampler{sampler: newSampler(KindItimer, cfg)}
	s.arm = armItimer
	return s, nil
}

// Start subscribes to SIGPROF, arms the timer, and launches the receiver.
// Stop unwinds in reverse: the receiver is drained first, then the previous
// itimer value is restored, then the signal subscription is dropped.
func (s *ItimerSampler) Start(sink Sink) error {
	if sink == nil {
		return errors.New("sampling: itimer sampler requires a sink")
	}

	return s.lifecycle.Start(func(d *runx.Deferral) error {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGPROF)
		d.Defer(func() { signal.Stop(ch) })

		restore, err := s.arm(s.interval)
		if err != nil {
			return err
		}
		d.Defer(restore)

		done := make(chan struct{})
		finished := make(chan struct{})
		go s.receive(ch, done, finished, sink)
		d.Defer(func() {
			close(done)
			<-finished
		})

		logx.As().Debug().
			Str("sampler", s.id).
			Dur("interval", s.interval).
			Msg("Itimer sampler armed profiling timer")
		return nil
	})
}

func (s *ItimerSampler) receive(ch <-chan os.Signal, done <-chan struct{}, finished chan<- struct{}, sink Sink) {
	defer close(finished)

	own := frames.CurrentID()
	for {
		select {
		case <-done:
			return
		case <-ch:
			s.capture(own, sink)
		}
	}
}

func (s *ItimerSampler) capture(own frames.ContextID, sink Sink) {
	snap := s.source.CurrentFrames()

	// The receiver's own entry shows only signal plumbing; dropping it keeps
	// sampler overhead out of the profile.
	delete(snap, own)

	for _, head := range snap {
		sink.Sample(head)
	}
}

// armItimer arms ITIMER_PROF to fire every interval and returns a closure
// restoring whatever value the timer held before.
func armItimer(interval time.Duration) (func(), error) {
	next := unix.Itimerval{
		Interval: unix.NsecToTimeval(interval.Nanoseconds()),
		Value:    unix.NsecToTimeval(interval.Nanoseconds()),
	}

	prev, err := unix.Setitimer(unix.ItimerProf, next)
	if err != nil {
		return nil, errors.Wrap(err, "failed to arm profiling interval timer")
	}

	return func() {
		if _, err := unix.Setitimer(unix.ItimerProf, prev); err != nil {
			logx.As().Error().Err(err).Msg("Failed to restore profiling interval timer")
		}
	}, nil
}
