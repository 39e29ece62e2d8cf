package input

import (
	"fmt"
	"time"

	"github.com/jarodbruce/inputrelay/internal/keys"
)

// serialized guards a backend with a process-wide exclusive lock and bounds
// every call with a timeout. A call that overruns keeps the lock until it
// returns, so calls from different sessions never interleave.
type serialized struct {
	inj     Injector
	timeout time.Duration
	release time.Duration
	sem     chan struct{}
}

// releaseFactor scales the call timeout into the bound for cleanup
// releases.
const releaseFactor = 10

// Serialize wraps inj so that at most one call runs at a time across all
// callers. Waiting for the lock and running the call share one timeout.
func Serialize(inj Injector, timeout time.Duration) Injector {
	return &serialized{
		inj:     inj,
		timeout: timeout,
		release: timeout * releaseFactor,
		sem:     make(chan struct{}, 1),
	}
}

func (s *serialized) do(op string, fn func() error) error {
	return s.doWithin(op, s.timeout, fn)
}

func (s *serialized) doWithin(op string, timeout time.Duration, fn func() error) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case s.sem <- struct{}{}:
	case <-timer.C:
		return fmt.Errorf("%s: %w waiting for injector", op, ErrInjectionTimeout)
	}

	done := make(chan error, 1)
	go func() {
		defer func() { <-s.sem }()
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%s: injector panicked: %v", op, r)
			}
		}()
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("%s: %w after %s", op, ErrInjectionTimeout, timeout)
	}
}

func (s *serialized) MoveTo(x, y int) error {
	return s.do("move", func() error { return s.inj.MoveTo(x, y) })
}

func (s *serialized) ButtonDown(b Button) error {
	return s.do("button down", func() error { return s.inj.ButtonDown(b) })
}

func (s *serialized) ButtonUp(b Button) error {
	return s.do("button up", func() error { return s.inj.ButtonUp(b) })
}

func (s *serialized) Scroll(dx, dy float64) error {
	return s.do("scroll", func() error { return s.inj.Scroll(dx, dy) })
}

func (s *serialized) KeyDown(k keys.Token) error {
	return s.do("key down", func() error { return s.inj.KeyDown(k) })
}

func (s *serialized) KeyUp(k keys.Token) error {
	return s.do("key up", func() error { return s.inj.KeyUp(k) })
}

func (s *serialized) TypeString(text string) error {
	return s.do("type", func() error { return s.inj.TypeString(text) })
}

// ReleaseKey releases k, waiting out an overrunning call that still holds
// the lock.
func (s *serialized) ReleaseKey(k keys.Token) error {
	return s.doWithin("release key", s.release, func() error { return s.inj.KeyUp(k) })
}

func (s *serialized) ReleaseButton(b Button) error {
	return s.doWithin("release button", s.release, func() error { return s.inj.ButtonUp(b) })
}

func (s *serialized) Position() (int, int, error) {
	loc, ok := s.inj.(Locator)
	if !ok {
		return 0, 0, ErrUnsupported
	}
	var x, y int
	err := s.do("position", func() error {
		var err error
		x, y, err = loc.Position()
		return err
	})
	return x, y, err
}
