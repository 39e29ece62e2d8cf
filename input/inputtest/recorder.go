// Package inputtest provides an Injector that records calls instead of
// touching the host.
package inputtest

import (
	"fmt"
	"sync"

	"github.com/jarodbruce/inputrelay/input"
	"github.com/jarodbruce/inputrelay/internal/keys"
)

// Recorder records every injector call as a short string such as
// "move 10,20", "down left", "scroll 0,-3", "keydown Key.ctrl", "keyup c"
// or "type hello". Calls listed in Fail return the mapped error and are
// still recorded.
type Recorder struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error

	// X and Y are reported by Position.
	X, Y int
}

var _ input.Injector = (*Recorder)(nil)
var _ input.Locator = (*Recorder)(nil)

func New() *Recorder {
	return &Recorder{fail: make(map[string]error)}
}

// FailOn makes the call with the given description return err.
func (r *Recorder) FailOn(call string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[call] = err
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Reset forgets recorded calls; configured failures are kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) record(format string, args ...any) error {
	call := fmt.Sprintf(format, args...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	return r.fail[call]
}

func (r *Recorder) MoveTo(x, y int) error {
	return r.record("move %d,%d", x, y)
}

func (r *Recorder) ButtonDown(b input.Button) error {
	return r.record("down %s", b)
}

func (r *Recorder) ButtonUp(b input.Button) error {
	return r.record("up %s", b)
}

func (r *Recorder) Scroll(dx, dy float64) error {
	return r.record("scroll %g,%g", dx, dy)
}

func (r *Recorder) KeyDown(k keys.Token) error {
	return r.record("keydown %s", k)
}

func (r *Recorder) KeyUp(k keys.Token) error {
	return r.record("keyup %s", k)
}

func (r *Recorder) TypeString(s string) error {
	return r.record("type %s", s)
}

func (r *Recorder) Position() (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.X, r.Y, nil
}
