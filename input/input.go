// Package input defines the host injection capability: moving the pointer,
// pressing and releasing buttons and keys, scrolling and typing text.
// Platform backends live in the robot subpackage.
package input

import (
	"errors"
	"fmt"

	"github.com/jarodbruce/inputrelay/internal/keys"
)

var (
	ErrUnsupported      = errors.New("input injection not supported on this platform")
	ErrUnknownButton    = errors.New("unknown mouse button")
	ErrUnknownKey       = errors.New("unknown key")
	ErrInjectionTimeout = errors.New("injection timed out")
)

type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
)

// OtherButton names a button outside left/middle/right by its browser code.
func OtherButton(code uint32) Button {
	return Button(fmt.Sprintf("button%d", code))
}

// Injector drives synthetic input on the host. Calls are expected to return
// quickly; callers serialize access with Serialize.
type Injector interface {
	// MoveTo moves the cursor to absolute screen coordinates.
	MoveTo(x, y int) error

	ButtonDown(b Button) error
	ButtonUp(b Button) error

	// Scroll scrolls by the given number of units on each axis. Positive
	// dy scrolls up, positive dx scrolls right.
	Scroll(dx, dy float64) error

	// KeyDown presses a canonical key or a literal key name.
	KeyDown(k keys.Token) error
	KeyUp(k keys.Token) error

	// TypeString types text using synthetic keyboard events.
	TypeString(s string) error
}

// Releaser is implemented by injectors whose cleanup releases may wait
// longer than a regular call. A release issued after a timed-out press
// then still reaches the host once the press finishes.
type Releaser interface {
	ReleaseKey(k keys.Token) error
	ReleaseButton(b Button) error
}

// Locator is implemented by backends that can report the cursor position.
type Locator interface {
	Position() (x, y int, err error)
}
