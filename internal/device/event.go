// Package device turns loosely typed wire payloads into canonical device
// events.
package device

import (
	"fmt"

	"github.com/jarodbruce/inputrelay/internal/keys"
)

// RawEvent is an untyped payload decoded from the wire.
type RawEvent map[string]any

// Event is one canonical device event. The set of implementations is closed.
type Event interface {
	Kind() string
	isEvent()
}

// Button identifies a mouse button using the browser numbering.
type Button uint32

const (
	ButtonLeft   Button = 0
	ButtonMiddle Button = 1
	ButtonRight  Button = 2
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return fmt.Sprintf("button%d", uint32(b))
	}
}

// PointerMove moves the pointer, either by a delta or to absolute coordinates.
type PointerMove struct {
	DX, DY   float64
	X, Y     float64
	Relative bool
}

// ButtonChange presses or releases a mouse button. Atomic is the legacy
// click: press immediately followed by release.
type ButtonChange struct {
	Button  Button
	Pressed bool
	Atomic  bool
}

// Wheel scrolls by the given amount in scroll units.
type Wheel struct {
	DX, DY float64
}

// KeyChange presses or releases a key. Atomic is the legacy tap surface,
// which has no matching release event.
type KeyChange struct {
	Key       keys.Token
	Pressed   bool
	Modifiers keys.ModifierSet
	Atomic    bool
}

// KeyCombo holds every key at once, then releases them.
type KeyCombo struct {
	Tokens []string
}

// TextInsert types a string.
type TextInsert struct {
	Text string
}

func (PointerMove) Kind() string  { return "pointer_move" }
func (ButtonChange) Kind() string { return "button" }
func (Wheel) Kind() string        { return "wheel" }
func (KeyChange) Kind() string    { return "key" }
func (KeyCombo) Kind() string     { return "combo" }
func (TextInsert) Kind() string   { return "text" }

func (PointerMove) isEvent()  {}
func (ButtonChange) isEvent() {}
func (Wheel) isEvent()        {}
func (KeyChange) isEvent()    {}
func (KeyCombo) isEvent()     {}
func (TextInsert) isEvent()   {}
