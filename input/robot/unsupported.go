//go:build !cgo && !windows

package robot

import (
	"github.com/jarodbruce/inputrelay/input"
	"github.com/jarodbruce/inputrelay/internal/keys"
)

// unsupported is used where no backend can be built, e.g. a cgo-less build
// on Linux or macOS. Every call fails.
type unsupported struct{}

// New returns the injector for this platform.
func New() input.Injector { return unsupported{} }

func (unsupported) MoveTo(int, int) error         { return input.ErrUnsupported }
func (unsupported) ButtonDown(input.Button) error { return input.ErrUnsupported }
func (unsupported) ButtonUp(input.Button) error   { return input.ErrUnsupported }
func (unsupported) Scroll(float64, float64) error { return input.ErrUnsupported }
func (unsupported) KeyDown(keys.Token) error      { return input.ErrUnsupported }
func (unsupported) KeyUp(keys.Token) error        { return input.ErrUnsupported }
func (unsupported) TypeString(string) error       { return input.ErrUnsupported }
