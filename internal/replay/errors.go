package replay

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when a pointer move targets a point outside
// the display area.
var ErrOutOfBounds = errors.New("pointer target outside display bounds")

// InjectionError reports which injector operation failed and on what key
// or button.
type InjectionError struct {
	Op     string
	Target string
	Err    error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *InjectionError) Unwrap() error { return e.Err }
