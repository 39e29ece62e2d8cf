// Package display reports the geometry of the attached displays.
package display

import (
	"errors"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
	"go.uber.org/zap"

	"github.com/jarodbruce/inputrelay/internal/logging"
)

var log = logging.L("display")

// ErrNoDisplay is returned when no active display is found.
var ErrNoDisplay = errors.New("no active display")

// Source enumerates display rectangles. The screenshot package is the
// default; tests supply their own.
type Source interface {
	NumActiveDisplays() int
	GetDisplayBounds(i int) image.Rectangle
}

type screenshotSource struct{}

func (screenshotSource) NumActiveDisplays() int                 { return screenshot.NumActiveDisplays() }
func (screenshotSource) GetDisplayBounds(i int) image.Rectangle { return screenshot.GetDisplayBounds(i) }

// Default is backed by the host's displays.
var Default Source = screenshotSource{}

// Bounds returns the rectangle covering every active display, in the same
// virtual-desktop coordinates the injector uses.
func Bounds(src Source) (image.Rectangle, error) {
	n := src.NumActiveDisplays()
	if n <= 0 {
		return image.Rectangle{}, ErrNoDisplay
	}
	var all image.Rectangle
	for i := 0; i < n; i++ {
		b := src.GetDisplayBounds(i)
		log.Debug("display found", zap.Int("index", i), zap.Stringer("bounds", b))
		all = all.Union(b)
	}
	if all.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: displays report empty bounds", ErrNoDisplay)
	}
	return all, nil
}
