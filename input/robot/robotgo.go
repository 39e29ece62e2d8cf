//go:build cgo

package robot

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-vgo/robotgo"
	"github.com/vcaesar/keycode"

	"github.com/jarodbruce/inputrelay/input"
	"github.com/jarodbruce/inputrelay/internal/keys"
)

// robotKeys maps canonical keys to robotgo key names.
var robotKeys = map[keys.Key]string{
	keys.Backspace:   "backspace",
	keys.Delete:      "delete",
	keys.Enter:       "enter",
	keys.Tab:         "tab",
	keys.Space:       "space",
	keys.Escape:      "esc",
	keys.Up:          "up",
	keys.Down:        "down",
	keys.Left:        "left",
	keys.Right:       "right",
	keys.Shift:       "shift",
	keys.ShiftL:      "lshift",
	keys.ShiftR:      "rshift",
	keys.Ctrl:        "ctrl",
	keys.CtrlL:       "lctrl",
	keys.CtrlR:       "rctrl",
	keys.Alt:         "alt",
	keys.AltL:        "lalt",
	keys.AltR:        "ralt",
	keys.AltGr:       "ralt",
	keys.Cmd:         "cmd",
	keys.CapsLock:    "capslock",
	keys.NumLock:     "num_lock",
	keys.ScrollLock:  "scroll_lock",
	keys.Home:        "home",
	keys.End:         "end",
	keys.PageUp:      "pageup",
	keys.PageDown:    "pagedown",
	keys.Insert:      "insert",
	keys.PrintScreen: "printscreen",
	keys.Menu:        "menu",
	keys.Pause:       "pause",
}

func init() {
	for _, k := range []keys.Key{
		keys.F1, keys.F2, keys.F3, keys.F4, keys.F5, keys.F6, keys.F7,
		keys.F8, keys.F9, keys.F10, keys.F11, keys.F12, keys.F13, keys.F14,
		keys.F15, keys.F16, keys.F17, keys.F18, keys.F19, keys.F20,
	} {
		robotKeys[k] = string(k)
	}
}

// Robot injects input through robotgo.
type Robot struct{}

// New returns the injector for this platform.
func New() input.Injector { return Robot{} }

func (Robot) MoveTo(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (Robot) ButtonDown(b input.Button) error {
	name, err := robotButton(b)
	if err != nil {
		return err
	}
	return robotgo.Toggle(name, "down")
}

func (Robot) ButtonUp(b input.Button) error {
	name, err := robotButton(b)
	if err != nil {
		return err
	}
	return robotgo.Toggle(name, "up")
}

func (Robot) Scroll(dx, dy float64) error {
	robotgo.Scroll(scrollSteps(dx), scrollSteps(dy))
	return nil
}

func (Robot) KeyDown(k keys.Token) error {
	name, mods, err := robotKey(k)
	if err != nil {
		return err
	}
	return robotgo.KeyToggle(name, append([]interface{}{"down"}, mods...)...)
}

func (Robot) KeyUp(k keys.Token) error {
	name, mods, err := robotKey(k)
	if err != nil {
		return err
	}
	return robotgo.KeyToggle(name, append([]interface{}{"up"}, mods...)...)
}

func (Robot) TypeString(s string) error {
	robotgo.TypeStr(s)
	return nil
}

func (Robot) Position() (int, int, error) {
	x, y := robotgo.GetMousePos()
	return x, y, nil
}

func robotButton(b input.Button) (string, error) {
	switch b {
	case input.ButtonLeft:
		return "left", nil
	case input.ButtonRight:
		return "right", nil
	case input.ButtonMiddle:
		return "center", nil
	}
	return "", fmt.Errorf("%w: %s", input.ErrUnknownButton, b)
}

// robotKey translates a token into a robotgo key name plus the modifiers
// needed to produce it. Shifted characters are sent as their base key with
// shift held.
func robotKey(k keys.Token) (string, []interface{}, error) {
	if k.IsNamed() {
		name, ok := robotKeys[k.Key]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", input.ErrUnknownKey, k)
		}
		return name, nil, nil
	}

	lit := k.Literal
	if lit == " " {
		return "space", nil, nil
	}
	if base, ok := keycode.Special[lit]; ok {
		return base, []interface{}{"shift"}, nil
	}
	if r := []rune(lit); len(r) == 1 && unicode.IsUpper(r[0]) {
		return strings.ToLower(lit), []interface{}{"shift"}, nil
	}
	if lit == "" {
		return "", nil, fmt.Errorf("%w: empty key name", input.ErrUnknownKey)
	}
	return lit, nil, nil
}
