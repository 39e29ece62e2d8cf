//go:build windows && !cgo

package robot

import (
	"fmt"
	"syscall"
	"unicode"
	"unsafe"

	"github.com/jarodbruce/inputrelay/input"
	"github.com/jarodbruce/inputrelay/internal/keys"
)

var (
	user32           = syscall.NewLazyDLL("user32.dll")
	procSetCursorPos = user32.NewProc("SetCursorPos")
	procGetCursorPos = user32.NewProc("GetCursorPos")
	procMouseEvent   = user32.NewProc("mouse_event")
	procKeybdEvent   = user32.NewProc("keybd_event")
)

// Win32 constants
const (
	MOUSEEVENTF_LEFTDOWN   = 0x0002
	MOUSEEVENTF_LEFTUP     = 0x0004
	MOUSEEVENTF_RIGHTDOWN  = 0x0008
	MOUSEEVENTF_RIGHTUP    = 0x0010
	MOUSEEVENTF_MIDDLEDOWN = 0x0020
	MOUSEEVENTF_MIDDLEUP   = 0x0040
	MOUSEEVENTF_WHEEL      = 0x0800
	MOUSEEVENTF_HWHEEL     = 0x1000

	WHEEL_DELTA = 120

	KEYEVENTF_KEYUP = 0x0002

	VK_BACK     = 0x08
	VK_TAB      = 0x09
	VK_RETURN   = 0x0D
	VK_SHIFT    = 0x10
	VK_CONTROL  = 0x11
	VK_MENU     = 0x12 // ALT
	VK_PAUSE    = 0x13
	VK_CAPITAL  = 0x14
	VK_ESCAPE   = 0x1B
	VK_SPACE    = 0x20
	VK_PRIOR    = 0x21
	VK_NEXT     = 0x22
	VK_END      = 0x23
	VK_HOME     = 0x24
	VK_LEFT     = 0x25
	VK_UP       = 0x26
	VK_RIGHT    = 0x27
	VK_DOWN     = 0x28
	VK_SNAPSHOT = 0x2C
	VK_INSERT   = 0x2D
	VK_DELETE   = 0x2E
	VK_LWIN     = 0x5B
	VK_APPS     = 0x5D
	VK_F1       = 0x70
	VK_NUMLOCK  = 0x90
	VK_SCROLL   = 0x91
	VK_LSHIFT   = 0xA0
	VK_RSHIFT   = 0xA1
	VK_LCONTROL = 0xA2
	VK_RCONTROL = 0xA3
	VK_LMENU    = 0xA4
	VK_RMENU    = 0xA5

	VK_OEM_1      = 0xBA // ;:
	VK_OEM_PLUS   = 0xBB // =+
	VK_OEM_COMMA  = 0xBC // ,<
	VK_OEM_MINUS  = 0xBD // -_
	VK_OEM_PERIOD = 0xBE // .>
	VK_OEM_2      = 0xBF // /?
	VK_OEM_3      = 0xC0 // `~
	VK_OEM_4      = 0xDB // [{
	VK_OEM_5      = 0xDC // \|
	VK_OEM_6      = 0xDD // ]}
	VK_OEM_7      = 0xDE // '"
)

var virtualKeys = map[keys.Key]uint16{
	keys.Backspace:   VK_BACK,
	keys.Delete:      VK_DELETE,
	keys.Enter:       VK_RETURN,
	keys.Tab:         VK_TAB,
	keys.Space:       VK_SPACE,
	keys.Escape:      VK_ESCAPE,
	keys.Up:          VK_UP,
	keys.Down:        VK_DOWN,
	keys.Left:        VK_LEFT,
	keys.Right:       VK_RIGHT,
	keys.Shift:       VK_SHIFT,
	keys.ShiftL:      VK_LSHIFT,
	keys.ShiftR:      VK_RSHIFT,
	keys.Ctrl:        VK_CONTROL,
	keys.CtrlL:       VK_LCONTROL,
	keys.CtrlR:       VK_RCONTROL,
	keys.Alt:         VK_MENU,
	keys.AltL:        VK_LMENU,
	keys.AltR:        VK_RMENU,
	keys.AltGr:       VK_RMENU,
	keys.Cmd:         VK_LWIN,
	keys.CapsLock:    VK_CAPITAL,
	keys.NumLock:     VK_NUMLOCK,
	keys.ScrollLock:  VK_SCROLL,
	keys.Home:        VK_HOME,
	keys.End:         VK_END,
	keys.PageUp:      VK_PRIOR,
	keys.PageDown:    VK_NEXT,
	keys.Insert:      VK_INSERT,
	keys.PrintScreen: VK_SNAPSHOT,
	keys.Menu:        VK_APPS,
	keys.Pause:       VK_PAUSE,
}

func init() {
	fkeys := []keys.Key{
		keys.F1, keys.F2, keys.F3, keys.F4, keys.F5, keys.F6, keys.F7,
		keys.F8, keys.F9, keys.F10, keys.F11, keys.F12, keys.F13, keys.F14,
		keys.F15, keys.F16, keys.F17, keys.F18, keys.F19, keys.F20,
	}
	for i, k := range fkeys {
		virtualKeys[k] = VK_F1 + uint16(i)
	}
}

type point struct {
	X int32
	Y int32
}

// User32 injects input with the legacy user32 event calls. It needs no cgo.
type User32 struct{}

// New returns the injector for this platform.
func New() input.Injector { return User32{} }

func (User32) MoveTo(x, y int) error {
	ret, _, err := procSetCursorPos.Call(uintptr(int32(x)), uintptr(int32(y)))
	if ret == 0 {
		return fmt.Errorf("SetCursorPos: %w", err)
	}
	return nil
}

func (User32) Position() (int, int, error) {
	var p point
	ret, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&p)))
	if ret == 0 {
		return 0, 0, fmt.Errorf("GetCursorPos: %w", err)
	}
	return int(p.X), int(p.Y), nil
}

func (User32) ButtonDown(b input.Button) error {
	down, _, err := buttonFlags(b)
	if err != nil {
		return err
	}
	mouseEvent(down, 0)
	return nil
}

func (User32) ButtonUp(b input.Button) error {
	_, up, err := buttonFlags(b)
	if err != nil {
		return err
	}
	mouseEvent(up, 0)
	return nil
}

func (User32) Scroll(dx, dy float64) error {
	if v := scrollSteps(dy); v != 0 {
		mouseEvent(MOUSEEVENTF_WHEEL, uint32(int32(v*WHEEL_DELTA)))
	}
	if v := scrollSteps(dx); v != 0 {
		mouseEvent(MOUSEEVENTF_HWHEEL, uint32(int32(v*WHEEL_DELTA)))
	}
	return nil
}

func (User32) KeyDown(k keys.Token) error {
	vk, shift, err := mapKey(k)
	if err != nil {
		return err
	}
	if shift {
		keybdEvent(VK_SHIFT, 0)
	}
	keybdEvent(vk, 0)
	return nil
}

func (User32) KeyUp(k keys.Token) error {
	vk, shift, err := mapKey(k)
	if err != nil {
		return err
	}
	keybdEvent(vk, KEYEVENTF_KEYUP)
	if shift {
		keybdEvent(VK_SHIFT, KEYEVENTF_KEYUP)
	}
	return nil
}

func (User32) TypeString(s string) error {
	for _, r := range s {
		vk, shift := mapRune(r)
		if vk == 0 {
			return fmt.Errorf("%w: cannot type %q", input.ErrUnknownKey, r)
		}
		if shift {
			keybdEvent(VK_SHIFT, 0)
		}
		keybdEvent(vk, 0)
		keybdEvent(vk, KEYEVENTF_KEYUP)
		if shift {
			keybdEvent(VK_SHIFT, KEYEVENTF_KEYUP)
		}
	}
	return nil
}

func buttonFlags(b input.Button) (down, up uint32, err error) {
	switch b {
	case input.ButtonLeft:
		return MOUSEEVENTF_LEFTDOWN, MOUSEEVENTF_LEFTUP, nil
	case input.ButtonRight:
		return MOUSEEVENTF_RIGHTDOWN, MOUSEEVENTF_RIGHTUP, nil
	case input.ButtonMiddle:
		return MOUSEEVENTF_MIDDLEDOWN, MOUSEEVENTF_MIDDLEUP, nil
	}
	return 0, 0, fmt.Errorf("%w: %s", input.ErrUnknownButton, b)
}

func mouseEvent(flags, data uint32) {
	procMouseEvent.Call(uintptr(flags), 0, 0, uintptr(data), 0)
}

func keybdEvent(vk uint16, flags uint32) {
	procKeybdEvent.Call(uintptr(vk), 0, uintptr(flags), 0)
}

// mapKey maps a token to a virtual-key code.
func mapKey(k keys.Token) (vk uint16, needsShift bool, err error) {
	if k.IsNamed() {
		if vk, ok := virtualKeys[k.Key]; ok {
			return vk, false, nil
		}
		return 0, false, fmt.Errorf("%w: %s", input.ErrUnknownKey, k)
	}
	if r := []rune(k.Literal); len(r) == 1 {
		if vk, shift := mapRune(r[0]); vk != 0 {
			return vk, shift, nil
		}
	}
	return 0, false, fmt.Errorf("%w: %s", input.ErrUnknownKey, k)
}

type stroke struct {
	vk    uint16
	shift bool
}

// usLayout maps the non-alphanumeric characters of a US keyboard to the key
// that produces them.
var usLayout = map[rune]stroke{
	' ':  {VK_SPACE, false},
	'\n': {VK_RETURN, false},
	'\t': {VK_TAB, false},
	'!':  {'1', true},
	'@':  {'2', true},
	'#':  {'3', true},
	'$':  {'4', true},
	'%':  {'5', true},
	'^':  {'6', true},
	'&':  {'7', true},
	'*':  {'8', true},
	'(':  {'9', true},
	')':  {'0', true},
	';':  {VK_OEM_1, false},
	':':  {VK_OEM_1, true},
	'=':  {VK_OEM_PLUS, false},
	'+':  {VK_OEM_PLUS, true},
	',':  {VK_OEM_COMMA, false},
	'<':  {VK_OEM_COMMA, true},
	'-':  {VK_OEM_MINUS, false},
	'_':  {VK_OEM_MINUS, true},
	'.':  {VK_OEM_PERIOD, false},
	'>':  {VK_OEM_PERIOD, true},
	'/':  {VK_OEM_2, false},
	'?':  {VK_OEM_2, true},
	'`':  {VK_OEM_3, false},
	'~':  {VK_OEM_3, true},
	'[':  {VK_OEM_4, false},
	'{':  {VK_OEM_4, true},
	'\\': {VK_OEM_5, false},
	'|':  {VK_OEM_5, true},
	']':  {VK_OEM_6, false},
	'}':  {VK_OEM_6, true},
	'\'': {VK_OEM_7, false},
	'"':  {VK_OEM_7, true},
}

// mapRune returns the virtual key for r and whether shift must be held.
// Characters without a US-layout key return 0.
func mapRune(r rune) (uint16, bool) {
	if st, ok := usLayout[r]; ok {
		return st.vk, st.shift
	}
	if r >= '0' && r <= '9' {
		return uint16(r), false
	}
	if r < unicode.MaxASCII && unicode.IsLetter(r) {
		return uint16(unicode.ToUpper(r)), unicode.IsUpper(r)
	}
	return 0, false
}
