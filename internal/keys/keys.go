// Package keys resolves loosely spelled key names to canonical keys and
// tracks which modifiers are logically held.
package keys

import (
	"maps"
	"strings"
)

// Key is a canonical non-printable key.
type Key string

const (
	Backspace   Key = "backspace"
	Delete      Key = "delete"
	Enter       Key = "enter"
	Tab         Key = "tab"
	Space       Key = "space"
	Escape      Key = "escape"
	Up          Key = "up"
	Down        Key = "down"
	Left        Key = "left"
	Right       Key = "right"
	Shift       Key = "shift"
	ShiftL      Key = "shift_l"
	ShiftR      Key = "shift_r"
	Ctrl        Key = "ctrl"
	CtrlL       Key = "ctrl_l"
	CtrlR       Key = "ctrl_r"
	Alt         Key = "alt"
	AltL        Key = "alt_l"
	AltR        Key = "alt_r"
	AltGr       Key = "alt_gr"
	Cmd         Key = "cmd"
	CapsLock    Key = "caps_lock"
	NumLock     Key = "num_lock"
	ScrollLock  Key = "scroll_lock"
	Home        Key = "home"
	End         Key = "end"
	PageUp      Key = "page_up"
	PageDown    Key = "page_down"
	F1          Key = "f1"
	F2          Key = "f2"
	F3          Key = "f3"
	F4          Key = "f4"
	F5          Key = "f5"
	F6          Key = "f6"
	F7          Key = "f7"
	F8          Key = "f8"
	F9          Key = "f9"
	F10         Key = "f10"
	F11         Key = "f11"
	F12         Key = "f12"
	F13         Key = "f13"
	F14         Key = "f14"
	F15         Key = "f15"
	F16         Key = "f16"
	F17         Key = "f17"
	F18         Key = "f18"
	F19         Key = "f19"
	F20         Key = "f20"
	Insert      Key = "insert"
	PrintScreen Key = "print_screen"
	Menu        Key = "menu"
	Pause       Key = "pause"
)

// explicitPrefix marks the "Key.<name>" spelling.
const explicitPrefix = "key."

// aliases maps a lower-cased spelling to its canonical key. Every canonical
// name is also present so the explicit form accepts it.
var aliases = map[string]Key{
	"backspace": Backspace, "back": Backspace,
	"delete": Delete, "del": Delete,
	"enter": Enter, "return": Enter, "ret": Enter,
	"tab":   Tab,
	"space": Space, "spacebar": Space, " ": Space,
	"escape": Escape, "esc": Escape,

	"arrowup": Up, "arrow_up": Up, "up": Up, "uparrow": Up,
	"arrowdown": Down, "arrow_down": Down, "down": Down, "downarrow": Down,
	"arrowleft": Left, "arrow_left": Left, "left": Left, "leftarrow": Left,
	"arrowright": Right, "arrow_right": Right, "right": Right, "rightarrow": Right,

	"shift": Shift, "shift_l": ShiftL, "shift_r": ShiftR,
	"shiftleft": ShiftL, "shift_left": ShiftL,
	"shiftright": ShiftR, "shift_right": ShiftR,
	"ctrl": Ctrl, "control": Ctrl, "ctrl_l": CtrlL, "ctrl_r": CtrlR,
	"ctrlleft": CtrlL, "ctrl_left": CtrlL, "controlleft": CtrlL,
	"ctrlright": CtrlR, "ctrl_right": CtrlR, "controlright": CtrlR,
	"alt": Alt, "alt_l": AltL, "alt_r": AltR, "alt_gr": AltGr,
	"altleft": AltL, "alt_left": AltL,
	"altright": AltR, "alt_right": AltR,
	"altgr": AltGr, "altgraph": AltGr,
	"cmd": Cmd, "command": Cmd, "meta": Cmd, "windows": Cmd, "win": Cmd, "super": Cmd,

	"capslock": CapsLock, "caps_lock": CapsLock, "caps": CapsLock,
	"numlock": NumLock, "num_lock": NumLock,
	"scrolllock": ScrollLock, "scroll_lock": ScrollLock,

	"home": Home, "end": End,
	"pageup": PageUp, "page_up": PageUp, "pgup": PageUp,
	"pagedown": PageDown, "page_down": PageDown, "pgdn": PageDown,

	"f1": F1, "f2": F2, "f3": F3, "f4": F4, "f5": F5,
	"f6": F6, "f7": F7, "f8": F8, "f9": F9, "f10": F10,
	"f11": F11, "f12": F12, "f13": F13, "f14": F14, "f15": F15,
	"f16": F16, "f17": F17, "f18": F18, "f19": F19, "f20": F20,

	"insert": Insert, "ins": Insert,
	"printscreen": PrintScreen, "print_screen": PrintScreen, "prtsc": PrintScreen,

	"menu": Menu, "context": Menu, "contextmenu": Menu,
	"pause": Pause, "break": Pause,
}

// Token is the result of resolving a key name: either a canonical key or a
// literal string to be typed verbatim.
type Token struct {
	Key     Key
	Literal string
}

// Named returns a token for a canonical key.
func Named(k Key) Token { return Token{Key: k} }

// Literal returns a token for text typed verbatim.
func Literal(s string) Token { return Token{Literal: s} }

// IsNamed reports whether t resolved to a canonical key.
func (t Token) IsNamed() bool { return t.Key != "" }

func (t Token) String() string {
	if t.IsNamed() {
		return "Key." + string(t.Key)
	}
	return t.Literal
}

// Resolve maps an arbitrary key spelling to a token. It never fails: names
// that are not in the alias table come back as literals.
func Resolve(token string) Token {
	norm := normalize(token)

	if strings.HasPrefix(norm, explicitPrefix) {
		stripped := strings.TrimSpace(token)[len(explicitPrefix):]
		if k, ok := Lookup(stripped); ok {
			return Named(k)
		}
		return Literal(stripped)
	}

	if k, ok := aliases[norm]; ok {
		return Named(k)
	}
	return Literal(token)
}

// Lookup finds the canonical key for a spelling without the literal fallback.
func Lookup(name string) (Key, bool) {
	k, ok := aliases[normalize(name)]
	return k, ok
}

// Aliases returns a copy of the alias table.
func Aliases() map[string]Key {
	return maps.Clone(aliases)
}

// normalize trims and lower-cases a spelling. A token made only of
// whitespace keeps its raw form so " " still finds the space alias.
func normalize(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return strings.ToLower(s)
	}
	return strings.ToLower(trimmed)
}
