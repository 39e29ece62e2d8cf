package keys

import "strings"

// Modifier is a single modifier class.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
	ModMeta
)

var modifierOrder = []Modifier{ModCtrl, ModShift, ModAlt, ModMeta}

func (m Modifier) String() string {
	switch m {
	case ModCtrl:
		return "ctrl"
	case ModShift:
		return "shift"
	case ModAlt:
		return "alt"
	case ModMeta:
		return "meta"
	default:
		return "unknown"
	}
}

// Key returns the generic key pressed for the modifier.
func (m Modifier) Key() Key {
	switch m {
	case ModCtrl:
		return Ctrl
	case ModShift:
		return Shift
	case ModAlt:
		return Alt
	default:
		return Cmd
	}
}

// ModifierOf reports which modifier class a canonical key belongs to.
func ModifierOf(k Key) (Modifier, bool) {
	switch k {
	case Ctrl, CtrlL, CtrlR:
		return ModCtrl, true
	case Shift, ShiftL, ShiftR:
		return ModShift, true
	case Alt, AltL, AltR, AltGr:
		return ModAlt, true
	case Cmd:
		return ModMeta, true
	}
	return 0, false
}

// ModifierSet is a set of modifiers.
type ModifierSet uint8

// NewModifierSet builds a set from the boolean flags carried on key events.
func NewModifierSet(ctrl, shift, alt, meta bool) ModifierSet {
	var s ModifierSet
	if ctrl {
		s = s.With(ModCtrl)
	}
	if shift {
		s = s.With(ModShift)
	}
	if alt {
		s = s.With(ModAlt)
	}
	if meta {
		s = s.With(ModMeta)
	}
	return s
}

func (s ModifierSet) Has(m Modifier) bool            { return s&ModifierSet(m) != 0 }
func (s ModifierSet) With(m Modifier) ModifierSet    { return s | ModifierSet(m) }
func (s ModifierSet) Without(m Modifier) ModifierSet { return s &^ ModifierSet(m) }

// Modifiers lists the members in press order: ctrl, shift, alt, meta.
func (s ModifierSet) Modifiers() []Modifier {
	var out []Modifier
	for _, m := range modifierOrder {
		if s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

func (s ModifierSet) String() string {
	names := make([]string, 0, 4)
	for _, m := range s.Modifiers() {
		names = append(names, m.String())
	}
	return strings.Join(names, "+")
}

// Tracker records which modifiers are logically held. Down and up are
// idempotent; it is owned by a single session and not safe for concurrent use.
type Tracker struct {
	held ModifierSet
}

func (t *Tracker) NoteDown(m Modifier) { t.held = t.held.With(m) }

func (t *Tracker) NoteUp(m Modifier) { t.held = t.held.Without(m) }

func (t *Tracker) IsHeld(m Modifier) bool { return t.held.Has(m) }

// Current returns a snapshot of the held set.
func (t *Tracker) Current() ModifierSet { return t.held }
