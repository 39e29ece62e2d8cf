package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerIdempotent(t *testing.T) {
	var tr Tracker
	tr.NoteDown(ModCtrl)
	tr.NoteDown(ModCtrl)
	assert.True(t, tr.IsHeld(ModCtrl))
	assert.Equal(t, NewModifierSet(true, false, false, false), tr.Current())

	tr.NoteUp(ModCtrl)
	assert.False(t, tr.IsHeld(ModCtrl))

	tr.NoteUp(ModCtrl)
	tr.NoteUp(ModShift)
	assert.Equal(t, ModifierSet(0), tr.Current())
}

func TestModifierSetOrder(t *testing.T) {
	s := NewModifierSet(true, true, true, true)
	assert.Equal(t, []Modifier{ModCtrl, ModShift, ModAlt, ModMeta}, s.Modifiers())
	assert.Equal(t, "ctrl+shift+alt+meta", s.String())
	assert.Empty(t, ModifierSet(0).Modifiers())
}

func TestModifierOf(t *testing.T) {
	cases := map[Key]Modifier{
		Ctrl: ModCtrl, CtrlR: ModCtrl,
		ShiftL: ModShift,
		AltGr:  ModAlt,
		Cmd:    ModMeta,
	}
	for k, want := range cases {
		got, ok := ModifierOf(k)
		assert.True(t, ok, k)
		assert.Equal(t, want, got, k)
	}
	_, ok := ModifierOf(Enter)
	assert.False(t, ok)
}

func TestModifierKeyRoundTrip(t *testing.T) {
	for _, m := range modifierOrder {
		got, ok := ModifierOf(m.Key())
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
}
