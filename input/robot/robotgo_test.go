//go:build cgo

package robot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarodbruce/inputrelay/input"
	"github.com/jarodbruce/inputrelay/internal/keys"
)

func TestRobotKey(t *testing.T) {
	tests := []struct {
		tok      keys.Token
		wantName string
		wantMods []interface{}
	}{
		{keys.Named(keys.Escape), "esc", nil},
		{keys.Named(keys.PageUp), "pageup", nil},
		{keys.Named(keys.CtrlR), "rctrl", nil},
		{keys.Named(keys.F11), "f11", nil},
		{keys.Literal("a"), "a", nil},
		{keys.Literal("A"), "a", []interface{}{"shift"}},
		{keys.Literal(" "), "space", nil},
	}
	for _, tt := range tests {
		name, mods, err := robotKey(tt.tok)
		require.NoError(t, err, tt.tok.String())
		assert.Equal(t, tt.wantName, name, tt.tok.String())
		assert.Equal(t, tt.wantMods, mods, tt.tok.String())
	}
}

func TestRobotKeyShiftedSymbol(t *testing.T) {
	name, mods, err := robotKey(keys.Literal("!"))
	require.NoError(t, err)
	assert.Equal(t, "1", name)
	assert.Equal(t, []interface{}{"shift"}, mods)
}

func TestRobotKeyEveryCanonicalKeyIsMapped(t *testing.T) {
	for alias, k := range keys.Aliases() {
		_, ok := robotKeys[k]
		assert.True(t, ok, "%q resolves to unmapped key %s", alias, k)
	}
}

func TestRobotButton(t *testing.T) {
	name, err := robotButton(input.ButtonMiddle)
	require.NoError(t, err)
	assert.Equal(t, "center", name)

	_, err = robotButton(input.OtherButton(5))
	assert.ErrorIs(t, err, input.ErrUnknownButton)
}
