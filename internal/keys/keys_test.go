package keys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveAliasesCaseInsensitive(t *testing.T) {
	for alias, want := range Aliases() {
		lower := Resolve(strings.ToLower(alias))
		upper := Resolve(strings.ToUpper(alias))
		assert.Equal(t, Named(want), Resolve(alias), "alias %q", alias)
		assert.Equal(t, lower, upper, "alias %q", alias)
		assert.Equal(t, lower, Resolve(alias), "alias %q", alias)
	}
}

func TestResolveBrowserNames(t *testing.T) {
	tests := []struct {
		in   string
		want Token
	}{
		{"ArrowUp", Named(Up)},
		{"ArrowDown", Named(Down)},
		{"Backspace", Named(Backspace)},
		{"Escape", Named(Escape)},
		{"Control", Named(Ctrl)},
		{"ControlLeft", Named(CtrlL)},
		{"Meta", Named(Cmd)},
		{"AltGraph", Named(AltGr)},
		{"PageDown", Named(PageDown)},
		{"F20", Named(F20)},
		{" ", Named(Space)},
		{"  enter  ", Named(Enter)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.in))
		})
	}
}

func TestResolveUnknownIsLiteral(t *testing.T) {
	for _, tok := range []string{"a", "Z", "7", "hello world", "é", "F21", "Unidentified"} {
		got := Resolve(tok)
		assert.False(t, got.IsNamed())
		assert.Equal(t, Literal(tok), got)
	}
}

func TestResolveExplicitPrefix(t *testing.T) {
	assert.Equal(t, Named(Backspace), Resolve("Key.backspace"))
	assert.Equal(t, Named(PageUp), Resolve("Key.page_up"))
	assert.Equal(t, Named(ShiftL), Resolve("KEY.SHIFT_L"))
	assert.Equal(t, Named(Escape), Resolve("key.esc"))
	assert.Equal(t, Literal("mystery"), Resolve("Key.mystery"))
}

func TestResolveIdempotentOnCanonicalNames(t *testing.T) {
	for _, k := range Aliases() {
		assert.Equal(t, Named(k), Resolve(string(k)))
		assert.Equal(t, Named(k), Resolve("Key."+string(k)))
	}
}

func TestTokenString(t *testing.T) {
	assert.Equal(t, "Key.enter", Named(Enter).String())
	assert.Equal(t, "abc", Literal("abc").String())
}

func TestAliasesReturnsCopy(t *testing.T) {
	m := Aliases()
	m["enter"] = Tab
	assert.Equal(t, Named(Enter), Resolve("enter"))
}
