// Package replay applies canonical device events to an injector while
// keeping per-session pointer and key state.
package replay

import (
	"errors"
	"fmt"
	"image"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jarodbruce/inputrelay/input"
	"github.com/jarodbruce/inputrelay/internal/device"
	"github.com/jarodbruce/inputrelay/internal/keys"
	"github.com/jarodbruce/inputrelay/internal/logging"
)

var log = logging.L("replay")

// Phase is the dispatcher's progress through a single event.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseDispatching
	PhaseApplied
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDispatching:
		return "dispatching"
	case PhaseApplied:
		return "applied"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// State is a snapshot of a session's replay state.
type State struct {
	X, Y            float64
	HeldKeys        []string
	HeldButtons     []string
	Modifiers       keys.ModifierSet
	EventsProcessed uint64
	ExecuteEnabled  bool
}

type Options struct {
	// Bounds limits pointer targets. An empty rectangle disables the check.
	Bounds image.Rectangle
	// DryRun logs and counts events without calling the injector.
	DryRun bool
	Logger *zap.Logger
}

// comboModifiers are the names accepted for modifiers inside a key combo.
var comboModifiers = map[string]keys.Key{
	"ctrl":    keys.Ctrl,
	"control": keys.Ctrl,
	"alt":     keys.Alt,
	"shift":   keys.Shift,
	"cmd":     keys.Cmd,
	"command": keys.Cmd,
	"meta":    keys.Cmd,
	"win":     keys.Cmd,
	"windows": keys.Cmd,
}

// Dispatcher turns events into injector calls. It is owned by one session
// and must not be used concurrently.
type Dispatcher struct {
	inj    input.Injector
	bounds image.Rectangle
	log    *zap.Logger

	x, y    float64
	held    map[keys.Token]struct{}
	buttons map[device.Button]struct{}
	mods    keys.Tracker
	events  uint64
	execute bool

	phase Phase
	last  Phase
}

// New creates a dispatcher. When the injector can report the cursor
// position, the tracked position starts there; otherwise at the origin.
func New(inj input.Injector, opts Options) *Dispatcher {
	l := opts.Logger
	if l == nil {
		l = log
	}
	d := &Dispatcher{
		inj:     inj,
		bounds:  opts.Bounds,
		log:     l,
		held:    make(map[keys.Token]struct{}),
		buttons: make(map[device.Button]struct{}),
		execute: !opts.DryRun,
	}
	if loc, ok := inj.(input.Locator); ok && d.execute {
		if x, y, err := loc.Position(); err == nil {
			d.x, d.y = float64(x), float64(y)
		} else {
			d.log.Debug("cursor position unavailable", zap.Error(err))
		}
	}
	return d
}

// HandleEvent applies one event. The dispatcher returns to PhaseIdle
// whether or not the event succeeded.
func (d *Dispatcher) HandleEvent(ev device.Event) error {
	d.phase = PhaseDispatching
	d.events++

	var err error
	if d.execute {
		err = d.apply(ev)
	} else {
		d.log.Info("dry run", zap.String(logging.KeyEvent, ev.Kind()), zap.Any("detail", ev))
	}

	if err != nil {
		d.last = PhaseFailed
		d.log.Warn("event failed", zap.String(logging.KeyEvent, ev.Kind()), zap.Error(err))
	} else {
		d.last = PhaseApplied
		if d.execute {
			lvl := zap.InfoLevel
			if _, ok := ev.(device.PointerMove); ok {
				lvl = zap.DebugLevel
			}
			d.log.Log(lvl, "event applied", zap.String(logging.KeyEvent, ev.Kind()), zap.Any("detail", ev))
		}
	}
	d.phase = PhaseIdle
	return err
}

// Phase returns the current phase. Between events it is PhaseIdle.
func (d *Dispatcher) Phase() Phase { return d.phase }

// Last returns the outcome of the most recent event, or PhaseIdle before
// the first one.
func (d *Dispatcher) Last() Phase { return d.last }

func (d *Dispatcher) State() State {
	held := make([]string, 0, len(d.held))
	for k := range d.held {
		held = append(held, k.String())
	}
	slices.Sort(held)
	buttons := make([]string, 0, len(d.buttons))
	for b := range d.buttons {
		buttons = append(buttons, b.String())
	}
	slices.Sort(buttons)

	return State{
		X:               d.x,
		Y:               d.y,
		HeldKeys:        held,
		HeldButtons:     buttons,
		Modifiers:       d.mods.Current(),
		EventsProcessed: d.events,
		ExecuteEnabled:  d.execute,
	}
}

// ReleaseAll releases every key, modifier and button the session still
// holds. It runs when a connection goes away so nothing stays stuck down.
func (d *Dispatcher) ReleaseAll() error {
	if !d.execute {
		return nil
	}
	var errs []error

	covered := keys.ModifierSet(0)
	for tok := range d.held {
		if m, ok := modifierOf(tok); ok {
			covered = covered.With(m)
		}
		errs = append(errs, d.cleanup(tok))
		delete(d.held, tok)
	}
	for _, m := range d.mods.Current().Modifiers() {
		if !covered.Has(m) {
			errs = append(errs, d.cleanup(keys.Named(m.Key())))
		}
		d.mods.NoteUp(m)
	}
	for b := range d.buttons {
		errs = append(errs, d.cleanupButton(b))
		delete(d.buttons, b)
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) apply(ev device.Event) error {
	switch e := ev.(type) {
	case device.PointerMove:
		return d.move(e)
	case device.ButtonChange:
		return d.button(e)
	case device.Wheel:
		if err := d.inj.Scroll(e.DX, e.DY); err != nil {
			return &InjectionError{Op: "scroll", Target: fmt.Sprintf("by (%g, %g)", e.DX, e.DY), Err: err}
		}
		return nil
	case device.KeyChange:
		switch {
		case e.Atomic:
			return d.tap(e.Key)
		case e.Pressed:
			return d.keyDown(e)
		default:
			return d.keyUp(e)
		}
	case device.KeyCombo:
		return d.combo(e.Tokens)
	case device.TextInsert:
		return d.typeText(e.Text)
	default:
		return fmt.Errorf("unsupported event %T", ev)
	}
}

func (d *Dispatcher) move(e device.PointerMove) error {
	tx, ty := e.X, e.Y
	if e.Relative {
		tx, ty = d.x+e.DX, d.y+e.DY
	}
	if !inRange(tx) || !inRange(ty) {
		return fmt.Errorf("%w: (%g, %g) outside the coordinate range", ErrOutOfBounds, tx, ty)
	}
	px, py := int(math.Round(tx)), int(math.Round(ty))
	if !d.bounds.Empty() && !image.Pt(px, py).In(d.bounds) {
		return fmt.Errorf("%w: (%d, %d) not in %v", ErrOutOfBounds, px, py, d.bounds)
	}
	if err := d.inj.MoveTo(px, py); err != nil {
		return &InjectionError{Op: "move pointer to", Target: fmt.Sprintf("(%d, %d)", px, py), Err: err}
	}
	d.x, d.y = tx, ty
	return nil
}

// inRange reports whether v rounds to a valid screen coordinate.
func inRange(v float64) bool {
	r := math.Round(v)
	return r >= math.MinInt32 && r <= math.MaxInt32
}

func (d *Dispatcher) button(e device.ButtonChange) error {
	if !e.Pressed {
		return d.buttonUp(e.Button)
	}
	if err := d.buttonDown(e.Button); err != nil {
		return err
	}
	if e.Atomic {
		return d.buttonUp(e.Button)
	}
	return nil
}

func (d *Dispatcher) buttonDown(b device.Button) error {
	if err := d.inj.ButtonDown(nativeButton(b)); err != nil {
		if errors.Is(err, input.ErrInjectionTimeout) {
			d.buttons[b] = struct{}{}
		}
		return &InjectionError{Op: "press button", Target: b.String(), Err: err}
	}
	d.buttons[b] = struct{}{}
	return nil
}

func (d *Dispatcher) buttonUp(b device.Button) error {
	delete(d.buttons, b)
	if err := d.inj.ButtonUp(nativeButton(b)); err != nil {
		return &InjectionError{Op: "release button", Target: b.String(), Err: err}
	}
	return nil
}

// keyDown presses the modifiers the event carries that are not already
// held, then the main key. A failure releases the modifiers this event
// pressed.
func (d *Dispatcher) keyDown(e device.KeyChange) error {
	mainMod, mainIsMod := modifierOf(e.Key)

	var (
		pressed []keys.Token
		noted   []keys.Modifier
	)
	abort := func(tok keys.Token, err error) error {
		for _, m := range noted {
			d.mods.NoteUp(m)
		}
		return errors.Join(err, d.unwind(mayBePressed(pressed, tok, err)))
	}

	for _, m := range e.Modifiers.Modifiers() {
		if d.mods.IsHeld(m) || (mainIsMod && m == mainMod) {
			continue
		}
		tok := keys.Named(m.Key())
		if err := d.press(tok); err != nil {
			return abort(tok, err)
		}
		d.mods.NoteDown(m)
		pressed = append(pressed, tok)
		noted = append(noted, m)
	}

	if mainIsMod && d.mods.IsHeld(mainMod) {
		return nil
	}
	if err := d.press(e.Key); err != nil {
		return abort(e.Key, err)
	}
	d.held[e.Key] = struct{}{}
	if mainIsMod {
		d.mods.NoteDown(mainMod)
	}
	return nil
}

// keyUp releases only the main key; modifiers pressed through event flags
// stay down until their own keyup.
func (d *Dispatcher) keyUp(e device.KeyChange) error {
	err := d.release(e.Key)
	delete(d.held, e.Key)
	if m, ok := modifierOf(e.Key); ok {
		d.mods.NoteUp(m)
	}
	return err
}

func (d *Dispatcher) tap(tok keys.Token) error {
	if !tok.IsNamed() {
		return d.typeText(tok.Literal)
	}
	if err := d.press(tok); err != nil {
		return err
	}
	return d.release(tok)
}

func (d *Dispatcher) combo(tokens []string) error {
	seen := make(map[keys.Token]struct{}, len(tokens))
	var pressed []keys.Token
	for _, s := range tokens {
		tok := comboToken(s)
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if m, ok := modifierOf(tok); ok && d.mods.IsHeld(m) {
			continue
		}
		if err := d.press(tok); err != nil {
			return errors.Join(err, d.unwind(mayBePressed(pressed, tok, err)))
		}
		pressed = append(pressed, tok)
	}
	return d.releaseAll(pressed)
}

func (d *Dispatcher) typeText(text string) error {
	if text == "" {
		return nil
	}
	if err := d.inj.TypeString(text); err != nil {
		return &InjectionError{Op: "type", Target: fmt.Sprintf("%d characters", utf8.RuneCountInString(text)), Err: err}
	}
	return nil
}

func (d *Dispatcher) press(tok keys.Token) error {
	if err := d.inj.KeyDown(tok); err != nil {
		return &InjectionError{Op: "press key", Target: tok.String(), Err: err}
	}
	return nil
}

func (d *Dispatcher) release(tok keys.Token) error {
	if err := d.inj.KeyUp(tok); err != nil {
		return &InjectionError{Op: "release key", Target: tok.String(), Err: err}
	}
	return nil
}

// releaseAll releases toks in reverse order and reports every failure.
func (d *Dispatcher) releaseAll(toks []keys.Token) error {
	var errs []error
	for i := len(toks) - 1; i >= 0; i-- {
		errs = append(errs, d.release(toks[i]))
	}
	return errors.Join(errs...)
}

// unwind releases toks in reverse order after a failed event. Releases go
// through the injector's cleanup path when it has one.
func (d *Dispatcher) unwind(toks []keys.Token) error {
	var errs []error
	for i := len(toks) - 1; i >= 0; i-- {
		errs = append(errs, d.cleanup(toks[i]))
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) cleanup(tok keys.Token) error {
	r, ok := d.inj.(input.Releaser)
	if !ok {
		return d.release(tok)
	}
	if err := r.ReleaseKey(tok); err != nil {
		return &InjectionError{Op: "release key", Target: tok.String(), Err: err}
	}
	return nil
}

func (d *Dispatcher) cleanupButton(b device.Button) error {
	r, ok := d.inj.(input.Releaser)
	if !ok {
		return d.buttonUp(b)
	}
	delete(d.buttons, b)
	if err := r.ReleaseButton(nativeButton(b)); err != nil {
		return &InjectionError{Op: "release button", Target: b.String(), Err: err}
	}
	return nil
}

// mayBePressed adds tok to pressed when its press timed out, since the
// backend call may still land.
func mayBePressed(pressed []keys.Token, tok keys.Token, err error) []keys.Token {
	if errors.Is(err, input.ErrInjectionTimeout) {
		return append(pressed, tok)
	}
	return pressed
}

// comboToken resolves a combo entry: modifier synonyms first, then single
// characters as lower-cased literals, then the general resolver.
func comboToken(s string) keys.Token {
	if k, ok := comboModifiers[strings.ToLower(strings.TrimSpace(s))]; ok {
		return keys.Named(k)
	}
	if utf8.RuneCountInString(s) == 1 {
		return keys.Literal(strings.ToLower(s))
	}
	return keys.Resolve(s)
}

func modifierOf(tok keys.Token) (keys.Modifier, bool) {
	if !tok.IsNamed() {
		return 0, false
	}
	return keys.ModifierOf(tok.Key)
}

func nativeButton(b device.Button) input.Button {
	switch b {
	case device.ButtonLeft:
		return input.ButtonLeft
	case device.ButtonMiddle:
		return input.ButtonMiddle
	case device.ButtonRight:
		return input.ButtonRight
	default:
		return input.OtherButton(uint32(b))
	}
}
