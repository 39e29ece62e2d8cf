package device

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jarodbruce/inputrelay/internal/keys"
)

// EnvelopeName is the message name whose payload carries its own "type".
const EnvelopeName = "event"

// WheelScale converts browser wheel deltas (pixels) into scroll units.
const WheelScale = 100

// Unified event types.
const (
	TypeMouseMove = "mousemove"
	TypeMouseDown = "mousedown"
	TypeMouseUp   = "mouseup"
	TypeWheel     = "wheel"
	TypeKeyDown   = "keydown"
	TypeKeyUp     = "keyup"
)

// Legacy direct-command names.
const (
	CmdMouseMove  = "mouseMove"
	CmdMouseClick = "mouseClick"
	CmdKeyPress   = "keyPress"
	CmdKeyCombo   = "keyCombo"
	CmdType       = "type"
)

var knownTypes = map[string]bool{
	TypeMouseMove: true,
	TypeMouseDown: true,
	TypeMouseUp:   true,
	TypeWheel:     true,
	TypeKeyDown:   true,
	TypeKeyUp:     true,
	CmdMouseMove:  true,
	CmdMouseClick: true,
	CmdKeyPress:   true,
	CmdKeyCombo:   true,
	CmdType:       true,
}

// NormalizeMessage converts a named socket message into an event. The
// envelope name defers to the payload's own "type"; any other name is the
// event type itself.
func NormalizeMessage(name string, payload any) (Event, error) {
	if name != EnvelopeName && !knownTypes[name] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, name)
	}
	raw, ok := asRaw(payload)
	if !ok {
		return nil, fmt.Errorf("%w: %s payload is not an object", ErrMalformedPayload, name)
	}
	if name == EnvelopeName {
		return Normalize(raw)
	}

	typed := make(RawEvent, len(raw)+1)
	for k, v := range raw {
		typed[k] = v
	}
	typed["type"] = name
	return Normalize(typed)
}

// Normalize converts a raw payload into an event, dispatching on its "type".
func Normalize(raw RawEvent) (Event, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformedPayload)
	}
	typ, ok := raw["type"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: event type must be a string", ErrMalformedPayload)
	}

	switch typ {
	case TypeMouseMove:
		return normalizeMouseMove(raw)
	case TypeMouseDown, TypeMouseUp:
		return normalizeButton(raw, typ == TypeMouseDown)
	case TypeWheel:
		return normalizeWheel(raw)
	case TypeKeyDown, TypeKeyUp:
		return normalizeKey(raw, typ == TypeKeyDown)
	case CmdMouseMove:
		return normalizeAbsolute(raw)
	case CmdMouseClick:
		return normalizeClick(raw)
	case CmdKeyPress:
		return normalizeKeyPress(raw)
	case CmdKeyCombo:
		return normalizeCombo(raw)
	case CmdType:
		return normalizeText(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, typ)
	}
}

func normalizeMouseMove(raw RawEvent) (Event, error) {
	dx, hasDX, err := optionalNumber(raw, "movementX")
	if err != nil {
		return nil, err
	}
	dy, hasDY, err := optionalNumber(raw, "movementY")
	if err != nil {
		return nil, err
	}
	if (hasDX && dx != 0) || (hasDY && dy != 0) {
		return PointerMove{DX: dx, DY: dy, Relative: true}, nil
	}
	return normalizeAbsolute(raw)
}

func normalizeAbsolute(raw RawEvent) (Event, error) {
	x, okX := number(raw["x"])
	y, okY := number(raw["y"])
	if !okX || !okY {
		return nil, fmt.Errorf("%w: x and y must be numbers", ErrMissingCoordinates)
	}
	return PointerMove{X: x, Y: y}, nil
}

func normalizeButton(raw RawEvent, pressed bool) (Event, error) {
	v, present := raw["button"]
	if !present || v == nil {
		return ButtonChange{Button: ButtonLeft, Pressed: pressed}, nil
	}
	code, ok := number(v)
	if !ok || code < 0 || code != math.Trunc(code) || code > math.MaxUint32 {
		return nil, fmt.Errorf("%w: button must be a non-negative integer, got %v", ErrMalformedPayload, v)
	}
	return ButtonChange{Button: Button(code), Pressed: pressed}, nil
}

func normalizeWheel(raw RawEvent) (Event, error) {
	dx, _, err := optionalNumber(raw, "deltaX")
	if err != nil {
		return nil, err
	}
	dy, _, err := optionalNumber(raw, "deltaY")
	if err != nil {
		return nil, err
	}
	return Wheel{DX: scaleWheel(dx), DY: scaleWheel(dy)}, nil
}

// scaleWheel flips the browser sign convention (positive = content down)
// into the scroll action direction.
func scaleWheel(delta float64) float64 {
	if delta == 0 {
		return 0
	}
	return -delta / WheelScale
}

func normalizeKey(raw RawEvent, pressed bool) (Event, error) {
	key, err := requiredString(raw, "key")
	if err != nil {
		return nil, err
	}

	var flags [4]bool
	for i, name := range []string{"ctrlKey", "shiftKey", "altKey", "metaKey"} {
		v, present := raw[name]
		if !present || v == nil {
			continue
		}
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a boolean", ErrMalformedPayload, name)
		}
		flags[i] = b
	}

	return KeyChange{
		Key:       keys.Resolve(key),
		Pressed:   pressed,
		Modifiers: keys.NewModifierSet(flags[0], flags[1], flags[2], flags[3]),
	}, nil
}

func normalizeClick(raw RawEvent) (Event, error) {
	name := "left"
	if v, present := raw["button"]; present && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: button must be a string", ErrMalformedPayload)
		}
		name = s
	}

	var b Button
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left":
		b = ButtonLeft
	case "middle":
		b = ButtonMiddle
	case "right":
		b = ButtonRight
	default:
		return nil, fmt.Errorf("%w: invalid button %q", ErrMalformedPayload, name)
	}
	return ButtonChange{Button: b, Pressed: true, Atomic: true}, nil
}

func normalizeKeyPress(raw RawEvent) (Event, error) {
	key, err := requiredString(raw, "key")
	if err != nil {
		return nil, err
	}
	return KeyChange{Key: keys.Resolve(key), Pressed: true, Atomic: true}, nil
}

func normalizeCombo(raw RawEvent) (Event, error) {
	list, ok := raw["keys"].([]any)
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("%w: keys must be a non-empty array", ErrMalformedPayload)
	}
	tokens := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("%w: keys must contain only non-empty strings", ErrMalformedPayload)
		}
		tokens = append(tokens, s)
	}
	return KeyCombo{Tokens: tokens}, nil
}

func normalizeText(raw RawEvent) (Event, error) {
	v, present := raw["text"]
	if !present || v == nil {
		return nil, fmt.Errorf("%w: text", ErrMissingField)
	}
	switch t := v.(type) {
	case string:
		return TextInsert{Text: t}, nil
	case bool:
		return TextInsert{Text: strconv.FormatBool(t)}, nil
	}
	if n, ok := number(v); ok {
		return TextInsert{Text: strconv.FormatFloat(n, 'f', -1, 64)}, nil
	}
	return nil, fmt.Errorf("%w: text must be a string", ErrMalformedPayload)
}

func requiredString(raw RawEvent, field string) (string, error) {
	v, present := raw[field]
	if !present || v == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrMalformedPayload, field)
	}
	if s == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrMissingField, field)
	}
	return s, nil
}

// optionalNumber reads a numeric field that may be absent or null.
func optionalNumber(raw RawEvent, field string) (float64, bool, error) {
	v, present := raw[field]
	if !present || v == nil {
		return 0, false, nil
	}
	n, ok := number(v)
	if !ok {
		return 0, false, fmt.Errorf("%w: %s must be a finite number", ErrMalformedPayload, field)
	}
	return n, true, nil
}

// number accepts the numeric shapes a JSON decoder can produce and rejects
// strings, NaN and infinities.
func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asRaw(payload any) (RawEvent, bool) {
	switch p := payload.(type) {
	case RawEvent:
		return p, p != nil
	case map[string]any:
		return RawEvent(p), p != nil
	default:
		return nil, false
	}
}
