// Package types holds the JSON frames exchanged with clients.
package types

import (
	"encoding/json"
	"fmt"

	"github.com/jarodbruce/inputrelay/internal/device"
)

// EventError is the name of the outbound failure frame.
const EventError = "error"

// Message is an inbound frame of the form {"event": name, "data": payload}.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ErrorNotice is sent back to a client when one of its events fails.
type ErrorNotice struct {
	Event string      `json:"event"`
	Data  ErrorDetail `json:"data"`
}

type ErrorDetail struct {
	Message string `json:"message"`
}

func NewErrorNotice(msg string) ErrorNotice {
	return ErrorNotice{Event: EventError, Data: ErrorDetail{Message: msg}}
}

// ParseFrame decodes a text frame into a message name and its payload. A
// frame without "event" but with "type" is a bare unified event and is
// returned under the envelope name.
func ParseFrame(b []byte) (string, any, error) {
	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		return "", nil, fmt.Errorf("%w: invalid JSON: %v", device.ErrMalformedPayload, err)
	}
	if obj == nil {
		return "", nil, fmt.Errorf("%w: frame is not an object", device.ErrMalformedPayload)
	}

	if v, ok := obj["event"]; ok {
		name, ok := v.(string)
		if !ok || name == "" {
			return "", nil, fmt.Errorf("%w: event name must be a non-empty string", device.ErrMalformedPayload)
		}
		return name, obj["data"], nil
	}
	if _, ok := obj["type"]; ok {
		return device.EnvelopeName, obj, nil
	}
	return "", nil, fmt.Errorf("%w: frame has neither event nor type", device.ErrMalformedPayload)
}
