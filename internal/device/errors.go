package device

import "errors"

var (
	ErrMalformedPayload   = errors.New("malformed payload")
	ErrMissingCoordinates = errors.New("missing coordinates")
	ErrMissingField       = errors.New("missing field")
	ErrUnknownEventType   = errors.New("unknown event type")
)
