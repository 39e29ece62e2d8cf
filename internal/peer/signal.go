package peer

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pion/webrtc/v4"
)

// ErrNoSignal is returned when the reader ends before a signal line.
var ErrNoSignal = errors.New("no session description received")

// EncodeSignal encodes a session description as base64 JSON, the form
// pasted between browser and host.
func EncodeSignal(sd webrtc.SessionDescription) (string, error) {
	b, err := json.Marshal(sd)
	if err != nil {
		return "", fmt.Errorf("marshal session description: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeSignal(in string) (webrtc.SessionDescription, error) {
	var sd webrtc.SessionDescription
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(in))
	if err != nil {
		return sd, fmt.Errorf("decode signal: %w", err)
	}
	if err := json.Unmarshal(b, &sd); err != nil {
		return sd, fmt.Errorf("unmarshal session description: %w", err)
	}
	return sd, nil
}

// ReadSignal reads the first non-empty line from r and decodes it.
func ReadSignal(r io.Reader) (webrtc.SessionDescription, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return DecodeSignal(line)
		}
	}
	if err := sc.Err(); err != nil {
		return webrtc.SessionDescription{}, fmt.Errorf("read signal: %w", err)
	}
	return webrtc.SessionDescription{}, ErrNoSignal
}
