package peer

import (
	"strings"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalRoundTrip(t *testing.T) {
	sd := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0\r\no=- 1 1 IN IP4 0.0.0.0\r\n"}

	enc, err := EncodeSignal(sd)
	require.NoError(t, err)
	assert.NotContains(t, enc, "\n")

	got, err := ReadSignal(strings.NewReader("\n  \n" + enc + "\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, sd, got)
}

func TestDecodeSignalErrors(t *testing.T) {
	_, err := DecodeSignal("%%%")
	assert.ErrorContains(t, err, "decode signal")

	_, err = ReadSignal(strings.NewReader("\n\n"))
	assert.ErrorIs(t, err, ErrNoSignal)
}

func TestICEServers(t *testing.T) {
	assert.Nil(t, iceServers(nil))
	assert.Equal(t,
		[]webrtc.ICEServer{{URLs: []string{"stun:a:3478", "turn:b:3478"}}},
		iceServers([]string{"stun:a:3478", "turn:b:3478"}),
	)
}
