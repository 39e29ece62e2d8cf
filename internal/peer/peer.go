// Package peer serves the input channel over a WebRTC data channel.
package peer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pion/webrtc/v4"
	"go.uber.org/zap"

	"github.com/jarodbruce/inputrelay/input"
	"github.com/jarodbruce/inputrelay/internal/clients"
	"github.com/jarodbruce/inputrelay/internal/logging"
	"github.com/jarodbruce/inputrelay/internal/replay"
	"github.com/jarodbruce/inputrelay/internal/session"
	"github.com/jarodbruce/inputrelay/internal/types"
)

var log = logging.L("peer")

const (
	// InputLabel is the data channel carrying input frames.
	InputLabel = "input"

	TransportWebRTC = "webrtc"

	sessionCloseWait = 5 * time.Second
)

type Config struct {
	ICEServers []string
	Injector   input.Injector
	Manager    *clients.Manager
	QueueSize  int
	Replay     replay.Options

	// In supplies the browser's offer; the answer is written to Out.
	In  io.Reader
	Out io.Writer
}

// Run answers a single offer and serves its input channels until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Manager == nil {
		cfg.Manager = clients.NewManager()
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: iceServers(cfg.ICEServers)})
	if err != nil {
		return fmt.Errorf("new peer connection: %w", err)
	}
	defer pc.Close()

	pc.OnConnectionStateChange(func(st webrtc.PeerConnectionState) {
		log.Info("peer connection state", zap.Stringer("state", st))
	})
	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		if dc.Label() != InputLabel {
			log.Debug("ignoring data channel", zap.String("label", dc.Label()))
			return
		}
		attach(cfg, dc)
	})

	fmt.Fprintln(cfg.Out, "Paste base64 offer from the browser, then press Enter:")
	offer, err := ReadSignal(cfg.In)
	if err != nil {
		return err
	}
	if err := pc.SetRemoteDescription(offer); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		return fmt.Errorf("create answer: %w", err)
	}
	gatherComplete := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(answer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}
	select {
	case <-gatherComplete:
	case <-ctx.Done():
		return ctx.Err()
	}

	encoded, err := EncodeSignal(*pc.LocalDescription())
	if err != nil {
		return err
	}
	fmt.Fprintln(cfg.Out, "Answer (base64). Copy back into the browser:")
	fmt.Fprintln(cfg.Out, encoded)

	<-ctx.Done()
	return nil
}

// attach binds a session to an input data channel.
func attach(cfg Config, dc *webrtc.DataChannel) {
	sess := session.New(cfg.Injector, channelNotifier{dc}, session.Options{
		Remote:    "datachannel:" + dc.Label(),
		QueueSize: cfg.QueueSize,
		Replay:    cfg.Replay,
	})
	c := &clients.Client{Session: sess, Transport: TransportWebRTC, Conn: dc}

	dc.OnOpen(func() {
		cfg.Manager.Add(c)
		log.Info("input channel open", zap.String(logging.KeySession, sess.ID()))
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		_ = sess.Submit(msg.Data)
	})
	dc.OnClose(func() {
		cfg.Manager.Remove(c)
		ctx, cancel := context.WithTimeout(context.Background(), sessionCloseWait)
		defer cancel()
		_ = sess.Close(ctx)
	})
}

type channelNotifier struct {
	dc *webrtc.DataChannel
}

func (n channelNotifier) Notify(e types.ErrorNotice) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return n.dc.SendText(string(b))
}

func iceServers(urls []string) []webrtc.ICEServer {
	if len(urls) == 0 {
		return nil
	}
	return []webrtc.ICEServer{{URLs: urls}}
}
