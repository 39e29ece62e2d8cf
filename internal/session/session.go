// Package session binds one client connection to its own replay state and
// event queue.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jarodbruce/inputrelay/input"
	"github.com/jarodbruce/inputrelay/internal/device"
	"github.com/jarodbruce/inputrelay/internal/logging"
	"github.com/jarodbruce/inputrelay/internal/replay"
	"github.com/jarodbruce/inputrelay/internal/types"
	"github.com/jarodbruce/inputrelay/internal/workerpool"
)

var log = logging.L("session")

var (
	ErrQueueFull = errors.New("event queue full")
	ErrClosed    = errors.New("session closed")
)

// Notifier delivers error notices to the client. It may be called from
// more than one goroutine.
type Notifier interface {
	Notify(types.ErrorNotice) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(types.ErrorNotice) error

func (f NotifierFunc) Notify(n types.ErrorNotice) error { return f(n) }

type Options struct {
	// ID names the session; a random UUID is used when empty.
	ID        string
	Remote    string
	QueueSize int
	Replay    replay.Options
}

// Session applies a client's frames in arrival order on a dedicated
// worker. Failures are reported through the notifier and never end the
// session.
type Session struct {
	id      string
	remote  string
	started time.Time
	log     *zap.Logger

	disp   *replay.Dispatcher
	queue  *workerpool.Queue
	notify Notifier

	closed   atomic.Bool
	received atomic.Uint64
	rejected atomic.Uint64
}

func New(inj input.Injector, n Notifier, opts Options) *Session {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	l := log.With(zap.String(logging.KeySession, id))
	if opts.Remote != "" {
		l = l.With(zap.String(logging.KeyRemote, opts.Remote))
	}

	ro := opts.Replay
	ro.Logger = l
	s := &Session{
		id:      id,
		remote:  opts.Remote,
		started: time.Now(),
		log:     l,
		disp:    replay.New(inj, ro),
		queue:   workerpool.New(opts.QueueSize, l),
		notify:  n,
	}
	l.Info("session started", zap.Bool("dry_run", opts.Replay.DryRun))
	return s
}

func (s *Session) ID() string         { return s.id }
func (s *Session) Remote() string     { return s.remote }
func (s *Session) Started() time.Time { return s.started }

// Received and Rejected count frames accepted into and turned away from
// the queue.
func (s *Session) Received() uint64 { return s.received.Load() }
func (s *Session) Rejected() uint64 { return s.rejected.Load() }

// Submit queues a raw frame. When the queue is full the frame is dropped
// and the client is told so.
func (s *Session) Submit(frame []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if s.queue.Submit(func() { s.process(frame) }) {
		s.received.Add(1)
		return nil
	}
	if s.closed.Load() {
		return ErrClosed
	}
	s.rejected.Add(1)
	err := fmt.Errorf("%w: event dropped", ErrQueueFull)
	s.reply(err)
	return err
}

// Close stops accepting frames, waits for queued ones and then releases
// anything the client left held down.
func (s *Session) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.queue.Drain(ctx); err != nil {
		s.log.Warn("session closed with pending events, releasing held input once they finish", zap.Error(err))
		go func() {
			<-s.queue.Done()
			s.finish()
		}()
		return err
	}
	s.finish()
	return nil
}

// finish releases held input and logs the session summary. It runs after
// the worker has stopped.
func (s *Session) finish() {
	if err := s.disp.ReleaseAll(); err != nil {
		s.log.Warn("release on close failed", zap.Error(err))
	}

	st := s.disp.State()
	s.log.Info("session ended",
		zap.Uint64("events", st.EventsProcessed),
		zap.Uint64("rejected", s.rejected.Load()),
		zap.Duration("duration", time.Since(s.started)),
	)
}

func (s *Session) process(frame []byte) {
	name, payload, err := types.ParseFrame(frame)
	if err != nil {
		s.invalid(err)
		return
	}
	ev, err := device.NormalizeMessage(name, payload)
	if err != nil {
		s.invalid(err)
		return
	}
	if err := s.disp.HandleEvent(ev); err != nil {
		s.reply(err)
	}
}

// invalid handles events that could not be normalized. Unknown event
// types are only logged.
func (s *Session) invalid(err error) {
	if errors.Is(err, device.ErrUnknownEventType) {
		s.log.Warn("unknown event type", zap.Error(err))
		return
	}
	s.log.Warn("invalid event", zap.Error(err))
	s.reply(err)
}

func (s *Session) reply(err error) {
	if nerr := s.notify.Notify(types.NewErrorNotice(err.Error())); nerr != nil {
		s.log.Debug("error notice not delivered", zap.Error(nerr))
	}
}
