package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarodbruce/inputrelay/input/inputtest"
	"github.com/jarodbruce/inputrelay/internal/replay"
	"github.com/jarodbruce/inputrelay/internal/types"
	"github.com/jarodbruce/inputrelay/internal/workerpool"
)

type notices struct {
	mu  sync.Mutex
	got []string
}

func (n *notices) Notify(e types.ErrorNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, e.Data.Message)
	return nil
}

func (n *notices) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.got...)
}

// blockingMoves holds every MoveTo until release is closed.
type blockingMoves struct {
	*inputtest.Recorder
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingMoves) MoveTo(x, y int) error {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return b.Recorder.MoveTo(x, y)
}

func closeSession(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Close(ctx))
}

func TestFramesApplyInOrder(t *testing.T) {
	rec := inputtest.New()
	n := &notices{}
	s := New(rec, n, Options{QueueSize: 256})

	var want []string
	for i := 0; i < 100; i++ {
		require.NoError(t, s.Submit([]byte(fmt.Sprintf(`{"event":"mouseMove","data":{"x":%d,"y":%d}}`, i, i*2))))
		want = append(want, fmt.Sprintf("move %d,%d", i, i*2))
	}
	closeSession(t, s)

	assert.Equal(t, want, rec.Calls())
	assert.Empty(t, n.messages())
	assert.Equal(t, uint64(100), s.Received())
}

func TestUnifiedAndLegacyFrames(t *testing.T) {
	rec := inputtest.New()
	s := New(rec, &notices{}, Options{QueueSize: 16})

	frames := []string{
		`{"type":"mousedown"}`,
		`{"event":"event","data":{"type":"mouseup","button":0}}`,
		`{"event":"event","data":{"type":"wheel","deltaY":300}}`,
		`{"event":"keyCombo","data":{"keys":["ctrl","c"]}}`,
		`{"event":"type","data":{"text":"hi"}}`,
	}
	for _, f := range frames {
		require.NoError(t, s.Submit([]byte(f)))
	}
	closeSession(t, s)

	assert.Equal(t, []string{
		"down left", "up left", "scroll 0,-3",
		"keydown Key.ctrl", "keydown c", "keyup c", "keyup Key.ctrl",
		"type hi",
	}, rec.Calls())
}

func TestInvalidEventsNotifyWithoutInjecting(t *testing.T) {
	rec := inputtest.New()
	n := &notices{}
	s := New(rec, n, Options{QueueSize: 16})

	require.NoError(t, s.Submit([]byte(`{"type":"mousemove"}`)))
	require.NoError(t, s.Submit([]byte(`{"event":"keyPress","data":{}}`)))
	require.NoError(t, s.Submit([]byte(`garbage`)))
	closeSession(t, s)

	assert.Empty(t, rec.Calls())
	msgs := n.messages()
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0], "coordinates")
	assert.Contains(t, msgs[1], "key")
	assert.Contains(t, msgs[2], "malformed")
}

func TestUnknownEventTypeIsOnlyLogged(t *testing.T) {
	rec := inputtest.New()
	n := &notices{}
	s := New(rec, n, Options{QueueSize: 16})

	require.NoError(t, s.Submit([]byte(`{"event":"touchstart","data":{}}`)))
	require.NoError(t, s.Submit([]byte(`{"type":"pointerlock"}`)))
	require.NoError(t, s.Submit([]byte(`{"event":"clipboardPaste"}`)))
	require.NoError(t, s.Submit([]byte(`{"event":"ping","data":"x"}`)))
	closeSession(t, s)

	assert.Empty(t, rec.Calls())
	assert.Empty(t, n.messages())
}

func TestInjectionFailureIsReportedAndSessionContinues(t *testing.T) {
	rec := inputtest.New()
	rec.FailOn("keydown c", errors.New("no such key"))
	n := &notices{}
	s := New(rec, n, Options{QueueSize: 16})

	require.NoError(t, s.Submit([]byte(`{"event":"keyCombo","data":{"keys":["ctrl","c"]}}`)))
	require.NoError(t, s.Submit([]byte(`{"event":"mouseMove","data":{"x":1,"y":1}}`)))
	closeSession(t, s)

	assert.Equal(t, []string{"keydown Key.ctrl", "keydown c", "keyup Key.ctrl", "move 1,1"}, rec.Calls())
	msgs := n.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "press key c")
}

func TestQueueFullRejectsWithNotice(t *testing.T) {
	inj := &blockingMoves{
		Recorder: inputtest.New(),
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	n := &notices{}
	s := New(inj, n, Options{QueueSize: 1})

	move := []byte(`{"event":"mouseMove","data":{"x":1,"y":1}}`)
	require.NoError(t, s.Submit(move))
	<-inj.started
	require.NoError(t, s.Submit(move))

	err := s.Submit(move)
	require.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, uint64(1), s.Rejected())

	close(inj.release)
	closeSession(t, s)

	assert.Equal(t, []string{"move 1,1", "move 1,1"}, inj.Calls())
	msgs := n.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "queue full")
}

func TestCloseReleasesHeldInput(t *testing.T) {
	rec := inputtest.New()
	s := New(rec, &notices{}, Options{QueueSize: 16})

	require.NoError(t, s.Submit([]byte(`{"type":"keydown","key":"a","shiftKey":true}`)))
	require.NoError(t, s.Submit([]byte(`{"type":"mousedown","button":2}`)))
	closeSession(t, s)

	calls := rec.Calls()
	require.Len(t, calls, 6)
	assert.Equal(t, []string{"keydown Key.shift", "keydown a", "down right"}, calls[:3])
	assert.ElementsMatch(t, []string{"keyup a", "keyup Key.shift", "up right"}, calls[3:])
}

func TestCloseTimeoutReleasesAfterWorkerFinishes(t *testing.T) {
	inj := &blockingMoves{
		Recorder: inputtest.New(),
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	s := New(inj, &notices{}, Options{QueueSize: 16})

	require.NoError(t, s.Submit([]byte(`{"type":"keydown","key":"a"}`)))
	require.NoError(t, s.Submit([]byte(`{"event":"mouseMove","data":{"x":1,"y":1}}`)))
	<-inj.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, s.Close(ctx), workerpool.ErrDrainTimeout)
	assert.Equal(t, []string{"keydown a"}, inj.Calls())

	close(inj.release)
	require.Eventually(t, func() bool {
		calls := inj.Calls()
		return len(calls) == 3 && calls[2] == "keyup a"
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "move 1,1", inj.Calls()[1])
}

func TestSubmitAfterClose(t *testing.T) {
	s := New(inputtest.New(), &notices{}, Options{})
	closeSession(t, s)

	assert.ErrorIs(t, s.Submit([]byte(`{"type":"mousedown"}`)), ErrClosed)
	require.NoError(t, s.Close(context.Background()))
}

func TestDryRunSession(t *testing.T) {
	rec := inputtest.New()
	n := &notices{}
	s := New(rec, n, Options{QueueSize: 4, Replay: replay.Options{DryRun: true}})

	require.NoError(t, s.Submit([]byte(`{"event":"type","data":{"text":"secret"}}`)))
	require.NoError(t, s.Submit([]byte(`{"type":"mousemove"}`)))
	closeSession(t, s)

	assert.Empty(t, rec.Calls())
	assert.Len(t, n.messages(), 1)
}

func TestSessionIDs(t *testing.T) {
	a := New(inputtest.New(), &notices{}, Options{})
	b := New(inputtest.New(), &notices{}, Options{ID: "fixed", Remote: "127.0.0.1:5555"})
	closeSession(t, a)
	closeSession(t, b)

	assert.Len(t, a.ID(), 36)
	assert.Equal(t, "fixed", b.ID())
	assert.Equal(t, "127.0.0.1:5555", b.Remote())
}
