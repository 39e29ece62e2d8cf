// Package server exposes the websocket input endpoint and the read-only
// debug routes.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jarodbruce/inputrelay/input"
	"github.com/jarodbruce/inputrelay/internal/clients"
	"github.com/jarodbruce/inputrelay/internal/logging"
	"github.com/jarodbruce/inputrelay/internal/replay"
	"github.com/jarodbruce/inputrelay/internal/session"
	"github.com/jarodbruce/inputrelay/internal/types"
)

var log = logging.L("server")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sessionCloseWait bounds how long a disconnecting session may spend
	// finishing its queued events.
	sessionCloseWait = 5 * time.Second
)

// TransportWebSocket tags clients connected through /ws.
const TransportWebSocket = "websocket"

type Config struct {
	Injector  input.Injector
	Manager   *clients.Manager
	ReadLimit int64
	QueueSize int
	Replay    replay.Options
}

type Server struct {
	cfg      Config
	upgrader websocket.Upgrader
	started  time.Time
	conns    sync.WaitGroup
}

func New(cfg Config) *Server {
	if cfg.Manager == nil {
		cfg.Manager = clients.NewManager()
	}
	return &Server{
		cfg:      cfg,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		started:  time.Now(),
	}
}

// Handler returns the routes: /ws, /health and /keys.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /keys", s.handleKeys)
	return mux
}

// HandleWS upgrades the request and replays the connection's frames until
// it closes. A clientId query parameter names the session; a new
// connection with the same clientId replaces the old one.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("upgrade failed", zap.String(logging.KeyRemote, r.RemoteAddr), zap.Error(err))
		return
	}
	if s.cfg.ReadLimit > 0 {
		ws.SetReadLimit(s.cfg.ReadLimit)
	}

	conn := &wsNotifier{ws: ws}
	sess := session.New(s.cfg.Injector, conn, session.Options{
		ID:        r.URL.Query().Get("clientId"),
		Remote:    r.RemoteAddr,
		QueueSize: s.cfg.QueueSize,
		Replay:    s.cfg.Replay,
	})
	c := &clients.Client{Session: sess, Transport: TransportWebSocket, Conn: ws}

	s.conns.Add(1)
	defer s.conns.Done()
	if old := s.cfg.Manager.Add(c); old != nil {
		log.Info("replacing connection", zap.String(logging.KeySession, c.ID()))
		old.Conn.Close()
	}
	s.serve(c, ws)
}

func (s *Server) serve(c *clients.Client, ws *websocket.Conn) {
	done := make(chan struct{})
	defer func() {
		close(done)
		s.cfg.Manager.Remove(c)
		ctx, cancel := context.WithTimeout(context.Background(), sessionCloseWait)
		defer cancel()
		_ = c.Session.Close(ctx)
		ws.Close()
	}()

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	go keepalive(ws, done)

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("read error", zap.String(logging.KeySession, c.ID()), zap.Error(err))
			} else {
				log.Debug("connection closed", zap.String(logging.KeySession, c.ID()), zap.Error(err))
			}
			return
		}
		_ = c.Session.Submit(msg)
	}
}

func keepalive(ws *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// Close disconnects every client and waits for their sessions to finish.
func (s *Server) Close(ctx context.Context) error {
	s.cfg.Manager.ForEachClient(func(c *clients.Client) {
		if c.Transport == TransportWebSocket {
			c.Conn.Close()
		}
	})

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wsNotifier writes error notices to a websocket. gorilla allows only one
// concurrent writer.
type wsNotifier struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (n *wsNotifier) Notify(e types.ErrorNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return n.ws.WriteJSON(e)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("response write failed", zap.Error(err))
	}
}
