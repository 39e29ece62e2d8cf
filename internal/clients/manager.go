package clients

import (
	"io"
	"sort"
	"sync"

	"github.com/jarodbruce/inputrelay/internal/session"
)

// Client is one connected controller and the session replaying its input.
type Client struct {
	Session   *session.Session
	Transport string
	Conn      io.Closer
}

func (c *Client) ID() string { return c.Session.ID() }

// Manager tracks connected clients keyed by session ID.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewManager() *Manager {
	return &Manager{clients: make(map[string]*Client)}
}

// Add registers c. A client already registered under the same ID is
// replaced and returned so the caller can close its connection.
func (m *Manager) Add(c *Client) (old *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := c.ID()
	if prev, ok := m.clients[id]; ok && prev != c {
		old = prev
	}
	m.clients[id] = c
	return
}

// Remove unregisters c if it is still the client registered under its ID.
func (m *Manager) Remove(c *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := c.ID()
	if cur, ok := m.clients[id]; ok && cur == c {
		delete(m.clients, id)
		return true
	}
	return false
}

func (m *Manager) Get(id string) (*Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[id]
	return c, ok
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// ForEachClient executes fn with a snapshot of clients ordered by ID.
func (m *Manager) ForEachClient(fn func(c *Client)) {
	m.mu.RLock()
	snap := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		snap = append(snap, c)
	}
	m.mu.RUnlock()
	sort.Slice(snap, func(i, j int) bool { return snap[i].ID() < snap[j].ID() })
	for _, c := range snap {
		fn(c)
	}
}
