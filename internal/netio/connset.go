package netio

import "sync"

// ConnSet tracks every live connection, keyed by its poll Token.
type ConnSet struct {
	mu    sync.RWMutex
	conns map[Token]*Connection
}

func NewConnSet() *ConnSet {
	return &ConnSet{conns: make(map[Token]*Connection)}
}

func (s *ConnSet) Register(c *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c.Token] = c
}

// Unregister frees the connection's slot. Tokens themselves are never
// reused (spec.md's monotonic Token invariant), but the map slot is
// reclaimed so memory does not grow unbounded across a long-lived
// engine's connection churn (SPEC_FULL §4, "Slab-style id reuse").
func (s *ConnSet) Unregister(token Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, token)
}

func (s *ConnSet) Get(token Token) *Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conns[token]
}

func (s *ConnSet) ListActive() []*Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Connection, 0, len(s.conns))
	for _, c := range s.conns {
		out = append(out, c)
	}
	return out
}

func (s *ConnSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}
