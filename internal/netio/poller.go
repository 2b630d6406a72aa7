package netio

import "time"

// Interest describes which readiness conditions a registration cares about.
type Interest int

const (
	Readable Interest = 1 << iota
	Writable
)

// Event reports the readiness observed for one registered Token.
type Event struct {
	Token    Token
	Readable bool
	Writable bool
}

// Poller wraps a single OS-level readiness facility (spec.md §4.1). Two
// independent instances are kept by the engine: one for listener sockets
// (readable-only, small capacity) and one for connection sockets
// (read+write, larger capacity), so a flood of connection activity can
// never starve accepts.
type Poller interface {
	Register(fd int, token Token, interest Interest) error
	Unregister(fd int, token Token) error
	// Poll blocks for at most timeout and returns the readiness events
	// observed. A nil/empty slice is a valid, non-error result.
	Poll(timeout time.Duration) ([]Event, error)
	Close() error
}
