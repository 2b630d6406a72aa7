package engine

import "time"

// Config tunes the tick loop (spec.md §4.9/§5).
type Config struct {
	// TickInterval is the target period of the main loop, 100Hz per
	// spec.md §4.9.
	TickInterval time.Duration
	// PollTimeout bounds each of the two poll(2) calls per tick.
	PollTimeout time.Duration
	// NegotiationDeadline forces Negotiating -> Active once elapsed,
	// regardless of outstanding Telnet handshakes (spec.md §4.7/§5).
	NegotiationDeadline time.Duration
	// IdleTimeout forces ClientTimeout once elapsed with no bytes read
	// (spec.md §5's "configurable, not present in source" open question).
	IdleTimeout time.Duration
	// ReadBufferSize is the scratch buffer size for one read(2) syscall.
	ReadBufferSize int
}

// DefaultConfig matches spec.md's stated defaults (300ms poll, 100Hz
// tick) plus SPEC_FULL §6.3's added idle timeout.
func DefaultConfig() Config {
	return Config{
		TickInterval:        10 * time.Millisecond,
		PollTimeout:         300 * time.Millisecond,
		NegotiationDeadline: 300 * time.Millisecond,
		IdleTimeout:         30 * time.Minute,
		ReadBufferSize:      2048,
	}
}
