package netio

import "sync/atomic"

// Token is an opaque, non-zero, monotonically increasing identifier. The
// readiness poller and the listener/connection sets key on it. Listener
// and connection tokens are drawn from independent sequences (via
// separate TokenSource values) so their poll sets never collide.
type Token uint64

// TokenSource mints a sequence of Tokens starting at 1.
type TokenSource struct {
	next atomic.Uint64
}

// Next returns the next Token in the sequence.
func (s *TokenSource) Next() Token {
	return Token(s.next.Add(1))
}
