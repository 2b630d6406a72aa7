package engine

import (
	"time"

	"github.com/stlalpha/mudnet/internal/netio"
	"github.com/stlalpha/mudnet/internal/protocol"
)

// runHealth advances Negotiating->Active transitions, enforces the idle
// timeout, and tears down any connection whose status stopped being
// Active this tick (spec.md §4.7/§5). Each connection's record is
// disjoint and teardown goes through locked ConnSet/meta accessors, so
// this stage fans out across connections same as read/decode/write
// (spec.md §5: "Stages 4.3, 4.4, 4.6, and 4.7 may fan out... because
// each connection record is disjoint").
func (e *Engine) runHealth() {
	e.mu.Lock()
	tokens := make([]netio.Token, 0, len(e.meta))
	for tok := range e.meta {
		tokens = append(tokens, tok)
	}
	e.mu.Unlock()

	fanout(tokens, maxFanoutWorkers, e.healthOne)
}

func (e *Engine) healthOne(tok netio.Token) {
	now := time.Now()
	conn, meta := e.lookup(tok)
	if conn == nil {
		return
	}

	if conn.Status != netio.Active {
		e.removeConn(tok, statusReason(conn.Status))
		return
	}

	if meta.state.Status == protocol.Negotiating {
		e.advanceNegotiation(meta, now)
	}

	if e.cfg.IdleTimeout > 0 && now.Sub(meta.lastActivity) > e.cfg.IdleTimeout {
		conn.Status = netio.ClientTimeout
		e.removeConn(tok, "idle timeout")
	}
}

// welcomePrompt is the placeholder text this package queues on the
// Negotiating->Active transition. Its wording is session/game logic and
// belongs to whatever layer sits above this engine; only the mechanism
// of producing *some* OutPrompt on this transition is core-engine
// behavior (spec.md §2, §4.7, §8 scenario 5).
const welcomePrompt = "> "

// advanceNegotiation flips a connection from Negotiating to Active once
// its protocol has no outstanding handshakes, or once the negotiation
// deadline elapses regardless of what's still pending (spec.md §4.7),
// and enqueues the welcome prompt OutEvent that transition requires
// (spec.md §2's data-flow summary, §4.7, §8 scenario 5: "...is
// transitioned to Active within 300 ms... and receives the welcome
// prompt"). write.go's drainOutEvents serializes it onto the wire on the
// next tick.
func (e *Engine) advanceNegotiation(meta *connMeta, now time.Time) {
	deadline := meta.state.CreatedAt.Add(e.cfg.NegotiationDeadline)
	if !meta.state.HandshakesPending() || now.After(deadline) {
		meta.state.Status = protocol.Active
		meta.state.OutEvents = append(meta.state.OutEvents, protocol.OutEvent{Kind: protocol.OutPrompt, Text: welcomePrompt})
	}
}

func statusReason(s netio.Status) string {
	switch s {
	case netio.ClientEOF:
		return "client EOF"
	case netio.ClientTimeout:
		return "idle timeout"
	case netio.ServerClosed:
		return "server closed"
	case netio.ClientError:
		return "client error"
	default:
		return "unknown"
	}
}
