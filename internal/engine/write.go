package engine

import (
	"errors"

	"github.com/stlalpha/mudnet/internal/netio"
)

// runWriters serializes any queued OutEvents onto each connection's
// outbound buffer, then flushes whatever is write-ready (spec.md §4.6).
// Out-events are serialized in enqueue order, so a partial write keeps
// the unwritten remainder at the front of the buffer for the next ready
// tick. Encoding runs for every connection with pending events, not only
// ones the poller reported writable this tick, so a prompt enqueued
// between polls does not wait an extra tick to reach the buffer.
func (e *Engine) runWriters(writeReady []netio.Token) {
	e.drainOutEvents()
	fanout(writeReady, maxFanoutWorkers, e.writeOne)
}

// drainOutEvents encodes every connection's pending OutEvents through
// its protocol.State, using the engine's configured Renderer to turn
// rich text into wire bytes (spec.md §4.8). health.go's negotiation
// transition is the one in-package source of OutEvents today; the
// encode step itself runs unconditionally so any other OutPrompt/OutLine
// a future session layer enqueues is serialized the same way.
func (e *Engine) drainOutEvents() {
	e.mu.Lock()
	tokens := make([]netio.Token, 0, len(e.meta))
	for tok := range e.meta {
		tokens = append(tokens, tok)
	}
	e.mu.Unlock()

	for _, tok := range tokens {
		conn, meta := e.lookup(tok)
		if conn == nil || len(meta.state.OutEvents) == 0 {
			continue
		}
		events := meta.state.OutEvents
		meta.state.OutEvents = nil
		for _, ev := range events {
			meta.state.SendEvent(ev, conn, e.renderer)
		}
	}
}

func (e *Engine) writeOne(tok netio.Token) {
	conn, _ := e.lookup(tok)
	if conn == nil {
		return
	}

	for len(conn.OutboundBuf) > 0 {
		n, err := conn.Transport.Write(conn.OutboundBuf)
		if n > 0 {
			conn.OutboundBuf = conn.OutboundBuf[n:]
		}
		if err == nil {
			continue
		}
		if errors.Is(err, netio.ErrWouldBlock) {
			conn.OutboundWritable = false
			return
		}
		if conn.Status == netio.Active {
			conn.Status = netio.ClientError
			conn.Err = err
		}
		return
	}
}
