// Package engine drives the single accept -> read -> decode -> write ->
// health tick loop spec.md §4 describes, composing internal/netio's
// transport-level primitives with internal/protocol's FSM envelopes.
// This is deliberately the one package that imports both: neither netio
// nor protocol may reference the other, so something above them has to
// hold a Connection and its State side by side (spec.md §9).
package engine

import (
	"context"
	"crypto/tls"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/stlalpha/mudnet/internal/logging"
	"github.com/stlalpha/mudnet/internal/netio"
	"github.com/stlalpha/mudnet/internal/protocol"
	"github.com/stlalpha/mudnet/internal/render"
	"github.com/stlalpha/mudnet/internal/telnet"
)

// connMeta is the per-connection bookkeeping netio.Connection has no
// room for: the protocol.State decoding it and the health stage's idle
// clock. Neither Connection nor State may reference the other directly
// (spec.md §9), so this package — the only one that imports both — pairs
// them by Token instead, alongside the netio.ConnSet that owns the
// Connection records themselves.
type connMeta struct {
	state        *protocol.State
	lastActivity time.Time
}

// listenerInfo pairs a bound netio.Listener with the TLS config its
// accept-time handshake needs, if any. Kept in the engine rather than on
// netio.Listener itself, since TLS material is an engine/config concern,
// not something the transport-agnostic netio package should know about.
type listenerInfo struct {
	listener  *netio.Listener
	tlsConfig *tls.Config
}

// Engine owns every listener and connection and runs the tick loop.
type Engine struct {
	cfg        Config
	policy     telnet.Policy
	renderer   render.Renderer
	sshHostKey ssh.Signer

	listeners  *netio.ListenerSet
	conns      *netio.ConnSet
	listenPoll netio.Poller
	connPoll   netio.Poller

	// listenerTokens and connTokens are independent sequences (spec.md
	// §3, internal/netio/token.go) so a listener and a connection can
	// never collide on the same Token, even though each is registered
	// with a different Poller instance.
	listenerTokens netio.TokenSource
	connTokens     netio.TokenSource

	mu            sync.Mutex
	listenerInfos map[netio.Token]*listenerInfo
	meta          map[netio.Token]*connMeta
}

// New constructs an Engine. hostKey is the SSH host key used by any
// configured SSH listener's accept-time handshake; pass the result of
// protocol.GenerateHostKey() when no key is configured on disk.
func New(cfg Config, policy telnet.Policy, r render.Renderer, hostKey ssh.Signer) (*Engine, error) {
	listenPoll, err := netio.NewPoller(8)
	if err != nil {
		return nil, err
	}
	connPoll, err := netio.NewPoller(256)
	if err != nil {
		listenPoll.Close()
		return nil, err
	}

	return &Engine{
		cfg:           cfg,
		policy:        policy,
		renderer:      r,
		sshHostKey:    hostKey,
		listeners:     netio.NewListenerSet(),
		conns:         netio.NewConnSet(),
		listenPoll:    listenPoll,
		connPoll:      connPoll,
		listenerInfos: make(map[netio.Token]*listenerInfo),
		meta:          make(map[netio.Token]*connMeta),
	}, nil
}

// Run drives the tick loop until ctx is canceled (spec.md §4.9).
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		e.tick()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// tick runs one pass of every stage in spec.md §4.2-§4.7's order.
func (e *Engine) tick() {
	e.pollListeners()
	readReady, writeReady := e.pollConnections()
	e.runReaders(readReady)
	e.runDecoders(readReady)
	e.runWriters(writeReady)
	e.runHealth()
}

func (e *Engine) pollListeners() {
	events, err := e.listenPoll.Poll(e.cfg.PollTimeout)
	if err != nil {
		logging.Error("engine: listen poll: %v", err)
		return
	}
	for _, ev := range events {
		if ev.Readable {
			e.acceptReady(ev.Token)
		}
	}
}

func (e *Engine) pollConnections() (readReady, writeReady []netio.Token) {
	events, err := e.connPoll.Poll(e.cfg.PollTimeout)
	if err != nil {
		logging.Error("engine: conn poll: %v", err)
		return nil, nil
	}
	for _, ev := range events {
		if ev.Readable {
			readReady = append(readReady, ev.Token)
		}
		if ev.Writable {
			writeReady = append(writeReady, ev.Token)
			if conn := e.conns.Get(ev.Token); conn != nil {
				conn.OutboundWritable = true
			}
		}
	}
	return readReady, writeReady
}

// lookup returns the Connection and its paired metadata for tok, or nil
// for either if the connection has already been torn down this tick.
func (e *Engine) lookup(tok netio.Token) (*netio.Connection, *connMeta) {
	conn := e.conns.Get(tok)
	e.mu.Lock()
	m := e.meta[tok]
	e.mu.Unlock()
	if conn == nil || m == nil {
		return nil, nil
	}
	return conn, m
}

// removeConn tears down one connection: unregisters it from the
// connection poller, closes its transport, and drops it from every set.
func (e *Engine) removeConn(tok netio.Token, reason string) {
	conn := e.conns.Get(tok)
	if conn == nil {
		return
	}
	e.conns.Unregister(tok)
	e.mu.Lock()
	delete(e.meta, tok)
	e.mu.Unlock()

	if fd, err := conn.Transport.RawFD(); err == nil {
		if err := e.connPoll.Unregister(fd, tok); err != nil {
			logging.Warn("engine: unregister connection %d: %v", tok, err)
		}
	}
	conn.Transport.Close()
	logging.Info("engine: connection %d closed (%s)", tok, reason)
}

// Close releases both pollers and every bound listener socket.
func (e *Engine) Close() error {
	for _, l := range e.listeners.ListActive() {
		l.Socket.Close()
	}
	e.listenPoll.Close()
	return e.connPoll.Close()
}
