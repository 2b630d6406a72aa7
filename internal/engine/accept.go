package engine

import (
	"crypto/tls"
	"errors"
	"net"
	"time"

	"github.com/stlalpha/mudnet/internal/logging"
	"github.com/stlalpha/mudnet/internal/netio"
	"github.com/stlalpha/mudnet/internal/protocol"
)

// acceptReady drains every pending connection on a readable listener
// socket (spec.md §4.2). The accept loop itself runs on the tick thread
// and never fans out across workers; each accepted socket is then handed
// to completeAccept in its own goroutine, which registers the finished
// connection into the lock-protected connection set, so a connection can
// appear in the set while later stages of the same tick are running.
func (e *Engine) acceptReady(tok netio.Token) {
	li := e.listener(tok)
	if li == nil {
		return
	}

	for {
		if err := li.listener.Socket.SetDeadline(time.Now()); err != nil {
			logging.Error("engine: set accept deadline on listener %d: %v", tok, err)
			return
		}
		raw, err := li.listener.Socket.AcceptTCP()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return // no more pending connections this tick
			}
			logging.Warn("engine: accept on listener %d: %v", tok, err)
			return
		}
		go e.completeAccept(li, raw)
	}
}

// completeAccept runs any synchronous accept-time handshake (the
// WebSocket upgrade, the SSH transport/userauth exchange) off the single
// accept thread, then publishes the finished connection into the
// engine's connection set for the tick loop to pick up. The TLS handshake
// is not run here: the TLS transport drives it on its first Read/Write. Telnet
// has no accept-time handshake; its negotiation is driven entirely by
// the tick loop via protocol.State.Start/ProcessNewData.
func (e *Engine) completeAccept(li *listenerInfo, raw *net.TCPConn) {
	remoteAddr := raw.RemoteAddr().String()

	switch li.listener.Protocol {
	case netio.ProtocolWebSocket:
		if err := protocol.UpgradeWebSocket(raw); err != nil {
			logging.Warn("engine: websocket upgrade from %s: %v", remoteAddr, err)
			raw.Close()
			return
		}
	case netio.ProtocolSSH:
		// golang.org/x/crypto/ssh.NewServerConn takes over the raw
		// conn's read/write loop for the life of the SSH transport
		// (rekeying, global requests, channel multiplexing), so unlike
		// WebSocket's HTTP-level upgrade there is no point at which
		// control returns with the conn still free for this engine's
		// own non-blocking Transport to read. HandshakeSSH therefore
		// runs the whole stubbed session — handshake, reject every
		// channel, wait for close — synchronously here; it never
		// produces a tracked Connection entry.
		if err := protocol.HandshakeSSH(raw, e.sshHostKey); err != nil {
			logging.Warn("engine: ssh handshake from %s: %v", remoteAddr, err)
		}
		raw.Close()
		return
	}

	transport, err := e.wrapTransport(raw, li)
	if err != nil {
		logging.Error("engine: wrap transport from %s: %v", remoteAddr, err)
		raw.Close()
		return
	}

	fd, err := transport.RawFD()
	if err != nil {
		logging.Error("engine: raw fd from %s: %v", remoteAddr, err)
		transport.Close()
		return
	}

	token := e.connTokens.Next()
	conn := &netio.Connection{
		Transport:     transport,
		RemoteAddr:    remoteAddr,
		Protocol:      li.listener.Protocol,
		TransportKind: li.listener.TransportKind,
		Token:         token,
		Status:        netio.Active,
	}

	state := protocol.NewState(li.listener.Protocol, e.policy)
	state.Start(conn)

	if err := e.connPoll.Register(fd, token, netio.Readable|netio.Writable); err != nil {
		logging.Error("engine: register connection %d: %v", token, err)
		transport.Close()
		return
	}

	e.conns.Register(conn)
	e.mu.Lock()
	e.meta[token] = &connMeta{state: state, lastActivity: time.Now()}
	e.mu.Unlock()

	logging.Info("engine: accepted %s connection %d from %s", li.listener.Protocol, token, remoteAddr)
}

func (e *Engine) wrapTransport(raw *net.TCPConn, li *listenerInfo) (netio.Transport, error) {
	if li.listener.TransportKind == netio.TLS {
		return netio.NewTLSTransport(raw, li.tlsConfig)
	}
	return netio.NewPlainTransport(raw)
}

// AddListener binds addr and registers it with the accept poller. tlsConfig
// is only consulted when kind == netio.TLS.
func (e *Engine) AddListener(addr string, proto netio.ProtocolKind, kind netio.TransportKind, tlsConfig *tls.Config) error {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return err
	}
	sock, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return err
	}

	token := e.listenerTokens.Next()
	l := &netio.Listener{Socket: sock, Protocol: proto, TransportKind: kind, Token: token}

	fd, err := l.FD()
	if err != nil {
		sock.Close()
		return err
	}
	if err := e.listenPoll.Register(fd, token, netio.Readable); err != nil {
		sock.Close()
		return err
	}

	e.listeners.Register(l)
	e.mu.Lock()
	e.listenerInfos[token] = &listenerInfo{listener: l, tlsConfig: tlsConfig}
	e.mu.Unlock()
	return nil
}

func (e *Engine) listener(tok netio.Token) *listenerInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listenerInfos[tok]
}
