package netio

import (
	"crypto/tls"
	"errors"
	"net"
	"syscall"
	"time"
)

// TransportKind tags which wire encoding a Transport uses underneath.
type TransportKind int

const (
	Plain TransportKind = iota
	TLS
)

// ErrWouldBlock is returned by Read/Write when no further progress is
// possible this tick; it is control flow, not a failure (spec.md §3/§7).
var ErrWouldBlock = errors.New("netio: would block")

// Transport is byte-oriented read/write over a plain TCP socket or a
// server-side TLS session, with the semantics spec.md §3 requires: a
// zero-length read signals peer half-close (EOF), ErrWouldBlock signals
// no further progress this tick, and any other error is terminal for the
// connection.
type Transport interface {
	// Read attempts one non-blocking read into buf.
	Read(buf []byte) (n int, err error)
	// Write attempts one non-blocking write of buf.
	Write(buf []byte) (n int, err error)
	// RawFD returns the underlying socket descriptor for readiness
	// registration; it never changes for the lifetime of the Transport.
	RawFD() (int, error)
	Close() error
}

// netTransport wraps a net.Conn (itself either a plain TCP conn or a
// *tls.Conn) with the immediate-deadline probe that turns a blocking Go
// Read/Write into a single non-blocking attempt: setting the deadline to
// "now" makes the call return os.ErrDeadlineExceeded instead of blocking
// if the kernel (or, for TLS, the handshake state machine) has no bytes
// ready. crypto/tls persists any partial record it has already read in
// its internal buffer across calls, so a deadline-interrupted Read or
// Handshake is safely retried on the next tick rather than corrupting
// the session.
type netTransport struct {
	conn net.Conn
	kind TransportKind
	fd   int
}

// NewPlainTransport wraps an already-accepted TCP connection.
func NewPlainTransport(conn net.Conn) (Transport, error) {
	fd, err := connFD(conn)
	if err != nil {
		return nil, err
	}
	return &netTransport{conn: conn, kind: Plain, fd: fd}, nil
}

// NewTLSTransport wraps an accepted TCP connection in a server-side TLS
// session. The handshake is driven lazily by the first Read/Write, same
// as stdlib crypto/tls always does.
func NewTLSTransport(conn net.Conn, cfg *tls.Config) (Transport, error) {
	fd, err := connFD(conn)
	if err != nil {
		return nil, err
	}
	return &netTransport{conn: tls.Server(conn, cfg), kind: TLS, fd: fd}, nil
}

func connFD(conn net.Conn) (int, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return -1, errors.New("netio: connection does not expose a raw fd")
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return -1, err
	}
	var fd int
	ctrlErr := raw.Control(func(descriptor uintptr) {
		fd = int(descriptor)
	})
	if ctrlErr != nil {
		return -1, ctrlErr
	}
	return fd, nil
}

func (t *netTransport) Read(buf []byte) (int, error) {
	if err := t.conn.SetReadDeadline(time.Now()); err != nil {
		return 0, err
	}
	n, err := t.conn.Read(buf)
	if err != nil && isTimeout(err) {
		return n, ErrWouldBlock
	}
	return n, err
}

func (t *netTransport) Write(buf []byte) (int, error) {
	if err := t.conn.SetWriteDeadline(time.Now()); err != nil {
		return 0, err
	}
	n, err := t.conn.Write(buf)
	if err != nil && isTimeout(err) {
		return n, ErrWouldBlock
	}
	return n, err
}

func (t *netTransport) RawFD() (int, error) {
	return t.fd, nil
}

func (t *netTransport) Close() error {
	return t.conn.Close()
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
