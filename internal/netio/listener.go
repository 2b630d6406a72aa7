package netio

import "net"

// ProtocolKind tags which front-end protocol a Listener or Connection speaks.
type ProtocolKind int

const (
	ProtocolTelnet ProtocolKind = iota
	ProtocolWebSocket
	ProtocolSSH
)

func (k ProtocolKind) String() string {
	switch k {
	case ProtocolTelnet:
		return "telnet"
	case ProtocolWebSocket:
		return "websocket"
	case ProtocolSSH:
		return "ssh"
	default:
		return "unknown"
	}
}

// Listener is a bound accept socket, created at startup from config,
// never mutated, destroyed at shutdown (spec.md §3). accept.go wraps
// each accepted net.Conn into a Transport of TransportKind.
type Listener struct {
	Socket        *net.TCPListener
	Protocol      ProtocolKind
	TransportKind TransportKind
	Token         Token
}

// FD returns the listening socket's raw descriptor for poller registration.
func (l *Listener) FD() (int, error) {
	sc, err := l.Socket.SyscallConn()
	if err != nil {
		return -1, err
	}
	var fd int
	ctrlErr := sc.Control(func(descriptor uintptr) { fd = int(descriptor) })
	if ctrlErr != nil {
		return -1, ctrlErr
	}
	return fd, nil
}
