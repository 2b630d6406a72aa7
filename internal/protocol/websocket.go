package protocol

import (
	"net"

	"github.com/gobwas/ws"
)

// UpgradeWebSocket performs the RFC 6455 handshake on conn synchronously,
// before the connection is ever handed to the non-blocking tick loop.
// Full WebSocket frame decoding is explicitly out of scope for this front
// end (SPEC_FULL §3); once upgraded, the protocol is marked Active
// immediately and any bytes the client sends afterward are treated as a
// protocol violation and close the connection (see State.ProcessNewData).
func UpgradeWebSocket(conn net.Conn) error {
	_, err := ws.Upgrader{}.Upgrade(conn)
	return err
}
