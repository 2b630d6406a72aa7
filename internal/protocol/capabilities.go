package protocol

import (
	"github.com/stlalpha/mudnet/internal/netio"
	"github.com/stlalpha/mudnet/internal/telnet"
)

// Capabilities is the client-feature bitset for one connection. It embeds
// telnet.Capabilities (the fields the Telnet FSM mutates directly) and
// widens it with fields the original capability record carries that
// spec.md's enumerated set omits (SPEC_FULL §4): Color, HTML, MCCP2, and
// the coarse OOB flag, plus the GMCP/MSDP/MSSP booleans a deployment's
// option policy may enable outside the Telnet FSM's own default table.
type Capabilities struct {
	telnet.Capabilities

	Color bool
	HTML  bool
	MCCP2 bool
	OOB   bool
	GMCP  bool
	MSDP  bool
	MSSP  bool
}

// DefaultCapabilities returns the protocol-specific capability preset the
// original's ProtocolCapabilities::telnet()/websocket()/ssh() constructors
// define: Telnet starts from the plain default, WebSocket defaults to
// UTF-8/HTML/TrueColor/GMCP/MSDP/OOB, SSH defaults to TrueColor.
func DefaultCapabilities(kind netio.ProtocolKind) Capabilities {
	caps := Capabilities{Capabilities: telnet.DefaultCapabilities()}

	switch kind {
	case netio.ProtocolWebSocket:
		caps.UTF8 = true
		caps.HTML = true
		caps.GMCP = true
		caps.MSDP = true
		caps.OOB = true
		caps.TrueColor = true
		caps.Color = true
	case netio.ProtocolSSH:
		caps.TrueColor = true
		caps.Color = true
	}
	return caps
}
