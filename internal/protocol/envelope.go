package protocol

import (
	"time"

	"github.com/google/uuid"

	"github.com/stlalpha/mudnet/internal/netio"
	"github.com/stlalpha/mudnet/internal/render"
	"github.com/stlalpha/mudnet/internal/telnet"
)

// Status is the protocol-level negotiating/active lifecycle (spec.md §3).
type Status int

const (
	Negotiating Status = iota
	Active
)

// State is the tagged union over Telnet/WebSocket/SSH protocol state
// (spec.md §9). Only one of the protocol-specific fields is populated,
// selected by Kind. No variant holds a back-reference to the connection
// record; every method here takes the *netio.Connection it acts on as a
// parameter instead.
type State struct {
	Kind netio.ProtocolKind

	// telnetFSM is populated only when Kind == ProtocolTelnet. WebSocket
	// and SSH carry no protocol-specific state here: their handshakes
	// (websocket.go, ssh.go) run to completion at accept time, before a
	// State is ever constructed, so by the time ProcessNewData runs
	// there is nothing left for this package to decode.
	telnetFSM *telnet.FSM

	Status       Status
	CreatedAt    time.Time
	Capabilities Capabilities
	CorrelationID uuid.UUID

	InEvents  []InEvent
	OutEvents []OutEvent

	Session any // nil while Negotiating; opaque above this package
}

// NewState constructs a protocol envelope of the given kind, ready to Start.
func NewState(kind netio.ProtocolKind, policy telnet.Policy) *State {
	s := &State{
		Kind:          kind,
		Status:        Negotiating,
		CreatedAt:     now(),
		Capabilities:  DefaultCapabilities(kind),
		CorrelationID: uuid.New(),
	}
	if kind == netio.ProtocolTelnet {
		s.telnetFSM = telnet.NewFSM(policy)
		s.Capabilities.Capabilities = s.telnetFSM.Caps
	}
	return s
}

// now is a seam so tests can stub the clock without touching the system one.
var now = time.Now

// Start emits whatever bytes/records the protocol variant needs at
// connection open (spec.md §4.2/§4.5.2's "Initial negotiation").
func (s *State) Start(conn *netio.Connection) {
	switch s.Kind {
	case netio.ProtocolTelnet:
		s.telnetFSM.Start()
		conn.QueueOutbound(s.telnetFSM.Output())
	case netio.ProtocolWebSocket, netio.ProtocolSSH:
		// Both stubs short-circuit to Active immediately (spec.md §4.7);
		// their handshakes already completed synchronously at accept time.
		s.Status = Active
	}
}

// ProcessNewData drains conn.InboundBuf through the protocol's decoder,
// synthesizing InEvents and queuing any reply bytes (spec.md §4.4).
func (s *State) ProcessNewData(conn *netio.Connection) {
	switch s.Kind {
	case netio.ProtocolTelnet:
		s.processTelnetData(conn)
	case netio.ProtocolWebSocket:
		// Out of scope framing: any data received closes the connection.
		if len(conn.InboundBuf) > 0 {
			conn.Status = netio.ClientEOF
		}
		conn.InboundBuf = nil
	case netio.ProtocolSSH:
		if len(conn.InboundBuf) > 0 {
			conn.Status = netio.ClientEOF
		}
		conn.InboundBuf = nil
	}
	conn.InboundDirty = false
}

func (s *State) processTelnetData(conn *netio.Connection) {
	buf := conn.InboundBuf
	for {
		msg, n, ok := telnet.Decode(buf)
		if !ok {
			break
		}
		buf = buf[n:]
		s.telnetFSM.ProcessMessage(msg)
	}
	conn.InboundBuf = buf

	if out := s.telnetFSM.Output(); len(out) > 0 {
		conn.QueueOutbound(out)
	}
	s.Capabilities.Capabilities = s.telnetFSM.Caps

	for _, ev := range s.telnetFSM.Events() {
		switch ev.Kind {
		case telnet.EventLine:
			s.InEvents = append(s.InEvents, InEvent{Kind: InLine, Line: ev.Line})
		case telnet.EventRequestMSSP:
			s.InEvents = append(s.InEvents, InEvent{Kind: InRequestMSSP})
		}
	}
}

// HandshakesPending reports whether the protocol is still negotiating
// (only meaningful for Telnet; WebSocket/SSH never spend time here).
func (s *State) HandshakesPending() bool {
	if s.Kind != netio.ProtocolTelnet {
		return false
	}
	return s.telnetFSM.HandshakesPending()
}

// SendEvent serializes one OutEvent onto conn's outbound buffer (spec.md §4.8).
func (s *State) SendEvent(ev OutEvent, conn *netio.Connection, r render.Renderer) {
	if s.Kind != netio.ProtocolTelnet {
		return
	}
	switch ev.Kind {
	case OutLine:
		conn.QueueOutbound(r.Render(s.Capabilities.Capabilities, ev.Text))
		conn.QueueOutbound([]byte("\r\n"))
	case OutPrompt:
		conn.QueueOutbound(r.Render(s.Capabilities.Capabilities, ev.Text))
		// RFC 858: Go-Ahead only means anything once Suppress-Go-Ahead is
		// NOT in effect — a half-duplex client relies on IAC GA to know
		// the server is done and it may speak. Once SGA is negotiated,
		// GA is suppressed. IAC EOR is the TELOPT_EOR alternative some
		// clients prefer for the same "prompt boundary" signal.
		if !s.Capabilities.SGA {
			conn.QueueOutbound([]byte{telnet.IAC, telnet.GA})
		}
		if s.Capabilities.EOR {
			conn.QueueOutbound([]byte{telnet.IAC, telnet.EOR})
		}
	case OutMSSP:
		conn.QueueOutbound(encodeMSSP(ev.MSSP))
	case OutOOB:
		conn.QueueOutbound(encodeOOB(ev))
	}
}

func encodeMSSP(pairs []MSSPPair) []byte {
	payload := make([]byte, 0, 16*len(pairs))
	for _, p := range pairs {
		payload = append(payload, msspVar)
		payload = append(payload, p.Key...)
		payload = append(payload, msspVal)
		payload = append(payload, p.Value...)
	}
	out := []byte{telnet.IAC, telnet.SB, telnet.OptMSSP}
	out = append(out, payload...)
	return append(out, telnet.IAC, telnet.SE)
}

// MSSP sub-negotiation separators (not option-negotiation bytes, hence
// not in telnet.codes.go's Telnet command/option table).
const (
	msspVar byte = 1
	msspVal byte = 2
)

func encodeOOB(ev OutEvent) []byte {
	// GMCP/MSDP framing is a deployment-specific wire format this
	// front-end does not standardize on; the capability bit and event
	// shape exist (SPEC_FULL §4) but the payload encoding is left to the
	// upper layer, which is expected to supply pre-encoded bytes via the
	// OOBCmd/OOBArgs fields. A minimal "cmd arg1 arg2" framing suffices
	// for the stub deployments this front-end ships.
	out := []byte{telnet.IAC, telnet.SB, telnet.OptGMCP}
	out = append(out, ev.OOBCmd...)
	for _, a := range ev.OOBArgs {
		out = append(out, ' ')
		out = append(out, a...)
	}
	return append(out, telnet.IAC, telnet.SE)
}
