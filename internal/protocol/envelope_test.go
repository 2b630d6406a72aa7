package protocol

import (
	"testing"

	"github.com/stlalpha/mudnet/internal/netio"
	"github.com/stlalpha/mudnet/internal/render"
	"github.com/stlalpha/mudnet/internal/telnet"
)

func TestNewStateTelnetStartsNegotiating(t *testing.T) {
	s := NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	if s.Status != Negotiating {
		t.Fatalf("Status = %v, want Negotiating", s.Status)
	}
	s.Start(&netio.Connection{})
	if !s.HandshakesPending() {
		t.Fatalf("HandshakesPending = false after Start, want true")
	}
}

func TestNewStateWebSocketStartsActiveOnStart(t *testing.T) {
	s := NewState(netio.ProtocolWebSocket, telnet.DefaultPolicy())
	if s.Status != Negotiating {
		t.Fatalf("Status = %v before Start, want Negotiating", s.Status)
	}
	conn := &netio.Connection{}
	s.Start(conn)
	if s.Status != Active {
		t.Fatalf("Status = %v after Start, want Active", s.Status)
	}
	if s.HandshakesPending() {
		t.Fatalf("HandshakesPending = true for WebSocket, want false")
	}
}

func TestNewStateSSHStartsActiveOnStart(t *testing.T) {
	s := NewState(netio.ProtocolSSH, telnet.DefaultPolicy())
	conn := &netio.Connection{}
	s.Start(conn)
	if s.Status != Active {
		t.Fatalf("Status = %v after Start, want Active", s.Status)
	}
}

func TestStartTelnetQueuesNegotiationOffers(t *testing.T) {
	s := NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	conn := &netio.Connection{}
	s.Start(conn)
	if len(conn.OutboundBuf) == 0 {
		t.Fatalf("OutboundBuf empty after telnet Start, want negotiation offers queued")
	}
}

func TestProcessNewDataTelnetLineProducesInEvent(t *testing.T) {
	s := NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	conn := &netio.Connection{}
	s.Start(conn)
	conn.OutboundBuf = nil // the offers aren't relevant to this assertion

	conn.InboundBuf = append(conn.InboundBuf, []byte("look\r\n")...)
	s.ProcessNewData(conn)

	if len(s.InEvents) != 1 || s.InEvents[0].Kind != InLine || s.InEvents[0].Line != "look" {
		t.Fatalf("InEvents = %+v, want one InLine(\"look\")", s.InEvents)
	}
	if conn.InboundDirty {
		t.Fatalf("InboundDirty still true after ProcessNewData")
	}
}

func TestProcessNewDataWebSocketAnyBytesCloseConnection(t *testing.T) {
	s := NewState(netio.ProtocolWebSocket, telnet.DefaultPolicy())
	conn := &netio.Connection{}
	s.Start(conn)

	conn.InboundBuf = []byte{0x81, 0x05}
	s.ProcessNewData(conn)

	if conn.Status != netio.ClientEOF {
		t.Fatalf("conn.Status = %v, want ClientEOF", conn.Status)
	}
	if len(conn.InboundBuf) != 0 {
		t.Fatalf("InboundBuf not drained after close")
	}
}

func TestSendEventOutLineAppendsCRLF(t *testing.T) {
	s := NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	conn := &netio.Connection{}
	s.SendEvent(OutEvent{Kind: OutLine, Text: "hi"}, conn, render.Plain{})

	want := "hi\r\n"
	if string(conn.OutboundBuf) != want {
		t.Fatalf("OutboundBuf = %q, want %q", conn.OutboundBuf, want)
	}
}

func TestSendEventOutPromptSendsGAWhenSGANotEnabled(t *testing.T) {
	s := NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	conn := &netio.Connection{}
	s.SendEvent(OutEvent{Kind: OutPrompt, Text: ">"}, conn, render.Plain{})

	want := []byte{'>', telnet.IAC, telnet.GA}
	if string(conn.OutboundBuf) != string(want) {
		t.Fatalf("OutboundBuf = %v, want %v", conn.OutboundBuf, want)
	}
}

func TestSendEventOutPromptSuppressesGAWhenSGAEnabled(t *testing.T) {
	s := NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	s.Capabilities.SGA = true
	conn := &netio.Connection{}
	s.SendEvent(OutEvent{Kind: OutPrompt, Text: ">"}, conn, render.Plain{})

	want := []byte{'>'}
	if string(conn.OutboundBuf) != string(want) {
		t.Fatalf("OutboundBuf = %v, want %v (no GA once SGA is in effect)", conn.OutboundBuf, want)
	}
}

func TestSendEventOutPromptSendsEORWhenEOREnabled(t *testing.T) {
	s := NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	s.Capabilities.SGA = true
	s.Capabilities.EOR = true
	conn := &netio.Connection{}
	s.SendEvent(OutEvent{Kind: OutPrompt, Text: ">"}, conn, render.Plain{})

	want := []byte{'>', telnet.IAC, telnet.EOR}
	if string(conn.OutboundBuf) != string(want) {
		t.Fatalf("OutboundBuf = %v, want %v", conn.OutboundBuf, want)
	}
}

func TestSendEventOutMSSPEncodesPairs(t *testing.T) {
	s := NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	conn := &netio.Connection{}
	s.SendEvent(OutEvent{Kind: OutMSSP, MSSP: []MSSPPair{{Key: "NAME", Value: "mudnet"}}}, conn, render.Plain{})

	got := conn.OutboundBuf
	if got[0] != telnet.IAC || got[1] != telnet.SB || got[2] != telnet.OptMSSP {
		t.Fatalf("OutboundBuf header = %v, want IAC SB MSSP", got[:3])
	}
	if got[len(got)-2] != telnet.IAC || got[len(got)-1] != telnet.SE {
		t.Fatalf("OutboundBuf trailer = %v, want IAC SE", got[len(got)-2:])
	}
}

func TestDefaultCapabilitiesPerKind(t *testing.T) {
	tc := DefaultCapabilities(netio.ProtocolTelnet)
	if tc.Color || tc.GMCP {
		t.Fatalf("telnet defaults = %+v, want Color/GMCP false", tc)
	}

	ws := DefaultCapabilities(netio.ProtocolWebSocket)
	if !ws.UTF8 || !ws.HTML || !ws.GMCP || !ws.MSDP || !ws.OOB || !ws.TrueColor || !ws.Color {
		t.Fatalf("websocket defaults = %+v, want all rich bits set", ws)
	}

	sshCaps := DefaultCapabilities(netio.ProtocolSSH)
	if !sshCaps.TrueColor || !sshCaps.Color {
		t.Fatalf("ssh defaults = %+v, want TrueColor/Color set", sshCaps)
	}
}
