package engine

import (
	"io"
	"testing"
	"time"

	"github.com/stlalpha/mudnet/internal/netio"
	"github.com/stlalpha/mudnet/internal/protocol"
	"github.com/stlalpha/mudnet/internal/render"
	"github.com/stlalpha/mudnet/internal/telnet"
)

// fakeTransport is an in-memory netio.Transport stand-in so read/write/
// decode stage tests don't need a real socket pair.
type fakeTransport struct {
	readQueue [][]byte
	readErr   error
	written   []byte
	writeErr  error
	closed    bool
}

func (f *fakeTransport) Read(buf []byte) (int, error) {
	if len(f.readQueue) == 0 {
		if f.readErr != nil {
			return 0, f.readErr
		}
		return 0, netio.ErrWouldBlock
	}
	chunk := f.readQueue[0]
	f.readQueue = f.readQueue[1:]
	return copy(buf, chunk), nil
}

func (f *fakeTransport) Write(buf []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.written = append(f.written, buf...)
	return len(buf), nil
}

func (f *fakeTransport) RawFD() (int, error) { return -1, nil }

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

// newTestEngine builds an Engine with real pollers (so Close/removeConn
// don't nil-panic) but no bound listeners.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultConfig(), telnet.DefaultPolicy(), render.Plain{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

// track registers a fake connection/state pair directly into the
// engine's sets, bypassing the accept stage's socket plumbing.
func track(e *Engine, tok netio.Token, tr *fakeTransport, st *protocol.State) *netio.Connection {
	conn := &netio.Connection{Transport: tr, Token: tok, Protocol: netio.ProtocolTelnet, Status: netio.Active}
	e.conns.Register(conn)
	e.mu.Lock()
	e.meta[tok] = &connMeta{state: st, lastActivity: time.Now()}
	e.mu.Unlock()
	return conn
}

func TestReadOneAppendsBytesAndMarksDirty(t *testing.T) {
	e := newTestEngine(t)
	tr := &fakeTransport{readQueue: [][]byte{[]byte("hello")}}
	st := protocol.NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	conn := track(e, 1, tr, st)

	e.readOne(1)

	if string(conn.InboundBuf) != "hello" {
		t.Fatalf("InboundBuf = %q, want %q", conn.InboundBuf, "hello")
	}
	if !conn.InboundDirty {
		t.Fatalf("InboundDirty = false, want true")
	}
	if conn.Status != netio.Active {
		t.Fatalf("Status = %v, want Active", conn.Status)
	}
}

func TestReadOneEOFSetsClientEOF(t *testing.T) {
	e := newTestEngine(t)
	tr := &fakeTransport{readErr: io.EOF}
	st := protocol.NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	conn := track(e, 1, tr, st)

	e.readOne(1)

	if conn.Status != netio.ClientEOF {
		t.Fatalf("Status = %v, want ClientEOF", conn.Status)
	}
}

func TestDecodeOneProcessesTelnetLine(t *testing.T) {
	e := newTestEngine(t)
	st := protocol.NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	st.Status = protocol.Active
	tr := &fakeTransport{}
	conn := track(e, 1, tr, st)
	conn.InboundBuf = []byte("look\r\n")
	conn.InboundDirty = true

	e.decodeOne(1)

	if conn.InboundDirty {
		t.Fatalf("InboundDirty still true after decode")
	}
	if len(st.InEvents) != 1 || st.InEvents[0].Line != "look" {
		t.Fatalf("InEvents = %+v, want one InLine(\"look\")", st.InEvents)
	}
}

func TestWriteOneFlushesOutboundBuffer(t *testing.T) {
	e := newTestEngine(t)
	tr := &fakeTransport{}
	st := protocol.NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	conn := track(e, 1, tr, st)
	conn.QueueOutbound([]byte("hi"))

	e.writeOne(1)

	if string(tr.written) != "hi" {
		t.Fatalf("written = %q, want %q", tr.written, "hi")
	}
	if len(conn.OutboundBuf) != 0 {
		t.Fatalf("OutboundBuf not drained: %q", conn.OutboundBuf)
	}
}

func TestDrainOutEventsUsesRendererAndOutboundBuffer(t *testing.T) {
	e := newTestEngine(t)
	tr := &fakeTransport{}
	st := protocol.NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	st.Status = protocol.Active
	conn := track(e, 1, tr, st)
	st.OutEvents = append(st.OutEvents, protocol.OutEvent{Kind: protocol.OutLine, Text: "hi"})

	e.runWriters([]netio.Token{1})

	if len(st.OutEvents) != 0 {
		t.Fatalf("OutEvents not drained: %+v", st.OutEvents)
	}
	if string(tr.written) != "hi\r\n" {
		t.Fatalf("written = %q, want %q", tr.written, "hi\r\n")
	}
	if len(conn.OutboundBuf) != 0 {
		t.Fatalf("OutboundBuf not flushed: %q", conn.OutboundBuf)
	}
}

func TestRunHealthAdvancesNegotiationAfterDeadline(t *testing.T) {
	e := newTestEngine(t)
	e.cfg.NegotiationDeadline = 0 // already elapsed
	tr := &fakeTransport{}
	st := protocol.NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	track(e, 1, tr, st)

	e.runHealth()

	if st.Status != protocol.Active {
		t.Fatalf("Status = %v, want Active after deadline elapses", st.Status)
	}
	if len(st.OutEvents) != 1 || st.OutEvents[0].Kind != protocol.OutPrompt {
		t.Fatalf("OutEvents = %+v, want one OutPrompt queued on the transition", st.OutEvents)
	}
}

// TestNegotiationTransitionDeliversWelcomePrompt exercises the full
// health -> write pipeline spec.md §8 scenario 5 describes: a connection
// that completes (or times out) negotiation receives a prompt on the
// wire, not just a Status flip.
func TestNegotiationTransitionDeliversWelcomePrompt(t *testing.T) {
	e := newTestEngine(t)
	e.cfg.NegotiationDeadline = 0 // already elapsed
	tr := &fakeTransport{}
	st := protocol.NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	track(e, 1, tr, st)

	e.runHealth()
	e.runWriters([]netio.Token{1})

	if len(tr.written) == 0 {
		t.Fatalf("no bytes written to transport after negotiation transition")
	}
}

func TestRunHealthRemovesNonActiveConnection(t *testing.T) {
	e := newTestEngine(t)
	tr := &fakeTransport{}
	st := protocol.NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	conn := track(e, 1, tr, st)
	conn.Status = netio.ClientEOF

	e.runHealth()

	if e.conns.Get(1) != nil {
		t.Fatalf("connection 1 still tracked after ClientEOF")
	}
	if !tr.closed {
		t.Fatalf("transport not closed on teardown")
	}
}

func TestRunHealthEnforcesIdleTimeout(t *testing.T) {
	e := newTestEngine(t)
	e.cfg.IdleTimeout = time.Millisecond
	tr := &fakeTransport{}
	st := protocol.NewState(netio.ProtocolTelnet, telnet.DefaultPolicy())
	st.Status = protocol.Active
	track(e, 1, tr, st)
	e.mu.Lock()
	e.meta[1].lastActivity = time.Now().Add(-time.Hour)
	e.mu.Unlock()

	e.runHealth()

	if e.conns.Get(1) != nil {
		t.Fatalf("connection 1 still tracked after idle timeout")
	}
}
