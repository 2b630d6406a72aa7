package telnet

import (
	"strings"
)

// FSM is the per-connection Telnet option-negotiation state machine: it
// owns the dynamic Q-method state for every option in its policy,
// in-flight handshake bookkeeping, the application-data accumulator, and
// the evolving capability record. A Policy is shared by reference across
// every FSM; nothing here ever mutates it.
type FSM struct {
	policy Policy

	opState    map[byte]*OptionState
	handshakes *Handshakes

	appBuffer []byte
	mttsLast  string
	mttsRound int

	Caps Capabilities

	out    []byte
	events []Event
}

// NewFSM returns an FSM ready to negotiate under the given shared policy.
func NewFSM(policy Policy) *FSM {
	return &FSM{
		policy:     policy,
		opState:    make(map[byte]*OptionState),
		handshakes: NewHandshakes(),
		Caps:       DefaultCapabilities(),
	}
}

// state returns the dynamic state record for op, creating it on first use.
func (f *FSM) state(op byte) *OptionState {
	st, ok := f.opState[op]
	if !ok {
		st = &OptionState{}
		f.opState[op] = st
	}
	return st
}

// Output returns and clears the bytes queued for the wire since the last call.
func (f *FSM) Output() []byte {
	out := f.out
	f.out = nil
	return out
}

// Events returns and clears the events queued since the last call.
func (f *FSM) Events() []Event {
	ev := f.events
	f.events = nil
	return ev
}

// HandshakesPending reports whether any option negotiation or MTTS round
// is still outstanding (spec.md §4.7's Negotiating→Active gate).
func (f *FSM) HandshakesPending() bool {
	return !f.handshakes.IsEmpty()
}

func (f *FSM) send(b ...byte) {
	f.out = append(f.out, b...)
}

func (f *FSM) sendSub(op byte, payload []byte) {
	f.send(IAC, SB, op)
	f.out = append(f.out, payload...)
	f.send(IAC, SE)
}

// Start emits the server's initial WILL/DO offers per the policy table
// (spec.md §4.5.2 "Initial negotiation").
func (f *FSM) Start() {
	for op, pol := range f.policy {
		if pol.StartLocal {
			f.send(IAC, WILL, op)
			f.state(op).Local.Negotiating = true
			f.handshakes.Local[op] = struct{}{}
		}
		if pol.StartRemote {
			f.send(IAC, DO, op)
			f.state(op).Remote.Negotiating = true
			f.handshakes.Remote[op] = struct{}{}
		}
	}
}

// ProcessMessage feeds one decoded Message into the FSM.
func (f *FSM) ProcessMessage(m Message) {
	switch m.Kind {
	case KindNegotiate:
		f.receiveNegotiate(m.Cmd, m.Opt)
	case KindSubNegotiate:
		f.receiveSub(m.Opt, m.Data)
	case KindData:
		f.receiveData(m.Data)
	case KindIAC:
		// standalone commands (e.g. GA) carry no state for this FSM.
	}
}

func (f *FSM) receiveNegotiate(cmd, op byte) {
	pol, known := f.policy[op]
	if !known {
		switch cmd {
		case WILL:
			f.send(IAC, DONT, op)
		case DO:
			f.send(IAC, WONT, op)
		}
		return
	}

	st := f.state(op)
	switch cmd {
	case WILL:
		if !st.Remote.Enabled {
			negotiating := st.Remote.Negotiating
			st.Remote.Negotiating = false
			delete(f.handshakes.Remote, op)
			if !pol.AllowRemote {
				f.send(IAC, DONT, op)
				return
			}
			if !negotiating {
				f.send(IAC, DO, op)
			}
			st.Remote.Enabled = true
			f.enableRemote(op)
		}
	case WONT:
		if st.Remote.Negotiating {
			st.Remote.Negotiating = false
			delete(f.handshakes.Remote, op)
		}
		if st.Remote.Enabled {
			st.Remote.Enabled = false
			f.disableRemote(op)
		}
	case DO:
		if !st.Local.Enabled {
			negotiating := st.Local.Negotiating
			st.Local.Negotiating = false
			delete(f.handshakes.Local, op)
			if !pol.AllowLocal {
				f.send(IAC, WONT, op)
				return
			}
			if !negotiating {
				f.send(IAC, WILL, op)
			}
			st.Local.Enabled = true
			f.enableLocal(op)
		}
	case DONT:
		if st.Local.Negotiating {
			st.Local.Negotiating = false
			delete(f.handshakes.Local, op)
		}
		if st.Local.Enabled {
			st.Local.Enabled = false
			f.disableLocal(op)
		}
	}
}

func (f *FSM) enableLocal(op byte) {
	switch op {
	case OptSGA:
		f.Caps.SGA = true
	case OptEOR:
		f.Caps.EOR = true
	case OptMXP:
		f.Caps.MXP = true
		f.sendSub(OptMXP, nil)
	}
}

func (f *FSM) disableLocal(op byte) {
	switch op {
	case OptSGA:
		f.Caps.SGA = false
	case OptEOR:
		f.Caps.EOR = false
	case OptMXP:
		f.Caps.MXP = false
	}
}

func (f *FSM) enableRemote(op byte) {
	switch op {
	case OptNAWS:
		f.Caps.NAWS = true
	case OptMTTS:
		f.Caps.MTTS = true
		f.handshakes.MTTS[0] = struct{}{}
		f.handshakes.MTTS[1] = struct{}{}
		f.handshakes.MTTS[2] = struct{}{}
		f.requestMTTS()
	case OptLinemode:
		f.Caps.Linemode = true
	case OptMSSP:
		f.events = append(f.events, Event{Kind: EventRequestMSSP})
	}
}

func (f *FSM) disableRemote(op byte) {
	switch op {
	case OptNAWS:
		f.Caps.NAWS = false
		f.Caps.Width = 78
		f.Caps.Height = 24
	case OptMTTS:
		f.Caps.MTTS = false
	case OptLinemode:
		f.Caps.Linemode = false
	}
}

func (f *FSM) requestMTTS() {
	f.sendSub(OptMTTS, []byte{TermTypeSend})
}

func (f *FSM) receiveSub(op byte, payload []byte) {
	switch op {
	case OptNAWS:
		f.receiveNAWS(payload)
	case OptMTTS:
		f.receiveMTTS(payload)
	}
}

func (f *FSM) receiveNAWS(payload []byte) {
	if len(payload) < 4 {
		return
	}
	f.Caps.Width = int(payload[0])<<8 | int(payload[1])
	f.Caps.Height = int(payload[2])<<8 | int(payload[3])
}

func (f *FSM) receiveMTTS(payload []byte) {
	if len(payload) < 2 || payload[0] != TermTypeIs {
		return
	}
	data := strings.ToUpper(strings.TrimSpace(string(payload[1:])))

	if data == f.mttsLast {
		f.handshakes.MTTS = make(map[int]struct{})
		return
	}
	f.mttsLast = data

	round := f.mttsRound
	if _, pending := f.handshakes.MTTS[round]; !pending {
		return
	}
	switch round {
	case 0:
		f.receiveMTTS0(data)
	case 1:
		f.receiveMTTS1(data)
	case 2:
		f.receiveMTTS2(data)
	}

	delete(f.handshakes.MTTS, round)
	f.mttsRound = round + 1
	if round < 2 {
		f.requestMTTS()
	}
}

// receiveData implements spec.md §4.5.4: accumulate application bytes and
// peel off complete LF-terminated lines. A Go string is just a byte
// sequence, so a line carrying a literal (IAC-escaped) 0xFF byte passes
// through unmolested rather than being dropped the way a strict UTF-8
// validation step would reject it (see DESIGN.md on scenario 6 / §7's
// "Invalid UTF-8 in line" rule).
func (f *FSM) receiveData(b []byte) {
	f.appBuffer = append(f.appBuffer, b...)
	for {
		idx := indexByte(f.appBuffer, LF)
		if idx < 0 {
			return
		}
		prefix := f.appBuffer[:idx]
		f.appBuffer = f.appBuffer[idx+1:]

		line := strings.TrimSpace(string(prefix))
		f.events = append(f.events, Event{Kind: EventLine, Line: line})
	}
}
