package telnet

// OptionPerspective is the RFC 1143 Q-method state for one side (local or
// remote) of one option: whether it is currently enabled, and whether a
// negotiation for it is in flight (the "requested" state, plus the
// queued-opposite-request flag collapsed into Negotiating since this
// implementation never needs to distinguish queued-empty from
// queued-opposite — spec.md §4.4 only requires loop suppression, not the
// full four-state RFC automaton).
type OptionPerspective struct {
	Enabled     bool
	Negotiating bool
}

// OptionState holds both perspectives for one Telnet option.
type OptionState struct {
	Local  OptionPerspective
	Remote OptionPerspective
}

// Handshakes tracks in-flight option negotiations and the outstanding MTTS
// rounds for one connection. Local and Remote record the options this side
// has sent WILL/DO for and is awaiting a reply on; MTTS holds whichever of
// rounds {0, 1, 2} are still outstanding. The Negotiating→Active gate
// (spec.md §4.7) fires once all three sets are empty.
type Handshakes struct {
	Local  map[byte]struct{}
	Remote map[byte]struct{}
	MTTS   map[int]struct{}
}

// NewHandshakes returns an empty Handshakes ready for use.
func NewHandshakes() *Handshakes {
	return &Handshakes{
		Local:  make(map[byte]struct{}),
		Remote: make(map[byte]struct{}),
		MTTS:   make(map[int]struct{}),
	}
}

// IsEmpty reports whether every handshake set is empty.
func (h *Handshakes) IsEmpty() bool {
	return len(h.Local) == 0 && len(h.Remote) == 0 && len(h.MTTS) == 0
}
