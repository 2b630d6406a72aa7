package telnet

// Capabilities is the client-feature record the FSM mutates directly in
// response to negotiated options and sub-negotiations. It is embedded by
// the richer protocol-level capability record (which adds fields for
// options this package never parses, such as GMCP/MSDP payload shape);
// the protocol envelope copies the FSM's record into that embedded field
// after each decode pass.
type Capabilities struct {
	Width  int
	Height int

	ClientName    string
	ClientVersion string

	ANSI            bool
	VT100           bool
	UTF8            bool
	XTerm256        bool
	TrueColor       bool
	MouseTracking   bool
	OSCColorPalette bool
	ScreenReader    bool
	Proxy           bool
	MNES            bool

	NAWS     bool
	MTTS     bool
	SGA      bool
	Linemode bool
	MXP      bool
	EOR      bool
}

// DefaultCapabilities returns the fallback capability record assumed
// before negotiation completes: an 80x24-ish size and an unknown client.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		Width:         78,
		Height:        24,
		ClientName:    "UNKNOWN",
		ClientVersion: "UNKNOWN",
	}
}
