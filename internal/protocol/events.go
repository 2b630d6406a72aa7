package protocol

// InEventKind tags the variant held by an InEvent.
type InEventKind int

const (
	InLine InEventKind = iota
	InOOB
	InRequestMSSP
	InCreateUser
	InLogin
)

// InEvent is an inbound protocol occurrence surfaced to the upper layer
// (spec.md §3). Only the fields relevant to Kind are populated.
type InEvent struct {
	Kind InEventKind

	Line string // InLine

	OOBCmd    string            // InOOB
	OOBArgs   []string          // InOOB
	OOBKwargs map[string]string // InOOB

	User string // InCreateUser / InLogin
	Pass string // InCreateUser / InLogin
}

// OutEventKind tags the variant held by an OutEvent.
type OutEventKind int

const (
	OutLine OutEventKind = iota
	OutOOB
	OutPrompt
	OutMSSP
)

// OutEvent is an outbound protocol occurrence the upper layer enqueues
// for serialization (spec.md §3).
type OutEvent struct {
	Kind OutEventKind

	Text string // OutLine / OutPrompt: rich text handed to the Renderer.

	OOBCmd    string
	OOBArgs   []string
	OOBKwargs map[string]string

	MSSP []MSSPPair
}

// MSSPPair is one key/value entry of an MSSP out-event.
type MSSPPair struct {
	Key   string
	Value string
}
