package telnet

// Option is the static negotiation policy for one Telnet option: whether
// this server will ever agree to enable it on either side, and whether it
// should proactively offer it at connection start.
type Option struct {
	AllowLocal   bool // we may enable this option on our (server) side
	AllowRemote  bool // we may enable this option on the peer's side
	StartLocal   bool // proactively send IAC WILL at start()
	StartRemote  bool // proactively send IAC DO at start()
}

// Policy is the read-only, shared-by-reference table of option policies.
// Built once at startup (DefaultPolicy) and handed to every FSM; never
// copied per connection (spec.md §5/§9).
type Policy map[byte]Option

// DefaultPolicy returns the default Telnet option policy table from
// spec.md §3.
func DefaultPolicy() Policy {
	return Policy{
		OptSGA:      {AllowLocal: true, AllowRemote: true, StartLocal: false, StartRemote: true},
		OptNAWS:     {AllowLocal: false, AllowRemote: true, StartLocal: true, StartRemote: false},
		OptMTTS:     {AllowLocal: false, AllowRemote: true, StartLocal: true, StartRemote: false},
		OptMSSP:     {AllowLocal: true, AllowRemote: true, StartLocal: false, StartRemote: true},
		OptGMCP:     {AllowLocal: true, AllowRemote: true, StartLocal: false, StartRemote: true},
		OptMSDP:     {AllowLocal: true, AllowRemote: true, StartLocal: false, StartRemote: true},
		OptLinemode: {AllowLocal: false, AllowRemote: true, StartLocal: true, StartRemote: false},
		OptEOR:      {AllowLocal: true, AllowRemote: true, StartLocal: false, StartRemote: true},
	}
}
