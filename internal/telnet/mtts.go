package telnet

import "strings"

// knownColorClients lists client names the MTTS round-0 handshake
// recognizes as supporting ANSI/xterm-256 color without needing the
// round-2 bitmask to confirm it.
var knownColorClients = map[string]bool{
	"ATLANTIS":   true,
	"CMUD":       true,
	"KILDCLIENT": true,
	"MUDLET":     true,
	"MUSHCLIENT": true,
	"PUTTY":      true,
	"BEIP":       true,
	"POTATO":     true,
	"TINYFUGUE":  true,
}

// receiveMTTS0 handles the round-0 reply: the client's self-reported name
// and (optionally) version.
func (f *FSM) receiveMTTS0(data string) {
	name, version, hasVersion := cutSpace(data)
	f.Caps.ClientName = name
	if hasVersion {
		f.Caps.ClientVersion = version
	}
	if impliesColor(name) {
		f.Caps.XTerm256 = true
		f.Caps.ANSI = true
	}
}

// receiveMTTS1 handles the round-1 reply: the raw terminal-type string.
func (f *FSM) receiveMTTS1(data string) {
	if impliesColor(data) {
		f.Caps.XTerm256 = true
		f.Caps.ANSI = true
	}
}

// receiveMTTS2 handles the round-2 reply: "MTTS <bitmask>".
func (f *FSM) receiveMTTS2(data string) {
	_, rest, ok := cutSpace(data)
	if !ok {
		return
	}
	n := parseUint(rest)

	if n&1 != 0 {
		f.Caps.ANSI = true
	}
	if n&2 != 0 {
		f.Caps.VT100 = true
	}
	if n&4 != 0 {
		f.Caps.UTF8 = true
	}
	if n&8 != 0 {
		f.Caps.XTerm256 = true
	}
	if n&16 != 0 {
		f.Caps.MouseTracking = true
	}
	if n&32 != 0 {
		f.Caps.OSCColorPalette = true
	}
	if n&64 != 0 {
		f.Caps.ScreenReader = true
	}
	if n&128 != 0 {
		f.Caps.Proxy = true
	}
	if n&256 != 0 {
		f.Caps.TrueColor = true
	}
	if n&512 != 0 {
		f.Caps.MNES = true
	}
}

// impliesColor reports whether s names a client/terminal known to support
// ANSI and xterm-256 color, either by exact name or by the XTERM*/
// *-256COLOR naming convention.
func impliesColor(s string) bool {
	if knownColorClients[s] {
		return true
	}
	return strings.HasPrefix(s, "XTERM") || strings.HasSuffix(s, "-256COLOR")
}

// cutSpace splits s on the first space, returning the portion before it,
// the portion after it, and whether a space was found at all.
func cutSpace(s string) (before, after string, found bool) {
	idx := strings.IndexByte(s, ' ')
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+1:], true
}

// parseUint parses a non-negative decimal integer, returning 0 for any
// malformed input rather than erroring (spec.md §4.5.3's "0 on parse
// error").
func parseUint(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
