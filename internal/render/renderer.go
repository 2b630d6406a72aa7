// Package render defines the seam between rendered out-events and the
// bytes written to a connection. The real ANSI/xterm-256/MXP renderer is
// explicitly out of scope; this package only names the collaborator.
package render

import "github.com/stlalpha/mudnet/internal/telnet"

// Renderer turns rich text into the bytes a client with the given
// capabilities is allowed to receive. It depends on telnet.Capabilities
// (the base capability fields) rather than the richer
// protocol.Capabilities so this package stays below internal/protocol
// in the import graph; protocol.Capabilities embeds telnet.Capabilities,
// so callers pass that embedded field straight through.
type Renderer interface {
	Render(caps telnet.Capabilities, text string) []byte
}

// Plain is a Renderer that passes text through as UTF-8 bytes, ignoring
// capabilities entirely. It is the only implementation this module
// ships; a real deployment supplies a richer Renderer from outside this
// package.
type Plain struct{}

func (Plain) Render(_ telnet.Capabilities, text string) []byte {
	return []byte(text)
}
