package netio

// Status is a Connection's lifecycle state (spec.md §3). Once non-Active,
// no further I/O is attempted and the record is scheduled for teardown.
type Status int

const (
	Active Status = iota
	ClientEOF
	ClientTimeout
	ServerClosed
	ClientError
)

// Connection is the per-client record: transport, token, inbound/outbound
// byte buffers, and liveness status (spec.md §3).
type Connection struct {
	Transport     Transport
	RemoteAddr    string
	Protocol      ProtocolKind
	TransportKind TransportKind
	Token         Token

	OutboundWritable bool
	InboundDirty     bool
	InboundBuf       []byte
	OutboundBuf      []byte

	Status Status
	Err    error // set when Status == ClientError
}

// QueueOutbound appends bytes to the outbound buffer for the next write-ready tick.
func (c *Connection) QueueOutbound(b []byte) {
	c.OutboundBuf = append(c.OutboundBuf, b...)
}
