package engine

import "github.com/stlalpha/mudnet/internal/netio"

// runDecoders feeds every connection with fresh inbound bytes through
// its protocol.State (spec.md §4.4). A connection whose read already
// observed EOF/error still gets decoded here first, so bytes that
// arrived before the close are not dropped — health.go tears the
// connection down only after this stage (and write.go) have run.
func (e *Engine) runDecoders(readReady []netio.Token) {
	fanout(readReady, maxFanoutWorkers, e.decodeOne)
}

func (e *Engine) decodeOne(tok netio.Token) {
	conn, meta := e.lookup(tok)
	if conn == nil {
		return
	}
	if !conn.InboundDirty {
		return
	}
	meta.state.ProcessNewData(conn)
}
