package engine

import (
	"errors"
	"io"
	"time"

	"github.com/stlalpha/mudnet/internal/netio"
)

// runReaders drains every readable connection's transport into its
// inbound buffer (spec.md §4.3). Each connection is disjoint state, so
// this stage fans out; within one connection, bytes land in receipt
// order.
func (e *Engine) runReaders(readReady []netio.Token) {
	fanout(readReady, maxFanoutWorkers, e.readOne)
}

func (e *Engine) readOne(tok netio.Token) {
	conn, meta := e.lookup(tok)
	if conn == nil {
		return
	}

	buf := make([]byte, e.cfg.ReadBufferSize)
	for {
		n, err := conn.Transport.Read(buf)
		if n > 0 {
			conn.InboundBuf = append(conn.InboundBuf, buf[:n]...)
			conn.InboundDirty = true
			meta.lastActivity = time.Now()
		}
		if err == nil {
			continue
		}
		if errors.Is(err, netio.ErrWouldBlock) {
			return
		}
		// Any other error is terminal. The bytes already appended above
		// (if any) are still decoded this tick; health.go tears the
		// connection down only after decode/write have run.
		if isEOF(err) {
			conn.Status = netio.ClientEOF
		} else {
			conn.Status = netio.ClientError
			conn.Err = err
		}
		return
	}
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
