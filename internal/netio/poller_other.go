//go:build !linux

package netio

import (
	"sync"
	"time"
)

// fallbackPoller is used on platforms without a wired epoll/kqueue
// backend: it reports every registered token ready every Poll call,
// pushing the non-blocking probe down to Transport.Read/Write (which
// already tolerate spurious wakeups via ErrWouldBlock). No pack repo
// targets a non-Linux production deployment; this keeps the module
// buildable everywhere without a second real readiness backend nothing
// here would exercise.
type fallbackPoller struct {
	mu     sync.Mutex
	tokens map[int]Token
	closed bool
}

func NewPoller(capacityHint int) (Poller, error) {
	return &fallbackPoller{tokens: make(map[int]Token, capacityHint)}, nil
}

func (p *fallbackPoller) Register(fd int, token Token, interest Interest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[fd] = token
	return nil
}

func (p *fallbackPoller) Unregister(fd int, token Token) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tokens, fd)
	return nil
}

func (p *fallbackPoller) Poll(timeout time.Duration) ([]Event, error) {
	time.Sleep(timeout)

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, 0, len(p.tokens))
	for _, tok := range p.tokens {
		out = append(out, Event{Token: tok, Readable: true, Writable: true})
	}
	return out, nil
}

func (p *fallbackPoller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
