//go:build linux

package netio

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// epollPoller is the real readiness poller: a thin wrapper over
// EpollCreate1/EpollCtl/EpollWait. Registration happens on the raw file
// descriptor obtained before any TLS wrapping, since kernel socket-buffer
// readiness is a property of the fd itself, independent of whatever
// protocol later decodes the bytes flowing through it.
type epollPoller struct {
	epfd int

	mu     sync.Mutex
	tokens map[int32]Token // epoll event.Fd -> Token, since epoll_event carries only the fd back
}

// NewPoller returns the platform readiness poller (epoll on Linux).
func NewPoller(capacityHint int) (Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{epfd: epfd, tokens: make(map[int32]Token, capacityHint)}, nil
}

func (p *epollPoller) Register(fd int, token Token, interest Interest) error {
	var events uint32
	if interest&Readable != 0 {
		events |= unix.EPOLLIN
	}
	if interest&Writable != 0 {
		events |= unix.EPOLLOUT
	}

	p.mu.Lock()
	p.tokens[int32(fd)] = token
	p.mu.Unlock()

	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *epollPoller) Unregister(fd int, token Token) error {
	p.mu.Lock()
	delete(p.tokens, int32(fd))
	p.mu.Unlock()

	err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	if err == unix.ENOENT {
		return nil
	}
	return err
}

func (p *epollPoller) Poll(timeout time.Duration) ([]Event, error) {
	raw := make([]unix.EpollEvent, 256)
	ms := int(timeout / time.Millisecond)

	n, err := unix.EpollWait(p.epfd, raw, ms)
	if err == unix.EINTR {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		r := raw[i]
		token, ok := p.tokens[r.Fd]
		if !ok {
			continue
		}
		out = append(out, Event{
			Token:    token,
			Readable: r.Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) != 0,
			Writable: r.Events&unix.EPOLLOUT != 0,
		})
	}
	return out, nil
}

func (p *epollPoller) Close() error {
	return unix.Close(p.epfd)
}
