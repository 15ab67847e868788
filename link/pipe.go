// Package link carries view updates and settings between the explorer's
// render window and its control window.
package link

import (
	"net"
	"sync"
)

// NewPipeListener returns both ends of an in-memory connection; the second
// end is handed out by the listener's first Accept.
func NewPipeListener() (client net.Conn, listener net.Listener) {
	clientPipe, listenerPipe := net.Pipe()
	return clientPipe, &pipeListener{
		pipe: listenerPipe,
		done: make(chan struct{}),
	}
}

type pipeListener struct {
	mu     sync.Mutex
	pipe   net.Conn
	done   chan struct{}
	closed bool
}

func (p *pipeListener) Accept() (net.Conn, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, net.ErrClosed
	}
	if pipe := p.pipe; pipe != nil {
		p.pipe = nil
		p.mu.Unlock()
		return pipe, nil
	}
	p.mu.Unlock()

	<-p.done
	return nil, net.ErrClosed
}

// Close stops the listener. A connection already accepted stays open.
func (p *pipeListener) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)

	if p.pipe != nil {
		return p.pipe.Close()
	}
	return nil
}

func (p *pipeListener) Addr() net.Addr {
	return pipeAddr{}
}

type pipeAddr struct{}

func (pipeAddr) Network() string { return "pipe" }
func (pipeAddr) String() string  { return "pipe" }
