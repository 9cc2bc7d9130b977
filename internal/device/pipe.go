package device

import (
	"io"
	"sync"
	"time"

	serial "go.bug.st/serial"
)

// PipePort is one end of an in-memory serial link created by NewPipe.
// Reads honour SetReadTimeout the way go.bug.st/serial does: a timeout
// yields (0, nil). Once the peer closes, reads return io.EOF.
type PipePort struct {
	in   chan []byte
	peer *PipePort
	done chan struct{}
	once sync.Once

	mu      sync.Mutex
	timeout time.Duration

	rest []byte // unread part of the last chunk; reader-owned
}

// NewPipe returns two connected ports.
func NewPipe() (*PipePort, *PipePort) {
	a := newPipeEnd()
	b := newPipeEnd()
	a.peer, b.peer = b, a
	return a, b
}

func newPipeEnd() *PipePort {
	return &PipePort{
		in:      make(chan []byte, 64),
		done:    make(chan struct{}),
		timeout: serial.NoTimeout,
	}
}

func (p *PipePort) Read(b []byte) (int, error) {
	if len(p.rest) > 0 {
		n := copy(b, p.rest)
		p.rest = p.rest[n:]
		return n, nil
	}

	p.mu.Lock()
	timeout := p.timeout
	p.mu.Unlock()
	var after <-chan time.Time
	if timeout >= 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		after = t.C
	}

	select {
	case data := <-p.in:
		n := copy(b, data)
		p.rest = data[n:]
		return n, nil
	case <-after:
		return 0, nil
	case <-p.done:
		return 0, io.ErrClosedPipe
	case <-p.peer.done:
		return 0, io.EOF
	}
}

func (p *PipePort) Write(b []byte) (int, error) {
	select {
	case <-p.done:
		return 0, io.ErrClosedPipe
	case <-p.peer.done:
		return 0, io.ErrClosedPipe
	default:
	}
	data := append([]byte(nil), b...)
	select {
	case p.peer.in <- data:
		return len(b), nil
	case <-p.peer.done:
		return 0, io.ErrClosedPipe
	case <-p.done:
		return 0, io.ErrClosedPipe
	}
}

// SetReadTimeout sets the read timeout; serial.NoTimeout blocks.
func (p *PipePort) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeout = t
	return nil
}

// Drain is a no-op: writes are delivered synchronously.
func (p *PipePort) Drain() error { return nil }

// Close closes this end. Safe to call more than once.
func (p *PipePort) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
