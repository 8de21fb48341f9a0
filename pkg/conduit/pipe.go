package conduit

import (
	"fmt"
	"log/slog"
	"sync"
)

const pipeLogPrefix = "conduit:pipe"

// pipeBacklog bounds how many undelivered messages a side may hold before
// sends start failing. The protocol tolerates drops, so failing beats
// unbounded growth.
const pipeBacklog = 256

// Pipe is one end of an in-process conduit pair. It preserves per-direction
// arrival order and delivers inbound messages one at a time, which makes it
// the deterministic choice for tests and same-process embeddings.
type Pipe struct {
	peer *Pipe

	mu   sync.Mutex
	sink func(data []byte)

	queue chan []byte
	done  chan struct{}
	once  sync.Once
}

// NewPipe creates a connected conduit pair: what one side sends, the other
// receives.
func NewPipe() (*Pipe, *Pipe) {
	a := newPipeEnd()
	b := newPipeEnd()
	a.peer, b.peer = b, a
	go a.pump()
	go b.pump()
	return a, b
}

func newPipeEnd() *Pipe {
	return &Pipe{
		queue: make(chan []byte, pipeBacklog),
		done:  make(chan struct{}),
	}
}

// pump delivers queued inbound messages to the sink, in order.
func (p *Pipe) pump() {
	for {
		select {
		case <-p.done:
			return
		case data := <-p.queue:
			p.mu.Lock()
			sink := p.sink
			p.mu.Unlock()
			if sink == nil {
				// The surface never attached; drop like a torn-down peer.
				slog.Debug(fmt.Sprintf("%s - dropping message, no sink attached", pipeLogPrefix))
				continue
			}
			sink(data)
		}
	}
}

// Send queues one message for the peer.
func (p *Pipe) Send(data []byte) error {
	select {
	case <-p.peer.done:
		return fmt.Errorf("%s - peer is closed", pipeLogPrefix)
	default:
	}

	msg := make([]byte, len(data))
	copy(msg, data)
	select {
	case p.peer.queue <- msg:
		return nil
	default:
		return fmt.Errorf("%s - peer backlog is full", pipeLogPrefix)
	}
}

// Receive registers the inbound sink for this end.
func (p *Pipe) Receive(fn func(data []byte)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sink != nil {
		return fmt.Errorf("%s - already receiving", pipeLogPrefix)
	}
	p.sink = fn
	return nil
}

// Close tears this end down. The peer's sends start failing; queued but
// undelivered messages are lost, which matches the protocol's best-effort
// delivery.
func (p *Pipe) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
