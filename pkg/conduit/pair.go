package conduit

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pair"

	// Register all mangos transports (inproc, ipc, tcp, ws, tls).
	_ "go.nanomsg.org/mangos/v3/transport/all"
)

const pairLogPrefix = "conduit:pair"

// Pair is a Conduit over a mangos pair socket: a brokerless point-to-point
// link for embeddings that talk to exactly one peer, e.g. a host process
// and a single external web shell.
type Pair struct {
	sock mangos.Socket

	mu        sync.Mutex
	receiving bool
}

// NewPairListener creates a pair conduit bound to a mangos URL
// (e.g. "tcp://127.0.0.1:5691" or "inproc://bridge-checkout").
func NewPairListener(url string) (*Pair, error) {
	sock, err := pair.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("%s - new socket: %w", pairLogPrefix, err)
	}
	if err := sock.Listen(url); err != nil {
		_ = sock.Close()
		return nil, fmt.Errorf("%s - listen on %s: %w", pairLogPrefix, url, err)
	}
	slog.Info(fmt.Sprintf("%s - Listening on %s", pairLogPrefix, url))
	return &Pair{sock: sock}, nil
}

// NewPairDialer creates a pair conduit dialing a mangos URL.
func NewPairDialer(url string) (*Pair, error) {
	sock, err := pair.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("%s - new socket: %w", pairLogPrefix, err)
	}
	if err := sock.Dial(url); err != nil {
		_ = sock.Close()
		return nil, fmt.Errorf("%s - dial %s: %w", pairLogPrefix, url, err)
	}
	slog.Info(fmt.Sprintf("%s - Dialed %s", pairLogPrefix, url))
	return &Pair{sock: sock}, nil
}

// Send delivers one message to the peer.
func (p *Pair) Send(data []byte) error {
	if err := p.sock.Send(data); err != nil {
		return fmt.Errorf("%s - send: %w", pairLogPrefix, err)
	}
	return nil
}

// Receive starts the receive loop feeding the sink. The loop ends when the
// socket is closed.
func (p *Pair) Receive(fn func(data []byte)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.receiving {
		return fmt.Errorf("%s - already receiving", pairLogPrefix)
	}
	p.receiving = true

	go func() {
		for {
			data, err := p.sock.Recv()
			if err != nil {
				if !errors.Is(err, mangos.ErrClosed) {
					slog.Warn(fmt.Sprintf("%s - receive loop ended: %v", pairLogPrefix, err))
				}
				return
			}
			fn(data)
		}
	}()
	return nil
}

// Close shuts the socket down, ending the receive loop.
func (p *Pair) Close() error {
	if err := p.sock.Close(); err != nil && !errors.Is(err, mangos.ErrClosed) {
		return fmt.Errorf("%s - close: %w", pairLogPrefix, err)
	}
	return nil
}
