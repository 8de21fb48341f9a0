// Package webclient implements the web-surface side of the bridge: the
// correlator that matches response envelopes to pending calls and fans
// unsolicited events out to subscribers.
package webclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/nats-io/nuid"

	"github.com/gayanthabishan/WebBridge/pkg/envelope"
)

const clientLogPrefix = "webclient:client"

// CallError is the structured rejection carried by a failed response.
// Callers should treat unknown Code values gracefully: the set may grow.
type CallError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Sender delivers an encoded request envelope toward the host. The comms,
// pair and pipe conduits all satisfy it.
type Sender interface {
	Send(data []byte) error
}

// settlement is the single resolution or rejection of one pending call.
type settlement struct {
	result json.RawMessage
	err    *CallError
}

// Client is the web-side correlator. Ids are unique among currently-pending
// calls: a per-client token plus a monotonic counter, so clients sharing a
// broadcast channel never settle each other's calls.
type Client struct {
	send  Sender
	token string
	seq   atomic.Uint64

	mu        sync.Mutex
	pending   map[string]chan settlement
	listeners []eventListener
	nextSub   uint64
}

// New creates a correlator sending requests through the given sender.
// Inbound traffic must be fed to HandleInbound.
func New(send Sender) *Client {
	return &Client{
		send:    send,
		token:   nuid.Next(),
		pending: make(map[string]chan settlement),
	}
}

// Receiver registers an inbound sink, the way conduits expose their
// receive side.
type Receiver interface {
	Receive(fn func(data []byte)) error
}

// Attach creates a client over a conduit and wires its inbound side to the
// correlator in one step.
func Attach(conduit interface {
	Sender
	Receiver
}) (*Client, error) {
	c := New(conduit)
	if err := conduit.Receive(c.HandleInbound); err != nil {
		return nil, fmt.Errorf("%s - attach: %w", clientLogPrefix, err)
	}
	return c, nil
}

func (c *Client) nextID() string {
	return c.token + "-" + strconv.FormatUint(c.seq.Add(1), 10)
}

// Invoke sends a request envelope and blocks until the matching response
// settles it or ctx is done. The future settles exactly once: a rejection
// is returned as a *CallError carrying the response's code and message.
//
// Cancellation abandons the pending call locally; the host does not know
// the call was abandoned, and a late response for the id is accepted and
// discarded as unmatched.
func (c *Client) Invoke(ctx context.Context, method string, payload any) (json.RawMessage, error) {
	if method == "" {
		return nil, fmt.Errorf("%s - method must not be empty", clientLogPrefix)
	}

	var raw json.RawMessage
	if payload != nil {
		var err error
		if raw, err = envelope.MarshalValue(payload); err != nil {
			return nil, fmt.Errorf("%s - payload for %s: %w", clientLogPrefix, method, err)
		}
	}

	id := c.nextID()
	data, err := envelope.Encode(&envelope.Request{ID: id, Method: method, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("%s - request %s: %w", clientLogPrefix, method, err)
	}

	ch := make(chan settlement, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	if err := c.send.Send(data); err != nil {
		c.abandon(id)
		return nil, fmt.Errorf("%s - send %s: %w", clientLogPrefix, method, err)
	}

	select {
	case s := <-ch:
		if s.err != nil {
			return nil, s.err
		}
		return s.result, nil
	case <-ctx.Done():
		c.abandon(id)
		return nil, ctx.Err()
	}
}

// abandon forgets a pending call so a late response becomes unmatched.
func (c *Client) abandon(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// HandleInbound feeds one raw inbound message to the correlator. Wire this
// to the conduit's receive side. Messages that fail schema validation,
// responses with no matching pending call, and duplicate responses are all
// dropped without any observable effect.
func (c *Client) HandleInbound(data []byte) {
	env, err := envelope.Decode(data)
	if err != nil {
		slog.Debug(fmt.Sprintf("%s - dropping undecodable inbound: %v", clientLogPrefix, err))
		return
	}

	switch m := env.(type) {
	case *envelope.Response:
		c.settle(m)
	case *envelope.Event:
		c.fanOut(m)
	default:
		slog.Debug(fmt.Sprintf("%s - dropping inbound %s envelope", clientLogPrefix, env.Kind()))
	}
}

// settle completes the pending call matching the response id, exactly once.
// The pending entry is removed before the settlement is delivered, so a
// duplicate response finds nothing and is a no-op.
func (c *Client) settle(resp *envelope.Response) {
	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
	}
	c.mu.Unlock()

	if !ok {
		slog.Debug(fmt.Sprintf("%s - dropping response for unmatched id=%s", clientLogPrefix, resp.ID))
		return
	}

	if resp.Ok {
		ch <- settlement{result: resp.Result}
	} else {
		ch <- settlement{err: &CallError{Code: resp.Error.Code, Message: resp.Error.Message}}
	}
}

// PendingCalls reports how many calls are currently awaiting a response.
func (c *Client) PendingCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
