package webclient

import (
	"fmt"
	"log/slog"

	"github.com/gayanthabishan/WebBridge/pkg/envelope"
)

const eventsLogPrefix = "webclient:events"

// EventListener receives one unsolicited event pushed by the host.
type EventListener func(evt *envelope.Event)

type eventListener struct {
	id uint64
	fn EventListener
}

// OnEvent subscribes a listener to event envelopes. Listeners run in
// registration order. The returned function unsubscribes; calling it more
// than once is a no-op.
func (c *Client) OnEvent(fn EventListener) (unsubscribe func()) {
	c.mu.Lock()
	c.nextSub++
	id := c.nextSub
	c.listeners = append(c.listeners, eventListener{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// fanOut invokes every currently-registered listener once, in registration
// order. A panicking listener is recovered so it cannot prevent subsequent
// listeners from running or destabilize the correlator.
func (c *Client) fanOut(evt *envelope.Event) {
	c.mu.Lock()
	listeners := make([]eventListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error(fmt.Sprintf("%s - listener panicked on %s: %v", eventsLogPrefix, evt.Type, r))
				}
			}()
			l.fn(evt)
		}()
	}
}
