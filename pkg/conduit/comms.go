package conduit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	comms "github.com/nats-io/nats.go"
)

const commsLogPrefix = "conduit:comms"

// Connect creates a COMMS connection to the given URL.
func Connect(url, name string) (*comms.Conn, error) {
	slog.Info(fmt.Sprintf("%s - Connecting to COMMS at %s as %s", commsLogPrefix, url, name))

	nc, err := comms.Connect(url,
		comms.Name(name),
		comms.Timeout(10*time.Second),
		comms.ReconnectWait(2*time.Second),
		comms.MaxReconnects(60),
		comms.DisconnectErrHandler(func(_ *comms.Conn, err error) {
			slog.Warn(fmt.Sprintf("%s - COMMS disconnected: %v", commsLogPrefix, err))
		}),
		comms.ReconnectHandler(func(nc *comms.Conn) {
			slog.Info(fmt.Sprintf("%s - COMMS reconnected to %s", commsLogPrefix, nc.ConnectedUrl()))
		}),
		comms.ClosedHandler(func(nc *comms.Conn) {
			slog.Info(fmt.Sprintf("%s - COMMS connection closed", commsLogPrefix))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to connect to COMMS: %w", commsLogPrefix, err)
	}

	slog.Info(fmt.Sprintf("%s - Connected to COMMS at %s", commsLogPrefix, nc.ConnectedUrl()))
	return nc, nil
}

// Side selects which end of a bridge channel a comms conduit speaks for.
type Side int

const (
	// SideHost sends toward the web surface and receives web requests.
	SideHost Side = iota
	// SideWeb sends requests toward the host and receives replies/events.
	SideWeb
)

// Comms is a Conduit over a COMMS connection. Each channel uses two
// subjects, one per direction, derived from the channel name.
type Comms struct {
	nc          *comms.Conn
	channel     string
	sendSubject string
	recvSubject string

	mu  sync.Mutex
	sub *comms.Subscription
}

// NewComms creates a conduit for one side of the named channel. The
// connection stays owned by the caller; Close only tears down the conduit's
// subscription.
func NewComms(nc *comms.Conn, channel string, side Side) (*Comms, error) {
	if nc == nil {
		return nil, fmt.Errorf("%s - connection is required", commsLogPrefix)
	}
	if channel == "" {
		return nil, fmt.Errorf("%s - channel name is required", commsLogPrefix)
	}

	c := &Comms{nc: nc, channel: channel}
	switch side {
	case SideHost:
		c.sendSubject = WebSubject(channel)
		c.recvSubject = HostSubject(channel)
	case SideWeb:
		c.sendSubject = HostSubject(channel)
		c.recvSubject = WebSubject(channel)
	default:
		return nil, fmt.Errorf("%s - unknown side %d", commsLogPrefix, side)
	}
	return c, nil
}

// Send publishes one message toward the peer. Fire-and-forget: there is no
// receipt confirmation.
func (c *Comms) Send(data []byte) error {
	if err := c.nc.Publish(c.sendSubject, data); err != nil {
		return fmt.Errorf("%s - publish to %s: %w", commsLogPrefix, c.sendSubject, err)
	}
	return nil
}

// Receive subscribes the inbound sink to this side's subject.
func (c *Comms) Receive(fn func(data []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sub != nil {
		return fmt.Errorf("%s - already receiving on %s", commsLogPrefix, c.recvSubject)
	}

	sub, err := c.nc.Subscribe(c.recvSubject, func(msg *comms.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("%s - subscribe to %s: %w", commsLogPrefix, c.recvSubject, err)
	}
	c.sub = sub
	slog.Info(fmt.Sprintf("%s - Subscribed to %s", commsLogPrefix, c.recvSubject))
	return nil
}

// Close drops the subscription. The underlying connection is the caller's
// to close.
func (c *Comms) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sub == nil {
		return nil
	}
	err := c.sub.Unsubscribe()
	c.sub = nil
	if err != nil {
		return fmt.Errorf("%s - unsubscribe from %s: %w", commsLogPrefix, c.recvSubject, err)
	}
	return nil
}
