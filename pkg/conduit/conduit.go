// Package conduit provides the byte transports that carry serialized
// envelopes between the host and the web surface. The bridge core treats a
// conduit as an opaque one-way-per-direction string conduit: the embedding
// container picks whichever implementation fits, and every implementation
// is addressed by an explicit channel name rather than a hardcoded one.
package conduit

// Conduit carries raw encoded envelopes between the two sides of a bridge
// channel. Send is fire-and-forget toward the peer; Receive registers the
// single inbound sink. Implementations deliver inbound messages one at a
// time in arrival order per direction.
type Conduit interface {
	// Send delivers one message toward the peer. Delivery is not
	// confirmed; a send to a torn-down peer may be silently discarded.
	Send(data []byte) error

	// Receive registers the inbound sink. At most one sink may be
	// registered per conduit.
	Receive(fn func(data []byte)) error

	// Close tears the conduit down. Sends after Close fail.
	Close() error
}
