package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gayanthabishan/WebBridge/pkg/envelope"
)

const bridgeLogPrefix = "bridge:bridge"

// Bridge binds a handler registry and a dispatcher to one named channel.
// The channel name is explicit configuration, never a compiled-in constant,
// so multiple independent bridges can coexist in one process.
type Bridge struct {
	channel    string
	name       string
	registry   *Registry
	dispatcher *Dispatcher
	reply      ReplyChannel
}

// Options configures optional Bridge behavior. Zero values use defaults.
type Options struct {
	// Name identifies the host in bridge.info responses.
	Name string
}

// New creates a bridge on the given channel. The built-in diagnostic
// handlers are registered first, so entries in handlers may override them.
func New(channel string, reply ReplyChannel, handlers map[string]Handler, opts *Options) *Bridge {
	name := "webbridge"
	if opts != nil && opts.Name != "" {
		name = opts.Name
	}

	b := &Bridge{
		channel: channel,
		name:    name,
		reply:   reply,
	}
	b.registry = NewRegistry(nil)
	for method, h := range builtinHandlers(b) {
		b.registry.Register(method, h)
	}
	for method, h := range handlers {
		b.registry.Register(method, h)
	}
	b.dispatcher = NewDispatcher(b.registry, reply)
	return b
}

// Channel returns the channel name the bridge is bound to.
func (b *Bridge) Channel() string { return b.channel }

// Register binds a handler to a method name; the last registration wins.
func (b *Bridge) Register(method string, h Handler) {
	b.registry.Register(method, h)
}

// Unregister removes the handler for a method name.
func (b *Bridge) Unregister(method string) {
	b.registry.Unregister(method)
}

// Methods returns the registered method names, sorted.
func (b *Bridge) Methods() []string {
	return b.registry.Methods()
}

// HandleInbound feeds one raw inbound message to the dispatcher. Wire this
// to the conduit's receive side.
func (b *Bridge) HandleInbound(ctx context.Context, data []byte) {
	b.dispatcher.HandleInbound(ctx, data)
}

// Emit pushes an unsolicited event to the web surface. Events carry no
// correlation id and are best-effort: a failed send is logged and
// discarded, not retried. A payload that cannot be serialized is a host
// bug and is returned as an error.
func (b *Bridge) Emit(eventType string, payload any) error {
	raw, err := envelope.MarshalValue(payload)
	if err != nil {
		return fmt.Errorf("%s - event %s payload: %w", bridgeLogPrefix, eventType, err)
	}
	data, err := envelope.Encode(&envelope.Event{Type: eventType, Payload: raw})
	if err != nil {
		return fmt.Errorf("%s - event %s: %w", bridgeLogPrefix, eventType, err)
	}
	if err := b.reply.Send(data); err != nil {
		slog.Warn(fmt.Sprintf("%s - event %s on channel %s not delivered: %v", bridgeLogPrefix, eventType, b.channel, err))
	}
	return nil
}
