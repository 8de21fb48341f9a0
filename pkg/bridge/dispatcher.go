package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gayanthabishan/WebBridge/pkg/envelope"
)

const dispatcherLogPrefix = "bridge:dispatcher"

// ReplyChannel delivers encoded envelopes to the web surface. Delivery is
// fire-and-forget: the channel does not confirm receipt and a send may be
// discarded when the destination surface is gone. Responses are idempotently
// ignored by the correlator when unmatched, and events are best-effort, so
// neither loss is fatal.
type ReplyChannel interface {
	Send(data []byte) error
}

// ReplyFunc adapts a plain function to the ReplyChannel interface.
type ReplyFunc func(data []byte) error

// Send calls the function.
func (f ReplyFunc) Send(data []byte) error { return f(data) }

// Dispatcher routes inbound request envelopes to handlers and funnels every
// outcome through the reply channel as exactly one response per request.
type Dispatcher struct {
	registry *Registry
	reply    ReplyChannel
}

// NewDispatcher creates a dispatcher over the given registry and reply
// channel.
func NewDispatcher(reg *Registry, reply ReplyChannel) *Dispatcher {
	return &Dispatcher{registry: reg, reply: reply}
}

// HandleInbound decodes one inbound message and dispatches it. Messages
// that fail schema validation are dropped without a reply: a malformed
// envelope may not contain a usable id to reply to. Valid requests always
// produce exactly one response, whatever the handler does.
func (d *Dispatcher) HandleInbound(ctx context.Context, data []byte) {
	env, err := envelope.Decode(data)
	if err != nil {
		slog.Debug(fmt.Sprintf("%s - dropping undecodable inbound: %v", dispatcherLogPrefix, err))
		return
	}
	req, ok := env.(*envelope.Request)
	if !ok {
		slog.Debug(fmt.Sprintf("%s - dropping inbound %s envelope", dispatcherLogPrefix, env.Kind()))
		return
	}

	slog.Debug(fmt.Sprintf("%s - method=%s id=%s", dispatcherLogPrefix, req.Method, req.ID))
	d.respond(req.ID, d.invoke(ctx, req))
}

// invoke resolves and runs the handler. A panicking handler is recovered
// and converted to an INTERNAL_ERROR outcome so the dispatch loop stays
// usable and the request never goes unanswered.
func (d *Dispatcher) invoke(ctx context.Context, req *envelope.Request) (out Outcome) {
	h, ok := d.registry.Resolve(req.Method)
	if !ok {
		return Failuref(CodeUnsupportedMethod, "%s is not registered", req.Method)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error(fmt.Sprintf("%s - handler for %s panicked: %v", dispatcherLogPrefix, req.Method, r))
			out = Failuref(CodeInternalError, "handler for %s failed: %v", req.Method, r)
		}
	}()
	return h.Invoke(ctx, req.Payload)
}

// respond converts an outcome to a response envelope and sends it once.
func (d *Dispatcher) respond(id string, out Outcome) {
	resp := &envelope.Response{ID: id}
	if out.Ok() {
		result, err := envelope.MarshalValue(out.Result())
		if err != nil {
			slog.Error(fmt.Sprintf("%s - result for id=%s: %v", dispatcherLogPrefix, id, err))
			resp.Error = &envelope.ErrorDetail{Code: CodeInternalError, Message: "result is not serializable"}
		} else {
			resp.Ok = true
			resp.Result = result
		}
	} else {
		resp.Error = out.ErrorDetail()
	}

	data, err := envelope.Encode(resp)
	if err != nil {
		// Unreachable for a well-formed response; guard it anyway rather
		// than leaving the request unanswered.
		data, err = envelope.Encode(&envelope.Response{
			ID:    id,
			Error: &envelope.ErrorDetail{Code: CodeInternalError, Message: "response is not serializable"},
		})
		if err != nil {
			slog.Error(fmt.Sprintf("%s - failed to encode response for id=%s: %v", dispatcherLogPrefix, id, err))
			return
		}
	}
	if err := d.reply.Send(data); err != nil {
		// Fire-and-forget: the surface may be gone. Logged for diagnostics
		// only, the unmatched response would be dropped anyway.
		slog.Warn(fmt.Sprintf("%s - reply for id=%s not delivered: %v", dispatcherLogPrefix, id, err))
	}
}
