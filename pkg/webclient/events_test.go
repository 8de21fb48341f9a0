package webclient

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gayanthabishan/WebBridge/pkg/envelope"
)

func eventRaw(t *testing.T, eventType string, payload string) []byte {
	t.Helper()
	evt := &envelope.Event{Type: eventType}
	if payload != "" {
		evt.Payload = json.RawMessage(payload)
	}
	raw, err := envelope.Encode(evt)
	if err != nil {
		t.Fatalf("failed to encode event: %v", err)
	}
	return raw
}

func TestClient_EventFanOutInRegistrationOrder(t *testing.T) {
	c := New(sendFunc(func([]byte) error { return nil }))

	var order []string
	c.OnEvent(func(evt *envelope.Event) { order = append(order, "first") })
	c.OnEvent(func(evt *envelope.Event) { order = append(order, "second") })
	c.OnEvent(func(evt *envelope.Event) { order = append(order, "third") })

	c.HandleInbound(eventRaw(t, "booking.updated", `{"id":"BK-1"}`))

	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Errorf("expected registration order, got %v", order)
	}
}

func TestClient_PanickingListenerDoesNotStopFanOut(t *testing.T) {
	c := New(sendFunc(func([]byte) error { return nil }))

	var delivered []string
	c.OnEvent(func(evt *envelope.Event) { panic("listener bug") })
	c.OnEvent(func(evt *envelope.Event) { delivered = append(delivered, evt.Type) })

	c.HandleInbound(eventRaw(t, "host.idle", ""))

	if len(delivered) != 1 || delivered[0] != "host.idle" {
		t.Errorf("expected the second listener to still run, got %v", delivered)
	}

	// The correlator stays usable afterwards.
	c.HandleInbound(eventRaw(t, "host.idle", ""))
	if len(delivered) != 2 {
		t.Errorf("expected continued delivery, got %v", delivered)
	}
}

func TestClient_EveryListenerSeesIdenticalPayload(t *testing.T) {
	c := New(sendFunc(func([]byte) error { return nil }))

	var got []string
	listener := func(evt *envelope.Event) { got = append(got, string(evt.Payload)) }
	c.OnEvent(listener)
	c.OnEvent(listener)

	c.HandleInbound(eventRaw(t, "booking.updated", `{"id":"BK-1"}`))

	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(got))
	}
	if got[0] != `{"id":"BK-1"}` || got[0] != got[1] {
		t.Errorf("expected identical payloads, got %v", got)
	}
}

func TestClient_Unsubscribe(t *testing.T) {
	c := New(sendFunc(func([]byte) error { return nil }))

	var count int
	unsubscribe := c.OnEvent(func(evt *envelope.Event) { count++ })

	c.HandleInbound(eventRaw(t, "host.idle", ""))
	unsubscribe()
	c.HandleInbound(eventRaw(t, "host.idle", ""))
	unsubscribe() // second call is a no-op

	if count != 1 {
		t.Errorf("expected exactly 1 delivery, got %d", count)
	}
}

func TestClient_EventsIndependentOfRequests(t *testing.T) {
	var c *Client
	c = New(scriptedHost(t, &c, func(req *envelope.Request) envelope.Envelope {
		return &envelope.Response{ID: req.ID, Ok: true, Result: json.RawMessage(`null`)}
	}))

	var events int
	c.OnEvent(func(evt *envelope.Event) { events++ })

	// Events interleaved with a request/response round trip.
	c.HandleInbound(eventRaw(t, "tick", ""))
	if _, err := c.Invoke(context.Background(), "ping", nil); err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	c.HandleInbound(eventRaw(t, "tick", ""))

	if events != 2 {
		t.Errorf("expected 2 events, got %d", events)
	}
}
