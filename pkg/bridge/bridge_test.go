package bridge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gayanthabishan/WebBridge/pkg/envelope"
)

func TestBridge_InfoBuiltin(t *testing.T) {
	reply := &captureReply{}
	b := New("checkout", reply, nil, &Options{Name: "demo-host"})

	b.HandleInbound(context.Background(), []byte(`{"id": "req-1", "method": "bridge.info"}`))

	resp := reply.lastResponse(t)
	if !resp.Ok {
		t.Fatalf("expected ok=true, got %+v", resp.Error)
	}
	var info map[string]string
	if err := json.Unmarshal(resp.Result, &info); err != nil {
		t.Fatalf("failed to unmarshal info: %v", err)
	}
	if info["channel"] != "checkout" {
		t.Errorf("expected channel checkout, got %s", info["channel"])
	}
	if info["name"] != "demo-host" {
		t.Errorf("expected name demo-host, got %s", info["name"])
	}
	if info["protocol"] != ProtocolVersion {
		t.Errorf("expected protocol %s, got %s", ProtocolVersion, info["protocol"])
	}
}

func TestBridge_HandlersOverrideBuiltins(t *testing.T) {
	reply := &captureReply{}
	b := New("checkout", reply, map[string]Handler{
		MethodInfo: staticHandler(Success("custom")),
	}, nil)

	b.HandleInbound(context.Background(), []byte(`{"id": "req-1", "method": "bridge.info"}`))

	resp := reply.lastResponse(t)
	if string(resp.Result) != `"custom"` {
		t.Errorf("expected custom info handler to win, got %s", resp.Result)
	}
}

func TestBridge_Emit(t *testing.T) {
	reply := &captureReply{}
	b := New("checkout", reply, nil, nil)

	if err := b.Emit("booking.updated", map[string]string{"id": "BK-1"}); err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	if len(reply.sent) != 1 {
		t.Fatalf("expected 1 event, got %d", len(reply.sent))
	}
	env, err := envelope.Decode(reply.sent[0])
	if err != nil {
		t.Fatalf("event failed to decode: %v", err)
	}
	evt, ok := env.(*envelope.Event)
	if !ok {
		t.Fatalf("expected event envelope, got %T", env)
	}
	if evt.Type != "booking.updated" {
		t.Errorf("expected booking.updated, got %s", evt.Type)
	}
	if string(evt.Payload) != `{"id":"BK-1"}` {
		t.Errorf("unexpected payload: %s", evt.Payload)
	}
}

func TestBridge_EmitRejectsUnserializablePayload(t *testing.T) {
	b := New("checkout", &captureReply{}, nil, nil)

	if err := b.Emit("bad.event", make(chan int)); err == nil {
		t.Fatal("expected error for unserializable payload")
	}
}

func TestBridge_RegisterAndUnregister(t *testing.T) {
	reply := &captureReply{}
	b := New("checkout", reply, nil, nil)

	b.Register("ping", staticHandler(Success("pong")))
	b.HandleInbound(context.Background(), []byte(`{"id": "req-1", "method": "ping"}`))
	if resp := reply.lastResponse(t); !resp.Ok {
		t.Fatalf("expected ping to succeed, got %+v", resp.Error)
	}

	b.Unregister("ping")
	b.HandleInbound(context.Background(), []byte(`{"id": "req-2", "method": "ping"}`))
	resp := reply.lastResponse(t)
	if resp.Ok || resp.Error.Code != CodeUnsupportedMethod {
		t.Errorf("expected UNSUPPORTED_METHOD after unregister, got %+v", resp)
	}
}
