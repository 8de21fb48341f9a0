package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gayanthabishan/WebBridge/internal/config"
	"github.com/gayanthabishan/WebBridge/pkg/bridge"
)

const serverTestPrefix = "server:server_test"

// discardReply drops every envelope, like a surface that never attached.
type discardReply struct{}

func (discardReply) Send([]byte) error { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Channel:            "test",
		BridgeName:         "test-host",
		RequestTimeout:     5 * time.Second,
		HealthCheckTimeout: time.Second,
	}
	br := bridge.New(cfg.Channel, discardReply{}, hostHandlers(), &bridge.Options{Name: cfg.BridgeName})
	return &Server{cfg: cfg, br: br}
}

func TestHostHandlers_Echo(t *testing.T) {
	handlers := hostHandlers()
	h, ok := handlers["bridge.echo"]
	if !ok {
		t.Fatalf("%s - expected bridge.echo handler", serverTestPrefix)
	}

	out := h.Invoke(context.Background(), json.RawMessage(`{"x":1}`))
	if !out.Ok() {
		t.Fatalf("%s - echo failed: %+v", serverTestPrefix, out.ErrorDetail())
	}
	data, err := json.Marshal(out.Result())
	if err != nil {
		t.Fatalf("%s - marshal result: %v", serverTestPrefix, err)
	}
	if string(data) != `{"input":{"x":1}}` {
		t.Errorf("%s - echo result = %s", serverTestPrefix, data)
	}
}

func TestHostHandlers_Time(t *testing.T) {
	handlers := hostHandlers()
	h, ok := handlers["bridge.time"]
	if !ok {
		t.Fatalf("%s - expected bridge.time handler", serverTestPrefix)
	}

	out := h.Invoke(context.Background(), nil)
	if !out.Ok() {
		t.Fatalf("%s - time failed: %+v", serverTestPrefix, out.ErrorDetail())
	}
	result, ok := out.Result().(map[string]string)
	if !ok {
		t.Fatalf("%s - unexpected result type %T", serverTestPrefix, out.Result())
	}
	if _, err := time.Parse(time.RFC3339Nano, result["now"]); err != nil {
		t.Errorf("%s - now is not RFC3339: %v", serverTestPrefix, err)
	}
}

func TestHandleHome(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	s.handleHome()(rec, req)

	if rec.Code != 200 {
		t.Fatalf("%s - status = %d, want 200", serverTestPrefix, rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"test", "bridge.echo", "bridge.info", "bridge.time", bridge.ProtocolVersion} {
		if !strings.Contains(body, want) {
			t.Errorf("%s - home page missing %q", serverTestPrefix, want)
		}
	}
}

func TestHandleHome_NotFound(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/nope", nil)
	rec := httptest.NewRecorder()
	s.handleHome()(rec, req)

	if rec.Code != 404 {
		t.Errorf("%s - status = %d, want 404", serverTestPrefix, rec.Code)
	}
}
