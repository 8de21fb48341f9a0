package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gayanthabishan/WebBridge/pkg/bridge"
)

// hostHandlers returns the diagnostic handlers every webbridge host serves.
// Real deployments register their own handlers next to these.
func hostHandlers() map[string]bridge.Handler {
	return map[string]bridge.Handler{
		// bridge.echo returns whatever object the caller sent, wrapped as
		// {input: payload}. Useful for probing a channel end to end.
		"bridge.echo": bridge.HandlerFunc(func(_ context.Context, payload json.RawMessage) bridge.Outcome {
			return bridge.Success(map[string]any{"input": payload})
		}),

		// bridge.time reports the host clock.
		"bridge.time": bridge.HandlerFunc(func(_ context.Context, _ json.RawMessage) bridge.Outcome {
			return bridge.Success(map[string]string{
				"now": time.Now().UTC().Format(time.RFC3339Nano),
			})
		}),
	}
}
