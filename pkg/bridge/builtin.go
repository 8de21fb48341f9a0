package bridge

import (
	"context"
	"encoding/json"
)

// ProtocolVersion is the bridge protocol version reported by bridge.info.
// Clients gate on it with a semver constraint before relying on newer
// behavior.
const ProtocolVersion = "1.0.0"

// MethodInfo is the built-in diagnostic method every bridge answers.
const MethodInfo = "bridge.info"

func builtinHandlers(b *Bridge) map[string]Handler {
	return map[string]Handler{
		MethodInfo: HandlerFunc(func(_ context.Context, _ json.RawMessage) Outcome {
			return Success(map[string]string{
				"name":     b.name,
				"channel":  b.channel,
				"protocol": ProtocolVersion,
			})
		}),
	}
}
