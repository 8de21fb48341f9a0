package webclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const infoLogPrefix = "webclient:info"

// BridgeInfo describes the host bridge, as reported by the built-in
// bridge.info method.
type BridgeInfo struct {
	Name     string `json:"name"`
	Channel  string `json:"channel"`
	Protocol string `json:"protocol"`
}

// Info calls the host's built-in bridge.info diagnostic method.
func (c *Client) Info(ctx context.Context) (*BridgeInfo, error) {
	result, err := c.Invoke(ctx, "bridge.info", nil)
	if err != nil {
		return nil, err
	}
	var info BridgeInfo
	if err := json.Unmarshal(result, &info); err != nil {
		return nil, fmt.Errorf("%s - bridge.info result: %w", infoLogPrefix, err)
	}
	return &info, nil
}

// RequireProtocol verifies the host's bridge protocol version against a
// semver constraint (e.g. "^1.0.0") before the caller relies on newer
// behavior. Unknown future versions that satisfy the constraint pass.
func (c *Client) RequireProtocol(ctx context.Context, constraint string) error {
	cons, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("%s - constraint %q: %w", infoLogPrefix, constraint, err)
	}

	info, err := c.Info(ctx)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(info.Protocol)
	if err != nil {
		return fmt.Errorf("%s - bridge reported protocol %q: %w", infoLogPrefix, info.Protocol, err)
	}
	if !cons.Check(v) {
		return fmt.Errorf("%s - bridge protocol %s does not satisfy %s", infoLogPrefix, info.Protocol, constraint)
	}
	return nil
}
