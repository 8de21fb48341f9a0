package conduit

import (
	"fmt"
	"strings"
)

// HostSubject is the COMMS subject carrying web-to-host traffic for a
// named channel.
func HostSubject(channel string) string {
	return fmt.Sprintf("bridge.%s.host", sanitizeChannel(channel))
}

// WebSubject is the COMMS subject carrying host-to-web traffic for a
// named channel.
func WebSubject(channel string) string {
	return fmt.Sprintf("bridge.%s.web", sanitizeChannel(channel))
}

// sanitizeChannel keeps channel names from colliding with COMMS subject
// token separators.
func sanitizeChannel(channel string) string {
	safe := strings.ReplaceAll(channel, ".", "_")
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = strings.ReplaceAll(safe, "*", "_")
	safe = strings.ReplaceAll(safe, ">", "_")
	return safe
}
