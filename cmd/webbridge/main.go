// Package main is the entrypoint for the webbridge host daemon.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gayanthabishan/WebBridge/internal/server"
)

const usage = `Usage: webbridge [flags] [command]

Commands:
  (default)   Start the bridge host (NATS conduit, HTTP status page).
  serve       Same as default.

Flags:
  -config     TOML file overriding environment settings (same as BRIDGE_CONFIG_FILE)

Environment: COMMS_URL, BRIDGE_CHANNEL, BRIDGE_NAME, BRIDGE_REQUEST_TIMEOUT, BRIDGE_CONFIG_FILE, HTTP_PORT, LOG_LEVEL. See README for full list.
`

func main() {
	configFile := flag.String("config", "", "TOML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if *configFile != "" {
		os.Setenv("BRIDGE_CONFIG_FILE", *configFile)
	}

	args := flag.Args()
	cmd := ""
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
	}

	switch cmd {
	case "help":
		fmt.Print(usage)
		return
	case "", "serve":
		// fall through to server
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}

	if err := server.Run(); err != nil {
		log.Fatalf("webbridge: fatal error: %v", err)
	}
}
