// Package main is a command line probe for bridge channels: it attaches to
// the web side of a channel and invokes methods or watches events.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gayanthabishan/WebBridge/pkg/conduit"
	"github.com/gayanthabishan/WebBridge/pkg/envelope"
	"github.com/gayanthabishan/WebBridge/pkg/webclient"
)

const usage = `Usage: bridge-probe [flags] <command>

Commands:
  invoke <method> [json]  Invoke a method on the host. Optional JSON object payload.
  listen                  Print events from the host until interrupted.
  info                    Print the host's bridge descriptor.

Flags:
  -url       COMMS server URL (default nats://localhost:4222)
  -channel   bridge channel name (default "default")
  -timeout   per-call timeout (default 25s)
  -require   semver constraint checked against the host protocol before the command runs
`

func main() {
	url := flag.String("url", "nats://localhost:4222", "COMMS server URL")
	channel := flag.String("channel", "default", "bridge channel name")
	timeout := flag.Duration("timeout", 25*time.Second, "per-call timeout")
	require := flag.String("require", "", "semver constraint on the host protocol")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err := run(*url, *channel, *timeout, *require, args); err != nil {
		fmt.Fprintf(os.Stderr, "bridge-probe: %v\n", err)
		os.Exit(1)
	}
}

func run(url, channel string, timeout time.Duration, require string, args []string) error {
	nc, err := conduit.Connect(url, "bridge-probe")
	if err != nil {
		return err
	}
	defer nc.Close()

	cond, err := conduit.NewComms(nc, channel, conduit.SideWeb)
	if err != nil {
		return err
	}
	defer cond.Close()

	client, err := webclient.Attach(cond)
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}

	if require != "" {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		err := client.RequireProtocol(ctx, require)
		cancel()
		if err != nil {
			return err
		}
	}

	switch args[0] {
	case "invoke":
		if len(args) < 2 {
			return fmt.Errorf("invoke requires a method name")
		}
		payload := ""
		if len(args) > 2 {
			payload = args[2]
		}
		return runInvoke(client, timeout, args[1], payload)
	case "listen":
		return runListen(client)
	case "info":
		return runInfo(client, timeout)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runInvoke(client *webclient.Client, timeout time.Duration, method, payload string) error {
	var arg any
	if payload != "" {
		raw := json.RawMessage(payload)
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return fmt.Errorf("payload must be a JSON object: %w", err)
		}
		arg = raw
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := client.Invoke(ctx, method, arg)
	if err != nil {
		return err
	}
	fmt.Println(string(result))
	return nil
}

func runListen(client *webclient.Client) error {
	client.OnEvent(func(evt *envelope.Event) {
		fmt.Printf("%s %s %s\n", time.Now().Format(time.RFC3339), evt.Type, evt.Payload)
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	fmt.Fprintln(os.Stderr, "listening for events, Ctrl-C to stop")
	<-sig
	return nil
}

func runInfo(client *webclient.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	info, err := client.Info(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("name: %s\nchannel: %s\nprotocol: %s\n", info.Name, info.Channel, info.Protocol)
	return nil
}
