// Package server orchestrates the bridge host: COMMS conduit, handler
// registry, dispatcher and the HTTP status surface.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	comms "github.com/nats-io/nats.go"

	"github.com/gayanthabishan/WebBridge/internal/config"
	"github.com/gayanthabishan/WebBridge/pkg/bridge"
	"github.com/gayanthabishan/WebBridge/pkg/conduit"
)

const logPrefix = "server:server"

// Server is the webbridge host orchestrator.
type Server struct {
	cfg        *config.Config
	nc         *comms.Conn
	httpServer *http.Server
	br         *bridge.Bridge
}

// Run starts the bridge host, blocks until shutdown signal, then cleans up.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	setupLogging(cfg.LogLevel)
	slog.Info(fmt.Sprintf("%s - Starting webbridge host on channel %s", logPrefix, cfg.Channel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &Server{cfg: cfg}

	// Step 1: Connect to COMMS
	nc, err := conduit.Connect(cfg.COMMSURL, cfg.COMMSName)
	if err != nil {
		return fmt.Errorf("%s - failed to connect to COMMS: %w", logPrefix, err)
	}
	s.nc = nc

	// Step 2: Conduit for the host side of the channel
	cond, err := conduit.NewComms(nc, cfg.Channel, conduit.SideHost)
	if err != nil {
		nc.Close()
		return fmt.Errorf("%s - failed to create conduit: %w", logPrefix, err)
	}

	// Step 3: Bridge with the host's diagnostic handlers
	br := bridge.New(cfg.Channel, cond, hostHandlers(), &bridge.Options{Name: cfg.BridgeName})
	s.br = br

	// Step 4: Feed inbound requests to the dispatcher, one timeout each
	requestTimeout := cfg.RequestTimeout
	if err := cond.Receive(func(data []byte) {
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		br.HandleInbound(reqCtx, data)
	}); err != nil {
		nc.Close()
		return fmt.Errorf("%s - failed to receive on channel %s: %w", logPrefix, cfg.Channel, err)
	}
	slog.Info(fmt.Sprintf("%s - Serving channel %s", logPrefix, cfg.Channel))

	// Step 5: HTTP status server
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		commsOK := nc.IsConnected() && nc.FlushTimeout(cfg.HealthCheckTimeout) == nil
		status := "healthy"
		if !commsOK {
			status = "unhealthy"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status":    status,
			"checks":    map[string]bool{"comms": commsOK},
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	s.httpServer = &http.Server{Addr: httpAddr, Handler: mux}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP status server listening on %s", logPrefix, httpAddr))
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()

	slog.Info(fmt.Sprintf("%s - Webbridge host is ready", logPrefix))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))

	// Graceful shutdown
	cond.Close()
	s.httpServer.Shutdown(ctx)
	nc.Drain()

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

// setupLogging installs the default slog handler at the configured level.
func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

// homePageTemplate is the HTML for the bridge host status page.
const homePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>WebBridge Host</title>
  <style>
    * { box-sizing: border-box; }
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    h1, h2 { color: #0066cc; }
    .status-connected { color: #0066cc; font-weight: bold; }
    .status-disconnected { color: #cc0000; font-weight: bold; }
    table { border-collapse: collapse; width: 100%; max-width: 600px; margin-top: 0.5rem; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border: 1px solid #ccc; }
    th { background: #f0f4f8; color: #0066cc; }
    .meta { color: #333; font-size: 0.9rem; margin-top: 1rem; }
    section { margin-bottom: 2rem; }
  </style>
</head>
<body>
  <h1>WebBridge Host</h1>
  <p class="meta">Channel <strong>{{.Channel}}</strong>, protocol {{.Protocol}}.</p>

  <section>
    <h2>Connection</h2>
    <p>COMMS: <span class="status-{{if .Connected}}connected{{else}}disconnected{{end}}">{{if .Connected}}connected{{else}}disconnected{{end}}</span></p>
  </section>

  <section>
    <h2>Registered methods</h2>
    {{if not .Methods}}
    <p>No methods registered.</p>
    {{else}}
    <table>
      <thead><tr><th>Method</th></tr></thead>
      <tbody>
        {{range .Methods}}<tr><td>{{.}}</td></tr>{{end}}
      </tbody>
    </table>
    {{end}}
  </section>
</body>
</html>
`

// homeData is the data passed to the home page template.
type homeData struct {
	Channel   string
	Protocol  string
	Connected bool
	Methods   []string
}

// handleHome returns an HTTP handler for the host status page.
func (s *Server) handleHome() http.HandlerFunc {
	tmpl := template.Must(template.New("home").Parse(homePageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		data := homeData{
			Channel:   s.cfg.Channel,
			Protocol:  bridge.ProtocolVersion,
			Connected: s.nc != nil && s.nc.IsConnected(),
			Methods:   s.br.Methods(),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Error(fmt.Sprintf("%s - home template execute: %v", logPrefix, err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}
