// Command maze-solver serves maze sessions over HTTP, WebSocket and MCP.
//
// Modes:
//
//	server     REST API under /api, live solve steps on /ws, /metrics and a
//	           JSON-RPC MCP endpoint on /mcp (default)
//	stdio-mcp  MCP over stdin/stdout, backed by a running server on
//	           localhost:8080 or by a private loopback one
//
// Pass -ngrok (or NGROK_ENABLED=1) to publish the server through a tunnel.
// Offline solving and config checks live in cmd/mazectl.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/wricardo/maze-solver/maze/config"
	"github.com/wricardo/maze-solver/maze/service"
	"github.com/wricardo/maze-solver/maze/session"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Maze Solver Server"
)

var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	configDir    = flag.String("config-dir", envOr("CONFIG_DIR", "configs"), "Directory of maze layout JSON files")
	sessionTTL   = flag.Duration("session-ttl", 24*time.Hour, "Remove sessions idle for longer than this")
	debug        = flag.Bool("debug", false, "Log file and line of every message")
	version      = flag.Bool("version", false, "Print the version and exit")
	ngrokEnabled = flag.Bool("ngrok", false, "Publish the server through an ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "ngrok auth token (default $NGROK_AUTHTOKEN)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Reserved ngrok domain (default $NGROK_DOMAIN)")
)

// cleanupInterval is how often idle sessions are swept.
const cleanupInterval = time.Hour

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(out, "Usage: %s [flags] [server|stdio-mcp]\n\n", os.Args[0])
		fmt.Fprintln(out, "  server     HTTP API, WebSocket steps, /metrics and /mcp (default; alias http)")
		fmt.Fprintln(out, "  stdio-mcp  MCP over stdio (aliases mcp-stdio, mcp)")
		fmt.Fprintln(out, "\nFlags:")
		flag.PrintDefaults()
	}
}

func main() {
	switch err := godotenv.Load(); {
	case err == nil:
		log.Println("Loaded environment from .env")
	case !os.IsNotExist(err):
		log.Printf("Warning: reading .env: %v", err)
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		return
	}

	log.SetFlags(log.LstdFlags)
	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	mode := "server"
	if flag.NArg() > 0 {
		mode = flag.Arg(0)
	}
	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, mode)

	mazeService, err := initializeServices()
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	switch mode {
	case "server", "http":
		runHTTPServer(mazeService)
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCP(mazeService)
	default:
		log.Fatalf("Unknown mode %q, expected server or stdio-mcp", mode)
	}
}

// initializeServices loads the maze layouts, builds the service and starts
// the idle session sweeper.
func initializeServices() (service.MazeService, error) {
	configManager, err := config.NewManager(*configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	go sweepSessions(sessionManager, *sessionTTL, cleanupInterval)

	return service.NewMazeService(sessionManager, configManager), nil
}

func sweepSessions(manager *session.Manager, maxAge, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for range ticker.C {
		if n := manager.CleanupExpiredSessions(maxAge); n > 0 {
			log.Printf("Removed %d idle sessions", n)
		}
	}
}
