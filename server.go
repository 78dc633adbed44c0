package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wricardo/maze-solver/api"
	"github.com/wricardo/maze-solver/maze/service"
	"github.com/wricardo/maze-solver/transport/mcp"
	"github.com/wricardo/maze-solver/transport/websocket"
)

// newHub starts a WebSocket hub whose cancel messages stop the session's solve.
func newHub(mazeService service.MazeService) *websocket.Hub {
	hub := websocket.NewHub(func(sessionID string) error {
		if err := mazeService.Cancel(context.Background(), sessionID); err != nil {
			return err
		}
		log.Printf("[CANCEL] session=%s via websocket", sessionID)
		return nil
	})
	go hub.Run()
	return hub
}

// newRouter mounts the API server and the /mcp endpoint. The MCP tools call
// back into the API at baseURL.
func newRouter(mazeService service.MazeService, hub *websocket.Hub, baseURL string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", api.NewServer(mazeService, hub))
	mux.Handle("/mcp", mcpHandler(mcp.NewClient(baseURL)))
	return mux
}

// mcpHandler answers one JSON-RPC message per POST.
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		defer r.Body.Close()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}

		reply := client.GetMCPServer().HandleMessage(r.Context(), body)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(reply); err != nil {
			log.Printf("MCP response write failed: %v", err)
		}
	}
}

// runHTTPServer serves until SIGINT or SIGTERM, optionally through a tunnel.
func runHTTPServer(mazeService service.MazeService) {
	addr := fmt.Sprintf("%s:%d", *host, *port)
	handler := newRouter(mazeService, newHub(mazeService), "http://"+addr)

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Synchronous solves with a step delay can take a while.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logEndpoints("http://"+addr, "ws://"+addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if t := tunnelFromEnv(); t.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := t.Serve(ctx, handler); err != nil {
				log.Printf("ngrok: %v", err)
			}
		}()
	}

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

func logEndpoints(httpBase, wsBase string) {
	log.Printf("REST API:  %s/api", httpBase)
	log.Printf("WebSocket: %s/ws?session=<session_id>", wsBase)
	log.Printf("MCP:       %s/mcp", httpBase)
	log.Printf("Metrics:   %s/metrics", httpBase)
}
