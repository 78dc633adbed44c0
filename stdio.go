package main

import (
	"log"
	"net"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/maze-solver/maze/service"
	"github.com/wricardo/maze-solver/transport/mcp"
)

// sharedAPI is where a separately started server usually listens.
const sharedAPI = "http://localhost:8080"

// apiAvailable reports whether an API answers at baseURL.
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// startLoopbackAPI serves the API on a random 127.0.0.1 port and returns
// its base URL.
func startLoopbackAPI(mazeService service.MazeService) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	srv := &http.Server{Handler: newRouter(mazeService, newHub(mazeService), "http://"+ln.Addr().String())}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("Loopback API error: %v", err)
		}
	}()
	return "http://" + ln.Addr().String(), nil
}

// runStdioMCP serves the MCP tools on stdio. Tools talk to a running server
// when one answers on localhost:8080 so sessions are shared with it.
func runStdioMCP(mazeService service.MazeService) {
	baseURL := sharedAPI
	if apiAvailable(baseURL) {
		log.Printf("Using API at %s", baseURL)
	} else {
		var err error
		if baseURL, err = startLoopbackAPI(mazeService); err != nil {
			log.Fatalf("Failed to start loopback API: %v", err)
		}
		log.Printf("Started loopback API at %s", baseURL)
	}

	if err := server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}
