package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

var errNoAuthToken = errors.New("tunnel enabled but no auth token (use -ngrok-auth or NGROK_AUTHTOKEN)")

// tunnel is the resolved ngrok setup. Flags win over the environment.
type tunnel struct {
	Enabled   bool
	AuthToken string
	Domain    string
}

func tunnelFromEnv() tunnel {
	t := tunnel{
		Enabled:   *ngrokEnabled,
		AuthToken: *ngrokAuth,
		Domain:    *ngrokDomain,
	}
	if !t.Enabled {
		switch os.Getenv("NGROK_ENABLED") {
		case "1", "true":
			t.Enabled = true
		}
	}
	if t.AuthToken == "" {
		t.AuthToken = envOr("NGROK_AUTHTOKEN", os.Getenv("NGROK_AUTH_TOKEN"))
	}
	if t.Domain == "" {
		t.Domain = os.Getenv("NGROK_DOMAIN")
	}
	return t
}

func (t tunnel) endpoint() ngrokConfig.Tunnel {
	if t.Domain != "" {
		return ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(t.Domain))
	}
	return ngrokConfig.HTTPEndpoint()
}

// Serve publishes handler until ctx is done.
func (t tunnel) Serve(ctx context.Context, handler http.Handler) error {
	if t.AuthToken == "" {
		return errNoAuthToken
	}

	ln, err := ngrok.Listen(ctx, t.endpoint(), ngrok.WithAuthtoken(t.AuthToken))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	publicURL := ln.URL()
	log.Printf("ngrok tunnel: %s", publicURL)
	logEndpoints(publicURL, "wss://"+strings.TrimPrefix(publicURL, "https://"))

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	log.Println("ngrok tunnel closed")
	return nil
}
