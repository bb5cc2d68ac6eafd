package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/iho/ledgerbook/internal/infrastructure/config"
)

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{
		HTTPPort:         "9090",
		HTTPReadTimeout:  5 * time.Second,
		HTTPWriteTimeout: 7 * time.Second,
		HTTPIdleTimeout:  time.Minute,
	}
	h := http.NotFoundHandler()

	server := newHTTPServer(cfg, h)

	if server.Addr != ":9090" {
		t.Fatalf("expected addr :9090, got %s", server.Addr)
	}
	if server.ReadTimeout != 5*time.Second || server.WriteTimeout != 7*time.Second || server.IdleTimeout != time.Minute {
		t.Fatalf("unexpected timeouts: %v %v %v", server.ReadTimeout, server.WriteTimeout, server.IdleTimeout)
	}
	if server.Handler == nil {
		t.Fatal("expected handler to be set")
	}
}
