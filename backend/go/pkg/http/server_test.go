package http

import (
	"Abridge_1.0/backend/go/internal/config"
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestNewServer_WithAddress(t *testing.T) {
	addr := ":9999"

	srv, err := NewServer(config.ServerConfig{Address: ":8000"}, http.NotFoundHandler(), WithAddress(addr))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if srv.Addr() != addr {
		t.Errorf("Expected server address to be %s, but got %s", addr, srv.Addr())
	}
	if srv.httpServer.ReadHeaderTimeout != 5*time.Second {
		t.Errorf("ReadHeaderTimeout = %s, want default 5s", srv.httpServer.ReadHeaderTimeout)
	}
}

func TestNewServer_RequiresHandler(t *testing.T) {
	if _, err := NewServer(config.ServerConfig{}, nil); err == nil {
		t.Error("expected error for nil handler")
	}
}

func TestServeAndShutdown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	srv, err := NewServer(config.ServerConfig{ShutdownTimeout: "2s"}, handler)
	if err != nil {
		t.Fatal(err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() returned %v after shutdown, want nil", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve() did not return after shutdown")
	}
}
