package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"example.com/feedapp/internal/realtime"
	"example.com/feedapp/internal/store"
	"example.com/feedapp/internal/token"
)

// TestServer_GracefulShutdown verifies that the HTTP server shuts down
// gracefully and that associated resources (mock store and broadcast
// hub) can be closed without errors.
func TestServer_GracefulShutdown(t *testing.T) {
	// Use mock store and a real hub to avoid external dependencies
	mockStore := store.NewMock()
	hub := realtime.New()

	s := &Server{
		store:  mockStore,
		tokens: token.New("test-secret", time.Hour),
		events: hub,
	}

	// Start an unstarted HTTP test server to control shutdown timing
	server := httptest.NewUnstartedServer(s.router(hub))
	server.Start()
	defer server.Close()

	// Create a context with a short timeout to simulate a shutdown signal
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})

	// Wait for the simulated shutdown signal
	// Gracefully close the server
	// Signal that shutdown is complete
	go func() {
		<-ctx.Done()
		server.Close()
		close(done)
	}()

	// Make a request before shutdown to ensure the server is running
	resp, err := http.Get(server.URL + "/feed/posts")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	// Wait for shutdown to complete or timeout
	select {
	case <-done:
		mockStore.Close()
		hub.Close()
	case <-time.After(200 * time.Millisecond):
		t.Fatal("server did not shutdown gracefully within the expected time")
	}
}
