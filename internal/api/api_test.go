package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/noobcash/noobcash-go/internal/node"
)

func TestWithMiddlewareRecoversPanickingHandler(t *testing.T) {
	n, err := node.NewBootstrap(node.Config{IP: "127.0.0.1", Port: 0, Capacity: 10, Difficulty: 1, NNodes: 1})
	if err != nil {
		t.Fatalf("NewBootstrap: %v", err)
	}
	s := NewServer(n)

	panicky := http.NewServeMux()
	panicky.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	handler := s.withMiddleware(panicky)

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()

	// A panicking handler must never crash the test process; the
	// middleware's recover() must turn it into a 500 JSON response.
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body["message"] == "" {
		t.Fatal("expected a non-empty message field in the recovered 500 response")
	}
}

func TestWithMiddlewareSetsRequestIDHeader(t *testing.T) {
	n, err := node.NewBootstrap(node.Config{IP: "127.0.0.1", Port: 0, Capacity: 10, Difficulty: 1, NNodes: 1})
	if err != nil {
		t.Fatalf("NewBootstrap: %v", err)
	}
	s := NewServer(n)

	ok := http.NewServeMux()
	ok.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.withMiddleware(ok).ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected X-Request-Id header to be set")
	}
}
