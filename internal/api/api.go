// Package api is the node's inbound HTTP surface: the peer wire
// protocol of spec.md §6.1, plus a request-correlation id, a /health
// endpoint and a /ws/events live stream supplementing it per
// SPEC_FULL.md §6.1.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/noobcash/noobcash-go/internal/node"
	"github.com/noobcash/noobcash-go/pkg/logging"
	"github.com/noobcash/noobcash-go/pkg/result"
)

// Server serves the peer HTTP surface for a single node.
type Server struct {
	node *node.Node
	log  *logging.Logger
	hub  *EventHub

	server   *http.Server
	listener net.Listener
}

// NewServer builds a Server bound to n. Call Start to begin listening.
func NewServer(n *node.Node) *Server {
	s := &Server{
		node: n,
		log:  logging.GetDefault().Component("api"),
		hub:  NewEventHub(),
	}
	n.SetEventSink(s.hub)
	return s
}

// Start begins serving on addr (host:port) in a background goroutine.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("POST /nodes/register", s.handleRegister)
	mux.HandleFunc("POST /nodes/enroll", s.handleEnroll)
	mux.HandleFunc("POST /transactions/create", s.handleCreateTransaction)
	mux.HandleFunc("POST /transactions/broadcast", s.handleBroadcastTransaction)
	mux.HandleFunc("GET /transactions/", s.handleViewTransactions)
	mux.HandleFunc("POST /blocks/broadcast", s.handleBroadcastBlock)
	mux.HandleFunc("GET /blockchain/", s.handleBlockchain)
	mux.HandleFunc("GET /wallet/balance", s.handleBalance)
	mux.HandleFunc("GET /metrics/", s.handleMetrics)
	mux.HandleFunc("GET /metrics/total", s.handleMetricsTotal)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws/events", s.hub.ServeWS)

	s.server = &http.Server{
		Handler:      s.withMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("api server error", "error", err)
		}
	}()

	s.log.Info("api server started", "addr", addr)
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Addr returns the address the server is actually bound to, useful
// when addr was passed as "host:0" for an ephemeral port in tests.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

type correlationIDKey struct{}

// withMiddleware attaches a request-correlation id, logs each request's
// method, path and duration, and recovers a panicking handler into the
// 500 response spec.md §7 requires, so one bad request never takes the
// process down.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := context.WithValue(r.Context(), correlationIDKey{}, id)
		w.Header().Set("X-Request-Id", id)

		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("panic recovered", "id", id, "method", r.Method, "path", r.URL.Path, "panic", rec)
				writeInternalError(w, fmt.Errorf("%v", rec))
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.log.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// writeResult maps a result.Result onto the HTTP response per spec.md
// §6.1/§7: 200 {"success":true} (or the payload) on success, 4xx
// {"message":...} on failure.
func writeResult(w http.ResponseWriter, r result.Result) {
	w.Header().Set("Content-Type", "application/json")
	if r.OK() {
		w.WriteHeader(http.StatusOK)
		if r.Payload != nil {
			json.NewEncoder(w).Encode(r.Payload)
			return
		}
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
		return
	}

	w.WriteHeader(r.Kind.HTTPStatus())
	json.NewEncoder(w).Encode(map[string]string{"message": r.Message})
}

func writeInternalError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
