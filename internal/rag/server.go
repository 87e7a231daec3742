package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/facegate/facegate/internal/web/middleware"
)

// Server hosts the chat engine HTTP API.
type Server struct {
	engine     *Engine
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates the chat engine server.
func NewServer(engine *Engine, host string, port int) *Server {
	r := chi.NewRouter()

	s := &Server{
		engine: engine,
		router: r,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS())

	r.Get("/", s.health)
	r.Post("/event", s.indexEvent)
	r.Get("/chat", s.chatStream)
	r.Post("/chat", s.chatValidate)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // answers stream for a while
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info("starting chat engine server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down chat engine server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "chat engine is running",
	})
}

func (s *Server) indexEvent(w http.ResponseWriter, r *http.Request) {
	var event Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := s.engine.IndexEvent(r.Context(), event); err != nil {
		log.Error("could not index event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not index event"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// chatValidate checks the query before the client opens the SSE stream.
func (s *Server) chatValidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Query cannot be empty"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// chatStream streams the answer over SSE. Every stream ends with an end
// marker frame, errors included.
func (s *Server) chatStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeFrame(w, flusher, map[string]any{"error": "Query cannot be empty"})
		writeFrame(w, flusher, map[string]any{"end": true})
		return
	}

	err := s.engine.StreamAnswer(r.Context(), query, func(chunk string) error {
		writeFrame(w, flusher, map[string]any{"content": chunk})
		return r.Context().Err()
	})
	if err != nil && r.Context().Err() == nil {
		log.Error("chat streaming failed", "error", err)
		writeFrame(w, flusher, map[string]any{"error": err.Error()})
	}
	writeFrame(w, flusher, map[string]any{"end": true})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeFrame(w http.ResponseWriter, flusher http.Flusher, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}
