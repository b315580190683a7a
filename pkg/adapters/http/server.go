// Package http exposes the briefing agent over a small JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/briefing"
	"github.com/aretw0/briefing/internal/logging"
	"github.com/aretw0/briefing/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds the size of a POST /briefings body.
const maxBodyBytes = 1 << 16

// Agent is the part of *briefing.Agent the server needs.
type Agent interface {
	Run(ctx context.Context, location, topic string, count int) (string, error)
	TaskStates() map[string]map[string]any
	Tree() briefing.NodeDescription
}

// BriefingRequest is the body of POST /briefings. Empty fields take the agent defaults.
type BriefingRequest struct {
	Location string `json:"location"`
	Topic    string `json:"topic"`
	Count    int    `json:"count"`
}

// BriefingResponse is returned for a successful run.
type BriefingResponse struct {
	Briefing string `json:"briefing"`
}

// ErrorResponse is returned for a failed run or a bad request.
type ErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
	Node  string `json:"node,omitempty"`
}

// RunEvent is pushed to /events subscribers after every POST /briefings.
type RunEvent struct {
	Location string    `json:"location"`
	Topic    string    `json:"topic"`
	Outcome  string    `json:"outcome"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

// Server serves the briefing API.
type Server struct {
	Agent   Agent
	Streams *StreamManager
	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// NewHandler creates a new HTTP handler for the agent.
func NewHandler(agent Agent, opts ...Option) http.Handler {
	server := &Server{
		Agent:   agent,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Post("/briefings", server.CreateBriefing)
	r.Get("/tasks", server.GetTasks)
	r.Get("/tree", server.GetTree)
	r.Get("/events", server.SubscribeEvents)
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.metrics != nil {
		r.Handle("/metrics", server.metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateBriefing handles the POST /briefings request.
func (s *Server) CreateBriefing(w http.ResponseWriter, r *http.Request) {
	var body BriefingRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		s.logger.Warn("CreateBriefing: invalid request body", "err", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if body.Count < 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "count must not be negative"})
		return
	}

	text, err := s.Agent.Run(r.Context(), body.Location, body.Topic, body.Count)
	event := RunEvent{Location: body.Location, Topic: body.Topic, Outcome: domain.OutcomeSuccess, At: time.Now().UTC()}
	defer func() {
		if b, err := json.Marshal(event); err == nil {
			s.Streams.Broadcast(body.Location, string(b))
		}
	}()

	if err != nil {
		event.Error = err.Error()
		var tef *domain.TreeEvaluationFailure
		if errors.As(err, &tef) {
			event.Outcome = string(tef.Stage)
			s.logger.Warn("briefing failed", "stage", tef.Stage, "node", tef.Node, "err", err)
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
				Error: err.Error(),
				Stage: string(tef.Stage),
				Node:  tef.Node,
			})
			return
		}
		event.Outcome = "error"
		s.logger.Error("briefing failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, BriefingResponse{Briefing: text})
}

// GetTasks handles the GET /tasks request.
func (s *Server) GetTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Agent.TaskStates())
}

// GetTree handles the GET /tree request.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Agent.Tree())
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "briefing-http",
		"version": briefing.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

// StreamManager fans run events out to SSE subscribers. Subscribers of the
// empty key receive every event.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // lower-cased location -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a channel for events of location ("" for all).
// The returned function unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(location string) (chan string, func()) {
	key := strings.ToLower(location)
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[key]; !ok {
		sm.subscribers[key] = make(map[chan<- string]struct{})
	}
	sm.subscribers[key][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[key]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, key)
			}
		}
	}
}

// Broadcast delivers msg to the subscribers of location and to the global ones.
func (sm *StreamManager) Broadcast(location string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	keys := []string{""}
	if k := strings.ToLower(location); k != "" {
		keys = append(keys, k)
	}
	for _, key := range keys {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				slog.Warn("SSE: client buffer full, dropping message", "location", key)
			}
		}
	}
}

// SubscribeEvents handles the GET /events request (SSE). The optional
// location query parameter filters events.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	location := r.URL.Query().Get("location")
	ch, cancel := s.Streams.Subscribe(location)
	defer cancel()
	s.logger.Info("SSE: subscribed", "location", location)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: briefing\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
