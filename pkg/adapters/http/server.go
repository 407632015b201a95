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
	"time"

	"github.com/aretw0/flowpaths"
	"github.com/aretw0/flowpaths/internal/presentation/graph"
	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/aretw0/flowpaths/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service is the extractor surface exposed over HTTP.
type Service interface {
	ports.Analyzer
	Export(ctx context.Context) (*domain.Extraction, error)
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Server routes HTTP requests to a Service.
type Server struct {
	Service  Service
	Store    ports.ResultStore
	Streams  *StreamManager
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables the /v1/extractions endpoints.
func WithStore(s ports.ResultStore) Option {
	return func(srv *Server) {
		srv.Store = s
	}
}

// WithGatherer serves /metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(srv *Server) {
		srv.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(srv *Server) {
		srv.logger = logger
	}
}

// New creates a Server. Call Pump to forward graph reloads to SSE clients.
func New(svc Service, opts ...Option) *Server {
	s := &Server{
		Service:  svc,
		Streams:  NewStreamManager(),
		gatherer: prometheus.DefaultGatherer,
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates a new HTTP handler for the service.
func NewHandler(svc Service, opts ...Option) http.Handler {
	return New(svc, opts...).Handler()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/events", s.SubscribeEvents)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/graph", s.GetGraph)
		r.Get("/paths", s.GetPaths)
		r.Post("/paths", s.PostPaths)
		r.Post("/extract", s.PostExtract)
		r.Get("/extractions", s.ListExtractions)
		r.Get("/extractions/{workflow}", s.GetExtraction)
	})

	return enableCORS(r)
}

// Pump forwards every graph reload of the service to the "reload" topic
// until ctx is done. It returns flowpaths.ErrNotWatchable when the
// service cannot watch its source.
func (s *Server) Pump(ctx context.Context) error {
	changes, err := s.Service.Watch(ctx)
	if err != nil {
		return err
	}
	for range changes {
		g := s.Service.Graph()
		msg, _ := json.Marshal(map[string]any{"graph": g.Name, "states": len(g.Order)})
		s.Streams.Broadcast(TopicReload, string(msg))
	}
	return nil
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

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"app":     "flowpaths-http",
		"version": strings.TrimSpace(flowpaths.Version),
		"graph":   s.Service.Graph().Name,
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetGraph handles GET /v1/graph. ?format=mermaid returns the diagram text.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	g := s.Service.Graph()
	switch r.URL.Query().Get("format") {
	case "", "json":
		s.writeJSON(w, http.StatusOK, g)
	case "mermaid":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, graph.GenerateMermaid(g, nil))
	default:
		http.Error(w, "unsupported format", http.StatusBadRequest)
	}
}

// GetPaths handles GET /v1/paths: every full path of the graph.
func (s *Server) GetPaths(w http.ResponseWriter, r *http.Request) {
	paths, err := s.Service.FullPaths(r.Context())
	if err != nil {
		s.fail(w, "full paths", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"paths": paths})
}

// PathsRequest is the body of POST /v1/paths.
// Target asks for one state; Targets runs several concurrently.
type PathsRequest struct {
	Target  string   `json:"target,omitempty"`
	Targets []string `json:"targets,omitempty"`
}

// TargetResult is one entry of a POST /v1/paths response.
type TargetResult struct {
	Target string           `json:"target"`
	Routes []domain.Route   `json:"routes,omitempty"`
	Paths  []domain.Element `json:"paths"`
	Error  string           `json:"error,omitempty"`
}

// PostPaths handles POST /v1/paths.
func (s *Server) PostPaths(w http.ResponseWriter, r *http.Request) {
	var body PathsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PostPaths: invalid request body", "err", err)
		return
	}

	if body.Target != "" {
		// Routes and paths come from the same graph even across a reload.
		reports, err := s.Service.AnalyzeTargets(r.Context(), []string{body.Target})
		if err == nil && len(reports) != 1 {
			err = fmt.Errorf("expected one report, got %d", len(reports))
		}
		if err == nil {
			err = reports[0].Err
		}
		if err != nil {
			s.fail(w, "paths to "+body.Target, err)
			return
		}
		rep := reports[0]
		s.writeJSON(w, http.StatusOK, TargetResult{Target: body.Target, Routes: rep.Routes, Paths: rep.Paths})
		return
	}

	reports, err := s.Service.AnalyzeTargets(r.Context(), body.Targets)
	if err != nil {
		s.fail(w, "analyze targets", err)
		return
	}
	out := make([]TargetResult, len(reports))
	for i, rep := range reports {
		out[i] = TargetResult{Target: rep.Target, Routes: rep.Routes, Paths: rep.Paths}
		if rep.Err != nil {
			out[i].Error = rep.Err.Error()
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"targets": out})
}

// PostExtract handles POST /v1/extract: extract, persist and publish.
func (s *Server) PostExtract(w http.ResponseWriter, r *http.Request) {
	ext, err := s.Service.Export(r.Context())
	if err != nil {
		s.fail(w, "export", err)
		return
	}
	if msg, err := json.Marshal(map[string]any{"workflow": ext.Workflow, "id": ext.ID}); err == nil {
		s.Streams.Broadcast(TopicExtraction, string(msg))
	}
	s.writeJSON(w, http.StatusOK, ext)
}

// ListExtractions handles GET /v1/extractions.
func (s *Server) ListExtractions(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "no result store configured", http.StatusNotImplemented)
		return
	}
	names, err := s.Store.List(r.Context())
	if err != nil {
		s.fail(w, "list extractions", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"workflows": names})
}

// GetExtraction handles GET /v1/extractions/{workflow}.
func (s *Server) GetExtraction(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "no result store configured", http.StatusNotImplemented)
		return
	}
	ext, err := s.Store.Load(r.Context(), chi.URLParam(r, "workflow"))
	if err != nil {
		s.fail(w, "load extraction", err)
		return
	}
	s.writeJSON(w, http.StatusOK, ext)
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrTargetNotFound), errors.Is(err, domain.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPathExplosion), errors.Is(err, domain.ErrUnsupportedKind):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "op", op, "err", err)
	} else {
		s.logger.Debug("request rejected", "op", op, "err", err)
	}
	http.Error(w, fmt.Sprintf("%s: %v", op, err), code)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// SubscribeEvents handles the GET /events request (SSE).
// ?topic=reload,extraction restricts the stream; all topics by default.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	topics := []string{TopicReload, TopicExtraction}
	if raw := r.URL.Query().Get("topic"); raw != "" {
		topics = nil
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}

	ch, cancel := s.Streams.Subscribe(topics...)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case <-keepAlive.C:
			fmt.Fprintf(w, ": keep-alive\n\n")
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Topic, ev.Data)
			flusher.Flush()
		}
	}
}
