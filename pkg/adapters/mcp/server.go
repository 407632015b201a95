package mcp

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
	"github.com/aretw0/flowpaths/internal/validator"
	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/aretw0/flowpaths/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const graphURI = "flowpaths://graph"

// PathsResponse is the payload of the paths_to tool.
type PathsResponse struct {
	Target string           `json:"target"`
	Routes []domain.Route   `json:"routes"`
	Paths  []domain.Element `json:"paths"`
}

// Server wraps the extractor and exposes it as an MCP Server.
type Server struct {
	engine    ports.Analyzer
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Analyzer, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("flowpaths-mcp", strings.TrimSpace(flowpaths.Version)),
		logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("extract_paths",
		mcp.WithDescription("Extract the inbound and outbound paths of every action in the workflow."),
		mcp.WithString("action", mcp.Description("Only return this action (optional)")),
	), s.handleExtract)

	s.mcpServer.AddTool(mcp.NewTool("paths_to",
		mcp.WithDescription("Locate a state and list every path from the workflow entries that ends at it."),
		mcp.WithString("target", mcp.Required(), mcp.Description("State ID or action name")),
	), s.handlePathsTo)

	s.mcpServer.AddTool(mcp.NewTool("graph_mermaid",
		mcp.WithDescription("Render the workflow graph as a Mermaid flowchart, optionally highlighting the route to a target."),
		mcp.WithString("target", mcp.Description("State to highlight (optional)")),
	), s.handleMermaid)

	s.mcpServer.AddTool(mcp.NewTool("validate",
		mcp.WithDescription("Check the workflow graph for dangling references, unknown kinds and unreachable states."),
	), s.handleValidate)
}

func (s *Server) handleExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ext, err := s.engine.Extract(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("extract failed: %v", err)), nil
	}

	var payload any = ext
	if action := request.GetString("action", ""); action != "" {
		paths, ok := ext.Actions[action]
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("action %q not found (known: %s)", action, strings.Join(ext.ActionNames(), ", "))), nil
		}
		payload = map[string]any{"action": action, "paths": paths}
	}
	return jsonResult(payload)
}

func (s *Server) handlePathsTo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := request.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	routes, err := s.engine.Locate(target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paths, err := s.engine.PathsTo(ctx, target)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("paths to %s failed: %v", target, err)), nil
	}
	return jsonResult(PathsResponse{Target: target, Routes: routes, Paths: paths})
}

func (s *Server) handleMermaid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g := s.engine.Graph()

	var overlay *graph.Overlay
	if target := request.GetString("target", ""); target != "" {
		id, ok := g.Resolve(target)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("%v: %s", domain.ErrTargetNotFound, target)), nil
		}
		overlay = &graph.Overlay{Target: id}
		if routes, err := s.engine.Locate(id); err == nil && len(routes) > 0 {
			overlay.Route = routes[0].States()
		}
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(g, overlay)), nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(validator.Validate(s.engine.Graph()))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Current Graph Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.engine.Graph())
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
