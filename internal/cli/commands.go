package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aretw0/flowpaths"
	"github.com/aretw0/flowpaths/internal/presentation/graph"
	"github.com/aretw0/flowpaths/internal/presentation/tui"
	"github.com/aretw0/flowpaths/internal/validator"
	httpAdapter "github.com/aretw0/flowpaths/pkg/adapters/http"
	"github.com/aretw0/flowpaths/pkg/adapters/mcp"
	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ExtractOptions configures RunExtract.
type ExtractOptions struct {
	Format string
	// Action restricts the printed result to one action. The full
	// extraction is still saved.
	Action string
}

// RunExtract extracts every action, persists the result and prints it.
func RunExtract(ctx context.Context, rt *Runtime, opts ExtractOptions, w io.Writer) error {
	ext, err := rt.Extractor.Export(ctx)
	if err != nil {
		return err
	}

	if opts.Action != "" {
		paths, ok := ext.Actions[opts.Action]
		if !ok {
			return fmt.Errorf("%w: action %q", domain.ErrTargetNotFound, opts.Action)
		}
		only := domain.NewExtraction(ext.Workflow)
		only.ID, only.CreatedAt = ext.ID, ext.CreatedAt
		only.Actions[opts.Action] = paths
		ext = only
	}

	return write(w, opts.Format, ext, func() string { return tui.ExtractionMarkdown(ext) })
}

type targetResult struct {
	Target string           `json:"target" yaml:"target"`
	Routes []domain.Route   `json:"routes,omitempty" yaml:"routes,omitempty"`
	Paths  []domain.Element `json:"paths" yaml:"paths"`
	Error  string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunPaths prints the paths leading to each target. Without targets it
// prints the full paths of the graph.
func RunPaths(ctx context.Context, rt *Runtime, targets []string, format string, w io.Writer) error {
	x := rt.Extractor
	if len(targets) == 0 {
		paths, err := x.FullPaths(ctx)
		if err != nil {
			return err
		}
		report := []domain.TargetReport{{Target: x.Name(), Paths: paths}}
		return write(w, format, map[string]any{"paths": paths}, func() string { return tui.PathsMarkdown(report) })
	}

	reports, err := x.AnalyzeTargets(ctx, targets)
	if err != nil {
		return err
	}

	out := make([]targetResult, len(reports))
	var failed []error
	for i, r := range reports {
		out[i] = targetResult{Target: r.Target, Routes: r.Routes, Paths: r.Paths}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
			failed = append(failed, r.Err)
		}
	}
	if err := write(w, format, out, func() string { return tui.PathsMarkdown(reports) }); err != nil {
		return err
	}
	if len(failed) == len(reports) {
		return errors.Join(failed...)
	}
	return nil
}

// RunGraph prints the Mermaid diagram of the graph, highlighting the
// first route to target when one is given.
func RunGraph(rt *Runtime, target string, w io.Writer) error {
	g := rt.Extractor.Graph()

	var overlay *graph.Overlay
	if target != "" {
		routes, err := rt.Extractor.Locate(target)
		if err != nil {
			return err
		}
		id, _ := g.Resolve(target)
		overlay = &graph.Overlay{Target: id}
		if len(routes) > 0 {
			overlay.Route = routes[0].States()
		}
	}

	_, err := io.WriteString(w, graph.GenerateMermaid(g, overlay))
	return err
}

// RunValidate prints the validation report and fails when it holds errors.
func RunValidate(rt *Runtime, format string, w io.Writer) error {
	g := rt.Extractor.Graph()
	report := validator.Validate(g)
	if err := write(w, format, report, func() string { return tui.ValidationMarkdown(g.Name, report) }); err != nil {
		return err
	}
	return report.Err()
}

// ServeOptions configures RunServe.
type ServeOptions struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// RunServe exposes the runtime over HTTP until ctx is done.
func RunServe(ctx context.Context, rt *Runtime, opts ServeOptions, w io.Writer) error {
	rt.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	api := httpAdapter.New(rt.Extractor,
		httpAdapter.WithStore(rt.Store),
		httpAdapter.WithGatherer(rt.Registry),
		httpAdapter.WithLogger(rt.Logger),
	)

	go func() {
		if err := api.Pump(ctx); err != nil && !errors.Is(err, flowpaths.ErrNotWatchable) {
			rt.Logger.Error("watch stopped", "err", err)
		}
	}()

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(w, "Serving '%s' on %s", rt.Extractor.Name(), srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		timeout := opts.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			rt.Logger.Warn("graceful shutdown did not complete", "timeout", timeout, "err", err)
			return srv.Close()
		}
		printSystemMessage(w, "Server stopped gracefully")
		return nil
	}
}

// RunMCP serves the MCP tools over stdio or SSE.
func RunMCP(ctx context.Context, rt *Runtime, transport string, port int) error {
	srv := mcp.NewServer(rt.Extractor, mcp.WithLogger(rt.Logger))
	switch transport {
	case "", "stdio":
		rt.Logger.Info("Starting flowpaths MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		rt.Logger.Info("Starting flowpaths MCP Server (SSE)", "port", port)
		return srv.ServeSSE(ctx, port)
	}
	return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
}
