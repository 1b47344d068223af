// Brønnøysund Registry Search MCP Server - finds newly registered Norwegian
// companies, filters them by capital and industry, and resolves each
// company's general manager (daglig leder).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/brreg"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/config"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/httpapi"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/search"
	"github.com/olgasafonova/brreg-search-mcp-server/tools"
	"github.com/olgasafonova/brreg-search-mcp-server/tracing"
)

const (
	ServerName    = "brreg-search-mcp-server"
	ServerVersion = "1.0.0"
)

const instructionsIntro = `Brønnøysund Registry Search finds newly registered Norwegian companies.`

const instructionsUsage = `Industry patterns: "47" matches 47 and 47.x; a pattern containing a dot ("70.10") is a plain prefix.
Exclusions apply before inclusions, and results are ordered by the first include pattern they match.`

// serverInstructions lists the registered tools grouped by category.
func serverInstructions() string {
	var b strings.Builder
	b.WriteString(instructionsIntro)
	b.WriteString("\n\nAvailable tools:\n")
	for _, category := range tools.Categories {
		for _, spec := range tools.ToolsByCategory(category) {
			fmt.Fprintf(&b, "- %s (%s): %s\n", spec.Name, category, spec.Title)
		}
	}
	b.WriteString("\n")
	b.WriteString(instructionsUsage)
	return b.String()
}

func main() {
	httpAddr := flag.String("http", "", "Serve MCP and the JSON API over HTTP on this address (default: stdio)")
	rateLimit := flag.Int("rate-limit", 60, "Requests per minute per IP in HTTP mode (0 disables)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(ServerName, ServerVersion)
		return
	}

	if err := run(*httpAddr, SecurityConfig{
		RateLimit:   *rateLimit,
		MaxBodySize: 1 << 20,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", ServerName, err)
		os.Exit(1)
	}
}

func run(httpAddr string, security SecurityConfig) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if httpAddr == "" && os.Getenv("HTTP_ADDR") != "" {
		httpAddr = cfg.HTTPAddr
	}

	// stdout carries the MCP protocol in stdio mode
	logger := cfg.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracingCfg, err := tracing.FromEnv(ServerVersion)
	if err != nil {
		return err
	}
	shutdownTracing, err := tracing.Setup(ctx, tracingCfg)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	ref := cfg.Reference()
	client := brreg.NewClient(ref, cfg.ClientOptions()...)
	defer client.Close()

	service := search.NewService(client, search.WithReference(ref), search.WithLogger(logger))
	server := newMCPServer(service, logger)

	if httpAddr == "" {
		logger.Info("Starting MCP server on stdio",
			"name", ServerName,
			"version", ServerVersion,
			"registry_url", ref.BaseURL,
		)
		return server.Run(ctx, &mcp.StdioTransport{})
	}

	return serveHTTP(ctx, httpAddr, server, service, logger, security)
}

// newMCPServer creates the MCP server with every tool registered.
func newMCPServer(service *search.Service, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: serverInstructions(),
	})
	tools.NewHandlerRegistry(service, logger).RegisterAll(server)
	return server
}

// newHTTPHandler mounts the streamable MCP endpoint at /mcp next to the JSON API.
func newHTTPHandler(server *mcp.Server, service *search.Service, logger *slog.Logger) http.Handler {
	router := httpapi.NewRouter(service, logger)
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
	router.Handle("/mcp", mcpHandler)
	return router
}

func serveHTTP(ctx context.Context, addr string, server *mcp.Server, service *search.Service, logger *slog.Logger, security SecurityConfig) error {
	front := NewSecurityMiddleware(newHTTPHandler(server, service, logger), logger, security)
	defer front.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           front,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server",
			"name", ServerName,
			"version", ServerVersion,
			"addr", addr,
			"rate_limit", security.RateLimit,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
