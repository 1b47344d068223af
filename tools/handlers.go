package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/export"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/search"
	"github.com/olgasafonova/brreg-search-mcp-server/metrics"
	"github.com/olgasafonova/brreg-search-mcp-server/tracing"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	service  *search.Service
	exporter *export.Exporter
	logger   *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(service *search.Service, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		service:  service,
		exporter: export.NewExporter(service),
		logger:   logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	for _, spec := range AllTools {
		h.registerByName(server, spec)
	}
	h.logger.Info("Registered all tools", "count", len(AllTools))
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) {
	tool := h.buildTool(spec)

	switch spec.Method {
	case "Search":
		register(h, server, tool, spec, h.service.SearchMCP)
	case "GetCompany":
		register(h, server, tool, spec, h.service.GetCompanyMCP)
	case "GetRoles":
		register(h, server, tool, spec, h.service.GetRolesMCP)
	case "Export":
		register(h, server, tool, spec, h.exporter.ExportMCP)
	case "ListIndustryCodes":
		register(h, server, tool, spec, h.service.ListIndustryCodesMCP)
	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
	}
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the service method with panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (_ *mcp.CallToolResult, result Result, err error) {
		defer h.recoverPanic(spec.Name, &err)

		ctx, span := tracing.Start(ctx, "mcp.tool."+spec.Name, tracing.Tool(spec.Name, spec.Category, spec.ReadOnly)...)
		defer span.End()

		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		result, err = method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			tracing.Fail(span, err)
			metrics.RecordRequest(spec.Name, duration, false)
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, args, result)
		return nil, result, nil
	})
}

// recoverPanic recovers from panics in tool handlers and reports them as
// a tool error.
func (h *HandlerRegistry) recoverPanic(toolName string, errp *error) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
		if errp != nil {
			*errp = fmt.Errorf("%s failed: internal error", toolName)
		}
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "category", spec.Category}

	switch a := args.(type) {
	case search.SearchArgs:
		attrs = append(attrs, "registered_from", a.RegisteredFrom, "registered_to", a.RegisteredTo,
			"include_codes", len(a.IncludeIndustryCodes), "page", a.Page)
	case search.GetCompanyArgs:
		attrs = append(attrs, "org_number", a.OrgNumber)
	case search.GetRolesArgs:
		attrs = append(attrs, "org_number", a.OrgNumber)
	case export.ExportArgs:
		attrs = append(attrs, "format", a.Format)
	case search.ListIndustryCodesArgs:
		attrs = append(attrs, "query", a.Query)
	}

	switch r := result.(type) {
	case search.SearchResult:
		attrs = append(attrs, "search_id", r.SearchID, "results_count", len(r.Companies), "total_filtered", r.TotalFiltered)
	case search.GetRolesResult:
		attrs = append(attrs, "role_groups", len(r.RoleGroups), "has_manager", r.DagligLeder != "")
	case export.Result:
		attrs = append(attrs, "filename", r.Filename, "records", r.Count)
	case search.ListIndustryCodesResult:
		attrs = append(attrs, "codes", r.Count)
	}

	h.logger.Info("Tool executed", attrs...)
}
