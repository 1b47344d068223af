// Package tracing wires OpenTelemetry spans through the search pipeline:
// tool calls, searches, upstream registry requests and manager enrichment.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	TracerName  = "github.com/olgasafonova/brreg-search-mcp-server"
	ServiceName = "brreg-search-mcp-server"
)

// Attribute keys recorded on pipeline spans.
const (
	KeyTool         = attribute.Key("mcp.tool.name")
	KeyToolCategory = attribute.Key("mcp.tool.category")
	KeyToolReadOnly = attribute.Key("mcp.tool.readonly")
	KeyAction       = attribute.Key("brreg.action")
	KeyOrgNumber    = attribute.Key("brreg.org_number")
	KeySearchID     = attribute.Key("search.id")
	KeyCandidates   = attribute.Key("search.candidates")
	KeyFiltered     = attribute.Key("search.filtered")
	KeyReturned     = attribute.Key("search.returned")
)

// Exporter selects where finished spans go.
type Exporter string

const (
	ExporterNone   Exporter = "none"
	ExporterOTLP   Exporter = "otlp"
	ExporterStdout Exporter = "stdout"
)

// Config holds tracing configuration.
type Config struct {
	ServiceVersion string
	Environment    string
	Exporter       Exporter
	Endpoint       string  // OTLP HTTP host:port
	SampleRatio    float64 // fraction of root spans kept, 0..1

	// Writer receives stdout-exporter output. Defaults to stderr, since
	// stdout carries the MCP protocol in stdio mode.
	Writer io.Writer
}

// FromEnv reads tracing settings from the standard OTEL_* variables.
// Tracing is off unless OTEL_TRACES_EXPORTER names an exporter or an
// OTLP endpoint is configured.
func FromEnv(version string) (Config, error) {
	cfg := Config{
		ServiceVersion: version,
		Environment:    os.Getenv("OTEL_ENVIRONMENT"),
		Exporter:       ExporterNone,
		Endpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		SampleRatio:    1,
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	switch e := Exporter(strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_TRACES_EXPORTER")))); e {
	case "":
		if cfg.Endpoint != "" {
			cfg.Exporter = ExporterOTLP
		} else if os.Getenv("OTEL_ENABLED") == "true" {
			cfg.Exporter = ExporterStdout
		}
	case "console":
		cfg.Exporter = ExporterStdout
	case ExporterNone, ExporterOTLP, ExporterStdout:
		cfg.Exporter = e
	default:
		return Config{}, fmt.Errorf("OTEL_TRACES_EXPORTER: unknown exporter %q", e)
	}

	if v := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil || ratio < 0 || ratio > 1 {
			return Config{}, fmt.Errorf("OTEL_TRACES_SAMPLER_ARG: want a ratio between 0 and 1, got %q", v)
		}
		cfg.SampleRatio = ratio
	}
	return cfg, nil
}

// Setup installs a global tracer provider for cfg and returns its shutdown
// function, which flushes pending spans. With ExporterNone nothing is
// installed and spans stay no-ops.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	exporter, err := newExporter(ctx, cfg)
	if err != nil || exporter == nil {
		return func(context.Context) error { return nil }, err
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("deployment.environment.name", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case ExporterNone, "":
		return nil, nil
	case ExporterOTLP:
		opts := []otlptracehttp.Option{otlptracehttp.WithInsecure()}
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
		}
		return otlptracehttp.New(ctx, opts...)
	case ExporterStdout:
		w := cfg.Writer
		if w == nil {
			w = os.Stderr
		}
		return stdouttrace.New(stdouttrace.WithWriter(w))
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}
}

// Start opens a span on the server's tracer.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// Fail marks span as failed with err. A nil err is ignored.
func Fail(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Tool describes an MCP tool call.
func Tool(name, category string, readOnly bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		KeyTool.String(name),
		KeyToolCategory.String(category),
		KeyToolReadOnly.Bool(readOnly),
	}
}

// Lookup describes a single-company registry lookup.
func Lookup(action, orgNumber string) []attribute.KeyValue {
	return []attribute.KeyValue{
		KeyAction.String(action),
		KeyOrgNumber.String(orgNumber),
	}
}

// SearchOutcome records how many records survived each pipeline stage.
func SearchOutcome(span trace.Span, candidates, filtered, returned int) {
	span.SetAttributes(
		KeyCandidates.Int(candidates),
		KeyFiltered.Int(filtered),
		KeyReturned.Int(returned),
	)
}
