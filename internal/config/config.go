// Package config loads server settings from the environment and builds the logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/base"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/registry"
)

// Log output formats
const (
	LogFormatText   = "text"
	LogFormatJSON   = "json"
	LogFormatPretty = "pretty"
)

// Config holds server settings
type Config struct {
	// BaseURL is the registry API root
	BaseURL string

	// Timeout bounds each upstream request
	Timeout time.Duration

	// UserAgent identifies the client to the registry
	UserAgent string

	// MaxUpstreamPages caps how many listing pages one search walks
	MaxUpstreamPages int

	// HTTPAddr is the listen address in HTTP mode
	HTTPAddr string

	LogLevel  slog.Level
	LogFormat string
}

// LoadDotEnv loads variables from .env files into the process environment.
// A missing file is not an error.
func LoadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		BaseURL:          strings.TrimRight(getEnvOrDefault("BRREG_BASE_URL", registry.DefaultBaseURL), "/"),
		Timeout:          base.DefaultTimeout,
		UserAgent:        getEnvOrDefault("BRREG_USER_AGENT", base.DefaultUserAgent),
		MaxUpstreamPages: registry.MaxUpstreamPages,
		HTTPAddr:         getEnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         slog.LevelInfo,
		LogFormat:        LogFormatText,
	}

	if t := os.Getenv("BRREG_TIMEOUT"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("BRREG_TIMEOUT: invalid duration %q", t)
		}
		cfg.Timeout = d
	}

	if p := os.Getenv("BRREG_MAX_PAGES"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > registry.MaxUpstreamPages {
			return nil, fmt.Errorf("BRREG_MAX_PAGES: must be an integer between 1 and %d, got %q", registry.MaxUpstreamPages, p)
		}
		cfg.MaxUpstreamPages = n
	}

	if l := os.Getenv("LOG_LEVEL"); l != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(l)); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	if f := os.Getenv("LOG_FORMAT"); f != "" {
		format, err := ParseLogFormat(f)
		if err != nil {
			return nil, err
		}
		cfg.LogFormat = format
	}

	return cfg, nil
}

// Reference returns registry reference data with the configured overrides applied.
func (c *Config) Reference() registry.Reference {
	ref := registry.Defaults()
	ref.BaseURL = c.BaseURL
	if c.MaxUpstreamPages > 0 {
		ref.MaxUpstreamPages = c.MaxUpstreamPages
	}
	return ref
}

// ClientOptions returns the HTTP client options for the configured upstream.
func (c *Config) ClientOptions() []base.ClientOption {
	return []base.ClientOption{
		base.WithTimeout(c.Timeout),
		base.WithUserAgent(c.UserAgent),
	}
}

// ParseLogFormat validates a log format name
func ParseLogFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case LogFormatText, LogFormatJSON, LogFormatPretty:
		return f, nil
	default:
		return "", fmt.Errorf("LOG_FORMAT: unsupported format %q (use text, json or pretty)", s)
	}
}

// NewLogger builds a logger writing to w. Stdout carries the MCP protocol in
// stdio mode, so callers pass os.Stderr.
func NewLogger(w io.Writer, level slog.Leveler, format string) *slog.Logger {
	switch format {
	case LogFormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	case LogFormatPretty:
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	}
}

// Logger builds the logger described by c
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return NewLogger(w, c.LogLevel, c.LogFormat)
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}
