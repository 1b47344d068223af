package tools

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/base"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/brreg"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/registry"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/search"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRegistry wires a HandlerRegistry to an httptest upstream that knows
// one company and its roles.
func newTestRegistry(t *testing.T) *HandlerRegistry {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/enheter/923609016":
			_, _ = w.Write([]byte(`{"organisasjonsnummer":"923609016","navn":"EQUINOR ASA"}`))
		case "/enheter/923609016/roller":
			_, _ = w.Write([]byte(`{"rollegrupper":[{"type":{"kode":"DAGL"},"roller":[{"type":{"kode":"DAGL"},"person":{"navn":{"fornavn":"Anders","etternavn":"Opedal"}}}]}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)

	ref := registry.Defaults()
	ref.BaseURL = upstream.URL
	client := brreg.NewClient(ref, base.WithLogger(discardLogger()))
	t.Cleanup(client.Close)

	svc := search.NewService(client, search.WithReference(ref), search.WithLogger(discardLogger()))
	return NewHandlerRegistry(svc, discardLogger())
}

// connect registers all tools on a fresh server and returns a client session.
func connect(t *testing.T, h *HandlerRegistry) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "test-server", Version: "0.0.1"}, nil)
	h.RegisterAll(server)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestBuildTool(t *testing.T) {
	h := NewHandlerRegistry(nil, discardLogger())

	tests := []struct {
		name      string
		spec      ToolSpec
		wantRO    bool
		wantIdem  bool
		wantDestr bool
		wantOpen  bool
	}{
		{
			name: "read-only tool",
			spec: ToolSpec{
				Name:        "brreg_list_industry_codes",
				Title:       "List Industry Codes",
				Description: "List codes",
				Method:      "ListIndustryCodes",
				ReadOnly:    true,
				Idempotent:  true,
			},
			wantRO:   true,
			wantIdem: true,
		},
		{
			name: "open world destructive tool",
			spec: ToolSpec{
				Name:        "brreg_fake",
				Description: "Writes things",
				Method:      "Fake",
				Destructive: true,
				OpenWorld:   true,
			},
			wantDestr: true,
			wantOpen:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := h.buildTool(tt.spec)

			if tool.Name != tt.spec.Name || tool.Description != tt.spec.Description {
				t.Errorf("tool = %q/%q", tool.Name, tool.Description)
			}
			if tool.Annotations == nil {
				t.Fatal("Expected annotations")
			}
			if tool.Annotations.Title != tt.spec.Title {
				t.Errorf("Title = %q", tool.Annotations.Title)
			}
			if tool.Annotations.ReadOnlyHint != tt.wantRO {
				t.Errorf("ReadOnlyHint = %v, want %v", tool.Annotations.ReadOnlyHint, tt.wantRO)
			}
			if tool.Annotations.IdempotentHint != tt.wantIdem {
				t.Errorf("IdempotentHint = %v, want %v", tool.Annotations.IdempotentHint, tt.wantIdem)
			}
			gotDestr := tool.Annotations.DestructiveHint != nil && *tool.Annotations.DestructiveHint
			if gotDestr != tt.wantDestr {
				t.Errorf("DestructiveHint = %v, want %v", gotDestr, tt.wantDestr)
			}
			gotOpen := tool.Annotations.OpenWorldHint != nil && *tool.Annotations.OpenWorldHint
			if gotOpen != tt.wantOpen {
				t.Errorf("OpenWorldHint = %v, want %v", gotOpen, tt.wantOpen)
			}
		})
	}
}

func TestRecoverPanic(t *testing.T) {
	h := NewHandlerRegistry(nil, discardLogger())

	err := func() (err error) {
		defer h.recoverPanic("test_tool", &err)
		panic("test panic")
	}()

	if err == nil || !strings.Contains(err.Error(), "test_tool failed") {
		t.Errorf("err = %v, want tool failure", err)
	}
}

func TestLogExecution(t *testing.T) {
	h := NewHandlerRegistry(nil, discardLogger())
	spec := ToolSpec{Name: "test_tool", Category: "search"}

	h.logExecution(spec,
		search.SearchArgs{RegisteredFrom: "2024-01-01", IncludeIndustryCodes: []string{"47"}},
		search.SearchResult{SearchID: "abc", Companies: []search.CompanySummary{{Name: "Test AS"}}, TotalFiltered: 1})
	h.logExecution(spec, search.GetCompanyArgs{OrgNumber: "923609016"}, search.GetCompanyResult{})
	h.logExecution(spec, search.GetRolesArgs{OrgNumber: "923609016"}, search.GetRolesResult{DagligLeder: "Kari"})
	h.logExecution(spec, search.ListIndustryCodesArgs{Query: "47"}, search.ListIndustryCodesResult{Count: 1})
}

func TestAllToolsNotEmpty(t *testing.T) {
	if len(AllTools) == 0 {
		t.Fatal("AllTools should not be empty")
	}

	seen := map[string]bool{}
	for i, spec := range AllTools {
		if spec.Name == "" {
			t.Errorf("Tool %d has empty Name", i)
		}
		if seen[spec.Name] {
			t.Errorf("Tool %s is declared twice", spec.Name)
		}
		seen[spec.Name] = true
		if spec.Method == "" {
			t.Errorf("Tool %s has empty Method", spec.Name)
		}
		if spec.Description == "" {
			t.Errorf("Tool %s has empty Description", spec.Name)
		}
		if spec.Category == "" {
			t.Errorf("Tool %s has empty Category", spec.Name)
		}
		if !strings.HasPrefix(spec.Name, "brreg_") {
			t.Errorf("Tool %s should use the brreg_ prefix", spec.Name)
		}
	}
}

func TestToolsByCategory(t *testing.T) {
	covered := 0
	for _, category := range Categories {
		got := ToolsByCategory(category)
		covered += len(got)
		if len(got) == 0 {
			t.Errorf("Expected tools in category %s", category)
		}
		for _, tool := range got {
			if tool.Category != category {
				t.Errorf("Tool %s has category %s, expected %s", tool.Name, tool.Category, category)
			}
		}
	}

	if covered != len(AllTools) {
		t.Errorf("Categories cover %d of %d tools", covered, len(AllTools))
	}

	if got := ToolsByCategory("unknown"); len(got) != 0 {
		t.Errorf("Expected 0 tools for unknown category, got %d", len(got))
	}
}

func TestRegisterAll(t *testing.T) {
	session := connect(t, newTestRegistry(t))

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}
	if len(res.Tools) != len(AllTools) {
		t.Fatalf("registered %d tools, want %d", len(res.Tools), len(AllTools))
	}

	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, spec := range AllTools {
		if !names[spec.Name] {
			t.Errorf("tool %s not registered", spec.Name)
		}
	}
}

func TestCallTools(t *testing.T) {
	session := connect(t, newTestRegistry(t))
	ctx := context.Background()

	tests := []struct {
		name      string
		tool      string
		args      map[string]any
		wantError bool
		wantText  string
	}{
		{"industry codes", "brreg_list_industry_codes", map[string]any{"query": "47"}, false, "47"},
		{"company", "brreg_get_company", map[string]any{"org_number": "923 609 016"}, false, "EQUINOR ASA"},
		{"roles", "brreg_get_roles", map[string]any{"org_number": "923609016"}, false, "Anders Opedal"},
		{"invalid org number", "brreg_get_company", map[string]any{"org_number": "123"}, true, "brreg_get_company failed"},
		{"missing company", "brreg_get_company", map[string]any{"org_number": "000000000"}, true, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: tt.tool, Arguments: tt.args})
			if err != nil {
				t.Fatalf("CallTool() error = %v", err)
			}
			if res.IsError != tt.wantError {
				t.Errorf("IsError = %v, want %v", res.IsError, tt.wantError)
			}
			if text := contentText(res); !strings.Contains(text, tt.wantText) {
				t.Errorf("content %q does not contain %q", text, tt.wantText)
			}
		})
	}
}

func contentText(res *mcp.CallToolResult) string {
	var b strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}
