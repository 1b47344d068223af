package export

import (
	"bytes"
	"context"
	"time"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/search"
)

// Searcher runs a composed search
type Searcher interface {
	Search(ctx context.Context, spec search.FilterSpec) (*search.ResultPage, error)
}

// Exporter runs a search and encodes the returned page
type Exporter struct {
	searcher Searcher
	now      func() time.Time
}

// NewExporter creates an Exporter over s
func NewExporter(s Searcher) *Exporter {
	return &Exporter{searcher: s, now: time.Now}
}

// Result is an encoded export
type Result struct {
	Filename      string `json:"filename"`
	Format        string `json:"format"`
	ContentType   string `json:"content_type"`
	Count         int    `json:"count"`
	TotalFiltered int    `json:"total_filtered"`
	Content       string `json:"content"`
}

// Export searches with spec and encodes the resulting page in format
func (e *Exporter) Export(ctx context.Context, spec search.FilterSpec, format string) (Result, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return Result{}, err
	}

	page, err := e.searcher.Search(ctx, spec)
	if err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	if err := Write(&buf, format, page.Companies); err != nil {
		return Result{}, err
	}

	return Result{
		Filename:      Filename(format, e.now()),
		Format:        format,
		ContentType:   ContentType(format),
		Count:         len(page.Companies),
		TotalFiltered: page.TotalFiltered,
		Content:       buf.String(),
	}, nil
}

// ExportArgs contains parameters for exporting a search page
type ExportArgs struct {
	Filters search.SearchArgs `json:"filters" jsonschema_description:"Search filters, as for brreg_search_companies"`
	Format  string            `json:"format,omitempty" jsonschema_description:"Export format: csv (default) or json"`
}

// ExportMCP is the MCP wrapper for Export
func (e *Exporter) ExportMCP(ctx context.Context, args ExportArgs) (Result, error) {
	return e.Export(ctx, args.Filters.FilterSpec(), args.Format)
}
