package search

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/brreg"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/registry"
	"github.com/olgasafonova/brreg-search-mcp-server/metrics"
	"github.com/olgasafonova/brreg-search-mcp-server/tracing"
)

// UpstreamQuery is the subset of a FilterSpec the listing endpoint supports.
// IndustryCodes is sent as an exact-match hint; pattern semantics are applied locally.
type UpstreamQuery struct {
	RegisteredFrom string
	RegisteredTo   string
	LegalForms     []string
	Name           string
	IndustryCodes  []string
}

// Aggregate is the unfiltered candidate set collected from the listing.
// Links are the navigation links of the last page fetched.
type Aggregate struct {
	Companies []brreg.Company
	Links     *brreg.Links
	Pages     int
	Capped    bool
}

// Aggregator walks the upstream listing page by page.
type Aggregator struct {
	lister   Lister
	pageSize int
	maxPages int
	logger   *slog.Logger
}

// NewAggregator creates an Aggregator using the paging limits in ref.
func NewAggregator(lister Lister, ref registry.Reference, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Aggregator{
		lister:   lister,
		pageSize: ref.UpstreamPageSize,
		maxPages: ref.MaxUpstreamPages,
		logger:   logger,
	}
	if a.pageSize <= 0 {
		a.pageSize = registry.UpstreamPageSize
	}
	// the cap may be lowered but never raised
	if a.maxPages <= 0 || a.maxPages > registry.MaxUpstreamPages {
		a.maxPages = registry.MaxUpstreamPages
	}
	return a
}

// Collect fetches successive listing pages until an empty page, a short page,
// the upstream's last page, or the page cap. Pages are fetched strictly in
// sequence and concatenated in upstream order. Any failure aborts the walk and
// nothing collected so far is returned.
func (a *Aggregator) Collect(ctx context.Context, q UpstreamQuery) (*Aggregate, error) {
	ctx, span := tracing.Start(ctx, "search.aggregate")
	defer span.End()

	agg := &Aggregate{}
	done := false

	for page := 0; page < a.maxPages; page++ {
		resp, err := a.lister.ListUnits(ctx, brreg.ListQuery{
			RegisteredFrom: q.RegisteredFrom,
			RegisteredTo:   q.RegisteredTo,
			LegalForms:     q.LegalForms,
			Name:           q.Name,
			IndustryCodes:  q.IndustryCodes,
			Page:           page,
			Size:           a.pageSize,
			Sort:           registry.UpstreamSort,
		})
		if err != nil {
			tracing.Fail(span, err)
			a.logger.Warn("Aggregation aborted",
				"page", page,
				"error", err)
			return nil, fmt.Errorf("listing page %d: %w", page, err)
		}
		agg.Pages++

		if resp.Links != nil {
			agg.Links = resp.Links
		}

		batch := resp.Embedded.Companies
		if len(batch) == 0 {
			done = true
			break
		}
		agg.Companies = append(agg.Companies, batch...)

		if len(batch) < a.pageSize {
			done = true
			break
		}
		if resp.Page.TotalPages > 0 && page+1 >= resp.Page.TotalPages {
			done = true
			break
		}
	}
	agg.Capped = !done

	span.SetAttributes(
		attribute.Int("search.aggregate.pages", agg.Pages),
		attribute.Int("search.aggregate.records", len(agg.Companies)),
		attribute.Bool("search.aggregate.capped", agg.Capped),
	)
	metrics.RecordAggregation(agg.Pages, agg.Capped)

	if agg.Capped {
		a.logger.Warn("Aggregation stopped at page cap",
			"pages", agg.Pages,
			"records", len(agg.Companies))
	} else {
		a.logger.Debug("Aggregation complete",
			"pages", agg.Pages,
			"records", len(agg.Companies))
	}

	return agg, nil
}
