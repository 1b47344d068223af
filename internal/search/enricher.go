package search

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/brreg"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/registry"
	"github.com/olgasafonova/brreg-search-mcp-server/metrics"
	"github.com/olgasafonova/brreg-search-mcp-server/tracing"
)

// ResolveManager returns the manager named by the first role, in group then
// role order, whose type code is a manager role code. The name comes from the
// structured person name, then the person's flat name fields, then the name as
// a plain string, then the name of an organization holding the role. Nil means
// no manager role was found or it carried no usable name.
func ResolveManager(roles *brreg.RolesResponse, ref registry.Reference) *ManagerRef {
	if roles == nil {
		return nil
	}
	for _, group := range roles.RoleGroups {
		for _, role := range group.Roles {
			if !ref.IsManagerRole(string(role.Type.Code)) {
				continue
			}
			if name := personName(role.Person); name != "" {
				return &ManagerRef{Name: name}
			}
			if role.Entity != nil {
				if name := strings.TrimSpace(role.Entity.Name.String()); name != "" {
					return &ManagerRef{Name: name}
				}
			}
			return nil
		}
	}
	return nil
}

func personName(p *brreg.Person) string {
	if p == nil {
		return ""
	}
	if p.Name.Kind == brreg.NameStructured {
		if name := p.Name.FullName(); name != "" {
			return name
		}
	}
	if name := p.FlatName(); name != "" {
		return name
	}
	if p.Name.Kind == brreg.NamePlain {
		return strings.TrimSpace(p.Name.Plain)
	}
	return ""
}

// Enricher resolves the manager of each company on a result page.
type Enricher struct {
	roles  RoleFetcher
	ref    registry.Reference
	logger *slog.Logger
}

// NewEnricher creates an Enricher.
func NewEnricher(roles RoleFetcher, ref registry.Reference, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{roles: roles, ref: ref, logger: logger}
}

// enrichmentResult is the outcome of one role lookup. Each task owns one slot.
type enrichmentResult struct {
	manager *ManagerRef
	err     error
}

// Enrich looks up roles for every record concurrently, at most len(records)
// at a time, and waits for all lookups. A failed lookup leaves that record's
// manager nil; Enrich itself never fails and preserves record order.
func (e *Enricher) Enrich(ctx context.Context, records []brreg.Company) []EnrichedRecord {
	out := make([]EnrichedRecord, len(records))
	if len(records) == 0 {
		return out
	}

	ctx, span := tracing.Start(ctx, "search.enrich")
	defer span.End()

	results := make([]enrichmentResult, len(records))
	var g errgroup.Group
	g.SetLimit(len(records))
	for i := range records {
		g.Go(func() error {
			roles, err := e.roles.GetRoles(ctx, records[i].OrganizationNumber)
			if err != nil {
				results[i] = enrichmentResult{err: err}
				return nil
			}
			results[i] = enrichmentResult{manager: ResolveManager(roles, e.ref)}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, res := range results {
		out[i] = EnrichedRecord{Company: records[i], DagligLeder: res.manager}
		switch {
		case res.err != nil:
			failed++
			metrics.RecordEnrichment(metrics.EnrichFailed)
			e.logger.Warn("Manager lookup failed",
				"org_number", records[i].OrganizationNumber,
				"error", res.err)
		case res.manager == nil:
			metrics.RecordEnrichment(metrics.EnrichAbsent)
		default:
			metrics.RecordEnrichment(metrics.EnrichResolved)
		}
	}

	span.SetAttributes(
		attribute.Int("search.enrich.records", len(records)),
		attribute.Int("search.enrich.failed", failed),
	)
	return out
}
