// Package search implements the composed company search: it walks the
// upstream unit listing, filters and re-paginates the candidates locally,
// and resolves each returned company's general manager (daglig leder).
package search

import (
	"context"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/brreg"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/registry"
)

// Lister fetches one page of the upstream unit listing.
type Lister interface {
	ListUnits(ctx context.Context, q brreg.ListQuery) (*brreg.SearchResponse, error)
}

// RoleFetcher fetches the role payload for one organization.
type RoleFetcher interface {
	GetRoles(ctx context.Context, orgNumber string) (*brreg.RolesResponse, error)
}

// Registry is the upstream surface the service depends on.
type Registry interface {
	Lister
	RoleFetcher
	GetCompany(ctx context.Context, orgNumber string) (*brreg.Company, error)
}

// FilterSpec is a search request. A nil MinCapital means
// registry.DefaultMinCapital; a zero Size means registry.DefaultPageSize.
type FilterSpec struct {
	MinCapital           *float64 `json:"min_capital,omitempty" validate:"omitempty,gte=0"`
	RegisteredFrom       string   `json:"registered_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	RegisteredTo         string   `json:"registered_to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	LegalForms           []string `json:"legal_forms,omitempty" validate:"omitempty,dive,notblank"`
	Name                 string   `json:"name,omitempty"`
	IncludeIndustryCodes []string `json:"include_industry_codes,omitempty"`
	ExcludeIndustryCodes []string `json:"exclude_industry_codes,omitempty"`
	Page                 int      `json:"page" validate:"gte=0"`
	Size                 int      `json:"size" validate:"gte=0"`
}

// MinCapitalOrDefault returns the effective minimum capital.
func (s FilterSpec) MinCapitalOrDefault() float64 {
	if s.MinCapital == nil {
		return registry.DefaultMinCapital
	}
	return *s.MinCapital
}

// withDefaults fills in the default page size.
func (s FilterSpec) withDefaults() FilterSpec {
	if s.Size == 0 {
		s.Size = registry.DefaultPageSize
	}
	return s
}

// upstreamQuery is the part of the spec the listing endpoint filters on.
func (s FilterSpec) upstreamQuery() UpstreamQuery {
	return UpstreamQuery{
		RegisteredFrom: s.RegisteredFrom,
		RegisteredTo:   s.RegisteredTo,
		LegalForms:     s.LegalForms,
		Name:           s.Name,
		IndustryCodes:  s.IncludeIndustryCodes,
	}
}

// ManagerRef is the resolved display name of a company's acting manager.
type ManagerRef struct {
	Name string `json:"navn"`
}

// EnrichedRecord is a company annotated with its manager, absent when unresolved.
type EnrichedRecord struct {
	brreg.Company
	DagligLeder *ManagerRef `json:"dagligLeder,omitempty"`
}

// Pagination describes the local page returned to the caller.
type Pagination struct {
	Number        int `json:"number"`
	Size          int `json:"size"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
}

// ResultPage is the output of a search.
type ResultPage struct {
	SearchID      string           `json:"searchId,omitempty"`
	Companies     []EnrichedRecord `json:"companies"`
	Pagination    Pagination       `json:"pagination"`
	Links         *brreg.Links     `json:"links,omitempty"`
	TotalFiltered int              `json:"totalFiltered"`
	Stats         Stats            `json:"stats"`
}

// Stats summarizes the returned page. Companies without capital count as
// zero towards the average.
type Stats struct {
	TotalFiltered  int     `json:"totalFiltered"`
	AverageCapital float64 `json:"averageCapital"`
	WithCapital    int     `json:"withCapital"`
}

// PageStats computes Stats over records, the page actually returned.
func PageStats(records []EnrichedRecord, totalFiltered int) Stats {
	stats := Stats{TotalFiltered: totalFiltered}
	if len(records) == 0 {
		return stats
	}
	var total float64
	for _, r := range records {
		c := r.CapitalAmount()
		total += c
		if c > 0 {
			stats.WithCapital++
		}
	}
	stats.AverageCapital = total / float64(len(records))
	return stats
}

// RolesResult is a role payload together with its resolved manager.
type RolesResult struct {
	Roles       *brreg.RolesResponse `json:"roles"`
	DagligLeder *ManagerRef          `json:"dagligLeder,omitempty"`
}
