// Package registry holds the reference data shared by the search pipeline:
// upstream endpoint and paging limits, the manager role codes, the industry
// code catalog, and organization number utilities.
package registry

import (
	"slices"
	"strings"
)

const (
	// DefaultBaseURL is the Brønnøysundregistrene Enhetsregisteret API endpoint
	DefaultBaseURL = "https://data.brreg.no/enhetsregisteret/api"

	// UpstreamPageSize is the page size requested from the listing endpoint.
	// It is also the largest page the upstream serves.
	UpstreamPageSize = 100

	// MaxUpstreamPages bounds aggregation to UpstreamPageSize*MaxUpstreamPages records
	MaxUpstreamPages = 100

	// DefaultMinCapital is the minimum share capital applied when none is given
	DefaultMinCapital = 50000

	// DefaultPageSize is the local page size applied when none is given
	DefaultPageSize = 100

	// UpstreamSort orders listing results newest registration first
	UpstreamSort = "registreringsdatoEnhetsregisteret,DESC"
)

// Role codes designating the acting general manager ("daglig leder").
const (
	RoleManager        = "DAGL"  // Daglig leder
	RoleManagerForeign = "DAGLØ" // Daglig leder (utenlands)
	RoleManagerAppoint = "DAGLS" // Daglig leder (styre)
)

// Reference bundles the lookup data injected into the aggregation and
// enrichment components.
type Reference struct {
	BaseURL          string
	UpstreamPageSize int
	MaxUpstreamPages int
	ManagerRoleCodes []string
	Industries       []IndustryCode
}

// Defaults returns the reference data for the public registry.
func Defaults() Reference {
	return Reference{
		BaseURL:          DefaultBaseURL,
		UpstreamPageSize: UpstreamPageSize,
		MaxUpstreamPages: MaxUpstreamPages,
		ManagerRoleCodes: []string{RoleManager, RoleManagerForeign, RoleManagerAppoint},
		Industries:       IndustryCatalog(),
	}
}

// IsManagerRole reports whether code, upper-cased, is one of the manager role codes.
func (r Reference) IsManagerRole(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return false
	}
	return slices.Contains(r.ManagerRoleCodes, code)
}
