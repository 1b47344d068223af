package search

import (
	"github.com/olgasafonova/brreg-search-mcp-server/internal/brreg"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/registry"
)

// SearchArgs contains parameters for a filtered company search
type SearchArgs struct {
	MinCapital           *float64 `json:"min_capital,omitempty" jsonschema_description:"Minimum share capital in NOK (default 50000, 0 disables)"`
	RegisteredFrom       string   `json:"registered_from,omitempty" jsonschema_description:"Earliest registration date, YYYY-MM-DD (inclusive)"`
	RegisteredTo         string   `json:"registered_to,omitempty" jsonschema_description:"Latest registration date, YYYY-MM-DD (inclusive)"`
	LegalForms           []string `json:"legal_forms,omitempty" jsonschema_description:"Organization form codes to match (AS, ASA, ENK, ...); any of them"`
	Name                 string   `json:"name,omitempty" jsonschema_description:"Company name to search for"`
	IncludeIndustryCodes []string `json:"include_industry_codes,omitempty" jsonschema_description:"Industry code patterns to keep, in priority order (\"47\" matches 47.x, \"70.10\" is a prefix)"`
	ExcludeIndustryCodes []string `json:"exclude_industry_codes,omitempty" jsonschema_description:"Industry code patterns to drop; applied before include patterns"`
	Page                 int      `json:"page,omitempty" jsonschema_description:"Page number (0-indexed)"`
	Size                 int      `json:"size,omitempty" jsonschema_description:"Results per page (default 100)"`
}

// FilterSpec converts tool arguments into a search request
func (a SearchArgs) FilterSpec() FilterSpec {
	return FilterSpec{
		MinCapital:           a.MinCapital,
		RegisteredFrom:       a.RegisteredFrom,
		RegisteredTo:         a.RegisteredTo,
		LegalForms:           a.LegalForms,
		Name:                 a.Name,
		IncludeIndustryCodes: a.IncludeIndustryCodes,
		ExcludeIndustryCodes: a.ExcludeIndustryCodes,
		Page:                 a.Page,
		Size:                 a.Size,
	}
}

// SearchResult is the result of a filtered company search
type SearchResult struct {
	SearchID      string           `json:"search_id"`
	Companies     []CompanySummary `json:"companies"`
	Page          int              `json:"page"`
	Size          int              `json:"size"`
	TotalPages    int              `json:"total_pages"`
	TotalFiltered int              `json:"total_filtered"`

	// Over the returned page only
	AverageCapital float64 `json:"average_capital"`
	WithCapital    int     `json:"with_capital"`
}

// CompanySummary is a simplified company representation for search results
type CompanySummary struct {
	OrganizationNumber string  `json:"organization_number"`
	Name               string  `json:"name"`
	OrganizationForm   string  `json:"organization_form,omitempty"`
	Capital            float64 `json:"capital,omitempty"`
	RegistrationDate   string  `json:"registration_date,omitempty"`
	IndustryCode       string  `json:"industry_code,omitempty"`
	Industry           string  `json:"industry,omitempty"`
	BusinessAddress    string  `json:"business_address,omitempty"`
	EmployeeCount      int     `json:"employee_count,omitempty"`
	DagligLeder        string  `json:"daglig_leder,omitempty"`
}

// GetCompanyArgs contains parameters for getting a single company
type GetCompanyArgs struct {
	OrgNumber string `json:"org_number" jsonschema:"required" jsonschema_description:"9-digit Norwegian organization number"`
}

// GetCompanyResult is the result of getting a company
type GetCompanyResult struct {
	Company *brreg.Company `json:"company"`
}

// GetRolesArgs contains parameters for getting company roles
type GetRolesArgs struct {
	OrgNumber string `json:"org_number" jsonschema:"required" jsonschema_description:"9-digit Norwegian organization number"`
}

// GetRolesResult is the result of getting company roles
type GetRolesResult struct {
	DagligLeder string             `json:"daglig_leder,omitempty"`
	RoleGroups  []RoleGroupSummary `json:"role_groups"`
}

// RoleGroupSummary is a simplified role group for MCP responses
type RoleGroupSummary struct {
	Type         string        `json:"type"`
	Description  string        `json:"description"`
	LastModified string        `json:"last_modified,omitempty"`
	Roles        []RoleSummary `json:"roles"`
}

// RoleSummary is a simplified role for MCP responses
type RoleSummary struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Name        string `json:"name,omitempty"`          // Person or entity name
	BirthDate   string `json:"birth_date,omitempty"`    // For persons
	Resigned    bool   `json:"resigned,omitempty"`      // Whether resigned
	EntityOrgNr string `json:"entity_org_nr,omitempty"` // For corporate roles
}

// ListIndustryCodesArgs contains parameters for looking up industry codes
type ListIndustryCodesArgs struct {
	Query string `json:"query,omitempty" jsonschema_description:"Filter by code or name (empty lists all divisions)"`
}

// ListIndustryCodesResult is the result of listing industry codes
type ListIndustryCodesResult struct {
	Codes          []registry.IndustryCode `json:"codes"`
	Count          int                     `json:"count"`
	DefaultInclude []string                `json:"default_include"`
}
