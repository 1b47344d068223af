package search

import (
	"context"
	"slices"
	"strings"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/brreg"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/registry"
)

// MCP tool wrapper methods.
// These wrap the service operations with Args/Result types for tool registration.

// SearchMCP is the MCP wrapper for Search
func (s *Service) SearchMCP(ctx context.Context, args SearchArgs) (SearchResult, error) {
	page, err := s.Search(ctx, args.FilterSpec())
	if err != nil {
		return SearchResult{}, err
	}

	companies := make([]CompanySummary, 0, len(page.Companies))
	for _, rec := range page.Companies {
		companies = append(companies, Summarize(rec))
	}

	return SearchResult{
		SearchID:      page.SearchID,
		Companies:     companies,
		Page:          page.Pagination.Number,
		Size:          page.Pagination.Size,
		TotalPages:    page.Pagination.TotalPages,
		TotalFiltered: page.TotalFiltered,

		AverageCapital: page.Stats.AverageCapital,
		WithCapital:    page.Stats.WithCapital,
	}, nil
}

// GetCompanyMCP is the MCP wrapper for GetCompany
func (s *Service) GetCompanyMCP(ctx context.Context, args GetCompanyArgs) (GetCompanyResult, error) {
	company, err := s.GetCompany(ctx, args.OrgNumber)
	if err != nil {
		return GetCompanyResult{}, err
	}
	return GetCompanyResult{Company: company}, nil
}

// GetRolesMCP is the MCP wrapper for GetRoles
func (s *Service) GetRolesMCP(ctx context.Context, args GetRolesArgs) (GetRolesResult, error) {
	res, err := s.GetRoles(ctx, args.OrgNumber)
	if err != nil {
		return GetRolesResult{}, err
	}

	result := GetRolesResult{RoleGroups: make([]RoleGroupSummary, 0, len(res.Roles.RoleGroups))}
	if res.DagligLeder != nil {
		result.DagligLeder = res.DagligLeder.Name
	}

	for _, rg := range res.Roles.RoleGroups {
		group := RoleGroupSummary{
			Type:         string(rg.Type.Code),
			Description:  string(rg.Type.Description),
			LastModified: rg.LastModified,
			Roles:        make([]RoleSummary, 0, len(rg.Roles)),
		}
		for _, r := range rg.Roles {
			role := RoleSummary{
				Type:        string(r.Type.Code),
				Description: string(r.Type.Description),
				Resigned:    r.Resigned,
			}
			if r.Person != nil {
				role.Name = personName(r.Person)
				role.BirthDate = string(r.Person.BirthDate)
			}
			if r.Entity != nil {
				role.EntityOrgNr = string(r.Entity.OrganizationNumber)
				if role.Name == "" {
					role.Name = r.Entity.Name.String()
				}
			}
			group.Roles = append(group.Roles, role)
		}
		result.RoleGroups = append(result.RoleGroups, group)
	}

	return result, nil
}

// ListIndustryCodesMCP looks up level-2 industry codes for use as filter patterns
func (s *Service) ListIndustryCodesMCP(_ context.Context, args ListIndustryCodesArgs) (ListIndustryCodesResult, error) {
	codes := s.ref.Industries
	if strings.TrimSpace(args.Query) != "" {
		codes = registry.SearchIndustries(args.Query, nil)
	}
	if codes == nil {
		codes = []registry.IndustryCode{}
	}
	return ListIndustryCodesResult{
		Codes:          codes,
		Count:          len(codes),
		DefaultInclude: slices.Clone(registry.DefaultIncludeIndustryCodes),
	}, nil
}

// Summarize converts an enriched record to its compact tool representation
func Summarize(rec EnrichedRecord) CompanySummary {
	summary := CompanySummary{
		OrganizationNumber: rec.OrganizationNumber,
		Name:               rec.Name,
		Capital:            rec.CapitalAmount(),
		RegistrationDate:   rec.RegistrationDate,
		IndustryCode:       rec.PrimaryIndustryCode(),
		EmployeeCount:      rec.EmployeeCount,
	}
	if rec.OrganizationForm != nil {
		summary.OrganizationForm = rec.OrganizationForm.Code
	}
	if rec.IndustryCode1 != nil {
		summary.Industry = rec.IndustryCode1.Description
	}
	if summary.Industry == "" && summary.IndustryCode != "" {
		if ic, ok := registry.LookupIndustry(summary.IndustryCode); ok {
			summary.Industry = ic.Name
		}
	}
	if addr := rec.BusinessAddress; addr != nil {
		summary.BusinessAddress = FormatAddress(addr)
	} else if rec.PostalAddress != nil {
		summary.BusinessAddress = FormatAddress(rec.PostalAddress)
	}
	if rec.DagligLeder != nil {
		summary.DagligLeder = rec.DagligLeder.Name
	}
	return summary
}

// FormatAddress formats an address as a single string
func FormatAddress(addr *brreg.Address) string {
	if addr == nil {
		return ""
	}

	parts := make([]string, 0, 4)
	for _, line := range addr.AddressLines {
		if line != "" {
			parts = append(parts, line)
		}
	}
	if addr.PostalCode != "" || addr.PostalPlace != "" {
		parts = append(parts, strings.TrimSpace(addr.PostalCode+" "+addr.PostalPlace))
	}
	if addr.Country != "" && addr.CountryCode != "NO" {
		parts = append(parts, addr.Country)
	}

	return strings.Join(parts, ", ")
}
