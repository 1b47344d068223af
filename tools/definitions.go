package tools

// AllTools contains all tool specifications for the registry search server.
// Descriptions follow a structured format for LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// SEARCH
	// ==========================================================================
	{
		Name:     "brreg_search_companies",
		Method:   "Search",
		Title:    "Search Norwegian Companies",
		Category: "search",
		Description: `Find newly registered Norwegian companies by registration date, legal form, share capital and industry, with the general manager (daglig leder) resolved for each hit.

USE WHEN: User asks "new AS companies registered last week", "retail companies with at least 100k capital", "who runs the restaurants registered in March".

NOT FOR: Looking up one known company (use brreg_get_company).

PARAMETERS:
- registered_from / registered_to: YYYY-MM-DD, inclusive
- legal_forms: e.g. ["AS", "ASA"]
- min_capital: NOK, default 50000 (0 disables)
- include_industry_codes: patterns in priority order; "47" matches 47.x, "70.10" is a prefix
- exclude_industry_codes: patterns removed before inclusion
- name: company name search
- page (0-indexed), size (default 100)

RETURNS: One page of matching companies sorted by industry priority, with totals and daglig leder names.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// READ
	// ==========================================================================
	{
		Name:     "brreg_get_company",
		Method:   "GetCompany",
		Title:    "Get Norwegian Company",
		Category: "read",
		Description: `Get the full registry record for one company by organization number.

USE WHEN: User gives a 9-digit org number or asks for details of a company found by a search.

NOT FOR: Finding companies by criteria (use brreg_search_companies).

PARAMETERS:
- org_number: 9 digits, spaces allowed (required)

RETURNS: Name, legal form, addresses, industry codes, capital, employees and contact details.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "brreg_get_roles",
		Method:   "GetRoles",
		Title:    "Get Company Roles",
		Category: "read",
		Description: `Get the role holders of a company: general manager, board, auditor and others.

USE WHEN: User asks "who is the CEO of X", "board members of X", "who is daglig leder".

NOT FOR: Company details (use brreg_get_company).

PARAMETERS:
- org_number: 9 digits (required)

RETURNS: Role groups with persons or entities, plus the resolved daglig leder name.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// EXPORT
	// ==========================================================================
	{
		Name:     "brreg_export_search",
		Method:   "Export",
		Title:    "Export Company Search",
		Category: "export",
		Description: `Run a company search and return the page as a CSV or JSON document.

USE WHEN: User wants "a spreadsheet of", "export to CSV", "download the list".

NOT FOR: Browsing results interactively (use brreg_search_companies).

PARAMETERS:
- filters: same fields as brreg_search_companies
- format: csv (default) or json

RETURNS: File name, content type, record count and the encoded content.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// REFERENCE
	// ==========================================================================
	{
		Name:     "brreg_list_industry_codes",
		Method:   "ListIndustryCodes",
		Title:    "List Industry Codes",
		Category: "reference",
		Description: `List NACE industry divisions usable as include/exclude patterns.

USE WHEN: User asks "what is the code for restaurants", or before building an industry filter.

PARAMETERS:
- query: filter by code or name (optional)

RETURNS: Matching codes with names, plus the default include list.`,
		ReadOnly:   true,
		Idempotent: true,
	},
}
