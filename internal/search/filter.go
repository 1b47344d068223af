package search

import (
	"slices"
	"strings"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/brreg"
)

// Matches reports whether an industry code matches a pattern. Both sides are
// trimmed and an empty side never matches. A dotted pattern ("70.10") is a
// plain textual prefix, so it also matches "70.101". An undotted pattern
// ("47") matches the code itself or any sub-code ("47.11") but not "470".
func Matches(code, pattern string) bool {
	code = strings.TrimSpace(code)
	pattern = strings.TrimSpace(pattern)
	if code == "" || pattern == "" {
		return false
	}
	if strings.Contains(pattern, ".") {
		return strings.HasPrefix(code, pattern)
	}
	return code == pattern || strings.HasPrefix(code, pattern+".")
}

// matchIndex returns the index of the first pattern code matches, or -1.
func matchIndex(code string, patterns []string) int {
	return slices.IndexFunc(patterns, func(p string) bool {
		return Matches(code, p)
	})
}

// FilterByCapital keeps records whose capital (0 when absent) is at least minCapital.
func FilterByCapital(records []brreg.Company, minCapital float64) []brreg.Company {
	out := make([]brreg.Company, 0, len(records))
	for _, r := range records {
		if r.CapitalAmount() >= minCapital {
			out = append(out, r)
		}
	}
	return out
}

// ExcludeByIndustry drops records whose primary industry code matches any
// pattern. Records without a primary code are kept.
func ExcludeByIndustry(records []brreg.Company, patterns []string) []brreg.Company {
	if len(patterns) == 0 {
		return records
	}
	out := make([]brreg.Company, 0, len(records))
	for _, r := range records {
		code := r.PrimaryIndustryCode()
		if code == "" || matchIndex(code, patterns) < 0 {
			out = append(out, r)
		}
	}
	return out
}

// IncludeByIndustry keeps records whose primary industry code matches at least
// one pattern. With no patterns every record is kept; otherwise records
// without a primary code are dropped.
func IncludeByIndustry(records []brreg.Company, patterns []string) []brreg.Company {
	if len(patterns) == 0 {
		return records
	}
	out := make([]brreg.Company, 0, len(records))
	for _, r := range records {
		if matchIndex(r.PrimaryIndustryCode(), patterns) >= 0 {
			out = append(out, r)
		}
	}
	return out
}

// SortByPriority stably orders records by the first pattern their primary code
// matches; earlier patterns sort first and non-matching records sort last.
// records is sorted in place.
func SortByPriority(records []brreg.Company, patterns []string) {
	if len(patterns) == 0 {
		return
	}
	rank := func(c brreg.Company) int {
		if i := matchIndex(c.PrimaryIndustryCode(), patterns); i >= 0 {
			return i
		}
		return len(patterns)
	}
	slices.SortStableFunc(records, func(a, b brreg.Company) int {
		return rank(a) - rank(b)
	})
}

// Paginate returns the page-th slice of size records and the total page count.
// A page past the end yields an empty slice; a zero size yields no pages.
func Paginate[T any](records []T, page, size int) ([]T, int) {
	if size <= 0 || page < 0 {
		return []T{}, 0
	}
	totalPages := len(records) / size
	if len(records)%size != 0 {
		totalPages++
	}
	// page < totalPages bounds page*size by len(records)
	if page >= totalPages {
		return []T{}, totalPages
	}
	start := page * size
	end := start + min(size, len(records)-start)
	return records[start:end], totalPages
}

// Filtered is the result of running the local filter pipeline.
type Filtered struct {
	Page          []brreg.Company
	TotalFiltered int
	TotalPages    int
}

// Apply runs the local pipeline in fixed order: capital, exclude, include,
// priority sort, paginate. spec should already carry its defaults.
func Apply(records []brreg.Company, spec FilterSpec) Filtered {
	kept := FilterByCapital(records, spec.MinCapitalOrDefault())
	kept = ExcludeByIndustry(kept, spec.ExcludeIndustryCodes)
	kept = IncludeByIndustry(kept, spec.IncludeIndustryCodes)
	SortByPriority(kept, spec.IncludeIndustryCodes)

	page, totalPages := Paginate(kept, spec.Page, spec.Size)
	return Filtered{
		Page:          page,
		TotalFiltered: len(kept),
		TotalPages:    totalPages,
	}
}
