package brreg

import (
	"strconv"

	apperrors "github.com/olgasafonova/brreg-search-mcp-server/internal/errors"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/registry"
)

// NormalizeOrgNumber strips separators and validates a Norwegian organization number.
func NormalizeOrgNumber(orgNumber string) (string, error) {
	cleaned := registry.CleanOrgNumber(orgNumber)
	if err := registry.ValidateOrgNumber(cleaned); err != nil {
		return "", apperrors.NewValidationError("org_number", orgNumber, err.Error())
	}
	return cleaned, nil
}

// ValidateListQuery checks the paging parameters accepted by the listing endpoint.
func ValidateListQuery(q ListQuery) error {
	if q.Page < 0 {
		return apperrors.NewValidationError("page", strconv.Itoa(q.Page), "page cannot be negative")
	}
	if q.Size < 0 {
		return apperrors.NewValidationError("size", strconv.Itoa(q.Size), "size cannot be negative")
	}
	if q.Size > registry.UpstreamPageSize {
		return apperrors.NewValidationError("size", strconv.Itoa(q.Size), "size cannot exceed 100")
	}
	return nil
}
