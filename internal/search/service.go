package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/brreg"
	apperrors "github.com/olgasafonova/brreg-search-mcp-server/internal/errors"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/registry"
	"github.com/olgasafonova/brreg-search-mcp-server/metrics"
	"github.com/olgasafonova/brreg-search-mcp-server/tracing"
)

// Service composes aggregation, local filtering and manager enrichment.
type Service struct {
	registry   Registry
	ref        registry.Reference
	aggregator *Aggregator
	enricher   *Enricher
	logger     *slog.Logger
}

// Option configures the Service
type Option func(*Service)

// WithLogger sets the logger used by the service and its components
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReference overrides the shared reference data
func WithReference(ref registry.Reference) Option {
	return func(s *Service) {
		s.ref = ref
	}
}

// NewService creates a search service over reg.
func NewService(reg Registry, opts ...Option) *Service {
	s := &Service{
		registry: reg,
		ref:      registry.Defaults(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.aggregator = NewAggregator(reg, s.ref, s.logger)
	s.enricher = NewEnricher(reg, s.ref, s.logger)
	return s
}

// Reference returns the reference data the service was built with
func (s *Service) Reference() registry.Reference {
	return s.ref
}

// Search runs the full pipeline: validate, aggregate, filter, sort, paginate,
// then enrich only the returned page.
func (s *Service) Search(ctx context.Context, spec FilterSpec) (*ResultPage, error) {
	searchID := uuid.NewString()
	ctx, span := tracing.Start(ctx, "search.Search", tracing.KeySearchID.String(searchID))
	defer span.End()

	logger := s.logger.With("search_id", searchID)

	spec = spec.withDefaults()
	if err := Validate(spec); err != nil {
		metrics.RecordSearch(false)
		tracing.Fail(span, err)
		return nil, err
	}

	agg, err := s.aggregator.Collect(ctx, spec.upstreamQuery())
	if err != nil {
		metrics.RecordSearch(false)
		tracing.Fail(span, err)
		logger.Error("Search failed", "error", err)
		return nil, err
	}

	filtered := Apply(agg.Companies, spec)
	metrics.RecordFiltering(len(agg.Companies), filtered.TotalFiltered)

	companies := s.enricher.Enrich(ctx, filtered.Page)

	tracing.SearchOutcome(span, len(agg.Companies), filtered.TotalFiltered, len(companies))
	metrics.RecordSearch(true)
	logger.Info("Search completed",
		"upstream_pages", agg.Pages,
		"candidates", len(agg.Companies),
		"filtered", filtered.TotalFiltered,
		"returned", len(companies))

	return &ResultPage{
		SearchID:  searchID,
		Companies: companies,
		Pagination: Pagination{
			Number:        spec.Page,
			Size:          spec.Size,
			TotalPages:    filtered.TotalPages,
			TotalElements: filtered.TotalFiltered,
		},
		Links:         agg.Links,
		TotalFiltered: filtered.TotalFiltered,
		Stats:         PageStats(companies, filtered.TotalFiltered),
	}, nil
}

// GetCompany returns a single company as the registry serves it.
func (s *Service) GetCompany(ctx context.Context, orgNumber string) (*brreg.Company, error) {
	ctx, span := tracing.Start(ctx, "search.GetCompany", tracing.Lookup("get_company", orgNumber)...)
	defer span.End()

	company, err := s.registry.GetCompany(ctx, orgNumber)
	if err != nil {
		err = explainNotFound(err, orgNumber)
		tracing.Fail(span, err)
		return nil, err
	}
	return company, nil
}

// GetRoles returns a company's role payload and its resolved manager.
func (s *Service) GetRoles(ctx context.Context, orgNumber string) (*RolesResult, error) {
	ctx, span := tracing.Start(ctx, "search.GetRoles", tracing.Lookup("get_roles", orgNumber)...)
	defer span.End()

	roles, err := s.registry.GetRoles(ctx, orgNumber)
	if err != nil {
		err = explainNotFound(err, orgNumber)
		tracing.Fail(span, err)
		return nil, err
	}
	return &RolesResult{
		Roles:       roles,
		DagligLeder: ResolveManager(roles, s.ref),
	}, nil
}

// explainNotFound notes a failed MOD11 check on a not-found lookup, since such
// a number can never be registered. The result still matches IsNotFound.
func explainNotFound(err error, orgNumber string) error {
	if !apperrors.IsNotFound(err) || registry.CheckDigitValid(orgNumber) {
		return err
	}
	return fmt.Errorf("%w (%s fails the organization number check digit)", err, registry.FormatOrgNumber(orgNumber))
}
