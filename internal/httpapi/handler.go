// Package httpapi exposes the search service as a JSON HTTP API.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/brreg"
	apperrors "github.com/olgasafonova/brreg-search-mcp-server/internal/errors"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/export"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/search"
)

// Service is the search surface used by the handlers.
type Service interface {
	Search(ctx context.Context, spec search.FilterSpec) (*search.ResultPage, error)
	GetCompany(ctx context.Context, orgNumber string) (*brreg.Company, error)
	GetRoles(ctx context.Context, orgNumber string) (*search.RolesResult, error)
}

type Handler struct {
	service  Service
	exporter *export.Exporter
	logger   *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:  service,
		exporter: export.NewExporter(service),
		logger:   logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api/search", h.HandleSearch)
	r.Get("/api/search/export", h.HandleExport)
	r.Get("/api/companies/{orgnr}", h.HandleGetCompany)
	r.Get("/api/companies/{orgnr}/roles", h.HandleGetRoles)
}

// HandleSearch runs a composed search and returns one page of enriched companies.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	spec, err := ParseFilterSpec(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	page, err := h.service.Search(ctx, spec)
	if err != nil {
		h.logger.ErrorContext(ctx, "search failed", "error", err)
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, page)
}

// HandleExport runs a search and returns the page as a CSV or JSON download.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	spec, err := ParseFilterSpec(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		WriteError(w, apperrors.NewValidationError("format", r.URL.Query().Get("format"), "must be csv or json"))
		return
	}

	res, err := h.exporter.Export(ctx, spec, format)
	if err != nil {
		h.logger.ErrorContext(ctx, "export failed", "error", err)
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(res.Content))
}

// HandleGetCompany returns a single company record.
func (h *Handler) HandleGetCompany(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgnr := chi.URLParam(r, "orgnr")

	company, err := h.service.GetCompany(ctx, orgnr)
	if err != nil {
		h.logger.ErrorContext(ctx, "get company failed", "error", err, "org_number", orgnr)
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, company)
}

// HandleGetRoles returns the role groups of a company with the resolved manager.
func (h *Handler) HandleGetRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgnr := chi.URLParam(r, "orgnr")

	roles, err := h.service.GetRoles(ctx, orgnr)
	if err != nil {
		h.logger.ErrorContext(ctx, "get roles failed", "error", err, "org_number", orgnr)
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, roles)
}

// ParseFilterSpec reads search filters from the query string. Numeric
// parameters that do not parse are validation errors.
func ParseFilterSpec(r *http.Request) (search.FilterSpec, error) {
	q := r.URL.Query()
	spec := search.FilterSpec{
		RegisteredFrom:       strings.TrimSpace(q.Get("fraRegistreringsdato")),
		RegisteredTo:         strings.TrimSpace(q.Get("tilRegistreringsdato")),
		LegalForms:           splitList(q.Get("organisasjonsform")),
		Name:                 strings.TrimSpace(q.Get("navn")),
		IncludeIndustryCodes: splitList(q.Get("inkluderNaeringskoder")),
		ExcludeIndustryCodes: splitList(q.Get("ekskluderNaeringskoder")),
	}

	if v := q.Get("minAksjekapital"); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return spec, apperrors.NewValidationError("minAksjekapital", v, "must be a number")
		}
		spec.MinCapital = &f
	}

	var err error
	if spec.Page, err = parseInt(q, "page"); err != nil {
		return spec, err
	}
	if spec.Size, err = parseInt(q, "size"); err != nil {
		return spec, err
	}
	return spec, nil
}

func parseInt(q url.Values, key string) (int, error) {
	vals := q[key]
	if len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(vals[0]))
	if err != nil {
		return 0, apperrors.NewValidationError(key, vals[0], "must be an integer")
	}
	return n, nil
}

// splitList splits a comma list, dropping blank entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
