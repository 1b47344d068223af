package brreg

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/base"
	apperrors "github.com/olgasafonova/brreg-search-mcp-server/internal/errors"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/registry"
)

const (
	// AcceptUnit is the media type for unit (enhet) payloads
	AcceptUnit = "application/vnd.brreg.enhetsregisteret.enhet.v2+json"

	// AcceptRoles is the media type for role payloads
	AcceptRoles = "application/vnd.brreg.enhetsregisteret.rolle.v1+json"
)

// Client provides access to the Enhetsregisteret API.
// Identical single-entity lookups that are in flight at the same time share
// one upstream request.
type Client struct {
	*base.Client
	baseURL  string
	inflight singleflight.Group
}

// NewClient creates a client against ref.BaseURL
func NewClient(ref registry.Reference, opts ...base.ClientOption) *Client {
	baseURL := strings.TrimRight(ref.BaseURL, "/")
	if baseURL == "" {
		baseURL = registry.DefaultBaseURL
	}
	return &Client{Client: base.NewClient(opts...), baseURL: baseURL}
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListQuery is the upstream-supported subset of a search
type ListQuery struct {
	RegisteredFrom string   // fraRegistreringsdatoEnhetsregisteret
	RegisteredTo   string   // tilRegistreringsdatoEnhetsregisteret
	LegalForms     []string // organisasjonsform, comma-joined
	Name           string   // navn
	IndustryCodes  []string // naeringskode, comma-joined
	Page           int
	Size           int
	Sort           string
}

// Values encodes the query as listing parameters
func (q ListQuery) Values() url.Values {
	params := url.Values{}
	if q.RegisteredFrom != "" {
		params.Set("fraRegistreringsdatoEnhetsregisteret", q.RegisteredFrom)
	}
	if q.RegisteredTo != "" {
		params.Set("tilRegistreringsdatoEnhetsregisteret", q.RegisteredTo)
	}
	if len(q.LegalForms) > 0 {
		params.Set("organisasjonsform", strings.Join(q.LegalForms, ","))
	}
	if q.Name != "" {
		params.Set("navn", q.Name)
	}
	if len(q.IndustryCodes) > 0 {
		params.Set("naeringskode", strings.Join(q.IndustryCodes, ","))
	}
	params.Set("page", strconv.Itoa(q.Page))
	if q.Size > 0 {
		params.Set("size", strconv.Itoa(q.Size))
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	return params
}

// ListUnits fetches one page of the unit listing
func (c *Client) ListUnits(ctx context.Context, q ListQuery) (*SearchResponse, error) {
	if err := ValidateListQuery(q); err != nil {
		return nil, err
	}

	var result SearchResponse
	call := apiCall{action: "list_units", path: "/enheter", params: q.Values(), accept: AcceptUnit}
	if err := c.doRequest(ctx, call, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCompany retrieves a unit by organization number
func (c *Client) GetCompany(ctx context.Context, orgNumber string) (*Company, error) {
	orgNumber, err := NormalizeOrgNumber(orgNumber)
	if err != nil {
		return nil, err
	}

	v, err, _ := c.inflight.Do("company:"+orgNumber, func() (any, error) {
		var company Company
		call := apiCall{action: "get_company", path: "/enheter/" + orgNumber, accept: AcceptUnit, entity: "company", id: orgNumber}
		if err := c.doRequest(ctx, call, &company); err != nil {
			return nil, err
		}
		return &company, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Company), nil
}

// GetRoles retrieves the role groups registered for a unit
func (c *Client) GetRoles(ctx context.Context, orgNumber string) (*RolesResponse, error) {
	orgNumber, err := NormalizeOrgNumber(orgNumber)
	if err != nil {
		return nil, err
	}

	v, err, _ := c.inflight.Do("roles:"+orgNumber, func() (any, error) {
		var result RolesResponse
		call := apiCall{action: "get_roles", path: "/enheter/" + orgNumber + "/roller", accept: AcceptRoles, entity: "roles", id: orgNumber}
		if err := c.doRequest(ctx, call, &result); err != nil {
			return nil, err
		}
		return &result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*RolesResponse), nil
}

// apiCall describes one upstream request
type apiCall struct {
	action string // metrics label
	path   string
	params url.Values
	accept string
	entity string // set for single-entity lookups, where 404 means not found
	id     string
}

// doRequest performs a GET through the base client and maps the status:
// 404 on an entity lookup becomes a NotFoundError, any other non-2xx an
// UpstreamError carrying the status.
func (c *Client) doRequest(ctx context.Context, call apiCall, result any) error {
	reqURL := c.baseURL + call.path
	if len(call.params) > 0 {
		reqURL += "?" + call.params.Encode()
	}

	body, statusCode, err := c.Client.DoRequest(ctx, base.RequestConfig{
		URL:    reqURL,
		Accept: call.accept,
		Action: call.action,
	})
	if err != nil {
		return err
	}

	if statusCode == http.StatusNotFound && call.entity != "" {
		return &apperrors.NotFoundError{EntityType: call.entity, Identifier: call.id}
	}

	if statusCode < 200 || statusCode >= 300 {
		var apiErr APIError
		msg := base.Truncate(strings.TrimSpace(string(body)), 200)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.String() != "" {
			msg = apiErr.String()
		}
		if msg == "" {
			msg = http.StatusText(statusCode)
		}
		return apperrors.NewUpstreamError(statusCode, call.path, msg)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
