package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/brreg"
	apperrors "github.com/olgasafonova/brreg-search-mcp-server/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func company(orgNumber string, capital float64, code string) brreg.Company {
	c := brreg.Company{OrganizationNumber: orgNumber, Name: "Firma " + orgNumber}
	if capital > 0 {
		c.Capital = &brreg.Capital{Amount: capital, Currency: "NOK"}
	}
	if code != "" {
		c.IndustryCode1 = &brreg.IndustryCode{Code: code}
	}
	return c
}

func companies(n int, prefix string) []brreg.Company {
	out := make([]brreg.Company, n)
	for i := range out {
		out[i] = company(fmt.Sprintf("%s%06d", prefix, i), 100000, "62.01")
	}
	return out
}

func managerRoles(code, first, last string) *brreg.RolesResponse {
	return &brreg.RolesResponse{RoleGroups: []brreg.RoleGroup{{
		Type: brreg.RoleType{Code: brreg.FlexString(code)},
		Roles: []brreg.Role{{
			Type: brreg.RoleType{Code: brreg.FlexString(code)},
			Person: &brreg.Person{Name: brreg.PersonName{
				Kind: brreg.NameStructured, FirstName: first, LastName: last,
			}},
		}},
	}}}
}

// fakeRegistry serves listing pages and role payloads from memory.
type fakeRegistry struct {
	pages      [][]brreg.Company
	totalPages int
	links      []*brreg.Links
	listErrAt  int // page index that fails, -1 for none

	roles     map[string]*brreg.RolesResponse
	roleErrs  map[string]error
	roleDelay time.Duration

	mu        sync.Mutex
	queries   []brreg.ListQuery
	roleCalls []string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newFakeRegistry(pages ...[]brreg.Company) *fakeRegistry {
	return &fakeRegistry{
		pages:     pages,
		listErrAt: -1,
		roles:     map[string]*brreg.RolesResponse{},
		roleErrs:  map[string]error{},
	}
}

func (f *fakeRegistry) ListUnits(_ context.Context, q brreg.ListQuery) (*brreg.SearchResponse, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	if q.Page == f.listErrAt {
		return nil, apperrors.NewUpstreamError(503, "/enheter", "Service Unavailable")
	}

	resp := &brreg.SearchResponse{Page: brreg.PageInfo{Number: q.Page, Size: q.Size, TotalPages: f.totalPages}}
	if q.Page < len(f.pages) {
		resp.Embedded.Companies = f.pages[q.Page]
	}
	if q.Page < len(f.links) {
		resp.Links = f.links[q.Page]
	}
	return resp, nil
}

func (f *fakeRegistry) GetRoles(ctx context.Context, orgNumber string) (*brreg.RolesResponse, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	f.mu.Lock()
	f.roleCalls = append(f.roleCalls, orgNumber)
	f.mu.Unlock()

	if f.roleDelay > 0 {
		select {
		case <-time.After(f.roleDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := f.roleErrs[orgNumber]; ok {
		return nil, err
	}
	if roles, ok := f.roles[orgNumber]; ok {
		return roles, nil
	}
	return &brreg.RolesResponse{}, nil
}

func (f *fakeRegistry) GetCompany(_ context.Context, orgNumber string) (*brreg.Company, error) {
	for _, page := range f.pages {
		for i := range page {
			if page[i].OrganizationNumber == orgNumber {
				return &page[i], nil
			}
		}
	}
	return nil, apperrors.NewNotFoundError(orgNumber)
}

func ptr[T any](v T) *T {
	return &v
}
