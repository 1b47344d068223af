package search

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/brreg"
	apperrors "github.com/olgasafonova/brreg-search-mcp-server/internal/errors"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/registry"
)

func TestCollect_StopConditions(t *testing.T) {
	tests := []struct {
		name       string
		pages      [][]brreg.Company
		totalPages int
		wantPages  int
		wantCount  int
	}{
		{
			name:      "empty first page",
			pages:     [][]brreg.Company{{}},
			wantPages: 1,
			wantCount: 0,
		},
		{
			name:      "short page ends walk",
			pages:     [][]brreg.Company{companies(100, "1"), companies(40, "2"), companies(100, "3")},
			wantPages: 2,
			wantCount: 140,
		},
		{
			name:      "empty page after full page",
			pages:     [][]brreg.Company{companies(100, "1"), {}},
			wantPages: 2,
			wantCount: 100,
		},
		{
			name:       "upstream last page reached",
			pages:      [][]brreg.Company{companies(100, "1"), companies(100, "2"), companies(100, "3")},
			totalPages: 2,
			wantPages:  2,
			wantCount:  200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeRegistry(tt.pages...)
			fake.totalPages = tt.totalPages
			agg, err := NewAggregator(fake, registry.Defaults(), discardLogger()).Collect(context.Background(), UpstreamQuery{})
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}
			if agg.Pages != tt.wantPages {
				t.Errorf("Pages = %d, want %d", agg.Pages, tt.wantPages)
			}
			if len(agg.Companies) != tt.wantCount {
				t.Errorf("records = %d, want %d", len(agg.Companies), tt.wantCount)
			}
			if agg.Capped {
				t.Error("walk should not be capped")
			}
		})
	}
}

func TestCollect_PageCap(t *testing.T) {
	fake := newFakeRegistry()
	for i := 0; i < 105; i++ {
		fake.pages = append(fake.pages, companies(100, "9"))
	}

	agg, err := NewAggregator(fake, registry.Defaults(), discardLogger()).Collect(context.Background(), UpstreamQuery{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if agg.Pages != registry.MaxUpstreamPages {
		t.Errorf("Pages = %d, want %d", agg.Pages, registry.MaxUpstreamPages)
	}
	if len(agg.Companies) != registry.MaxUpstreamPages*registry.UpstreamPageSize {
		t.Errorf("records = %d, want 10000", len(agg.Companies))
	}
	if !agg.Capped {
		t.Error("walk should be capped")
	}
	if len(fake.queries) != registry.MaxUpstreamPages {
		t.Errorf("upstream calls = %d", len(fake.queries))
	}
}

func TestCollect_CapCannotBeRaised(t *testing.T) {
	fake := newFakeRegistry()
	for i := 0; i < 150; i++ {
		fake.pages = append(fake.pages, companies(100, "9"))
	}
	ref := registry.Defaults()
	ref.MaxUpstreamPages = 150

	agg, err := NewAggregator(fake, ref, discardLogger()).Collect(context.Background(), UpstreamQuery{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if agg.Pages != registry.MaxUpstreamPages || len(agg.Companies) != 10000 {
		t.Errorf("pages = %d, records = %d, want %d and 10000", agg.Pages, len(agg.Companies), registry.MaxUpstreamPages)
	}
	if !agg.Capped {
		t.Error("walk should be capped")
	}
}

func TestCollect_CapFromReference(t *testing.T) {
	fake := newFakeRegistry(companies(2, "1"), companies(2, "2"), companies(2, "3"))
	ref := registry.Defaults()
	ref.UpstreamPageSize = 2
	ref.MaxUpstreamPages = 2

	agg, err := NewAggregator(fake, ref, discardLogger()).Collect(context.Background(), UpstreamQuery{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if agg.Pages != 2 || len(agg.Companies) != 4 || !agg.Capped {
		t.Errorf("got pages=%d records=%d capped=%v", agg.Pages, len(agg.Companies), agg.Capped)
	}
	if fake.queries[0].Size != 2 {
		t.Errorf("Size = %d, want 2", fake.queries[0].Size)
	}
}

func TestCollect_PreservesOrderAndLastLinks(t *testing.T) {
	first := companies(100, "1")
	second := companies(3, "2")
	fake := newFakeRegistry(first, second)
	fake.links = []*brreg.Links{
		{Self: &brreg.Link{Href: "page0"}},
		{Self: &brreg.Link{Href: "page1"}},
	}

	agg, err := NewAggregator(fake, registry.Defaults(), discardLogger()).Collect(context.Background(), UpstreamQuery{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	want := append(orgNumbers(first), orgNumbers(second)...)
	if diff := cmp.Diff(want, orgNumbers(agg.Companies)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if agg.Links == nil || agg.Links.Self.Href != "page1" {
		t.Errorf("Links = %+v, want last page links", agg.Links)
	}
}

func TestCollect_QueryParameters(t *testing.T) {
	fake := newFakeRegistry(companies(100, "1"), companies(1, "2"))
	q := UpstreamQuery{
		RegisteredFrom: "2024-01-01",
		RegisteredTo:   "2024-06-30",
		LegalForms:     []string{"AS"},
		Name:           "kafe",
		IndustryCodes:  []string{"56"},
	}

	if _, err := NewAggregator(fake, registry.Defaults(), discardLogger()).Collect(context.Background(), q); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	want := []brreg.ListQuery{
		{RegisteredFrom: "2024-01-01", RegisteredTo: "2024-06-30", LegalForms: []string{"AS"}, Name: "kafe",
			IndustryCodes: []string{"56"}, Page: 0, Size: 100, Sort: registry.UpstreamSort},
		{RegisteredFrom: "2024-01-01", RegisteredTo: "2024-06-30", LegalForms: []string{"AS"}, Name: "kafe",
			IndustryCodes: []string{"56"}, Page: 1, Size: 100, Sort: registry.UpstreamSort},
	}
	if diff := cmp.Diff(want, fake.queries); diff != "" {
		t.Errorf("queries mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_FailureDiscardsPartialResults(t *testing.T) {
	fake := newFakeRegistry(companies(100, "1"), companies(100, "2"), companies(10, "3"))
	fake.listErrAt = 1

	agg, err := NewAggregator(fake, registry.Defaults(), discardLogger()).Collect(context.Background(), UpstreamQuery{})
	if err == nil {
		t.Fatal("expected error")
	}
	if agg != nil {
		t.Errorf("partial aggregate returned: %d records", len(agg.Companies))
	}
	if apperrors.StatusCode(err) != 503 {
		t.Errorf("StatusCode = %d, want 503", apperrors.StatusCode(err))
	}
	if len(fake.queries) != 2 {
		t.Errorf("walk should stop at the failing page, calls = %d", len(fake.queries))
	}
}
