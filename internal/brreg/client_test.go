package brreg

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/base"
	apperrors "github.com/olgasafonova/brreg-search-mcp-server/internal/errors"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/registry"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	ref := registry.Defaults()
	ref.BaseURL = server.URL
	client := NewClient(ref, base.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(client.Close)
	return client
}

func TestNewClient_BaseURL(t *testing.T) {
	ref := registry.Defaults()
	ref.BaseURL = "http://example.test/api/"
	if got := NewClient(ref).BaseURL(); got != "http://example.test/api" {
		t.Errorf("BaseURL() = %q", got)
	}

	ref.BaseURL = ""
	if got := NewClient(ref).BaseURL(); got != registry.DefaultBaseURL {
		t.Errorf("empty BaseURL should default, got %q", got)
	}
}

func TestListQuery_Values(t *testing.T) {
	q := ListQuery{
		RegisteredFrom: "2024-01-01",
		RegisteredTo:   "2024-12-31",
		LegalForms:     []string{"AS", "ASA"},
		Name:           "bakeri",
		IndustryCodes:  []string{"47", "56.10"},
		Page:           3,
		Size:           100,
		Sort:           registry.UpstreamSort,
	}
	v := q.Values()

	want := map[string]string{
		"fraRegistreringsdatoEnhetsregisteret": "2024-01-01",
		"tilRegistreringsdatoEnhetsregisteret": "2024-12-31",
		"organisasjonsform":                    "AS,ASA",
		"navn":                                 "bakeri",
		"naeringskode":                         "47,56.10",
		"page":                                 "3",
		"size":                                 "100",
		"sort":                                 "registreringsdatoEnhetsregisteret,DESC",
	}
	for key, val := range want {
		if got := v.Get(key); got != val {
			t.Errorf("%s = %q, want %q", key, got, val)
		}
	}

	empty := ListQuery{}.Values()
	if len(empty) != 1 || empty.Get("page") != "0" {
		t.Errorf("empty query should only carry page=0, got %v", empty)
	}
}

func TestListUnits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/enheter" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Accept") != AcceptUnit {
			t.Errorf("unexpected Accept: %s", r.Header.Get("Accept"))
		}
		if r.URL.Query().Get("organisasjonsform") != "AS" {
			t.Errorf("unexpected organisasjonsform: %s", r.URL.Query().Get("organisasjonsform"))
		}
		_, _ = w.Write([]byte(`{
			"_embedded": {"enheter": [
				{"organisasjonsnummer": "923609016", "navn": "EQUINOR ASA",
				 "naeringskode1": {"kode": " 06.100 ", "beskrivelse": "Utvinning av råolje"},
				 "kapital": {"belop": 8000000000, "valuta": "NOK"}}
			]},
			"_links": {"self": {"href": "http://x/enheter?page=0"}, "next": {"href": "http://x/enheter?page=1"}},
			"page": {"number": 0, "size": 100, "totalPages": 2, "totalElements": 101}
		}`))
	})

	resp, err := client.ListUnits(context.Background(), ListQuery{LegalForms: []string{"AS"}, Size: 100})
	if err != nil {
		t.Fatalf("ListUnits() error = %v", err)
	}
	if len(resp.Embedded.Companies) != 1 {
		t.Fatalf("got %d companies, want 1", len(resp.Embedded.Companies))
	}
	co := resp.Embedded.Companies[0]
	if co.CapitalAmount() != 8000000000 {
		t.Errorf("CapitalAmount() = %v", co.CapitalAmount())
	}
	if co.PrimaryIndustryCode() != "06.100" {
		t.Errorf("PrimaryIndustryCode() = %q", co.PrimaryIndustryCode())
	}
	if resp.Links == nil || resp.Links.Next == nil || resp.Links.Next.Href != "http://x/enheter?page=1" {
		t.Errorf("links not decoded: %+v", resp.Links)
	}
	if resp.Page.TotalPages != 2 || resp.Page.TotalElements != 101 {
		t.Errorf("page = %+v", resp.Page)
	}
}

func TestListUnits_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status": 400, "error": "Bad Request", "message": "Ugyldig organisasjonsform"}`))
	})

	_, err := client.ListUnits(context.Background(), ListQuery{})
	if err == nil {
		t.Fatal("expected error")
	}
	if apperrors.StatusCode(err) != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apperrors.StatusCode(err))
	}
	if err.Error() != "API error 400: Ugyldig organisasjonsform" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestListUnits_NotFoundIsUpstream(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.ListUnits(context.Background(), ListQuery{})
	if apperrors.IsNotFound(err) {
		t.Error("listing 404 should not be a not-found lookup")
	}
	if apperrors.StatusCode(err) != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apperrors.StatusCode(err))
	}
}

func TestListUnits_InvalidQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an invalid query")
	})

	for _, q := range []ListQuery{{Page: -1}, {Size: -1}, {Size: 101}} {
		if _, err := client.ListUnits(context.Background(), q); !apperrors.IsValidation(err) {
			t.Errorf("ListUnits(%+v) error = %v, want validation error", q, err)
		}
	}
}

func TestGetCompany(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/enheter/923609016" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(Company{OrganizationNumber: "923609016", Name: "EQUINOR ASA"})
	})

	co, err := client.GetCompany(context.Background(), "923 609 016")
	if err != nil {
		t.Fatalf("GetCompany() error = %v", err)
	}
	if co.Name != "EQUINOR ASA" {
		t.Errorf("Name = %q", co.Name)
	}
	if co.CapitalAmount() != 0 {
		t.Error("absent capital should read as 0")
	}
}

func TestGetCompany_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"feilmelding": "Ingen enhet med organisasjonsnummer 000000000 ble funnet"}`))
	})

	_, err := client.GetCompany(context.Background(), "000000000")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err.Error() != "company not found in registry: 000000000" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestGetCompany_InvalidOrgNumber(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an invalid org number")
	})

	for _, id := range []string{"", "12345", "92360901A"} {
		if _, err := client.GetCompany(context.Background(), id); !apperrors.IsValidation(err) {
			t.Errorf("GetCompany(%q) error = %v, want validation error", id, err)
		}
	}
}

func TestGetRoles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/enheter/923609016/roller" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Accept") != AcceptRoles {
			t.Errorf("unexpected Accept: %s", r.Header.Get("Accept"))
		}
		_, _ = w.Write([]byte(`{"rollegrupper": [
			{"type": {"kode": "DAGL", "beskrivelse": "Daglig leder"},
			 "roller": [{"type": {"kode": "DAGL"}, "person": {"navn": {"fornavn": "Anders", "etternavn": "Opedal"}}}]}
		]}`))
	})

	roles, err := client.GetRoles(context.Background(), "923609016")
	if err != nil {
		t.Fatalf("GetRoles() error = %v", err)
	}
	if len(roles.RoleGroups) != 1 || len(roles.RoleGroups[0].Roles) != 1 {
		t.Fatalf("unexpected roles: %+v", roles)
	}
	if got := roles.RoleGroups[0].Roles[0].Person.Name.FullName(); got != "Anders Opedal" {
		t.Errorf("FullName() = %q", got)
	}
}

func TestGetRoles_ServerErrorNotRetried(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GetRoles(context.Background(), "923609016")
	if apperrors.StatusCode(err) != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", apperrors.StatusCode(err))
	}
	if err.Error() != "API error 500: Internal Server Error" {
		t.Errorf("Error() = %q", err.Error())
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestGetRoles_CoalescesConcurrentLookups(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"rollegrupper": []}`))
	})

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = client.GetRoles(context.Background(), "923609016")
		}()
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
}
