package search

import (
	"errors"
	"testing"

	apperrors "github.com/olgasafonova/brreg-search-mcp-server/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		spec      FilterSpec
		wantField string
		wantMsg   string
	}{
		{name: "zero spec is valid", spec: FilterSpec{}},
		{name: "full valid spec", spec: FilterSpec{
			MinCapital:     ptr(0.0),
			RegisteredFrom: "2024-01-01",
			RegisteredTo:   "2024-01-01",
			LegalForms:     []string{"AS"},
			Page:           3,
			Size:           25,
		}},
		{name: "negative page", spec: FilterSpec{Page: -1}, wantField: "page", wantMsg: "must be at least 0"},
		{name: "negative size", spec: FilterSpec{Size: -1}, wantField: "size", wantMsg: "must be at least 0"},
		{name: "negative capital", spec: FilterSpec{MinCapital: ptr(-10.0)}, wantField: "min_capital", wantMsg: "must be at least 0"},
		{name: "bad date", spec: FilterSpec{RegisteredTo: "2024-13-01"}, wantField: "registered_to", wantMsg: "must be a date in YYYY-MM-DD format"},
		{name: "inverted range", spec: FilterSpec{RegisteredFrom: "2024-02-01", RegisteredTo: "2024-01-31"}, wantField: "registered_to", wantMsg: "must not be before registered_from"},
		{name: "blank legal form", spec: FilterSpec{LegalForms: []string{""}}, wantField: "legal_forms[0]", wantMsg: "must not contain blank entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.spec)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			var ve *apperrors.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
			}
			if ve.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", ve.Message, tt.wantMsg)
			}
		})
	}
}
