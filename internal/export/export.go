// Package export writes enriched search results as CSV or JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/brreg"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/search"
)

// Supported formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Headers are the CSV column names, in column order.
var Headers = []string{
	"Organisasjonsnummer",
	"Navn",
	"Organisasjonsform",
	"Aksjekapital",
	"Registreringsdato",
	"Stiftelsesdato",
	"Adresse",
	"Postnummer",
	"Poststed",
	"Kommune",
	"Daglig leder",
	"Næringskode",
	"Antall ansatte",
	"E-post",
	"Telefon",
	"Hjemmeside",
}

// ParseFormat normalizes a format name, defaulting to CSV.
func ParseFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (use csv or json)", format)
	}
}

// ContentType returns the MIME type for a format
func ContentType(format string) string {
	if format == FormatJSON {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns the download name for an export made at now
func Filename(format string, now time.Time) string {
	return fmt.Sprintf("bedrifter_%s.%s", now.UTC().Format("2006-01-02"), format)
}

// Write encodes records in the given format.
func Write(w io.Writer, format string, records []search.EnrichedRecord) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteCSV writes a header row and one row per record
func WriteCSV(w io.Writer, records []search.EnrichedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(Row(rec)); err != nil {
			return fmt.Errorf("write csv row %s: %w", rec.OrganizationNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes records as an indented JSON array
func WriteJSON(w io.Writer, records []search.EnrichedRecord) error {
	if records == nil {
		records = []search.EnrichedRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// Row flattens a record into the CSV columns. The business address is used
// when present, otherwise the postal address.
func Row(rec search.EnrichedRecord) []string {
	addr := rec.BusinessAddress
	if addr == nil {
		addr = rec.PostalAddress
	}
	if addr == nil {
		addr = &brreg.Address{}
	}

	var orgForm string
	if f := rec.OrganizationForm; f != nil {
		orgForm = f.Description
		if orgForm == "" {
			orgForm = f.Code
		}
	}

	var capital string
	if rec.Capital != nil {
		capital = strconv.FormatFloat(rec.Capital.Amount, 'f', -1, 64)
	}

	var manager string
	if rec.DagligLeder != nil {
		manager = rec.DagligLeder.Name
	}

	var industry string
	if rec.IndustryCode1 != nil {
		industry = rec.IndustryCode1.Description
	}

	var employees string
	if rec.EmployeeCount > 0 {
		employees = strconv.Itoa(rec.EmployeeCount)
	}

	return []string{
		rec.OrganizationNumber,
		rec.Name,
		orgForm,
		capital,
		rec.RegistrationDate,
		rec.FoundedDate,
		strings.Join(addr.AddressLines, ", "),
		addr.PostalCode,
		addr.PostalPlace,
		addr.Municipality,
		manager,
		industry,
		employees,
		rec.Email,
		rec.Phone,
		rec.Website,
	}
}
