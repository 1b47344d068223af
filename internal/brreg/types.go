// Package brreg provides a client for the Norwegian Brønnøysundregistrene
// Enhetsregisteret API: unit listings, single units and role payloads.
package brreg

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Company represents a Norwegian business entity (Enhet)
type Company struct {
	OrganizationNumber string            `json:"organisasjonsnummer"`
	Name               string            `json:"navn,omitempty"`
	OrganizationForm   *OrganizationForm `json:"organisasjonsform,omitempty"`
	RegistrationDate   string            `json:"registreringsdatoEnhetsregisteret,omitempty"`
	FoundedDate        string            `json:"stiftelsesdato,omitempty"`

	// Addresses
	PostalAddress   *Address `json:"postadresse,omitempty"`
	BusinessAddress *Address `json:"forretningsadresse,omitempty"`

	// Registration status
	RegisteredInVAT      bool `json:"registrertIMvaregisteret,omitempty"`
	RegisteredInBusiness bool `json:"registrertIForetaksregisteret,omitempty"`

	// Industry codes
	IndustryCode1 *IndustryCode `json:"naeringskode1,omitempty"`
	IndustryCode2 *IndustryCode `json:"naeringskode2,omitempty"`
	IndustryCode3 *IndustryCode `json:"naeringskode3,omitempty"`

	// Capital information (for AS, ASA)
	Capital *Capital `json:"kapital,omitempty"`

	EmployeeCount int `json:"antallAnsatte,omitempty"`

	// Contact
	Email   string `json:"epostadresse,omitempty"`
	Phone   string `json:"telefon,omitempty"`
	Mobile  string `json:"mobil,omitempty"`
	Website string `json:"hjemmeside,omitempty"`
}

// CapitalAmount returns the registered share capital, or 0 when absent.
func (c *Company) CapitalAmount() float64 {
	if c.Capital == nil {
		return 0
	}
	return c.Capital.Amount
}

// PrimaryIndustryCode returns the trimmed naeringskode1 code, or "" when absent.
func (c *Company) PrimaryIndustryCode() string {
	if c.IndustryCode1 == nil {
		return ""
	}
	return strings.TrimSpace(c.IndustryCode1.Code)
}

// OrganizationForm represents the type of organization (AS, ENK, etc.)
type OrganizationForm struct {
	Code        string `json:"kode,omitempty"`
	Description string `json:"beskrivelse,omitempty"`
}

// Address represents a Norwegian address
type Address struct {
	AddressLines       []string `json:"adresse,omitempty"`
	PostalCode         string   `json:"postnummer,omitempty"`
	PostalPlace        string   `json:"poststed,omitempty"`
	Municipality       string   `json:"kommune,omitempty"`
	MunicipalityNumber string   `json:"kommunenummer,omitempty"`
	Country            string   `json:"land,omitempty"`
	CountryCode        string   `json:"landkode,omitempty"`
}

// IndustryCode represents a NACE industry classification code
type IndustryCode struct {
	Code        string `json:"kode,omitempty"`
	Description string `json:"beskrivelse,omitempty"`
}

// Capital represents share capital information
type Capital struct {
	Amount     float64 `json:"belop,omitempty"`
	Currency   string  `json:"valuta,omitempty"`
	ShareCount int     `json:"antallAksjer,omitempty"`
	Type       string  `json:"type,omitempty"`
	Bound      float64 `json:"bundet,omitempty"`
	PaidIn     float64 `json:"innbetalt,omitempty"`
	FullyPaid  bool    `json:"fulltInnbetalt,omitempty"`
}

// Link is a HAL link
type Link struct {
	Href string `json:"href,omitempty"`
}

// Links are the navigation links of a listing page
type Links struct {
	Self  *Link `json:"self,omitempty"`
	First *Link `json:"first,omitempty"`
	Prev  *Link `json:"prev,omitempty"`
	Next  *Link `json:"next,omitempty"`
	Last  *Link `json:"last,omitempty"`
}

// SearchResponse represents one page of the unit listing
type SearchResponse struct {
	Embedded struct {
		Companies []Company `json:"enheter"`
	} `json:"_embedded"`
	Links *Links   `json:"_links,omitempty"`
	Page  PageInfo `json:"page"`
}

// PageInfo contains pagination metadata
type PageInfo struct {
	Number        int `json:"number"`
	Size          int `json:"size"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
}

// APIError represents an error body from the Brønnøysund API
type APIError struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
}

func (e APIError) String() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// Role payloads are loosely shaped: fields may be missing or carry an
// unexpected JSON type. Decoding never fails on such fields; they are
// normalized to their zero value instead.

// RolesResponse represents the response from the roles endpoint
type RolesResponse struct {
	RoleGroups []RoleGroup `json:"rollegrupper"`
}

// UnmarshalJSON decodes role groups one by one, skipping malformed entries.
func (r *RolesResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		if isJSONNull(data) {
			return nil
		}
		return err
	}
	r.RoleGroups = decodeEach[RoleGroup](raw["rollegrupper"])
	return nil
}

// RoleGroup represents a group of related roles
type RoleGroup struct {
	Type         RoleType `json:"type"`
	LastModified string   `json:"sistEndret,omitempty"`
	Roles        []Role   `json:"roller"`
}

// UnmarshalJSON decodes a role group, tolerating wrong-typed fields.
func (g *RoleGroup) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = RoleGroup{
		Type:         decodeOrZero[RoleType](raw["type"]),
		LastModified: string(decodeOrZero[FlexString](raw["sistEndret"])),
		Roles:        decodeEach[Role](raw["roller"]),
	}
	return nil
}

// RoleType represents the type of role
type RoleType struct {
	Code        FlexString `json:"kode,omitempty"`
	Description FlexString `json:"beskrivelse,omitempty"`
}

// Role represents an individual role (board member, CEO, etc.)
type Role struct {
	Type         RoleType    `json:"type"`
	Person       *Person     `json:"person,omitempty"`
	Entity       *RoleEntity `json:"enhet,omitempty"`
	Resigned     bool        `json:"fratraadt,omitempty"`
	Deregistered bool        `json:"avregistrert,omitempty"`
	Order        int         `json:"rekkefolge,omitempty"`
}

// UnmarshalJSON decodes a role; a person or entity block of the wrong shape
// is treated as absent.
func (r *Role) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Role{
		Type:         decodeOrZero[RoleType](raw["type"]),
		Resigned:     decodeOrZero[bool](raw["fratraadt"]),
		Deregistered: decodeOrZero[bool](raw["avregistrert"]),
		Order:        decodeOrZero[int](raw["rekkefolge"]),
	}
	if p, ok := decodeObject[Person](raw["person"]); ok {
		r.Person = p
	}
	if e, ok := decodeObject[RoleEntity](raw["enhet"]); ok {
		r.Entity = e
	}
	return nil
}

// Person represents a natural person in a role. The name is usually a
// structured object, but some payloads carry it as a plain string or repeat
// the parts directly on the person.
type Person struct {
	Name       PersonName `json:"navn"`
	FirstName  FlexString `json:"fornavn,omitempty"`
	MiddleName FlexString `json:"mellomnavn,omitempty"`
	LastName   FlexString `json:"etternavn,omitempty"`
	BirthDate  FlexString `json:"fodselsdato,omitempty"`
	Deceased   FlexBool   `json:"erDoed,omitempty"`
}

// NameKind tags which shape a PersonName was decoded from.
type NameKind int

const (
	// NameAbsent covers a missing or null name and any unexpected JSON type.
	NameAbsent NameKind = iota
	// NameStructured is an object with fornavn/mellomnavn/etternavn.
	NameStructured
	// NamePlain is a plain string.
	NamePlain
)

// PersonName is the canonical form of a person's name field.
type PersonName struct {
	Kind       NameKind
	FirstName  string
	MiddleName string
	LastName   string
	Plain      string
}

// UnmarshalJSON normalizes an object, a string, or anything else into PersonName.
func (n *PersonName) UnmarshalJSON(data []byte) error {
	*n = PersonName{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '{':
		var parts struct {
			FirstName  FlexString `json:"fornavn"`
			MiddleName FlexString `json:"mellomnavn"`
			LastName   FlexString `json:"etternavn"`
		}
		if err := json.Unmarshal(data, &parts); err != nil {
			return nil
		}
		n.Kind = NameStructured
		n.FirstName = string(parts.FirstName)
		n.MiddleName = string(parts.MiddleName)
		n.LastName = string(parts.LastName)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		n.Kind = NamePlain
		n.Plain = s
	}
	return nil
}

// MarshalJSON writes the name back in the shape it was read from.
func (n PersonName) MarshalJSON() ([]byte, error) {
	switch n.Kind {
	case NameStructured:
		return json.Marshal(map[string]string{
			"fornavn":    n.FirstName,
			"mellomnavn": n.MiddleName,
			"etternavn":  n.LastName,
		})
	case NamePlain:
		return json.Marshal(n.Plain)
	default:
		return []byte("null"), nil
	}
}

// FullName joins the structured name parts with single spaces, skipping empty parts
func (n PersonName) FullName() string {
	return joinNonEmpty(n.FirstName, n.MiddleName, n.LastName)
}

// FlatName joins the person's direct name fields
func (p *Person) FlatName() string {
	return joinNonEmpty(string(p.FirstName), string(p.MiddleName), string(p.LastName))
}

// RoleEntity represents an organization holding a role
type RoleEntity struct {
	OrganizationNumber FlexString        `json:"organisasjonsnummer,omitempty"`
	OrganizationForm   *OrganizationForm `json:"organisasjonsform,omitempty"`
	Name               EntityName        `json:"navn,omitempty"`
}

// EntityName is an organization name sent either as a string or as a list of lines.
type EntityName []string

// UnmarshalJSON accepts a string or an array of strings; other shapes decode as empty.
func (e *EntityName) UnmarshalJSON(data []byte) error {
	*e = nil
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "" {
			*e = EntityName{s}
		}
		return nil
	}
	var list []FlexString
	if err := json.Unmarshal(data, &list); err == nil {
		for _, part := range list {
			*e = append(*e, string(part))
		}
	}
	return nil
}

// String joins list-form names with commas.
func (e EntityName) String() string {
	return strings.Join(e, ",")
}

// FlexString decodes a JSON string; any other JSON type decodes as "".
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		*s = ""
		return nil
	}
	*s = FlexString(v)
	return nil
}

// FlexBool decodes a JSON bool; any other JSON type decodes as false.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		*b = false
		return nil
	}
	*b = FlexBool(v)
	return nil
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// decodeEach decodes a JSON array element by element, dropping elements that fail.
func decodeEach[T any](raw json.RawMessage) []T {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err == nil {
			out = append(out, v)
		}
	}
	return out
}

func decodeOrZero[T any](raw json.RawMessage) T {
	var v T
	if len(raw) == 0 {
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero
	}
	return v
}

// decodeObject decodes raw only when it is a JSON object.
func decodeObject[T any](raw json.RawMessage) (*T, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return &v, true
}

func isJSONNull(data []byte) bool {
	return string(bytes.TrimSpace(data)) == "null"
}
