package registry

import "strings"

// IndustryCode is a level-2 (division) NACE industry code from the SSB KLASS catalog.
type IndustryCode struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DefaultIncludeIndustryCodes is the include list preselected by the dashboard,
// in priority order.
var DefaultIncludeIndustryCodes = []string{"47", "56", "96", "43", "62"}

var industryCatalog = []IndustryCode{
	{Code: "01", Name: "Jordbruk og tjenester tilknyttet jordbruk, jakt og viltstell"},
	{Code: "02", Name: "Skogbruk og tjenester tilknyttet skogbruk"},
	{Code: "03", Name: "Fiske, fangst og akvakultur"},
	{Code: "05", Name: "Bryting av steinkull og brunkull"},
	{Code: "06", Name: "Utvinning av råolje og naturgass"},
	{Code: "07", Name: "Bryting av metallholdig malm"},
	{Code: "08", Name: "Bryting og bergverksdrift ellers"},
	{Code: "09", Name: "Tjenester tilknyttet bergverksdrift og utvinning"},
	{Code: "10", Name: "Produksjon av nærings- og nytelsesmidler"},
	{Code: "11", Name: "Produksjon av drikkevarer"},
	{Code: "12", Name: "Produksjon av tobakksvarer"},
	{Code: "13", Name: "Produksjon av tekstiler"},
	{Code: "14", Name: "Produksjon av klær"},
	{Code: "15", Name: "Produksjon av lær og andre relaterte produkter"},
	{Code: "16", Name: "Produksjon av trelast og varer av tre, kork, strå og flettematerialer, unntatt møbler"},
	{Code: "17", Name: "Produksjon av papir og papirvarer"},
	{Code: "18", Name: "Trykking og reproduksjon av innspilte opptak"},
	{Code: "19", Name: "Produksjon av kullprodukter og raffinerte petroleumsprodukter"},
	{Code: "20", Name: "Produksjon av kjemikalier og kjemiske produkter"},
	{Code: "21", Name: "Produksjon av farmasøytiske råvarer og preparater"},
	{Code: "22", Name: "Produksjon av gummi- og plastprodukter"},
	{Code: "23", Name: "Produksjon av andre ikke-metalliske mineralprodukter"},
	{Code: "24", Name: "Produksjon av metaller"},
	{Code: "25", Name: "Produksjon av metallvarer, unntatt maskiner og utstyr"},
	{Code: "26", Name: "Produksjon av datamaskiner og elektroniske og optiske produkter"},
	{Code: "27", Name: "Produksjon av elektrisk utstyr"},
	{Code: "28", Name: "Produksjon av maskiner og utstyr ikke nevnt annet sted"},
	{Code: "29", Name: "Produksjon av motorvogner og tilhengere"},
	{Code: "30", Name: "Produksjon av andre transportmidler"},
	{Code: "31", Name: "Produksjon av møbler"},
	{Code: "32", Name: "Annen industriproduksjon"},
	{Code: "33", Name: "Reparasjon, vedlikehold og installasjon av maskiner og utstyr"},
	{Code: "35", Name: "Forsyning av elektrisitet, gass, damp og kjøleluft"},
	{Code: "36", Name: "Uttak fra kilde, rensing og distribusjon av vann"},
	{Code: "37", Name: "Oppsamling og behandling av avløpsvann"},
	{Code: "38", Name: "Innsamling, gjenvinning og behandling av avfall"},
	{Code: "39", Name: "Miljøutbedring, opprydding og lignende aktivitet"},
	{Code: "41", Name: "Oppføring av bygninger"},
	{Code: "42", Name: "Anleggsvirksomhet"},
	{Code: "43", Name: "Spesialisert bygge- og anleggsvirksomhet"},
	{Code: "46", Name: "Engroshandel"},
	{Code: "47", Name: "Detaljhandel"},
	{Code: "49", Name: "Landtransport og rørtransport"},
	{Code: "50", Name: "Sjøfart"},
	{Code: "51", Name: "Lufttransport"},
	{Code: "52", Name: "Lagring og andre tjenester tilknyttet transport"},
	{Code: "53", Name: "Post- og budtjenester"},
	{Code: "55", Name: "Overnattingsvirksomhet"},
	{Code: "56", Name: "Serveringsvirksomhet"},
	{Code: "58", Name: "Utgivelsesvirksomhet"},
	{Code: "59", Name: "Film-, video- og fjernsynsprogramproduksjon, utgivelse av musikk- og lydopptak"},
	{Code: "60", Name: "Radio- og fjernsynsprogramvirksomhet, kringkasting, nyhetsbyråer og distribuering av annet innhold"},
	{Code: "61", Name: "Telekommunikasjon"},
	{Code: "62", Name: "Dataprogrammering, konsulentvirksomhet og andre tjenester tilknyttet informasjonsteknologi"},
	{Code: "63", Name: "Datainfrastruktur, -behandling, -lagring og andre informasjonstjenester"},
	{Code: "64", Name: "Finansieringsvirksomhet og kollektive investeringsfond"},
	{Code: "65", Name: "Forsikringsvirksomhet, unntatt trygdeordninger underlagt offentlig forvaltning"},
	{Code: "66", Name: "Tjenester tilknyttet finansiell virksomhet"},
	{Code: "68", Name: "Eiendomsvirksomhet"},
	{Code: "69", Name: "Juridisk og regnskapsmessig tjenesteyting"},
	{Code: "70", Name: "Hovedkontortjenester og administrativ rådgivning"},
	{Code: "71", Name: "Arkitektvirksomhet og teknisk konsulentvirksomhet, og teknisk prøving og analyse"},
	{Code: "72", Name: "Forskning og eksperimentell utvikling"},
	{Code: "73", Name: "Annonse- og reklamevirksomhet, markedsundersøkelser og PR og kommunikasjonstjenester"},
	{Code: "74", Name: "Annen faglig, vitenskapelig og teknisk virksomhet"},
	{Code: "75", Name: "Veterinærtjenester"},
	{Code: "77", Name: "Utleie- og leasingvirksomhet"},
	{Code: "78", Name: "Arbeidskrafttjenester"},
	{Code: "79", Name: "Reisebyrå- og reisearrangørvirksomhet og tilknyttede tjenester"},
	{Code: "80", Name: "Etterforsknings- og vakttjenester"},
	{Code: "81", Name: "Tjenester tilknyttet eiendomsdrift og beplantning av hager og parkanlegg"},
	{Code: "82", Name: "Annen forretningsmessig tjenesteyting"},
	{Code: "84", Name: "Offentlig administrasjon og forsvar, og trygdeordninger underlagt offentlig forvaltning"},
	{Code: "85", Name: "Undervisning"},
	{Code: "86", Name: "Helsetjenester"},
	{Code: "87", Name: "Helse- og omsorgstjenester i institusjoner og andre botilbud"},
	{Code: "88", Name: "Omsorgs- og sosialtjenester uten botilbud"},
	{Code: "90", Name: "Kunstnerisk virksomhet og underholdningsvirksomhet"},
	{Code: "91", Name: "Drift av biblioteker, arkiver, museer og annen kulturvirksomhet"},
	{Code: "92", Name: "Lotteri- og gamblingvirksomhet"},
	{Code: "93", Name: "Sports-, fornøyelses- og fritidsaktiviteter"},
	{Code: "94", Name: "Aktiviteter i medlemsorganisasjoner"},
	{Code: "95", Name: "Reparasjon og vedlikehold av datamaskiner, husholdningsvarer, varer til personlig bruk og motorvogner og motorsykler"},
	{Code: "96", Name: "Personlig tjenesteyting"},
	{Code: "97", Name: "Lønnet arbeid i private husholdninger"},
	{Code: "98", Name: "Annen vareproduksjon og tjenesteyting i private husholdninger til eget bruk"},
}

// IndustryCatalog returns a copy of the level-2 industry catalog.
func IndustryCatalog() []IndustryCode {
	out := make([]IndustryCode, len(industryCatalog))
	copy(out, industryCatalog)
	return out
}

// LookupIndustry returns the catalog entry for the division of code.
// "47.11" resolves to division "47".
func LookupIndustry(code string) (IndustryCode, bool) {
	code = strings.TrimSpace(code)
	if i := strings.Index(code, "."); i >= 0 {
		code = code[:i]
	}
	for _, ic := range industryCatalog {
		if ic.Code == code {
			return ic, true
		}
	}
	return IndustryCode{}, false
}

// SearchIndustries returns catalog entries whose code or name contains query,
// case-insensitively. Codes listed in skip are left out.
func SearchIndustries(query string, skip []string) []IndustryCode {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []IndustryCode{}
	}

	skipped := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		skipped[strings.TrimSpace(s)] = struct{}{}
	}

	matches := make([]IndustryCode, 0)
	for _, ic := range industryCatalog {
		if _, ok := skipped[ic.Code]; ok {
			continue
		}
		if strings.Contains(strings.ToLower(ic.Code), q) || strings.Contains(strings.ToLower(ic.Name), q) {
			matches = append(matches, ic)
		}
	}
	return matches
}
