package extract

import "strings"

type countryAliases struct {
	country string
	aliases []string
}

// Alias tables are checked in slice order and the first containment match
// wins; within a country, longer aliases come first so "república
// dominicana" wins over "rd". This order is the deliberate tie-break
// policy, not an iteration accident.
var countryTable = []countryAliases{
	{"dominican", []string{
		"república dominicana",
		"republica dominicana",
		"dominican republic",
		"santo domingo",
		"dominicana",
		"dominican",
		"rep. dom",
		"rep dom",
		"rd",
	}},
	{"peru", []string{"peruano", "peruana", "perú", "peru", "lima"}},
	{"ecuador", []string{"ecuatoriano", "ecuatoriana", "ecuador", "quito"}},
	{"colombia", []string{"colombiano", "colombiana", "colombia", "bogotá", "bogota"}},
	{"chile", []string{"chileno", "chilena", "chile", "santiago"}},
}

// ExtractCountry recognizes a destination country from its name, capital,
// or demonym via case-insensitive substring containment. Confidence is a
// fixed 0.9 for any match.
func ExtractCountry(text string) *CountryInfo {
	lower := strings.ToLower(text)
	for _, entry := range countryTable {
		for _, alias := range entry.aliases {
			if strings.Contains(lower, alias) {
				return &CountryInfo{
					Country:    entry.country,
					Confidence: ConfidenceCountry,
					Matched:    alias,
				}
			}
		}
	}
	return nil
}

// SupportedCountries lists the destinations in tie-break priority order.
func SupportedCountries() []string {
	out := make([]string, len(countryTable))
	for i, entry := range countryTable {
		out[i] = entry.country
	}
	return out
}
