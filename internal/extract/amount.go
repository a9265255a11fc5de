package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Confidence constants are fixed per pattern tier, not learned scores.
const (
	ConfidenceCurrency = 0.9
	ConfidenceGeneric  = 0.7
	ConfidenceCountry  = 0.9
)

// AmountInfo is a recognized monetary amount with its currency tag.
// Currency is "UNKNOWN" when only the generic numeric tier matched.
type AmountInfo struct {
	Amount     float64
	Currency   string
	Confidence float64
	Matched    string
}

// CountryInfo is a recognized destination country.
type CountryInfo struct {
	Country    string
	Confidence float64
	Matched    string
}

type amountPattern struct {
	currency string
	re       *regexp.Regexp
}

// Currency-specific patterns are tried in order; the first match wins with
// confidence 0.9. RD$ outranks the bare $ pattern so Dominican amounts do
// not read as USD; "pesos peruanos" maps to soles on purpose.
var amountPatterns = []amountPattern{
	{"DOP", regexp.MustCompile(`rd\$?\s?(\d+(?:\.\d{1,2})?)`)},
	{"DOP", regexp.MustCompile(`(\d+(?:\.\d{1,2})?)\s*pesos?\s*dominican`)},
	{"USD", regexp.MustCompile(`\$(\d+(?:\.\d{1,2})?)`)},
	{"USD", regexp.MustCompile(`(\d+(?:\.\d{1,2})?)\s*(?:usd|dollars?|d[oó]lares?|d[oó]lar)`)},
	{"PEN", regexp.MustCompile(`(\d+(?:\.\d{1,2})?)\s*(?:soles?|pen\b|sol\b)`)},
	{"PEN", regexp.MustCompile(`(\d+(?:\.\d{1,2})?)\s*pesos?\s*peruan`)},
	{"COP", regexp.MustCompile(`(\d+(?:\.\d{1,2})?)\s*(?:cop\b|pesos?\s*colombian)`)},
	{"CLP", regexp.MustCompile(`(\d+(?:\.\d{1,2})?)\s*(?:clp\b|pesos?\s*chilen)`)},
}

var genericAmountRe = regexp.MustCompile(`(\d+(?:\.\d{1,2})?)`)

// ExtractAmount pulls an amount and currency out of free text. Currency
// patterns are tried first; a bare number falls through to the generic tier
// with lower confidence and currency UNKNOWN. Returns nil when no positive
// number is present.
func ExtractAmount(text string) *AmountInfo {
	lower := strings.ReplaceAll(strings.ToLower(text), ",", "")

	for _, p := range amountPatterns {
		m := p.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		amount, err := strconv.ParseFloat(m[1], 64)
		if err != nil || amount <= 0 {
			continue
		}
		return &AmountInfo{
			Amount:     amount,
			Currency:   p.currency,
			Confidence: ConfidenceCurrency,
			Matched:    m[0],
		}
	}

	m := genericAmountRe.FindStringSubmatch(lower)
	if m != nil {
		amount, err := strconv.ParseFloat(m[1], 64)
		if err == nil && amount > 0 {
			return &AmountInfo{
				Amount:     amount,
				Currency:   "UNKNOWN",
				Confidence: ConfidenceGeneric,
				Matched:    m[0],
			}
		}
	}

	return nil
}

// CurrencyForCountry resolves the UNKNOWN currency of a generic match to
// the local currency of a known destination.
func CurrencyForCountry(country string) string {
	switch strings.ToLower(country) {
	case "dominican":
		return "DOP"
	case "peru":
		return "PEN"
	case "colombia":
		return "COP"
	case "chile":
		return "CLP"
	default:
		return "USD"
	}
}
