package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tecnoinversiones/remesabot/internal/rates"
)

// PhysicalDeliveryFee is the flat fee fraction for hand-delivered cash.
const PhysicalDeliveryFee = 0.10

// ErrInvalidAmount signals a non-positive monetary input.
var ErrInvalidAmount = errors.New("invalid amount")

// Quote prices a bank or cash transfer at the daily rate.
type Quote struct {
	Rate           float64
	ReceivedAmount float64
	Country        string
}

// DeliveryQuote prices a physical cash delivery with the flat fee.
type DeliveryQuote struct {
	AmountToSend    float64
	AmountToReceive float64
	FeeAmount       float64
	FeePercentage   float64
}

// ConversionTable maps a country to its approximate USD-to-local-currency
// multiplier. These are known-stale constants, not a live FX feed; a live
// provider replaces the table without touching the calculator.
type ConversionTable map[string]float64

// DefaultConversions returns the stock approximation table. Ecuador is
// absent because it transacts in USD.
func DefaultConversions() ConversionTable {
	return ConversionTable{
		"dominican": 58.5,
		"peru":      3.7,
		"colombia":  4200,
		"chile":     900,
	}
}

// Calculator turns amounts into priced quotes. It is stateless beyond its
// injected rate provider and conversion table.
type Calculator struct {
	Rates       *rates.Provider
	Conversions ConversionTable
}

func NewCalculator(p *rates.Provider, conv ConversionTable) *Calculator {
	if conv == nil {
		conv = DefaultConversions()
	}
	return &Calculator{Rates: p, Conversions: conv}
}

// CalculateRate prices a bank/cash transfer against the daily table.
func (c *Calculator) CalculateRate(amount float64, country string) (Quote, error) {
	if amount <= 0 {
		return Quote{}, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	res, err := c.Rates.Lookup(amount, country)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Rate: res.Rate, ReceivedAmount: res.ReceivedAmount, Country: country}, nil
}

// CalculatePhysicalDelivery prices hand-delivered cash at the flat 10% fee.
// With wantsNetAmount the given amount is what the recipient must net, so
// the total to send is grossed up by 1/(1-fee).
func (c *Calculator) CalculatePhysicalDelivery(amount float64, wantsNetAmount bool) (DeliveryQuote, error) {
	if amount <= 0 {
		return DeliveryQuote{}, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	var q DeliveryQuote
	q.FeePercentage = PhysicalDeliveryFee
	if wantsNetAmount {
		q.AmountToReceive = round2(amount)
		q.AmountToSend = round2(amount / (1 - PhysicalDeliveryFee))
		q.FeeAmount = round2(q.AmountToSend - amount)
	} else {
		q.AmountToSend = round2(amount)
		q.FeeAmount = round2(amount * PhysicalDeliveryFee)
		q.AmountToReceive = round2(amount - q.FeeAmount)
	}
	return q, nil
}

// ConvertToLocalCurrency approximates a USD amount in a country's local
// currency. Countries without an entry (Ecuador) pass through unchanged.
func (c *Calculator) ConvertToLocalCurrency(usdAmount float64, country string) float64 {
	if mult, ok := c.Conversions[strings.ToLower(country)]; ok {
		return round2(usdAmount * mult)
	}
	return usdAmount
}

// KYC thresholds. Dominican amounts are in local pesos; every other country
// is gated on the USD-equivalent value.
const (
	kycThresholdDominican = 20000
	kycThresholdUSD       = 300
)

// CheckKYCRequired reports whether an amount crosses the compliance gate
// for a country. This is a hard gate: the flow must route to identity
// verification before any transfer instructions when it returns true.
func (c *Calculator) CheckKYCRequired(amount float64, country string) bool {
	if strings.ToLower(country) == "dominican" {
		return amount > kycThresholdDominican
	}
	return amount > kycThresholdUSD
}

// FormatCurrency renders an amount in a country's display convention.
func FormatCurrency(amount float64, country string) string {
	switch strings.ToLower(country) {
	case "dominican":
		return fmt.Sprintf("RD$%s", formatNumber(amount))
	case "peru":
		return fmt.Sprintf("%s soles", formatNumber(amount))
	case "colombia":
		return fmt.Sprintf("$%s COP", formatNumber(amount))
	case "chile":
		return fmt.Sprintf("$%s CLP", formatNumber(amount))
	default:
		return fmt.Sprintf("$%s USD", formatNumber(amount))
	}
}

// LocalCurrencyName returns the spoken name of a country's currency.
func LocalCurrencyName(country string) string {
	switch strings.ToLower(country) {
	case "dominican":
		return "pesos dominicanos"
	case "peru":
		return "soles"
	case "colombia":
		return "pesos colombianos"
	case "chile":
		return "pesos chilenos"
	default:
		return "dólares"
	}
}

// CountryDisplayName returns the Spanish display name of a destination.
func CountryDisplayName(country string) string {
	switch strings.ToLower(country) {
	case "dominican":
		return "República Dominicana"
	case "peru":
		return "Perú"
	case "ecuador":
		return "Ecuador"
	case "colombia":
		return "Colombia"
	case "chile":
		return "Chile"
	default:
		return country
	}
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return addThousands(fmt.Sprintf("%.0f", v))
	}
	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	return addThousands(s[:dot]) + s[dot:]
}

func addThousands(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	n := len(digits)
	if n <= 3 {
		if neg {
			return "-" + digits
		}
		return digits
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	first := n % 3
	if first > 0 {
		b.WriteString(digits[:first])
	}
	for i := first; i < n; i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
