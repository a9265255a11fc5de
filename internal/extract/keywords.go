package extract

import (
	"regexp"
	"strings"
)

// Keyword rule tables. Matching is case-insensitive substring containment;
// each table is exported through a predicate so the tables stay data and
// the control flow stays in the callers.

var physicalKeywords = []string{
	"dólares físicos",
	"dolares fisicos",
	"physical dollars",
	"entrega en efectivo",
	"entregar efectivo",
	"entrega física",
	"entrega fisica",
	"physical delivery",
	"cash delivery",
	"dólares en mano",
	"dollars in hand",
	"efectivo",
	"cash",
}

var sendMoneyKeywords = []string{
	"enviar dinero",
	"mandar dinero",
	"send money",
	"transferir",
	"transfer",
	"digital",
	"online",
}

var escalationKeywords = []string{
	"supervisor",
	"manager",
	"gerente",
	"jefe",
	"director",
}

var netAmountKeywords = []string{
	"que reciba",
	"que le llegue",
	"reciba",
	"receive",
	"exacto",
	"exactly",
	"en mano",
}

var receiptKeywords = []string{
	"comprobante",
	"recibo",
	"receipt",
	"voucher",
	"transferencia",
	"depósito",
	"deposito",
	"pago",
	"payment",
	"transacción",
	"transferí",
	"deposité",
	"pagué",
	"sent",
	"transferred",
	"firmado",
	"signed",
}

var signedKeywords = []string{"firmado", "signed", "firma", "signature"}

var yesKeywords = []string{"si", "sí", "yes", "confirmo", "correcto", "claro", "ok", "dale", "afirmativo"}

var noKeywords = []string{"no", "nope", "negativo", "incorrecto"}

var kycDoneKeywords = []string{"completado", "verificado", "listo", "done", "terminado"}

var continueKeywords = []string{"si", "sí", "continuar", "continúa", "continua", "seguir", "yes", "continue"}

var rateKeywords = []string{"tasa", "rate", "cambio", "cotización", "cotizacion", "cuanto recibo", "cuánto recibo", "calcular"}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// wordIn matches the whole trimmed message against a word list; used for
// short confirmations where containment would misfire ("no" inside "bueno").
func wordIn(text string, words []string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	lower = strings.TrimRight(lower, ".!¡¿?")
	for _, w := range words {
		if lower == w {
			return true
		}
	}
	return false
}

func IsPhysicalDeliveryRequest(text string) bool { return containsAny(text, physicalKeywords) }
func IsSendMoneyRequest(text string) bool        { return containsAny(text, sendMoneyKeywords) }
func HasEscalationKeyword(text string) bool      { return containsAny(text, escalationKeywords) }
func IsNetAmountIntent(text string) bool         { return containsAny(text, netAmountKeywords) }
func MentionsReceipt(text string) bool           { return containsAny(text, receiptKeywords) }
func IsRateRequest(text string) bool             { return containsAny(text, rateKeywords) }

func IsAffirmative(text string) bool {
	return wordIn(text, yesKeywords) || containsAny(text, []string{"confirmo", "soy el titular", "correcto"})
}

func IsNegative(text string) bool { return wordIn(text, noKeywords) }

func IsKYCCompletionClaim(text string) bool { return containsAny(text, kycDoneKeywords) }

func IsContinueResponse(text string) bool { return wordIn(text, continueKeywords) }

// MenuChoice returns 1, 2 or 3 when the message is exactly that menu
// selection, and 0 otherwise.
func MenuChoice(text string) int {
	switch strings.TrimSpace(text) {
	case "1", "1️⃣":
		return 1
	case "2", "2️⃣":
		return 2
	case "3", "3️⃣":
		return 3
	}
	return 0
}

var (
	nameRe     = regexp.MustCompile(`(?i)[a-záéíóúñ]{2,}\s+[a-záéíóúñ]{2,}`)
	lastFourRe = regexp.MustCompile(`\d{4}`)
)

// ReceiptLooksSigned accepts a receipt claim only when it carries a
// two-token name plus a 4-digit number, or an explicit signed keyword.
func ReceiptLooksSigned(text string) bool {
	if containsAny(text, signedKeywords) {
		return true
	}
	return nameRe.MatchString(text) && lastFourRe.MatchString(text)
}
