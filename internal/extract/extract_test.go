package extract

import (
	"reflect"
	"testing"
)

func TestExtractAmountCurrencyPatterns(t *testing.T) {
	tests := []struct {
		text     string
		amount   float64
		currency string
	}{
		{"$500 USD", 500, "USD"},
		{"quiero enviar 300 dólares", 300, "USD"},
		{"500 soles", 500, "PEN"},
		{"rd$2500", 2500, "DOP"},
		{"15000 pesos dominicanos", 15000, "DOP"},
		{"90000 pesos chilenos", 90000, "CLP"},
		{"200000 cop", 200000, "COP"},
	}

	for _, tt := range tests {
		got := ExtractAmount(tt.text)
		if got == nil {
			t.Fatalf("ExtractAmount(%q) = nil", tt.text)
		}
		if got.Amount != tt.amount || got.Currency != tt.currency {
			t.Errorf("ExtractAmount(%q) = %v %s, want %v %s", tt.text, got.Amount, got.Currency, tt.amount, tt.currency)
		}
		if got.Confidence != ConfidenceCurrency {
			t.Errorf("ExtractAmount(%q) confidence = %v, want %v", tt.text, got.Confidence, ConfidenceCurrency)
		}
	}
}

func TestExtractAmountGenericFallback(t *testing.T) {
	got := ExtractAmount("quiero enviar 5000 pesos")
	if got == nil {
		t.Fatal("ExtractAmount = nil")
	}
	if got.Amount != 5000 || got.Currency != "UNKNOWN" {
		t.Errorf("got %v %s, want 5000 UNKNOWN", got.Amount, got.Currency)
	}
	if got.Confidence != ConfidenceGeneric {
		t.Errorf("confidence = %v, want %v", got.Confidence, ConfidenceGeneric)
	}
}

func TestExtractAmountStripsThousandsSeparators(t *testing.T) {
	got := ExtractAmount("envío 15,000")
	if got == nil || got.Amount != 15000 {
		t.Fatalf("ExtractAmount = %+v, want amount 15000", got)
	}
}

func TestExtractAmountNone(t *testing.T) {
	if got := ExtractAmount("hola buenos días"); got != nil {
		t.Errorf("ExtractAmount = %+v, want nil", got)
	}
}

func TestExtractCountry(t *testing.T) {
	tests := []struct {
		text    string
		country string
	}{
		{"Envío desde Santo Domingo", "dominican"},
		{"desde república dominicana", "dominican"},
		{"soy peruano", "peru"},
		{"desde Lima", "peru"},
		{"envío desde Quito", "ecuador"},
		{"desde Bogotá", "colombia"},
		{"desde Chile", "chile"},
	}
	for _, tt := range tests {
		got := ExtractCountry(tt.text)
		if got == nil {
			t.Fatalf("ExtractCountry(%q) = nil", tt.text)
		}
		if got.Country != tt.country {
			t.Errorf("ExtractCountry(%q) = %s, want %s", tt.text, got.Country, tt.country)
		}
		if got.Confidence != ConfidenceCountry {
			t.Errorf("ExtractCountry(%q) confidence = %v", tt.text, got.Confidence)
		}
	}
}

func TestExtractCountryTieBreakOrder(t *testing.T) {
	// Both dominican and peru aliases present: the table order decides.
	got := ExtractCountry("desde república dominicana o perú")
	if got == nil || got.Country != "dominican" {
		t.Fatalf("ExtractCountry = %+v, want dominican first", got)
	}
}

func TestExtractCountryNone(t *testing.T) {
	if got := ExtractCountry("quiero enviar dinero"); got != nil {
		t.Errorf("ExtractCountry = %+v, want nil", got)
	}
}

func TestKeywordPredicates(t *testing.T) {
	if !IsPhysicalDeliveryRequest("quiero dólares físicos") {
		t.Error("physical delivery keyword not detected")
	}
	if !IsSendMoneyRequest("quiero enviar dinero a Venezuela") {
		t.Error("send money keyword not detected")
	}
	if !HasEscalationKeyword("quiero hablar con un gerente") {
		t.Error("escalation keyword not detected")
	}
	if HasEscalationKeyword("quiero enviar dinero") {
		t.Error("false escalation detection")
	}
	if !IsNetAmountIntent("que reciba 900 exactos") {
		t.Error("net amount intent not detected")
	}
	if !IsKYCCompletionClaim("ya está completado") {
		t.Error("kyc completion claim not detected")
	}
	if !IsRateRequest("¿cuál es la tasa de hoy?") {
		t.Error("rate request not detected")
	}
}

func TestConfirmationWords(t *testing.T) {
	if !IsAffirmative("Sí") {
		t.Error("affirmative not detected")
	}
	if !IsAffirmative("confirmo que soy el titular") {
		t.Error("affirmative phrase not detected")
	}
	if !IsNegative("no") {
		t.Error("negative not detected")
	}
	if IsNegative("bueno") {
		t.Error("substring false positive for negative")
	}
}

func TestMenuChoice(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"1", 1}, {" 2 ", 2}, {"3", 3}, {"4", 0}, {"uno", 0}, {"opción 1", 0},
	}
	for _, tt := range tests {
		if got := MenuChoice(tt.text); got != tt.want {
			t.Errorf("MenuChoice(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestReceiptLooksSigned(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Juan Pérez 1234", true},
		{"comprobante firmado", true},
		{"aquí está el comprobante", false},
		{"1234", false},
	}
	for _, tt := range tests {
		if got := ReceiptLooksSigned(tt.text); got != tt.want {
			t.Errorf("ReceiptLooksSigned(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestParseBeneficiaryPhysicalMissingAddress(t *testing.T) {
	info := ParseBeneficiary("Juan Pérez, cédula 12345678, teléfono 04141234567", true)
	if info.Complete {
		t.Fatal("expected incomplete submission")
	}
	want := []string{FieldAddress}
	if !reflect.DeepEqual(info.MissingFields, want) {
		t.Errorf("missing = %v, want %v", info.MissingFields, want)
	}
}

func TestParseBeneficiaryPhysicalComplete(t *testing.T) {
	text := "Nombre y Apellido: María González\nCédula: 23456789\nTeléfono: 04245556677\nDirección: Av. Bolívar, Edificio Roca, Caracas"
	info := ParseBeneficiary(text, true)
	if !info.Complete {
		t.Fatalf("expected complete, missing %v", info.MissingFields)
	}
	if info.Name != "María González" {
		t.Errorf("name = %q", info.Name)
	}
	if info.Address == "" {
		t.Error("address empty")
	}
}

func TestParseBeneficiaryBank(t *testing.T) {
	text := "Nombre: Pedro Díaz\nCédula: 9876543\nCuenta: 01020123456789012345\nMonto: 10599.55"
	info := ParseBeneficiary(text, false)
	if !info.Complete {
		t.Fatalf("expected complete, missing %v", info.MissingFields)
	}
	if info.Account != "01020123456789012345" {
		t.Errorf("account = %q", info.Account)
	}

	partial := ParseBeneficiary("Pedro Díaz, cédula 9876543", false)
	want := []string{FieldAccount, FieldAmount}
	if !reflect.DeepEqual(partial.MissingFields, want) {
		t.Errorf("missing = %v, want %v", partial.MissingFields, want)
	}
}
