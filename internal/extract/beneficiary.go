package extract

import (
	"regexp"
	"strings"
)

// Missing-field labels echoed back to the user, in prompt order.
const (
	FieldName    = "Nombre y Apellido"
	FieldCedula  = "Cédula"
	FieldPhone   = "Teléfono de contacto"
	FieldAddress = "Dirección de entrega"
	FieldAccount = "Número de Cuenta"
	FieldAmount  = "Monto a Entregar"
)

// BeneficiaryInfo is the parsed recipient data. Completeness depends on the
// delivery mode: bank transfers need name/cedula/account/amount, physical
// delivery needs name/cedula/phone/address.
type BeneficiaryInfo struct {
	Name    string
	Cedula  string
	Phone   string
	Address string
	Account string
	Amount  string

	Complete      bool
	MissingFields []string
}

var (
	labeledLineRe = regexp.MustCompile(`(?i)^[\s*#>-]*([^:：]+)[:：]\s*(.+)$`)
	cedulaRe      = regexp.MustCompile(`(?i)c[eé]d(?:ula)?\.?\s*:?\s*([\d.\-]{5,15})`)
	phoneRe       = regexp.MustCompile(`(?i)(?:tel[eé]fono|tel|celular|contacto|whatsapp)\.?\s*:?\s*(\+?[\d\s\-]{7,15})`)
	accountRe     = regexp.MustCompile(`(?i)cuenta\.?\s*:?\s*(\d[\d\s\-]{10,25})`)
	longDigitsRe  = regexp.MustCompile(`\d{20}`)
	addressHintRe = regexp.MustCompile(`(?i)direcci[oó]n|calle|avenida|av\.|urbanizaci[oó]n|sector|edificio|casa\s+n|municipio`)
	amountHintRe  = regexp.MustCompile(`(?i)(?:monto|bol[ií]vares|bs\.?)\s*:?\s*([\d.,]+)`)
	fullNameRe    = regexp.MustCompile(`(?i)^[a-záéíóúñ]{2,}(?:\s+[a-záéíóúñ]{2,}){1,3}$`)
	labelWordRe   = regexp.MustCompile(`(?i)nombre|c[eé]dula|tel[eé]fono|celular|contacto|direcci[oó]n|cuenta|monto|beneficiario`)
)

// ParseBeneficiary pulls recipient fields out of free text. Labeled lines
// ("Campo: valor") are preferred; bare heuristics fill the gaps. Partial
// submissions come back with the exact missing-field labels so the caller
// can echo them and re-prompt in place.
func ParseBeneficiary(text string, physical bool) BeneficiaryInfo {
	var info BeneficiaryInfo

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := labeledLineRe.FindStringSubmatch(line); m != nil {
			assignLabeled(&info, strings.ToLower(strings.Trim(m[1], " *")), strings.TrimSpace(m[2]))
			continue
		}
		for _, seg := range strings.Split(line, ",") {
			seg = strings.TrimSpace(seg)
			if info.Name == "" && fullNameRe.MatchString(seg) && !labelWordRe.MatchString(seg) {
				info.Name = seg
			}
		}
	}

	if info.Cedula == "" {
		if m := cedulaRe.FindStringSubmatch(text); m != nil {
			info.Cedula = strings.TrimSpace(m[1])
		}
	}
	if info.Phone == "" {
		if m := phoneRe.FindStringSubmatch(text); m != nil {
			info.Phone = strings.TrimSpace(m[1])
		}
	}
	if info.Account == "" {
		if m := accountRe.FindStringSubmatch(text); m != nil {
			info.Account = strings.TrimSpace(m[1])
		} else if m := longDigitsRe.FindString(text); m != "" {
			info.Account = m
		}
	}
	if info.Address == "" {
		for _, line := range strings.Split(text, "\n") {
			if addressHintRe.MatchString(line) {
				info.Address = strings.TrimSpace(line)
				break
			}
		}
	}
	if info.Amount == "" {
		if m := amountHintRe.FindStringSubmatch(text); m != nil {
			info.Amount = strings.TrimSpace(m[1])
		}
	}

	if physical {
		info.MissingFields = missing([]fieldCheck{
			{FieldName, info.Name},
			{FieldCedula, info.Cedula},
			{FieldPhone, info.Phone},
			{FieldAddress, info.Address},
		})
	} else {
		info.MissingFields = missing([]fieldCheck{
			{FieldName, info.Name},
			{FieldCedula, info.Cedula},
			{FieldAccount, info.Account},
			{FieldAmount, info.Amount},
		})
	}
	info.Complete = len(info.MissingFields) == 0
	return info
}

type fieldCheck struct {
	label string
	value string
}

func missing(checks []fieldCheck) []string {
	var out []string
	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			out = append(out, c.label)
		}
	}
	return out
}

func assignLabeled(info *BeneficiaryInfo, label, value string) {
	switch {
	case strings.Contains(label, "nombre"):
		info.Name = value
	case strings.Contains(label, "cédula") || strings.Contains(label, "cedula"):
		info.Cedula = value
	case strings.Contains(label, "teléfono") || strings.Contains(label, "telefono") ||
		strings.Contains(label, "celular") || strings.Contains(label, "contacto"):
		info.Phone = value
	case strings.Contains(label, "dirección") || strings.Contains(label, "direccion"):
		info.Address = value
	case strings.Contains(label, "cuenta"):
		info.Account = value
	case strings.Contains(label, "monto"):
		info.Amount = value
	}
}
