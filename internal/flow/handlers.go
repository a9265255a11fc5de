package flow

import (
	"strconv"
	"strings"

	"github.com/tecnoinversiones/remesabot/internal/escalate"
	"github.com/tecnoinversiones/remesabot/internal/extract"
	"github.com/tecnoinversiones/remesabot/internal/intent"
	"github.com/tecnoinversiones/remesabot/internal/money"
	"github.com/tecnoinversiones/remesabot/internal/session"
)

// directPatterns is the first resolution tier: unambiguous keyword and
// amount/country matches that never need the classifier.
func (e *Engine) directPatterns(sess *session.Session, text string) (Turn, bool) {
	amountInfo := extract.ExtractAmount(text)
	countryInfo := extract.ExtractCountry(text)

	// Explicit physical-dollar request from an idle state.
	if extract.IsPhysicalDeliveryRequest(text) && isIdleState(sess.State) {
		return e.physicalRequest(sess, amountInfo, countryInfo, text), true
	}

	// Amount and country in one message: price it immediately.
	if amountInfo != nil && countryInfo != nil && acceptsCombo(sess.State) {
		if sess.Data.PhysicalDelivery {
			return e.physicalRequest(sess, amountInfo, countryInfo, text), true
		}
		return e.quoteCombined(sess, amountInfo, countryInfo), true
	}

	// A bare send-money request restarts the flow at the ownership gate.
	if sess.State == session.StateInitial && extract.IsSendMoneyRequest(text) {
		sess.Data.ResetFlow()
		sess.Data.DeliveryType = session.DeliveryBankTransfer
		return Turn{
			Message:  msgAccountQuestion,
			NewState: session.StateAwaitingConfirmation,
			Intent:   "send_money",
		}, true
	}

	return Turn{}, false
}

func isIdleState(s session.State) bool {
	switch s {
	case session.StateInitial, session.StateSendMoneyStarted, session.StateCashDelivery:
		return true
	}
	return false
}

func acceptsCombo(s session.State) bool {
	switch s {
	case session.StateInitial, session.StateSendMoneyStarted,
		session.StateAwaitingCountry, session.StateAwaitingAmount:
		return true
	}
	return false
}

// stateHandler is the second tier: the input the current state is waiting
// for. Unrecognized input falls through to the classified-intent tier.
func (e *Engine) stateHandler(sess *session.Session, text string) (Turn, bool) {
	switch sess.State {
	case session.StateInitial:
		return e.handleInitial(sess, text)
	case session.StateSendMoneyStarted, session.StateAwaitingCountry:
		return e.handleCountryInput(sess, text)
	case session.StateAwaitingAmount:
		return e.handleAmountInput(sess, text)
	case session.StateAwaitingConfirmation:
		return e.handleAccountConfirmation(sess, text)
	case session.StateAwaitingTransferType:
		return e.handleTransferType(sess, text)
	case session.StateCashDelivery:
		return e.handleCashDelivery(sess, text)
	case session.StateAwaitingBeneficiary:
		return e.handleBeneficiaryInfo(sess, text)
	case session.StateAwaitingReceipt:
		return e.handleReceiptText(sess, text)
	case session.StateKYCRequired:
		return e.handleKYCRequired(sess, text)
	case session.StateDeliveryScheduled:
		return e.handleDeliveryScheduled(sess, text)
	}
	return Turn{}, false
}

var greetingWords = []string{"hola", "hello", "buenos días", "buenas tardes", "buenas noches", "hey", "hi"}

var businessHoursWords = []string{"horario", "business hours", "working hours", "disponible", "abierto", "hours", "available", "open"}

func (e *Engine) handleInitial(sess *session.Session, text string) (Turn, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, w := range greetingWords {
		if strings.Contains(lower, w) {
			sess.Data.ResetFlow()
			return Turn{Message: msgGreeting, NewState: session.StateInitial, Intent: "greeting"}, true
		}
	}
	for _, w := range businessHoursWords {
		if strings.Contains(lower, w) {
			return Turn{Message: msgBusinessHours, Intent: "business_hours"}, true
		}
	}
	if extract.IsRateRequest(text) {
		return e.dailyRates(), true
	}
	return Turn{}, false
}

func (e *Engine) handleCountryInput(sess *session.Session, text string) (Turn, bool) {
	countryInfo := extract.ExtractCountry(text)
	if countryInfo == nil {
		return Turn{}, false
	}
	sess.Data.Country = countryInfo.Country

	if sess.Data.PhysicalDelivery {
		return e.physicalRequest(sess, nil, countryInfo, text), true
	}
	if sess.Data.Amount > 0 {
		// The amount arrived before the country; settle it in local currency
		// now that the destination is known.
		info := &extract.AmountInfo{Amount: sess.Data.Amount, Currency: sess.Data.Currency}
		e.storeAmount(sess, info, countryInfo.Country)
		return e.quoteTransfer(sess), true
	}
	return Turn{
		Message: "¡Excelente! Desde " + money.CountryDisplayName(countryInfo.Country) + " 🌎\n\n" +
			"📝 **Paso 2** - ¿Cuál es el monto aproximado que deseas enviar?",
		NewState: session.StateAwaitingAmount,
		Intent:   "country_detected",
	}, true
}

func (e *Engine) handleAmountInput(sess *session.Session, text string) (Turn, bool) {
	amountInfo := extract.ExtractAmount(text)
	if amountInfo == nil {
		return Turn{}, false
	}

	if sess.Data.PhysicalDelivery {
		return e.physicalRequest(sess, amountInfo, nil, text), true
	}

	country := sess.Data.Country
	if country == "" {
		sess.Data.Amount = amountInfo.Amount
		sess.Data.Currency = amountInfo.Currency
		label := strconv.FormatFloat(amountInfo.Amount, 'f', -1, 64)
		if amountInfo.Currency != "" && amountInfo.Currency != "UNKNOWN" {
			label += " " + amountInfo.Currency
		}
		return Turn{
			Message: "Perfecto, quieres enviar " + label + ".\n\n" +
				"🌎 ¿Desde qué país estás enviando?\n\n" + msgCountryList,
			NewState: session.StateAwaitingCountry,
			Intent:   "amount_detected_need_country",
		}, true
	}

	e.storeAmount(sess, amountInfo, country)
	return e.quoteTransfer(sess), true
}

func (e *Engine) handleAccountConfirmation(sess *session.Session, text string) (Turn, bool) {
	switch {
	case extract.IsAffirmative(text):
		if sess.Data.PhysicalDelivery && sess.Data.Amount > 0 {
			return Turn{
				Message:  msgBeneficiaryPhysicalPrompt,
				NewState: session.StateAwaitingBeneficiary,
				Intent:   "account_confirmed",
			}, true
		}
		if sess.Data.Amount > 0 && sess.Data.Country != "" {
			if t, gated := e.kycGate(sess); gated {
				return t, true
			}
			return Turn{
				Message: "¡Perfecto! 🙌 Confirmado que eres el titular de la cuenta.\n\n" +
					"📝 Ahora, ¿cómo prefieres realizar el pago?\n\n" + msgTransferMenu,
				NewState: session.StateAwaitingTransferType,
				Intent:   "account_confirmed",
			}, true
		}
		return Turn{
			Message:  msgAccountConfirmed,
			NewState: session.StateAwaitingCountry,
			Intent:   "account_confirmed",
		}, true

	case extract.IsNegative(text):
		return Turn{
			Message:  msgAccountWarning,
			NewState: session.StateAwaitingConfirmation,
			Intent:   "account_not_confirmed",
		}, true
	}
	return Turn{}, false
}

func (e *Engine) handleTransferType(sess *session.Session, text string) (Turn, bool) {
	lower := strings.ToLower(text)
	choice := extract.MenuChoice(text)

	switch {
	case choice == 1 || strings.Contains(lower, "transferencia"):
		sess.Data.DeliveryType = session.DeliveryBankTransfer
		return Turn{
			Message:  msgBankInstructions,
			NewState: session.StateAwaitingBeneficiary,
			Intent:   "transfer_instructions",
		}, true

	case choice == 2 || strings.Contains(lower, "depósito") || strings.Contains(lower, "deposito") || strings.Contains(lower, "efectivo"):
		sess.Data.DeliveryType = session.DeliveryCashDeposit
		return Turn{
			Message:  msgDepositInstructions,
			NewState: session.StateAwaitingBeneficiary,
			Intent:   "deposit_instructions",
		}, true

	case choice == 3 || extract.IsPhysicalDeliveryRequest(text):
		sess.Data.SetPhysicalDelivery()
		if sess.Data.Amount > 0 && sess.Data.Country != "" {
			return e.physicalRequest(sess, nil, nil, text), true
		}
		return Turn{
			Message:  msgPhysicalInfo,
			NewState: session.StateAwaitingAmount,
			Intent:   "physical_delivery_info_needed",
		}, true
	}
	return Turn{}, false
}

func (e *Engine) handleCashDelivery(sess *session.Session, text string) (Turn, bool) {
	countryInfo := extract.ExtractCountry(text)
	amountInfo := extract.ExtractAmount(text)
	if countryInfo == nil && amountInfo == nil {
		return Turn{}, false
	}
	return e.physicalRequest(sess, amountInfo, countryInfo, text), true
}

func (e *Engine) handleBeneficiaryInfo(sess *session.Session, text string) (Turn, bool) {
	if extract.MentionsReceipt(text) {
		return e.handleReceiptText(sess, text)
	}

	physical := sess.Data.PhysicalDelivery
	parsed := extract.ParseBeneficiary(text, physical)
	if beneficiaryEmpty(parsed) {
		return Turn{}, false
	}

	mergeBeneficiary(sess, parsed)
	missing := missingFields(sess.Data.Beneficiary, physical)
	if len(missing) > 0 {
		sess.Data.PartialBeneficiary = text
		return Turn{
			Message: formatMissingFields(missing, physical),
			Intent:  "incomplete_beneficiary_data",
		}, true
	}

	sess.Data.BeneficiaryComplete = true
	sess.Data.PartialBeneficiary = ""

	if sess.Data.ReceiptReceived && sess.Data.ReceiptSigned {
		if physical {
			return e.scheduleDelivery(sess), true
		}
		t := Turn{Message: msgTransferComplete, NewState: session.StateInitial, Intent: "transfer_complete"}
		sess.Data.ResetFlow()
		return t, true
	}

	return Turn{
		Message:  msgReceiptRequest,
		NewState: session.StateAwaitingReceipt,
		Intent:   "beneficiary_info_complete",
	}, true
}

func (e *Engine) handleReceiptText(sess *session.Session, text string) (Turn, bool) {
	if !extract.MentionsReceipt(text) && !extract.ReceiptLooksSigned(text) {
		return Turn{}, false
	}
	if !extract.ReceiptLooksSigned(text) {
		return Turn{Message: msgReceiptUnsigned, Intent: "receipt_unsigned"}, true
	}
	return e.receiptAccepted(sess), true
}

func (e *Engine) handleKYCRequired(sess *session.Session, text string) (Turn, bool) {
	if extract.IsKYCCompletionClaim(text) {
		if !e.TrustKYC {
			e.Escalator.Escalate(sess, escalateDecisionKYC())
			return Turn{
				Message:  msgKYCManualReview,
				NewState: session.StateHumanAssistance,
				Intent:   "kyc_manual_review",
			}, true
		}
		sess.Data.KYCCompleted = true
		sess.Data.KYCRequired = false
		return Turn{
			Message:  msgKYCAccepted,
			NewState: session.StateAwaitingTransferType,
			Intent:   "kyc_completed",
		}, true
	}
	return Turn{Message: msgKYCReminder, Intent: "kyc_reminder"}, true
}

var deliveryStatusWords = []string{"estado", "seguimiento", "tracking", "dónde", "donde", "cuándo", "cuando", "llega"}

func (e *Engine) handleDeliveryScheduled(sess *session.Session, text string) (Turn, bool) {
	if extract.IsSendMoneyRequest(text) || extract.IsPhysicalDeliveryRequest(text) {
		sess.Data.ResetFlow()
		return Turn{
			Message:  msgAccountQuestion,
			NewState: session.StateAwaitingConfirmation,
			Intent:   "send_money",
		}, true
	}
	lower := strings.ToLower(text)
	for _, w := range deliveryStatusWords {
		if strings.Contains(lower, w) {
			return Turn{
				Message: formatDeliveryStatus(sess.Data.TrackingNumber, sess.Data.ScheduledDate),
				Intent:  "delivery_status",
			}, true
		}
	}
	return Turn{}, false
}

// generalIntent is the third tier: the classifier's verdict, honored only
// above the dispatch confidence threshold.
func (e *Engine) generalIntent(sess *session.Session, text string, res intent.Result) (Turn, bool) {
	if res.Confidence <= 0.6 {
		return Turn{}, false
	}

	switch res.Intent {
	case "greeting":
		sess.Data.ResetFlow()
		return Turn{Message: msgGreeting, NewState: session.StateInitial, Intent: "greeting"}, true

	case "business_hours":
		return Turn{Message: msgBusinessHours, Intent: "business_hours"}, true

	case "thanks":
		return Turn{Message: msgThanks, Intent: "thanks"}, true

	case "send_money":
		sess.Data.PhysicalDelivery = false
		sess.Data.DeliveryType = session.DeliveryBankTransfer
		if t, ok := e.quoteFromEntities(sess, res.Entities); ok {
			return t, true
		}
		return Turn{
			Message:  msgAccountQuestion,
			NewState: session.StateAwaitingConfirmation,
			Intent:   "send_money",
		}, true

	case "physical_delivery", "cash_delivery":
		return e.physicalRequest(sess, extract.ExtractAmount(text), extract.ExtractCountry(text), text), true

	case "check_rate":
		sess.Data.PhysicalDelivery = false
		return e.rateCheck(sess, text, res.Entities), true

	case "delivery_comparison":
		sess.Data.PhysicalDelivery = false
		return e.deliveryComparison(sess, text), true

	case "account_confirmation":
		if t, ok := e.handleAccountConfirmation(sess, text); ok {
			return t, true
		}

	case "beneficiary_info":
		if t, ok := e.handleBeneficiaryInfo(sess, text); ok {
			return t, true
		}

	case "receipt_submission":
		if t, ok := e.handleReceiptText(sess, text); ok {
			return t, true
		}

	case "kyc_confirmation":
		if sess.State == session.StateKYCRequired {
			return e.handleKYCRequired(sess, text)
		}
	}

	return Turn{}, false
}

// physicalRequest drives the physical-dollar flow from whatever is known
// so far, asking for the missing piece.
func (e *Engine) physicalRequest(sess *session.Session, amountInfo *extract.AmountInfo, countryInfo *extract.CountryInfo, text string) Turn {
	sess.Data.SetPhysicalDelivery()
	if countryInfo != nil {
		sess.Data.Country = countryInfo.Country
	}
	if amountInfo != nil {
		sess.Data.Amount = amountInfo.Amount
		sess.Data.Currency = amountInfo.Currency
	}
	if extract.IsNetAmountIntent(text) {
		sess.Data.WantsNetAmount = true
	}

	country, amount := sess.Data.Country, sess.Data.Amount

	if country != "" && amount > 0 {
		q, err := e.Calc.CalculatePhysicalDelivery(amount, sess.Data.WantsNetAmount)
		if err != nil {
			return Turn{
				Message:  msgAmountNotDetected,
				NewState: session.StateAwaitingAmount,
				Intent:   "physical_delivery_error",
			}
		}
		return Turn{
			Message: formatPhysicalQuote(q, country, sess.Data.WantsNetAmount) +
				"\n\n¿Confirmas que eres el titular de la cuenta desde la cual harás la transferencia?",
			NewState: session.StateAwaitingConfirmation,
			Intent:   "physical_delivery_calculated",
		}
	}

	if country != "" {
		return Turn{
			Message: "✅ Perfecto, desde " + money.CountryDisplayName(country) + " con entrega de dólares físicos.\n\n" +
				"🔒 **Recordatorio:** Comisión fija del 10% para logística de entrega física.\n\n" +
				"💰 ¿Cuál es el monto que deseas enviar?\n\nEjemplo: \"$500 USD\" o \"" + money.FormatCurrency(1000, country) + "\"",
			NewState: session.StateAwaitingAmount,
			Intent:   "physical_country_detected",
		}
	}

	return Turn{
		Message:  msgPhysicalCountryNeeded,
		NewState: session.StateCashDelivery,
		Intent:   "physical_country_needed",
	}
}

// quoteCombined prices a message that carried both amount and country.
func (e *Engine) quoteCombined(sess *session.Session, amountInfo *extract.AmountInfo, countryInfo *extract.CountryInfo) Turn {
	country := countryInfo.Country
	sess.Data.Country = country
	e.storeAmount(sess, amountInfo, country)

	q, err := e.Calc.CalculateRate(sess.Data.Amount, country)
	if err != nil {
		return Turn{Message: msgRatesNotLoaded, NewState: session.StateInitial, Intent: "rate_not_loaded"}
	}

	sess.Data.KYCRequired = e.needsKYC(sess)
	return Turn{
		Message:  formatCombinedQuote(sess.Data.Amount, country, q),
		NewState: session.StateAwaitingConfirmation,
		Intent:   "transfer_quote",
	}
}

// quoteTransfer prices the session's stored amount and shows the payment
// menu, routing through identity verification first when required.
func (e *Engine) quoteTransfer(sess *session.Session) Turn {
	q, err := e.Calc.CalculateRate(sess.Data.Amount, sess.Data.Country)
	if err != nil {
		return Turn{Message: msgRatesNotLoaded, NewState: session.StateInitial, Intent: "rate_not_loaded"}
	}

	if e.needsKYC(sess) {
		sess.Data.KYCRequired = true
		return Turn{Message: msgKYCRequired, NewState: session.StateKYCRequired, Intent: "kyc_required"}
	}

	return Turn{
		Message:  formatTransferSummary(sess.Data.Amount, sess.Data.Country, q),
		NewState: session.StateAwaitingTransferType,
		Intent:   "amount_processed",
	}
}

// quoteFromEntities prices a classifier-extracted amount/country pair.
func (e *Engine) quoteFromEntities(sess *session.Session, ents intent.Entities) (Turn, bool) {
	if ents.Amount <= 0 || ents.Country == "" || ents.Country == "unknown" {
		return Turn{}, false
	}
	info := &extract.AmountInfo{Amount: ents.Amount, Currency: strings.ToUpper(ents.Currency)}
	if info.Currency == "" || info.Currency == "UNKNOWN" {
		info.Currency = extract.CurrencyForCountry(ents.Country)
	}
	return e.quoteCombined(sess, info, &extract.CountryInfo{Country: strings.ToLower(ents.Country)}), true
}

// rateCheck answers a standalone rate question without starting a flow.
func (e *Engine) rateCheck(sess *session.Session, text string, ents intent.Entities) Turn {
	amountInfo := extract.ExtractAmount(text)
	countryInfo := extract.ExtractCountry(text)
	if amountInfo == nil && ents.Amount > 0 {
		amountInfo = &extract.AmountInfo{Amount: ents.Amount, Currency: strings.ToUpper(ents.Currency)}
	}
	if countryInfo == nil && ents.Country != "" && ents.Country != "unknown" {
		countryInfo = &extract.CountryInfo{Country: strings.ToLower(ents.Country)}
	}

	if amountInfo != nil && countryInfo != nil {
		country := countryInfo.Country
		amount := e.toLocal(amountInfo, country)
		q, err := e.Calc.CalculateRate(amount, country)
		if err != nil {
			return Turn{Message: msgRatesNotLoaded, Intent: "rate_not_available"}
		}
		sess.Data.Country = country
		sess.Data.Amount = amount
		return Turn{
			Message: formatRateCheck(amount, country, e.Calc.Rates.Current().Date, q),
			Intent:  "rate_calculated",
		}
	}

	return e.dailyRates()
}

func (e *Engine) dailyRates() Turn {
	return Turn{Message: formatDailyRates(e.Calc.Rates.Current()), Intent: "daily_rate"}
}

// deliveryComparison shows bank transfer against physical delivery, with
// concrete numbers when the message priced itself.
func (e *Engine) deliveryComparison(sess *session.Session, text string) Turn {
	amountInfo := extract.ExtractAmount(text)
	countryInfo := extract.ExtractCountry(text)

	if amountInfo != nil && countryInfo != nil {
		country := countryInfo.Country
		amount := e.toLocal(amountInfo, country)
		q, errRate := e.Calc.CalculateRate(amount, country)
		d, errPhys := e.Calc.CalculatePhysicalDelivery(amount, false)
		if errRate == nil && errPhys == nil {
			sess.Data.Country = country
			sess.Data.Amount = amount
			return Turn{
				Message:  formatComparison(amount, country, &q, &d),
				NewState: session.StateAwaitingTransferType,
				Intent:   "delivery_comparison_calculated",
			}
		}
	}

	return Turn{
		Message:  formatComparison(0, "", nil, nil),
		NewState: session.StateAwaitingCountry,
		Intent:   "delivery_comparison_generic",
	}
}

// kycGate reroutes to identity verification when the stored transfer
// still needs it.
func (e *Engine) kycGate(sess *session.Session) (Turn, bool) {
	if !e.needsKYC(sess) {
		return Turn{}, false
	}
	sess.Data.KYCRequired = true
	return Turn{Message: msgKYCRequired, NewState: session.StateKYCRequired, Intent: "kyc_required"}, true
}

// needsKYC applies the compliance thresholds to the stored transfer.
// Dominican amounts are gated in local pesos; everywhere else the gate is
// on the USD equivalent.
func (e *Engine) needsKYC(sess *session.Session) bool {
	if sess.Data.KYCCompleted || sess.Data.Amount <= 0 {
		return false
	}
	country := strings.ToLower(sess.Data.Country)
	amount := sess.Data.Amount
	if country == "dominican" {
		return e.Calc.CheckKYCRequired(amount, country)
	}
	usd := amount
	if mult, ok := e.Calc.Conversions[country]; ok && mult > 0 {
		usd = amount / mult
	}
	return e.Calc.CheckKYCRequired(usd, country)
}

// storeAmount records an extracted amount in the destination's local
// currency, converting USD figures with the approximation table.
func (e *Engine) storeAmount(sess *session.Session, info *extract.AmountInfo, country string) {
	sess.Data.Amount = e.toLocal(info, country)
	if info.Currency == "" || info.Currency == "UNKNOWN" {
		sess.Data.Currency = extract.CurrencyForCountry(country)
	} else {
		sess.Data.Currency = info.Currency
	}
}

func (e *Engine) toLocal(info *extract.AmountInfo, country string) float64 {
	if info.Currency == "USD" && !strings.EqualFold(country, "ecuador") {
		return e.Calc.ConvertToLocalCurrency(info.Amount, country)
	}
	return info.Amount
}

// receiptAccepted handles a signed receipt, branching on how much of the
// beneficiary record is already in.
func (e *Engine) receiptAccepted(sess *session.Session) Turn {
	sess.Data.ReceiptReceived = true
	sess.Data.ReceiptSigned = true

	if sess.Data.BeneficiaryComplete {
		if sess.Data.PhysicalDelivery {
			return e.scheduleDelivery(sess)
		}
		t := Turn{Message: msgTransferComplete, NewState: session.StateInitial, Intent: "transfer_complete"}
		sess.Data.ResetFlow()
		return t
	}

	if sess.Data.PhysicalDelivery {
		return Turn{
			Message:  msgReceiptNeedBeneficiaryPhysical,
			NewState: session.StateAwaitingBeneficiary,
			Intent:   "receipt_received",
		}
	}
	return Turn{
		Message:  msgReceiptNeedBeneficiaryBank,
		NewState: session.StateAwaitingBeneficiary,
		Intent:   "receipt_received",
	}
}

// escalateDecisionKYC is the handoff used when identity claims need a
// human reviewer instead of being taken at face value.
func escalateDecisionKYC() escalate.Decision {
	return escalate.Decision{
		Escalate: true,
		Reason:   "kyc_review",
		Urgency:  "medium",
		Category: "compliance",
	}
}

func beneficiaryEmpty(info extract.BeneficiaryInfo) bool {
	return info.Name == "" && info.Cedula == "" && info.Phone == "" &&
		info.Address == "" && info.Account == "" && info.Amount == ""
}

// mergeBeneficiary folds newly parsed fields into the session's record so
// a split submission accumulates instead of overwriting.
func mergeBeneficiary(sess *session.Session, info extract.BeneficiaryInfo) {
	if sess.Data.Beneficiary == nil {
		sess.Data.Beneficiary = &session.Beneficiary{}
	}
	b := sess.Data.Beneficiary
	if info.Name != "" {
		b.Name = info.Name
	}
	if info.Cedula != "" {
		b.Cedula = info.Cedula
	}
	if info.Phone != "" {
		b.Phone = info.Phone
	}
	if info.Address != "" {
		b.Address = info.Address
	}
	if info.Account != "" {
		b.Account = info.Account
	}
	if info.Amount != "" {
		b.Amount = info.Amount
	}
}

// missingFields reports which labels the accumulated record still lacks,
// in prompt order.
func missingFields(b *session.Beneficiary, physical bool) []string {
	if b == nil {
		b = &session.Beneficiary{}
	}
	var out []string
	add := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			out = append(out, label)
		}
	}
	if physical {
		add(extract.FieldName, b.Name)
		add(extract.FieldCedula, b.Cedula)
		add(extract.FieldPhone, b.Phone)
		add(extract.FieldAddress, b.Address)
	} else {
		add(extract.FieldName, b.Name)
		add(extract.FieldCedula, b.Cedula)
		add(extract.FieldAccount, b.Account)
		add(extract.FieldAmount, b.Amount)
	}
	return out
}
