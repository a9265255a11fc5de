package flow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tecnoinversiones/remesabot/internal/money"
	"github.com/tecnoinversiones/remesabot/internal/rates"
)

// Canned Spanish copy for the deterministic handlers. User-facing text
// stays in one place so the operators can review it without reading the
// state machine.
const (
	msgGreeting = "¡Hola! 👋 Bienvenido a Tecno Inversiones, tu servicio de envíos a Venezuela.\n\n" +
		"Puedo ayudarte con:\n" +
		"💸 Enviar dinero (transferencia o depósito en Bolívares)\n" +
		"💵 Entrega de dólares físicos en Venezuela\n" +
		"📈 Consultar la tasa del día\n\n" +
		"¿Qué deseas hacer hoy?"

	msgBusinessHours = "🕐 **Nuestro horario de atención:**\n\n" +
		"Lunes a Sábado: 8:00 AM - 6:00 PM\n" +
		"Domingos: 9:00 AM - 1:00 PM\n\n" +
		"El bot está disponible 24/7 para cotizaciones y consultas."

	msgFallback = "Disculpa, no entendí tu mensaje. 🤔\n\n" +
		"Puedo ayudarte con:\n" +
		"💸 Enviar dinero a Venezuela\n" +
		"💵 Entrega de dólares físicos\n" +
		"📈 Consultar la tasa del día\n\n" +
		"¿Qué deseas hacer?"

	msgWaitingReminder = "⏳ Tu consulta está siendo atendida por un asesor humano. Por favor espera su respuesta.\n\n" +
		"🔕 El bot automático permanece pausado hasta que se resuelva tu caso."

	msgHumanTransfer = "🙋 Tu consulta ha sido transferida a un asesor humano que te atenderá en breve.\n\n" +
		"🔕 El bot automático queda pausado hasta que se resuelva tu caso."

	msgLoopTransfer = "🤔 Veo que podríamos estar en un bucle. Te conectaré con un asesor humano que podrá ayudarte mejor. Un momento por favor..."

	msgAccountQuestion = "¡Perfecto! 🙌 Antes de continuar, necesito confirmar algo importante:\n\n" +
		"📌 ¿Eres el titular de la cuenta bancaria desde la cual se realizará la transferencia?"

	msgAccountConfirmed = "¡Perfecto! 🙌 Entonces sigamos con estos pasos:\n\n" +
		"📝 **Paso 1** - Dime desde qué país estás enviando el dinero:"

	msgAccountWarning = "⚠️ Por favor recuerda que solo aceptamos pagos realizados desde cuentas a nombre del cliente que nos contacta. Esto es por razones de seguridad.\n\n" +
		"¿Deseas continuar desde una cuenta personal?"

	msgAccountUnclear = "Por favor responde con 'Sí' o 'No':\n\n" +
		"📌 ¿Eres el titular de la cuenta bancaria desde la cual se realizará la transferencia?"

	msgCountryList = "🇩🇴 República Dominicana\n🇵🇪 Perú\n🇪🇨 Ecuador\n🇨🇴 Colombia\n🇨🇱 Chile"

	msgCountryNotDetected = "No pude identificar el país. Por favor especifica desde cuál de estos países estás enviando:\n\n" + msgCountryList

	msgAmountNotDetected = "Por favor especifica el monto que deseas enviar. Ejemplo: 500, $300, 15000 pesos"

	msgRatesNotLoaded = "😓 Lo siento, la tasa de hoy aún no ha sido cargada. Por favor consulta más tarde o contacta a un asesor para asistencia inmediata."

	msgTransferMenu = "1️⃣ **Transferencia bancaria** (Bolívares)\n" +
		"2️⃣ **Depósito en efectivo** (Bolívares)\n" +
		"3️⃣ **Entrega física** (Dólares USD - Comisión 10%)\n\n" +
		"Responde con el número de tu opción preferida."

	msgTransferMenuRetry = "Por favor selecciona una opción válida:\n\n" + msgTransferMenu

	msgBankInstructions = "📝 **Instrucciones para Transferencia Bancaria:**\n\n" +
		"**Paso 1** - Solicita las cuentas bancarias actualizadas aquí.\n\n" +
		"**Paso 2** - En el concepto de la transferencia, escribe:\n" +
		"📌 ENTREGAR: Nombre y apellido del destinatario + los últimos 5 dígitos de tu WhatsApp.\n\n" +
		"**Paso 3** - Después de transferir, envíame:\n" +
		"1️⃣ Una foto del comprobante\n" +
		"2️⃣ La información del beneficiario"

	msgDepositInstructions = "📝 **Instrucciones para Depósito en Efectivo:**\n\n" +
		"**Paso 1** - Solicita las cuentas bancarias actualizadas aquí.\n\n" +
		"**Paso 2** - Debes escribir en la boleta de depósito:\n" +
		"📌 Nombre y apellido del destinatario + últimos 5 dígitos de tu WhatsApp.\n\n" +
		"**Paso 3** - Después de depositar, envíame:\n" +
		"1️⃣ Una foto del comprobante\n" +
		"2️⃣ La información del beneficiario"

	msgPhysicalInfo = "💵 **Entrega de Dólares Físicos**\n\n" +
		"🔒 Comisión fija: 10%\n" +
		"⏱️ Tiempo: 24-48 horas\n" +
		"🚚 Entrega segura a domicilio\n\n" +
		"Por favor proporciona el monto y país para calcular el costo exacto."

	msgPhysicalCountryNeeded = "🌎 **Entrega de Dólares Físicos disponible desde:**\n\n" + msgCountryList + "\n\n" +
		"💵 **Características:**\n" +
		"• Comisión fija: 10%\n" +
		"• Tiempo: 24-48 horas\n" +
		"• Entrega segura a domicilio\n\n" +
		"¿Desde cuál país estás enviando?"

	msgKYCRequired = "🚨 Veo que tu transferencia supera el límite permitido sin verificación. 🔐 Por razones de seguridad, debemos verificar que eres el titular de la cuenta.\n\n" +
		"Por favor verifica en este enlace:\n" +
		"🔗 " + kycVerificationURL + "\n\n" +
		"Una vez completada la verificación, podremos proceder con tu transferencia."

	msgKYCReminder = "Para proceder con transferencias mayores a $300 USD, necesitas completar la verificación de identidad.\n\n" +
		"🔗 Por favor completa el proceso en: " + kycVerificationURL + "\n\n" +
		"Una vez completado, escribe 'Completado' para continuar."

	msgKYCAccepted = "✅ Excelente, hemos recibido tu verificación.\n\n" +
		"📝 Ahora continuemos con el proceso de transferencia."

	msgKYCManualReview = "📋 Gracias por avisar. Un asesor verificará tu identidad y te confirmará en breve para continuar con la transferencia."

	msgBeneficiaryPhysicalPrompt = "¡Perfecto! 🙌 Confirmado que eres el titular de la cuenta y que deseas entrega física.\n\n" +
		"📝 Ahora, por favor, proporciona la información del beneficiario para la entrega de los dólares físicos:\n\n" +
		"📌 **Nombre y Apellido del beneficiario**\n" +
		"📌 **Cédula**\n" +
		"📌 **Teléfono de contacto**\n" +
		"📌 **Dirección completa de entrega**"

	msgBeneficiaryBankFormat = "📋 Necesito la información completa del beneficiario:\n\n" +
		"📌 **Nombre y Apellido:**\n" +
		"📌 **Cédula:**\n" +
		"📌 **Número de Cuenta:**\n" +
		"📌 **Monto a Entregar:**\n\n" +
		"Por favor envía toda la información."

	msgReceiptRequest = "✅ Excelente, información del beneficiario recibida correctamente.\n\n" +
		"Ahora necesito que envíes el comprobante de pago firmado con:\n" +
		"✍️ Tu nombre completo + últimos 4 dígitos de tu WhatsApp\n\n" +
		"📸 Por favor envía la foto del comprobante firmado.\n\n" +
		"Ejemplo: Juan Pérez 1234"

	msgReceiptUnsigned = "📸 Recibí tu comprobante, pero necesito que esté firmado con:\n" +
		"✍️ Tu nombre completo + últimos 4 dígitos de tu WhatsApp\n\n" +
		"Por favor firma el comprobante y envía la foto nuevamente.\n\n" +
		"Ejemplo: Juan Pérez 1234"

	msgReceiptNotReceipt = "🤔 La imagen recibida no parece ser un comprobante de pago.\n\n" +
		"📸 Por favor envía una foto clara del comprobante firmado con tu nombre completo + últimos 4 dígitos de tu WhatsApp."

	msgReceiptImageError = "😓 No pude procesar la imagen. Por favor envía la foto del comprobante nuevamente."

	msgReceiptNeedBeneficiaryPhysical = "✅ Comprobante firmado recibido correctamente.\n\n" +
		"📋 **Para entrega física necesito:**\n" +
		"📌 **Nombre y Apellido del beneficiario**\n" +
		"📌 **Cédula**\n" +
		"📌 **Teléfono de contacto**\n" +
		"📌 **Dirección completa de entrega**\n\n" +
		"🚚 Esta información es necesaria para coordinar la entrega de los dólares físicos."

	msgReceiptNeedBeneficiaryBank = "✅ Comprobante firmado recibido correctamente.\n\n" +
		"Ahora necesito la información del beneficiario:\n\n" +
		"📌 **Nombre y Apellido:**\n" +
		"📌 **Cédula:**\n" +
		"📌 **Número de Cuenta:**\n" +
		"📌 **Monto a Entregar:**"

	msgTransferComplete = "✅ Perfecto, comprobante firmado recibido y la información del beneficiario está completa.\n\n" +
		"📋 Procederemos a validar tu pago y comenzar el proceso de transferencia.\n\n" +
		"⏱️ Te notificaremos cuando esté listo. Normalmente toma entre 15-30 minutos.\n\n" +
		"¿Hay algo más en lo que pueda ayudarte?"

	msgThanks = "¡Con gusto! 🙌 Gracias por confiar en Tecno Inversiones. ¿Hay algo más en lo que pueda ayudarte?"

	kycVerificationURL = "https://signup.metamap.com/?merchantToken=68221bbbcdc3bb0c6a37635a&flowId=68221bbb70559e84e01b01a1"
)

// formatPhysicalQuote renders the physical-delivery breakdown for a quote
// already priced by the calculator.
func formatPhysicalQuote(q money.DeliveryQuote, country string, wantsNet bool) string {
	countryName := money.CountryDisplayName(country)
	var b strings.Builder
	b.WriteString("💵 **Entrega de Dólares Físicos en Venezuela**\n\n")
	if wantsNet {
		fmt.Fprintf(&b, "🎯 Para que reciban exactamente: **$%.2f USD**\n", q.AmountToReceive)
		fmt.Fprintf(&b, "📤 Debes enviar desde %s: **%s**\n", countryName, money.FormatCurrency(q.AmountToSend, country))
	} else {
		fmt.Fprintf(&b, "📤 Monto a enviar desde %s: **%s**\n", countryName, money.FormatCurrency(q.AmountToSend, country))
		fmt.Fprintf(&b, "💰 Recibirán en dólares físicos: **$%.2f USD**\n", q.AmountToReceive)
	}
	fmt.Fprintf(&b, "💸 Comisión fija (10%%): **$%.2f USD**\n\n", q.FeeAmount)
	b.WriteString("🔒 **Incluye:**\n")
	b.WriteString("✅ Entrega física de dólares en Venezuela\n")
	b.WriteString("✅ Logística de transporte seguro\n")
	b.WriteString("✅ Entrega a domicilio o punto de encuentro\n\n")
	b.WriteString("⏱️ Tiempo de entrega: 24-48 horas")
	return b.String()
}

// formatTransferSummary renders the bank-transfer quote before the payment
// method menu.
func formatTransferSummary(amount float64, country string, q money.Quote) string {
	return fmt.Sprintf(
		"📊 **Resumen de tu transferencia:**\n\n"+
			"💰 Monto: %s\n"+
			"🌎 Desde: %s\n"+
			"📈 Tasa aplicable: %v\n"+
			"💵 Recibirá aproximadamente: %.2f Bs\n\n"+
			"📝 **Paso 3** - ¿Cómo prefieres realizar el pago?\n\n"+
			"1️⃣ **Transferencia bancaria**\n"+
			"2️⃣ **Depósito en efectivo**\n\n"+
			"Responde con el número de tu opción preferida.",
		money.FormatCurrency(amount, country),
		money.CountryDisplayName(country),
		q.Rate, q.ReceivedAmount)
}

// formatCombinedQuote renders the confirmation question after the amount
// and country arrived in a single message.
func formatCombinedQuote(amount float64, country string, q money.Quote) string {
	return fmt.Sprintf(
		"✅ Perfecto, quieres enviar %s desde %s a Venezuela.\n\n"+
			"💰 **Cálculo:**\n"+
			"📊 Monto: %s\n"+
			"📈 Tasa: %v Bs\n"+
			"💵 El beneficiario recibirá: **%.2f Bs**\n\n"+
			"¿Confirmas que eres el titular de la cuenta desde la cual harás la transferencia?",
		money.FormatCurrency(amount, country),
		money.CountryDisplayName(country),
		money.FormatCurrency(amount, country),
		q.Rate, q.ReceivedAmount)
}

// formatRateCheck renders the standalone rate lookup answer.
func formatRateCheck(amount float64, country, date string, q money.Quote) string {
	return fmt.Sprintf(
		"💰 **Cálculo de tasa para %s:**\n\n"+
			"📊 Monto: %s\n"+
			"📈 Tasa aplicable: %v Bs\n"+
			"💵 Recibirás: **%.2f Bs**\n\n"+
			"✅ Tasa válida para hoy (%s)\n\n"+
			"¿Deseas proceder con esta transferencia?",
		money.CountryDisplayName(country),
		money.FormatCurrency(amount, country),
		q.Rate, q.ReceivedAmount, date)
}

// formatDailyRates renders today's full rate table.
func formatDailyRates(t *rates.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 **Tasas del día (%s):**\n\n", t.Date)

	if bands, ok := t.Tiered["dominican"]; ok && len(bands) > 0 {
		b.WriteString("🇩🇴 **República Dominicana (por tramos):**\n")
		for _, band := range bands {
			if band.Max >= 9999999 {
				fmt.Fprintf(&b, "   Más de RD$%.0f: %v Bs\n", band.Min-1, band.Rate)
			} else {
				fmt.Fprintf(&b, "   RD$%.0f - RD$%.0f: %v Bs\n", band.Min, band.Max, band.Rate)
			}
		}
		b.WriteString("\n")
	}

	countries := make([]string, 0, len(t.Flat))
	for c := range t.Flat {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	for _, c := range countries {
		fmt.Fprintf(&b, "%s %s: %v Bs\n", countryFlag(c), money.CountryDisplayName(c), t.Flat[c])
	}

	b.WriteString("\nPara un cálculo exacto, dime el monto y país.\nEjemplo: \"5000 pesos desde República Dominicana\"")
	return b.String()
}

// formatComparison renders the bank-versus-physical comparison. With a
// priced amount both options carry concrete numbers.
func formatComparison(amount float64, country string, q *money.Quote, d *money.DeliveryQuote) string {
	var b strings.Builder
	b.WriteString("💰 **Comparación de Opciones de Entrega:**\n\n")

	if q != nil && d != nil {
		fmt.Fprintf(&b, "📊 **Para %s desde %s:**\n\n",
			money.FormatCurrency(amount, country), money.CountryDisplayName(country))
		b.WriteString("1️⃣ **Transferencia Bancaria (Bolívares)**\n")
		fmt.Fprintf(&b, "   💰 Recibirá: %.2f Bs\n", q.ReceivedAmount)
		fmt.Fprintf(&b, "   📈 Tasa: %v Bs\n", q.Rate)
		b.WriteString("   ⚡ Tiempo: Inmediato\n")
		b.WriteString("   🏦 Requiere: Cuenta bancaria\n\n")
		b.WriteString("2️⃣ **Entrega Física (Dólares USD)**\n")
		fmt.Fprintf(&b, "   💵 Recibirá: $%.2f USD\n", d.AmountToReceive)
		fmt.Fprintf(&b, "   💸 Comisión: $%.2f USD (10%%)\n", d.FeeAmount)
		b.WriteString("   🚚 Tiempo: 24-48 horas\n")
		b.WriteString("   📍 Requiere: Dirección de entrega\n\n")
		b.WriteString("¿Cuál opción prefieres? Responde 1 o 2.")
		return b.String()
	}

	b.WriteString("1️⃣ **Transferencia Bancaria (Bolívares)**\n")
	b.WriteString("   📈 Tasa del día aplicable\n")
	b.WriteString("   ⚡ Entrega inmediata\n")
	b.WriteString("   🏦 Directo a cuenta bancaria\n")
	b.WriteString("   💳 Sin comisiones adicionales\n\n")
	b.WriteString("2️⃣ **Entrega Física (Dólares USD)**\n")
	b.WriteString("   🔒 Comisión fija: 10%\n")
	b.WriteString("   💵 Dólares físicos en mano\n")
	b.WriteString("   🚚 Entrega en 24-48 horas\n")
	b.WriteString("   📍 Entrega a domicilio\n")
	b.WriteString("   🛡️ Transporte asegurado\n\n")
	b.WriteString("Para un cálculo exacto, dime el monto y país.\nEjemplo: \"5000 pesos desde República Dominicana\"")
	return b.String()
}

// formatMissingFields renders the incomplete-beneficiary follow-up with
// the exact labels still pending.
func formatMissingFields(missing []string, physical bool) string {
	var b strings.Builder
	b.WriteString("📋 Falta la siguiente información del beneficiario:\n\n")
	for _, f := range missing {
		fmt.Fprintf(&b, "📌 **%s**\n", f)
	}
	if physical {
		b.WriteString("\n📌 **Formato requerido:**\n")
		b.WriteString("**Nombre:** [Nombre completo del beneficiario]\n")
		b.WriteString("**Cédula:** [Número sin puntos ni guiones]\n")
		b.WriteString("**Teléfono:** [Número de contacto en Venezuela]\n")
		b.WriteString("**Dirección:** [Dirección completa para entrega]\n\n")
		b.WriteString("🚚 Esta información es necesaria para coordinar la entrega física de los dólares.")
	} else {
		b.WriteString("\n📌 **Formato requerido:**\n")
		b.WriteString("**Nombre y Apellido:** [Nombre completo del beneficiario]\n")
		b.WriteString("**Cédula:** [Número sin puntos ni guiones]\n")
		b.WriteString("**Número de Cuenta:** [20 dígitos de la cuenta bancaria]\n")
		b.WriteString("**Monto a Entregar:** [Monto en Bolívares]")
	}
	return b.String()
}

// formatDeliveryScheduled renders the scheduled-delivery confirmation.
func formatDeliveryScheduled(trackingNumber string) string {
	return fmt.Sprintf(
		"✅ ¡Perfecto! Comprobante verificado e información del beneficiario completa para entrega física.\n\n"+
			"🚚 **Entrega Física Programada:**\n"+
			"📋 Número de seguimiento: **%s**\n"+
			"⏱️ Tiempo estimado: 24-48 horas\n\n"+
			"📱 **Próximos pasos:**\n"+
			"1️⃣ Validaremos tu pago (15-30 min)\n"+
			"2️⃣ Coordinaremos con el repartidor\n"+
			"3️⃣ Te enviaremos datos de contacto\n"+
			"4️⃣ Entrega de dólares físicos\n\n"+
			"🔔 Te mantendremos informado del progreso.",
		trackingNumber)
}

// formatDeliveryStatus answers a status inquiry on a scheduled delivery.
func formatDeliveryStatus(trackingNumber, scheduledDate string) string {
	return fmt.Sprintf(
		"🚚 **Estado de tu entrega:**\n\n"+
			"📋 Número de seguimiento: **%s**\n"+
			"📅 Programada para: %s\n"+
			"⏱️ Tiempo estimado: 24-48 horas\n\n"+
			"🔔 Te avisaremos cuando el repartidor esté en camino.",
		trackingNumber, scheduledDate)
}

func countryFlag(country string) string {
	switch strings.ToLower(country) {
	case "dominican":
		return "🇩🇴"
	case "peru":
		return "🇵🇪"
	case "ecuador":
		return "🇪🇨"
	case "colombia":
		return "🇨🇴"
	case "chile":
		return "🇨🇱"
	default:
		return "🌎"
	}
}
