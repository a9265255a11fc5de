package flow

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tecnoinversiones/remesabot/internal/escalate"
	"github.com/tecnoinversiones/remesabot/internal/extract"
	"github.com/tecnoinversiones/remesabot/internal/intent"
	"github.com/tecnoinversiones/remesabot/internal/money"
	"github.com/tecnoinversiones/remesabot/internal/session"
)

// Turn is the outcome of one processed message. An empty Message means
// nothing is sent back (a paused session swallowing input). NewState is
// applied by Process; empty keeps the current state.
type Turn struct {
	Message  string
	NewState session.State
	Intent   string
}

// Engine is the per-message state machine. Resolution runs in tiers:
// deterministic patterns first, then the state handler, then the
// classified intent, and a generated reply as the last resort. Earlier
// tiers always win so a model outage degrades to the deterministic flow
// instead of breaking it.
type Engine struct {
	Calc       *money.Calculator
	Classifier intent.Classifier
	Generator  intent.Generator
	Verifier   intent.ReceiptVerifier
	Escalator  *escalate.Manager

	// TrustKYC accepts the user's word that identity verification is done.
	// When false the claim goes to an operator for manual review.
	TrustKYC bool

	now   func() time.Time
	newID func() string
}

func NewEngine(calc *money.Calculator, cl intent.Classifier, gen intent.Generator, ver intent.ReceiptVerifier, esc *escalate.Manager, trustKYC bool) *Engine {
	return &Engine{
		Calc:       calc,
		Classifier: cl,
		Generator:  gen,
		Verifier:   ver,
		Escalator:  esc,
		TrustKYC:   trustKYC,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Process runs one inbound text message through the resolution tiers and
// mutates the session in place. The caller persists the session.
func (e *Engine) Process(sess *session.Session, text string) Turn {
	sess.Touch()

	if sess.Data.BotPaused {
		if e.Escalator.ReminderDue(sess) {
			return Turn{Message: msgWaitingReminder, Intent: "waiting_reminder"}
		}
		log.Printf("[flow] session %s paused, message dropped", sess.Key)
		return Turn{Intent: "message_ignored"}
	}

	if t, ok := e.continueShortcut(sess, text); ok {
		return e.apply(sess, t)
	}

	res, err := e.Classifier.Classify(text, snapshot(sess))
	if err != nil {
		log.Printf("[flow] classify failed for %s: %v", sess.Key, err)
		res = intent.Fallback()
	}

	if d := e.Escalator.ShouldEscalate(text, res, sess); d.Escalate {
		e.Escalator.Escalate(sess, d)
		return Turn{Message: msgHumanTransfer, NewState: session.StateHumanAssistance, Intent: "human_assistance"}
	}

	if t, ok := e.directPatterns(sess, text); ok {
		return e.apply(sess, t)
	}

	if t, ok := e.stateHandler(sess, text); ok {
		return e.apply(sess, t)
	}

	if t, ok := e.generalIntent(sess, text, res); ok {
		return e.apply(sess, t)
	}

	return e.apply(sess, e.generatedFallback(sess, text, res))
}

// ProcessImage runs an inbound image through the receipt verifier. Images
// only mean something when a signed receipt is expected.
func (e *Engine) ProcessImage(sess *session.Session, imageData []byte, mimeType string) Turn {
	sess.Touch()

	if sess.Data.BotPaused {
		if e.Escalator.ReminderDue(sess) {
			return Turn{Message: msgWaitingReminder, Intent: "waiting_reminder"}
		}
		return Turn{Intent: "message_ignored"}
	}

	switch sess.State {
	case session.StateAwaitingBeneficiary, session.StateAwaitingReceipt:
	default:
		return e.apply(sess, Turn{Message: msgFallback, Intent: "unexpected_image"})
	}

	if e.Verifier == nil {
		return e.apply(sess, Turn{Message: msgReceiptImageError, Intent: "receipt_verifier_unavailable"})
	}

	expectedName := ""
	if sess.Data.Beneficiary != nil {
		expectedName = sess.Data.Beneficiary.Name
	}
	verdict, err := e.Verifier.Verify(imageData, mimeType, expectedName, senderLastDigits(sess.Key))
	if err != nil {
		log.Printf("[flow] receipt verification failed for %s: %v", sess.Key, err)
		return e.apply(sess, Turn{Message: msgReceiptImageError, Intent: "receipt_verification_error"})
	}

	if !verdict.IsReceipt {
		return e.apply(sess, Turn{Message: msgReceiptNotReceipt, Intent: "not_a_receipt"})
	}
	if !verdict.IsSigned {
		return e.apply(sess, Turn{Message: msgReceiptUnsigned, Intent: "receipt_unsigned"})
	}

	return e.apply(sess, e.receiptAccepted(sess))
}

// apply commits a turn's state transition. Changing state resets the loop
// counter: progress means the conversation is not stuck.
func (e *Engine) apply(sess *session.Session, t Turn) Turn {
	if t.NewState != "" && t.NewState.Valid() && t.NewState != sess.State {
		sess.State = t.NewState
		sess.Data.LoopCount = 0
	}
	return t
}

// continueShortcut answers "sí, continuar" style nudges while the payment
// menu is pending, defaulting to bank transfer instructions.
func (e *Engine) continueShortcut(sess *session.Session, text string) (Turn, bool) {
	if sess.State != session.StateAwaitingTransferType || !extract.IsContinueResponse(text) {
		return Turn{}, false
	}
	sess.Data.DeliveryType = session.DeliveryBankTransfer
	return Turn{
		Message:  msgBankInstructions,
		NewState: session.StateAwaitingBeneficiary,
		Intent:   "continue_process",
	}, true
}

// generatedFallback asks the reply generator for a contextual answer and
// infers a state change from trigger phrases in it. When generation fails
// the deterministic per-state re-prompt goes out instead and the loop
// counter advances; past the limit the conversation is handed off.
func (e *Engine) generatedFallback(sess *session.Session, text string, res intent.Result) Turn {
	sess.Data.LoopCount++

	if d := e.Escalator.ShouldEscalate(text, intent.Fallback(), sess); d.Escalate {
		e.Escalator.Escalate(sess, d)
		return Turn{Message: msgLoopTransfer, NewState: session.StateHumanAssistance, Intent: "human_assistance"}
	}

	if e.Generator != nil {
		reply, err := e.Generator.Generate(text, snapshot(sess), res)
		if err != nil {
			log.Printf("[flow] generate failed for %s: %v", sess.Key, err)
		} else if reply != "" {
			return Turn{
				Message:  reply,
				NewState: stateFromReply(reply),
				Intent:   "generated_reply",
			}
		}
	}

	return Turn{Message: e.rePrompt(sess), Intent: "fallback"}
}

// rePrompt is the deterministic per-state nudge used when every tier
// came up empty.
func (e *Engine) rePrompt(sess *session.Session) string {
	switch sess.State {
	case session.StateAwaitingCountry, session.StateSendMoneyStarted:
		return msgCountryNotDetected
	case session.StateAwaitingAmount:
		return msgAmountNotDetected
	case session.StateAwaitingConfirmation:
		return msgAccountUnclear
	case session.StateAwaitingTransferType:
		return msgTransferMenuRetry
	case session.StateCashDelivery:
		return msgPhysicalCountryNeeded
	case session.StateAwaitingBeneficiary:
		if sess.Data.PhysicalDelivery {
			return msgBeneficiaryPhysicalPrompt
		}
		return msgBeneficiaryBankFormat
	case session.StateAwaitingReceipt:
		return msgReceiptRequest
	case session.StateKYCRequired:
		return msgKYCReminder
	default:
		return msgFallback
	}
}

// stateFromReply maps trigger phrases in a generated reply back onto the
// state machine so a model-written question still advances the flow.
func stateFromReply(reply string) session.State {
	lower := strings.ToLower(reply)
	switch {
	case strings.Contains(lower, "desde qué país") || strings.Contains(lower, "cuál país"):
		return session.StateAwaitingCountry
	case strings.Contains(lower, "cuál es el monto") || strings.Contains(lower, "monto que deseas"):
		return session.StateAwaitingAmount
	case strings.Contains(lower, "información del beneficiario"):
		return session.StateAwaitingBeneficiary
	case strings.Contains(lower, "comprobante") && strings.Contains(lower, "firmado"):
		return session.StateAwaitingBeneficiary
	default:
		return ""
	}
}

// scheduleDelivery books the physical handoff once the receipt and
// beneficiary data are both in.
func (e *Engine) scheduleDelivery(sess *session.Session) Turn {
	sess.Data.TrackingNumber = e.trackingNumber()
	sess.Data.ScheduledDate = e.now().UTC().Add(24 * time.Hour).Format("2006-01-02")
	log.Printf("[flow] session %s delivery scheduled: %s", sess.Key, sess.Data.TrackingNumber)
	return Turn{
		Message:  formatDeliveryScheduled(sess.Data.TrackingNumber),
		NewState: session.StateDeliveryScheduled,
		Intent:   "delivery_scheduled",
	}
}

func (e *Engine) trackingNumber() string {
	ts := strings.ToUpper(strconv.FormatInt(e.now().UnixMilli(), 36))
	suffix := strings.ToUpper(strings.ReplaceAll(e.newID(), "-", "")[:5])
	return "TI-" + ts + "-" + suffix
}

// senderLastDigits extracts the trailing four digits of the chat
// identifier, the value the signature on the receipt must carry.
func senderLastDigits(key string) string {
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		key = key[i+1:]
	}
	var digits []byte
	for i := 0; i < len(key); i++ {
		if key[i] >= '0' && key[i] <= '9' {
			digits = append(digits, key[i])
		}
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return string(digits)
}

func snapshot(sess *session.Session) intent.SessionSnapshot {
	return intent.SessionSnapshot{
		State:            string(sess.State),
		Country:          sess.Data.Country,
		Amount:           sess.Data.Amount,
		Currency:         sess.Data.Currency,
		PhysicalDelivery: sess.Data.PhysicalDelivery,
		LoopCount:        sess.Data.LoopCount,
	}
}
