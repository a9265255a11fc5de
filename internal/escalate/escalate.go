package escalate

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tecnoinversiones/remesabot/internal/extract"
	"github.com/tecnoinversiones/remesabot/internal/intent"
	"github.com/tecnoinversiones/remesabot/internal/session"
)

// ErrNotEscalated signals a resolution attempt on a session that is not
// waiting for a human. Resolving twice is a no-op error, never corruption.
var ErrNotEscalated = errors.New("session is not escalated")

// loopLimit is the stuck-conversation threshold: the turn that pushes
// LoopCount past it forces a handoff.
const loopLimit = 3

// Decision is the outcome of the pre-resolution escalation check.
type Decision struct {
	Escalate bool
	Reason   string
	Urgency  string
	Category string
}

// Manager decides when a conversation leaves the bot's hands and manages
// the paused state until an operator resolves it.
type Manager struct {
	reminderInterval time.Duration
	now              func() time.Time
}

func NewManager(reminderInterval time.Duration) *Manager {
	if reminderInterval <= 0 {
		reminderInterval = 30 * time.Minute
	}
	return &Manager{reminderInterval: reminderInterval, now: time.Now}
}

// ShouldEscalate checks the handoff triggers in order: the classifier's
// human flag (above the confidence threshold), the stuck-conversation
// counter, then explicit escalation keywords. Any one is sufficient.
func (m *Manager) ShouldEscalate(text string, res intent.Result, sess *session.Session) Decision {
	if res.RequiresHuman && res.Confidence > 0.6 {
		urgency := "medium"
		if res.Emotion == "urgent" || res.Emotion == "frustrated" {
			urgency = "high"
		}
		return Decision{
			Escalate: true,
			Reason:   "classifier_flagged",
			Urgency:  urgency,
			Category: categoryFor(res),
		}
	}

	if sess.Data.LoopCount > loopLimit {
		return Decision{
			Escalate: true,
			Reason:   "conversation_loop",
			Urgency:  "medium",
			Category: "confused",
		}
	}

	if extract.HasEscalationKeyword(text) {
		return Decision{
			Escalate: true,
			Reason:   "escalation_requested",
			Urgency:  "high",
			Category: "escalation",
		}
	}

	return Decision{}
}

// Escalate pauses the session and hands it to a human. All automated
// handling stops until Resolve.
func (m *Manager) Escalate(sess *session.Session, d Decision) {
	sess.State = session.StateHumanAssistance
	sess.Data.BotPaused = true
	sess.Data.Escalation = &session.Escalation{
		Reason:       d.Reason,
		Category:     d.Category,
		Urgency:      d.Urgency,
		TransferTime: m.now().UTC(),
	}
	log.Printf("[escalate] session %s handed to human: reason=%s urgency=%s", sess.Key, d.Reason, d.Urgency)
}

// ReminderDue reports whether a paused session may send its "still
// waiting" acknowledgement, and records the send time when it may. At most
// one reminder per interval; everything else is dropped silently.
func (m *Manager) ReminderDue(sess *session.Session) bool {
	if !sess.Data.BotPaused || sess.Data.Escalation == nil {
		return false
	}
	esc := sess.Data.Escalation
	last := esc.LastReminderAt
	if last.IsZero() {
		last = esc.TransferTime
	}
	if m.now().UTC().Sub(last) < m.reminderInterval {
		return false
	}
	esc.LastReminderAt = m.now().UTC()
	return true
}

// Resolve closes an escalated case: the bot resumes from INITIAL with the
// loop counter cleared, and the waiting duration is recorded for
// analytics.
func (m *Manager) Resolve(sess *session.Session, note string) (time.Duration, error) {
	if !sess.Data.BotPaused &&
		sess.State != session.StateHumanAssistance &&
		sess.State != session.StateWaitingForResolution {
		return 0, fmt.Errorf("%w: %s", ErrNotEscalated, sess.Key)
	}

	now := m.now().UTC()
	var waited time.Duration
	if sess.Data.Escalation != nil {
		if !sess.Data.Escalation.TransferTime.IsZero() {
			waited = now.Sub(sess.Data.Escalation.TransferTime)
		}
		sess.Data.Escalation.ResolvedAt = now
		sess.Data.Escalation.ResolutionNote = note
	}

	sess.State = session.StateInitial
	sess.Data.BotPaused = false
	sess.Data.LoopCount = 0

	log.Printf("[escalate] session %s resolved after %s", sess.Key, waited.Round(time.Second))
	return waited, nil
}

func categoryFor(res intent.Result) string {
	switch res.Intent {
	case "complaint":
		return "complaint"
	case "human_agent":
		return "escalation"
	default:
		if res.Emotion == "frustrated" {
			return "frustrated"
		}
		return "complex_query"
	}
}
