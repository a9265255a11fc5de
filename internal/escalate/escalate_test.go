package escalate

import (
	"errors"
	"testing"
	"time"

	"github.com/tecnoinversiones/remesabot/internal/intent"
	"github.com/tecnoinversiones/remesabot/internal/session"
)

func TestShouldEscalateClassifierFlag(t *testing.T) {
	m := NewManager(0)
	sess := session.New("whatsapp:1")

	d := m.ShouldEscalate("no entiendo nada", intent.Result{
		Intent: "complaint", Confidence: 0.8, RequiresHuman: true, Emotion: "frustrated",
	}, sess)
	if !d.Escalate {
		t.Fatal("expected escalation on classifier flag")
	}
	if d.Reason != "classifier_flagged" || d.Urgency != "high" {
		t.Errorf("decision = %+v", d)
	}
}

func TestShouldEscalateIgnoresLowConfidenceFlag(t *testing.T) {
	m := NewManager(0)
	sess := session.New("whatsapp:1")

	d := m.ShouldEscalate("hola", intent.Result{Confidence: 0.3, RequiresHuman: true}, sess)
	if d.Escalate {
		t.Error("low-confidence human flag must not escalate by itself")
	}
}

func TestShouldEscalateLoopStuck(t *testing.T) {
	m := NewManager(0)
	sess := session.New("whatsapp:1")
	sess.Data.LoopCount = 4

	d := m.ShouldEscalate("qué", intent.Fallback(), sess)
	if !d.Escalate || d.Reason != "conversation_loop" {
		t.Errorf("decision = %+v, want conversation_loop", d)
	}

	sess.Data.LoopCount = 3
	if d := m.ShouldEscalate("qué", intent.Fallback(), sess); d.Escalate {
		t.Error("loop count of 3 must not escalate yet")
	}
}

func TestShouldEscalateKeyword(t *testing.T) {
	m := NewManager(0)
	sess := session.New("whatsapp:1")

	d := m.ShouldEscalate("quiero hablar con el gerente", intent.Fallback(), sess)
	if !d.Escalate || d.Reason != "escalation_requested" {
		t.Errorf("decision = %+v, want escalation_requested", d)
	}
}

func TestEscalateAndResolve(t *testing.T) {
	m := NewManager(0)
	sess := session.New("whatsapp:1")
	sess.Data.LoopCount = 5

	m.Escalate(sess, Decision{Escalate: true, Reason: "conversation_loop", Urgency: "medium", Category: "confused"})

	if sess.State != session.StateHumanAssistance {
		t.Errorf("state = %s, want HUMAN_ASSISTANCE", sess.State)
	}
	if !sess.Data.BotPaused || sess.Data.Escalation == nil {
		t.Fatal("session not paused")
	}

	waited, err := m.Resolve(sess, "handled by operator")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if waited < 0 {
		t.Errorf("waited = %v", waited)
	}
	if sess.State != session.StateInitial || sess.Data.BotPaused || sess.Data.LoopCount != 0 {
		t.Errorf("session after resolve = state %s paused %v loops %d", sess.State, sess.Data.BotPaused, sess.Data.LoopCount)
	}
	if sess.Data.Escalation.ResolutionNote != "handled by operator" {
		t.Errorf("note = %q", sess.Data.Escalation.ResolutionNote)
	}
}

func TestResolveIdempotent(t *testing.T) {
	m := NewManager(0)
	sess := session.New("whatsapp:1")

	if _, err := m.Resolve(sess, "nothing"); !errors.Is(err, ErrNotEscalated) {
		t.Errorf("err = %v, want ErrNotEscalated", err)
	}
	if sess.State != session.StateInitial {
		t.Error("failed resolve must not touch state")
	}
}

func TestReminderRateLimit(t *testing.T) {
	clock := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	m := &Manager{reminderInterval: 30 * time.Minute, now: func() time.Time { return clock }}

	sess := session.New("whatsapp:1")
	m.Escalate(sess, Decision{Escalate: true, Reason: "escalation_requested"})

	// Right after the handoff: the transfer message already acknowledged.
	if m.ReminderDue(sess) {
		t.Error("reminder due immediately after escalation")
	}

	clock = clock.Add(31 * time.Minute)
	if !m.ReminderDue(sess) {
		t.Fatal("reminder should be due after the interval")
	}

	clock = clock.Add(10 * time.Minute)
	if m.ReminderDue(sess) {
		t.Error("second reminder inside the interval")
	}

	clock = clock.Add(25 * time.Minute)
	if !m.ReminderDue(sess) {
		t.Error("reminder should be due again after another interval")
	}
}

func TestReminderNotPaused(t *testing.T) {
	m := NewManager(0)
	sess := session.New("whatsapp:1")
	if m.ReminderDue(sess) {
		t.Error("unpaused session must never remind")
	}
}
