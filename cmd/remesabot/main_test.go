package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tecnoinversiones/remesabot/internal/config"
	"github.com/tecnoinversiones/remesabot/internal/escalate"
	"github.com/tecnoinversiones/remesabot/internal/session"
)

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPrintWaitingEmpty(t *testing.T) {
	store := newTestStore(t)

	var buf bytes.Buffer
	if err := printWaiting(store, &buf); err != nil {
		t.Fatalf("printWaiting error: %v", err)
	}
	if !strings.Contains(buf.String(), "No conversations waiting") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintWaitingLists(t *testing.T) {
	store := newTestStore(t)

	sess, _ := store.GetOrCreate("whatsapp:18091234567")
	sess.State = session.StateHumanAssistance
	sess.Data.BotPaused = true
	sess.Data.Escalation = &session.Escalation{
		Reason:       "escalation_requested",
		Urgency:      "high",
		TransferTime: time.Now().UTC().Add(-2 * time.Hour),
	}
	if err := store.Save(sess); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := printWaiting(store, &buf); err != nil {
		t.Fatalf("printWaiting error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "whatsapp:18091234567") {
		t.Errorf("missing session key: %q", out)
	}
	if !strings.Contains(out, "reason=escalation_requested") {
		t.Errorf("missing reason: %q", out)
	}
	if !strings.Contains(out, "urgency=high") {
		t.Errorf("missing urgency: %q", out)
	}
}

func TestResolveSession(t *testing.T) {
	store := newTestStore(t)

	sess, _ := store.GetOrCreate("telegram:42")
	sess.State = session.StateHumanAssistance
	sess.Data.BotPaused = true
	sess.Data.Escalation = &session.Escalation{
		Reason:       "kyc_review",
		TransferTime: time.Now().UTC().Add(-30 * time.Minute),
	}
	if err := store.Save(sess); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := resolveSession(store, "telegram:42", "verified manually", &buf); err != nil {
		t.Fatalf("resolveSession error: %v", err)
	}
	if !strings.Contains(buf.String(), "Resolved telegram:42") {
		t.Errorf("output = %q", buf.String())
	}

	after, err := store.Get("telegram:42")
	if err != nil {
		t.Fatal(err)
	}
	if after.State != session.StateInitial {
		t.Errorf("state = %s, want %s", after.State, session.StateInitial)
	}
	if after.Data.BotPaused {
		t.Error("session should be unpaused")
	}
	if after.Data.Escalation == nil || after.Data.Escalation.ResolutionNote != "verified manually" {
		t.Errorf("resolution note not recorded: %+v", after.Data.Escalation)
	}
}

func TestResolveSessionNotEscalated(t *testing.T) {
	store := newTestStore(t)

	sess, _ := store.GetOrCreate("telegram:7")
	if err := store.Save(sess); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	err := resolveSession(store, "telegram:7", "", &buf)
	if !errors.Is(err, escalate.ErrNotEscalated) {
		t.Errorf("err = %v, want ErrNotEscalated", err)
	}
}

func TestResolveSessionMissing(t *testing.T) {
	store := newTestStore(t)

	var buf bytes.Buffer
	err := resolveSession(store, "telegram:nope", "", &buf)
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestOnboardCreatesConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("REMESABOT_DATA_DIR", "")
	t.Setenv("REMESABOT_RATES_DIR", "")

	var buf bytes.Buffer
	onboardCmd.SetOut(&buf)
	defer onboardCmd.SetOut(nil)

	if err := runOnboard(onboardCmd, nil); err != nil {
		t.Fatalf("onboard error: %v", err)
	}
	if _, err := os.Stat(config.ConfigPath()); err != nil {
		t.Errorf("config not created: %v", err)
	}
	if !strings.Contains(buf.String(), "Created config") {
		t.Errorf("output = %q", buf.String())
	}

	// Second run is idempotent.
	buf.Reset()
	if err := runOnboard(onboardCmd, nil); err != nil {
		t.Fatalf("second onboard error: %v", err)
	}
	if !strings.Contains(buf.String(), "already exists") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestStatusReportsState(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("REMESABOT_DATA_DIR", "")
	t.Setenv("REMESABOT_RATES_DIR", "")
	t.Setenv("REMESABOT_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	var buf bytes.Buffer
	statusCmd.SetOut(&buf)
	defer statusCmd.SetOut(nil)

	if err := runStatus(statusCmd, nil); err != nil {
		t.Fatalf("status error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "API Key: not set") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "Rate table:") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "Waiting on a human: 0") {
		t.Errorf("output = %q", out)
	}
}
