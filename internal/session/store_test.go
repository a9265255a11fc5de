package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetOrCreateNewSession(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.GetOrCreate("whatsapp:123")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if sess.State != StateInitial {
		t.Errorf("state = %s, want INITIAL", sess.State)
	}
	if sess.Data.LoopCount != 0 {
		t.Errorf("loop count = %d, want 0", sess.Data.LoopCount)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.GetOrCreate("whatsapp:123")
	if err != nil {
		t.Fatal(err)
	}
	sess.State = StateAwaitingAmount
	sess.Data.Country = "dominican"
	sess.Data.Amount = 5000
	sess.Data.SetPhysicalDelivery()
	sess.Touch()
	if err := store.Save(sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := store.Get("whatsapp:123")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.State != StateAwaitingAmount {
		t.Errorf("state = %s, want AWAITING_AMOUNT", got.State)
	}
	if got.Data.Country != "dominican" || got.Data.Amount != 5000 {
		t.Errorf("data = %+v", got.Data)
	}
	if !got.Data.PhysicalDelivery || got.Data.DeliveryType != DeliveryPhysical {
		t.Error("physical delivery flags not consistent after reload")
	}
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get("telegram:nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestResetFlowClearsFieldGroups(t *testing.T) {
	sess := New("whatsapp:1")
	sess.Data.Country = "peru"
	sess.Data.Amount = 300
	sess.Data.SetPhysicalDelivery()
	sess.Data.ReceiptReceived = true
	sess.Data.BeneficiaryComplete = true
	sess.Data.LoopCount = 2
	sess.Data.Escalation = &Escalation{Reason: "x"}

	sess.Data.ResetFlow()

	if sess.Data.PhysicalDelivery || sess.Data.DeliveryType != "" {
		t.Error("physical delivery leaked into new flow")
	}
	if sess.Data.Country != "" || sess.Data.Amount != 0 || sess.Data.ReceiptReceived || sess.Data.BeneficiaryComplete {
		t.Errorf("flow fields not cleared: %+v", sess.Data)
	}
	if sess.Data.LoopCount != 2 || sess.Data.Escalation == nil {
		t.Error("loop count and escalation must survive a flow reset")
	}
}

func TestStateValid(t *testing.T) {
	for _, st := range []State{StateInitial, StateKYCRequired, StateDeliveryScheduled} {
		if !st.Valid() {
			t.Errorf("%s should be valid", st)
		}
	}
	if State("SOMETHING_ELSE").Valid() {
		t.Error("unknown state should be invalid")
	}
}

func TestListByState(t *testing.T) {
	store := newTestStore(t)

	a, _ := store.GetOrCreate("whatsapp:a")
	a.State = StateHumanAssistance
	a.LastActivity = time.Now().UTC().Add(-2 * time.Hour)
	if err := store.Save(a); err != nil {
		t.Fatal(err)
	}

	b, _ := store.GetOrCreate("whatsapp:b")
	b.State = StateWaitingForResolution
	b.LastActivity = time.Now().UTC().Add(-1 * time.Hour)
	if err := store.Save(b); err != nil {
		t.Fatal(err)
	}

	if _, err := store.GetOrCreate("whatsapp:c"); err != nil {
		t.Fatal(err)
	}

	got, err := store.ListByState(StateHumanAssistance, StateWaitingForResolution)
	if err != nil {
		t.Fatalf("ListByState error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Key != "whatsapp:a" {
		t.Errorf("oldest first: got %s", got[0].Key)
	}
}

func TestDeleteInactiveSkipsEscalated(t *testing.T) {
	store := newTestStore(t)

	old, _ := store.GetOrCreate("whatsapp:old")
	old.LastActivity = time.Now().UTC().Add(-72 * time.Hour)
	if err := store.Save(old); err != nil {
		t.Fatal(err)
	}

	waiting, _ := store.GetOrCreate("whatsapp:waiting")
	waiting.State = StateHumanAssistance
	waiting.LastActivity = time.Now().UTC().Add(-72 * time.Hour)
	if err := store.Save(waiting); err != nil {
		t.Fatal(err)
	}

	n, err := store.DeleteInactive(24 * time.Hour)
	if err != nil {
		t.Fatalf("DeleteInactive error: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if _, err := store.Get("whatsapp:waiting"); err != nil {
		t.Errorf("escalated session reaped: %v", err)
	}
	if _, err := store.Get("whatsapp:old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("idle session survived: %v", err)
	}
}

func TestAudit(t *testing.T) {
	store := newTestStore(t)
	err := store.Audit(AuditEntry{
		SessionKey:  "whatsapp:123",
		StateBefore: StateInitial,
		StateAfter:  StateSendMoneyStarted,
		Intent:      "send_money",
		Inbound:     "quiero enviar dinero",
		Reply:       "ok",
	})
	if err != nil {
		t.Fatalf("Audit error: %v", err)
	}
}
